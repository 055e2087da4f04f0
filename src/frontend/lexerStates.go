package frontend

// lexGlobal starts the lexing process and serves as the default state.
func lexGlobal(l *lexer) stateFunc {
	for {
		r := l.next()
		switch {
		case isAlpha(r) || r == '_':
			// Keyword, label, type or opcode.
			return lexWord
		case isDigit(r):
			// Number.
			return lexNumber
		case (r == '-' || r == '+') && isDigit(l.peek()):
			// Signed number.
			return lexNumber
		case (r == '-' || r == '+') && isAlpha(l.peek()):
			// Signed float word, like -Inf.
			return lexWord
		case r == '%':
			return lexName(itemLocal)
		case r == '@':
			return lexName(itemGlobal)
		case r == '\n':
			// Newline.
			l.ignore()
			l.line++
			l.startOnLine = 1
		case isSpace(r):
			// Ignore whitespace. Newlines are caught before whitespaces.
			l.ignore()
		case r == '-' && l.peek() == '>':
			// Return type arrow.
			l.next()
			l.emit(itemArrow)
		case r == ';':
			// Ignore comments.
			for c := l.next(); c != '\n' && c != eof; c = l.next() {
			}
			l.backup()
			l.ignore()
		case r == eof:
			// End of file: stop the state machine.
			l.emit(itemEOF)
			return nil
		case isPunct(r):
			l.emit(itemType(r))
		default:
			return l.errorf("unexpected character %q at line %d:%d", r, l.line, l.startOnLine)
		}
	}
}

// lexWord scans the input string for keywords and words.
func lexWord(l *lexer) stateFunc {
	// We know that the currently scanned rune is a valid first character.
	for {
		r := l.next()

		// Check if character is valid character.
		if !isNameChar(r) {
			l.backup()
			kw, typ := isKeyword(l.input[l.start:l.pos])
			if kw {
				l.emit(typ)
			} else {
				l.emit(itemWord)
			}
			return lexGlobal
		}
	}
}

// lexName returns a state that scans a local or global name following its sigil.
func lexName(typ itemType) stateFunc {
	return func(l *lexer) stateFunc {
		// Drop the sigil.
		l.ignore()
		l.acceptRun(nameChars)
		if l.pos == l.start {
			return l.errorf("empty name at line %d:%d", l.line, l.startOnLine)
		}
		l.emit(typ)
		return lexGlobal
	}
}

// lexNumber scans the input stream for an integer or floating point number. A leading sign has already been
// consumed if present.
func lexNumber(l *lexer) stateFunc {
	// Scan integer part.
	l.acceptRun(digits)

	// Check for decimal.
	if l.accept(".") {
		l.acceptRun(digits)
	}

	// Check for exponent.
	if l.accept("eE") {
		l.accept("+-")
		if !isDigit(l.peek()) {
			return l.errorf("malformed exponent in %q at line %d:%d", l.input[l.start:l.pos], l.line, l.startOnLine)
		}
		l.acceptRun(digits)
	}
	if r := l.peek(); isAlpha(r) || r == '_' {
		l.next()
		return l.errorf("bad number syntax %q at line %d:%d", l.input[l.start:l.pos], l.line, l.startOnLine)
	}
	l.emit(itemNumber)
	return lexGlobal
}

// ----------------------------
// ----- Helper functions -----
// ----------------------------

// digits defines the set of decimal digits.
const digits = "0123456789"

// nameChars defines the characters of a local, global or label name.
const nameChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_."

// isAlpha return true if rune r is an alphabetic character in the set [a-zA-Z].
func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// isDigit return true if rune r is a digit in the range [0-9].
func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// isNameChar returns true if rune r may appear in a name after its first character.
func isNameChar(r rune) bool {
	return isAlpha(r) || isDigit(r) || r == '_' || r == '.'
}

// isSpace return true if rune r is a whitespace character.
func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\f' || r == '\r'
}

// isPunct returns true if rune r is a punctuation token of the textual IR.
func isPunct(r rune) bool {
	switch r {
	case '(', ')', '{', '}', '[', ']', '<', '>', ',', ':', '=':
		return true
	}
	return false
}
