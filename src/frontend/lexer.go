// The lexer is based on Rob Pike's talk on Go scanners.
// Link to the talk on YouTube: https://www.youtube.com/watch?v=HxaD_trXwRE
// Link to presentation slides: https://talks.golang.org/2011/lex.slide#1
//
// The lexer uses state functions stateFunc to define the lexer state. States allow the lexer to treat same runes
// differently. State transitions happens in the current states and appearance of key runes. Items are collected in a
// slice that the parser walks once the whole source is scanned.

package frontend

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// stateFunc defines the state of the lexer.
type stateFunc func(*lexer) stateFunc

// itemType is used to differentiate different tokens scanned by the lexer. Punctuation is emitted with the rune
// itself as itemType.
type itemType int

// item contains a lexeme scanned by the lexer and its position in the source stream.
type item struct {
	typ  itemType // Token type to emit.
	val  string   // Value of token.
	line int      // Line of token in source stream.
	pos  int      // Start position on current line of token in source stream.
}

// lexer is a lexical type that traverse a source stream character by character and emits lexemes.
type lexer struct {
	input       string    // The source stream of characters to scan for lexemes.
	start       int       // The starting position of the current token.
	pos         int       // The current position of the scanner in the source stream.
	width       int       // The width of the currently scanned rune/character in bytes.
	line        int       // The current line in the source stream. Not zero-indexed.
	startOnLine int       // The start position of the current token on the current line. Not zero-indexed.
	state       stateFunc // The start state of the lexer.
	items       []item    // Items emitted so far.
}

// ---------------------
// ----- Constants -----
// ---------------------

const eof = 0 // Same as '\0' for null-terminated C strings.

// Item types start above the largest rune, so that punctuation can be emitted as is.
const (
	itemEOF itemType = iota + utf8.MaxRune + 1
	itemError
	itemWord   // Label, type, opcode or literal word like NaN.
	itemLocal  // %name
	itemGlobal // @name
	itemNumber // Integer or floating point literal, optionally signed.
	itemArrow  // ->
	itemFunc
	itemPhi
	itemInsert
	itemExtract
	itemShuffle
	itemCall
	itemBr
	itemRet
	itemTo
	itemSplat
	itemUndef
	itemZero
	itemVarying
)

// itemNames provides print friendly names for item types.
var itemNames = [...]string{
	"EOF",
	"ERROR",
	"WORD",
	"LOCAL",
	"GLOBAL",
	"NUMBER",
	"ARROW",
	"FUNC",
	"PHI",
	"INSERT",
	"EXTRACT",
	"SHUFFLE",
	"CALL",
	"BR",
	"RET",
	"TO",
	"SPLAT",
	"UNDEF",
	"ZEROINITIALIZER",
	"VARYING",
}

// --------------------------
// ----- Item functions -----
// --------------------------

// String returns a print friendly string representation of the item.
func (i item) String() string {
	switch i.typ {
	case itemEOF:
		return "EOF"
	case itemError:
		return fmt.Sprintf("%s [ERROR]", i.val)
	}
	if len(i.val) > 10 {
		return fmt.Sprintf("%.10q... (line %d:%d)", i.val, i.line, i.pos)
	}
	return fmt.Sprintf("%q (line %d:%d)", i.val, i.line, i.pos)
}

// String returns the name of the item type, or the quoted rune of punctuation.
func (t itemType) String() string {
	if t >= itemEOF && int(t-itemEOF) < len(itemNames) {
		return itemNames[t-itemEOF]
	}
	return fmt.Sprintf("%q", rune(t))
}

// ---------------------------
// ----- Lexer functions -----
// ---------------------------

// lex scans src and returns its items. The last item is either of type itemEOF or itemError.
func lex(src string) []item {
	l := newLexer(src, lexGlobal)
	l.run()
	return l.items
}

// newLexer creates and returns a pointer to a new lexer.
func newLexer(src string, start stateFunc) *lexer {
	return &lexer{
		input:       src,
		start:       0,
		pos:         0,
		width:       0,
		line:        1,
		startOnLine: 1,
		state:       start,
		items:       make([]item, 0, len(src)/3+1),
	}
}

// run traverses the input stream of the lexer until a state returns <nil>.
func (l *lexer) run() {
	for state := l.state; state != nil; {
		state = state(l)
	}
}

// emit appends an item of type typ holding the pending input.
func (l *lexer) emit(typ itemType) {
	l.items = append(l.items, item{
		typ:  typ,
		val:  l.input[l.start:l.pos],
		line: l.line,
		pos:  l.startOnLine,
	})
	l.startOnLine += len(l.input[l.start:l.pos])
	l.start = l.pos
}

// next returns the next rune in the input. The use of runes makes the lexer UTF-8 compatible.
func (l *lexer) next() (r rune) {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, l.width = utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += l.width
	return r
}

// ignore skips over the pending input before this point.
func (l *lexer) ignore() {
	l.startOnLine += len(l.input[l.start:l.pos])
	l.start = l.pos
}

// backup steps back one rune. Should only be called once per call of next.
func (l *lexer) backup() {
	if l.pos > l.start {
		l.pos -= l.width
	}
}

// peek returns, but does not consume, the next rune in the input.
func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

// accept consumes the next rune if it's from the set of valid characters defined by the valid string.
func (l *lexer) accept(valid string) bool {
	if strings.IndexRune(valid, l.next()) >= 0 {
		return true
	}
	l.backup()
	return false
}

// acceptRun consumes a sequence of runes from the set of valid characters defined by the valid string.
func (l *lexer) acceptRun(valid string) {
	for strings.IndexRune(valid, l.next()) >= 0 {
	}
	l.backup()
}

// errorf emits an error token and terminates the scan by passing back a nil pointer that will be the next state,
// terminating l.run.
func (l *lexer) errorf(format string, args ...interface{}) stateFunc {
	l.items = append(l.items, item{
		typ:  itemError,
		val:  fmt.Sprintf(format, args...),
		line: l.line,
		pos:  l.startOnLine,
	})
	return nil
}
