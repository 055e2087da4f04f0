// Package diag provides the structured error type used for contract violations and front end failures.
//
// Errors are categorized by Phase (where the error occurred) and Kind (what went wrong):
//
//	err := diag.New(diag.PhaseAnalyze, diag.KindDuplicateLane).
//		Value("%v3").
//		Detail("lane %d inserted twice", 2).
//		Build()
//
// Contract violations inside the IR core panic with the built *Error, panic(diag.New(...).Build()). Recover turns such
// a panic back into an ordinary error at an API boundary.
package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred.
type Phase string

const (
	PhaseBuild     Phase = "build"     // IR construction
	PhaseParse     Phase = "parse"     // textual IR parsing
	PhaseValidate  Phase = "validate"  // IR validation
	PhaseAnalyze   Phase = "analyze"   // lane analyses
	PhaseScalarize Phase = "scalarize" // lane 0 extraction
	PhaseLower     Phase = "lower"     // LLVM lowering
	PhaseConfig    Phase = "config"    // configuration loading
)

// Kind categorizes the error.
type Kind string

const (
	KindTypeMismatch    Kind = "type_mismatch"
	KindOutOfBounds     Kind = "out_of_bounds"
	KindDuplicateLane   Kind = "duplicate_lane"
	KindUnsupportedBase Kind = "unsupported_base"
	KindPhiArity        Kind = "phi_arity"
	KindBlockMismatch   Kind = "block_mismatch"
	KindUnsetLane       Kind = "unset_lane"
	KindInvalidInput    Kind = "invalid_input"
	KindSyntax          Kind = "syntax"
	KindUnterminated    Kind = "unterminated"
	KindNotFound        Kind = "not_found"
)

// Error is the structured error type.
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Value  string // Name of the offending value, if any.
	Detail string
	Line   int // Source line for parse errors, 0 otherwise.
	Pos    int // Source column for parse errors.
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d:%d", e.Line, e.Pos)
	}
	if e.Value != "" {
		b.WriteString(" (")
		b.WriteString(e.Value)
		b.WriteByte(')')
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same Kind. A target with an empty Phase matches any phase.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return t.Kind == e.Kind
}

// Builder provides structured error construction.
type Builder struct {
	err Error
}

// New creates a new error builder.
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Value sets the offending value name.
func (b *Builder) Value(name string) *Builder {
	b.err.Value = name
	return b
}

// At sets the source position.
func (b *Builder) At(line, pos int) *Builder {
	b.err.Line = line
	b.err.Pos = pos
	return b
}

// Cause sets the underlying error.
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message.
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error.
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// TypeMismatch creates a type mismatch error.
func TypeMismatch(phase Phase, value string, want, got fmt.Stringer) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Value:  value,
		Detail: fmt.Sprintf("expected %s, got %s", want, got),
	}
}

// OutOfBounds creates an out of bounds error.
func OutOfBounds(phase Phase, value string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Value:  value,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
	}
}

// Syntax creates a parse error at the given source position.
func Syntax(line, pos int, format string, args ...any) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindSyntax,
		Line:   line,
		Pos:    pos,
		Detail: fmt.Sprintf(format, args...),
	}
}

// Recover converts a panic carrying an *Error into an error stored in err. Any other panic is re-raised.
// It must be called directly by a deferred statement:
//
//	defer diag.Recover(&err)
func Recover(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(*Error); ok {
		*err = e
		return
	}
	panic(r)
}
