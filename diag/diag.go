// Package diag implements the compiler's single error type and its stable,
// multi-line diagnostic format. The rest of the compiler never constructs
// plain Go errors for user-facing problems: it panics with a
// *CompilationError and
// lets Recover turn that into a returned error at the public entry points.
package diag

import (
	"fmt"
	"strings"
	"text/scanner"

	"github.com/pkg/errors"
)

// Kind enumerates the non-exhaustive error categories from the
// specification. It exists for tests and for callers that want to match on
// the shape of a failure; user-facing behavior is driven entirely by the
// rendered message.
type Kind int

const (
	Unknown Kind = iota
	UnsupportedSyntax
	UndefinedName
	PartiallyDefined
	Redefinition
	TypeMismatch
	WrongArity
	NotCallable
	UnsupportedBuiltinUsage
	MatchShape
	InvalidException
	InvalidAtomicType
	IntegerOutOfRange
	ReturnMissing
	ReturnTypeMismatch
	Unreachable
)

//go:generate stringer -type Kind diag.go

func (k Kind) String() string {
	switch k {
	case UnsupportedSyntax:
		return "UnsupportedSyntax"
	case UndefinedName:
		return "UndefinedName"
	case PartiallyDefined:
		return "PartiallyDefined"
	case Redefinition:
		return "Redefinition"
	case TypeMismatch:
		return "TypeMismatch"
	case WrongArity:
		return "WrongArity"
	case NotCallable:
		return "NotCallable"
	case UnsupportedBuiltinUsage:
		return "UnsupportedBuiltinUsage"
	case MatchShape:
		return "MatchShape"
	case InvalidException:
		return "InvalidException"
	case InvalidAtomicType:
		return "InvalidAtomicType"
	case IntegerOutOfRange:
		return "IntegerOutOfRange"
	case ReturnMissing:
		return "ReturnMissing"
	case ReturnTypeMismatch:
		return "ReturnTypeMismatch"
	case Unreachable:
		return "Unreachable"
	default:
		return "Unknown"
	}
}

// Source bundles the filename and raw source lines of a compiled unit so
// diagnostics can embed the offending line.
type Source struct {
	Filename string
	Lines    []string
}

// Line returns the 1-indexed source line, or "" if out of range.
func (s Source) Line(n int) string {
	if s.Lines == nil || n < 1 || n > len(s.Lines) {
		return ""
	}
	return s.Lines[n-1]
}

// Note is a secondary location attached to a CompilationError, always
// pointing at another AST location (e.g. "x was defined here").
type Note struct {
	Pos     scanner.Position
	Message string
}

// CompilationError is the single error class for all user-facing compiler
// failures. It carries the fully-formatted, source-located message
// including notes. Internal invariant violations are bugs and must use
// plain panics, not this type.
type CompilationError struct {
	Kind    Kind
	Pos     scanner.Position
	Message string
	Notes   []Note
	Source  Source
}

// New constructs a CompilationError. It does not raise it; callers
// typically follow with `panic(diag.New(...))`.
func New(kind Kind, src Source, pos scanner.Position, format string, args ...interface{}) *CompilationError {
	return &CompilationError{
		Kind:    kind,
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
		Source:  src,
	}
}

// WithNote appends a secondary location to the error and returns it, for
// chaining at the call site: panic(diag.New(...).WithNote(...)).
func (e *CompilationError) WithNote(pos scanner.Position, format string, args ...interface{}) *CompilationError {
	e.Notes = append(e.Notes, Note{Pos: pos, Message: fmt.Sprintf(format, args...)})
	return e
}

// Error implements the error interface by rendering the stable diagnostic
// format:
//
//	<file>:<line>:<col>: error: <message>
//	<source line>
//	<spaces><^>
//	<file>:<line>:<col>: note: <message>
//	<source line>
//	<spaces><^>
//	...
func (e *CompilationError) Error() string {
	var b strings.Builder
	writeLoc(&b, e.Source, e.Pos, "error", e.Message)
	for _, n := range e.Notes {
		writeLoc(&b, e.Source, n.Pos, "note", n.Message)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func writeLoc(b *strings.Builder, src Source, pos scanner.Position, level, message string) {
	fmt.Fprintf(b, "%s:%d:%d: %s: %s\n", pos.Filename, pos.Line, pos.Column, level, message)
	if line := src.Line(pos.Line); line != "" {
		fmt.Fprintf(b, "%s\n", line)
		col := pos.Column
		if col < 1 {
			col = 1
		}
		fmt.Fprintf(b, "%s^\n", strings.Repeat(" ", col-1))
	}
}

// Raise panics with a freshly-built CompilationError. It is the normal way
// elaboration and emission code reports a user-facing error: elaboration
// aborts at the first error in a statement.
func Raise(kind Kind, src Source, pos scanner.Position, format string, args ...interface{}) {
	panic(New(kind, src, pos, format, args...))
}

// Recover runs cb, turning any *CompilationError panic into a returned
// error. A panic with any other value is a bug and is re-raised instead of
// swallowed: internal invariant violations must surface as crashes, not as
// compile errors.
func Recover(cb func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if ce, ok := r.(*CompilationError); ok {
				err = ce
				return
			}
			panic(r)
		}
	}()
	cb()
	return nil
}

// InternalError panics with a plain error, for invariant violations that are
// bugs rather than user-facing diagnostics.
func InternalError(format string, args ...interface{}) {
	panic(errors.Errorf("internal error: "+format, args...))
}
