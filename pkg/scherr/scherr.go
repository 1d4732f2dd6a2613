// Package scherr defines the discriminated error taxonomy shared by the
// parser, block tree, cache, and registry.
package scherr

import "fmt"

// Kind discriminates the taxonomy of errors this module returns.
type Kind int

const (
	// KindParse indicates the source expression did not match the grammar.
	KindParse Kind = iota
	// KindValidation indicates a constructed value fell outside a field's bounds.
	KindValidation
	// KindIndexOutOfBounds indicates a programmatic index-based mutator was
	// called with an invalid index.
	KindIndexOutOfBounds
	// KindReference indicates reference resolution failed.
	KindReference
	// KindInvalidID indicates a reference ID contains non-alphanumeric characters.
	KindInvalidID
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "ParseError"
	case KindValidation:
		return "ValidationError"
	case KindIndexOutOfBounds:
		return "IndexOutOfBoundsError"
	case KindReference:
		return "ReferenceError"
	case KindInvalidID:
		return "InvalidIDError"
	default:
		return "UnknownError"
	}
}

// Error is the single error type produced by this module. Callers
// discriminate on Kind rather than type-asserting to a per-kind struct.
type Error struct {
	Kind Kind
	Msg  string

	// Expr is the offending source text, set for KindParse.
	Expr string
	// Value and bounds are set for KindValidation.
	Value    int64
	Min, Max int64
	// Index is set for KindIndexOutOfBounds.
	Index int
	// ID is set for KindReference and KindInvalidID.
	ID string

	wrapped error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return e.Kind.String()
}

// Unwrap allows errors.Is/errors.As to see through to a wrapped cause.
func (e *Error) Unwrap() error {
	return e.wrapped
}

// Is reports whether target is a *Error with the same Kind, so callers
// can write errors.Is(err, scherr.Parse("")) style sentinels, or more
// idiomatically switch on scherr.As(err).Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Parse builds a KindParse error carrying the offending expression text.
func Parse(expr, msg string) *Error {
	return &Error{Kind: KindParse, Msg: msg, Expr: expr}
}

// Wrapf builds a KindParse error wrapping a lower-level cause.
func Wrapf(expr string, cause error, format string, args ...any) *Error {
	return &Error{Kind: KindParse, Msg: fmt.Sprintf(format, args...), Expr: expr, wrapped: cause}
}

// Validation builds a KindValidation error carrying the offending value and bounds.
func Validation(value, min, max int64, msg string) *Error {
	return &Error{Kind: KindValidation, Msg: msg, Value: value, Min: min, Max: max}
}

// IndexOutOfBounds builds a KindIndexOutOfBounds error.
func IndexOutOfBounds(index int, msg string) *Error {
	return &Error{Kind: KindIndexOutOfBounds, Msg: msg, Index: index}
}

// Reference builds a KindReference error carrying the reference ID.
func Reference(id, msg string) *Error {
	return &Error{Kind: KindReference, Msg: msg, ID: id}
}

// InvalidID builds a KindInvalidID error carrying the offending ID.
func InvalidID(id string) *Error {
	return &Error{Kind: KindInvalidID, Msg: "reference ID must be alphanumeric", ID: id}
}

// As extracts a *Error from err, or nil if err is not one (directly or
// via wrapping).
func As(err error) *Error {
	var e *Error
	if err == nil {
		return nil
	}
	if se, ok := err.(*Error); ok {
		return se
	}
	type wrapper interface{ Unwrap() error }
	for w, ok := err.(wrapper); ok; w, ok = err.(wrapper) {
		err = w.Unwrap()
		if se, ok := err.(*Error); ok {
			e = se
			break
		}
	}
	return e
}
