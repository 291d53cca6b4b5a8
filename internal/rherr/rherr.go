// Package rherr defines the tagged error kinds used throughout the core
// (spec §7). Every leaf primitive returns one of these on failure instead
// of panicking; higher-level editors stop the edit and leave the
// container consistent rather than unwind through a panic/recover.
package rherr

import "fmt"

// Kind is one of the error categories of spec.md §7.
type Kind int

const (
	NullPointer Kind = iota
	IndexOutOfRange
	InvalidArgument
	InvalidValue
	InvalidOpCode
	UnExpectedData
	Inconsistency
	DuplicateValue
	NotFound
	SizeTooSmall
	InsufficientMemory
	ModelInfeasible
	WrongModelForFunction
	RuntimeError
	NotImplemented
)

var names = [...]string{
	"NullPointer", "IndexOutOfRange", "InvalidArgument", "InvalidValue",
	"InvalidOpCode", "UnExpectedData", "Inconsistency", "DuplicateValue",
	"NotFound", "SizeTooSmall", "InsufficientMemory", "ModelInfeasible",
	"WrongModelForFunction", "RuntimeError", "NotImplemented",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(names) {
		return "Unknown"
	}
	return names[k]
}

// Error is the value every core operation returns on failure: a kind, the
// operation that raised it, a formatted message, and an optional wrapped
// cause for errors.Is/errors.As chains.
type Error struct {
	Kind    Kind
	Op      string
	Msg     string
	Wrapped error
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Op, e.Kind, e.Msg, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Wrapped }

// E constructs a tagged error for operation op.
func E(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap constructs a tagged error that carries an underlying cause.
func Wrap(kind Kind, op string, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...), Wrapped: cause}
}

// KindOf extracts the Kind of err if it is (or wraps) an *Error, and
// RuntimeError/false otherwise.
func KindOf(err error) (Kind, bool) {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return RuntimeError, false
}

// Has reports whether err is (or wraps) an *Error of the given kind.
func Has(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
