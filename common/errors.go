// Package common - failure kinds shared by the keypoint and foreground pipelines.
package common

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a pipeline failure so callers can react without parsing
// error strings.
type Kind int

const (
	// KindUnknown is reported for errors that did not originate in this module.
	KindUnknown Kind = iota
	// KindInvalidArgument marks a rejected configuration value or precondition.
	KindInvalidArgument
	// KindNotFound marks a missing input file.
	KindNotFound
	// KindDecode marks an input that exists but could not be decoded as an image.
	KindDecode
	// KindUnsupported marks a format or image layout the pipeline cannot handle.
	KindUnsupported
	// KindIO marks a failure while writing output.
	KindIO
	// KindDisplay marks a failure of a display surface.
	KindDisplay
	// KindCanceled marks a run stopped through its context.
	KindCanceled
)

var kindNames = map[Kind]string{
	KindUnknown:         "unknown",
	KindInvalidArgument: "invalid_argument",
	KindNotFound:        "not_found",
	KindDecode:          "decode",
	KindUnsupported:     "unsupported",
	KindIO:              "io",
	KindDisplay:         "display",
	KindCanceled:        "canceled",
}

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a typed pipeline failure.
type Error struct {
	// Kind classifies the failure.
	Kind Kind
	// Op names the step that failed, e.g. "images.Load".
	Op string
	// Err is the underlying cause, wrapped with a stack trace.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *Error) Unwrap() error { return e.Err }

// Cause exposes the cause to errors.Cause from pkg/errors.
func (e *Error) Cause() error { return e.Err }

// E builds a typed error around err. A context cancellation or deadline
// always becomes KindCanceled regardless of the kind requested.
//
// Arguments:
//   - kind: The failure kind.
//   - op: The operation that failed.
//   - err: The cause. May be nil.
//
// Returns:
//   - error: A *Error carrying the kind.
func E(kind Kind, op string, err error) error {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		kind = KindCanceled
	}
	if err != nil {
		err = errors.WithStack(err)
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds a typed error from a formatted message.
func Errorf(kind Kind, op string, format string, args ...interface{}) error {
	return &Error{Kind: kind, Op: op, Err: errors.Errorf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
