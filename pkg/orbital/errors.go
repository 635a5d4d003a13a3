package orbital

import (
	"errors"
	"fmt"

	"github.com/samcharles93/orbital/pkg/memory"
)

// Error kinds. Every error returned by a Context wraps exactly one of them.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotReady        = errors.New("not ready")
	ErrCompute         = errors.New("compute error")
	ErrResource        = errors.New("resource error")
)

// Error carries the failing operation alongside its kind and cause.
type Error struct {
	Kind error
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	s := e.Op + ": " + e.Kind.Error()
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindOf returns the error kind wrapped by err, or nil if err did not come
// from this package.
func KindOf(err error) error {
	for _, k := range []error{ErrInvalidArgument, ErrNotReady, ErrCompute, ErrResource} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

func invalidArg(op, format string, args ...any) error {
	return &Error{Kind: ErrInvalidArgument, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func notReady(op, format string, args ...any) error {
	return &Error{Kind: ErrNotReady, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func missingGroup(op string, g Group) error {
	return &Error{Kind: ErrNotReady, Op: op, Msg: g.String() + " not provided"}
}

func computeErr(op string, err error) error {
	return &Error{Kind: ErrCompute, Op: op, Err: err}
}

// memErr classifies a memory manager failure: misuse of a buffer by the
// caller is an invalid argument, everything else is a resource failure.
func memErr(op string, err error) error {
	switch {
	case errors.Is(err, memory.ErrForeignBuffer),
		errors.Is(err, memory.ErrSizeMismatch),
		errors.Is(err, memory.ErrInvalidSize),
		errors.Is(err, memory.ErrLocation):
		return &Error{Kind: ErrInvalidArgument, Op: op, Err: err}
	default:
		return &Error{Kind: ErrResource, Op: op, Err: err}
	}
}
