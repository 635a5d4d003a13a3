package memory

import "errors"

var (
	ErrNoDevice      = errors.New("no device attached")
	ErrInvalidSize   = errors.New("allocation size must be > 0")
	ErrDoubleFree    = errors.New("buffer already released")
	ErrForeignBuffer = errors.New("buffer not owned by this manager")
	ErrSizeMismatch  = errors.New("copy exceeds buffer size")
	ErrLocation      = errors.New("buffer in wrong memory location")
)
