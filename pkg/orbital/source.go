package orbital

import (
	"slices"

	"github.com/samcharles93/orbital/pkg/memory"
)

// source is an array argument supplied either as a host slice or as a buffer
// the context owns.
type source[T memory.Elem] struct {
	host  []T
	buf   memory.Buffer
	isBuf bool
}

func fromHost[T memory.Elem](v []T) source[T] { return source[T]{host: v} }

func fromBuffer[T memory.Elem](b memory.Buffer) source[T] {
	return source[T]{buf: b, isBuf: true}
}

// load returns n values and the location they were supplied in. Host slices
// are returned as-is; the length check is left to store.
func (s source[T]) load(c *Context, op string, n int64) ([]T, memory.Location, error) {
	if !s.isBuf {
		return s.host, memory.Host, nil
	}
	v, err := fetch[T](c, op, s.buf, n)
	if err != nil {
		return nil, 0, err
	}
	return v, s.buf.Location(), nil
}

// store validates vals and commits a private copy of them to *dst. Nothing is
// modified when validation fails.
func store[T memory.Elem](c *Context, op string, g Group, want int64, vals []T, loc memory.Location, check func(T) bool, dst *[]T, f *field) error {
	if int64(len(vals)) != want {
		return invalidArg(op, "got %d values, want %d", len(vals), want)
	}
	if check != nil {
		for i, v := range vals {
			if !check(v) {
				return invalidArg(op, "value %v at index %d out of range", v, i)
			}
		}
	}
	*dst = slices.Clone(vals)
	f.mark(loc)
	c.stamp(g)
	return nil
}

func nonNegative[T memory.Elem](v T) bool { return v >= 0 }
func positive[T memory.Elem](v T) bool    { return v > 0 }
