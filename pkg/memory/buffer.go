package memory

import (
	"unsafe"

	"github.com/google/uuid"
)

// Location names the address space a Buffer lives in.
type Location uint8

const (
	Host Location = iota
	Device
)

func (l Location) String() string {
	switch l {
	case Host:
		return "host"
	case Device:
		return "device"
	default:
		return "unknown"
	}
}

// Buffer is a handle to one allocation made through a Manager.
//
// Buffers are plain values; copying a Buffer does not duplicate the
// allocation. Host buffers are 8-byte aligned so they can be viewed as
// float64, int64 or int32 slices. Device buffers carry an opaque pointer that
// is only meaningful to the Device that produced it.
type Buffer struct {
	loc   Location
	bytes int64
	id    uint64
	owner uuid.UUID
	host  []uint64
	ptr   unsafe.Pointer
}

func (b Buffer) Location() Location { return b.loc }
func (b Buffer) Bytes() int64       { return b.bytes }
func (b Buffer) Owner() uuid.UUID   { return b.owner }
func (b Buffer) IsZero() bool       { return b.id == 0 }

// Len reports how many float64 elements fit in the buffer.
func (b Buffer) Len() int { return int(b.bytes / 8) }

// DevicePtr returns the raw device pointer, or nil for host buffers.
func (b Buffer) DevicePtr() unsafe.Pointer {
	if b.loc != Device {
		return nil
	}
	return b.ptr
}

// Float64s views a host buffer as float64 values. Device buffers return nil.
func (b Buffer) Float64s() []float64 {
	if b.loc != Host || len(b.host) == 0 {
		return nil
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(&b.host[0])), b.bytes/8)
}

// Int64s views a host buffer as int64 values. Device buffers return nil.
func (b Buffer) Int64s() []int64 {
	if b.loc != Host || len(b.host) == 0 {
		return nil
	}
	return unsafe.Slice((*int64)(unsafe.Pointer(&b.host[0])), b.bytes/8)
}

// Int32s views a host buffer as int32 values. Device buffers return nil.
func (b Buffer) Int32s() []int32 {
	if b.loc != Host || len(b.host) == 0 {
		return nil
	}
	return unsafe.Slice((*int32)(unsafe.Pointer(&b.host[0])), b.bytes/4)
}

func (b Buffer) hostPtr() unsafe.Pointer {
	if len(b.host) == 0 {
		return nil
	}
	return unsafe.Pointer(&b.host[0])
}

func (b Buffer) rawBytes() []byte {
	if b.loc != Host || len(b.host) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&b.host[0])), b.bytes)
}
