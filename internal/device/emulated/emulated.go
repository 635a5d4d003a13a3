// Package emulated provides a memory.Device whose "device" memory is a set of
// private page mappings in the host process. It lets device code paths run
// without an accelerator.
package emulated

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"
)

var ErrUnknownPointer = errors.New("pointer not allocated by this device")

// Device hands out page-backed regions and copies between them and host
// memory. It is safe for concurrent use.
type Device struct {
	mu      sync.Mutex
	regions map[unsafe.Pointer]region

	h2d, d2h, d2d atomic.Int64
	limit         int64
	used          int64
}

// New creates an emulated device. limit caps the bytes live at once; zero
// means unlimited.
func New(limit int64) *Device {
	return &Device{regions: make(map[unsafe.Pointer]region), limit: limit}
}

func (d *Device) Name() string { return "emulated" }

func (d *Device) Alloc(bytes int64) (unsafe.Pointer, error) {
	if bytes <= 0 {
		return nil, fmt.Errorf("emulated alloc size must be > 0")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.limit > 0 && d.used+bytes > d.limit {
		return nil, fmt.Errorf("emulated device out of memory: %d of %d bytes in use, %d requested", d.used, d.limit, bytes)
	}
	r, err := mapRegion(bytes)
	if err != nil {
		return nil, err
	}
	ptr := unsafe.Pointer(&r.data[0])
	d.regions[ptr] = r
	d.used += bytes
	return ptr, nil
}

func (d *Device) Free(ptr unsafe.Pointer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.regions[ptr]
	if !ok {
		return ErrUnknownPointer
	}
	delete(d.regions, ptr)
	d.used -= r.size
	return r.unmap()
}

// lookup returns the mapped bytes starting at ptr, checking that n of them
// fit inside the owning region.
func (d *Device) lookup(ptr unsafe.Pointer, n int64) ([]byte, error) {
	d.mu.Lock()
	r, ok := d.regions[ptr]
	d.mu.Unlock()
	if !ok {
		return nil, ErrUnknownPointer
	}
	if n > r.size {
		return nil, fmt.Errorf("copy of %d bytes exceeds %d-byte region", n, r.size)
	}
	return r.data[:n], nil
}

func (d *Device) CopyHostToDevice(dst, src unsafe.Pointer, bytes int64) error {
	mem, err := d.lookup(dst, bytes)
	if err != nil {
		return err
	}
	copy(mem, unsafe.Slice((*byte)(src), bytes))
	d.h2d.Add(1)
	return nil
}

func (d *Device) CopyDeviceToHost(dst, src unsafe.Pointer, bytes int64) error {
	mem, err := d.lookup(src, bytes)
	if err != nil {
		return err
	}
	copy(unsafe.Slice((*byte)(dst), bytes), mem)
	d.d2h.Add(1)
	return nil
}

func (d *Device) CopyDeviceToDevice(dst, src unsafe.Pointer, bytes int64) error {
	to, err := d.lookup(dst, bytes)
	if err != nil {
		return err
	}
	from, err := d.lookup(src, bytes)
	if err != nil {
		return err
	}
	copy(to, from)
	d.d2d.Add(1)
	return nil
}

// Stats is a snapshot of device activity.
type Stats struct {
	Regions        int
	BytesInUse     int64
	HostToDevice   int64
	DeviceToHost   int64
	DeviceToDevice int64
}

func (d *Device) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Stats{
		Regions:        len(d.regions),
		BytesInUse:     d.used,
		HostToDevice:   d.h2d.Load(),
		DeviceToHost:   d.d2h.Load(),
		DeviceToDevice: d.d2d.Load(),
	}
}
