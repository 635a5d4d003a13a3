package memory

import (
	"fmt"
	"unsafe"

	"github.com/google/uuid"
)

// Elem is the set of element types that can be moved between typed host
// slices and buffers.
type Elem interface {
	~float64 | ~int64 | ~int32
}

// Manager owns every allocation made on behalf of a single owner, in host
// memory and (when a Device is attached) in device memory. It is not safe for
// concurrent use.
type Manager struct {
	owner  uuid.UUID
	device Device

	nextID uint64
	live   map[uint64]Buffer

	hostBytes   int64
	deviceBytes int64
}

// NewManager creates a manager for owner. dev may be nil for a host-only
// manager.
func NewManager(owner uuid.UUID, dev Device) *Manager {
	return &Manager{
		owner:  owner,
		device: dev,
		live:   make(map[uint64]Buffer),
	}
}

func (m *Manager) Owner() uuid.UUID { return m.owner }
func (m *Manager) Device() Device   { return m.device }
func (m *Manager) HasDevice() bool  { return m.device != nil }

// Alloc allocates bytes in the requested location.
func (m *Manager) Alloc(loc Location, bytes int64) (Buffer, error) {
	if bytes <= 0 {
		return Buffer{}, fmt.Errorf("%s alloc of %d bytes: %w", loc, bytes, ErrInvalidSize)
	}
	m.nextID++
	b := Buffer{
		loc:   loc,
		bytes: bytes,
		id:    m.nextID,
		owner: m.owner,
	}
	switch loc {
	case Host:
		b.host = make([]uint64, (bytes+7)/8)
		m.hostBytes += bytes
	case Device:
		if m.device == nil {
			return Buffer{}, fmt.Errorf("device alloc of %d bytes: %w", bytes, ErrNoDevice)
		}
		ptr, err := m.device.Alloc(bytes)
		if err != nil {
			return Buffer{}, fmt.Errorf("%s alloc of %d bytes: %w", m.device.Name(), bytes, err)
		}
		b.ptr = ptr
		m.deviceBytes += bytes
	default:
		return Buffer{}, fmt.Errorf("alloc: %w", ErrLocation)
	}
	m.live[b.id] = b
	return b, nil
}

// AllocFloat64s allocates room for n float64 values.
func (m *Manager) AllocFloat64s(loc Location, n int) (Buffer, error) {
	return m.Alloc(loc, int64(n)*8)
}

// Free releases b. Releasing a buffer twice, or a buffer that belongs to a
// different manager, is an error and leaves the manager untouched.
func (m *Manager) Free(b Buffer) error {
	if err := m.check(b); err != nil {
		return err
	}
	delete(m.live, b.id)
	switch b.loc {
	case Host:
		m.hostBytes -= b.bytes
	case Device:
		m.deviceBytes -= b.bytes
		if err := m.device.Free(b.ptr); err != nil {
			return fmt.Errorf("%s free: %w", m.device.Name(), err)
		}
	}
	return nil
}

// Owns reports whether b is a live allocation of this manager.
func (m *Manager) Owns(b Buffer) bool {
	return m.check(b) == nil
}

func (m *Manager) check(b Buffer) error {
	if b.IsZero() {
		return fmt.Errorf("zero buffer: %w", ErrForeignBuffer)
	}
	if b.owner != m.owner {
		return ErrForeignBuffer
	}
	if _, ok := m.live[b.id]; !ok {
		return ErrDoubleFree
	}
	return nil
}

// Live reports the number of live host and device allocations.
func (m *Manager) Live() (host, device int) {
	for _, b := range m.live {
		if b.loc == Host {
			host++
		} else {
			device++
		}
	}
	return host, device
}

// LiveBytes reports the bytes currently allocated in loc.
func (m *Manager) LiveBytes(loc Location) int64 {
	if loc == Device {
		return m.deviceBytes
	}
	return m.hostBytes
}

// ReleaseAll frees every live allocation exactly once. The first device
// error is returned but the remaining buffers are still released.
func (m *Manager) ReleaseAll() (int, error) {
	var err error
	n := 0
	for id, b := range m.live {
		delete(m.live, id)
		n++
		if b.loc == Device {
			if e := m.device.Free(b.ptr); e != nil && err == nil {
				err = fmt.Errorf("%s free: %w", m.device.Name(), e)
			}
		}
	}
	m.hostBytes = 0
	m.deviceBytes = 0
	return n, err
}

// Copy moves the first bytes of src into dst, choosing the transfer
// primitive from the two locations.
func (m *Manager) Copy(dst, src Buffer, bytes int64) error {
	if err := m.check(dst); err != nil {
		return fmt.Errorf("copy destination: %w", err)
	}
	if err := m.check(src); err != nil {
		return fmt.Errorf("copy source: %w", err)
	}
	if bytes > dst.bytes || bytes > src.bytes {
		return fmt.Errorf("copy %d bytes (src %d, dst %d): %w", bytes, src.bytes, dst.bytes, ErrSizeMismatch)
	}
	if bytes <= 0 {
		return nil
	}
	switch {
	case src.loc == Host && dst.loc == Host:
		copy(dst.rawBytes()[:bytes], src.rawBytes()[:bytes])
		return nil
	case src.loc == Host && dst.loc == Device:
		return m.h2d(dst.ptr, src.hostPtr(), bytes)
	case src.loc == Device && dst.loc == Host:
		return m.d2h(dst.hostPtr(), src.ptr, bytes)
	default:
		return m.d2d(dst.ptr, src.ptr, bytes)
	}
}

func (m *Manager) h2d(dst, src unsafe.Pointer, bytes int64) error {
	if err := m.device.CopyHostToDevice(dst, src, bytes); err != nil {
		return fmt.Errorf("%s host->device copy: %w", m.device.Name(), err)
	}
	return nil
}

func (m *Manager) d2h(dst, src unsafe.Pointer, bytes int64) error {
	if err := m.device.CopyDeviceToHost(dst, src, bytes); err != nil {
		return fmt.Errorf("%s device->host copy: %w", m.device.Name(), err)
	}
	return nil
}

func (m *Manager) d2d(dst, src unsafe.Pointer, bytes int64) error {
	if dc, ok := m.device.(DeviceCopier); ok {
		if err := dc.CopyDeviceToDevice(dst, src, bytes); err != nil {
			return fmt.Errorf("%s device->device copy: %w", m.device.Name(), err)
		}
		return nil
	}
	stage := make([]uint64, (bytes+7)/8)
	if err := m.d2h(unsafe.Pointer(&stage[0]), src, bytes); err != nil {
		return err
	}
	return m.h2d(dst, unsafe.Pointer(&stage[0]), bytes)
}

// Write copies src into the start of dst, whichever location dst lives in.
func Write[T Elem](m *Manager, dst Buffer, src []T) error {
	if err := m.check(dst); err != nil {
		return fmt.Errorf("write destination: %w", err)
	}
	if len(src) == 0 {
		return nil
	}
	bytes := int64(len(src)) * int64(unsafe.Sizeof(src[0]))
	if bytes > dst.bytes {
		return fmt.Errorf("write %d bytes into %d: %w", bytes, dst.bytes, ErrSizeMismatch)
	}
	raw := unsafe.Slice((*byte)(unsafe.Pointer(&src[0])), bytes)
	if dst.loc == Host {
		copy(dst.rawBytes(), raw)
		return nil
	}
	return m.h2d(dst.ptr, unsafe.Pointer(&raw[0]), bytes)
}

// Read copies the start of src into dst, whichever location src lives in.
func Read[T Elem](m *Manager, dst []T, src Buffer) error {
	if err := m.check(src); err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	if len(dst) == 0 {
		return nil
	}
	bytes := int64(len(dst)) * int64(unsafe.Sizeof(dst[0]))
	if bytes > src.bytes {
		return fmt.Errorf("read %d bytes from %d: %w", bytes, src.bytes, ErrSizeMismatch)
	}
	raw := unsafe.Slice((*byte)(unsafe.Pointer(&dst[0])), bytes)
	if src.loc == Host {
		copy(raw, src.rawBytes()[:bytes])
		return nil
	}
	return m.d2h(unsafe.Pointer(&raw[0]), src.ptr, bytes)
}
