package memory

import "unsafe"

// Device is the accelerator boundary: a raw allocator and a copy engine.
// Pointers returned by Alloc are opaque to everything but the Device.
type Device interface {
	Name() string
	Alloc(bytes int64) (unsafe.Pointer, error)
	Free(ptr unsafe.Pointer) error
	CopyHostToDevice(dst, src unsafe.Pointer, bytes int64) error
	CopyDeviceToHost(dst, src unsafe.Pointer, bytes int64) error
}

// DeviceCopier is an optional extension of Device for copies that stay in
// device memory. Without it the Manager stages through a host buffer.
type DeviceCopier interface {
	CopyDeviceToDevice(dst, src unsafe.Pointer, bytes int64) error
}
