//go:build cuda

// Package cuda adapts the CUDA runtime to memory.Device.
package cuda

import (
	"fmt"
	"unsafe"

	"github.com/samcharles93/orbital/internal/device/cuda/native"
)

type Device struct {
	ordinal int
}

// New selects the CUDA device with the given ordinal.
func New(ordinal int) (*Device, error) {
	count, err := native.DeviceCount()
	if err != nil {
		return nil, fmt.Errorf("cuda device count: %w", err)
	}
	if ordinal < 0 || ordinal >= count {
		return nil, fmt.Errorf("cuda device %d not present (%d available)", ordinal, count)
	}
	if err := native.SetDevice(ordinal); err != nil {
		return nil, fmt.Errorf("cuda set device %d: %w", ordinal, err)
	}
	return &Device{ordinal: ordinal}, nil
}

func (d *Device) Name() string { return fmt.Sprintf("cuda:%d", d.ordinal) }

func (d *Device) Alloc(bytes int64) (unsafe.Pointer, error) { return native.Malloc(bytes) }
func (d *Device) Free(ptr unsafe.Pointer) error             { return native.Free(ptr) }

func (d *Device) CopyHostToDevice(dst, src unsafe.Pointer, bytes int64) error {
	return native.MemcpyH2D(dst, src, bytes)
}

func (d *Device) CopyDeviceToHost(dst, src unsafe.Pointer, bytes int64) error {
	return native.MemcpyD2H(dst, src, bytes)
}

func (d *Device) CopyDeviceToDevice(dst, src unsafe.Pointer, bytes int64) error {
	return native.MemcpyD2D(dst, src, bytes)
}
