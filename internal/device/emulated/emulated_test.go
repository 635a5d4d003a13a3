package emulated

import (
	"errors"
	"testing"
	"unsafe"
)

func TestRoundTripAndStats(t *testing.T) {
	t.Parallel()
	d := New(0)
	a, err := d.Alloc(32)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	b, err := d.Alloc(32)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}

	in := []float64{1, 2, 3, 4}
	if err := d.CopyHostToDevice(a, unsafe.Pointer(&in[0]), 32); err != nil {
		t.Fatalf("CopyHostToDevice: %v", err)
	}
	if err := d.CopyDeviceToDevice(b, a, 32); err != nil {
		t.Fatalf("CopyDeviceToDevice: %v", err)
	}
	out := make([]float64, 4)
	if err := d.CopyDeviceToHost(unsafe.Pointer(&out[0]), b, 32); err != nil {
		t.Fatalf("CopyDeviceToHost: %v", err)
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], in[i])
		}
	}

	st := d.Stats()
	if st.Regions != 2 || st.BytesInUse != 64 {
		t.Fatalf("stats = %+v", st)
	}
	if st.HostToDevice != 1 || st.DeviceToHost != 1 || st.DeviceToDevice != 1 {
		t.Fatalf("transfer counts = %+v", st)
	}

	for _, p := range []unsafe.Pointer{a, b} {
		if err := d.Free(p); err != nil {
			t.Fatalf("Free: %v", err)
		}
	}
	if st := d.Stats(); st.Regions != 0 || st.BytesInUse != 0 {
		t.Fatalf("after free: %+v", st)
	}
}

func TestFreeUnknownPointer(t *testing.T) {
	t.Parallel()
	d := New(0)
	p, err := d.Alloc(8)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if err := d.Free(p); err != nil {
		t.Fatalf("Free: %v", err)
	}
	if err := d.Free(p); !errors.Is(err, ErrUnknownPointer) {
		t.Fatalf("second Free: got %v, want ErrUnknownPointer", err)
	}
}

func TestLimitAndBounds(t *testing.T) {
	t.Parallel()
	d := New(16)
	p, err := d.Alloc(16)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if _, err := d.Alloc(1); err == nil {
		t.Fatal("expected out-of-memory error")
	}
	if _, err := d.Alloc(0); err == nil {
		t.Fatal("expected size error")
	}
	buf := make([]byte, 32)
	if err := d.CopyHostToDevice(p, unsafe.Pointer(&buf[0]), 32); err == nil {
		t.Fatal("expected overflow error")
	}
	if err := d.Free(p); err != nil {
		t.Fatalf("Free: %v", err)
	}
}
