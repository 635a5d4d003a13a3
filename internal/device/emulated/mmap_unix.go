//go:build unix

package emulated

import (
	"fmt"

	"golang.org/x/sys/unix"
)

type region struct {
	data []byte
	size int64
}

func mapRegion(bytes int64) (region, error) {
	data, err := unix.Mmap(-1, 0, int(bytes), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return region{}, fmt.Errorf("mmap %d bytes: %w", bytes, err)
	}
	return region{data: data, size: bytes}, nil
}

func (r region) unmap() error {
	if err := unix.Munmap(r.data); err != nil {
		return fmt.Errorf("munmap: %w", err)
	}
	return nil
}
