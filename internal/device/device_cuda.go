//go:build cuda

package device

import (
	"github.com/samcharles93/orbital/internal/device/cuda"
	"github.com/samcharles93/orbital/pkg/memory"
)

func Has(name string) bool {
	switch name {
	case CUDA:
		return true
	default:
		return name == Host || name == Emulated
	}
}

func newCUDA() (memory.Device, error) {
	return cuda.New(0)
}
