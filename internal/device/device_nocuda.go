//go:build !cuda

package device

import (
	"fmt"

	"github.com/samcharles93/orbital/pkg/memory"
)

func Has(name string) bool {
	return name == Host || name == Emulated
}

func newCUDA() (memory.Device, error) {
	return nil, fmt.Errorf("cuda device is not available in this build")
}
