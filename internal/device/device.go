// Package device resolves device names from flags and config into a
// memory.Device.
package device

import (
	"fmt"
	"strings"

	"github.com/samcharles93/orbital/internal/device/emulated"
	"github.com/samcharles93/orbital/pkg/memory"
)

const (
	Host     = "host"
	Emulated = "emulated"
	CUDA     = "cuda"
	Auto     = "auto"
)

func Normalize(name string) (string, error) {
	dev := strings.ToLower(strings.TrimSpace(name))
	if dev == "" {
		return Auto, nil
	}
	switch dev {
	case Host, Emulated, CUDA, Auto:
		return dev, nil
	default:
		return "", fmt.Errorf("unknown device %q (expected auto, host, emulated, or cuda)", dev)
	}
}

// Open returns the device for name. Host yields a nil device; auto picks
// CUDA when this build and machine have it, host otherwise.
func Open(name string) (memory.Device, error) {
	dev, err := Normalize(name)
	if err != nil {
		return nil, err
	}
	switch dev {
	case Host:
		return nil, nil
	case Emulated:
		return emulated.New(0), nil
	case CUDA:
		return newCUDA()
	default:
		if Has(CUDA) {
			if d, err := newCUDA(); err == nil {
				return d, nil
			}
		}
		return nil, nil
	}
}

// Available returns a comma-separated list of the devices this build offers.
func Available() string {
	entries := []string{Host, Emulated}
	if Has(CUDA) {
		entries = append(entries, CUDA)
	}
	return strings.Join(entries, ",")
}

// Describe names the device a context would run on.
func Describe(d memory.Device) string {
	if d == nil {
		return Host
	}
	return d.Name()
}
