//go:build !unix

package emulated

type region struct {
	data []byte
	size int64
}

func mapRegion(bytes int64) (region, error) {
	return region{data: make([]byte, bytes), size: bytes}, nil
}

func (region) unmap() error { return nil }
