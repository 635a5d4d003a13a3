//go:build cuda

package native

/*
#cgo LDFLAGS: -lcudart

// Forward declarations so the CUDA headers are not needed at compile time.
// The linker still requires libcudart when building with the cuda tag.
typedef int cudaError_t;

extern const char* cudaGetErrorString(cudaError_t err);
extern cudaError_t cudaGetDeviceCount(int* count);
extern cudaError_t cudaSetDevice(int device);
extern cudaError_t cudaMalloc(void** ptr, unsigned long long size);
extern cudaError_t cudaFree(void* ptr);
extern cudaError_t cudaMemcpy(void* dst, const void* src, unsigned long long size, int kind);

#define ORBITAL_CUDA_MEMCPY_HOST_TO_DEVICE 1
#define ORBITAL_CUDA_MEMCPY_DEVICE_TO_HOST 2
#define ORBITAL_CUDA_MEMCPY_DEVICE_TO_DEVICE 3

static const char* orbitalCudaGetErrorString(cudaError_t err) {
	return cudaGetErrorString(err);
}

static int orbitalCudaGetDeviceCount(int* out) {
	return (int)cudaGetDeviceCount(out);
}

static int orbitalCudaSetDevice(int device) {
	return (int)cudaSetDevice(device);
}

static int orbitalCudaMalloc(void** ptr, unsigned long long size) {
	return (int)cudaMalloc(ptr, size);
}

static int orbitalCudaFree(void* ptr) {
	return (int)cudaFree(ptr);
}

static int orbitalCudaMemcpy(void* dst, const void* src, unsigned long long size, int kind) {
	return (int)cudaMemcpy(dst, src, size, kind);
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

func DeviceCount() (int, error) {
	var count C.int
	if err := cudaErr(C.orbitalCudaGetDeviceCount(&count)); err != nil {
		return 0, err
	}
	return int(count), nil
}

func SetDevice(ordinal int) error {
	return cudaErr(C.orbitalCudaSetDevice(C.int(ordinal)))
}

func Malloc(bytes int64) (unsafe.Pointer, error) {
	if bytes <= 0 {
		return nil, fmt.Errorf("device alloc size must be > 0")
	}
	var ptr unsafe.Pointer
	if err := cudaErr(C.orbitalCudaMalloc((*unsafe.Pointer)(&ptr), C.ulonglong(bytes))); err != nil {
		return nil, err
	}
	return ptr, nil
}

func Free(ptr unsafe.Pointer) error {
	if ptr == nil {
		return nil
	}
	return cudaErr(C.orbitalCudaFree(ptr))
}

func MemcpyH2D(dst, src unsafe.Pointer, bytes int64) error {
	return memcpy(dst, src, bytes, C.ORBITAL_CUDA_MEMCPY_HOST_TO_DEVICE)
}

func MemcpyD2H(dst, src unsafe.Pointer, bytes int64) error {
	return memcpy(dst, src, bytes, C.ORBITAL_CUDA_MEMCPY_DEVICE_TO_HOST)
}

func MemcpyD2D(dst, src unsafe.Pointer, bytes int64) error {
	return memcpy(dst, src, bytes, C.ORBITAL_CUDA_MEMCPY_DEVICE_TO_DEVICE)
}

func memcpy(dst, src unsafe.Pointer, bytes int64, kind C.int) error {
	if bytes <= 0 {
		return nil
	}
	return cudaErr(C.orbitalCudaMemcpy(dst, src, C.ulonglong(bytes), kind))
}

func cudaErr(code C.int) error {
	if code == 0 {
		return nil
	}
	msg := C.GoString(C.orbitalCudaGetErrorString(C.cudaError_t(code)))
	return fmt.Errorf("cuda runtime error %d: %s", int(code), msg)
}
