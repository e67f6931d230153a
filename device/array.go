package device

import (
	"fmt"
	"unsafe"

	"github.com/mengjing120/kernelgen/types"
)

// Array is a device-resident buffer with element bookkeeping. It is the
// container kernel call sites pass for buffer parameters; the dispatcher
// uses its length to infer the logical launch size.
type Array struct {
	mem   Memory
	n     int
	dtype types.DataType
}

// NewFloat64Array allocates a device array initialized from host data.
func NewFloat64Array(dev Device, host []float64) (*Array, error) {
	if len(host) == 0 {
		return nil, fmt.Errorf("cannot allocate empty array")
	}
	mem, err := dev.Malloc(int64(len(host)*8), unsafe.Pointer(&host[0]))
	if err != nil {
		return nil, err
	}
	return &Array{mem: mem, n: len(host), dtype: types.Float64}, nil
}

// NewFloat32Array allocates a device array initialized from host data.
func NewFloat32Array(dev Device, host []float32) (*Array, error) {
	if len(host) == 0 {
		return nil, fmt.Errorf("cannot allocate empty array")
	}
	mem, err := dev.Malloc(int64(len(host)*4), unsafe.Pointer(&host[0]))
	if err != nil {
		return nil, err
	}
	return &Array{mem: mem, n: len(host), dtype: types.Float32}, nil
}

// NewInt32Array allocates a device array initialized from host data.
func NewInt32Array(dev Device, host []int32) (*Array, error) {
	if len(host) == 0 {
		return nil, fmt.Errorf("cannot allocate empty array")
	}
	mem, err := dev.Malloc(int64(len(host)*4), unsafe.Pointer(&host[0]))
	if err != nil {
		return nil, err
	}
	return &Array{mem: mem, n: len(host), dtype: types.INT32}, nil
}

// NewEmptyArray allocates an uninitialized device array of n elements.
func NewEmptyArray(dev Device, dtype types.DataType, n int) (*Array, error) {
	if n <= 0 {
		return nil, fmt.Errorf("cannot allocate empty array")
	}
	mem, err := dev.Malloc(int64(n)*types.SizeOfType(dtype), nil)
	if err != nil {
		return nil, err
	}
	return &Array{mem: mem, n: n, dtype: dtype}, nil
}

// Len returns the number of elements.
func (a *Array) Len() int { return a.n }

// DType returns the element type.
func (a *Array) DType() types.DataType { return a.dtype }

// Memory returns the device-side handle.
func (a *Array) Memory() Memory { return a.mem }

// ReadFloat64 copies the array back to host. dst must hold Len elements.
func (a *Array) ReadFloat64(dst []float64) error {
	if a.dtype != types.Float64 {
		return fmt.Errorf("array holds %s elements, not double", a.dtype.CName())
	}
	if len(dst) < a.n {
		return fmt.Errorf("destination holds %d elements, need %d", len(dst), a.n)
	}
	a.mem.CopyTo(unsafe.Pointer(&dst[0]), int64(a.n*8))
	return nil
}

// ReadFloat32 copies the array back to host. dst must hold Len elements.
func (a *Array) ReadFloat32(dst []float32) error {
	if a.dtype != types.Float32 {
		return fmt.Errorf("array holds %s elements, not float", a.dtype.CName())
	}
	if len(dst) < a.n {
		return fmt.Errorf("destination holds %d elements, need %d", len(dst), a.n)
	}
	a.mem.CopyTo(unsafe.Pointer(&dst[0]), int64(a.n*4))
	return nil
}

// WriteFloat64 refreshes the device array from host data.
func (a *Array) WriteFloat64(src []float64) error {
	if a.dtype != types.Float64 {
		return fmt.Errorf("array holds %s elements, not double", a.dtype.CName())
	}
	if len(src) < a.n {
		return fmt.Errorf("source holds %d elements, need %d", len(src), a.n)
	}
	a.mem.CopyFrom(unsafe.Pointer(&src[0]), int64(a.n*8))
	return nil
}

// Free releases the device allocation.
func (a *Array) Free() { a.mem.Free() }
