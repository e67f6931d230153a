// Package device is the boundary to the device runtime: capability limits,
// buffer and scratch allocation, native kernel builds, and launches. The
// production implementation is backed by OCCA; Trace is an in-memory
// implementation used by tests and dry runs.
package device

import (
	"fmt"
	"unsafe"
)

// Limits describes the capability limits of the current device.
type Limits struct {
	MaxWorkGroupSize int
	ComputeUnits     int
}

// Memory is a device-resident buffer.
type Memory interface {
	// Bytes returns the allocation size.
	Bytes() int64
	// CopyFrom transfers bytes host to device.
	CopyFrom(src unsafe.Pointer, bytes int64)
	// CopyTo transfers bytes device to host.
	CopyTo(dst unsafe.Pointer, bytes int64)
	Free()
}

// Scratch is a work-group scratch allocation, requested in bytes.
type Scratch interface {
	Bytes() int64
	// Arg returns the value to pass in a kernel argument list.
	Arg() interface{}
	Free()
}

// Kernel is one compiled entry point of a loaded module.
type Kernel interface {
	Name() string
	// MaxWorkGroupSize is the device-imposed work-group cap for this
	// specific compiled kernel. Zero means the device-wide limit applies.
	MaxWorkGroupSize() int
	// Launch issues the kernel over the given geometry. The argument list
	// holds Memory handles, Scratch allocations and plain scalars, already
	// marshalled by the caller.
	Launch(global, local []int, args ...interface{}) error
	Free()
}

// Device is the runtime a dispatcher binds to.
type Device interface {
	// Mode names the execution backend, e.g. "OpenMP", "CUDA", "Trace".
	Mode() string
	Limits() Limits
	// HasScratch reports whether the mode supports work-group scratch
	// memory.
	HasScratch() bool
	Malloc(bytes int64, src unsafe.Pointer) (Memory, error)
	AllocScratch(bytes int64) (Scratch, error)
	// BuildKernel hands assembled source to the native compiler and loads
	// the named entry point.
	BuildKernel(source, name string) (Kernel, error)
	// Finish blocks until all queued device work has completed.
	Finish()
	Free()
}

// ErrUnsupported reports a feature requested on a mode that cannot
// support it.
func ErrUnsupported(feature, mode string) error {
	return fmt.Errorf("%s is not supported on %s devices", feature, mode)
}
