package device

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/notargets/gocca"
)

// OCCAConfig configures the OCCA-backed device.
type OCCAConfig struct {
	// Props is the OCCA device property JSON, e.g. `{"mode": "OpenMP"}`.
	// Empty selects Serial mode.
	Props string
	// Limits overrides the capability limits. Zero fields are filled with
	// per-mode defaults; the gocca binding does not surface device
	// attributes, so callers with real hardware knowledge should set this.
	Limits Limits
}

// OCCA adapts a gocca device to the Device interface. Generated kernels
// declare their iteration space as two leading int arguments (group count
// and work-group size), so launches map onto plain RunWithArgs calls.
type OCCA struct {
	dev    *gocca.OCCADevice
	limits Limits
}

// NewOCCA creates an OCCA-backed device.
func NewOCCA(cfg OCCAConfig) (*OCCA, error) {
	props := cfg.Props
	if props == "" {
		props = `{"mode": "Serial"}`
	}
	dev, err := gocca.NewDevice(props)
	if err != nil {
		return nil, fmt.Errorf("failed to create OCCA device: %w", err)
	}
	limits := cfg.Limits
	def := defaultLimits(dev.Mode())
	if limits.MaxWorkGroupSize == 0 {
		limits.MaxWorkGroupSize = def.MaxWorkGroupSize
	}
	if limits.ComputeUnits == 0 {
		limits.ComputeUnits = def.ComputeUnits
	}
	return &OCCA{dev: dev, limits: limits}, nil
}

// defaultLimits supplies capability limits per OCCA mode. Host modes derive
// them from the machine; accelerator modes use conservative values typical
// of the hardware OCCA targets.
func defaultLimits(mode string) Limits {
	switch mode {
	case "Serial", "OpenMP":
		return Limits{
			MaxWorkGroupSize: 64 * HostSIMDWidth(),
			ComputeUnits:     runtime.NumCPU(),
		}
	default:
		return Limits{MaxWorkGroupSize: 256, ComputeUnits: 16}
	}
}

func (o *OCCA) Mode() string   { return o.dev.Mode() }
func (o *OCCA) Limits() Limits { return o.limits }

// HasScratch reports scratch support. OCCA has no kernel-argument local
// memory, so scratch is carved from global memory and handed to kernels as
// a plain pointer; Serial mode gets it too.
func (o *OCCA) HasScratch() bool { return true }

func (o *OCCA) Malloc(bytes int64, src unsafe.Pointer) (Memory, error) {
	if bytes <= 0 {
		return nil, fmt.Errorf("invalid allocation size %d", bytes)
	}
	mem := o.dev.Malloc(bytes, src, nil)
	if mem == nil {
		return nil, fmt.Errorf("device allocation of %d bytes failed", bytes)
	}
	return &occaMemory{mem: mem, bytes: bytes}, nil
}

func (o *OCCA) AllocScratch(bytes int64) (Scratch, error) {
	mem, err := o.Malloc(bytes, nil)
	if err != nil {
		return nil, err
	}
	return &occaScratch{mem: mem.(*occaMemory)}, nil
}

func (o *OCCA) BuildKernel(source, name string) (Kernel, error) {
	var knl *gocca.OCCAKernel
	var err error
	if o.dev.Mode() == "OpenMP" {
		// OCCA does not apply its default -O3 flag in OpenMP mode.
		props := gocca.JsonParse(`{"compiler_flags": "-O3"}`)
		defer props.Free()
		knl, err = o.dev.BuildKernelFromString(source, name, props)
	} else {
		knl, err = o.dev.BuildKernelFromString(source, name, nil)
	}
	if err != nil {
		return nil, err
	}
	if knl == nil {
		return nil, fmt.Errorf("kernel build returned nil for %s", name)
	}
	return &occaKernel{knl: knl, name: name, maxWG: o.limits.MaxWorkGroupSize}, nil
}

func (o *OCCA) Finish() { o.dev.Finish() }
func (o *OCCA) Free()   { o.dev.Free() }

type occaMemory struct {
	mem   *gocca.OCCAMemory
	bytes int64
}

func (m *occaMemory) Bytes() int64 { return m.bytes }

func (m *occaMemory) CopyFrom(src unsafe.Pointer, bytes int64) {
	m.mem.CopyFrom(src, bytes)
}

func (m *occaMemory) CopyTo(dst unsafe.Pointer, bytes int64) {
	m.mem.CopyTo(dst, bytes)
}

func (m *occaMemory) Free() { m.mem.Free() }

type occaScratch struct {
	mem *occaMemory
}

func (s *occaScratch) Bytes() int64     { return s.mem.bytes }
func (s *occaScratch) Arg() interface{} { return s.mem }
func (s *occaScratch) Free()            { s.mem.Free() }

type occaKernel struct {
	knl   *gocca.OCCAKernel
	name  string
	maxWG int
}

func (k *occaKernel) Name() string          { return k.name }
func (k *occaKernel) MaxWorkGroupSize() int { return k.maxWG }

// Launch prepends the group count and work-group size expected by the
// generated entry point, unwraps device memory handles, and runs the
// kernel.
func (k *occaKernel) Launch(global, local []int, args ...interface{}) error {
	groups, items, err := flattenGeometry(global, local)
	if err != nil {
		return fmt.Errorf("kernel %s: %w", k.name, err)
	}
	full := make([]interface{}, 0, len(args)+2)
	full = append(full, int32(groups), int32(items))
	for i, a := range args {
		switch v := a.(type) {
		case *occaMemory:
			full = append(full, v.mem)
		case *occaScratch:
			full = append(full, v.mem.mem)
		case Memory, Scratch:
			return fmt.Errorf("kernel %s: argument %d is not OCCA device memory", k.name, i)
		default:
			full = append(full, a)
		}
	}
	return k.knl.RunWithArgs(full...)
}

func (k *occaKernel) Free() { k.knl.Free() }

// flattenGeometry collapses a launch geometry to (group count, work-group
// size), validating divisibility.
func flattenGeometry(global, local []int) (groups, items int, err error) {
	items = 1
	for _, l := range local {
		if l <= 0 {
			return 0, 0, fmt.Errorf("invalid local size %v", local)
		}
		items *= l
	}
	total := 1
	for _, g := range global {
		if g <= 0 {
			return 0, 0, fmt.Errorf("invalid global size %v", global)
		}
		total *= g
	}
	if total%items != 0 {
		return 0, 0, fmt.Errorf("global size %v is not a multiple of local size %v", global, local)
	}
	return total / items, items, nil
}
