package device

import (
	"fmt"
	"unsafe"
)

// TraceConfig configures a Trace device.
type TraceConfig struct {
	// Limits overrides the advertised capability limits. Zero fields get
	// defaults of 128 max work-group size and 20 compute units.
	Limits Limits
	// NoScratch makes AllocScratch fail, for exercising the unsupported
	// configuration path.
	NoScratch bool
	// KernelMaxWG is the per-kernel work-group cap reported by built
	// kernels. Zero means the device limit.
	KernelMaxWG int
	// BuildErr, when set, is returned by every BuildKernel call.
	BuildErr error
}

// TraceBuild records one native build request.
type TraceBuild struct {
	Name   string
	Source string
}

// TraceLaunch records one kernel launch.
type TraceLaunch struct {
	Kernel string
	Global []int
	Local  []int
	Args   []interface{}
}

// Trace is an in-memory Device that compiles nothing and records every
// build, allocation and launch. Tests inspect the records; it also serves
// as a dry-run target for generated source.
type Trace struct {
	cfg      TraceConfig
	Builds   []TraceBuild
	Launches []TraceLaunch
	Finishes int
}

// NewTrace creates a Trace device.
func NewTrace(cfg TraceConfig) *Trace {
	if cfg.Limits.MaxWorkGroupSize == 0 {
		cfg.Limits.MaxWorkGroupSize = 128
	}
	if cfg.Limits.ComputeUnits == 0 {
		cfg.Limits.ComputeUnits = 20
	}
	return &Trace{cfg: cfg}
}

func (t *Trace) Mode() string     { return "Trace" }
func (t *Trace) Limits() Limits   { return t.cfg.Limits }
func (t *Trace) HasScratch() bool { return !t.cfg.NoScratch }

func (t *Trace) Malloc(bytes int64, src unsafe.Pointer) (Memory, error) {
	if bytes <= 0 {
		return nil, fmt.Errorf("invalid allocation size %d", bytes)
	}
	m := &traceMemory{data: make([]byte, bytes)}
	if src != nil {
		m.CopyFrom(src, bytes)
	}
	return m, nil
}

func (t *Trace) AllocScratch(bytes int64) (Scratch, error) {
	if t.cfg.NoScratch {
		return nil, ErrUnsupported("local scratch memory", t.Mode())
	}
	if bytes <= 0 {
		return nil, fmt.Errorf("invalid scratch size %d", bytes)
	}
	return &traceScratch{bytes: bytes}, nil
}

func (t *Trace) BuildKernel(source, name string) (Kernel, error) {
	if t.cfg.BuildErr != nil {
		return nil, t.cfg.BuildErr
	}
	t.Builds = append(t.Builds, TraceBuild{Name: name, Source: source})
	maxWG := t.cfg.KernelMaxWG
	if maxWG == 0 {
		maxWG = t.cfg.Limits.MaxWorkGroupSize
	}
	return &traceKernel{dev: t, name: name, maxWG: maxWG}, nil
}

func (t *Trace) Finish() { t.Finishes++ }
func (t *Trace) Free()   {}

// LastBuild returns the most recent build request, or nil.
func (t *Trace) LastBuild() *TraceBuild {
	if len(t.Builds) == 0 {
		return nil
	}
	return &t.Builds[len(t.Builds)-1]
}

// LastLaunch returns the most recent launch record, or nil.
func (t *Trace) LastLaunch() *TraceLaunch {
	if len(t.Launches) == 0 {
		return nil
	}
	return &t.Launches[len(t.Launches)-1]
}

// traceMemory keeps a host mirror of the buffer so Array round-trips work
// without real hardware.
type traceMemory struct {
	data []byte
}

func (m *traceMemory) Bytes() int64 { return int64(len(m.data)) }

func (m *traceMemory) CopyFrom(src unsafe.Pointer, bytes int64) {
	copy(m.data[:bytes], unsafe.Slice((*byte)(src), bytes))
}

func (m *traceMemory) CopyTo(dst unsafe.Pointer, bytes int64) {
	copy(unsafe.Slice((*byte)(dst), bytes), m.data[:bytes])
}

func (m *traceMemory) Free() {}

type traceScratch struct {
	bytes int64
}

func (s *traceScratch) Bytes() int64     { return s.bytes }
func (s *traceScratch) Arg() interface{} { return s }
func (s *traceScratch) Free()            {}

type traceKernel struct {
	dev   *Trace
	name  string
	maxWG int
}

func (k *traceKernel) Name() string          { return k.name }
func (k *traceKernel) MaxWorkGroupSize() int { return k.maxWG }

func (k *traceKernel) Launch(global, local []int, args ...interface{}) error {
	g := append([]int(nil), global...)
	l := append([]int(nil), local...)
	a := append([]interface{}(nil), args...)
	k.dev.Launches = append(k.dev.Launches, TraceLaunch{
		Kernel: k.name,
		Global: g,
		Local:  l,
		Args:   a,
	})
	return nil
}

func (k *traceKernel) Free() {}
