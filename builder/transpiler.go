package builder

import (
	"fmt"
	"strings"

	"github.com/mengjing120/kernelgen/device"
	"github.com/mengjing120/kernelgen/types"
)

// codeBlock is one generated code unit. Identity is the originating
// function pointer (or, for raw blocks, the code text itself), never the
// generated text: the same function re-registered is the same unit.
type codeBlock struct {
	key  interface{}
	code string
}

// Config configures a Transpiler.
type Config struct {
	// Backend selects the target; default is BackendGPU.
	Backend Backend
	// Precision is the floating point policy. It must not change between
	// the first Add and Compile.
	Precision types.Precision
	// Translator overrides the default C translator.
	Translator Translator
}

// Transpiler collects the transitive closure of functions a kernel calls,
// generates code per unique function exactly once in dependency order, and
// assembles the complete compilation unit. It is not safe for concurrent
// use; callers sharing one instance must serialize access.
type Transpiler struct {
	backend Backend
	prec    types.Precision
	strat   *strategy

	blocks  []codeBlock
	indexed map[interface{}]bool
	// visiting guards against call cycles during recursive registration.
	visiting map[*Function]bool

	matrices []staticMatrix

	// Source holds the exact text last handed to the native build, for
	// diagnostics.
	Source string
}

// NewTranspiler creates a Transpiler for the configured backend.
func NewTranspiler(cfg Config) (*Transpiler, error) {
	backend := cfg.Backend
	if backend == 0 {
		backend = BackendGPU
	}
	strat, err := newStrategy(backend, cfg.Translator)
	if err != nil {
		return nil, err
	}
	return &Transpiler{
		backend:  backend,
		prec:     cfg.Precision,
		strat:    strat,
		indexed:  make(map[interface{}]bool),
		visiting: make(map[*Function]bool),
	}, nil
}

// Backend returns the configured code generation target.
func (tp *Transpiler) Backend() Backend { return tp.backend }

// Add registers fn and, transitively, every non-builtin function it calls,
// each exactly once, dependencies before dependents. Adding a function
// twice is a no-op.
func (tp *Transpiler) Add(fn *Function) error {
	if tp.indexed[interface{}(fn)] {
		return nil
	}
	if tp.visiting[fn] {
		return fmt.Errorf("call cycle detected involving function %s", fn.Name)
	}
	tp.visiting[fn] = true
	defer delete(tp.visiting, fn)

	deps, err := fn.dependencies()
	if err != nil {
		return err
	}
	for _, dep := range deps {
		if err := tp.Add(dep); err != nil {
			return err
		}
	}

	code, err := tp.strat.translator.Translate(fn)
	if err != nil {
		return fmt.Errorf("failed to translate %s: %w", fn.Name, err)
	}
	tp.blocks = append(tp.blocks, codeBlock{key: fn, code: code})
	tp.indexed[interface{}(fn)] = true
	return nil
}

// AddCode appends a raw code block. Duplicate text is a no-op.
func (tp *Transpiler) AddCode(code string) {
	if tp.indexed[code] {
		return
	}
	tp.blocks = append(tp.blocks, codeBlock{key: code, code: code})
	tp.indexed[code] = true
}

// MarkKernelEntry rewrites the last-registered unit into a launchable
// entry point. Call it once, after the entry function has been added.
func (tp *Transpiler) MarkKernelEntry() error {
	if len(tp.blocks) == 0 {
		return fmt.Errorf("no code units registered")
	}
	last := &tp.blocks[len(tp.blocks)-1]
	last.code = tp.strat.markEntry(last.code)
	return nil
}

// Units returns the names of the registered code units in registration
// order. Raw code blocks appear as "<raw>".
func (tp *Transpiler) Units() []string {
	names := make([]string, len(tp.blocks))
	for i, b := range tp.blocks {
		if fn, ok := b.key.(*Function); ok {
			names[i] = fn.Name
		} else {
			names[i] = "<raw>"
		}
	}
	return names
}

// GetCode returns the assembled compilation unit: preamble, embedded
// static matrices, then every registered unit in registration order.
func (tp *Transpiler) GetCode() string {
	parts := make([]string, 0, len(tp.blocks)+2)
	parts = append(parts, tp.strat.header)
	if m := tp.formatStaticMatrices(); m != "" {
		parts = append(parts, m)
	}
	for _, b := range tp.blocks {
		parts = append(parts, b.code)
	}
	return strings.Join(parts, "\n")
}

// Compile applies the precision policy to the assembled unit, hands it to
// the native build, and returns the loaded entry point. A build failure is
// fatal and carries the full generated source.
func (tp *Transpiler) Compile(dev device.Device, entry string) (device.Kernel, error) {
	src := tp.strat.rewriteForPrecision(tp.GetCode(), tp.prec)
	tp.Source = src
	knl, err := dev.BuildKernel(src, entry)
	if err != nil {
		return nil, &BuildError{Entry: entry, Source: src, Err: err}
	}
	return knl, nil
}

// BuildError reports a native build failure with the generated source
// attached for diagnosis.
type BuildError struct {
	Entry  string
	Source string
	Err    error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("failed to build kernel %s: %v\ngenerated source:\n%s",
		e.Entry, e.Err, e.Source)
}

func (e *BuildError) Unwrap() error { return e.Err }
