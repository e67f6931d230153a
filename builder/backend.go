package builder

import (
	"fmt"
	"strings"

	"github.com/mengjing120/kernelgen/device"
	"github.com/mengjing120/kernelgen/types"
)

// Backend selects the code generation target.
type Backend int

const (
	// BackendCPU targets the multi-core CPU-parallel runtime.
	BackendCPU Backend = iota + 1
	// BackendGPU targets GPU/accelerator runtimes.
	BackendGPU
)

func (b Backend) String() string {
	switch b {
	case BackendCPU:
		return "cpu-parallel"
	case BackendGPU:
		return "gpu"
	default:
		return "unknown"
	}
}

// SupportsScratch reports whether kernels generated for this backend may
// take work-group scratch memory parameters.
func (b Backend) SupportsScratch() bool { return b == BackendGPU }

// Translator renders one function into backend source text. It must be
// deterministic for identical input. The default translators render the
// declared signature from each parameter's KnownType and emit the body
// verbatim.
type Translator interface {
	Translate(fn *Function) (string, error)
}

// strategy bundles everything backend-specific: the preamble, the
// translator, and the entry-point fix-up.
type strategy struct {
	backend    Backend
	header     string
	translator Translator
}

func newStrategy(b Backend, custom Translator) (*strategy, error) {
	s := &strategy{backend: b, translator: custom}
	switch b {
	case BackendCPU:
		s.header = cpuPreamble()
	case BackendGPU:
		s.header = gpuPreamble
	default:
		return nil, fmt.Errorf("unknown backend %d", int(b))
	}
	if s.translator == nil {
		s.translator = cTranslator{}
	}
	return s, nil
}

// cTranslator is the default translator for both backends: C signature
// synthesized from the declared parameter types, body emitted as written.
type cTranslator struct{}

func (cTranslator) Translate(fn *Function) (string, error) {
	if fn.Name == "" {
		return "", fmt.Errorf("cannot translate unnamed function")
	}
	ret := fn.Return
	if ret == "" {
		ret = "void"
	}
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		if p.Name == "" || p.Type.CType == "" {
			return "", fmt.Errorf("function %s: parameter %d is incomplete", fn.Name, i)
		}
		params[i] = p.Type.CType + " " + p.Name
	}
	var sb strings.Builder
	sb.WriteString("WITHIN_KERNEL ")
	sb.WriteString(ret)
	sb.WriteString(" ")
	sb.WriteString(fn.Name)
	sb.WriteString("(")
	sb.WriteString(strings.Join(params, ", "))
	sb.WriteString(")\n{\n")
	sb.WriteString(strings.TrimRight(fn.Body, "\n"))
	sb.WriteString("\n}\n")
	return sb.String(), nil
}

// markEntry turns the last-registered unit into a launchable kernel entry
// point. The translator does not know which unit is the entry, so the
// first line is rewritten here: the WITHIN_KERNEL qualifier becomes
// @kernel, two leading launch-geometry arguments are injected, and the
// body is wrapped in the @outer/@inner iteration the runtime expects. The
// preamble defines GID_0, LID_0, LDIM_0 and GDIM_0 in terms of the loop
// variables introduced here.
func (s *strategy) markEntry(code string) string {
	lines := strings.SplitN(code, "\n", 2)
	first := lines[0]
	rest := ""
	if len(lines) > 1 {
		rest = lines[1]
	}
	first = strings.Replace(first, "WITHIN_KERNEL ", "KERNEL ", 1)
	if strings.Contains(first, "()") {
		first = strings.Replace(first, "()",
			"(const int _launch_groups, const int _launch_items)", 1)
	} else {
		first = strings.Replace(first, "(",
			"(const int _launch_groups, const int _launch_items, ", 1)
	}
	var sb strings.Builder
	sb.WriteString(first)
	sb.WriteString("\n{\n")
	sb.WriteString("for (int _group = 0; _group < _launch_groups; ++_group; @outer) {\n")
	sb.WriteString("for (int _item = 0; _item < _launch_items; ++_item; @inner)\n")
	sb.WriteString(rest)
	sb.WriteString("}\n}\n")
	return sb.String()
}

// gpuPreamble is the fixed header for generated GPU compilation units. It
// supplies the qualifier macros the translator emits, the work-item index
// names kernel bodies use, and a few conveniences the math allow-list
// assumes.
const gpuPreamble = `#define KERNEL @kernel
#define WITHIN_KERNEL
#define GLOBAL_MEM
#define LOCAL_MEM

#define LID_0 _item
#define GID_0 ((_group * _launch_items) + _item)
#define LDIM_0 _launch_items
#define GDIM_0 (_launch_groups * _launch_items)

#define local_barrier()

#define max(x, y) fmax((double)(x), (double)(y))
#define min(x, y) fmin((double)(x), (double)(y))
#define pi 3.141592653589793
`

// cpuPreamble is the fixed header for CPU-parallel compilation units. The
// SIMD width define reflects the host that generates the code; generated
// loops use it as a blocking hint.
func cpuPreamble() string {
	return fmt.Sprintf(`#define KERNEL @kernel
#define WITHIN_KERNEL
#define GLOBAL_MEM
#define LOCAL_MEM

#define LID_0 _item
#define GID_0 ((_group * _launch_items) + _item)
#define LDIM_0 _launch_items
#define GDIM_0 (_launch_groups * _launch_items)

#define local_barrier()

#define SIMD_WIDTH %d
#define max(x, y) fmax((double)(x), (double)(y))
#define min(x, y) fmin((double)(x), (double)(y))
#define pi 3.141592653589793
`, device.HostSIMDWidth())
}

// rewriteForPrecision applies the precision policy to an assembled
// compilation unit. Only the GPU path rewrites source text; the CPU
// backend keeps double and relies on the host compiler.
func (s *strategy) rewriteForPrecision(code string, p types.Precision) string {
	if s.backend != BackendGPU {
		return code
	}
	return p.RewriteSource(code)
}
