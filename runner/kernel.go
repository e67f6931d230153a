package runner

import (
	"fmt"

	"github.com/mengjing120/kernelgen/builder"
	"github.com/mengjing120/kernelgen/device"
	"github.com/mengjing120/kernelgen/types"
)

// Kernel binds one function to a device as a launchable GPU kernel. The
// constructor drives the code generator over the function's call closure,
// compiles and loads the result, derives precision-adjusted parameter type
// info once, and records the kernel-specific work-group cap. Every Call
// recomputes geometry, marshals the live arguments, launches, and blocks
// until the device has finished.
type Kernel struct {
	Name string

	dev   device.Device
	tp    *builder.Transpiler
	fn    *builder.Function
	args  []types.KnownType
	knl   device.Kernel
	maxWG int
}

// NewKernel generates, compiles and loads fn for the device under the
// given precision policy.
func NewKernel(dev device.Device, fn *builder.Function, prec types.Precision) (*Kernel, error) {
	tp, err := builder.NewTranspiler(builder.Config{
		Backend:   builder.BackendGPU,
		Precision: prec,
	})
	if err != nil {
		return nil, err
	}
	if err := tp.Add(fn); err != nil {
		return nil, err
	}
	if err := tp.MarkKernelEntry(); err != nil {
		return nil, err
	}
	knl, err := tp.Compile(dev, fn.Name)
	if err != nil {
		return nil, err
	}

	// Parameter type info is derived once, precision-adjusted, and reused
	// for every call.
	argInfo := make([]types.KnownType, len(fn.Params))
	for i, p := range fn.Params {
		argInfo[i] = prec.Adjust(p.Type)
	}

	maxWG := knl.MaxWorkGroupSize()
	if maxWG == 0 {
		maxWG = dev.Limits().MaxWorkGroupSize
	}

	return &Kernel{
		Name:  fn.Name,
		dev:   dev,
		tp:    tp,
		fn:    fn,
		args:  argInfo,
		knl:   knl,
		maxWG: maxWG,
	}, nil
}

// Source returns the exact compilation unit that was built, for
// diagnostics.
func (k *Kernel) Source() string { return k.tp.Source }

// MaxWorkGroupSize returns the work-group cap recorded for this compiled
// kernel.
func (k *Kernel) MaxWorkGroupSize() int { return k.maxWG }

// Call launches the kernel over a geometry computed from the element count
// of the first argument, which must be a device array.
func (k *Kernel) Call(args ...interface{}) error {
	return k.call(nil, nil, args)
}

// CallWithSizes launches with explicit geometry overrides. A nil global
// size falls back to the first argument's element count; a nil local size
// is computed by the occupancy heuristic. When local is given, the global
// size is rounded up to the smallest multiple of the local size covering
// the item count.
func (k *Kernel) CallWithSizes(global, local []int, args ...interface{}) error {
	return k.call(global, local, args)
}

func (k *Kernel) call(global, local []int, args []interface{}) error {
	if len(args) != len(k.args) {
		return fmt.Errorf("kernel %s expects %d arguments, got %d",
			k.Name, len(k.args), len(args))
	}

	// Logical item count: product of the requested global size, or the
	// element count of the first argument.
	var n int
	if len(global) > 0 {
		n = product(global)
		if n <= 0 {
			return fmt.Errorf("kernel %s: invalid global size %v", k.Name, global)
		}
	} else {
		arr, ok := firstArray(args)
		if !ok {
			return fmt.Errorf(
				"kernel %s: cannot infer launch size, first argument must be a device array when no global size is given",
				k.Name)
		}
		n = arr.Len()
	}

	if len(local) > 0 {
		ls := product(local)
		if ls <= 0 {
			return fmt.Errorf("kernel %s: invalid local size %v", k.Name, local)
		}
		gs := ((n + ls - 1) / ls) * ls
		global = []int{gs}
	} else {
		gs, ls := Splay(k.dev.Limits(), n, k.maxWG)
		global, local = []int{gs}, []int{ls}
	}
	workGroupSize := product(local)

	marshalled := make([]interface{}, len(args))
	for i, a := range args {
		m, err := k.marshalArg(a, k.args[i], workGroupSize)
		if err != nil {
			return fmt.Errorf("kernel %s argument %d (%s): %w",
				k.Name, i, k.fn.Params[i].Name, err)
		}
		marshalled[i] = m
	}

	if err := k.knl.Launch(global, local, marshalled...); err != nil {
		return fmt.Errorf("kernel %s launch failed: %w", k.Name, err)
	}
	k.dev.Finish()
	return nil
}

// marshalArg converts one call-site argument into the form the compiled
// kernel expects.
func (k *Kernel) marshalArg(a interface{}, kt types.KnownType, workGroupSize int) (interface{}, error) {
	switch v := a.(type) {
	case *device.Array:
		if kt.Kind != types.Buffer {
			return nil, fmt.Errorf("declared %s, got device array", kt.Kind)
		}
		return v.Memory(), nil
	case *LocalMem:
		if kt.Kind != types.Local {
			return nil, fmt.Errorf("declared %s, got local memory descriptor", kt.Kind)
		}
		s, err := v.Get(kt.Base, workGroupSize)
		if err != nil {
			return nil, err
		}
		return s.Arg(), nil
	default:
		if kt.Kind != types.Scalar {
			return nil, fmt.Errorf("declared %s, got %T", kt.Kind, a)
		}
		return marshalScalar(v, kt)
	}
}

// marshalScalar converts a Go numeric value to the precision-adjusted
// declared width so host and device agree on the bit pattern.
func marshalScalar(v interface{}, kt types.KnownType) (interface{}, error) {
	dt, err := types.FromCName(kt.Base)
	if err != nil {
		return nil, err
	}
	switch dt {
	case types.Float32:
		f, ok := asFloat(v)
		if !ok {
			return nil, fmt.Errorf("cannot pass %T as float", v)
		}
		return float32(f), nil
	case types.Float64:
		f, ok := asFloat(v)
		if !ok {
			return nil, fmt.Errorf("cannot pass %T as double", v)
		}
		return f, nil
	case types.INT32:
		i, ok := asInt(v)
		if !ok {
			return nil, fmt.Errorf("cannot pass %T as int", v)
		}
		return int32(i), nil
	case types.INT64:
		i, ok := asInt(v)
		if !ok {
			return nil, fmt.Errorf("cannot pass %T as long", v)
		}
		return i, nil
	case types.UINT32:
		i, ok := asInt(v)
		if !ok {
			return nil, fmt.Errorf("cannot pass %T as uint", v)
		}
		return uint32(i), nil
	case types.UINT64:
		i, ok := asInt(v)
		if !ok {
			return nil, fmt.Errorf("cannot pass %T as ulong", v)
		}
		return uint64(i), nil
	}
	return nil, fmt.Errorf("unsupported scalar type %q", kt.Base)
}

func asFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}

func asInt(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint32:
		return int64(x), true
	case uint64:
		return int64(x), true
	default:
		return 0, false
	}
}

func firstArray(args []interface{}) (*device.Array, bool) {
	if len(args) == 0 {
		return nil, false
	}
	arr, ok := args[0].(*device.Array)
	return arr, ok
}

func product(dims []int) int {
	p := 1
	for _, d := range dims {
		p *= d
	}
	return p
}

// Free releases the compiled kernel.
func (k *Kernel) Free() { k.knl.Free() }
