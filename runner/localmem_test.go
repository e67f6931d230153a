package runner

import (
	"strings"
	"testing"

	"github.com/mengjing120/kernelgen/builder"
	"github.com/mengjing120/kernelgen/device"
	"github.com/mengjing120/kernelgen/types"
)

func TestLocalMemSizing(t *testing.T) {
	dev := device.NewTrace(device.TraceConfig{})
	lm, err := NewLocalMem(dev, 2)
	if err != nil {
		t.Fatalf("NewLocalMem failed: %v", err)
	}

	// sizeof(double) * 2 * 128
	s, err := lm.Get("double", 128)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if s.Bytes() != 2048 {
		t.Errorf("scratch size = %d, want 2048", s.Bytes())
	}
}

func TestLocalMemMemoization(t *testing.T) {
	dev := device.NewTrace(device.TraceConfig{})
	lm, err := NewLocalMem(dev, 1)
	if err != nil {
		t.Fatalf("NewLocalMem failed: %v", err)
	}

	a, err := lm.Get("float", 64)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	b, err := lm.Get("float", 64)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if a != b {
		t.Error("same (type, work-group size) pair must reuse the allocation")
	}

	c, err := lm.Get("float", 128)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if c == a {
		t.Error("different work-group size must resolve a fresh allocation")
	}
	if c.Bytes() != 4*128 {
		t.Errorf("scratch size = %d, want %d", c.Bytes(), 4*128)
	}
}

func TestLocalMemUnsupportedDevice(t *testing.T) {
	dev := device.NewTrace(device.TraceConfig{NoScratch: true})
	_, err := NewLocalMem(dev, 2)
	if err == nil {
		t.Fatal("expected unsupported-configuration error")
	}
	if !strings.Contains(err.Error(), "local scratch memory") ||
		!strings.Contains(err.Error(), "Trace") {
		t.Errorf("error must name the feature and the backend: %v", err)
	}
}

func TestLocalMemBadInputs(t *testing.T) {
	dev := device.NewTrace(device.TraceConfig{})
	if _, err := NewLocalMem(dev, 0); err == nil {
		t.Error("expected error for non-positive multiplicity")
	}

	lm, err := NewLocalMem(dev, 1)
	if err != nil {
		t.Fatalf("NewLocalMem failed: %v", err)
	}
	if _, err := lm.Get("double", 0); err == nil {
		t.Error("expected error for non-positive work-group size")
	}
	if _, err := lm.Get("quaternion", 64); err == nil {
		t.Error("expected error for unknown element type")
	}
}

// A kernel that declares scratch gets it sized from the launch geometry
// and the precision-adjusted element type.
func TestCallResolvesLocalMemory(t *testing.T) {
	scope := builder.NewScope()
	fn := scope.Define(&builder.Function{
		Name: "reduce_block",
		Params: []builder.Param{
			{Name: "y", Type: types.BufferType("double")},
			{Name: "scratch", Type: types.LocalType("double")},
			{Name: "n", Type: types.ScalarType("int")},
		},
		Body: `int i = GID_0;
if (i < n) {
    scratch[LID_0] = y[i];
}
local_barrier();`,
	})

	t.Run("DoublePolicy", func(t *testing.T) {
		dev := device.NewTrace(device.TraceConfig{})
		knl, err := NewKernel(dev, fn, types.Double)
		if err != nil {
			t.Fatalf("NewKernel failed: %v", err)
		}
		y, _ := newTestArrays(t, dev, 100)
		lm, err := NewLocalMem(dev, 2)
		if err != nil {
			t.Fatalf("NewLocalMem failed: %v", err)
		}

		if err := knl.Call(y, lm, 100); err != nil {
			t.Fatalf("Call failed: %v", err)
		}
		launch := dev.LastLaunch()
		// n=100 on the 128/20 device runs 64-wide groups.
		s, ok := launch.Args[1].(device.Scratch)
		if !ok {
			t.Fatalf("scratch argument marshalled as %T", launch.Args[1])
		}
		if s.Bytes() != 8*2*64 {
			t.Errorf("scratch bytes = %d, want %d", s.Bytes(), 8*2*64)
		}
	})

	t.Run("SinglePolicyHalvesScratch", func(t *testing.T) {
		dev := device.NewTrace(device.TraceConfig{})
		knl, err := NewKernel(dev, fn, types.Single)
		if err != nil {
			t.Fatalf("NewKernel failed: %v", err)
		}
		y, _ := newTestArrays(t, dev, 100)
		lm, err := NewLocalMem(dev, 2)
		if err != nil {
			t.Fatalf("NewLocalMem failed: %v", err)
		}

		if err := knl.Call(y, lm, 100); err != nil {
			t.Fatalf("Call failed: %v", err)
		}
		s := dev.LastLaunch().Args[1].(device.Scratch)
		if s.Bytes() != 4*2*64 {
			t.Errorf("scratch bytes = %d, want %d", s.Bytes(), 4*2*64)
		}
	})
}
