package device

import (
	"errors"
	"testing"
)

func TestTraceDefaults(t *testing.T) {
	dev := NewTrace(TraceConfig{})
	lim := dev.Limits()
	if lim.MaxWorkGroupSize != 128 || lim.ComputeUnits != 20 {
		t.Errorf("default limits = %+v, want 128/20", lim)
	}
	if dev.Mode() != "Trace" {
		t.Errorf("mode = %q", dev.Mode())
	}
	if !dev.HasScratch() {
		t.Error("scratch should be supported by default")
	}
}

func TestTraceBuildRecords(t *testing.T) {
	dev := NewTrace(TraceConfig{})
	knl, err := dev.BuildKernel("KERNEL void f() {}", "f")
	if err != nil {
		t.Fatalf("BuildKernel failed: %v", err)
	}
	if b := dev.LastBuild(); b == nil || b.Name != "f" {
		t.Fatalf("build not recorded: %+v", b)
	}
	if knl.MaxWorkGroupSize() != 128 {
		t.Errorf("kernel cap = %d, want device limit", knl.MaxWorkGroupSize())
	}

	if err := knl.Launch([]int{64}, []int{64}, int32(1)); err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	l := dev.LastLaunch()
	if l == nil || l.Kernel != "f" || l.Global[0] != 64 || l.Local[0] != 64 {
		t.Errorf("launch not recorded: %+v", l)
	}
}

func TestTraceBuildError(t *testing.T) {
	wantErr := errors.New("no compiler")
	dev := NewTrace(TraceConfig{BuildErr: wantErr})
	if _, err := dev.BuildKernel("src", "f"); !errors.Is(err, wantErr) {
		t.Errorf("BuildKernel error = %v, want configured error", err)
	}
	if dev.LastBuild() != nil {
		t.Error("failed build must not be recorded")
	}
}

func TestTraceScratch(t *testing.T) {
	dev := NewTrace(TraceConfig{})
	s, err := dev.AllocScratch(512)
	if err != nil {
		t.Fatalf("AllocScratch failed: %v", err)
	}
	if s.Bytes() != 512 {
		t.Errorf("scratch bytes = %d", s.Bytes())
	}

	noScratch := NewTrace(TraceConfig{NoScratch: true})
	if _, err := noScratch.AllocScratch(512); err == nil {
		t.Error("expected unsupported error")
	}
}
