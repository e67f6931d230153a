package types

import "testing"

func TestSizeOf(t *testing.T) {
	tests := []struct {
		name string
		want int64
	}{
		{"float", 4},
		{"double", 8},
		{"int", 4},
		{"long", 8},
		{"uint", 4},
		{"ulong", 8},
	}
	for _, tt := range tests {
		got, err := SizeOf(tt.name)
		if err != nil {
			t.Fatalf("SizeOf(%q) failed: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("SizeOf(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}

	if _, err := SizeOf("quaternion"); err == nil {
		t.Error("expected error for unknown type name")
	}
}

func TestFromCNameRoundTrip(t *testing.T) {
	for _, dt := range []DataType{Float32, Float64, INT32, INT64, UINT32, UINT64} {
		got, err := FromCName(dt.CName())
		if err != nil {
			t.Fatalf("FromCName(%q) failed: %v", dt.CName(), err)
		}
		if got != dt {
			t.Errorf("FromCName(%q) = %v, want %v", dt.CName(), got, dt)
		}
	}
}

func TestKnownTypeConstructors(t *testing.T) {
	t.Run("Scalar", func(t *testing.T) {
		kt := ScalarType("double")
		if kt.CType != "double" || kt.Base != "double" || kt.Kind != Scalar {
			t.Errorf("unexpected scalar type: %+v", kt)
		}
	})

	t.Run("Buffer", func(t *testing.T) {
		kt := BufferType("double")
		if kt.CType != "GLOBAL_MEM double*" {
			t.Errorf("unexpected buffer declaration: %q", kt.CType)
		}
		if kt.Base != "double" || kt.Kind != Buffer {
			t.Errorf("unexpected buffer type: %+v", kt)
		}
	})

	t.Run("Local", func(t *testing.T) {
		kt := LocalType("float")
		if kt.CType != "LOCAL_MEM float*" {
			t.Errorf("unexpected local declaration: %q", kt.CType)
		}
		if kt.Base != "float" || kt.Kind != Local {
			t.Errorf("unexpected local type: %+v", kt)
		}
	})
}
