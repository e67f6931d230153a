package device

import (
	"testing"

	"github.com/mengjing120/kernelgen/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrayRoundTrip(t *testing.T) {
	dev := NewTrace(TraceConfig{})

	t.Run("Float64", func(t *testing.T) {
		host := []float64{1.5, -2.25, 3.125, 0}
		arr, err := NewFloat64Array(dev, host)
		require.NoError(t, err)
		defer arr.Free()

		assert.Equal(t, 4, arr.Len())
		assert.Equal(t, types.Float64, arr.DType())
		assert.EqualValues(t, 32, arr.Memory().Bytes())

		got := make([]float64, 4)
		require.NoError(t, arr.ReadFloat64(got))
		assert.InDeltaSlice(t, host, got, 0)
	})

	t.Run("Float32", func(t *testing.T) {
		host := []float32{1, 2, 3}
		arr, err := NewFloat32Array(dev, host)
		require.NoError(t, err)
		defer arr.Free()

		got := make([]float32, 3)
		require.NoError(t, arr.ReadFloat32(got))
		assert.InDeltaSlice(t, host, got, 0)
	})

	t.Run("Write", func(t *testing.T) {
		arr, err := NewEmptyArray(dev, types.Float64, 3)
		require.NoError(t, err)
		defer arr.Free()

		require.NoError(t, arr.WriteFloat64([]float64{7, 8, 9}))
		got := make([]float64, 3)
		require.NoError(t, arr.ReadFloat64(got))
		assert.InDeltaSlice(t, []float64{7, 8, 9}, got, 0)
	})
}

func TestArrayErrors(t *testing.T) {
	dev := NewTrace(TraceConfig{})

	_, err := NewFloat64Array(dev, nil)
	assert.Error(t, err, "empty array must be rejected")

	arr, err := NewFloat64Array(dev, []float64{1, 2})
	require.NoError(t, err)
	defer arr.Free()

	assert.Error(t, arr.ReadFloat32(make([]float32, 2)), "type mismatch must be rejected")
	assert.Error(t, arr.ReadFloat64(make([]float64, 1)), "short destination must be rejected")
	assert.Error(t, arr.WriteFloat64([]float64{1}), "short source must be rejected")
}

func TestHostSIMDWidth(t *testing.T) {
	w := HostSIMDWidth()
	assert.Contains(t, []int{1, 4, 8, 16}, w)
}

func TestDefaultLimits(t *testing.T) {
	host := defaultLimits("OpenMP")
	assert.Greater(t, host.ComputeUnits, 0)
	assert.GreaterOrEqual(t, host.MaxWorkGroupSize, 64)

	gpu := defaultLimits("CUDA")
	assert.Equal(t, Limits{MaxWorkGroupSize: 256, ComputeUnits: 16}, gpu)
}
