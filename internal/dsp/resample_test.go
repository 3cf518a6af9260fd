package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResampleLength(t *testing.T) {
	t.Parallel()

	x := make([]float64, 6000)
	assert.Len(t, Resample(x, 1800), 1800)
	assert.Len(t, Resample(x, 600), 600)
	assert.Len(t, Resample(x, 9000), 9000)
	assert.Empty(t, Resample(x, 0))
	assert.Equal(t, make([]float64, 5), Resample(nil, 5))
}

func TestResampledLength(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1800, ResampledLength(6000, 100, 30))
	assert.Equal(t, 600, ResampledLength(1800, 30, 10))
	assert.Equal(t, 30, ResampledLength(101, 100, 30))
}

func TestResampleConstant(t *testing.T) {
	t.Parallel()

	x := make([]float64, 300)
	for i := range x {
		x[i] = 0.5
	}
	for _, n := range []int{90, 100, 150, 600} {
		y := Resample(x, n)
		require.Len(t, y, n)
		for i, v := range y {
			assert.InDelta(t, 0.5, v, 1e-9, "n=%d sample %d", n, i)
		}
	}
}

func TestResampleSinusoidPreserved(t *testing.T) {
	t.Parallel()

	// A whole number of periods in the window keeps the tone on an FFT bin,
	// so downsampling from 100 Hz to 30 Hz reproduces it exactly.
	const (
		rate = 100
		freq = 1.0
		secs = 10
	)
	x := make([]float64, rate*secs)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * freq * float64(i) / rate)
	}

	y := Resample(x, 30*secs)
	require.Len(t, y, 30*secs)
	for i, v := range y {
		want := math.Sin(2 * math.Pi * freq * float64(i) / 30)
		assert.InDelta(t, want, v, 1e-8, "sample %d", i)
	}
}

func TestResampleZeroStaysZero(t *testing.T) {
	t.Parallel()

	y := Resample(make([]float64, 500), 150)
	for _, v := range y {
		assert.Zero(t, v)
	}
}
