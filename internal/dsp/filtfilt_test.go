package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiltFiltZeroInput(t *testing.T) {
	t.Parallel()

	b, a := Lowpass(4, 14.9/15.0)
	y := FiltFilt(b, a, make([]float64, 1800))
	require.Len(t, y, 1800)
	for _, v := range y {
		assert.Zero(t, v)
	}
}

func TestFiltFiltConstantThroughLowpass(t *testing.T) {
	t.Parallel()

	// A low-pass filter passes DC; with steady-state initial conditions the
	// constant survives the padding and both passes untouched.
	b, a := Lowpass(4, 14.9/15.0)
	x := make([]float64, 400)
	for i := range x {
		x[i] = 1.5
	}
	y := FiltFilt(b, a, x)
	require.Len(t, y, 400)
	for i, v := range y {
		assert.InDelta(t, 1.5, v, 1e-6, "sample %d", i)
	}
}

func TestFiltFiltRemovesDC(t *testing.T) {
	t.Parallel()

	// The movement band-pass rejects a constant offset entirely.
	b, a := Bandpass(4, 0.29/15.0, 1.63/15.0)
	x := make([]float64, 3000)
	for i := range x {
		x[i] = 1.0
	}
	y := FiltFilt(b, a, x)
	mid := y[len(y)/4 : 3*len(y)/4]
	for i, v := range mid {
		assert.InDelta(t, 0, v, 1e-3, "sample %d", i)
	}
}

func TestFiltFiltPreservesPassbandAmplitude(t *testing.T) {
	t.Parallel()

	// 1 Hz at a 30 Hz rate sits inside the 0.29-1.63 Hz movement band, so a
	// zero-phase pass keeps its amplitude and does not shift it in time.
	const rate = 30.0
	b, a := Bandpass(4, 0.29/15.0, 1.63/15.0)
	x := make([]float64, 60*30)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * 1.0 * float64(i) / rate)
	}
	y := FiltFilt(b, a, x)
	require.Len(t, y, len(x))

	// Compare away from the edges where reflection transients live.
	var maxErr float64
	for i := len(x) / 4; i < 3*len(x)/4; i++ {
		if e := math.Abs(y[i] - x[i]); e > maxErr {
			maxErr = e
		}
	}
	assert.Less(t, maxErr, 0.02)
}

func TestFiltFiltShortInput(t *testing.T) {
	t.Parallel()

	b, a := Lowpass(4, 0.5)

	// Shorter than the default pad length still yields output of the same
	// length rather than an error; a one-sample input is a fixed point.
	y := FiltFilt(b, a, []float64{1, 2, 3})
	assert.Len(t, y, 3)

	y = FiltFilt(b, a, []float64{4.2})
	require.Len(t, y, 1)
	assert.InDelta(t, 4.2, y[0], 1e-9)

	assert.Empty(t, FiltFilt(b, a, nil))
}

func TestFilterForwardOnly(t *testing.T) {
	t.Parallel()

	// A single forward pass of a low-pass over a step converges to the step
	// height but lags it; this is why the pipeline uses FiltFilt instead.
	b, a := Lowpass(2, 0.2)
	x := make([]float64, 200)
	for i := range x {
		x[i] = 1
	}
	y := Filter(b, a, x)
	require.Len(t, y, 200)
	assert.InDelta(t, 1.0, y[199], 1e-6)
	assert.Less(t, y[0], 0.5)
}

func TestSteadyState(t *testing.T) {
	t.Parallel()

	// Seeding with the steady state makes the response to a unit step flat
	// from the very first sample.
	b, a := normalize(Lowpass(4, 0.3))
	zi := steadyState(b, a)
	x := make([]float64, 50)
	for i := range x {
		x[i] = 1
	}
	y := applyFilter(b, a, x, zi)
	for i, v := range y {
		assert.InDelta(t, 1.0, v, 1e-9, "sample %d", i)
	}
}
