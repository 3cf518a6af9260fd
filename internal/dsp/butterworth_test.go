package dsp

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// response evaluates |H(e^{jw})| for the transfer function (b, a) at the
// normalised frequency wn (1 = Nyquist).
func response(b, a []float64, wn float64) float64 {
	w := math.Pi * wn
	num := complex(0, 0)
	for i, c := range b {
		num += complex(c, 0) * cmplx.Exp(complex(0, -w*float64(i)))
	}
	den := complex(0, 0)
	for i, c := range a {
		den += complex(c, 0) * cmplx.Exp(complex(0, -w*float64(i)))
	}
	return cmplx.Abs(num / den)
}

func TestLowpassShape(t *testing.T) {
	t.Parallel()

	// The anti-aliasing filter used by the conditioning pipeline:
	// 14.9 Hz cutoff at a 30 Hz sample rate.
	b, a := Lowpass(4, 14.9/15.0)
	require.Len(t, b, 5)
	require.Len(t, a, 5)
	assert.Equal(t, 1.0, a[0])

	// Unity gain at DC, half-power at the cutoff, strong rejection above.
	assert.InDelta(t, 1.0, response(b, a, 0), 1e-9)
	assert.InDelta(t, 1/math.Sqrt2, response(b, a, 14.9/15.0), 1e-6)
	assert.Less(t, response(b, a, 0.999), 0.05)
}

func TestBandpassShape(t *testing.T) {
	t.Parallel()

	// The movement band used by the conditioning pipeline:
	// 0.29-1.63 Hz at a 30 Hz sample rate.
	low, high := 0.29/15.0, 1.63/15.0
	b, a := Bandpass(4, low, high)
	require.Len(t, b, 9)
	require.Len(t, a, 9)
	assert.Equal(t, 1.0, a[0])

	// Blocks DC, passes the band centre near unity, half-power at the edges.
	assert.Less(t, response(b, a, 1e-9), 1e-6)
	centre := math.Sqrt(low * high)
	assert.InDelta(t, 1.0, response(b, a, centre), 1e-3)
	assert.InDelta(t, 1/math.Sqrt2, response(b, a, low), 1e-6)
	assert.InDelta(t, 1/math.Sqrt2, response(b, a, high), 1e-6)
	// Frequencies well outside the band are strongly attenuated.
	assert.Less(t, response(b, a, 10.0/15.0), 1e-3)
}

func TestPrototypePoles(t *testing.T) {
	t.Parallel()

	for _, order := range []int{1, 2, 4, 8} {
		poles := prototypePoles(order)
		require.Len(t, poles, order)
		for _, p := range poles {
			// Stable prototypes sit on the left half of the unit circle.
			assert.Negative(t, real(p))
			assert.InDelta(t, 1.0, cmplx.Abs(p), 1e-12)
		}
	}
}

func TestPolyFromRoots(t *testing.T) {
	t.Parallel()

	// (z-1)(z+1) = z^2 - 1
	got := polyFromRoots([]complex128{1, -1})
	require.Len(t, got, 3)
	assert.InDelta(t, 1, got[0], 1e-12)
	assert.InDelta(t, 0, got[1], 1e-12)
	assert.InDelta(t, -1, got[2], 1e-12)

	// Conjugate pair (z-(1+i))(z-(1-i)) = z^2 - 2z + 2
	got = polyFromRoots([]complex128{complex(1, 1), complex(1, -1)})
	require.Len(t, got, 3)
	assert.InDelta(t, 1, got[0], 1e-12)
	assert.InDelta(t, -2, got[1], 1e-12)
	assert.InDelta(t, 2, got[2], 1e-12)
}
