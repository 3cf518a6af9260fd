package dsp

import (
	"gonum.org/v1/gonum/mat"
)

// FiltFilt applies the IIR filter (b, a) forward and then backward over x,
// producing a zero-phase result: features in the output are not time-shifted
// relative to the input, which matters when counts are later aligned to
// epoch boundaries. The input is extended at both ends by an odd reflection
// before filtering to suppress edge transients, and each pass starts from
// the filter's step-response steady state.
func FiltFilt(b, a, x []float64) []float64 {
	if len(x) == 0 {
		return []float64{}
	}
	b, a = normalize(b, a)
	n := len(b)

	padlen := 3 * (n - 1)
	if padlen > len(x)-1 {
		padlen = len(x) - 1
	}

	ext := oddExtend(x, padlen)
	zi := steadyState(b, a)

	// Forward pass, seeded so a constant input passes through unchanged.
	y := applyFilter(b, a, ext, scaled(zi, ext[0]))
	reverse(y)
	// Backward pass over the reversed forward output.
	y = applyFilter(b, a, y, scaled(zi, y[0]))
	reverse(y)

	return y[padlen : len(y)-padlen]
}

// Filter applies the IIR filter (b, a) over x in a single forward pass from
// zero initial state.
func Filter(b, a, x []float64) []float64 {
	b, a = normalize(b, a)
	return applyFilter(b, a, x, make([]float64, len(b)-1))
}

// normalize pads b and a to equal length and scales both so a[0] == 1.
func normalize(b, a []float64) ([]float64, []float64) {
	n := len(b)
	if len(a) > n {
		n = len(a)
	}
	nb := make([]float64, n)
	na := make([]float64, n)
	copy(nb, b)
	copy(na, a)
	a0 := na[0]
	for i := range nb {
		nb[i] /= a0
		na[i] /= a0
	}
	return nb, na
}

// applyFilter runs the direct-form II transposed difference equation with
// the given initial state. b and a must be normalised to equal length with
// a[0] == 1; the state has length len(b)-1 and is not retained.
func applyFilter(b, a, x, zi []float64) []float64 {
	n := len(b)
	if n == 1 {
		y := make([]float64, len(x))
		for i, xi := range x {
			y[i] = b[0] * xi
		}
		return y
	}
	z := make([]float64, n-1)
	copy(z, zi)
	y := make([]float64, len(x))
	for i, xi := range x {
		yi := b[0]*xi + z[0]
		for j := 0; j < n-2; j++ {
			z[j] = b[j+1]*xi + z[j+1] - a[j+1]*yi
		}
		z[n-2] = b[n-1]*xi - a[n-1]*yi
		y[i] = yi
	}
	return y
}

// steadyState computes the filter state that makes the step response start
// at its final value, solving (I - Aᵀ)z = B for the direct-form II
// transposed state matrix.
func steadyState(b, a []float64) []float64 {
	m := len(a) - 1
	if m < 1 {
		return nil
	}
	sys := mat.NewDense(m, m, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			v := 0.0
			if i == j {
				v = 1
			}
			if j == 0 {
				v += a[i+1]
			}
			if j == i+1 {
				v -= 1
			}
			sys.Set(i, j, v)
		}
	}
	rhs := mat.NewVecDense(m, nil)
	for i := 0; i < m; i++ {
		rhs.SetVec(i, b[i+1]-a[i+1]*b[0])
	}

	var zi mat.VecDense
	if err := zi.SolveVec(sys, rhs); err != nil {
		// Singular systems only arise from degenerate coefficient sets that
		// the Butterworth designs never produce; fall back to zero state.
		return make([]float64, m)
	}
	out := make([]float64, m)
	for i := 0; i < m; i++ {
		out[i] = zi.AtVec(i)
	}
	return out
}

// oddExtend reflects pad samples of x about both end points.
func oddExtend(x []float64, pad int) []float64 {
	n := len(x)
	ext := make([]float64, 0, n+2*pad)
	for i := pad; i >= 1; i-- {
		ext = append(ext, 2*x[0]-x[i])
	}
	ext = append(ext, x...)
	for i := n - 2; i >= n-1-pad; i-- {
		ext = append(ext, 2*x[n-1]-x[i])
	}
	return ext
}

func scaled(v []float64, by float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x * by
	}
	return out
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
