// Package dsp implements the signal-processing primitives behind the count
// conditioning pipeline: band-limited resampling, Butterworth filter design,
// and zero-phase filtering.
package dsp

import "gonum.org/v1/gonum/dsp/fourier"

// Resample returns x resampled to n samples using the Fourier method: the
// signal is transformed to the frequency domain, the spectrum is truncated
// or zero-padded to the new length, and the result transformed back. The
// input is assumed periodic; this is band-limited interpolation, not naive
// decimation, so no new aliases are introduced when shortening.
func Resample(x []float64, n int) []float64 {
	nx := len(x)
	if n <= 0 {
		return []float64{}
	}
	if nx == 0 {
		return make([]float64, n)
	}
	if n == nx {
		out := make([]float64, nx)
		copy(out, x)
		return out
	}

	fwd := fourier.NewFFT(nx)
	coeffs := fwd.Coefficients(nil, x)

	spec := make([]complex128, n/2+1)
	m := n
	if nx < m {
		m = nx
	}
	nyq := m/2 + 1
	copy(spec[:nyq], coeffs[:nyq])

	if m > 2 && m%2 == 0 {
		half := m / 2
		switch {
		case n < nx:
			// Shortening: the new Nyquist bin receives the energy from both
			// the +m/2 and -m/2 components of the original spectrum.
			spec[half] = complex(2*real(coeffs[half]), 0)
		case n > nx:
			// Lengthening: the original Nyquist bin is split between the
			// +m/2 bin and its implied conjugate.
			spec[half] *= 0.5
		}
	}

	inv := fourier.NewFFT(n)
	y := inv.Sequence(nil, spec)

	// Sequence is unnormalised (scales by n); combined with the length-change
	// gain n/nx this leaves a net 1/nx.
	scale := 1 / float64(nx)
	for i := range y {
		y[i] *= scale
	}
	return y
}

// ResampledLength returns the number of samples produced when resampling a
// signal of length n from rate from to rate to.
func ResampledLength(n, from, to int) int {
	return int(float64(n)*float64(to)/float64(from) + 0.5)
}
