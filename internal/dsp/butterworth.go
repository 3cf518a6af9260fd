package dsp

import (
	"math"
	"math/cmplx"
)

// Butterworth filter design via the bilinear transform. Filters are designed
// in the analog domain from the classic Butterworth pole prototype, warped
// to the requested digital band edges, and converted to transfer-function
// coefficients suitable for Filter and FiltFilt.
//
// Cutoffs are normalised to the Nyquist frequency: wn in (0, 1).

// internal sample rate used for pre-warping; the bilinear transform below
// assumes the same value.
const designRate = 2.0

// Lowpass designs a digital low-pass Butterworth filter of the given order
// with normalised cutoff wn and returns the numerator and denominator
// coefficients (b, a) with a[0] == 1.
func Lowpass(order int, wn float64) (b, a []float64) {
	poles := prototypePoles(order)
	warped := prewarp(wn)

	// lp2lp: scale the prototype to the warped cutoff.
	gain := 1.0
	for i := range poles {
		poles[i] *= complex(warped, 0)
		gain *= warped
	}

	// No analog zeros; the bilinear transform introduces one digital zero at
	// z = -1 per pole.
	return bilinear(nil, poles, gain)
}

// Bandpass designs a digital band-pass Butterworth filter of the given order
// with normalised band edges (low, high) and returns (b, a) with a[0] == 1.
// The resulting filter has 2*order poles.
func Bandpass(order int, low, high float64) (b, a []float64) {
	proto := prototypePoles(order)
	w1 := prewarp(low)
	w2 := prewarp(high)
	bw := w2 - w1
	wo := math.Sqrt(w1 * w2)

	// lp2bp: each prototype pole maps to a conjugate pair around wo.
	poles := make([]complex128, 0, 2*order)
	gain := 1.0
	for _, p := range proto {
		scaled := p * complex(bw/2, 0)
		d := cmplx.Sqrt(scaled*scaled - complex(wo*wo, 0))
		poles = append(poles, scaled+d, scaled-d)
		gain *= bw
	}

	// The band-pass transform places order analog zeros at s = 0.
	zeros := make([]complex128, order)
	return bilinear(zeros, poles, gain)
}

// prototypePoles returns the poles of the unit-cutoff analog Butterworth
// low-pass prototype, evenly spaced on the left half of the unit circle.
func prototypePoles(order int) []complex128 {
	poles := make([]complex128, 0, order)
	for m := -order + 1; m < order; m += 2 {
		theta := math.Pi * float64(m) / float64(2*order)
		poles = append(poles, -cmplx.Exp(complex(0, theta)))
	}
	return poles
}

// prewarp maps a normalised digital cutoff onto the analog frequency axis
// so the bilinear transform lands the edge at the requested location.
func prewarp(wn float64) float64 {
	return 2 * designRate * math.Tan(math.Pi*wn/designRate)
}

// bilinear converts an analog zero/pole/gain filter to digital
// transfer-function coefficients. Zeros short of the pole count are filled
// at z = -1, where the analog frequency axis folds to Nyquist.
func bilinear(zeros, poles []complex128, gain float64) (b, a []float64) {
	fs2 := complex(2*designRate, 0)

	dz := make([]complex128, 0, len(poles))
	num := complex(1, 0)
	for _, z := range zeros {
		dz = append(dz, (fs2+z)/(fs2-z))
		num *= fs2 - z
	}
	dp := make([]complex128, 0, len(poles))
	den := complex(1, 0)
	for _, p := range poles {
		dp = append(dp, (fs2+p)/(fs2-p))
		den *= fs2 - p
	}
	for len(dz) < len(dp) {
		dz = append(dz, -1)
	}
	k := gain * real(num/den)

	b = polyFromRoots(dz)
	for i := range b {
		b[i] *= k
	}
	a = polyFromRoots(dp)
	return b, a
}

// polyFromRoots expands a monic polynomial from its roots. Roots arrive in
// conjugate pairs so the imaginary parts cancel; only the real parts are
// returned.
func polyFromRoots(roots []complex128) []float64 {
	coeffs := []complex128{1}
	for _, r := range roots {
		next := make([]complex128, len(coeffs)+1)
		for i, c := range coeffs {
			next[i] += c
			next[i+1] -= c * r
		}
		coeffs = next
	}
	out := make([]float64, len(coeffs))
	for i, c := range coeffs {
		out[i] = real(c)
	}
	return out
}
