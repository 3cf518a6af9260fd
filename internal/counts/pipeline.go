// Package counts converts raw tri-axial accelerometer recordings into
// epoch-level activity counts on the legacy actigraph scale.
//
// The conditioning chain follows the published Axivity-to-ActiGraph count
// pipeline: resample to 30 Hz, anti-alias low-pass, movement band-pass,
// resample to 10 Hz, dead-band, clip, quantise to 8-bit resolution, then
// sum 60-second windows. The stage order is part of the algorithm and must
// not change.
package counts

import (
	"fmt"
	"math"

	"github.com/somno-data/sleep.report/internal/dsp"
	"github.com/somno-data/sleep.report/internal/epoch"
	"github.com/somno-data/sleep.report/internal/monitoring"
	"github.com/somno-data/sleep.report/internal/timeparse"
)

// Algorithm constants from the source publications. These are not tunable;
// changing any of them diverges from the published count scale.
const (
	intermediateRate = 30   // Hz after the first resample
	outputRate       = 10   // Hz entering epoch aggregation
	filterOrder      = 4    // Butterworth order for both filters
	lowPassCutoffHz  = 14.9 // anti-aliasing cutoff, just under Nyquist/1
	bandPassLowHz    = 0.29 // lower edge of the limb-movement band
	bandPassHighHz   = 1.63 // upper edge of the limb-movement band
	deadBandG        = 0.068
	clipCeilingG     = 2.13
	quantScale       = 128 // 8-bit resolution over the clip range

	// SamplesPerEpoch is the window summed into one count: 60 s at 10 Hz.
	SamplesPerEpoch = epoch.Seconds * outputRate
)

// DefaultRawRate is the assumed sampling rate of raw recordings.
const DefaultRawRate = 100

// RawSample is one raw sensor reading on the elapsed-seconds axis.
type RawSample struct {
	Elapsed float64
	Axis1   float64
	Axis2   float64
	Axis3   float64
}

// Options control the per-sensor processing run.
type Options struct {
	// RawRate is the sampling rate of the raw recording in Hz;
	// DefaultRawRate when zero.
	RawRate int
	// Magnitude retains the vector-magnitude channel in the output table.
	// The multi-sensor merge path drops it.
	Magnitude bool
}

func (o Options) rawRate() int {
	if o.RawRate <= 0 {
		return DefaultRawRate
	}
	return o.RawRate
}

// Process converts one sensor's raw recording into an epoch count table.
// The input must be time-ordered; unordered rows fail with a
// *timeparse.UnorderedInputError. A recording shorter than one epoch yields
// an empty table, not an error.
func Process(samples []RawSample, opts Options) (*epoch.Table, error) {
	rate := opts.rawRate()

	elapsed := make([]float64, len(samples))
	x := make([]float64, len(samples))
	y := make([]float64, len(samples))
	z := make([]float64, len(samples))
	for i, s := range samples {
		elapsed[i] = s.Elapsed
		x[i] = s.Axis1
		y[i] = s.Axis2
		z[i] = s.Axis3
	}
	if err := timeparse.CheckMonotonic(elapsed); err != nil {
		return nil, fmt.Errorf("counts: %w", err)
	}

	cond := conditionAxes(x, y, z, rate)

	table := &epoch.Table{HasMagnitude: opts.Magnitude}
	numEpochs := len(cond.axis1) / SamplesPerEpoch
	monitoring.Logf("counts: %d raw samples at %d Hz -> %d epochs", len(samples), rate, numEpochs)
	if numEpochs == 0 {
		return table, nil
	}

	first := int64(0)
	if len(samples) > 0 {
		first = int64(math.Round(samples[0].Elapsed))
	}

	a1 := sumWindows(cond.axis1, numEpochs)
	a2 := sumWindows(cond.axis2, numEpochs)
	a3 := sumWindows(cond.axis3, numEpochs)
	var vm []int64
	if opts.Magnitude {
		vm = sumWindows(cond.magnitude, numEpochs)
	}

	table.Records = make([]epoch.Record, numEpochs)
	for i := 0; i < numEpochs; i++ {
		r := epoch.Record{
			DataTimestamp: first + int64(i)*epoch.Seconds,
			Axis1:         a1[i],
			Axis2:         a2[i],
			Axis3:         a3[i],
		}
		if opts.Magnitude {
			r.Magnitude = vm[i]
		}
		table.Records[i] = r
	}
	return table, nil
}

type conditioned struct {
	axis1, axis2, axis3 []int
	magnitude           []int
}

// conditionAxes runs the full conditioning chain over the three axes. The
// vector magnitude is derived from the three 10 Hz channels before the
// dead-band, clip and quantise stages, then put through those stages
// identically.
func conditionAxes(x, y, z []float64, rawRate int) *conditioned {
	lb, la := dsp.Lowpass(filterOrder, lowPassCutoffHz/(intermediateRate/2))
	bb, ba := dsp.Bandpass(filterOrder, bandPassLowHz/(intermediateRate/2), bandPassHighHz/(intermediateRate/2))

	filterOne := func(s []float64) []float64 {
		s = dsp.Resample(s, dsp.ResampledLength(len(s), rawRate, intermediateRate))
		s = dsp.FiltFilt(lb, la, s)
		s = dsp.FiltFilt(bb, ba, s)
		return dsp.Resample(s, dsp.ResampledLength(len(s), intermediateRate, outputRate))
	}

	fx := filterOne(x)
	fy := filterOne(y)
	fz := filterOne(z)

	vm := make([]float64, len(fx))
	for i := range vm {
		vm[i] = math.Sqrt(fx[i]*fx[i] + fy[i]*fy[i] + fz[i]*fz[i])
	}

	return &conditioned{
		axis1:     quantise(fx),
		axis2:     quantise(fy),
		axis3:     quantise(fz),
		magnitude: quantise(vm),
	}
}

// quantise applies the dead-band, clip and 8-bit scaling stages and returns
// integer counts per 10 Hz sample.
func quantise(s []float64) []int {
	out := make([]int, len(s))
	for i, v := range s {
		if math.Abs(v) < deadBandG {
			v = 0
		}
		if v > clipCeilingG {
			v = clipCeilingG
		} else if v < -clipCeilingG {
			v = -clipCeilingG
		}
		out[i] = int(math.RoundToEven(v / clipCeilingG * quantScale))
	}
	return out
}

// sumWindows sums consecutive SamplesPerEpoch-sized windows; the trailing
// remainder shorter than a full window is discarded.
func sumWindows(s []int, numEpochs int) []int64 {
	out := make([]int64, numEpochs)
	for i := 0; i < numEpochs; i++ {
		var sum int64
		for _, v := range s[i*SamplesPerEpoch : (i+1)*SamplesPerEpoch] {
			sum += int64(v)
		}
		out[i] = sum
	}
	return out
}
