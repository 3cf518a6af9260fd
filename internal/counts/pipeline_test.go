package counts

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/somno-data/sleep.report/internal/epoch"
	"github.com/somno-data/sleep.report/internal/timeparse"
)

// rawZeros builds n all-zero samples at the given rate starting at elapsed 0.
func rawZeros(n, rate int) []RawSample {
	out := make([]RawSample, n)
	for i := range out {
		out[i].Elapsed = float64(i) / float64(rate)
	}
	return out
}

// rawSinusoid builds a recording whose three axes carry a shared sinusoid.
func rawSinusoid(n, rate int, freq, amp float64) []RawSample {
	out := make([]RawSample, n)
	for i := range out {
		t := float64(i) / float64(rate)
		v := amp * math.Sin(2*math.Pi*freq*t)
		out[i] = RawSample{Elapsed: t, Axis1: v, Axis2: v, Axis3: v}
	}
	return out
}

func TestProcessZeroRecordingYieldsOneZeroEpoch(t *testing.T) {
	t.Parallel()

	// 6000 zero samples at 100 Hz = 60 s = exactly one epoch; zero input
	// stays zero through filtering, thresholding and summation.
	table, err := Process(rawZeros(6000, 100), Options{RawRate: 100})
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	rec := table.Records[0]
	assert.Equal(t, int64(0), rec.DataTimestamp)
	assert.Equal(t, int64(0), rec.Axis1)
	assert.Equal(t, int64(0), rec.Axis2)
	assert.Equal(t, int64(0), rec.Axis3)
}

func TestProcessEpochCountAndTimestamps(t *testing.T) {
	t.Parallel()

	// 250 s of raw data at 100 Hz conditions to 2500 samples at 10 Hz,
	// which is 4 full epochs with a trailing remainder discarded.
	table, err := Process(rawZeros(25000, 100), Options{RawRate: 100})
	require.NoError(t, err)
	require.Equal(t, 4, table.Len())
	for i, r := range table.Records {
		assert.Equal(t, int64(i)*epoch.Seconds, r.DataTimestamp)
	}
}

func TestProcessRoundsFirstTimestamp(t *testing.T) {
	t.Parallel()

	samples := rawZeros(6000, 100)
	for i := range samples {
		samples[i].Elapsed += 119.7
	}
	table, err := Process(samples, Options{RawRate: 100})
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, int64(120), table.Records[0].DataTimestamp)
}

func TestProcessShorterThanEpochIsEmpty(t *testing.T) {
	t.Parallel()

	// 30 s of data is less than one 60 s epoch: empty result, not an error.
	table, err := Process(rawZeros(3000, 100), Options{RawRate: 100})
	require.NoError(t, err)
	assert.Zero(t, table.Len())

	table, err = Process(nil, Options{})
	require.NoError(t, err)
	assert.Zero(t, table.Len())
}

func TestConditionPreservesPassbandAmplitude(t *testing.T) {
	t.Parallel()

	// 1 Hz at 1 g sits inside the 0.29-1.63 Hz band, above the 0.068 g
	// dead-band and below the 2.13 g ceiling, so the quantised signal must
	// keep non-zero samples rather than being flattened by the dead-band.
	raw := rawSinusoid(12000, 100, 1.0, 1.0)
	x := make([]float64, len(raw))
	for i, s := range raw {
		x[i] = s.Axis1
	}
	cond := conditionAxes(x, x, x, 100)
	require.Len(t, cond.axis1, 1200)

	nonZero := 0
	for _, v := range cond.axis1 {
		if v != 0 {
			nonZero++
		}
	}
	// A 1 g sinusoid spends the bulk of each period above the dead-band.
	assert.Greater(t, nonZero, len(cond.axis1)/2)
}

func TestProcessPassbandSinusoidProducesMagnitudeCounts(t *testing.T) {
	t.Parallel()

	// The vector-magnitude channel is non-negative before quantisation, so
	// a pass-band movement signal must yield positive magnitude counts.
	table, err := Process(rawSinusoid(12000, 100, 1.0, 1.0), Options{RawRate: 100, Magnitude: true})
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	for _, r := range table.Records {
		assert.Positive(t, r.Magnitude)
	}
}

func TestProcessMagnitudeChannel(t *testing.T) {
	t.Parallel()

	raw := rawSinusoid(12000, 100, 1.0, 0.5)

	with, err := Process(raw, Options{RawRate: 100, Magnitude: true})
	require.NoError(t, err)
	require.True(t, with.HasMagnitude)
	require.Equal(t, 2, with.Len())
	// The magnitude channel is all-positive pre-quantisation, so its epoch
	// sums dominate any single axis.
	for _, r := range with.Records {
		assert.Greater(t, r.Magnitude, r.Axis1)
	}

	without, err := Process(raw, Options{RawRate: 100})
	require.NoError(t, err)
	assert.False(t, without.HasMagnitude)
	// Axis counts are identical with or without the magnitude channel.
	for i := range without.Records {
		assert.Equal(t, with.Records[i].Axis1, without.Records[i].Axis1)
	}
}

func TestProcessRejectsUnorderedInput(t *testing.T) {
	t.Parallel()

	samples := rawZeros(100, 100)
	samples[50].Elapsed = 0.1 // jumps backwards

	_, err := Process(samples, Options{RawRate: 100})
	var ue *timeparse.UnorderedInputError
	require.Error(t, err)
	assert.True(t, errors.As(err, &ue))
}

func TestProcessDefaultRate(t *testing.T) {
	t.Parallel()

	table, err := Process(rawZeros(6000, 100), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
}

func TestQuantise(t *testing.T) {
	t.Parallel()

	in := []float64{0, 0.05, -0.05, 0.068, 0.5, -0.5, 2.13, 3.0, -3.0}
	got := quantise(in)
	want := []int{
		0, // zero input
		0, // below dead-band
		0, // below dead-band in magnitude
		int(math.RoundToEven(0.068 / 2.13 * 128)),
		int(math.RoundToEven(0.5 / 2.13 * 128)),
		-int(math.RoundToEven(0.5 / 2.13 * 128)),
		128,  // exactly at the ceiling
		128,  // clipped
		-128, // clipped negative
	}
	assert.Equal(t, want, got)
}
