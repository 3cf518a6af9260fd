// Package nonwear implements the Choi non-wear detection algorithm: runs of
// zero activity long enough to indicate the device was off-body.
package nonwear

import (
	"fmt"
	"math"

	"github.com/somno-data/sleep.report/internal/epoch"
	"github.com/somno-data/sleep.report/internal/monitoring"
)

// Params configure a detection run. The zero value is not useful; start
// from DefaultParams.
type Params struct {
	// MinPeriodLen is the minimum run length, in epochs, for a non-wear run
	// to be reported.
	MinPeriodLen int
	// MinWindowLen is part of the published parameter set but does not
	// participate in the run merge; it is accepted for contract
	// compatibility.
	MinWindowLen int
	// SpikeTolerance reclassifies non-wear runs shorter than this as wear,
	// treating brief zero readings as noise rather than removal.
	SpikeTolerance int
	// UseMagnitude classifies wear from the tri-axial vector magnitude
	// instead of axis1.
	UseMagnitude bool
}

// DefaultParams returns the published Choi defaults.
func DefaultParams() Params {
	return Params{
		MinPeriodLen:   90,
		MinWindowLen:   30,
		SpikeTolerance: 2,
	}
}

// Interval is one qualifying non-wear period. End is Start plus 60 seconds
// per epoch in the run.
type Interval struct {
	Start  int64
	End    int64
	Length int
}

// run is a maximal stretch of identical wear state.
type run struct {
	wear   bool
	start  int64 // timestamp of the run's first epoch
	length int
}

// Detect reports the qualifying non-wear intervals of a count table. The
// input is read-only; returned intervals are disjoint, ordered by start
// time, and each at least MinPeriodLen epochs long after spike repair.
func Detect(t *epoch.Table, p Params) ([]Interval, error) {
	if p.MinPeriodLen <= 0 {
		return nil, fmt.Errorf("nonwear: min period length must be positive, got %d", p.MinPeriodLen)
	}
	if p.SpikeTolerance < 0 {
		return nil, fmt.Errorf("nonwear: spike tolerance must not be negative, got %d", p.SpikeTolerance)
	}

	runs := encodeRuns(t, p.UseMagnitude)

	// Spike repair: brief non-wear runs become wear.
	for i, r := range runs {
		if !r.wear && r.length < p.SpikeTolerance {
			runs[i].wear = true
		}
	}

	// Re-encode: adjacent runs that now share a state merge, lengths summed.
	merged := make([]run, 0, len(runs))
	for _, r := range runs {
		if n := len(merged); n > 0 && merged[n-1].wear == r.wear {
			merged[n-1].length += r.length
			continue
		}
		merged = append(merged, r)
	}

	var out []Interval
	for _, r := range merged {
		if r.wear || r.length < p.MinPeriodLen {
			continue
		}
		out = append(out, Interval{
			Start:  r.start,
			End:    r.start + int64(r.length)*epoch.Seconds,
			Length: r.length,
		})
	}
	monitoring.Logf("nonwear: %d runs, %d qualifying non-wear intervals", len(merged), len(out))
	return out, nil
}

// encodeRuns run-length-encodes the wear state of every epoch, recording
// each run's length and first timestamp.
func encodeRuns(t *epoch.Table, useMagnitude bool) []run {
	var runs []run
	for _, r := range t.Records {
		worn := wearCount(r, useMagnitude) > 0
		if n := len(runs); n > 0 && runs[n-1].wear == worn {
			runs[n-1].length++
			continue
		}
		runs = append(runs, run{wear: worn, start: r.DataTimestamp, length: 1})
	}
	return runs
}

// wearCount selects the count the wear classification is based on.
func wearCount(r epoch.Record, useMagnitude bool) float64 {
	if !useMagnitude {
		return float64(r.Axis1)
	}
	x, y, z := float64(r.Axis1), float64(r.Axis2), float64(r.Axis3)
	return math.Sqrt(x*x + y*y + z*z)
}
