// Package sleep implements the Cole-Kripke and Sadeh sleep/wake scoring
// algorithms over epoch-level activity counts, in single-sensor and
// multi-limb variants.
package sleep

import "time"

// State is an epoch's sleep/wake classification.
type State string

// Classification values. Every scored epoch receives exactly one of these.
const (
	Asleep State = "S"
	Awake  State = "W"
)

// Score is one epoch's classification for a single sensor. DataTimestamp is
// the epoch's wall-clock time reattached from the scoring baseline, in
// "YYYY-MM-DD HH:MM:SS.fff" form.
type Score struct {
	DataTimestamp string
	SleepIndex    float64
	State         State
}

// LimbScore is one limb's classification within a multi-limb row.
type LimbScore struct {
	SleepIndex float64
	State      State
}

// MultiScore is one epoch's classification across all limbs of a merged
// recording. Limbs are ordered by sensor index.
type MultiScore struct {
	DataTimestamp string
	Limbs         []LimbScore
}

// DefaultBaseline is the wall-clock instant scoring output timestamps are
// reconstructed against when the caller does not thread the recording's own
// baseline through. Callers should prefer the recording baseline.
var DefaultBaseline = time.Date(2025, 2, 3, 21, 0, 0, 0, time.UTC)

func classify(index, threshold float64, sleepBelow bool) State {
	if sleepBelow {
		if index < threshold {
			return Asleep
		}
		return Awake
	}
	if index > threshold {
		return Asleep
	}
	return Awake
}

// average returns the element-wise mean of equally sized slices.
func average(series ...[]float64) []float64 {
	if len(series) == 0 {
		return nil
	}
	out := make([]float64, len(series[0]))
	for _, s := range series {
		for i, v := range s {
			out[i] += v
		}
	}
	for i := range out {
		out[i] /= float64(len(series))
	}
	return out
}
