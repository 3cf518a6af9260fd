package sleep

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/somno-data/sleep.report/internal/epoch"
	"github.com/somno-data/sleep.report/internal/timeparse"
)

// Sadeh algorithm constants (Sadeh et al. 1994, 1-minute epochs).
const (
	sadehCountCeiling   = 300
	sadehHalfWindow     = 5 // centred window of 11 epochs
	sadehStdWindow      = 6 // trailing window for the standard deviation
	sadehNatLow         = 50
	sadehNatHigh        = 100
	sadehIntercept      = 7.601
	sadehMeanCoeff      = 0.065
	sadehNatCoeff       = 1.08
	sadehStdCoeff       = 0.056
	sadehLogCoeff       = 0.703
	sadehSleepThreshold = -4.0
)

// sadehCap caps a raw epoch count at 300.
func sadehCap(count int64) float64 {
	if count > sadehCountCeiling {
		return sadehCountCeiling
	}
	return float64(count)
}

// rollMean is the mean of the centred 11-epoch window around i. Positions
// outside the sequence contribute zero and the divisor stays 11.
func rollMean(capped []float64, i int) float64 {
	var sum float64
	for j := i - sadehHalfWindow; j <= i+sadehHalfWindow; j++ {
		if j >= 0 && j < len(capped) {
			sum += capped[j]
		}
	}
	return sum / (2*sadehHalfWindow + 1)
}

// rollStd is the sample standard deviation over the trailing 6-epoch window
// ending at i, zero-padded before the start of the sequence.
func rollStd(capped []float64, i int) float64 {
	window := make([]float64, 0, sadehStdWindow)
	for j := i - sadehStdWindow + 1; j <= i; j++ {
		if j >= 0 {
			window = append(window, capped[j])
		} else {
			window = append(window, 0)
		}
	}
	return stat.StdDev(window, nil)
}

// rollNats counts epochs in the centred 11-epoch window whose capped count
// falls in [50, 100).
func rollNats(capped []float64, i int) float64 {
	var n float64
	for j := i - sadehHalfWindow; j <= i+sadehHalfWindow; j++ {
		if j >= 0 && j < len(capped) && capped[j] >= sadehNatLow && capped[j] < sadehNatHigh {
			n++
		}
	}
	return n
}

// sadehIndex computes the Sadeh sleep index for every epoch from its capped
// count and the rolling statistics around it.
func sadehIndex(capped []float64) []float64 {
	out := make([]float64, len(capped))
	for i, c := range capped {
		out[i] = sadehIntercept -
			sadehMeanCoeff*rollMean(capped, i) -
			sadehNatCoeff*rollNats(capped, i) -
			sadehStdCoeff*rollStd(capped, i) -
			sadehLogCoeff*math.Log(c+1)
	}
	return out
}

// SadehSingle scores a single sensor's epoch counts (axis1), returning one
// classification per epoch. Output timestamps are reconstructed against
// baseline.
func SadehSingle(t *epoch.Table, baseline time.Time) []Score {
	capped := make([]float64, t.Len())
	for i, r := range t.Records {
		capped[i] = sadehCap(r.Axis1)
	}
	index := sadehIndex(capped)

	scores := make([]Score, t.Len())
	for i, r := range t.Records {
		scores[i] = Score{
			DataTimestamp: timeparse.Format(baseline, float64(r.DataTimestamp)),
			SleepIndex:    index[i],
			State:         classify(index[i], sadehSleepThreshold, false),
		}
	}
	return scores
}

// SadehMulti scores a merged multi-sensor table limb by limb, mirroring the
// Cole-Kripke multi-limb structure: per-axis indices averaged per limb and
// the average classified.
func SadehMulti(m *epoch.MergedTable, baseline time.Time) []MultiScore {
	n := m.Len()
	limbIndex := make([][]float64, m.Sensors)
	for limb := 0; limb < m.Sensors; limb++ {
		axes := make([][]float64, 3)
		for ax := range axes {
			capped := make([]float64, n)
			for i, row := range m.Rows {
				capped[i] = sadehCap(axisValue(row, ax, limb))
			}
			axes[ax] = sadehIndex(capped)
		}
		limbIndex[limb] = average(axes...)
	}

	out := make([]MultiScore, n)
	for i, row := range m.Rows {
		ms := MultiScore{
			DataTimestamp: timeparse.Format(baseline, float64(row.DataTimestamp)),
			Limbs:         make([]LimbScore, m.Sensors),
		}
		for limb := 0; limb < m.Sensors; limb++ {
			idx := limbIndex[limb][i]
			ms.Limbs[limb] = LimbScore{
				SleepIndex: idx,
				State:      classify(idx, sadehSleepThreshold, false),
			}
		}
		out[i] = ms
	}
	return out
}
