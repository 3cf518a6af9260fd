package sleep

import (
	"time"

	"github.com/somno-data/sleep.report/internal/epoch"
	"github.com/somno-data/sleep.report/internal/timeparse"
)

// Cole-Kripke algorithm constants (Cole et al. 1992, 1-minute epochs).
// The seven weights cover epochs at offsets -4..+2 around the scored epoch.
var coleWeights = [7]float64{106, 54, 58, 76, 230, 74, 67}

const (
	coleWeightScale    = 0.001
	coleCountDivisor   = 100
	coleCountCeiling   = 300
	coleSleepThreshold = 1.0
)

// coleAdjust scales a raw epoch count onto the Cole-Kripke activity scale,
// capping extreme bursts.
func coleAdjust(count int64) float64 {
	v := float64(count) / coleCountDivisor
	if v > coleCountCeiling {
		return coleCountCeiling
	}
	return v
}

// coleIndex computes the sleep index for every epoch: a fixed 7-tap
// weighted sum over adjusted counts. Taps falling outside the sequence are
// treated as zero; no reflection or wrap-around.
func coleIndex(adjusted []float64) []float64 {
	out := make([]float64, len(adjusted))
	for i := range adjusted {
		var sum float64
		for k, w := range coleWeights {
			j := i + k - 4 // offsets -4..+2
			if j >= 0 && j < len(adjusted) {
				sum += w * adjusted[j]
			}
		}
		out[i] = coleWeightScale * sum
	}
	return out
}

// ColeKripkeSingle scores a single sensor's epoch counts (axis1), returning
// one classification per epoch. Output timestamps are reconstructed against
// baseline.
func ColeKripkeSingle(t *epoch.Table, baseline time.Time) []Score {
	adjusted := make([]float64, t.Len())
	for i, r := range t.Records {
		adjusted[i] = coleAdjust(r.Axis1)
	}
	index := coleIndex(adjusted)

	scores := make([]Score, t.Len())
	for i, r := range t.Records {
		scores[i] = Score{
			DataTimestamp: timeparse.Format(baseline, float64(r.DataTimestamp)),
			SleepIndex:    index[i],
			State:         classify(index[i], coleSleepThreshold, true),
		}
	}
	return scores
}

// ColeKripkeMulti scores a merged multi-sensor table limb by limb: each
// limb's three axis indices are averaged and the average classified. Limbs
// are scored independently of each other.
func ColeKripkeMulti(m *epoch.MergedTable, baseline time.Time) []MultiScore {
	n := m.Len()
	limbIndex := make([][]float64, m.Sensors)
	for limb := 0; limb < m.Sensors; limb++ {
		axes := make([][]float64, 3)
		for ax := range axes {
			adjusted := make([]float64, n)
			for i, row := range m.Rows {
				adjusted[i] = coleAdjust(axisValue(row, ax, limb))
			}
			axes[ax] = coleIndex(adjusted)
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
				State:      classify(idx, coleSleepThreshold, true),
			}
		}
		out[i] = ms
	}
	return out
}

func axisValue(row epoch.MergedRow, axis, sensor int) int64 {
	switch axis {
	case 0:
		return row.Axis1[sensor]
	case 1:
		return row.Axis2[sensor]
	default:
		return row.Axis3[sensor]
	}
}
