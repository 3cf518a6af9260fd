// Package testutil provides shared fixtures for pipeline tests.
//
// This package centralises the epoch table builders used across the scoring
// and non-wear test suites so fixtures stay consistent between packages.
package testutil

import (
	"math"

	"github.com/somno-data/sleep.report/internal/epoch"
)

// AxisTable builds a single-sensor table whose axis1 carries the given
// counts, timestamped from zero at 60-second intervals.
func AxisTable(counts ...int64) *epoch.Table {
	t := &epoch.Table{}
	for i, c := range counts {
		t.Records = append(t.Records, epoch.Record{
			DataTimestamp: int64(i) * epoch.Seconds,
			Axis1:         c,
		})
	}
	return t
}

// UniformTable builds a single-sensor table with the given counts on all
// three axes.
func UniformTable(counts ...int64) *epoch.Table {
	t := AxisTable(counts...)
	for i := range t.Records {
		t.Records[i].Axis2 = t.Records[i].Axis1
		t.Records[i].Axis3 = t.Records[i].Axis1
	}
	return t
}

// ScaledMergedTable builds a merged table where sensor s carries the given
// counts scaled by s+1 on every axis, so per-limb results are distinguishable.
func ScaledMergedTable(sensors int, counts ...int64) *epoch.MergedTable {
	m := &epoch.MergedTable{Sensors: sensors}
	for i, c := range counts {
		row := epoch.MergedRow{DataTimestamp: int64(i) * epoch.Seconds}
		for s := 0; s < sensors; s++ {
			scale := int64(s + 1)
			row.Axis1 = append(row.Axis1, c*scale)
			row.Axis2 = append(row.Axis2, c*scale)
			row.Axis3 = append(row.Axis3, c*scale)
		}
		m.Rows = append(m.Rows, row)
	}
	return m
}

// Sine returns n samples of a unit sinusoid at freq Hz sampled at rate Hz.
func Sine(freq float64, rate, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(rate))
	}
	return out
}
