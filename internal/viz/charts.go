// Package viz renders sleep score tables as standalone HTML charts using
// go-echarts: a grey sleep-index trend line with per-state scatter overlays
// (wake red, sleep blue), one chart per limb for multi-limb tables.
package viz

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/somno-data/sleep.report/internal/sleep"
)

const (
	wakeColour  = "red"
	sleepColour = "blue"
	trendColour = "grey"
)

// RenderScores writes an HTML chart of a single-sensor score table.
func RenderScores(w io.Writer, title string, scores []sleep.Score) error {
	timestamps := make([]string, len(scores))
	indices := make([]float64, len(scores))
	states := make([]sleep.State, len(scores))
	for i, s := range scores {
		timestamps[i] = s.DataTimestamp
		indices[i] = s.SleepIndex
		states[i] = s.State
	}
	return scoreChart(title, timestamps, indices, states).Render(w)
}

// RenderMultiScores writes an HTML page with one chart per limb of a
// multi-limb score table.
func RenderMultiScores(w io.Writer, title string, scores []sleep.MultiScore) error {
	limbs := 0
	if len(scores) > 0 {
		limbs = len(scores[0].Limbs)
	}
	if limbs == 0 {
		return fmt.Errorf("viz: no limb scores to render")
	}

	timestamps := make([]string, len(scores))
	for i, s := range scores {
		timestamps[i] = s.DataTimestamp
	}

	page := components.NewPage()
	page.PageTitle = title
	for limb := 0; limb < limbs; limb++ {
		indices := make([]float64, len(scores))
		states := make([]sleep.State, len(scores))
		for i, s := range scores {
			indices[i] = s.Limbs[limb].SleepIndex
			states[i] = s.Limbs[limb].State
		}
		page.AddCharts(scoreChart(fmt.Sprintf("%s - Limb %d", title, limb+1), timestamps, indices, states))
	}
	return page.Render(w)
}

// scoreChart builds one sleep-index chart: a trend line overlapped with a
// scatter series per sleep state so epochs are colour-coded.
func scoreChart(title string, timestamps []string, indices []float64, states []sleep.State) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: "sleep/wake states over time"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Sleep Index"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	trend := make([]opts.LineData, len(indices))
	for i, v := range indices {
		trend[i] = opts.LineData{Value: v}
	}
	line.SetXAxis(timestamps).AddSeries("trend", trend,
		charts.WithLineStyleOpts(opts.LineStyle{Color: trendColour, Opacity: opts.Float(0.5)}))

	scatter := charts.NewScatter()
	scatter.SetXAxis(timestamps).
		AddSeries("W", stateSeries(indices, states, sleep.Awake),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: wakeColour}),
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5})).
		AddSeries("S", stateSeries(indices, states, sleep.Asleep),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: sleepColour}),
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}))

	line.Overlap(scatter)
	return line
}

// stateSeries aligns one state's points to the shared x axis; epochs in the
// other state render as gaps.
func stateSeries(indices []float64, states []sleep.State, want sleep.State) []opts.ScatterData {
	out := make([]opts.ScatterData, len(indices))
	for i := range indices {
		if states[i] == want {
			out[i] = opts.ScatterData{Value: indices[i]}
		} else {
			out[i] = opts.ScatterData{Value: "-"}
		}
	}
	return out
}
