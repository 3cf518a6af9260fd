// Command filter-response plots the magnitude response of the conditioning
// filters (the 14.9 Hz low-pass and the 0.29 to 1.63 Hz band-pass used on the
// 30 Hz intermediate signal) to a PNG for inspection.
package main

import (
	"flag"
	"log"
	"math"
	"math/cmplx"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/somno-data/sleep.report/internal/dsp"
)

const (
	intermediateRate = 30.0
	numPoints        = 512
)

// magnitude evaluates |H(e^{jw})| of the rational filter b/a at the given
// normalised angular frequency.
func magnitude(b, a []float64, w float64) float64 {
	eval := func(coef []float64) complex128 {
		var sum complex128
		for k, c := range coef {
			sum += complex(c, 0) * cmplx.Exp(complex(0, -w*float64(k)))
		}
		return sum
	}
	return cmplx.Abs(eval(b) / eval(a))
}

func responseLine(b, a []float64) plotter.XYs {
	pts := make(plotter.XYs, numPoints)
	for i := range pts {
		w := math.Pi * float64(i) / float64(numPoints)
		pts[i].X = w / math.Pi * intermediateRate / 2
		pts[i].Y = magnitude(b, a, w)
	}
	return pts
}

func main() {
	output := flag.String("o", "filter_response.png", "output PNG path")
	order := flag.Int("order", 4, "filter order")
	flag.Parse()

	lowB, lowA := dsp.Lowpass(*order, 14.9/(intermediateRate/2))
	bandB, bandA := dsp.Bandpass(*order, 0.29/(intermediateRate/2), 1.63/(intermediateRate/2))

	p := plot.New()
	p.Title.Text = "Conditioning filter magnitude response"
	p.X.Label.Text = "Frequency (Hz)"
	p.Y.Label.Text = "|H|"

	lowLine, err := plotter.NewLine(responseLine(lowB, lowA))
	if err != nil {
		log.Fatalf("low-pass line: %v", err)
	}
	bandLine, err := plotter.NewLine(responseLine(bandB, bandA))
	if err != nil {
		log.Fatalf("band-pass line: %v", err)
	}
	bandLine.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(lowLine, bandLine)
	p.Legend.Add("low-pass 14.9 Hz", lowLine)
	p.Legend.Add("band-pass 0.29-1.63 Hz", bandLine)
	p.Legend.Top = true

	if err := p.Save(8*vg.Inch, 5*vg.Inch, *output); err != nil {
		log.Fatalf("save %s: %v", *output, err)
	}
	log.Printf("✓ Created: %s", *output)
}
