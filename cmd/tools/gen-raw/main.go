// Command gen-raw generates a synthetic raw accelerometer CSV for testing
// the preprocessing pipeline: alternating minutes of movement (a band-limited
// wobble) and rest, sampled at a configurable rate.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"time"
)

func main() {
	output := flag.String("o", "raw.csv", "output path")
	minutes := flag.Int("n", 10, "recording length in minutes")
	rate := flag.Int("r", 100, "sampling rate in Hz")
	amplitude := flag.Float64("amp", 0.5, "movement amplitude in g")
	start := flag.String("start", "2025-02-03 21:00:00", "first sample timestamp (YYYY-MM-DD HH:MM:SS)")
	flag.Parse()

	base, err := time.Parse("2006-01-02 15:04:05", *start)
	if err != nil {
		log.Fatalf("bad -start value: %v", err)
	}
	if *rate <= 0 || *minutes <= 0 {
		log.Fatal("-r and -n must be positive")
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("create %s: %v", *output, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	defer w.Flush()

	step := time.Second / time.Duration(*rate)
	total := *minutes * 60 * *rate
	for i := 0; i < total; i++ {
		ts := base.Add(time.Duration(i) * step)
		elapsed := float64(i) / float64(*rate)

		// movement on even minutes, rest on odd
		var x, y, z float64
		if (i/(60**rate))%2 == 0 {
			x = *amplitude * math.Sin(2*math.Pi*1.0*elapsed)
			y = *amplitude * 0.6 * math.Sin(2*math.Pi*0.7*elapsed+1.3)
			z = *amplitude * 0.3 * math.Sin(2*math.Pi*1.2*elapsed+0.4)
		}

		fmt.Fprintf(w, "%s,%.6f,%.6f,%.6f\n", ts.Format("2006-01-02 15:04:05.000"), x, y, z)
		if (i+1)%(60**rate) == 0 {
			log.Printf("%d/%d minutes", (i+1)/(60**rate), *minutes)
		}
	}
	log.Printf("✓ Created: %s (%d samples)", *output, total)
}
