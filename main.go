// Command sleep.report turns wrist/ankle accelerometer recordings into
// activity counts, sleep/wake scores, and non-wear reports.
//
// Usage:
//
//	sleep.report preprocess [-r rate] [-m] [-o dir] raw1.csv [raw2.csv ...]
//	sleep.report score -a O|S|C|SM|CM -d counts.csv [-c run.json] [-o out.csv]
//	sleep.report chart -d scores.csv [-multi] [-t title] [-o out.html]
package main

import (
	"fmt"
	"log"
	"os"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s <preprocess|score|chart> [flags]\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "  preprocess  convert raw accelerometer CSVs to per-epoch activity counts")
	fmt.Fprintln(os.Stderr, "  score       run a sleep or non-wear algorithm over a counts table")
	fmt.Fprintln(os.Stderr, "  chart       render a score table as an HTML chart")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "preprocess":
		err = runPreprocess(os.Args[2:])
	case "score":
		err = runScore(os.Args[2:])
	case "chart":
		err = runChart(os.Args[2:])
	case "-h", "--help", "help":
		usage()
		return
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}
