package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/somno-data/sleep.report/internal/agd"
	"github.com/somno-data/sleep.report/internal/config"
	"github.com/somno-data/sleep.report/internal/counts"
	"github.com/somno-data/sleep.report/internal/csvio"
	"github.com/somno-data/sleep.report/internal/epoch"
	"github.com/somno-data/sleep.report/internal/nonwear"
	"github.com/somno-data/sleep.report/internal/sleep"
	"github.com/somno-data/sleep.report/internal/viz"
)

// runPreprocess converts one raw recording per limb into per-epoch activity
// counts, writing sensor_<i>_counts.csv per input and combined_counts.csv when
// more than one limb was recorded.
func runPreprocess(args []string) error {
	fs := flag.NewFlagSet("preprocess", flag.ContinueOnError)
	rate := fs.Int("r", counts.DefaultRawRate, "raw sampling rate in Hz")
	outDir := fs.String("o", ".", "output directory")
	magnitude := fs.Bool("m", false, "emit a vector magnitude channel alongside the axis counts")
	if err := fs.Parse(args); err != nil {
		return err
	}

	inputs := fs.Args()
	if len(inputs) < 1 || len(inputs) > 4 {
		return fmt.Errorf("expected between 1 and 4 raw CSV files, got %d", len(inputs))
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tables := make([]*epoch.Table, 0, len(inputs))
	for i, path := range inputs {
		samples, _, err := csvio.ReadRaw(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		table, err := counts.Process(samples, counts.Options{RawRate: *rate, Magnitude: *magnitude})
		if err != nil {
			return fmt.Errorf("process %s: %w", path, err)
		}

		out := filepath.Join(*outDir, fmt.Sprintf("sensor_%d_counts.csv", i+1))
		if err := csvio.WriteEpochTable(out, table); err != nil {
			return err
		}
		log.Printf("wrote %s (%d epochs from %d samples)", out, table.Len(), len(samples))
		tables = append(tables, table)
	}

	if len(tables) >= 2 {
		merged, err := epoch.Merge(tables...)
		if err != nil {
			return fmt.Errorf("merge sensors: %w", err)
		}
		out := filepath.Join(*outDir, "combined_counts.csv")
		if err := csvio.WriteMergedTable(out, merged); err != nil {
			return err
		}
		log.Printf("wrote %s (%d shared epochs across %d sensors)", out, merged.Len(), merged.Sensors)
	}
	return nil
}

// runScore applies a scoring algorithm to a counts table. Single-sensor
// algorithms (O, S, C) accept an epoch CSV or an .agd recording; multi-sensor
// algorithms (SM, CM) require a combined counts CSV.
func runScore(args []string) error {
	fs := flag.NewFlagSet("score", flag.ContinueOnError)
	algo := fs.String("a", "", "algorithm: O (non-wear), S (Sadeh), C (Cole-Kripke), SM, CM")
	dataFile := fs.String("d", "", "input counts table (.csv or .agd)")
	cfgPath := fs.String("c", "", "optional JSON run configuration")
	outPath := fs.String("o", "", "output CSV path (defaults next to the input)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dataFile == "" {
		return fmt.Errorf("-d datafile is required")
	}

	cfg := &config.RunConfig{}
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	algorithm := cfg.GetAlgorithm()
	if *algo != "" {
		algorithm = *algo
	}
	baseline := cfg.GetScoreBaseline()

	switch algorithm {
	case config.AlgorithmChoi:
		table, err := loadEpochTable(*dataFile)
		if err != nil {
			return err
		}
		params := nonwear.Params{
			MinPeriodLen:   cfg.GetMinPeriodLen(),
			MinWindowLen:   cfg.GetMinWindowLen(),
			SpikeTolerance: cfg.GetSpikeTolerance(),
			UseMagnitude:   cfg.GetUseMagnitude(),
		}
		intervals, err := nonwear.Detect(table, params)
		if err != nil {
			return err
		}
		out := outputPath(*outPath, *dataFile, "_nonwear.csv")
		if err := csvio.WriteIntervals(out, intervals); err != nil {
			return err
		}
		log.Printf("wrote %s (%d non-wear intervals)", out, len(intervals))

	case config.AlgorithmSadeh, config.AlgorithmColeKripke:
		table, err := loadEpochTable(*dataFile)
		if err != nil {
			return err
		}
		var scores []sleep.Score
		if algorithm == config.AlgorithmSadeh {
			scores = sleep.SadehSingle(table, baseline)
		} else {
			scores = sleep.ColeKripkeSingle(table, baseline)
		}
		out := outputPath(*outPath, *dataFile, "_scores.csv")
		if err := csvio.WriteScores(out, scores); err != nil {
			return err
		}
		log.Printf("wrote %s (%d scored epochs)", out, len(scores))

	case config.AlgorithmSadehMulti, config.AlgorithmColeKripkeMulti:
		merged, err := csvio.ReadMergedTable(*dataFile)
		if err != nil {
			return err
		}
		var scores []sleep.MultiScore
		if algorithm == config.AlgorithmSadehMulti {
			scores = sleep.SadehMulti(merged, baseline)
		} else {
			scores = sleep.ColeKripkeMulti(merged, baseline)
		}
		out := outputPath(*outPath, *dataFile, "_scores.csv")
		if err := csvio.WriteMultiScores(out, scores); err != nil {
			return err
		}
		log.Printf("wrote %s (%d scored epochs, %d limbs)", out, len(scores), merged.Sensors)

	default:
		return fmt.Errorf("unknown algorithm %q: choose from O, S, C, SM, CM", algorithm)
	}
	return nil
}

// runChart renders a score CSV as a standalone HTML chart.
func runChart(args []string) error {
	fs := flag.NewFlagSet("chart", flag.ContinueOnError)
	dataFile := fs.String("d", "", "input score CSV")
	multi := fs.Bool("multi", false, "input is a multi-limb score table")
	title := fs.String("t", "Sleep Report", "chart title")
	outPath := fs.String("o", "", "output HTML path (defaults next to the input)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dataFile == "" {
		return fmt.Errorf("-d datafile is required")
	}

	out := outputPath(*outPath, *dataFile, ".html")
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	if *multi {
		scores, err := csvio.ReadMultiScores(*dataFile)
		if err != nil {
			return err
		}
		if err := viz.RenderMultiScores(f, *title, scores); err != nil {
			return err
		}
	} else {
		scores, err := csvio.ReadScores(*dataFile)
		if err != nil {
			return err
		}
		if err := viz.RenderScores(f, *title, scores); err != nil {
			return err
		}
	}
	log.Printf("wrote %s", out)
	return nil
}

// loadEpochTable reads a single-sensor counts table from a CSV file or, when
// the path has a .agd extension, from an ActiGraph recording.
func loadEpochTable(path string) (*epoch.Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".agd") {
		f, err := agd.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return f.EpochTable()
	}
	return csvio.ReadEpochTable(path)
}

// outputPath returns explicit when set, otherwise the input path with its
// extension replaced by suffix.
func outputPath(explicit, input, suffix string) string {
	if explicit != "" {
		return explicit
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + suffix
}
