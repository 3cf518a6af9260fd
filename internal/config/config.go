// Package config loads run configuration for the scoring CLI. Fields are
// pointer-typed so a partial JSON file only overrides what it names; the
// Get accessors supply published defaults for the rest.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/somno-data/sleep.report/internal/timeparse"
)

// Algorithm selectors accepted by the scoring CLI.
const (
	AlgorithmChoi            = "O"
	AlgorithmSadeh           = "S"
	AlgorithmColeKripke      = "C"
	AlgorithmSadehMulti      = "SM"
	AlgorithmColeKripkeMulti = "CM"
)

// DefaultScoreBaseline is the wall-clock instant reattached to score output
// timestamps when the run config does not carry the recording's own
// baseline.
const DefaultScoreBaseline = "2025-02-03 21:00:00"

// RunConfig is the JSON run configuration. All fields are optional.
type RunConfig struct {
	Algorithm      *string `json:"algorithm,omitempty"`
	Limbs          *int    `json:"limbs,omitempty"`
	RawRate        *int    `json:"raw_rate,omitempty"`
	MinPeriodLen   *int    `json:"min_period_len,omitempty"`
	MinWindowLen   *int    `json:"min_window_len,omitempty"`
	SpikeTolerance *int    `json:"spike_tolerance,omitempty"`
	UseMagnitude   *bool   `json:"use_magnitude,omitempty"`
	// ScoreBaseline is a "YYYY-MM-DD HH:MM:SS" instant used to reconstruct
	// absolute timestamps in score output.
	ScoreBaseline *string `json:"score_baseline,omitempty"`
}

// Load reads a RunConfig from a JSON file. The path must carry a .json
// extension and the file must be under 1MB; fields omitted from the file
// keep their defaults, so partial configs are safe.
func Load(path string) (*RunConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &RunConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks every populated field against its allowed range.
func (c *RunConfig) Validate() error {
	if c.Algorithm != nil {
		switch *c.Algorithm {
		case AlgorithmChoi, AlgorithmSadeh, AlgorithmColeKripke, AlgorithmSadehMulti, AlgorithmColeKripkeMulti:
		default:
			return fmt.Errorf("unknown algorithm %q: choose from O, S, C, SM, CM", *c.Algorithm)
		}
	}
	if c.Limbs != nil && (*c.Limbs < 1 || *c.Limbs > 4) {
		return fmt.Errorf("limbs must be in [1,4], got %d", *c.Limbs)
	}
	if c.RawRate != nil && *c.RawRate <= 0 {
		return fmt.Errorf("raw_rate must be positive, got %d", *c.RawRate)
	}
	if c.MinPeriodLen != nil && *c.MinPeriodLen <= 0 {
		return fmt.Errorf("min_period_len must be positive, got %d", *c.MinPeriodLen)
	}
	if c.MinWindowLen != nil && *c.MinWindowLen <= 0 {
		return fmt.Errorf("min_window_len must be positive, got %d", *c.MinWindowLen)
	}
	if c.SpikeTolerance != nil && *c.SpikeTolerance < 0 {
		return fmt.Errorf("spike_tolerance must not be negative, got %d", *c.SpikeTolerance)
	}
	if c.ScoreBaseline != nil {
		if _, err := timeparse.Parse(*c.ScoreBaseline); err != nil {
			return fmt.Errorf("score_baseline: %w", err)
		}
	}
	return nil
}

// GetAlgorithm returns the configured algorithm, defaulting to Cole-Kripke
// single-sensor.
func (c *RunConfig) GetAlgorithm() string {
	if c.Algorithm != nil {
		return *c.Algorithm
	}
	return AlgorithmColeKripke
}

// GetLimbs returns the configured limb count, defaulting to 4.
func (c *RunConfig) GetLimbs() int {
	if c.Limbs != nil {
		return *c.Limbs
	}
	return 4
}

// GetRawRate returns the raw sampling rate in Hz, defaulting to 100.
func (c *RunConfig) GetRawRate() int {
	if c.RawRate != nil {
		return *c.RawRate
	}
	return 100
}

// GetMinPeriodLen returns the Choi minimum period length, defaulting to 90.
func (c *RunConfig) GetMinPeriodLen() int {
	if c.MinPeriodLen != nil {
		return *c.MinPeriodLen
	}
	return 90
}

// GetMinWindowLen returns the Choi minimum window length, defaulting to 30.
func (c *RunConfig) GetMinWindowLen() int {
	if c.MinWindowLen != nil {
		return *c.MinWindowLen
	}
	return 30
}

// GetSpikeTolerance returns the Choi spike tolerance, defaulting to 2.
func (c *RunConfig) GetSpikeTolerance() int {
	if c.SpikeTolerance != nil {
		return *c.SpikeTolerance
	}
	return 2
}

// GetUseMagnitude reports whether Choi classifies wear from the vector
// magnitude instead of axis1. Defaults to false.
func (c *RunConfig) GetUseMagnitude() bool {
	return c.UseMagnitude != nil && *c.UseMagnitude
}

// GetScoreBaseline returns the score output baseline as an instant.
// Validate has already checked the string parses.
func (c *RunConfig) GetScoreBaseline() time.Time {
	s := DefaultScoreBaseline
	if c.ScoreBaseline != nil {
		s = *c.ScoreBaseline
	}
	t, err := timeparse.Parse(s)
	if err != nil {
		t, _ = timeparse.Parse(DefaultScoreBaseline)
	}
	return t
}
