// Package timeparse normalises raw sensor timestamp strings onto a
// per-recording elapsed-seconds axis and converts elapsed seconds back into
// wall-clock strings for report output.
//
// Raw recordings carry timestamps of the form "2025-02-03 21:13:10.260".
// Some firmware revisions emit a seconds field of 60 or above when the
// device clock rolls over mid-write; those values are clamped to 59.999
// before parsing rather than rejected.
package timeparse

import (
	"fmt"
	"math"
	"regexp"
	"time"
)

// Layout is the wall-clock layout used by raw recordings and report output.
const Layout = "2006-01-02 15:04:05"

// timePattern matches "YYYY-MM-DD HH:MM:SS" with an optional fractional
// seconds suffix. The seconds field is captured separately so out-of-range
// values can be repaired before parsing.
var timePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:)(\d{2})(\.\d+)?$`)

// ParseError reports a timestamp string that does not match the expected
// "YYYY-MM-DD HH:MM:SS[.fff]" pattern.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("timeparse: invalid timestamp %q: %v", e.Input, e.Err)
	}
	return fmt.Sprintf("timeparse: invalid timestamp %q", e.Input)
}

func (e *ParseError) Unwrap() error { return e.Err }

// UnorderedInputError reports a raw recording whose rows are not in
// ascending time order. Resampling and epoch windowing silently produce
// nonsensical counts on unordered input, so it is rejected up front.
type UnorderedInputError struct {
	Row        int
	Prev, Curr float64
}

func (e *UnorderedInputError) Error() string {
	return fmt.Sprintf("timeparse: input not time-ordered at row %d: %.3fs follows %.3fs",
		e.Row, e.Curr, e.Prev)
}

// Parse parses a timestamp string into an absolute instant (UTC). A seconds
// field of 60 or above, including any fractional part, is clamped to 59.999
// as a silent repair; a string that does not match the pattern at all fails
// with a *ParseError.
func Parse(s string) (time.Time, error) {
	m := timePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, &ParseError{Input: s}
	}
	prefix, sec, frac := m[1], m[2], m[3]
	if secondsValue(sec, frac) >= 60 {
		s = prefix + "59.999"
	}
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, &ParseError{Input: s, Err: err}
	}
	return t, nil
}

func secondsValue(sec, frac string) float64 {
	v := float64((sec[0]-'0')*10 + (sec[1] - '0'))
	if frac != "" {
		var f float64
		fmt.Sscanf(frac, "%f", &f)
		v += f
	}
	return v
}

// Elapsed parses a timestamp string and returns the seconds elapsed since
// baseline as a float. The baseline is normally the first row's own parsed
// instant, establishing a per-sensor zero shared by later merge steps.
func Elapsed(s string, baseline time.Time) (float64, error) {
	t, err := Parse(s)
	if err != nil {
		return 0, err
	}
	return t.Sub(baseline).Seconds(), nil
}

// Format converts elapsed seconds since baseline back into a wall-clock
// string "YYYY-MM-DD HH:MM:SS.fff". Sub-millisecond digits are truncated,
// not rounded, matching the report format consumed downstream.
func Format(baseline time.Time, elapsed float64) string {
	t := baseline.Add(time.Duration(math.Round(elapsed*1e6)) * time.Microsecond)
	return t.Format(Layout + ".000")
}

// CheckMonotonic validates that an elapsed-seconds axis never decreases.
// Equal adjacent values are allowed; sensors with coarse clocks can emit
// duplicate stamps within a second.
func CheckMonotonic(elapsed []float64) error {
	for i := 1; i < len(elapsed); i++ {
		if elapsed[i] < elapsed[i-1] {
			return &UnorderedInputError{Row: i, Prev: elapsed[i-1], Curr: elapsed[i]}
		}
	}
	return nil
}
