// Package csvio reads and writes the flat tabular files exchanged with the
// pipeline: headerless raw recordings, epoch count tables, merged
// multi-sensor tables, sleep score tables, and non-wear interval reports.
//
// The core packages assume well-formed tables; validating file shape and
// column presence is this package's responsibility, and problems fail fast
// with a descriptive error.
package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/somno-data/sleep.report/internal/counts"
	"github.com/somno-data/sleep.report/internal/epoch"
	"github.com/somno-data/sleep.report/internal/nonwear"
	"github.com/somno-data/sleep.report/internal/sleep"
	"github.com/somno-data/sleep.report/internal/timeparse"
)

// ReadRaw reads a headerless raw sensor CSV of rows
// (timestamp, axis1, axis2, axis3) and returns the samples on an
// elapsed-seconds axis together with the recording baseline, which is the
// first row's parsed instant.
func ReadRaw(path string) ([]counts.RawSample, time.Time, error) {
	rows, err := readAll(path)
	if err != nil {
		return nil, time.Time{}, err
	}
	if len(rows) == 0 {
		return nil, time.Time{}, fmt.Errorf("csvio: %s: empty raw recording", path)
	}

	baseline, err := timeparse.Parse(rows[0][0])
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("csvio: %s row 1: %w", path, err)
	}

	samples := make([]counts.RawSample, 0, len(rows))
	for i, row := range rows {
		if len(row) != 4 {
			return nil, time.Time{}, fmt.Errorf("csvio: %s row %d: want 4 columns (timestamp, axis1, axis2, axis3), got %d", path, i+1, len(row))
		}
		elapsed, err := timeparse.Elapsed(row[0], baseline)
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("csvio: %s row %d: %w", path, i+1, err)
		}
		s := counts.RawSample{Elapsed: elapsed}
		if s.Axis1, err = parseFloat(row[1]); err != nil {
			return nil, time.Time{}, fmt.Errorf("csvio: %s row %d axis1: %w", path, i+1, err)
		}
		if s.Axis2, err = parseFloat(row[2]); err != nil {
			return nil, time.Time{}, fmt.Errorf("csvio: %s row %d axis2: %w", path, i+1, err)
		}
		if s.Axis3, err = parseFloat(row[3]); err != nil {
			return nil, time.Time{}, fmt.Errorf("csvio: %s row %d axis3: %w", path, i+1, err)
		}
		samples = append(samples, s)
	}
	return samples, baseline, nil
}

// epochHeader is the column set of single-sensor epoch tables; magnitude is
// an optional trailing column on the legacy single-sensor path.
var epochHeader = []string{"dataTimestamp", "axis1", "axis2", "axis3"}

const magnitudeColumn = "vm_epoch_counts"

// ReadEpochTable reads a single-sensor epoch count CSV with a header row.
func ReadEpochTable(path string) (*epoch.Table, error) {
	rows, err := readAll(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csvio: %s: missing header row", path)
	}
	header := rows[0]
	for i, want := range epochHeader {
		if i >= len(header) || header[i] != want {
			return nil, fmt.Errorf("csvio: %s: missing required column %q", path, want)
		}
	}
	table := &epoch.Table{
		HasMagnitude: len(header) > 4 && header[4] == magnitudeColumn,
	}

	want := len(epochHeader)
	if table.HasMagnitude {
		want++
	}
	for i, row := range rows[1:] {
		if len(row) < want {
			return nil, fmt.Errorf("csvio: %s row %d: want %d columns, got %d", path, i+2, want, len(row))
		}
		var r epoch.Record
		if r.DataTimestamp, err = parseInt(row[0]); err != nil {
			return nil, fmt.Errorf("csvio: %s row %d dataTimestamp: %w", path, i+2, err)
		}
		if r.Axis1, err = parseInt(row[1]); err != nil {
			return nil, fmt.Errorf("csvio: %s row %d axis1: %w", path, i+2, err)
		}
		if r.Axis2, err = parseInt(row[2]); err != nil {
			return nil, fmt.Errorf("csvio: %s row %d axis2: %w", path, i+2, err)
		}
		if r.Axis3, err = parseInt(row[3]); err != nil {
			return nil, fmt.Errorf("csvio: %s row %d axis3: %w", path, i+2, err)
		}
		if table.HasMagnitude {
			if r.Magnitude, err = parseInt(row[4]); err != nil {
				return nil, fmt.Errorf("csvio: %s row %d %s: %w", path, i+2, magnitudeColumn, err)
			}
		}
		table.Records = append(table.Records, r)
	}
	return table, nil
}

// WriteEpochTable writes a single-sensor epoch table with a header row.
func WriteEpochTable(path string, t *epoch.Table) error {
	header := append([]string(nil), epochHeader...)
	if t.HasMagnitude {
		header = append(header, magnitudeColumn)
	}
	rows := [][]string{header}
	for _, r := range t.Records {
		row := []string{
			strconv.FormatInt(r.DataTimestamp, 10),
			strconv.FormatInt(r.Axis1, 10),
			strconv.FormatInt(r.Axis2, 10),
			strconv.FormatInt(r.Axis3, 10),
		}
		if t.HasMagnitude {
			row = append(row, strconv.FormatInt(r.Magnitude, 10))
		}
		rows = append(rows, row)
	}
	return writeAll(path, rows)
}

// mergedHeader builds the merged table header: dataTimestamp then axis
// columns grouped axis-major with 1-based sensor suffixes.
func mergedHeader(sensors int) []string {
	header := []string{"dataTimestamp"}
	for _, axis := range []string{"axis1", "axis2", "axis3"} {
		for i := 1; i <= sensors; i++ {
			header = append(header, fmt.Sprintf("%s_%d", axis, i))
		}
	}
	return header
}

// WriteMergedTable writes a merged multi-sensor epoch table.
func WriteMergedTable(path string, m *epoch.MergedTable) error {
	rows := [][]string{mergedHeader(m.Sensors)}
	for _, r := range m.Rows {
		row := []string{strconv.FormatInt(r.DataTimestamp, 10)}
		for _, axis := range [][]int64{r.Axis1, r.Axis2, r.Axis3} {
			for _, v := range axis {
				row = append(row, strconv.FormatInt(v, 10))
			}
		}
		rows = append(rows, row)
	}
	return writeAll(path, rows)
}

// ReadMergedTable reads a merged multi-sensor epoch CSV, inferring the
// sensor count from the axis1_N columns.
func ReadMergedTable(path string) (*epoch.MergedTable, error) {
	rows, err := readAll(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csvio: %s: missing header row", path)
	}
	header := rows[0]

	sensors := 0
	for i := 1; i <= 4; i++ {
		if contains(header, fmt.Sprintf("axis1_%d", i)) {
			sensors = i
		}
	}
	if sensors < 2 {
		return nil, fmt.Errorf("csvio: %s: not a merged table: need axis1_1..axis1_N columns for at least 2 sensors", path)
	}
	want := mergedHeader(sensors)
	for _, col := range want {
		if !contains(header, col) {
			return nil, fmt.Errorf("csvio: %s: missing required column %q", path, col)
		}
	}
	pos := make(map[string]int, len(header))
	for i, col := range header {
		pos[col] = i
	}

	m := &epoch.MergedTable{Sensors: sensors}
	for i, row := range rows[1:] {
		if len(row) < len(want) {
			return nil, fmt.Errorf("csvio: %s row %d: want %d columns, got %d", path, i+2, len(want), len(row))
		}
		mr := epoch.MergedRow{}
		if mr.DataTimestamp, err = parseInt(row[pos["dataTimestamp"]]); err != nil {
			return nil, fmt.Errorf("csvio: %s row %d dataTimestamp: %w", path, i+2, err)
		}
		for s := 1; s <= sensors; s++ {
			v1, err := parseInt(row[pos[fmt.Sprintf("axis1_%d", s)]])
			if err != nil {
				return nil, fmt.Errorf("csvio: %s row %d axis1_%d: %w", path, i+2, s, err)
			}
			v2, err := parseInt(row[pos[fmt.Sprintf("axis2_%d", s)]])
			if err != nil {
				return nil, fmt.Errorf("csvio: %s row %d axis2_%d: %w", path, i+2, s, err)
			}
			v3, err := parseInt(row[pos[fmt.Sprintf("axis3_%d", s)]])
			if err != nil {
				return nil, fmt.Errorf("csvio: %s row %d axis3_%d: %w", path, i+2, s, err)
			}
			mr.Axis1 = append(mr.Axis1, v1)
			mr.Axis2 = append(mr.Axis2, v2)
			mr.Axis3 = append(mr.Axis3, v3)
		}
		m.Rows = append(m.Rows, mr)
	}
	return m, nil
}

// WriteScores writes a single-sensor score table:
// dataTimestamp, sleep_index, sleep.
func WriteScores(path string, scores []sleep.Score) error {
	rows := [][]string{{"dataTimestamp", "sleep_index", "sleep"}}
	for _, s := range scores {
		rows = append(rows, []string{
			s.DataTimestamp,
			formatFloat(s.SleepIndex),
			string(s.State),
		})
	}
	return writeAll(path, rows)
}

// WriteMultiScores writes a multi-limb score table with one sleep_index and
// sleep column pair per limb.
func WriteMultiScores(path string, scores []sleep.MultiScore) error {
	limbs := 0
	if len(scores) > 0 {
		limbs = len(scores[0].Limbs)
	}
	header := []string{"dataTimestamp"}
	for k := 1; k <= limbs; k++ {
		header = append(header,
			fmt.Sprintf("Limb %d sleep_index", k),
			fmt.Sprintf("Limb %d sleep", k))
	}
	rows := [][]string{header}
	for _, ms := range scores {
		row := []string{ms.DataTimestamp}
		for _, limb := range ms.Limbs {
			row = append(row, formatFloat(limb.SleepIndex), string(limb.State))
		}
		rows = append(rows, row)
	}
	return writeAll(path, rows)
}

// ReadScores reads a single-sensor score table back, for charting.
func ReadScores(path string) ([]sleep.Score, error) {
	rows, err := readAll(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csvio: %s: missing header row", path)
	}
	for _, col := range []string{"dataTimestamp", "sleep_index", "sleep"} {
		if !contains(rows[0], col) {
			return nil, fmt.Errorf("csvio: %s: missing required column %q", path, col)
		}
	}
	pos := make(map[string]int, len(rows[0]))
	for i, col := range rows[0] {
		pos[col] = i
	}

	var scores []sleep.Score
	for i, row := range rows[1:] {
		if len(row) < len(rows[0]) {
			return nil, fmt.Errorf("csvio: %s row %d: want %d columns, got %d", path, i+2, len(rows[0]), len(row))
		}
		idx, err := parseFloat(row[pos["sleep_index"]])
		if err != nil {
			return nil, fmt.Errorf("csvio: %s row %d sleep_index: %w", path, i+2, err)
		}
		scores = append(scores, sleep.Score{
			DataTimestamp: row[pos["dataTimestamp"]],
			SleepIndex:    idx,
			State:         sleep.State(row[pos["sleep"]]),
		})
	}
	return scores, nil
}

// ReadMultiScores reads a multi-limb score table back, for charting.
func ReadMultiScores(path string) ([]sleep.MultiScore, error) {
	rows, err := readAll(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csvio: %s: missing header row", path)
	}
	header := rows[0]
	if !contains(header, "dataTimestamp") {
		return nil, fmt.Errorf("csvio: %s: missing required column %q", path, "dataTimestamp")
	}
	limbs := 0
	for k := 1; k <= 4; k++ {
		if contains(header, fmt.Sprintf("Limb %d sleep_index", k)) {
			limbs = k
		}
	}
	if limbs == 0 {
		return nil, fmt.Errorf("csvio: %s: no limb score columns found", path)
	}
	pos := make(map[string]int, len(header))
	for i, col := range header {
		pos[col] = i
	}

	var scores []sleep.MultiScore
	for i, row := range rows[1:] {
		if len(row) < len(header) {
			return nil, fmt.Errorf("csvio: %s row %d: want %d columns, got %d", path, i+2, len(header), len(row))
		}
		ms := sleep.MultiScore{DataTimestamp: row[pos["dataTimestamp"]]}
		for k := 1; k <= limbs; k++ {
			idx, err := parseFloat(row[pos[fmt.Sprintf("Limb %d sleep_index", k)]])
			if err != nil {
				return nil, fmt.Errorf("csvio: %s row %d limb %d: %w", path, i+2, k, err)
			}
			ms.Limbs = append(ms.Limbs, sleep.LimbScore{
				SleepIndex: idx,
				State:      sleep.State(row[pos[fmt.Sprintf("Limb %d sleep", k)]]),
			})
		}
		scores = append(scores, ms)
	}
	return scores, nil
}

// WriteIntervals writes a non-wear interval report:
// timestamp, period_end, length.
func WriteIntervals(path string, intervals []nonwear.Interval) error {
	rows := [][]string{{"timestamp", "period_end", "length"}}
	for _, iv := range intervals {
		rows = append(rows, []string{
			strconv.FormatInt(iv.Start, 10),
			strconv.FormatInt(iv.End, 10),
			strconv.Itoa(iv.Length),
		})
	}
	return writeAll(path, rows)
}

func readAll(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csvio: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // shape is validated per table kind
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csvio: %s: %w", path, err)
	}
	return rows, nil
}

func writeAll(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csvio: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("csvio: %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("csvio: %s: %w", path, err)
	}
	return nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

func parseInt(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func contains(cols []string, want string) bool {
	for _, c := range cols {
		if c == want {
			return true
		}
	}
	return false
}
