package csvio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/somno-data/sleep.report/internal/epoch"
	"github.com/somno-data/sleep.report/internal/nonwear"
	"github.com/somno-data/sleep.report/internal/sleep"
	"github.com/somno-data/sleep.report/internal/timeparse"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadRaw(t *testing.T) {
	t.Parallel()

	t.Run("valid recording", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, "raw.csv",
			"2025-02-03 21:00:00.000,0.1,0.2,0.3\n"+
				"2025-02-03 21:00:00.010,0.4,0.5,0.6\n")
		samples, baseline, err := ReadRaw(path)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 2, 3, 21, 0, 0, 0, time.UTC), baseline)
		require.Len(t, samples, 2)
		assert.Zero(t, samples[0].Elapsed)
		assert.InDelta(t, 0.010, samples[1].Elapsed, 1e-9)
		assert.Equal(t, 0.4, samples[1].Axis1)
	})

	t.Run("malformed timestamp fails with ParseError", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, "raw.csv", "not-a-time,0,0,0\n")
		_, _, err := ReadRaw(path)
		var pe *timeparse.ParseError
		require.Error(t, err)
		assert.True(t, errors.As(err, &pe))
	})

	t.Run("wrong column count fails fast", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, "raw.csv", "2025-02-03 21:00:00.000,0.1,0.2\n")
		_, _, err := ReadRaw(path)
		assert.ErrorContains(t, err, "want 4 columns")
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, _, err := ReadRaw(filepath.Join(t.TempDir(), "absent.csv"))
		assert.Error(t, err)
	})

	t.Run("empty recording", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, "raw.csv", "")
		_, _, err := ReadRaw(path)
		assert.ErrorContains(t, err, "empty raw recording")
	})
}

func TestEpochTableRoundTrip(t *testing.T) {
	t.Parallel()

	table := &epoch.Table{Records: []epoch.Record{
		{DataTimestamp: 0, Axis1: 1, Axis2: 2, Axis3: 3},
		{DataTimestamp: 60, Axis1: 4, Axis2: 5, Axis3: 6},
	}}
	path := filepath.Join(t.TempDir(), "counts.csv")
	require.NoError(t, WriteEpochTable(path, table))

	got, err := ReadEpochTable(path)
	require.NoError(t, err)
	if diff := cmp.Diff(table, got); diff != "" {
		t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEpochTableMagnitudeColumn(t *testing.T) {
	t.Parallel()

	table := &epoch.Table{
		HasMagnitude: true,
		Records: []epoch.Record{
			{DataTimestamp: 0, Axis1: 1, Axis2: 2, Axis3: 3, Magnitude: 9},
		},
	}
	path := filepath.Join(t.TempDir(), "counts.csv")
	require.NoError(t, WriteEpochTable(path, table))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "dataTimestamp,axis1,axis2,axis3,vm_epoch_counts")

	got, err := ReadEpochTable(path)
	require.NoError(t, err)
	require.True(t, got.HasMagnitude)
	assert.Equal(t, int64(9), got.Records[0].Magnitude)
}

func TestReadEpochTableMissingColumn(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "bad.csv", "dataTimestamp,axis1,axis2\n0,1,2\n")
	_, err := ReadEpochTable(path)
	assert.ErrorContains(t, err, `missing required column "axis3"`)
}

func TestMergedTableRoundTrip(t *testing.T) {
	t.Parallel()

	m := &epoch.MergedTable{
		Sensors: 3,
		Rows: []epoch.MergedRow{
			{DataTimestamp: 0, Axis1: []int64{1, 2, 3}, Axis2: []int64{4, 5, 6}, Axis3: []int64{7, 8, 9}},
			{DataTimestamp: 60, Axis1: []int64{10, 20, 30}, Axis2: []int64{40, 50, 60}, Axis3: []int64{70, 80, 90}},
		},
	}
	path := filepath.Join(t.TempDir(), "combined.csv")
	require.NoError(t, WriteMergedTable(path, m))

	// Header is axis-major with sensor suffixes.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data),
		"dataTimestamp,axis1_1,axis1_2,axis1_3,axis2_1,axis2_2,axis2_3,axis3_1,axis3_2,axis3_3")

	got, err := ReadMergedTable(path)
	require.NoError(t, err)
	if diff := cmp.Diff(m, got); diff != "" {
		t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReadMergedTableRejectsSingleSensor(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "single.csv", "dataTimestamp,axis1,axis2,axis3\n0,1,2,3\n")
	_, err := ReadMergedTable(path)
	assert.ErrorContains(t, err, "not a merged table")
}

func TestScoresRoundTrip(t *testing.T) {
	t.Parallel()

	scores := []sleep.Score{
		{DataTimestamp: "2025-02-03 21:00:00.000", SleepIndex: 0.23, State: sleep.Asleep},
		{DataTimestamp: "2025-02-03 21:01:00.000", SleepIndex: 13.3, State: sleep.Awake},
	}
	path := filepath.Join(t.TempDir(), "scores.csv")
	require.NoError(t, WriteScores(path, scores))

	got, err := ReadScores(path)
	require.NoError(t, err)
	if diff := cmp.Diff(scores, got); diff != "" {
		t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMultiScoresRoundTrip(t *testing.T) {
	t.Parallel()

	scores := []sleep.MultiScore{
		{
			DataTimestamp: "2025-02-03 21:00:00.000",
			Limbs: []sleep.LimbScore{
				{SleepIndex: 0.1, State: sleep.Asleep},
				{SleepIndex: 5.5, State: sleep.Awake},
			},
		},
	}
	path := filepath.Join(t.TempDir(), "multi.csv")
	require.NoError(t, WriteMultiScores(path, scores))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Limb 1 sleep_index,Limb 1 sleep,Limb 2 sleep_index,Limb 2 sleep")

	got, err := ReadMultiScores(path)
	require.NoError(t, err)
	if diff := cmp.Diff(scores, got); diff != "" {
		t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteIntervals(t *testing.T) {
	t.Parallel()

	intervals := []nonwear.Interval{
		{Start: 120, End: 120 + 90*60, Length: 90},
		{Start: 9000, End: 9000 + 100*60, Length: 100},
	}
	path := filepath.Join(t.TempDir(), "nonwear.csv")
	require.NoError(t, WriteIntervals(path, intervals))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"timestamp,period_end,length\n120,5520,90\n9000,15000,100\n",
		string(data))
}
