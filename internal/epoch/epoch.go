// Package epoch defines the epoch-level count tables produced by the
// conditioning pipeline and the inner-join merge that aligns several
// sensors onto a shared epoch axis.
package epoch

import "fmt"

// Seconds is the fixed epoch length. Counts are summed over windows of this
// duration and epoch timestamps advance by it.
const Seconds = 60

// Record is one 60-second epoch of integer activity counts for a single
// sensor. DataTimestamp is whole seconds since the sensor's baseline.
// Magnitude is only meaningful when the owning table's HasMagnitude is set.
type Record struct {
	DataTimestamp int64
	Axis1         int64
	Axis2         int64
	Axis3         int64
	Magnitude     int64
}

// Table holds one sensor's epoch counts in ascending timestamp order, each
// consecutive pair exactly 60 seconds apart. HasMagnitude marks tables from
// the single-sensor path that retain the vector-magnitude channel.
type Table struct {
	HasMagnitude bool
	Records      []Record
}

// Len returns the number of epochs in the table.
func (t *Table) Len() int { return len(t.Records) }

// Timestamps returns the table's epoch timestamps.
func (t *Table) Timestamps() []int64 {
	out := make([]int64, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.DataTimestamp
	}
	return out
}

// MergedRow is one shared epoch across all merged sensors. The axis slices
// are indexed by sensor position (0-based; column names use 1-based
// suffixes).
type MergedRow struct {
	DataTimestamp int64
	Axis1         []int64
	Axis2         []int64
	Axis3         []int64
}

// MergedTable holds epochs common to every merged sensor, in ascending
// timestamp order.
type MergedTable struct {
	Sensors int
	Rows    []MergedRow
}

// Len returns the number of shared epochs.
func (m *MergedTable) Len() int { return len(m.Rows) }

// Merge inner-joins 2 to 4 per-sensor tables on equal epoch timestamps.
// Only timestamps present in every input survive; sensors with disjoint
// epoch axes therefore merge to an empty table, which is a valid result.
// The inputs are not modified.
func Merge(tables ...*Table) (*MergedTable, error) {
	if len(tables) < 2 || len(tables) > 4 {
		return nil, fmt.Errorf("epoch: merge requires 2 to 4 sensor tables, got %d", len(tables))
	}

	// Index every table after the first by timestamp.
	indexes := make([]map[int64]Record, len(tables)-1)
	for i, t := range tables[1:] {
		idx := make(map[int64]Record, t.Len())
		for _, r := range t.Records {
			idx[r.DataTimestamp] = r
		}
		indexes[i] = idx
	}

	merged := &MergedTable{Sensors: len(tables)}
	for _, first := range tables[0].Records {
		row := MergedRow{
			DataTimestamp: first.DataTimestamp,
			Axis1:         make([]int64, 0, len(tables)),
			Axis2:         make([]int64, 0, len(tables)),
			Axis3:         make([]int64, 0, len(tables)),
		}
		row.Axis1 = append(row.Axis1, first.Axis1)
		row.Axis2 = append(row.Axis2, first.Axis2)
		row.Axis3 = append(row.Axis3, first.Axis3)

		found := true
		for _, idx := range indexes {
			r, ok := idx[first.DataTimestamp]
			if !ok {
				found = false
				break
			}
			row.Axis1 = append(row.Axis1, r.Axis1)
			row.Axis2 = append(row.Axis2, r.Axis2)
			row.Axis3 = append(row.Axis3, r.Axis3)
		}
		if found {
			merged.Rows = append(merged.Rows, row)
		}
	}
	return merged, nil
}

// Sensor extracts one sensor's columns from a merged table as a standalone
// table, used when a scorer wants a single limb from a combined recording.
func (m *MergedTable) Sensor(i int) (*Table, error) {
	if i < 0 || i >= m.Sensors {
		return nil, fmt.Errorf("epoch: sensor index %d out of range [0,%d)", i, m.Sensors)
	}
	t := &Table{Records: make([]Record, 0, len(m.Rows))}
	for _, row := range m.Rows {
		t.Records = append(t.Records, Record{
			DataTimestamp: row.DataTimestamp,
			Axis1:         row.Axis1[i],
			Axis2:         row.Axis2[i],
			Axis3:         row.Axis3[i],
		})
	}
	return t, nil
}
