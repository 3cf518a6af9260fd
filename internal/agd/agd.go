// Package agd reads ActiGraph AGD files, which are SQLite containers
// holding already-epoched count data plus device scoring tables. It lets
// the scorers run against device-recorded counts without a raw conversion
// pass.
package agd

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/somno-data/sleep.report/internal/epoch"
)

// File is an open AGD container.
type File struct {
	db *sql.DB
}

// Open opens an AGD file read-only.
func Open(path string) (*File, error) {
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("agd: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("agd: open %s: %w", path, err)
	}
	return &File{db: db}, nil
}

// Close releases the underlying database handle.
func (f *File) Close() error {
	return f.db.Close()
}

// Tables lists the container's user tables.
func (f *File) Tables() ([]string, error) {
	rows, err := f.db.Query(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("agd: list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("agd: list tables: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// EpochTable reads the container's data table as an epoch count table.
func (f *File) EpochTable() (*epoch.Table, error) {
	rows, err := f.db.Query(`SELECT dataTimestamp, axis1, axis2, axis3 FROM data ORDER BY dataTimestamp`)
	if err != nil {
		return nil, fmt.Errorf("agd: read data table: %w", err)
	}
	defer rows.Close()

	table := &epoch.Table{}
	for rows.Next() {
		var r epoch.Record
		if err := rows.Scan(&r.DataTimestamp, &r.Axis1, &r.Axis2, &r.Axis3); err != nil {
			return nil, fmt.Errorf("agd: read data table: %w", err)
		}
		table.Records = append(table.Records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("agd: read data table: %w", err)
	}
	return table, nil
}

// ExportCSV dumps one table verbatim as CSV with a header row, for
// downstream tooling that wants the device tables as flat files.
func (f *File) ExportCSV(table string, w io.Writer) error {
	if !validTableName(table) {
		return fmt.Errorf("agd: invalid table name %q", table)
	}
	rows, err := f.db.Query(`SELECT * FROM "` + table + `"`)
	if err != nil {
		return fmt.Errorf("agd: export %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("agd: export %s: %w", table, err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("agd: export %s: %w", table, err)
	}

	values := make([]sql.NullString, len(cols))
	scan := make([]interface{}, len(cols))
	for i := range values {
		scan[i] = &values[i]
	}
	record := make([]string, len(cols))
	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return fmt.Errorf("agd: export %s: %w", table, err)
		}
		for i, v := range values {
			record[i] = v.String
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("agd: export %s: %w", table, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("agd: export %s: %w", table, err)
	}
	cw.Flush()
	return cw.Error()
}

// validTableName restricts table identifiers to what AGD containers use;
// the name is interpolated into the query since placeholders cannot name
// tables.
func validTableName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return !strings.HasPrefix(name, "sqlite_")
}
