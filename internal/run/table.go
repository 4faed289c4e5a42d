package run

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// Table is an ordered CSV view: a header plus one column-name -> cell map
// per row. Keeping rows as maps lets operations append their own columns
// while passing every input column through untouched.
type Table struct {
	Header []string
	Rows   []map[string]string
}

// ReadTable loads a CSV file with a header row.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) == 0 {
		return &Table{}, nil
	}

	t := &Table{Header: records[0]}
	for _, rec := range records[1:] {
		row := make(map[string]string, len(t.Header))
		for i, col := range t.Header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// EnsureColumns appends any missing column names to the header, preserving
// existing order.
func (t *Table) EnsureColumns(cols ...string) {
	have := make(map[string]struct{}, len(t.Header))
	for _, c := range t.Header {
		have[c] = struct{}{}
	}
	for _, c := range cols {
		if _, ok := have[c]; !ok {
			t.Header = append(t.Header, c)
			have[c] = struct{}{}
		}
	}
}

// WriteTable writes the table as CSV, creating parent directories as needed.
func WriteTable(path string, t *Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Header); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	rec := make([]string, len(t.Header))
	for _, row := range t.Rows {
		for i, col := range t.Header {
			rec[i] = row[col]
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
