package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pystyle/pystyle/pkg/style"
)

// WriteCSV flattens records into one table: the header is the sorted
// union of all keys, each record is one row, and cells for keys a
// record lacks are left empty.
func WriteCSV(w io.Writer, records []style.Record) error {
	keys := map[string]bool{}
	for _, r := range records {
		for k := range r {
			keys[k] = true
		}
	}
	header := make([]string, 0, len(keys))
	for k := range keys {
		header = append(header, k)
	}
	sort.Strings(header)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(header))
	for _, r := range records {
		for i, k := range header {
			if v, ok := r[k]; ok {
				row[i] = fmt.Sprint(v)
			} else {
				row[i] = ""
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes records to a CSV file at path.
// This is a convenience wrapper around [WriteCSV] for file-based output.
func ExportCSV(path string, records []style.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteCSV(f, records)
}

// ReadCSV decodes a previously exported table back into records, one
// per row, with every cell as a string. Empty cells are preserved so
// the original header set survives a recompute-and-rewrite round trip.
func ReadCSV(r io.Reader) ([]style.Record, error) {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	header := rows[0]
	records := make([]style.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(style.Record, len(header))
		for i, k := range header {
			if i < len(row) {
				record[k] = row[i]
			}
		}
		records = append(records, record)
	}
	return records, nil
}

// ImportCSV reads a CSV file at path and returns its records.
func ImportCSV(path string) ([]style.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}
