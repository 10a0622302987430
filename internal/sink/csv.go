package sink

import (
	"encoding/csv"
	"fmt"
	"os"

	"otocrawl/internal/models"
)

// CSVWriter writes records as a UTF-8 CSV file with a header row.
type CSVWriter struct {
	path string
}

// NewCSVWriter creates a writer for path. The file is replaced on Write.
func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

// Write implements Writer.
func (w *CSVWriter) Write(records []*models.Record) error {
	if err := ensureDir(w.path); err != nil {
		return err
	}

	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", w.path, err)
	}
	defer f.Close()

	header, data := rows(records)

	cw := csv.NewWriter(f)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	if err := cw.WriteAll(data); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}

	return f.Close()
}

// ReadCSV loads records written by CSVWriter. Empty cells are kept so a
// rewrite keeps every column.
func ReadCSV(path string) ([]*models.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	records := make([]*models.Record, 0, len(rows)-1)

	for _, row := range rows[1:] {
		rec := models.NewRecord()
		for i, key := range header {
			value := ""
			if i < len(row) {
				value = row[i]
			}

			rec.Set(key, value)
		}

		records = append(records, rec)
	}

	return records, nil
}
