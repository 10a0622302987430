// Package sink writes crawled records to CSV, Excel or SQLite.
package sink

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"otocrawl/internal/config"
	"otocrawl/internal/models"
)

// Output formats.
const (
	FormatCSV    = "csv"
	FormatXLSX   = "xlsx"
	FormatSQLite = "sqlite"
)

// ErrUnsupportedFormat is returned by New for an unknown output format.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Writer persists a batch of records. Columns are the union of the
// records' keys in first-seen order; a record lacking a column gets an
// empty cell.
type Writer interface {
	Write(records []*models.Record) error
}

// New returns the writer for cfg.Format.
func New(cfg config.OutputConfig) (Writer, error) {
	switch strings.ToLower(cfg.Format) {
	case FormatCSV, "":
		return NewCSVWriter(cfg.Path), nil
	case FormatXLSX:
		return NewXLSXWriter(cfg.Path, cfg.Sheet), nil
	case FormatSQLite:
		return NewSQLiteWriter(cfg.Path, cfg.Table, cfg.Columns)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, cfg.Format)
	}
}

// WithExtension replaces the extension of path with the one used for
// format: .csv, .xlsx or .db.
func WithExtension(path, format string) string {
	ext := ".csv"

	switch strings.ToLower(format) {
	case FormatXLSX:
		ext = ".xlsx"
	case FormatSQLite:
		ext = ".db"
	}

	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// rows lays records out as a header plus one row per record.
func rows(records []*models.Record) ([]string, [][]string) {
	records = compact(records)
	header := models.UnionKeys(records)

	out := make([][]string, 0, len(records))

	for _, rec := range records {
		row := make([]string, len(header))
		for i, key := range header {
			row[i], _ = rec.Get(key)
		}

		out = append(out, row)
	}

	return header, out
}

func compact(records []*models.Record) []*models.Record {
	out := records[:0:0]

	for _, r := range records {
		if r != nil {
			out = append(out, r)
		}
	}

	return out
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create output directory: %w", err)
	}

	return nil
}
