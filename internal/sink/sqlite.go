package sink

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"otocrawl/internal/models"
)

// ErrInvalidTableName rejects table names that are not plain identifiers.
var ErrInvalidTableName = errors.New("invalid table name")

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteWriter appends records to a table. Each Write is one crawl run:
// its rows share a run id and timestamp. The fixed columns are copied out
// of the record; the whole record is kept as ordered JSON.
type SQLiteWriter struct {
	path    string
	table   string
	columns models.Columns
	now     func() time.Time
}

// NewSQLiteWriter creates a writer for the database at path.
func NewSQLiteWriter(path, table string, columns models.Columns) (*SQLiteWriter, error) {
	if table == "" {
		table = "listings"
	}

	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTableName, table)
	}

	return &SQLiteWriter{
		path:    path,
		table:   table,
		columns: columns.WithDefaults(),
		now:     time.Now,
	}, nil
}

// Write implements Writer.
func (w *SQLiteWriter) Write(records []*models.Record) error {
	_, err := w.WriteRun(records)

	return err
}

// WriteRun stores records and returns the id of the run.
func (w *SQLiteWriter) WriteRun(records []*models.Record) (string, error) {
	if err := ensureDir(w.path); err != nil {
		return "", err
	}

	db, err := sql.Open("sqlite3", w.path)
	if err != nil {
		return "", fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(w.schema()); err != nil {
		return "", fmt.Errorf("failed to create table %s: %w", w.table, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.Prepare(fmt.Sprintf(`INSERT INTO %s
		(run_id, position, name, brand, model, price, price_value, record, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, w.table))
	if err != nil {
		return "", fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	runID := uuid.NewString()
	scrapedAt := w.now().UTC().Format(time.RFC3339)

	for i, rec := range compact(records) {
		doc, err := json.Marshal(rec)
		if err != nil {
			return "", fmt.Errorf("failed to encode record %d: %w", i, err)
		}

		name, _ := rec.Get(w.columns.Name)
		brand, _ := rec.Get(w.columns.Brand)
		model, _ := rec.Get(w.columns.Model)
		price, _ := rec.Get(w.columns.Price)
		priceValue, _ := rec.Get(w.columns.PriceValue)

		if _, err := stmt.Exec(runID, i, name, brand, model, price, priceValue, string(doc), scrapedAt); err != nil {
			return "", fmt.Errorf("failed to insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}

	return runID, nil
}

func (w *SQLiteWriter) schema() string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		brand TEXT NOT NULL,
		model TEXT NOT NULL,
		price TEXT,
		price_value TEXT,
		record TEXT NOT NULL,
		scraped_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_%[1]s_brand_model ON %[1]s (brand, model);`, w.table)
}
