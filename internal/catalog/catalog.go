// Package catalog holds the ordered brand → models reference table used to
// resolve listing titles.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Header is the first row written to and skipped from catalog files.
var Header = []string{"Brand", "Models"}

// ErrEmptyCatalog is returned by LoadFile when a file yields no brands.
var ErrEmptyCatalog = errors.New("catalog contains no brands")

// Brand is one catalog row: a display-cased brand name and its models in
// listing order.
type Brand struct {
	Name   string   `json:"name"`
	Models []string `json:"models"`
}

// Catalog is an ordered, read-only mapping from brand to models.
// Brand order is matching priority and is preserved exactly as loaded.
// A Catalog is never mutated after construction, so it can be shared
// between goroutines.
type Catalog struct {
	brands []Brand
	index  map[string]int
}

// New builds a catalog from brands in the given order. A repeated brand
// name replaces the earlier models but keeps the earlier position.
// Brands with a blank name are dropped, as are blank model names.
func New(brands ...Brand) *Catalog {
	c := &Catalog{index: make(map[string]int, len(brands))}
	for _, b := range brands {
		c.add(b.Name, b.Models)
	}

	return c
}

func (c *Catalog) add(name string, models []string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}

	cleaned := make([]string, 0, len(models))

	for _, m := range models {
		m = strings.TrimSpace(m)
		if m != "" {
			cleaned = append(cleaned, m)
		}
	}

	if i, ok := c.index[name]; ok {
		c.brands[i].Models = cleaned
		return
	}

	c.index[name] = len(c.brands)
	c.brands = append(c.brands, Brand{Name: name, Models: cleaned})
}

// Len returns the number of brands. A nil catalog has none.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}

	return len(c.brands)
}

// Brands returns a copy of the brands in catalog order.
func (c *Catalog) Brands() []Brand {
	if c == nil {
		return nil
	}

	out := make([]Brand, len(c.brands))
	for i, b := range c.brands {
		out[i] = Brand{Name: b.Name, Models: append([]string(nil), b.Models...)}
	}

	return out
}

// Models returns a copy of the models registered for brand.
func (c *Catalog) Models(brand string) ([]string, bool) {
	if c == nil {
		return nil, false
	}

	i, ok := c.index[brand]
	if !ok {
		return nil, false
	}

	return append([]string(nil), c.brands[i].Models...), true
}

// Load parses a catalog table: a header row, then rows of brand and a
// comma-joined model list. Rows with fewer than two fields are skipped.
func Load(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	c := New()
	header := true

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("failed to read catalog row: %w", err)
		}

		if header {
			header = false
			continue
		}

		if len(row) < 2 {
			continue
		}

		c.add(row[0], SplitModels(row[1]))
	}

	return c, nil
}

// LoadFile loads a catalog from a file on disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", path, err)
	}

	if c.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCatalog, path)
	}

	return c, nil
}

// SplitModels splits a comma-joined model list, dropping stray quotes and
// blank entries.
func SplitModels(field string) []string {
	field = strings.Trim(strings.TrimSpace(field), `"`)
	if field == "" {
		return nil
	}

	var models []string

	for _, part := range strings.Split(field, ",") {
		if m := strings.TrimSpace(part); m != "" {
			models = append(models, m)
		}
	}

	return models
}

// Write serializes the catalog in the format Load reads.
func (c *Catalog) Write(w io.Writer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write catalog header: %w", err)
	}

	if c != nil {
		for _, b := range c.brands {
			if err := writer.Write([]string{b.Name, strings.Join(b.Models, ", ")}); err != nil {
				return fmt.Errorf("failed to write brand %s: %w", b.Name, err)
			}
		}
	}

	writer.Flush()

	return writer.Error()
}

// WriteFile writes the catalog to path, replacing any existing file.
func (c *Catalog) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create catalog file: %w", err)
	}

	if err := c.Write(f); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
