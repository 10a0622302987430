// Package models defines data structures shared by the crawler, the
// normalizer and the record sinks.
package models

import "strings"

// Attribute is one label/value pair from a listing's detail page.
type Attribute struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ListingEntry is a listing card found on a search results page.
type ListingEntry struct {
	Title string `json:"title"`
	Price string `json:"price"`
	Link  string `json:"link"`
}

// RawListing is everything scraped for one listing before resolution.
type RawListing struct {
	// Title is the detail page heading.
	Title string `json:"title"`
	// CardTitle is the title shown on the results page. Used when the
	// detail page could not be fetched.
	CardTitle  string      `json:"cardTitle"`
	Price      string      `json:"price"`
	Link       string      `json:"link"`
	Attributes []Attribute `json:"attributes"`
}

// Name returns the best available vehicle name.
func (l *RawListing) Name() string {
	if t := strings.TrimSpace(l.Title); t != "" {
		return t
	}

	return strings.TrimSpace(l.CardTitle)
}

// Columns names the fixed keys of an output record.
type Columns struct {
	Name       string `yaml:"name"`
	Brand      string `yaml:"brand"`
	Model      string `yaml:"model"`
	Price      string `yaml:"price"`
	PriceValue string `yaml:"price_value"`
}

// DefaultColumns returns the column names used on the target site.
func DefaultColumns() Columns {
	return Columns{
		Name:       "Tên xe",
		Brand:      "Thương hiệu",
		Model:      "Model",
		Price:      "Giá",
		PriceValue: "Giá (VNĐ)",
	}
}

// WithDefaults fills blank names from DefaultColumns. PriceValue is left
// blank on purpose when unset so the column can be disabled.
func (c Columns) WithDefaults() Columns {
	d := DefaultColumns()

	if c.Name == "" {
		c.Name = d.Name
	}

	if c.Brand == "" {
		c.Brand = d.Brand
	}

	if c.Model == "" {
		c.Model = d.Model
	}

	if c.Price == "" {
		c.Price = d.Price
	}

	return c
}
