package normalizer

import (
	"strings"

	"otocrawl/internal/models"
	"otocrawl/internal/price"
)

// Transformer assembles the output record of a listing.
type Transformer struct {
	resolver *Resolver
	columns  models.Columns
}

// NewTransformer creates a transformer writing the given columns.
func NewTransformer(resolver *Resolver, columns models.Columns) *Transformer {
	return &Transformer{
		resolver: resolver,
		columns:  columns.WithDefaults(),
	}
}

// Transform builds the record: name, brand and model first, then the
// detail attributes in page order, then the price. A later key replaces
// the value of an earlier one with the same name.
func (t *Transformer) Transform(listing *models.RawListing) *models.Record {
	name := listing.Name()
	res := t.resolver.Resolve(name)

	rec := models.NewRecord()
	rec.Set(t.columns.Name, name)
	rec.Set(t.columns.Brand, res.Brand)
	rec.Set(t.columns.Model, res.Model)

	for _, attr := range listing.Attributes {
		label := strings.TrimSpace(attr.Label)
		if label == "" {
			continue
		}

		rec.Set(label, attr.Value)
	}

	rec.Set(t.columns.Price, listing.Price)

	if t.columns.PriceValue != "" {
		rec.Set(t.columns.PriceValue, price.Format(price.Parse(listing.Price)))
	}

	return rec
}

// Reresolve recomputes brand and model of an existing record from its
// name column. It reports false when the record has no name.
func (t *Transformer) Reresolve(rec *models.Record) bool {
	name, ok := rec.Get(t.columns.Name)
	if !ok || strings.TrimSpace(name) == "" {
		return false
	}

	res := t.resolver.Resolve(name)
	rec.Set(t.columns.Brand, res.Brand)
	rec.Set(t.columns.Model, res.Model)

	return true
}
