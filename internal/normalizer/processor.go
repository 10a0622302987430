package normalizer

import (
	"fmt"

	"otocrawl/internal/models"
)

// Processor validates raw listings and turns them into records.
type Processor struct {
	validator   *Validator
	transformer *Transformer
}

// NewProcessor creates a processor that resolves titles with resolver.
func NewProcessor(resolver *Resolver, columns models.Columns) *Processor {
	return &Processor{
		validator:   NewValidator(),
		transformer: NewTransformer(resolver, columns),
	}
}

// Process transforms a raw listing into an output record.
func (p *Processor) Process(listing *models.RawListing) (*models.Record, error) {
	if err := p.validator.Validate(listing); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return p.transformer.Transform(listing), nil
}
