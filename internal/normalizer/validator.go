package normalizer

import (
	"errors"

	"otocrawl/internal/models"
)

// Validation errors.
var (
	ErrNilListing   = errors.New("listing is nil")
	ErrMissingTitle = errors.New("listing has neither a detail title nor a card title")
)

// Validator checks that a raw listing can be turned into a record.
type Validator struct{}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate reports why listing cannot be processed, or nil.
func (v *Validator) Validate(listing *models.RawListing) error {
	if listing == nil {
		return ErrNilListing
	}

	if listing.Name() == "" {
		return ErrMissingTitle
	}

	return nil
}
