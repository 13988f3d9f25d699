// Package core provides the valuation business logic: building the reference
// table from raw dataset rows and computing price estimates against it.
// This package has no HTTP or file-format dependencies and can be used by any
// frontend.
package core

import (
	"fmt"
	"strings"
	"time"
)

// RowKind discriminates the two dataset row shapes.
type RowKind int

const (
	// RowReference carries an explicit price anchor: base_price + year0.
	RowReference RowKind = iota
	// RowTransactional carries an observed sale: price + optional registration_year.
	RowTransactional
)

// RawRow is a single parsed dataset row. Exactly one shape is populated,
// selected by Kind; consumers must switch on Kind rather than probe fields.
type RawRow struct {
	Kind  RowKind
	Make  string
	Model string

	// Reference shape.
	BasePrice     float64
	ReferenceYear int

	// Transactional shape.
	Price               float64
	RegistrationYear    int // Valid only when HasRegistrationYear is true
	HasRegistrationYear bool
}

// ReferenceRow builds a reference-shaped row.
func ReferenceRow(vehicleMake, model string, basePrice float64, referenceYear int) RawRow {
	return RawRow{
		Kind:          RowReference,
		Make:          vehicleMake,
		Model:         model,
		BasePrice:     basePrice,
		ReferenceYear: referenceYear,
	}
}

// TransactionalRow builds a transactional-shaped row. Pass ok=false when the
// registration_year column is absent or empty.
func TransactionalRow(vehicleMake, model string, price float64, registrationYear int, ok bool) RawRow {
	return RawRow{
		Kind:                RowTransactional,
		Make:                vehicleMake,
		Model:               model,
		Price:               price,
		RegistrationYear:    registrationYear,
		HasRegistrationYear: ok,
	}
}

// ReferenceRecord is the canonical price anchor for one make/model.
// Records are immutable once the table is built.
type ReferenceRecord struct {
	Make          string  // Display casing from the first row seen
	Model         string  // Display casing from the first row seen
	BasePrice     float64 // Price anchor, EUR
	ReferenceYear int     // Calendar year the anchor is valid as of
	SampleCount   int     // Raw rows aggregated into this record (informational)
}

// ValuationRequest is one valuation call. Constructed per request, never stored.
type ValuationRequest struct {
	Make              string
	Model             string
	MileageKm         int
	FirstRegistration time.Time
}

// ValuationResult is the computed estimate for a request.
type ValuationResult struct {
	Estimate   float64 // EUR, rounded to cents
	Currency   string  // Always "EUR"
	Confidence float64 // Heuristic score in [0.50, 0.90]
}

// Validate checks request fields before they reach the engine.
// All violations are reported as InvalidRequestError.
func (r ValuationRequest) Validate() error {
	if strings.TrimSpace(r.Make) == "" {
		return &InvalidRequestError{Field: "make", Reason: "must not be empty"}
	}
	if strings.TrimSpace(r.Model) == "" {
		return &InvalidRequestError{Field: "model", Reason: "must not be empty"}
	}
	if r.MileageKm < 0 {
		return &InvalidRequestError{
			Field:  "mileageKm",
			Reason: fmt.Sprintf("must be >= 0, got %d", r.MileageKm),
		}
	}
	if r.FirstRegistration.IsZero() {
		return &InvalidRequestError{Field: "firstRegistration", Reason: "must be a valid date"}
	}
	return nil
}

// normalizeKeyPart canonicalizes one half of a lookup key: trimmed and
// case-folded so " Tesla " and "tesla" resolve identically.
func normalizeKeyPart(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
