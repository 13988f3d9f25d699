package core

// engine.go computes the resale estimate and confidence score for a request
// against a matched reference record.
//
// The depreciation model:
//
//	years     = max(0, fractional years from firstRegistration to now)
//	blocks    = mileageKm / 10000 (real-valued)
//	rawFactor = (1 - 0.07)^years * (1 - 0.015 * blocks)
//	estimate  = clamp(basePrice * rawFactor, 0.28 * basePrice, 1.05 * basePrice)
//
// The lower guard is the 35% minimum retention with an extra 20% buffer below
// it. The guard, not the raw formula, determines the floor at extreme age or
// mileage. Confidence is a bounded heuristic, not a probability: it decays
// with the computed age and a capped mileage penalty.

import (
	"math"
	"time"
)

const (
	annualDepreciation = 0.07
	per10kDepreciation = 0.015
	mileageBucketKm    = 10000.0
	minRetention       = 0.35
	guardBuffer        = 0.80
	upperGuardFactor   = 1.05

	confidenceMax        = 0.90
	confidenceMin        = 0.50
	confidencePerYear    = 0.06
	mileagePenaltyPer100 = 0.005
	mileagePenaltyCap    = 0.50
)

// Engine computes valuations. It is stateless apart from the injectable
// clock; a zero-value Engine evaluates at wall-clock time.
type Engine struct {
	// Now supplies the evaluation time. Defaults to time.Now.
	Now func() time.Time
}

// Estimate resolves the request against the table and applies the
// depreciation and confidence formulas. The only error condition is a lookup
// miss, reported as UnknownVehicleError; the caller is expected to have run
// ValuationRequest.Validate first.
func (e Engine) Estimate(req ValuationRequest, table *ReferenceTable) (ValuationResult, error) {
	rec, ok := table.Lookup(req.Make, req.Model)
	if !ok {
		return ValuationResult{}, &UnknownVehicleError{Make: req.Make, Model: req.Model}
	}

	now := time.Now()
	if e.Now != nil {
		now = e.Now()
	}

	// Age anchors on the registration date, not the reference year. The
	// reference year anchors the price; a future registration never yields
	// a negative age.
	years := math.Max(0, fractionalYearsBetween(req.FirstRegistration, now))

	blocks := float64(req.MileageKm) / mileageBucketKm
	rawFactor := math.Pow(1-annualDepreciation, years) * (1 - per10kDepreciation*blocks)

	lowerGuard := guardBuffer * minRetention * rec.BasePrice
	upperGuard := upperGuardFactor * rec.BasePrice
	estimate := clamp(rec.BasePrice*rawFactor, lowerGuard, upperGuard)

	mileagePenalty := math.Min(mileagePenaltyCap,
		mileagePenaltyPer100*float64(req.MileageKm)/100000.0)
	confidence := clamp(confidenceMax-confidencePerYear*years-mileagePenalty,
		confidenceMin, confidenceMax)

	return ValuationResult{
		Estimate:   roundCents(estimate),
		Currency:   "EUR",
		Confidence: confidence,
	}, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// roundCents rounds to the smallest EUR unit (2 decimal places).
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
