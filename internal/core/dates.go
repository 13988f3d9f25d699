package core

import "time"

// fractionalYearsBetween returns the elapsed time from a to b in fractional
// years at month granularity (day-of-month is ignored). Negative when b is
// before a; callers floor at zero where a non-negative age is required.
//
// All age arithmetic in this package goes through this one function so the
// registration anchor and the evaluation anchor can never drift apart.
func fractionalYearsBetween(a, b time.Time) float64 {
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	return float64(months) / 12.0
}
