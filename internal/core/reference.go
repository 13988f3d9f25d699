package core

// reference.go builds the in-memory reference table from raw dataset rows.
//
// The build is a group-by aggregation over the normalized (make, model) key:
//
//   - An explicit reference-shaped row wins for its key; transactional rows
//     are a fallback source, never merged with an explicit anchor.
//   - Transactional keys aggregate to the arithmetic mean of their prices,
//     with the reference year taken as the mean registration year (rounded)
//     or the current calendar year when none is present.
//
// The resulting table is immutable and safe for unlimited concurrent readers.

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// refKey is the normalized lookup key for a reference record.
type refKey struct {
	make  string
	model string
}

// ReferenceTable is the read-only mapping from (make, model) to its price
// anchor. Built once at load time; never mutated afterward. Reloads replace
// the whole table via TableStore.Swap.
type ReferenceTable struct {
	records map[refKey]ReferenceRecord

	// BuildID identifies this table generation in logs and /health.
	BuildID uuid.UUID
	// BuiltAt is when the aggregation ran.
	BuiltAt time.Time
	// Source is the dataset path the rows came from. Set by the caller
	// before the table is published; informational only.
	Source string
}

// BuildReferenceTable aggregates raw rows into a reference table.
// Keys without any usable price are dropped with a warning; the build fails
// with ErrDatasetEmpty only when zero usable records remain.
func BuildReferenceTable(rows []RawRow) (*ReferenceTable, error) {
	return buildReferenceTable(rows, time.Now())
}

func buildReferenceTable(rows []RawRow, now time.Time) (*ReferenceTable, error) {
	type group struct {
		displayMake  string
		displayModel string
		reference    *RawRow // first reference-shaped row, if any
		prices       []float64
		regYears     []int
	}

	groups := make(map[refKey]*group)
	order := make([]refKey, 0)

	for i := range rows {
		row := rows[i]
		key := refKey{normalizeKeyPart(row.Make), normalizeKeyPart(row.Model)}
		if key.make == "" || key.model == "" {
			slog.Warn("skipping dataset row with empty make or model", "row", i)
			continue
		}

		g, ok := groups[key]
		if !ok {
			g = &group{displayMake: row.Make, displayModel: row.Model}
			groups[key] = g
			order = append(order, key)
		}

		switch row.Kind {
		case RowReference:
			if row.BasePrice < 0 {
				slog.Warn("skipping reference row with negative base price",
					"make", row.Make, "model", row.Model, "base_price", row.BasePrice)
				continue
			}
			if g.reference == nil {
				g.reference = &rows[i]
			}
		case RowTransactional:
			if row.Price < 0 {
				slog.Warn("skipping transactional row with negative price",
					"make", row.Make, "model", row.Model, "price", row.Price)
				continue
			}
			g.prices = append(g.prices, row.Price)
			if row.HasRegistrationYear {
				g.regYears = append(g.regYears, row.RegistrationYear)
			}
		}
	}

	records := make(map[refKey]ReferenceRecord, len(groups))
	for _, key := range order {
		g := groups[key]
		rec := ReferenceRecord{
			Make:  g.displayMake,
			Model: g.displayModel,
		}

		switch {
		case g.reference != nil:
			// Explicit anchor wins; transactional rows for this key are ignored.
			rec.BasePrice = g.reference.BasePrice
			rec.ReferenceYear = g.reference.ReferenceYear
			rec.SampleCount = 1
		case len(g.prices) > 0:
			rec.BasePrice = mean(g.prices)
			rec.SampleCount = len(g.prices)
			if len(g.regYears) > 0 {
				rec.ReferenceYear = int(math.Round(meanInts(g.regYears)))
			} else {
				rec.ReferenceYear = now.Year()
			}
		default:
			slog.Warn("dropping key with no usable price",
				"make", g.displayMake, "model", g.displayModel)
			continue
		}

		records[key] = rec
	}

	if len(records) == 0 {
		return nil, ErrDatasetEmpty
	}

	return &ReferenceTable{
		records: records,
		BuildID: uuid.New(),
		BuiltAt: now,
	}, nil
}

// Lookup resolves a make/model to its reference record. Inputs are normalized
// exactly as during the build; the match is exact, never fuzzy. The second
// return is false when no record exists for the key.
func (t *ReferenceTable) Lookup(vehicleMake, model string) (ReferenceRecord, bool) {
	rec, ok := t.records[refKey{normalizeKeyPart(vehicleMake), normalizeKeyPart(model)}]
	return rec, ok
}

// Makes returns the sorted distinct display-case makes in the table.
func (t *ReferenceTable) Makes() []string {
	seen := make(map[string]bool)
	makes := make([]string, 0)
	for key, rec := range t.records {
		if !seen[key.make] {
			seen[key.make] = true
			makes = append(makes, rec.Make)
		}
	}
	sort.Strings(makes)
	return makes
}

// Models returns the sorted distinct display-case models for a make, matched
// on the normalized make. Unknown makes yield an empty slice, not an error.
func (t *ReferenceTable) Models(vehicleMake string) []string {
	want := normalizeKeyPart(vehicleMake)
	models := make([]string, 0)
	for key, rec := range t.records {
		if key.make == want {
			models = append(models, rec.Model)
		}
	}
	sort.Strings(models)
	return models
}

// Size returns the number of reference records in the table.
func (t *ReferenceTable) Size() int {
	return len(t.records)
}

func mean(vs []float64) float64 {
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func meanInts(vs []int) float64 {
	var sum int
	for _, v := range vs {
		sum += v
	}
	return float64(sum) / float64(len(vs))
}
