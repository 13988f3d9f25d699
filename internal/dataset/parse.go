package dataset

// parse.go maps tabular records onto the two supported row shapes.
//
// The header decides the shape for the whole file: base_price + year0 columns
// mean reference rows, a price column means transactional rows. Cell parsing
// is deliberately lenient about the messy reality of spreadsheet exports:
// currency symbols, thousands separators, and Excel formula prefixes.

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/aampere/ev-valuation/internal/core"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// headerIndex maps normalized column names to their position in a record.
type headerIndex map[string]int

func newHeaderIndex(header []string) headerIndex {
	idx := make(headerIndex, len(header))
	for i, col := range header {
		idx[strings.ToLower(cleanCell(col))] = i
	}
	return idx
}

func (h headerIndex) has(cols ...string) bool {
	for _, c := range cols {
		if _, ok := h[c]; !ok {
			return false
		}
	}
	return true
}

func (h headerIndex) cell(row []string, col string) string {
	pos, ok := h[col]
	if !ok || pos >= len(row) {
		return ""
	}
	return cleanCell(row[pos])
}

// ParseRows converts raw tabular records (header first) into core rows.
// Rows with unparseable prices are skipped with a warning, never fatal;
// a header matching neither shape is ErrUnrecognizedSchema.
func ParseRows(records [][]string) ([]core.RawRow, error) {
	if len(records) == 0 {
		return nil, ErrUnrecognizedSchema
	}

	idx := newHeaderIndex(records[0])
	body := records[1:]

	switch {
	case idx.has("make", "model", "base_price", "year0"):
		return parseReferenceRows(idx, body), nil
	case idx.has("make", "model", "price"):
		return parseTransactionalRows(idx, body), nil
	default:
		return nil, ErrUnrecognizedSchema
	}
}

func parseReferenceRows(idx headerIndex, body [][]string) []core.RawRow {
	rows := make([]core.RawRow, 0, len(body))
	for i, record := range body {
		price, ok := parsePrice(idx.cell(record, "base_price"))
		if !ok {
			slog.Warn("skipping row with unparseable base_price", "line", i+2)
			continue
		}
		year, ok := parseYear(idx.cell(record, "year0"))
		if !ok {
			slog.Warn("skipping row with unparseable year0", "line", i+2)
			continue
		}
		rows = append(rows, core.ReferenceRow(
			idx.cell(record, "make"), idx.cell(record, "model"), price, year))
	}
	return rows
}

func parseTransactionalRows(idx headerIndex, body [][]string) []core.RawRow {
	rows := make([]core.RawRow, 0, len(body))
	for i, record := range body {
		price, ok := parsePrice(idx.cell(record, "price"))
		if !ok {
			slog.Warn("skipping row with unparseable price", "line", i+2)
			continue
		}
		year, hasYear := parseYear(idx.cell(record, "registration_year"))
		rows = append(rows, core.TransactionalRow(
			idx.cell(record, "make"), idx.cell(record, "model"), price, year, hasYear))
	}
	return rows
}

// parsePrice parses a price cell, tolerating currency symbols and thousands
// separators.
func parsePrice(s string) (float64, bool) {
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if s == "" || !numericRegex.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseYear parses a 4-digit year cell. Spreadsheets sometimes export years
// as floats ("2019.0"), so integer-valued floats are accepted.
func parseYear(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	if y, err := strconv.Atoi(s); err == nil {
		return y, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int(f)) {
		return int(f), true
	}
	return 0, false
}

// cleanCell trims whitespace, strips a UTF-8 BOM, and unwraps the Excel
// formula prefix (="value") that some exports add to force text cells.
func cleanCell(s string) string {
	s = strings.TrimPrefix(s, "\uFEFF")
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}
	return s
}
