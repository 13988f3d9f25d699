// Package dataset locates and parses the vehicle dataset file into raw rows
// for the reference table build. It supports user-provided XLSX or CSV files
// with a bundled sample CSV as fallback, mirroring the deployment story of a
// single data directory next to the binary.
package dataset

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aampere/ev-valuation/internal/config"
	"github.com/aampere/ev-valuation/internal/core"
)

// ErrNoDatasetFile is returned when neither a user dataset nor the bundled
// sample exists.
var ErrNoDatasetFile = errors.New("no dataset file found")

// ErrUnrecognizedSchema is returned when a file's header matches neither the
// reference columns (make, model, base_price, year0) nor the transactional
// columns (make, model, price).
var ErrUnrecognizedSchema = errors.New("unrecognized dataset schema")

// Load resolves the dataset file per the configured priority order
// (XLSX > CSV > bundled sample), parses it, and returns the raw rows along
// with the path that was used.
func Load(cfg config.DatasetConfig) ([]core.RawRow, string, error) {
	path, err := resolvePath(cfg)
	if err != nil {
		return nil, "", err
	}

	var records [][]string
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		records, err = readXLSX(path)
	} else {
		records, err = readCSV(path)
	}
	if err != nil {
		return nil, path, fmt.Errorf("reading dataset %s: %w", path, err)
	}

	rows, err := ParseRows(records)
	if err != nil {
		return nil, path, fmt.Errorf("parsing dataset %s: %w", path, err)
	}

	slog.Info("dataset loaded", "path", path, "rows", len(rows))
	return rows, path, nil
}

// resolvePath returns the first existing dataset file in priority order.
func resolvePath(cfg config.DatasetConfig) (string, error) {
	candidates := []string{cfg.XLSXFile, cfg.CSVFile, cfg.SampleFile}
	for _, name := range candidates {
		if name == "" {
			continue
		}
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.Dir, name)
		}
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: looked for %s in %s", ErrNoDatasetFile,
		strings.Join(candidates, ", "), cfg.Dir)
}
