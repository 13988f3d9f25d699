package dataset

// csv.go reads dataset CSV files. Files coming from Windows exports often
// carry a UTF-8 BOM (0xEF 0xBB 0xBF) that would otherwise corrupt the first
// header cell, so reads go through a BOM-skipping wrapper.

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// readCSV parses a CSV file into raw records, header included.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(newBOMSkippingReader(f))
	// Column counts vary between the two schemas; validate per-row instead.
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}
	return records, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// bomSkippingReader wraps an io.Reader and skips a leading UTF-8 BOM.
type bomSkippingReader struct {
	reader     io.Reader
	bomChecked bool
	buffered   []byte
}

func newBOMSkippingReader(r io.Reader) *bomSkippingReader {
	return &bomSkippingReader{reader: r}
}

// Read implements io.Reader. On the first read it inspects the first three
// bytes and drops them when they are the BOM.
func (r *bomSkippingReader) Read(p []byte) (int, error) {
	if !r.bomChecked {
		r.bomChecked = true

		var head [3]byte
		n, err := io.ReadFull(r.reader, head[:])
		if n > 0 && !(n == len(utf8BOM) && bytes.Equal(head[:n], utf8BOM)) {
			r.buffered = append(r.buffered, head[:n]...)
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			err = nil
		}
		if err != nil {
			return 0, err
		}
	}

	if len(r.buffered) > 0 {
		n := copy(p, r.buffered)
		r.buffered = r.buffered[n:]
		return n, nil
	}

	return r.reader.Read(p)
}
