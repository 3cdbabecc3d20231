package source

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/cleared-dev/cpa005/internal/model"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVReader reads comma-separated exports. Every non-blank cell is text;
// rows may have differing numbers of fields.
type CSVReader struct{}

// Format returns the reader name.
func (c *CSVReader) Format() string { return "csv" }

// Read parses all rows of r.
func (c *CSVReader) Read(r io.Reader) (model.Sheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	cr := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	sheet := make(model.Sheet, 0, len(records))
	for _, rec := range records {
		row := make(model.Row, len(rec))
		for i, v := range rec {
			row[i] = model.TextCell(v)
		}
		sheet = append(sheet, row)
	}
	return sheet, nil
}
