package source

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/cpa005/internal/model"
)

// XLSXReader reads the first worksheet of an Excel workbook. Numeric cells
// become Number cells holding the raw stored value, so dates arrive as
// spreadsheet serial numbers.
type XLSXReader struct{}

// Format returns the reader name.
func (x *XLSXReader) Format() string { return "xlsx" }

// Read parses the first sheet of the workbook in r.
func (x *XLSXReader) Read(r io.Reader) (model.Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	name := f.GetSheetName(0)
	if name == "" {
		return nil, fmt.Errorf("no sheets found in workbook")
	}

	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading rows of %s: %w", name, err)
	}

	sheet := make(model.Sheet, 0, len(rows))
	for ri, values := range rows {
		row := make(model.Row, len(values))
		for ci, v := range values {
			cell, err := x.cell(f, name, ci+1, ri+1, v)
			if err != nil {
				return nil, err
			}
			row[ci] = cell
		}
		sheet = append(sheet, row)
	}
	return sheet, nil
}

func (x *XLSXReader) cell(f *excelize.File, sheet string, col, row int, v string) (model.Cell, error) {
	if strings.TrimSpace(v) == "" {
		return model.Cell{}, nil
	}
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return model.Cell{}, fmt.Errorf("cell (%d,%d): %w", col, row, err)
	}
	typ, err := f.GetCellType(sheet, ref)
	if err != nil {
		return model.Cell{}, fmt.Errorf("cell %s: %w", ref, err)
	}
	// Cells without a type attribute are numbers by default.
	if typ == excelize.CellTypeNumber || typ == excelize.CellTypeUnset {
		if d, err := decimal.NewFromString(strings.TrimSpace(v)); err == nil {
			return model.NumberCell(d), nil
		}
	}
	return model.TextCell(v), nil
}
