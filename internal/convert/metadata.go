package convert

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/cpa005/internal/field"
	"github.com/cleared-dev/cpa005/internal/model"
)

// Metadata occupies the first rows of the sheet as label/value pairs.
const (
	colLabel = 0
	colValue = 1

	rowClientName       = 0
	rowClientNumber     = 1
	rowProcessingCentre = 2
	rowCurrencyCode     = 3
	rowPaymentDate      = 4
	rowTransactionCode  = 5

	// rowColumnHeader holds the payment column titles; payments start after it.
	rowColumnHeader = 6
	firstPaymentRow = 7
)

// Labels expected in column 0 of the metadata rows.
const (
	LabelClientName       = "Client Name"
	LabelClientNumber     = "Client Number"
	LabelProcessingCentre = "Processing Centre"
	LabelCurrencyCode     = "Currency Code"
	LabelPaymentDate      = "Payment Date"
	LabelTransactionCode  = "Transaction Code"
)

// Month and day may omit their leading zero.
var paymentDateLayouts = []string{"2006/01/02", "2006-01-02", "2006/1/2", "2006-1-2"}

// ReadMetadata extracts the file-level values from their fixed rows. Every
// problem is reported; the returned error joins one MetadataError per row.
func ReadMetadata(sheet model.Sheet) (model.Metadata, error) {
	var meta model.Metadata
	var errs []error

	cell := func(row int, label string) (model.Cell, bool) {
		if row >= len(sheet) {
			errs = append(errs, missing(row, label, "row not present"))
			return model.Cell{}, false
		}
		got := sheet[row].At(colLabel).String()
		if !strings.EqualFold(got, label) {
			errs = append(errs, missing(row, label, fmt.Sprintf("expected label %q, got %q", label, got)))
			return model.Cell{}, false
		}
		v := sheet[row].At(colValue)
		if v.IsEmpty() {
			errs = append(errs, missing(row, label, "no value"))
			return model.Cell{}, false
		}
		return v, true
	}

	if v, ok := cell(rowClientName, LabelClientName); ok {
		name, err := field.ASCII(v.String())
		switch {
		case err != nil:
			errs = append(errs, invalid(rowClientName, LabelClientName, "must be printable text without line breaks"))
		case len(name) > 30:
			errs = append(errs, invalid(rowClientName, LabelClientName, "must not exceed 30 characters"))
		}
		meta.ClientName = name
	}

	if v, ok := cell(rowClientNumber, LabelClientNumber); ok {
		n, err := parseClientNumber(v)
		if err != nil {
			errs = append(errs, invalid(rowClientNumber, LabelClientNumber, err.Error()))
		}
		meta.ClientNumber = n
	}

	if v, ok := cell(rowProcessingCentre, LabelProcessingCentre); ok {
		c, err := parseCentre(v.String())
		if err != nil {
			errs = append(errs, invalid(rowProcessingCentre, LabelProcessingCentre, err.Error()))
		}
		meta.ProcessingCentre = c
	}

	if v, ok := cell(rowCurrencyCode, LabelCurrencyCode); ok {
		c, err := model.ParseCurrency(v.String())
		if err != nil {
			errs = append(errs, invalid(rowCurrencyCode, LabelCurrencyCode, err.Error()))
		}
		meta.Currency = c
	}

	if v, ok := cell(rowPaymentDate, LabelPaymentDate); ok {
		d, err := parsePaymentDate(v)
		if err != nil {
			errs = append(errs, invalid(rowPaymentDate, LabelPaymentDate, err.Error()))
		}
		meta.PaymentDate = d
	}

	if v, ok := cell(rowTransactionCode, LabelTransactionCode); ok {
		code := v.String()
		if len(code) != 3 {
			errs = append(errs, invalid(rowTransactionCode, LabelTransactionCode,
				fmt.Sprintf("transaction code must be 3 characters, got %q", code)))
		}
		meta.TransactionCode = code
	}

	if len(errs) > 0 {
		return model.Metadata{}, errors.Join(errs...)
	}
	return meta, nil
}

func missing(row int, label, reason string) error {
	return &MetadataError{Label: label, Row: row + 1, Reason: reason, Err: ErrMetadataMissing}
}

func invalid(row int, label, reason string) error {
	return &MetadataError{Label: label, Row: row + 1, Reason: reason, Err: ErrMetadataInvalid}
}

// parseClientNumber requires exactly 10 digits. Spreadsheets drop leading
// zeros from numeric cells, so numbers are zero-padded first.
func parseClientNumber(c model.Cell) (string, error) {
	s := c.String()
	if c.Kind == model.CellNumber && len(s) < 10 {
		s = strings.Repeat("0", 10-len(s)) + s
	}
	if len(s) != 10 || !isDigits(s) {
		return "", fmt.Errorf("client number must be exactly 10 digits, got %q", c.String())
	}
	return s, nil
}

func parseCentre(s string) (model.ProcessingCentre, error) {
	n, err := strconv.Atoi(s)
	if err != nil || !model.ProcessingCentre(n).Valid() {
		return 0, fmt.Errorf("unknown processing centre %q", s)
	}
	return model.ProcessingCentre(n), nil
}

func parsePaymentDate(c model.Cell) (time.Time, error) {
	if c.Kind == model.CellNumber {
		// The second result only reports float rounding, which cannot move a
		// serial date by a day.
		serial, _ := c.Number.Float64()
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("spreadsheet date %s: %w", c.String(), err)
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	for _, layout := range paymentDateLayouts {
		if t, err := time.Parse(layout, c.String()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("could not parse %q, expected YYYY/MM/DD", c.String())
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
