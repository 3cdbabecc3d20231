// Package record assembles CPA-005 Header, Detail and Trailer records from
// rendered fields.
package record

import "github.com/cleared-dev/cpa005/internal/field"

// Field is one entry of a record layout.
type Field struct {
	Name  string
	Kind  field.Kind
	Width int
}

// Layout is an ordered list of fields making up a record.
type Layout []Field

// Width returns the total record width implied by the layout.
func (l Layout) Width() int {
	w := 0
	for _, f := range l {
		w += f.Width
	}
	return w
}

// Logical record lengths from the CPA-005 file format.
const (
	HeaderWidth   = 1464
	EnvelopeWidth = 24
	SegmentWidth  = 240
	TrailerWidth  = 1464
)

// HeaderLayout is the "A" record.
var HeaderLayout = Layout{
	{Name: "record_type", Kind: field.Alphanumeric, Width: 1},
	{Name: "sequence", Kind: field.Numeric, Width: 9},
	{Name: "client_number", Kind: field.Alphanumeric, Width: 10},
	{Name: "file_number", Kind: field.Alphanumeric, Width: 4},
	{Name: "creation_date", Kind: field.Date, Width: field.DateWidth},
	{Name: "processing_centre", Kind: field.Numeric, Width: 5},
	{Name: "filler", Kind: field.Spaces, Width: 20},
	{Name: "currency_code", Kind: field.Alphanumeric, Width: 3},
	{Name: "filler", Kind: field.Spaces, Width: 1406},
}

// EnvelopeLayout is the fixed prefix of a "D" or "C" record; one or more
// segments follow it.
var EnvelopeLayout = Layout{
	{Name: "record_type", Kind: field.Alphanumeric, Width: 1},
	{Name: "sequence", Kind: field.Numeric, Width: 9},
	{Name: "client_number", Kind: field.Alphanumeric, Width: 10},
	{Name: "file_number", Kind: field.Alphanumeric, Width: 4},
}

// SegmentLayout is one payment segment of a Detail record.
var SegmentLayout = Layout{
	{Name: "transaction_code", Kind: field.Alphanumeric, Width: 3},
	{Name: "amount", Kind: field.Money, Width: 10},
	{Name: "payment_date", Kind: field.Date, Width: field.DateWidth},
	{Name: "transit", Kind: field.Numeric, Width: 9},
	{Name: "account_number", Kind: field.Alphanumeric, Width: 12},
	{Name: "filler", Kind: field.Zeros, Width: 22},
	{Name: "filler", Kind: field.Zeros, Width: 3},
	{Name: "client_short_name", Kind: field.Alphanumeric, Width: 15},
	{Name: "customer_name", Kind: field.Alphanumeric, Width: 30},
	{Name: "client_long_name", Kind: field.Alphanumeric, Width: 30},
	{Name: "client_number", Kind: field.Alphanumeric, Width: 10},
	{Name: "customer_number", Kind: field.Alphanumeric, Width: 19},
	{Name: "filler", Kind: field.Zeros, Width: 9},
	{Name: "filler", Kind: field.Spaces, Width: 12},
	{Name: "sundry_info", Kind: field.Alphanumeric, Width: 15},
	{Name: "filler", Kind: field.Spaces, Width: 22},
	{Name: "filler", Kind: field.Spaces, Width: 2},
	{Name: "filler", Kind: field.Spaces, Width: 11},
}

// TrailerLayout is the "Z" record. A debit file fills the debit totals and
// zeroes the credit totals; a credit file does the reverse.
var TrailerLayout = Layout{
	{Name: "record_type", Kind: field.Alphanumeric, Width: 1},
	{Name: "sequence", Kind: field.Numeric, Width: 9},
	{Name: "client_number", Kind: field.Alphanumeric, Width: 10},
	{Name: "file_number", Kind: field.Alphanumeric, Width: 4},
	{Name: "total_debit_amount", Kind: field.Money, Width: 14},
	{Name: "total_debit_count", Kind: field.Numeric, Width: 8},
	{Name: "total_credit_amount", Kind: field.Money, Width: 14},
	{Name: "total_credit_count", Kind: field.Numeric, Width: 8},
	{Name: "filler", Kind: field.Zeros, Width: 1396},
}
