package record

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cpa005/internal/field"
	"github.com/cleared-dev/cpa005/internal/model"
)

// Header builds the "A" record.
func Header(h model.Header) (string, error) {
	r := newRenderer(model.KindHeader.String(), HeaderLayout)
	values := []string{
		r.text("record_type", model.Tag(model.KindHeader, "")),
		r.number("sequence", int64(h.Sequence)),
		r.text("client_number", h.ClientNumber),
		r.text("file_number", fmt.Sprint(h.FileNumber)),
		r.date("creation_date", h.CreationDate),
		r.number("processing_centre", int64(h.ProcessingCentre)),
		r.text("currency_code", string(h.Currency)),
	}
	if r.err != nil {
		return "", r.err
	}
	return compose(r.record, HeaderLayout, values)
}

// Detail builds a "D" (debit) or "C" (credit) record: the envelope followed
// by every payment segment.
func Detail(d model.Detail) (string, error) {
	if len(d.Payments) == 0 {
		return "", fmt.Errorf("detail %d: no payment segments", d.Sequence)
	}
	r := newRenderer(model.KindDetail.String(), EnvelopeLayout)
	values := []string{
		r.text("record_type", model.Tag(model.KindDetail, d.Mode)),
		r.number("sequence", int64(d.Sequence)),
		r.text("client_number", d.ClientNumber),
		r.text("file_number", fmt.Sprint(d.FileNumber)),
	}
	if r.err != nil {
		return "", r.err
	}
	envelope, err := compose(r.record, EnvelopeLayout, values)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(EnvelopeWidth + len(d.Payments)*SegmentWidth)
	b.WriteString(envelope)
	for i, p := range d.Payments {
		seg, err := Segment(p)
		if err != nil {
			return "", fmt.Errorf("detail %d segment %d: %w", d.Sequence, i+1, err)
		}
		b.WriteString(seg)
	}
	return b.String(), nil
}

// Segment builds one 240-character payment segment.
func Segment(p model.Payment) (string, error) {
	r := newRenderer("segment", SegmentLayout)
	transit := ""
	if inst, err := field.Digits(p.InstitutionNumber, 4); err != nil {
		r.fail("institution_number", err)
	} else if branch, err := field.Digits(p.BranchNumber, 5); err != nil {
		r.fail("branch_number", err)
	} else {
		transit = inst + branch
	}
	values := []string{
		r.text("transaction_code", p.TransactionCode),
		r.money("amount", p.Amount),
		r.date("payment_date", p.PaymentDate),
		r.digits("transit", transit),
		r.text("account_number", p.AccountNumber),
		r.text("client_short_name", p.ClientShortName),
		r.text("customer_name", p.CustomerName),
		r.text("client_long_name", p.ClientName),
		r.text("client_number", p.ClientNumber),
		r.text("customer_number", p.CustomerNumber),
		r.text("sundry_info", p.SundryInfo),
	}
	if r.err != nil {
		return "", r.err
	}
	return compose(r.record, SegmentLayout, values)
}

// Trailer builds the "Z" record. The totals land in the debit or credit
// columns according to the trailer's mode.
func Trailer(t model.Trailer) (string, error) {
	debitAmount, debitCount := t.TotalAmount, t.TotalCount
	creditAmount, creditCount := decimal.Zero, 0
	if t.Mode == model.ModeCredit {
		debitAmount, debitCount, creditAmount, creditCount = decimal.Zero, 0, t.TotalAmount, t.TotalCount
	}

	r := newRenderer(model.KindTrailer.String(), TrailerLayout)
	values := []string{
		r.text("record_type", model.Tag(model.KindTrailer, t.Mode)),
		r.number("sequence", int64(t.Sequence)),
		r.text("client_number", t.ClientNumber),
		r.text("file_number", fmt.Sprint(t.FileNumber)),
		r.money("total_debit_amount", debitAmount),
		r.number("total_debit_count", int64(debitCount)),
		r.money("total_credit_amount", creditAmount),
		r.number("total_credit_count", int64(creditCount)),
	}
	if r.err != nil {
		return "", r.err
	}
	return compose(r.record, TrailerLayout, values)
}

// compose concatenates the rendered values in layout order, inserting the
// filler runs. values holds one entry per non-filler field.
func compose(record string, layout Layout, values []string) (string, error) {
	var b strings.Builder
	b.Grow(layout.Width())
	i := 0
	for _, f := range layout {
		if f.Kind == field.Zeros || f.Kind == field.Spaces {
			b.WriteString(field.Fill(f.Kind, f.Width))
			continue
		}
		if i >= len(values) {
			panic(fmt.Sprintf("record %s: missing value for %s", record, f.Name))
		}
		v := values[i]
		i++
		if len(v) != f.Width {
			return "", fmt.Errorf("%s %s: rendered %d bytes, layout wants %d", record, f.Name, len(v), f.Width)
		}
		b.WriteString(v)
	}
	if i != len(values) {
		panic(fmt.Sprintf("record %s: %d values for %d fields", record, len(values), i))
	}
	return b.String(), nil
}

// renderer formats fields against a layout, keeping the first error.
type renderer struct {
	record string
	widths map[string]int
	err    error
}

func newRenderer(record string, layout Layout) *renderer {
	widths := make(map[string]int, len(layout))
	for _, f := range layout {
		if _, ok := widths[f.Name]; !ok {
			widths[f.Name] = f.Width
		}
	}
	return &renderer{record: record, widths: widths}
}

func (r *renderer) width(name string) int {
	w, ok := r.widths[name]
	if !ok {
		panic(fmt.Sprintf("record %s: no field %s in layout", r.record, name))
	}
	return w
}

func (r *renderer) fail(name string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("%s %s: %w", r.record, name, err)
	}
}

func (r *renderer) keep(name, s string, err error) string {
	if err != nil {
		r.fail(name, err)
		return ""
	}
	return s
}

func (r *renderer) text(name, v string) string {
	s, err := field.Text(v, r.width(name))
	return r.keep(name, s, err)
}

func (r *renderer) number(name string, v int64) string {
	s, err := field.Number(v, r.width(name))
	return r.keep(name, s, err)
}

func (r *renderer) digits(name, v string) string {
	if r.err != nil {
		return ""
	}
	s, err := field.Digits(v, r.width(name))
	return r.keep(name, s, err)
}

func (r *renderer) money(name string, v decimal.Decimal) string {
	s, err := field.Amount(v, r.width(name))
	return r.keep(name, s, err)
}

func (r *renderer) date(name string, v time.Time) string {
	s, err := field.Julian(v, r.width(name))
	return r.keep(name, s, err)
}
