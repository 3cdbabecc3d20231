// Package convert turns a sheet of payment rows into a CPA-005 batch file.
package convert

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cpa005/internal/model"
	"github.com/cleared-dev/cpa005/internal/record"
)

// DefaultDelimiter separates records unless overridden.
const DefaultDelimiter = "\n\n"

// InvalidRowPolicy decides what happens to an accepted row that fails validation.
type InvalidRowPolicy string

const (
	// PolicyAbort fails the conversion, reporting every invalid row.
	PolicyAbort InvalidRowPolicy = "abort"
	// PolicySkip drops the row with a logged warning.
	PolicySkip InvalidRowPolicy = "skip"
)

// ParsePolicy accepts "abort" or "skip"; empty means abort.
func ParsePolicy(s string) (InvalidRowPolicy, error) {
	switch InvalidRowPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyAbort:
		return PolicyAbort, nil
	case PolicySkip:
		return PolicySkip, nil
	}
	return "", fmt.Errorf("unknown invalid-row policy %q (want abort or skip)", s)
}

// Options controls one conversion.
type Options struct {
	Mode         model.Mode
	Delimiter    string    // written between records; "" for an undelimited stream
	FileNumber   int       // file creation number; 0 means 1
	CreationDate time.Time // zero means today
	SundryInfo   string
	InvalidRows  InvalidRowPolicy
	Logger       *log.Logger
}

// DefaultOptions returns options for mode with the default delimiter and
// abort-on-invalid policy.
func DefaultOptions(mode model.Mode) Options {
	return Options{
		Mode:        mode,
		Delimiter:   DefaultDelimiter,
		FileNumber:  1,
		InvalidRows: PolicyAbort,
	}
}

// Summary describes a finished conversion.
type Summary struct {
	Mode     model.Mode
	Metadata model.Metadata
	Records  int // detail records emitted
	Skipped  int // suspended rows
	Rejected int // invalid rows dropped under PolicySkip
	Total    decimal.Decimal
	Bytes    int
}

// Result is a complete CPA-005 file held in memory.
type Result struct {
	Data    []byte
	Summary Summary
}

// WriteTo writes the file to w.
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.Data)
	if err != nil {
		return int64(n), fmt.Errorf("%w: %w", ErrSinkWrite, err)
	}
	return int64(n), nil
}

// tally is the running state of a conversion: the next sequence number and
// the aggregates of the detail records emitted so far.
type tally struct {
	seq   int
	count int
	total decimal.Decimal
}

func (t tally) advance() tally {
	t.seq++
	return t
}

func (t tally) add(amount decimal.Decimal) tally {
	t.count++
	t.total = t.total.Add(amount)
	return t.advance()
}

// Convert builds a CPA-005 file from sheet. Nothing is returned unless the
// whole file was built; any error aborts the run.
func Convert(sheet model.Sheet, opts Options) (*Result, error) {
	if _, err := model.ParseMode(string(opts.Mode)); err != nil {
		return nil, err
	}
	policy, err := ParsePolicy(string(opts.InvalidRows))
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	fileNumber := opts.FileNumber
	if fileNumber == 0 {
		fileNumber = 1
	}
	created := opts.CreationDate
	if created.IsZero() {
		created = time.Now()
	}

	meta, err := ReadMetadata(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading metadata: %w", err)
	}

	summary := Summary{Mode: opts.Mode, Metadata: meta}
	var records []string
	t := tally{seq: 1, total: decimal.Zero}

	header, err := record.Header(model.Header{
		Sequence:         t.seq,
		ClientNumber:     meta.ClientNumber,
		FileNumber:       fileNumber,
		CreationDate:     created,
		ProcessingCentre: meta.ProcessingCentre,
		Currency:         meta.Currency,
	})
	if err != nil {
		return nil, fmt.Errorf("building header: %w", err)
	}
	records = append(records, header)
	t = t.advance()

	var rowErrs []error
	for i := firstPaymentRow; i < len(sheet); i++ {
		row := ExtractRow(sheet[i], i+1)
		v := Validate(row)
		if v.Action == End {
			break
		}
		if v.Action == Skip {
			summary.Skipped++
			logger.Printf("row %d: customer %s suspended, skipping", row.Index, row.CustomerNumber)
			continue
		}
		if !v.Valid() {
			if policy == PolicySkip {
				summary.Rejected++
				for _, e := range v.Errors {
					logger.Printf("warning: %v; row dropped", e)
				}
				continue
			}
			for _, e := range v.Errors {
				rowErrs = append(rowErrs, e)
			}
			continue
		}
		if len(rowErrs) > 0 {
			// Already failing; keep validating to report every bad row.
			continue
		}

		amount := v.Amount.Round(2)
		detail, err := record.Detail(model.Detail{
			Mode:         opts.Mode,
			Sequence:     t.seq,
			ClientNumber: meta.ClientNumber,
			FileNumber:   t.seq,
			Payments:     []model.Payment{payment(meta, row, amount, opts.SundryInfo)},
		})
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row.Index, err)
		}
		records = append(records, detail)
		t = t.add(amount)
	}
	if len(rowErrs) > 0 {
		return nil, errors.Join(rowErrs...)
	}

	trailer, err := record.Trailer(model.Trailer{
		Mode:         opts.Mode,
		Sequence:     t.seq,
		ClientNumber: meta.ClientNumber,
		FileNumber:   fileNumber,
		TotalAmount:  t.total,
		TotalCount:   t.count,
	})
	if err != nil {
		return nil, fmt.Errorf("building trailer: %w", err)
	}
	records = append(records, trailer)

	data := []byte(strings.Join(records, opts.Delimiter))
	summary.Records = t.count
	summary.Total = t.total
	summary.Bytes = len(data)
	return &Result{Data: data, Summary: summary}, nil
}

// ConvertTo converts sheet and writes the file to w. Nothing is written when
// the conversion fails.
func ConvertTo(w io.Writer, sheet model.Sheet, opts Options) (Summary, error) {
	res, err := Convert(sheet, opts)
	if err != nil {
		return Summary{}, err
	}
	if _, err := res.WriteTo(w); err != nil {
		return Summary{}, err
	}
	return res.Summary, nil
}

// Bytes is Convert returning only the file contents.
func Bytes(sheet model.Sheet, mode model.Mode) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := ConvertTo(&buf, sheet, DefaultOptions(mode)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func payment(meta model.Metadata, row model.InputRow, amount decimal.Decimal, sundry string) model.Payment {
	return model.Payment{
		TransactionCode:   meta.TransactionCode,
		Amount:            amount,
		PaymentDate:       meta.PaymentDate,
		InstitutionNumber: row.BankNumber,
		BranchNumber:      row.BranchNumber,
		AccountNumber:     row.AccountNumber,
		ClientShortName:   shortName(meta.ClientName),
		CustomerName:      row.CustomerName,
		ClientName:        meta.ClientName,
		ClientNumber:      meta.ClientNumber,
		CustomerNumber:    row.CustomerNumber,
		SundryInfo:        sundry,
	}
}

// shortName truncates the client name to the 15-character short name field.
func shortName(name string) string {
	if len(name) <= 15 {
		return name
	}
	return name[:15]
}
