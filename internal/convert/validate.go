package convert

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cpa005/internal/field"
	"github.com/cleared-dev/cpa005/internal/model"
)

// Payment row columns.
const (
	colCustomerNumber = 0
	colCustomerName   = 1
	colBank           = 2
	colBranch         = 3
	colAccount        = 4
	colAmount         = 5
	colSuspend        = 6
)

// ColumnHeaders titles the payment columns in the header row.
var ColumnHeaders = []string{"Customer Number", "Customer Name", "Bank", "Branch", "Account", "Amount", "Suspend"}

// SuspendMarker in the suspend column excludes a row from the file.
const SuspendMarker = "y"

// Action is what the assembler does with a row.
type Action int

const (
	Accept Action = iota
	Skip
	End
)

func (a Action) String() string {
	switch a {
	case Accept:
		return "accept"
	case Skip:
		return "skip"
	case End:
		return "end"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Verdict is the outcome of validating one row. Amount is set when the row
// is accepted and its amount parsed.
type Verdict struct {
	Action Action
	Amount decimal.Decimal
	Errors []*RowError
}

// Valid reports whether an accepted row has no violations.
func (v Verdict) Valid() bool { return len(v.Errors) == 0 }

// ExtractRow reads the payment columns of a sheet row. index is the 1-based
// line number used in error messages.
func ExtractRow(r model.Row, index int) model.InputRow {
	return model.InputRow{
		Index:          index,
		CustomerNumber: r.At(colCustomerNumber).String(),
		CustomerName:   r.At(colCustomerName).String(),
		BankNumber:     r.At(colBank).String(),
		BranchNumber:   r.At(colBranch).String(),
		AccountNumber:  r.At(colAccount).String(),
		Amount:         r.At(colAmount),
		Suspend:        r.At(colSuspend).String(),
	}
}

// Validate gates one payment row. An empty customer number marks the end of
// the data. A suspended row is skipped. Anything else is accepted, with every
// field violation listed in the verdict.
func Validate(row model.InputRow) Verdict {
	if strings.TrimSpace(row.CustomerNumber) == "" {
		return Verdict{Action: End}
	}
	if strings.EqualFold(strings.TrimSpace(row.Suspend), SuspendMarker) {
		return Verdict{Action: Skip}
	}

	v := Verdict{Action: Accept}
	reject := func(name, format string, args ...any) {
		v.Errors = append(v.Errors, &RowError{Row: row.Index, Field: name, Reason: fmt.Sprintf(format, args...)})
	}

	amount, err := parseAmount(row.Amount)
	if err != nil {
		reject("amount", "%v", err)
	} else {
		v.Amount = amount
	}

	checkDigits := func(name, value string, max int) {
		switch {
		case value == "":
			reject(name, "required")
		case !isDigits(value):
			reject(name, "must contain only digits, got %q", value)
		case len(value) > max:
			reject(name, "must not exceed %d digits, got %q", max, value)
		}
	}
	checkDigits("bank_number", row.BankNumber, 4)
	checkDigits("branch_number", row.BranchNumber, 5)
	checkDigits("account_number", row.AccountNumber, 12)

	checkText := func(name, value string, max int) {
		a, err := field.ASCII(value)
		switch {
		case err != nil:
			reject(name, "must be printable text without line breaks, got %q", value)
		case len(a) > max:
			reject(name, "must not exceed %d characters, got %d", max, len(a))
		}
	}
	checkText("customer_name", row.CustomerName, 30)
	checkText("customer_number", row.CustomerNumber, 19)

	return v
}

// parseAmount accepts a numeric cell or text such as "$1,234.50".
func parseAmount(c model.Cell) (decimal.Decimal, error) {
	var d decimal.Decimal
	switch c.Kind {
	case model.CellEmpty:
		return decimal.Zero, fmt.Errorf("required")
	case model.CellNumber:
		d = c.Number
	default:
		var b strings.Builder
		for _, r := range c.Text {
			switch {
			case r >= '0' && r <= '9', r == '.':
				b.WriteRune(r)
			case r == ',', r == ' ', r == '$':
			default:
				return decimal.Zero, fmt.Errorf("could not parse %q", c.Text)
			}
		}
		var err error
		d, err = decimal.NewFromString(b.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("could not parse %q", c.Text)
		}
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("must not be negative, got %s", d.String())
	}
	return d, nil
}
