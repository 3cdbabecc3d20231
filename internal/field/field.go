// Package field renders typed values into the fixed-width text fields of a
// CPA-005 record.
package field

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Kind is the padding rule applied to a field.
type Kind int

const (
	Alphanumeric Kind = iota // left-justified, space-filled
	Numeric                  // right-justified, zero-filled digits
	Money                    // cents, right-justified, zero-filled, no decimal point
	Date                     // century flag + YY + day of year
	Zeros                    // filler of '0'
	Spaces                   // filler of ' '
)

func (k Kind) String() string {
	switch k {
	case Alphanumeric:
		return "alphanumeric"
	case Numeric:
		return "numeric"
	case Money:
		return "money"
	case Date:
		return "date"
	case Zeros:
		return "zeros"
	case Spaces:
		return "spaces"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// DateWidth is the width of a CPA-005 date field ("0YYDDD").
const DateWidth = 6

var (
	// ErrFieldOverflow is returned when a value does not fit its field.
	ErrFieldOverflow = errors.New("field overflow")
	// ErrInvalidValue is returned for values a field type cannot represent.
	ErrInvalidValue = errors.New("invalid field value")
)

// OverflowError reports a value wider than its field.
type OverflowError struct {
	Value string
	Width int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("value %q is %d bytes, field holds %d", e.Value, len(e.Value), e.Width)
}

// Is makes errors.Is(err, ErrFieldOverflow) match.
func (e *OverflowError) Is(target error) bool { return target == ErrFieldOverflow }

func overflow(value string, width int) error {
	return &OverflowError{Value: value, Width: width}
}

// ASCII folds accented letters to their base letter ("Côté" becomes "Cote")
// and rejects anything left outside printable ASCII, control characters
// included. Records are fixed-width byte strings, so every character must
// be one byte.
func ASCII(s string) (string, error) {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidValue, s, err)
	}
	for i := 0; i < len(folded); i++ {
		if c := folded[i]; c < 0x20 || c > 0x7E {
			return "", fmt.Errorf("%w: %q contains a character outside printable ASCII", ErrInvalidValue, s)
		}
	}
	return folded, nil
}

// Text folds s to printable ASCII and right-pads it with spaces to width
// bytes.
func Text(s string, width int) (string, error) {
	a, err := ASCII(s)
	if err != nil {
		return "", err
	}
	if len(a) > width {
		return "", overflow(a, width)
	}
	return a + strings.Repeat(" ", width-len(a)), nil
}

// Number left-pads a non-negative integer with zeros to width.
func Number(n int64, width int) (string, error) {
	if n < 0 {
		return "", fmt.Errorf("%w: negative number %d", ErrInvalidValue, n)
	}
	return padDigits(strconv.FormatInt(n, 10), width)
}

// Digits left-pads a string of ASCII digits with zeros to width.
func Digits(s string, width int) (string, error) {
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: %q is not all digits", ErrInvalidValue, s)
		}
	}
	return padDigits(s, width)
}

// Amount renders d as a whole number of cents, rounded half away from zero,
// left-padded with zeros to width.
func Amount(d decimal.Decimal, width int) (string, error) {
	if d.IsNegative() {
		return "", fmt.Errorf("%w: negative amount %s", ErrInvalidValue, d.StringFixed(2))
	}
	cents := d.Shift(2).Round(0)
	return padDigits(cents.String(), width)
}

// Julian renders t as a century flag (0 for 20xx, 1 for 21xx), a two-digit
// year and a three-digit day of year.
func Julian(t time.Time, width int) (string, error) {
	if width != DateWidth {
		return "", fmt.Errorf("%w: date field must be %d wide, got %d", ErrInvalidValue, DateWidth, width)
	}
	if t.IsZero() {
		return "", fmt.Errorf("%w: date not set", ErrInvalidValue)
	}
	century := t.Year()/100 - 20
	if century < 0 || century > 9 {
		return "", fmt.Errorf("%w: year %d outside 2000-2999", ErrInvalidValue, t.Year())
	}
	return fmt.Sprintf("%d%02d%03d", century, t.Year()%100, t.YearDay()), nil
}

// Fill returns width copies of the filler character for kind (Zeros or Spaces).
func Fill(kind Kind, width int) string {
	if kind == Zeros {
		return strings.Repeat("0", width)
	}
	return strings.Repeat(" ", width)
}

func padDigits(s string, width int) (string, error) {
	if len(s) > width {
		return "", overflow(s, width)
	}
	return strings.Repeat("0", width-len(s)) + s, nil
}
