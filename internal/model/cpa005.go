package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Mode selects the kind of CPA-005 file: debit (PAP-PAD) or credit (PDS).
type Mode string

const (
	ModeDebit  Mode = "PAD"
	ModeCredit Mode = "PDS"
)

// ParseMode accepts "PAD" or "PDS" in any case.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToUpper(strings.TrimSpace(s))) {
	case ModeDebit:
		return ModeDebit, nil
	case ModeCredit:
		return ModeCredit, nil
	}
	return "", fmt.Errorf("unknown record mode %q (want PAD or PDS)", s)
}

// RecordKind is the logical record type, independent of the file mode.
type RecordKind int

const (
	KindHeader RecordKind = iota
	KindDetail
	KindTrailer
)

func (k RecordKind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindDetail:
		return "detail"
	case KindTrailer:
		return "trailer"
	}
	return fmt.Sprintf("RecordKind(%d)", int(k))
}

// Tag collapses a record kind and a mode into the single record-type
// character written at the start of every record.
func Tag(kind RecordKind, mode Mode) string {
	switch kind {
	case KindHeader:
		return "A"
	case KindTrailer:
		return "Z"
	}
	if mode == ModeCredit {
		return "C"
	}
	return "D"
}

// ProcessingCentre is the destination data centre code of the originating bank.
type ProcessingCentre int

const (
	CentreVancouver ProcessingCentre = 300
	CentreMontreal  ProcessingCentre = 310
	CentreToronto   ProcessingCentre = 320
	CentreHalifax   ProcessingCentre = 330
	CentreWinnipeg  ProcessingCentre = 370
	CentreCalgary   ProcessingCentre = 390
	CentreRegina    ProcessingCentre = 278
)

var centreNames = map[ProcessingCentre]string{
	CentreVancouver: "Vancouver",
	CentreMontreal:  "Montreal",
	CentreToronto:   "Toronto",
	CentreHalifax:   "Halifax",
	CentreWinnipeg:  "Winnipeg",
	CentreCalgary:   "Calgary",
	CentreRegina:    "Regina",
}

// Valid reports whether c is a known processing centre.
func (c ProcessingCentre) Valid() bool {
	_, ok := centreNames[c]
	return ok
}

func (c ProcessingCentre) String() string {
	if name, ok := centreNames[c]; ok {
		return name
	}
	return fmt.Sprintf("%05d", int(c))
}

// Currency is the destination currency of the file.
type Currency string

const (
	CurrencyCAD Currency = "CAD"
	CurrencyUSD Currency = "USD"
)

// ParseCurrency accepts CAD or USD in any case.
func ParseCurrency(s string) (Currency, error) {
	switch Currency(strings.ToUpper(strings.TrimSpace(s))) {
	case CurrencyCAD:
		return CurrencyCAD, nil
	case CurrencyUSD:
		return CurrencyUSD, nil
	}
	return "", fmt.Errorf("unknown currency %q (want CAD or USD)", s)
}

// Metadata holds the file-level values read once per conversion.
type Metadata struct {
	ClientName       string
	ClientNumber     string
	ProcessingCentre ProcessingCentre
	Currency         Currency
	PaymentDate      time.Time
	TransactionCode  string
}

// Payment is one payment segment of a Detail record.
type Payment struct {
	TransactionCode   string
	Amount            decimal.Decimal
	PaymentDate       time.Time
	InstitutionNumber string // 4 digits after padding
	BranchNumber      string // 5 digits after padding
	AccountNumber     string
	ClientShortName   string
	CustomerName      string
	ClientName        string
	ClientNumber      string
	CustomerNumber    string
	SundryInfo        string
}

// Header is the single "A" record opening a file.
type Header struct {
	Sequence         int
	ClientNumber     string
	FileNumber       int
	CreationDate     time.Time
	ProcessingCentre ProcessingCentre
	Currency         Currency
}

// Detail is a "D" or "C" record carrying one or more payments.
type Detail struct {
	Mode         Mode
	Sequence     int
	ClientNumber string
	FileNumber   int
	Payments     []Payment
}

// Trailer is the single "Z" record closing a file.
type Trailer struct {
	Mode         Mode
	Sequence     int
	ClientNumber string
	FileNumber   int
	TotalAmount  decimal.Decimal
	TotalCount   int
}
