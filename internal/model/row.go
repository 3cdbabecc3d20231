package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CellKind discriminates the value held by a Cell.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
)

// Cell is one spreadsheet cell, resolved to text, number or empty by the row source.
type Cell struct {
	Kind   CellKind
	Text   string
	Number decimal.Decimal
}

// TextCell returns a Text cell, or an Empty cell when s is blank.
func TextCell(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{}
	}
	return Cell{Kind: CellText, Text: s}
}

// NumberCell returns a Number cell.
func NumberCell(d decimal.Decimal) Cell {
	return Cell{Kind: CellNumber, Number: d}
}

// IsEmpty reports whether the cell holds no value.
func (c Cell) IsEmpty() bool { return c.Kind == CellEmpty }

// String returns the cell's trimmed textual form. Numbers print without
// trailing zeros ("1001", "50.25").
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return strings.TrimSpace(c.Text)
	case CellNumber:
		return c.Number.String()
	}
	return ""
}

// Row is one line of the source, addressed by column position.
type Row []Cell

// At returns the cell at column i, or an Empty cell past the end of the row.
func (r Row) At(i int) Cell {
	if i < 0 || i >= len(r) {
		return Cell{}
	}
	return r[i]
}

// Sheet is the full ordered row sequence of one source file.
type Sheet []Row

// InputRow is a payment row extracted from the sheet at fixed column positions.
type InputRow struct {
	Index          int // 1-based line number in the source
	CustomerNumber string
	CustomerName   string
	BankNumber     string
	BranchNumber   string
	AccountNumber  string
	Amount         Cell
	Suspend        string
}
