// Package runlog records the history of conversion runs.
package runlog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cpa005/internal/convert"
)

// Run outcomes.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Entry is one conversion run.
type Entry struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Source    string          `json:"source"`
	Mode      string          `json:"mode"`
	Output    string          `json:"output,omitempty"`
	Records   int             `json:"records"`
	Skipped   int             `json:"skipped"`
	Rejected  int             `json:"rejected"`
	Total     decimal.Decimal `json:"total"`
	Status    string          `json:"status"`
	Error     string          `json:"error,omitempty"`
}

// Store persists entries. Recent returns the newest entries first.
type Store interface {
	Append(entries ...Entry) error
	Recent(limit int) ([]Entry, error)
}

// NewEntry builds an entry for a run of source. A nil err marks the run
// successful and copies the counts from sum.
func NewEntry(now time.Time, source, output string, mode string, sum convert.Summary, err error) Entry {
	e := Entry{
		ID:        uuid.NewString(),
		Timestamp: now.UTC().Truncate(time.Second),
		Source:    source,
		Mode:      mode,
		Status:    StatusOK,
	}
	if err != nil {
		e.Status = StatusFailed
		e.Error = err.Error()
		return e
	}
	e.Output = output
	e.Records = sum.Records
	e.Skipped = sum.Skipped
	e.Rejected = sum.Rejected
	e.Total = sum.Total
	return e
}

func (e Entry) validate() error {
	if e.ID == "" {
		return fmt.Errorf("entry has no id")
	}
	if e.Status != StatusOK && e.Status != StatusFailed {
		return fmt.Errorf("entry %s: unknown status %q", e.ID, e.Status)
	}
	return nil
}
