package convert

import (
	"errors"
	"fmt"
)

var (
	// ErrMetadataMissing is returned when a file-level metadata cell is absent.
	ErrMetadataMissing = errors.New("metadata missing")
	// ErrMetadataInvalid is returned when a metadata value cannot be parsed.
	ErrMetadataInvalid = errors.New("metadata invalid")
	// ErrRowInvalid is returned when a payment row fails validation.
	ErrRowInvalid = errors.New("row invalid")
	// ErrSinkWrite is returned when the output cannot be written.
	ErrSinkWrite = errors.New("output write failed")
)

// MetadataError describes a problem with one metadata row.
type MetadataError struct {
	Label  string
	Row    int // 1-based
	Reason string
	Err    error // ErrMetadataMissing or ErrMetadataInvalid
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("row %d (%s): %s", e.Row, e.Label, e.Reason)
}

func (e *MetadataError) Unwrap() error { return e.Err }

// RowError describes one field violation in a payment row.
type RowError struct {
	Row    int // 1-based
	Field  string
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s: %s", e.Row, e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrRowInvalid) match.
func (e *RowError) Is(target error) bool { return target == ErrRowInvalid }
