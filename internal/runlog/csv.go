package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Header is the CSV header of the conversion log.
const Header = "id,timestamp,source,mode,output,records,skipped,rejected,total,status,error"

const (
	numFields   = 11
	colID       = 0
	colTime     = 1
	colSource   = 2
	colMode     = 3
	colOutput   = 4
	colRecords  = 5
	colSkipped  = 6
	colRejected = 7
	colTotal    = 8
	colStatus   = 9
	colError    = 10
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colID] = e.ID
	row[colTime] = e.Timestamp.Format(time.RFC3339)
	row[colSource] = e.Source
	row[colMode] = e.Mode
	row[colOutput] = e.Output
	row[colRecords] = strconv.Itoa(e.Records)
	row[colSkipped] = strconv.Itoa(e.Skipped)
	row[colRejected] = strconv.Itoa(e.Rejected)
	row[colTotal] = e.Total.StringFixed(2)
	row[colStatus] = e.Status
	row[colError] = e.Error
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTime])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTime], err)
	}

	var counts [3]int
	for i, col := range []int{colRecords, colSkipped, colRejected} {
		n, err := strconv.Atoi(record[col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing count %q: %w", record[col], err)
		}
		counts[i] = n
	}

	total, err := decimal.NewFromString(record[colTotal])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing total %q: %w", record[colTotal], err)
	}

	return Entry{
		ID:        record[colID],
		Timestamp: ts,
		Source:    record[colSource],
		Mode:      record[colMode],
		Output:    record[colOutput],
		Records:   counts[0],
		Skipped:   counts[1],
		Rejected:  counts[2],
		Total:     total,
		Status:    record[colStatus],
		Error:     record[colError],
	}, nil
}

// CSVStore keeps the history in a CSV file, one row per run.
type CSVStore struct {
	path string
}

// NewCSVStore returns a store backed by the file at path. The file is
// created on the first Append.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path returns the backing file path.
func (s *CSVStore) Path() string { return s.path }

// Append writes entries, creating the file and header if needed.
func (s *CSVStore) Append(entries ...Entry) error {
	for _, e := range entries {
		if err := e.validate(); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening conversion log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns every entry in file order. A missing file yields nil.
func (s *CSVStore) Read() ([]Entry, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening conversion log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

// Recent returns up to limit entries, newest first. A limit <= 0 returns all.
func (s *CSVStore) Recent(limit int) ([]Entry, error) {
	entries, err := s.Read()
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, entries[i])
	}
	return out, nil
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading conversion log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
