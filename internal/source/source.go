// Package source reads spreadsheet files into sheets of typed cells.
package source

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/cleared-dev/cpa005/internal/model"
)

// Reader converts a file into a Sheet.
type Reader interface {
	Read(r io.Reader) (model.Sheet, error)
	Format() string
}

// Registry holds readers keyed by format name.
type Registry struct {
	readers map[string]Reader
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{readers: make(map[string]Reader)}
}

// Register adds a reader. Panics on duplicate format.
func (r *Registry) Register(rd Reader) {
	key := strings.ToLower(rd.Format())
	if _, ok := r.readers[key]; ok {
		panic("duplicate reader format: " + key)
	}
	r.readers[key] = rd
}

// Get returns the reader for format, or nil.
func (r *Registry) Get(format string) Reader {
	return r.readers[strings.ToLower(format)]
}

// Formats lists the registered format names in sorted order.
func (r *Registry) Formats() []string {
	keys := lo.Keys(r.readers)
	sort.Strings(keys)
	return keys
}

// Detect picks a reader by file extension, falling back to the content:
// zip and OLE2 signatures mean a workbook, anything else is read as CSV.
func (r *Registry) Detect(name string, data []byte) (Reader, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if rd := r.Get(ext); rd != nil {
		return rd, nil
	}
	format := "csv"
	if isWorkbook(data) {
		format = "xlsx"
	}
	rd := r.Get(format)
	if rd == nil {
		return nil, fmt.Errorf("no reader for %s", name)
	}
	return rd, nil
}

// Parse detects the format of data and reads it.
func (r *Registry) Parse(name string, data []byte) (model.Sheet, error) {
	rd, err := r.Detect(name, data)
	if err != nil {
		return nil, err
	}
	sheet, err := rd.Read(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("reading %s as %s: %w", filepath.Base(name), rd.Format(), err)
	}
	return sheet, nil
}

// Load reads and parses the file at path.
func (r *Registry) Load(path string) (model.Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return r.Parse(path, data)
}

// DefaultRegistry returns a registry with the CSV and XLSX readers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&CSVReader{})
	r.Register(&XLSXReader{})
	return r
}

func isWorkbook(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0x50, 0x4B, 0x03, 0x04}) ||
		bytes.HasPrefix(data, []byte{0xD0, 0xCF, 0x11, 0xE0})
}
