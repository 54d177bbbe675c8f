// Package dataset loads tabular source files (CSV/TSV/XLSX) into an
// in-memory row model the analysis pipeline consumes. Cell values are kept
// raw; normalization happens downstream.
package dataset

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Row maps a column name to its raw cell value (string, number, time.Time,
// or nil). Rows within one Dataset share the same column set.
type Row map[string]any

// Dataset is the parsed contents of one spreadsheet. Columns preserves the
// header order of the source file; Rows preserves insertion order.
type Dataset struct {
	Name    string
	Columns []string
	Rows    []Row
}

// HasColumn reports whether name is one of the dataset's columns.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Sample returns the first n rows (or all rows when fewer exist). The
// returned slice shares backing rows with the dataset; callers must not
// mutate them.
func (d *Dataset) Sample(n int) []Row {
	if n <= 0 || n >= len(d.Rows) {
		return d.Rows
	}
	return d.Rows[:n]
}

// ParseError indicates the source file could not be read into rows at all.
// It is the only pipeline-fatal error class: without rows there is nothing
// to analyze.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parse %s: %v", filepath.Base(e.Path), e.Err)
	}
	return fmt.Sprintf("parse: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseFile dispatches on file extension.
func ParseFile(path string) (*Dataset, error) {
	name := strings.ToLower(path)
	switch {
	case strings.HasSuffix(name, ".csv"), strings.HasSuffix(name, ".tsv"):
		return ParseCSVFile(path)
	case strings.HasSuffix(name, ".xlsx"):
		return ParseXLSXFile(path)
	default:
		return nil, &ParseError{Path: path, Err: fmt.Errorf("unsupported file format %q", filepath.Ext(path))}
	}
}
