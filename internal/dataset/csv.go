package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ParseCSVFile reads a CSV/TSV file from disk into a Dataset.
func ParseCSVFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer f.Close()

	head := make([]byte, 4096)
	n, _ := io.ReadFull(f, head)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	delim := sniffDelimiter(path, string(head[:n]))

	ds, err := ParseCSV(f, filepath.Base(path), delim)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return ds, nil
}

// ParseCSV reads CSV content into a Dataset. A zero delim falls back to
// the comma default; delimiter sniffing among ',', ';' and '\t' happens
// in ParseCSVFile, so callers passing a reader should supply it.
func ParseCSV(r io.Reader, name string, delim rune) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if delim != 0 {
		cr.Comma = delim
	}

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("file is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(h)
	}

	ds := &Dataset{Name: name, Columns: cols}
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(ds.Rows)+1, err)
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			if i < len(rec) {
				v := strings.TrimSpace(rec[i])
				if v == "" {
					row[c] = nil
				} else {
					row[c] = v
				}
			} else {
				row[c] = nil
			}
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

// sniffDelimiter guesses the CSV delimiter from the filename and the first
// line of content. TSV extension wins; otherwise the candidate appearing
// most often in the header line is used, defaulting to comma.
func sniffDelimiter(path, head string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	line := head
	if i := strings.IndexAny(head, "\r\n"); i >= 0 {
		line = head[:i]
	}
	best, bestCount := ',', strings.Count(line, ",")
	for _, c := range []rune{';', '\t'} {
		if n := strings.Count(line, string(c)); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}
