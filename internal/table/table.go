// Package table loads wide-format field spreadsheets (CSV/XLSX) and
// reshapes them between wide and long layouts. It knows nothing about
// parameters or stations beyond their position in the grid.
package table

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnknownSheet reports an XLSX sheet selection that matches no sheet in
// the workbook. Callers branch on it with errors.Is.
var ErrUnknownSheet = errors.New("unknown sheet")

// Table is a wide tabular input: one header row and the data rows under it.
// Rows are padded to the header width on read.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// MalformedTableError reports an input whose shape the pipeline cannot use.
// Ingestion fails fast with it; no partial result is produced.
type MalformedTableError struct {
	File   string
	Reason string
}

func (e *MalformedTableError) Error() string {
	return fmt.Sprintf("malformed table %s: %s", e.File, e.Reason)
}

// Options controls CSV reading.
type Options struct {
	// Delimiter for CSV. If 0, sniffed among ',', ';', '\t'.
	Delimiter rune
	// SheetName selects an XLSX sheet by name; SheetIndex (1-based) is the
	// fallback, defaulting to the first sheet.
	SheetName  string
	SheetIndex int
}

// ReadFile dispatches on extension: .xlsx goes to the workbook reader,
// everything else is treated as delimited text.
func ReadFile(path string, opt Options) (*Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ReadXLSX(path, opt.SheetName, opt.SheetIndex)
	}
	return ReadCSV(path, opt)
}

// DedupHeader renames duplicate column names deterministically by suffixing
// the occurrence count: "station", "station_2", "station_3".
func (t *Table) DedupHeader() {
	seen := make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		key := strings.TrimSpace(h)
		seen[key]++
		if seen[key] > 1 {
			t.Header[i] = fmt.Sprintf("%s_%d", key, seen[key])
		} else {
			t.Header[i] = key
		}
	}
}

// DropEmpty removes fully empty rows and fully empty columns. Retained
// cells keep their relative order and values; only the empty slices go.
func (t *Table) DropEmpty() {
	keepRows := t.Rows[:0]
	for _, row := range t.Rows {
		empty := true
		for _, c := range row {
			if strings.TrimSpace(c) != "" {
				empty = false
				break
			}
		}
		if !empty {
			keepRows = append(keepRows, row)
		}
	}
	t.Rows = keepRows

	keepCols := make([]int, 0, len(t.Header))
	for j := range t.Header {
		if strings.TrimSpace(t.Header[j]) != "" {
			keepCols = append(keepCols, j)
			continue
		}
		empty := true
		for _, row := range t.Rows {
			if j < len(row) && strings.TrimSpace(row[j]) != "" {
				empty = false
				break
			}
		}
		if !empty {
			keepCols = append(keepCols, j)
		}
	}
	if len(keepCols) == len(t.Header) {
		return
	}
	header := make([]string, 0, len(keepCols))
	for _, j := range keepCols {
		header = append(header, t.Header[j])
	}
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		nr := make([]string, 0, len(keepCols))
		for _, j := range keepCols {
			if j < len(row) {
				nr = append(nr, row[j])
			} else {
				nr = append(nr, "")
			}
		}
		rows[i] = nr
	}
	t.Header = header
	t.Rows = rows
}
