// Package workbook reads uploaded spreadsheet files into plain string grids,
// one Sheet per tab. Supported formats are .xlsx (excelize), legacy .xls
// (extrame/xls) and .csv (single sheet, charset-detected).
package workbook

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for files whose extension is not one of
// SupportedExtensions.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// SupportedExtensions lists the accepted file extensions, lowercase with dot.
var SupportedExtensions = []string{".xlsx", ".xls", ".csv"}

// Sheet is one tab of a workbook. Rows are zero-indexed; cells within a row
// may be fewer than the widest row, so use Cell for bounds-safe access.
type Sheet struct {
	Name string
	Rows [][]string
}

// Cell returns the trimmed value at (row, col), or "" when out of range.
func (s Sheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) {
		return ""
	}
	r := s.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// Supported reports whether filename has an accepted extension.
func Supported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Read picks a parser by file extension and returns every sheet in
// workbook order.
func Read(r io.Reader, filename string) ([]Sheet, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx":
		return readXLSX(r)
	case ".xls":
		return readXLS(r)
	case ".csv":
		name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
		return readCSV(r, name)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filename)
	}
}
