package grants

import (
	"strings"

	"github.com/JonMunkholm/grantsheet/internal/workbook"
)

const (
	grantNameLabel = "Grant name -"
	grantCodeLabel = "Grant code -"

	grantNameRow = 1 // row 2
	grantCodeRow = 2 // row 3
	headerCol    = 0 // column A
)

// SheetHeader is the grant identity read from a sheet's fixed header cells.
type SheetHeader struct {
	Code string
	Name string
}

// ExtractHeader reads the grant name (row 2, column A) and code (row 3,
// column A), stripping their literal labels. A blank code or name is a skip
// for the whole sheet; the code is checked first.
func ExtractHeader(sheet workbook.Sheet) (SheetHeader, *Skip) {
	h := SheetHeader{
		Name: stripLabel(sheet.Cell(grantNameRow, headerCol), grantNameLabel),
		Code: stripLabel(sheet.Cell(grantCodeRow, headerCol), grantCodeLabel),
	}

	if h.Code == "" {
		return h, skipf(StateSkippedHeaderInvalid, "Sheet '%s': Missing grant code", sheet.Name)
	}
	if h.Name == "" {
		return h, skipf(StateSkippedHeaderInvalid, "Sheet '%s': Missing grant name", sheet.Name)
	}
	return h, nil
}

func stripLabel(cell, label string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(cell), label))
}
