package grants

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/grantsheet/internal/workbook"
)

// firstItemRow is the zero-based index of the first item row (row 5).
// Rows above it are header and metadata.
const firstItemRow = 4

// Item table columns. This is the only place that knows the positional
// layout of the item table.
const (
	colLineNumber = iota // A
	colPosition          // B
	colSalary            // C
	colBenefit           // D
	colLevelOfEffort     // E
	colPositionNumber    // F
	colMonthlyCost       // G
	colTotalAmount       // H
	colTotalPerPerson    // I
	colPositionRef       // J
)

// ItemRow is one raw item row with its cells named.
type ItemRow struct {
	Index              int // zero-based row index in the sheet
	LineNumber         string
	Position           string
	Salary             string
	Benefit            string
	LevelOfEffort      string
	PositionNumber     string
	MonthlyCost        string
	TotalAmount        string
	TotalCostPerPerson string
	PositionReference  string
}

// DecodeItemRow names the cells of the row at index i.
func DecodeItemRow(sheet workbook.Sheet, i int) ItemRow {
	return ItemRow{
		Index:              i,
		LineNumber:         sheet.Cell(i, colLineNumber),
		Position:           sheet.Cell(i, colPosition),
		Salary:             sheet.Cell(i, colSalary),
		Benefit:            sheet.Cell(i, colBenefit),
		LevelOfEffort:      sheet.Cell(i, colLevelOfEffort),
		PositionNumber:     sheet.Cell(i, colPositionNumber),
		MonthlyCost:        sheet.Cell(i, colMonthlyCost),
		TotalAmount:        sheet.Cell(i, colTotalAmount),
		TotalCostPerPerson: sheet.Cell(i, colTotalPerPerson),
		PositionReference:  sheet.Cell(i, colPositionRef),
	}
}

// ItemRows decodes every candidate item row of a sheet.
func ItemRows(sheet workbook.Sheet) []ItemRow {
	if len(sheet.Rows) <= firstItemRow {
		return nil
	}
	rows := make([]ItemRow, 0, len(sheet.Rows)-firstItemRow)
	for i := firstItemRow; i < len(sheet.Rows); i++ {
		rows = append(rows, DecodeItemRow(sheet, i))
	}
	return rows
}

// ValidateItemRow turns a decoded row into a GrantItem.
//
// ok is false when column A is not numeric; such rows are blank lines,
// subtotals or footers and are dropped without a warning. warnings lists
// cells that were present but could not be coerced; the item is still
// returned with those cells stored as zero (money) or nil (reference).
func ValidateItemRow(sheetName string, row ItemRow) (item GrantItem, warnings []string, ok bool) {
	line, ok := ParseLineNumber(row.LineNumber)
	if !ok {
		return GrantItem{}, nil, false
	}

	item = GrantItem{
		LineNumber:     line,
		PositionLabel:  ToText(row.Position),
		LevelOfEffort:  ToPercentage(row.LevelOfEffort),
		PositionNumber: ToText(row.PositionNumber),
	}

	money := []struct {
		field string
		raw   string
		dst   **decimal.Decimal
	}{
		{"salary", row.Salary, &item.Salary},
		{"benefit", row.Benefit, &item.Benefit},
		{"monthly cost", row.MonthlyCost, &item.MonthlyCost},
		{"total amount", row.TotalAmount, &item.TotalAmount},
		{"total cost per person", row.TotalCostPerPerson, &item.TotalCostPerPerson},
	}
	for _, m := range money {
		v, parsed := ToMonetary(m.raw)
		*m.dst = v
		if !parsed {
			warnings = append(warnings, fmt.Sprintf(
				"Sheet '%s': BG Line %s column %s value %q is not numeric, stored as 0",
				sheetName, row.LineNumber, m.field, m.raw))
		}
	}

	ref, parsed := ToIdentifier(row.PositionReference)
	item.PositionReferenceID = ref
	if !parsed {
		warnings = append(warnings, fmt.Sprintf(
			"Sheet '%s': BG Line %s position reference %q is not an id, ignored",
			sheetName, row.LineNumber, row.PositionReference))
	}

	return item, warnings, true
}
