package grants

import "github.com/JonMunkholm/grantsheet/internal/workbook"

// grantSheet builds a sheet in the upload layout: a title row, the name and
// code rows, a column header row, then items.
func grantSheet(name, grantName, grantCode string, items ...[]string) workbook.Sheet {
	rows := [][]string{
		{"Budget detail"},
		{"Grant name - " + grantName},
		{"Grant code - " + grantCode},
		{"BG Line", "Position", "Salary", "Benefit", "LOE", "Position #", "Monthly", "Total", "Per person", "Position id"},
	}
	rows = append(rows, items...)
	return workbook.Sheet{Name: name, Rows: rows}
}

func itemRow(line string, salary string) []string {
	return []string{line, "Analyst", salary, "$100", "50%", "P-1", "$1,000", "$12,000", "$12,100", ""}
}
