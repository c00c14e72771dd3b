// Package grants provides the business logic for grant workbook imports.
//
// The package has no transport dependencies; web handlers, the CLI and tests
// all drive it through [Service] or [Importer] directly.
//
// # Workbook Layout
//
// Every sheet of an uploaded workbook describes one grant:
//
//	row 2, column A   "Grant name - <name>"
//	row 3, column A   "Grant code - <code>"
//	row 5 onward      item table, columns A..J:
//	                  BG line, position, salary, benefit, level of effort %,
//	                  position number, monthly cost, total amount,
//	                  total cost per person, position reference id
//
// Rows whose column A is not numeric (blank rows, subtotals, footers) are
// ignored without a warning.
//
// # Transactions
//
// [Importer.Import] runs the whole file inside one [Store.WithTx] scope.
// Per-sheet processing returns a [SheetResult] tagged as processed, skip or
// fault. Skips only add warnings; a fault aborts the loop and the store rolls
// back every grant and item written for the file.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - DB001-DB007: Database errors (duplicates, constraints, connections)
//   - FILE001-FILE004: File errors (size, format, unreadable)
//   - IMP001-IMP003: Import errors (busy, cancelled, timeout)
package grants
