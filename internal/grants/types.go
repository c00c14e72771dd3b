package grants

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/grantsheet/internal/workbook"
)

// DefaultActor is recorded as created_by when no actor is supplied.
const DefaultActor = "system"

// Grant is a funding record identified by its business code.
type Grant struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by,omitempty"`
	UpdatedBy string    `json:"updated_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// GrantItem is one budget line ("BG line") of a grant.
// Optional cells are nil when the sheet left them empty. Money fields marshal
// as decimal strings.
type GrantItem struct {
	ID                  int64            `json:"id"`
	GrantID             int64            `json:"grant_id"`
	LineNumber          float64          `json:"bg_line"`
	PositionLabel       *string          `json:"grant_position"`
	Salary              *decimal.Decimal `json:"grant_salary"`
	Benefit             *decimal.Decimal `json:"grant_benefit"`
	LevelOfEffort       *string          `json:"grant_level_of_effort"`
	PositionNumber      *string          `json:"grant_position_number"`
	MonthlyCost         *decimal.Decimal `json:"grant_cost_by_monthly"`
	TotalAmount         *decimal.Decimal `json:"grant_total_amount"`
	TotalCostPerPerson  *decimal.Decimal `json:"grant_total_cost_by_person"`
	PositionReferenceID *int64           `json:"position_id"`
	CreatedBy           string           `json:"created_by,omitempty"`
	UpdatedBy           string           `json:"updated_by,omitempty"`
}

// GrantWithItems is a grant together with its budget lines.
type GrantWithItems struct {
	Grant
	Items []GrantItem `json:"grant_items"`
}

// GrantFilter narrows ListGrants. A zero GrantID lists every grant.
type GrantFilter struct {
	GrantID int64
}

// ImportRequest is one uploaded file to import.
type ImportRequest struct {
	FileName string
	Actor    string
	Sheets   []workbook.Sheet
}

// ImportRecord is the history row written for every committed import.
type ImportRecord struct {
	ID              string
	FileName        string
	Actor           string
	ProcessedGrants int
	InsertedItems   int
	WarningCount    int
	CreatedAt       time.Time
}

// ImportResult summarizes a committed import.
type ImportResult struct {
	ImportID        string        `json:"import_id"`
	ProcessedGrants int           `json:"processed_grants"`
	InsertedItems   int           `json:"inserted_items"`
	Warnings        []string      `json:"warnings,omitempty"`
	Sheets          []SheetReport `json:"sheets"`
	Duration        time.Duration `json:"-"`
}

// SheetReport is the per-sheet outcome included in an ImportResult.
type SheetReport struct {
	Sheet     string     `json:"sheet"`
	State     SheetState `json:"state"`
	GrantCode string     `json:"grant_code,omitempty"`
	Inserted  int        `json:"inserted"`
}
