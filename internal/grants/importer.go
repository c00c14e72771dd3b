package grants

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/grantsheet/internal/logging"
	"github.com/JonMunkholm/grantsheet/internal/workbook"
)

// MinSheetRows is the fewest rows a sheet needs to be considered: the
// header block plus at least one item row.
const MinSheetRows = 5

// Importer turns parsed workbooks into grants and items.
type Importer struct {
	store Store
}

// NewImporter creates an Importer over store.
func NewImporter(store Store) *Importer {
	return &Importer{store: store}
}

// Import processes every sheet of req inside one transaction.
//
// Validation problems are collected as warnings and never abort the import.
// Any storage error aborts it: nothing from the file is kept and the error is
// returned with an empty result. A blank actor is recorded as DefaultActor.
func (im *Importer) Import(ctx context.Context, req ImportRequest) (ImportResult, error) {
	actor := strings.TrimSpace(req.Actor)
	if actor == "" {
		actor = DefaultActor
	}

	importID := uuid.New().String()
	start := time.Now()
	logger := logging.WithFields(ctx, "import_id", importID, "file", req.FileName, "actor", actor)
	logger.Info("import started", "sheets", len(req.Sheets))

	var result ImportResult
	err := im.store.WithTx(ctx, func(tx Tx) error {
		result = ImportResult{ImportID: importID}

		for _, sheet := range req.Sheets {
			if err := ctx.Err(); err != nil {
				return err
			}

			r := im.processSheet(ctx, tx, sheet, actor)
			if r.Kind == KindFault {
				return fmt.Errorf("sheet %q: %w", sheet.Name, r.Cause)
			}

			logger.Debug("sheet done",
				"sheet", sheet.Name,
				"kind", r.Kind.String(),
				"state", string(r.State),
				"grant_code", r.GrantCode,
				"inserted", r.Inserted,
			)

			if r.CountsAsProcessed() {
				result.ProcessedGrants++
			}
			result.InsertedItems += r.Inserted
			result.Warnings = append(result.Warnings, r.Warnings...)
			result.Sheets = append(result.Sheets, SheetReport{
				Sheet:     sheet.Name,
				State:     r.State,
				GrantCode: r.GrantCode,
				Inserted:  r.Inserted,
			})
		}

		return tx.RecordImport(ctx, ImportRecord{
			ID:              importID,
			FileName:        req.FileName,
			Actor:           actor,
			ProcessedGrants: result.ProcessedGrants,
			InsertedItems:   result.InsertedItems,
			WarningCount:    len(result.Warnings),
		})
	})
	if err != nil {
		logger.Error("import rolled back", "error", err, "duration", time.Since(start))
		return ImportResult{}, err
	}

	result.Duration = time.Since(start)
	logger.Info("import completed",
		"processed_grants", result.ProcessedGrants,
		"inserted_items", result.InsertedItems,
		"warnings", len(result.Warnings),
		"duration", result.Duration,
	)
	return result, nil
}

// processSheet never returns an error directly: storage failures come back
// as a KindFault result so the caller decides to unwind.
func (im *Importer) processSheet(ctx context.Context, tx Tx, sheet workbook.Sheet, actor string) SheetResult {
	if len(sheet.Rows) < MinSheetRows {
		return skipped(skipf(StateSkippedTooFewRows,
			"Sheet '%s' skipped: Insufficient data rows (minimum %d required)", sheet.Name, MinSheetRows), "")
	}

	header, skip := ExtractHeader(sheet)
	if skip != nil {
		return skipped(skip, header.Code)
	}

	grant, created, err := tx.FindOrCreateGrant(ctx, header.Code, header.Name, actor)
	if err != nil {
		return faulted(fmt.Errorf("find or create grant %q: %w", header.Code, err))
	}
	if !created {
		return skipped(skipf(StateSkippedGrantExists,
			"Sheet '%s': Grant '%s' already exists - items skipped", sheet.Name, header.Code), header.Code)
	}

	guard := NewDuplicateGuard(tx, grant.ID)
	var (
		batch    []GrantItem
		warnings []string
	)
	for _, row := range ItemRows(sheet) {
		item, rowWarnings, ok := ValidateItemRow(sheet.Name, row)
		if !ok {
			continue
		}

		admitted, err := guard.Admit(ctx, item.LineNumber)
		if err != nil {
			return faulted(err)
		}
		if !admitted {
			warnings = append(warnings, fmt.Sprintf("Sheet '%s': Duplicate item (BG Line: %s) skipped", sheet.Name, row.LineNumber))
			continue
		}

		item.GrantID = grant.ID
		item.CreatedBy = actor
		item.UpdatedBy = actor
		batch = append(batch, item)
		warnings = append(warnings, rowWarnings...)
	}

	inserted, err := tx.BulkInsertItems(ctx, batch)
	if err != nil {
		return faulted(fmt.Errorf("insert items for grant %q: %w", header.Code, err))
	}

	return SheetResult{
		Kind:      KindProcessed,
		State:     StateProcessed,
		GrantCode: header.Code,
		Inserted:  inserted,
		Created:   true,
		Warnings:  warnings,
	}
}
