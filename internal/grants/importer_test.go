package grants

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/JonMunkholm/grantsheet/internal/workbook"
)

func runImport(t *testing.T, store Store, sheets ...workbook.Sheet) (ImportResult, error) {
	t.Helper()
	return NewImporter(store).Import(context.Background(), ImportRequest{
		FileName: "grants.xlsx",
		Actor:    "alice",
		Sheets:   sheets,
	})
}

func TestImport_TooFewRows(t *testing.T) {
	store := NewMemStore()
	short := workbook.Sheet{Name: "Short", Rows: [][]string{
		{"title"}, {"Grant name - X"}, {"Grant code - X-1"}, {"header"},
	}}

	res, err := runImport(t, store, short)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	want := []string{"Sheet 'Short' skipped: Insufficient data rows (minimum 5 required)"}
	if !slices.Equal(res.Warnings, want) {
		t.Errorf("Warnings = %q, want %q", res.Warnings, want)
	}
	if res.ProcessedGrants != 0 || len(store.Grants()) != 0 || store.ItemCount() != 0 {
		t.Errorf("expected nothing created, got processed=%d grants=%d items=%d",
			res.ProcessedGrants, len(store.Grants()), store.ItemCount())
	}
	if res.Sheets[0].State != StateSkippedTooFewRows {
		t.Errorf("State = %q", res.Sheets[0].State)
	}
}

func TestImport_EmptyHeader(t *testing.T) {
	tests := []struct {
		name  string
		sheet workbook.Sheet
		want  string
	}{
		{
			name:  "missing code",
			sheet: grantSheet("NoCode", "Research", "", itemRow("1", "$10")),
			want:  "Sheet 'NoCode': Missing grant code",
		},
		{
			name:  "missing name",
			sheet: grantSheet("NoName", "", "RG-9", itemRow("1", "$10")),
			want:  "Sheet 'NoName': Missing grant name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemStore()
			res, err := runImport(t, store, tt.sheet)
			if err != nil {
				t.Fatalf("Import() error = %v", err)
			}
			if !slices.Equal(res.Warnings, []string{tt.want}) {
				t.Errorf("Warnings = %q, want [%q]", res.Warnings, tt.want)
			}
			if len(store.Grants()) != 0 || store.ItemCount() != 0 {
				t.Error("header-invalid sheet must not create anything")
			}
		})
	}
}

func TestImport_NonNumericRowsIgnoredSilently(t *testing.T) {
	store := NewMemStore()
	sheet := grantSheet("S1", "Research", "RG-1",
		itemRow("1", "$10"),
		[]string{"", "", ""},
		itemRow("2", "$20"),
		[]string{"Total", "", "$30"},
		[]string{"Approved by: Finance"},
	)

	res, err := runImport(t, store, sheet)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("Warnings = %q, want none", res.Warnings)
	}
	if res.InsertedItems != 2 || store.ItemCount() != 2 {
		t.Errorf("inserted = %d, stored = %d, want 2", res.InsertedItems, store.ItemCount())
	}
	if res.ProcessedGrants != 1 {
		t.Errorf("ProcessedGrants = %d, want 1", res.ProcessedGrants)
	}
}

func TestImport_TwoSheetsSameCode(t *testing.T) {
	store := NewMemStore()
	first := grantSheet("Sheet1", "Research Grant", "RG-001",
		itemRow("1", "$1,000"),
		itemRow("2", "$2,000"),
		itemRow("3", "$3,000"),
		[]string{"Total", "", "$6,000"},
	)
	second := grantSheet("Sheet2", "Research Grant Copy", "RG-001",
		itemRow("1", "$500"),
		itemRow("2", "$600"),
	)

	res, err := runImport(t, store, first, second)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if res.ProcessedGrants != 1 {
		t.Errorf("ProcessedGrants = %d, want 1", res.ProcessedGrants)
	}
	if store.ItemCount() != 3 {
		t.Errorf("ItemCount = %d, want 3", store.ItemCount())
	}
	want := []string{"Sheet 'Sheet2': Grant 'RG-001' already exists - items skipped"}
	if !slices.Equal(res.Warnings, want) {
		t.Errorf("Warnings = %q, want %q", res.Warnings, want)
	}
	if res.Sheets[1].State != StateSkippedGrantExists || res.Sheets[1].Inserted != 0 {
		t.Errorf("second sheet report = %+v", res.Sheets[1])
	}

	grants := store.Grants()
	if len(grants) != 1 || grants[0].Name != "Research Grant" {
		t.Errorf("grants = %+v", grants)
	}
}

func TestImport_Idempotent(t *testing.T) {
	store := NewMemStore()
	sheets := []workbook.Sheet{
		grantSheet("A", "Alpha", "A-1", itemRow("1", "$1"), itemRow("2", "$2")),
		grantSheet("B", "Beta", "B-1", itemRow("1", "$1")),
	}

	first, err := runImport(t, store, sheets...)
	if err != nil {
		t.Fatalf("first Import() error = %v", err)
	}
	if first.ProcessedGrants != 2 {
		t.Fatalf("first ProcessedGrants = %d, want 2", first.ProcessedGrants)
	}
	itemsAfterFirst := store.ItemCount()

	second, err := runImport(t, store, sheets...)
	if err != nil {
		t.Fatalf("second Import() error = %v", err)
	}
	if second.ProcessedGrants != 0 {
		t.Errorf("second ProcessedGrants = %d, want 0", second.ProcessedGrants)
	}
	want := []string{
		"Sheet 'A': Grant 'A-1' already exists - items skipped",
		"Sheet 'B': Grant 'B-1' already exists - items skipped",
	}
	if !slices.Equal(second.Warnings, want) {
		t.Errorf("second Warnings = %q, want %q", second.Warnings, want)
	}
	if store.ItemCount() != itemsAfterFirst {
		t.Errorf("ItemCount = %d after re-import, want %d", store.ItemCount(), itemsAfterFirst)
	}
	if got := len(store.Imports()); got != 2 {
		t.Errorf("import history rows = %d, want 2", got)
	}
}

func TestImport_FaultRollsBackWholeFile(t *testing.T) {
	store := NewMemStore()

	// A committed grant from an earlier import must survive the failed one.
	if _, err := runImport(t, store, grantSheet("Old", "Old", "OLD-1", itemRow("1", "$1"))); err != nil {
		t.Fatal(err)
	}

	injected := errors.New("connection reset by peer")
	store.FailBulkInsert(3, injected) // second sheet of the next import

	_, err := runImport(t, store,
		grantSheet("A", "Alpha", "A-1", itemRow("1", "$1")),
		grantSheet("B", "Beta", "B-1", itemRow("1", "$1")),
		grantSheet("C", "Gamma", "C-1", itemRow("1", "$1")),
	)
	if !errors.Is(err, injected) {
		t.Fatalf("Import() error = %v, want injected fault", err)
	}

	grants := store.Grants()
	if len(grants) != 1 || grants[0].Code != "OLD-1" {
		t.Errorf("grants after rollback = %+v, want only OLD-1", grants)
	}
	if store.ItemCount() != 1 {
		t.Errorf("ItemCount = %d, want 1", store.ItemCount())
	}
	if len(store.Imports()) != 1 {
		t.Errorf("import history rows = %d, want 1", len(store.Imports()))
	}

	// The codes were released by the rollback, so a clean retry succeeds.
	res, err := runImport(t, store,
		grantSheet("A", "Alpha", "A-1", itemRow("1", "$1")),
		grantSheet("B", "Beta", "B-1", itemRow("1", "$1")),
	)
	if err != nil {
		t.Fatalf("retry Import() error = %v", err)
	}
	if res.ProcessedGrants != 2 {
		t.Errorf("retry ProcessedGrants = %d, want 2", res.ProcessedGrants)
	}
}

func TestImport_DuplicateLineInSheet(t *testing.T) {
	store := NewMemStore()
	sheet := grantSheet("S1", "Research", "RG-1",
		itemRow("1", "$10"),
		itemRow("2", "$20"),
		itemRow("1", "$30"),
	)

	res, err := runImport(t, store, sheet)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	want := []string{"Sheet 'S1': Duplicate item (BG Line: 1) skipped"}
	if !slices.Equal(res.Warnings, want) {
		t.Errorf("Warnings = %q, want %q", res.Warnings, want)
	}
	if res.InsertedItems != 2 {
		t.Errorf("InsertedItems = %d, want 2", res.InsertedItems)
	}

	list, _ := store.ListGrants(context.Background(), GrantFilter{})
	if len(list) != 1 || list[0].Items[0].Salary.String() != "10" {
		t.Errorf("first occurrence should win, got %+v", list)
	}
}

func TestImport_GrantWithoutItemsNotCounted(t *testing.T) {
	store := NewMemStore()
	sheet := grantSheet("Empty", "Empty Grant", "E-1", []string{"Total", "", "$0"})

	res, err := runImport(t, store, sheet)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if res.ProcessedGrants != 0 {
		t.Errorf("ProcessedGrants = %d, want 0", res.ProcessedGrants)
	}
	if res.Sheets[0].State != StateProcessed {
		t.Errorf("State = %q, want %q", res.Sheets[0].State, StateProcessed)
	}
	if len(store.Grants()) != 1 {
		t.Errorf("grant should still be created")
	}

	list, _ := store.ListGrants(context.Background(), GrantFilter{})
	if len(list) != 0 {
		t.Errorf("ListGrants should hide grants without items, got %d", len(list))
	}
}

func TestImport_ActorRecorded(t *testing.T) {
	tests := []struct {
		actor string
		want  string
	}{
		{"bob", "bob"},
		{"  ", DefaultActor},
		{"", DefaultActor},
	}

	for _, tt := range tests {
		store := NewMemStore()
		_, err := NewImporter(store).Import(context.Background(), ImportRequest{
			FileName: "f.xlsx",
			Actor:    tt.actor,
			Sheets:   []workbook.Sheet{grantSheet("S", "N", "C-1", itemRow("1", "$1"))},
		})
		if err != nil {
			t.Fatalf("Import() error = %v", err)
		}

		g := store.Grants()[0]
		if g.CreatedBy != tt.want || g.UpdatedBy != tt.want {
			t.Errorf("actor %q: grant created_by=%q updated_by=%q, want %q", tt.actor, g.CreatedBy, g.UpdatedBy, tt.want)
		}
		list, _ := store.ListGrants(context.Background(), GrantFilter{})
		if it := list[0].Items[0]; it.CreatedBy != tt.want {
			t.Errorf("actor %q: item created_by=%q, want %q", tt.actor, it.CreatedBy, tt.want)
		}
		if rec := store.Imports()[0]; rec.Actor != tt.want {
			t.Errorf("actor %q: import record actor=%q, want %q", tt.actor, rec.Actor, tt.want)
		}
	}
}

func TestImport_RecordsHistory(t *testing.T) {
	store := NewMemStore()
	res, err := runImport(t, store,
		grantSheet("A", "Alpha", "A-1", itemRow("1", "$1"), itemRow("2", "bogus")),
		workbook.Sheet{Name: "Notes"},
	)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	recs := store.Imports()
	if len(recs) != 1 {
		t.Fatalf("import history rows = %d, want 1", len(recs))
	}
	rec := recs[0]
	if rec.ID != res.ImportID || rec.FileName != "grants.xlsx" {
		t.Errorf("record = %+v, result id %q", rec, res.ImportID)
	}
	if rec.ProcessedGrants != 1 || rec.InsertedItems != 2 || rec.WarningCount != 2 {
		t.Errorf("record counts = %+v, want processed 1, inserted 2, warnings 2", rec)
	}
}

func TestImport_CancelledContext(t *testing.T) {
	store := NewMemStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewImporter(store).Import(ctx, ImportRequest{
		Sheets: []workbook.Sheet{grantSheet("S", "N", "C-1", itemRow("1", "$1"))},
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Import() error = %v, want context.Canceled", err)
	}
	if len(store.Grants()) != 0 {
		t.Error("nothing should be stored")
	}
}
