package grants

import (
	"context"
	"testing"

	"github.com/JonMunkholm/grantsheet/internal/workbook"
)

func TestDuplicateGuard(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	err := store.WithTx(ctx, func(tx Tx) error {
		g, created, err := tx.FindOrCreateGrant(ctx, "RG-1", "Research", "alice")
		if err != nil || !created {
			t.Fatalf("FindOrCreateGrant() = %v, %v", created, err)
		}
		if _, err := tx.BulkInsertItems(ctx, []GrantItem{{GrantID: g.ID, LineNumber: 1}}); err != nil {
			t.Fatal(err)
		}

		guard := NewDuplicateGuard(tx, g.ID)
		steps := []struct {
			line float64
			want bool
		}{
			{1, false}, // already stored
			{2, true},
			{2, false}, // seen earlier in this batch
			{3, true},
		}
		for _, s := range steps {
			got, err := guard.Admit(ctx, s.line)
			if err != nil {
				t.Fatal(err)
			}
			if got != s.want {
				t.Errorf("Admit(%v) = %v, want %v", s.line, got, s.want)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestMemStore_FindOrCreateGrant(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	err := store.WithTx(ctx, func(tx Tx) error {
		first, created, _ := tx.FindOrCreateGrant(ctx, "RG-1", "Research", "alice")
		if !created {
			t.Error("first call should create")
		}
		again, created, _ := tx.FindOrCreateGrant(ctx, "RG-1", "Renamed", "bob")
		if created {
			t.Error("second call should find")
		}
		if again.ID != first.ID || again.Name != "Research" || again.CreatedBy != "alice" {
			t.Errorf("found grant = %+v, want original %+v", again, first)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestMemStore_BulkInsertEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	_ = store.WithTx(ctx, func(tx Tx) error {
		n, err := tx.BulkInsertItems(ctx, nil)
		if n != 0 || err != nil {
			t.Errorf("BulkInsertItems(nil) = %d, %v", n, err)
		}
		return nil
	})
}

func TestMemStore_ListGrantsFilter(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	_, err := NewImporter(store).Import(ctx, ImportRequest{Sheets: []workbook.Sheet{
		grantSheet("A", "Alpha", "A-1", itemRow("2", "$2"), itemRow("1", "$1")),
		grantSheet("B", "Beta", "B-1", itemRow("1", "$1")),
	}})
	if err != nil {
		t.Fatal(err)
	}

	all, _ := store.ListGrants(ctx, GrantFilter{})
	if len(all) != 2 {
		t.Fatalf("ListGrants() = %d grants, want 2", len(all))
	}
	if all[0].Items[0].LineNumber != 1 || all[0].Items[1].LineNumber != 2 {
		t.Errorf("items not ordered by line: %+v", all[0].Items)
	}

	one, _ := store.ListGrants(ctx, GrantFilter{GrantID: all[1].ID})
	if len(one) != 1 || one[0].Code != "B-1" {
		t.Errorf("filtered = %+v, want B-1", one)
	}

	none, _ := store.ListGrants(ctx, GrantFilter{GrantID: 999})
	if len(none) != 0 {
		t.Errorf("unknown id returned %d grants", len(none))
	}
}
