package grants

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"
)

// MemStore is an in-memory Store. It backs dry-run imports and tests.
//
// Transactions are serialized; WithTx snapshots the state and restores it
// when fn fails, which gives the same all-or-nothing behaviour as Postgres.
type MemStore struct {
	mu sync.Mutex

	grants  []Grant
	items   []GrantItem
	imports []ImportRecord

	nextGrantID int64
	nextItemID  int64

	insertCalls int
	failInsert  map[int]error
}

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{nextGrantID: 1, nextItemID: 1}
}

// FailBulkInsert makes the n-th BulkInsertItems call (1-based, counted over
// the life of the store) return err.
func (s *MemStore) FailBulkInsert(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInsert == nil {
		s.failInsert = make(map[int]error)
	}
	s.failInsert[n] = err
}

type memSnapshot struct {
	grants, items, imports  int
	nextGrantID, nextItemID int64
}

func (s *MemStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	// Transactions only append, so truncating restores the prior state.
	snap := memSnapshot{
		grants:      len(s.grants),
		items:       len(s.items),
		imports:     len(s.imports),
		nextGrantID: s.nextGrantID,
		nextItemID:  s.nextItemID,
	}

	if err := fn(&memTx{s: s}); err != nil {
		s.grants = s.grants[:snap.grants]
		s.items = s.items[:snap.items]
		s.imports = s.imports[:snap.imports]
		s.nextGrantID = snap.nextGrantID
		s.nextItemID = snap.nextItemID
		return err
	}
	return nil
}

func (s *MemStore) ListGrants(ctx context.Context, filter GrantFilter) ([]GrantWithItems, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []GrantWithItems
	for _, g := range s.grants {
		if filter.GrantID != 0 && g.ID != filter.GrantID {
			continue
		}
		items := s.itemsOf(g.ID)
		if len(items) == 0 {
			continue
		}
		out = append(out, GrantWithItems{Grant: g, Items: items})
	}
	return out, nil
}

func (s *MemStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// ItemCount returns the number of stored items across all grants.
func (s *MemStore) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Grants returns a copy of the stored grants in creation order.
func (s *MemStore) Grants() []Grant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.grants)
}

// Imports returns a copy of the recorded import history.
func (s *MemStore) Imports() []ImportRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.imports)
}

func (s *MemStore) itemsOf(grantID int64) []GrantItem {
	var items []GrantItem
	for _, it := range s.items {
		if it.GrantID == grantID {
			items = append(items, it)
		}
	}
	slices.SortStableFunc(items, func(a, b GrantItem) int {
		switch {
		case a.LineNumber < b.LineNumber:
			return -1
		case a.LineNumber > b.LineNumber:
			return 1
		}
		return 0
	})
	return items
}

// memTx runs with MemStore.mu held by WithTx.
type memTx struct {
	s *MemStore
}

func (t *memTx) FindOrCreateGrant(ctx context.Context, code, name, actor string) (Grant, bool, error) {
	if err := ctx.Err(); err != nil {
		return Grant{}, false, err
	}
	for _, g := range t.s.grants {
		if g.Code == code {
			return g, false, nil
		}
	}
	g := Grant{
		ID:        t.s.nextGrantID,
		Code:      code,
		Name:      name,
		CreatedBy: actor,
		UpdatedBy: actor,
		CreatedAt: time.Now().UTC(),
	}
	t.s.nextGrantID++
	t.s.grants = append(t.s.grants, g)
	return g, true, nil
}

func (t *memTx) ItemExists(ctx context.Context, grantID int64, line float64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	for _, it := range t.s.items {
		if it.GrantID == grantID && it.LineNumber == line {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) BulkInsertItems(ctx context.Context, items []GrantItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	t.s.insertCalls++
	if err := t.s.failInsert[t.s.insertCalls]; err != nil {
		return 0, err
	}

	for _, it := range items {
		if it.GrantID == 0 {
			return 0, errors.New("grant item without grant id")
		}
		it.ID = t.s.nextItemID
		t.s.nextItemID++
		t.s.items = append(t.s.items, it)
	}
	return len(items), nil
}

func (t *memTx) RecordImport(ctx context.Context, rec ImportRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	t.s.imports = append(t.s.imports, rec)
	return nil
}
