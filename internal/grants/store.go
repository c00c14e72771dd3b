package grants

import (
	"context"
	"fmt"
)

// Store is the persistence boundary for grants.
type Store interface {
	// WithTx runs fn inside one transaction. The transaction commits when fn
	// returns nil and rolls back otherwise; fn's error is returned unchanged
	// (wrapped only when commit or rollback itself fails).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// ListGrants returns grants that have at least one item, ordered by id,
	// each with its items ordered by line number.
	ListGrants(ctx context.Context, filter GrantFilter) ([]GrantWithItems, error)

	// Ping checks connectivity.
	Ping(ctx context.Context) error
}

// Tx is the set of writes available inside Store.WithTx.
type Tx interface {
	// FindOrCreateGrant returns the grant with the given code, creating it
	// with name and actor if absent. created reports which happened. It is
	// atomic with respect to concurrent transactions inserting the same code.
	FindOrCreateGrant(ctx context.Context, code, name, actor string) (g Grant, created bool, err error)

	// ItemExists reports whether grantID already has an item with line.
	ItemExists(ctx context.Context, grantID int64, line float64) (bool, error)

	// BulkInsertItems inserts items and returns how many were written.
	// An empty slice is a no-op.
	BulkInsertItems(ctx context.Context, items []GrantItem) (int, error)

	// RecordImport writes the import history row.
	RecordImport(ctx context.Context, rec ImportRecord) error
}

// DuplicateGuard answers "is this line already present for the grant",
// covering both rows already stored and rows accepted earlier in the
// current sheet.
type DuplicateGuard struct {
	tx      Tx
	grantID int64
	seen    map[float64]bool
}

// NewDuplicateGuard returns a guard for one grant within tx.
func NewDuplicateGuard(tx Tx, grantID int64) *DuplicateGuard {
	return &DuplicateGuard{tx: tx, grantID: grantID, seen: make(map[float64]bool)}
}

// Admit reports whether line may be inserted and, if so, remembers it.
func (g *DuplicateGuard) Admit(ctx context.Context, line float64) (bool, error) {
	if g.seen[line] {
		return false, nil
	}
	exists, err := g.tx.ItemExists(ctx, g.grantID, line)
	if err != nil {
		return false, fmt.Errorf("check item %s of grant %d: %w", FormatLineNumber(line), g.grantID, err)
	}
	if exists {
		return false, nil
	}
	g.seen[line] = true
	return true, nil
}
