package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/grantsheet/internal/grants"
)

// Store implements grants.Store on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

var _ grants.Store = (*Store)(nil)

// NewStore wraps pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// WithTx runs fn in a read-committed transaction. pgx.BeginFunc commits when
// fn returns nil and rolls back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(tx grants.Tx) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&txStore{tx: tx})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) ListGrants(ctx context.Context, filter grants.GrantFilter) ([]grants.GrantWithItems, error) {
	rows, err := s.pool.Query(ctx, listGrantsSQL, filter.GrantID)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (grants.GrantWithItems, error) {
		var g grants.GrantWithItems
		err := row.Scan(&g.ID, &g.Code, &g.Name, &g.CreatedBy, &g.UpdatedBy, &g.CreatedAt)
		return g, err
	})
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	if len(list) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(list))
	index := make(map[int64]int, len(list))
	for i, g := range list {
		ids[i] = g.ID
		index[g.ID] = i
	}

	rows, err = s.pool.Query(ctx, listItemsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("list grant items: %w", err)
	}
	items, err := pgx.CollectRows(rows, scanItem)
	if err != nil {
		return nil, fmt.Errorf("list grant items: %w", err)
	}
	for _, it := range items {
		i := index[it.GrantID]
		list[i].Items = append(list[i].Items, it)
	}
	return list, nil
}

func scanItem(row pgx.CollectableRow) (grants.GrantItem, error) {
	var (
		it                                         grants.GrantItem
		salary, benefit, monthly, total, perPerson *float64
	)
	err := row.Scan(
		&it.ID, &it.GrantID, &it.LineNumber, &it.PositionLabel, &salary, &benefit,
		&it.LevelOfEffort, &it.PositionNumber, &monthly,
		&total, &perPerson, &it.PositionReferenceID,
		&it.CreatedBy, &it.UpdatedBy,
	)
	it.Salary = fromFloat8(salary)
	it.Benefit = fromFloat8(benefit)
	it.MonthlyCost = fromFloat8(monthly)
	it.TotalAmount = fromFloat8(total)
	it.TotalCostPerPerson = fromFloat8(perPerson)
	return it, err
}

// The money columns are DOUBLE PRECISION; amounts become floats only here.
func float8(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}

func fromFloat8(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}

// txStore implements grants.Tx on one pgx transaction.
type txStore struct {
	tx pgx.Tx
}

// FindOrCreateGrant inserts with ON CONFLICT DO NOTHING so a concurrent
// import of the same code cannot create a second row. When the competing
// transaction commits while this statement waits on it, the statement's
// snapshot sees neither row; the follow-up select then finds the winner.
func (t *txStore) FindOrCreateGrant(ctx context.Context, code, name, actor string) (grants.Grant, bool, error) {
	g, created, err := t.scanGrant(ctx, findOrCreateGrantSQL, code, name, actor)
	if errors.Is(err, pgx.ErrNoRows) {
		g, created, err = t.scanGrant(ctx, selectGrantByCodeSQL, code)
	}
	if err != nil {
		return grants.Grant{}, false, err
	}
	return g, created, nil
}

func (t *txStore) scanGrant(ctx context.Context, sql string, args ...any) (grants.Grant, bool, error) {
	var (
		g       grants.Grant
		created bool
	)
	err := t.tx.QueryRow(ctx, sql, args...).Scan(&g.ID, &g.Code, &g.Name, &g.CreatedBy, &g.UpdatedBy, &g.CreatedAt, &created)
	return g, created, err
}

func (t *txStore) ItemExists(ctx context.Context, grantID int64, line float64) (bool, error) {
	var exists bool
	if err := t.tx.QueryRow(ctx, itemExistsSQL, grantID, line).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// BulkInsertItems uses the COPY protocol; one round trip per sheet.
func (t *txStore) BulkInsertItems(ctx context.Context, items []grants.GrantItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	n, err := t.tx.CopyFrom(ctx,
		pgx.Identifier{"grant_items"},
		grantItemColumns,
		pgx.CopyFromSlice(len(items), func(i int) ([]any, error) {
			it := items[i]
			return []any{
				it.GrantID, it.LineNumber, it.PositionLabel, float8(it.Salary), float8(it.Benefit),
				it.LevelOfEffort, it.PositionNumber, float8(it.MonthlyCost),
				float8(it.TotalAmount), float8(it.TotalCostPerPerson), it.PositionReferenceID,
				it.CreatedBy, it.UpdatedBy,
			}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy grant items: %w", err)
	}
	return int(n), nil
}

func (t *txStore) RecordImport(ctx context.Context, rec grants.ImportRecord) error {
	_, err := t.tx.Exec(ctx, insertImportSQL,
		rec.ID, rec.FileName, rec.Actor, rec.ProcessedGrants, rec.InsertedItems, rec.WarningCount)
	if err != nil {
		return fmt.Errorf("record import: %w", err)
	}
	return nil
}
