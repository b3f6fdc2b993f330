package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/Spok95/block-plant/internal/domain/catalog"
	"github.com/Spok95/block-plant/internal/domain/dbtx"
	"github.com/Spok95/block-plant/internal/domain/materials"
	"github.com/Spok95/block-plant/internal/domain/production"
	"github.com/Spok95/block-plant/internal/domain/purchases"
	"github.com/Spok95/block-plant/internal/domain/sales"
	"github.com/Spok95/block-plant/internal/domain/workers"
	"github.com/Spok95/block-plant/internal/domain/yard"
	"github.com/Spok95/block-plant/internal/ledger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type repos struct{ db dbtx.DBTX }

func (r repos) Materials() ledger.MaterialRepo { return materials.NewRepo(r.db) }
func (r repos) Catalog() ledger.CatalogRepo    { return catalog.NewRepo(r.db) }
func (r repos) Yard() ledger.YardRepo          { return yard.NewRepo(r.db) }
func (r repos) Batches() ledger.BatchRepo      { return production.NewRepo(r.db) }
func (r repos) Purchases() ledger.PurchaseRepo { return purchases.NewRepo(r.db) }
func (r repos) Sales() ledger.SalesRepo        { return sales.NewRepo(r.db) }
func (r repos) Workers() ledger.WorkerRepo     { return workers.NewRepo(r.db) }
func (r repos) Codes() ledger.CodeRepo         { return codeRepo{r.db} }

// Store is the postgres ledger.Store. Reads go straight to the pool.
type Store struct {
	repos
	pool *pgxpool.Pool
}

var _ ledger.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{repos: repos{db: pool}, pool: pool}
}

func (s *Store) InTx(ctx context.Context, fn func(ledger.Repos) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(repos{db: tx}); err != nil {
		return mapErr(err)
	}
	return mapErr(tx.Commit(ctx))
}

// mapErr turns unique violations into ledger.ErrConflict.
func mapErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ledger.ErrConflict, pgErr.ConstraintName)
	}
	return err
}
