// Package memstore is an in-process ledger.Store. Transactions are serialized
// and a failed one is rolled back by restoring a snapshot.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/Spok95/block-plant/internal/ledger"
)

type Store struct {
	mu  sync.RWMutex
	st  *state
	now func() time.Time
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{st: newState(), now: time.Now}
}

func (s *Store) InTx(ctx context.Context, fn func(ledger.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	committed := false
	defer func() {
		if !committed {
			s.st = snapshot
		}
	}()
	if err := fn(&repos{s: s, tx: s.st}); err != nil {
		return err
	}
	committed = true
	return nil
}

// repos outside a transaction locks per call. Inside one, tx is set and the
// store lock is already held.
type repos struct {
	s  *Store
	tx *state
}

func (r *repos) read() (*state, func()) {
	if r.tx != nil {
		return r.tx, func() {}
	}
	r.s.mu.RLock()
	return r.s.st, r.s.mu.RUnlock
}

func (r *repos) write() (*state, func()) {
	if r.tx != nil {
		return r.tx, func() {}
	}
	r.s.mu.Lock()
	return r.s.st, r.s.mu.Unlock
}

func (s *Store) root() *repos { return &repos{s: s} }

func (s *Store) Materials() ledger.MaterialRepo { return s.root().Materials() }
func (s *Store) Catalog() ledger.CatalogRepo    { return s.root().Catalog() }
func (s *Store) Yard() ledger.YardRepo          { return s.root().Yard() }
func (s *Store) Batches() ledger.BatchRepo      { return s.root().Batches() }
func (s *Store) Purchases() ledger.PurchaseRepo { return s.root().Purchases() }
func (s *Store) Sales() ledger.SalesRepo        { return s.root().Sales() }
func (s *Store) Workers() ledger.WorkerRepo     { return s.root().Workers() }
func (s *Store) Codes() ledger.CodeRepo         { return s.root().Codes() }

func (r *repos) Materials() ledger.MaterialRepo { return materialRepo{r} }
func (r *repos) Catalog() ledger.CatalogRepo    { return catalogRepo{r} }
func (r *repos) Yard() ledger.YardRepo          { return yardRepo{r} }
func (r *repos) Batches() ledger.BatchRepo      { return batchRepo{r} }
func (r *repos) Purchases() ledger.PurchaseRepo { return purchaseRepo{r} }
func (r *repos) Sales() ledger.SalesRepo        { return salesRepo{r} }
func (r *repos) Workers() ledger.WorkerRepo     { return workerRepo{r} }
func (r *repos) Codes() ledger.CodeRepo         { return codeRepo{r} }

type codeRepo struct{ *repos }

func (c codeRepo) Next(_ context.Context, prefix string, day time.Time) (int, error) {
	st, done := c.write()
	defer done()
	key := prefix + "/" + day.Format("20060102")
	st.codes[key]++
	return st.codes[key], nil
}
