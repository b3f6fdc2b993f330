// Package ledger implements the plant's inventory and costing transactions:
// purchases into the raw-material ledger, production batches, order dispatch
// and manual yard adjustments. Every mutating call runs in one Store transaction.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Recorder observes finished ledger operations.
type Recorder interface {
	ObserveTx(op string, err error, d time.Duration)
	SetLowStock(n int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveTx(string, error, time.Duration) {}
func (nopRecorder) SetLowStock(int)                        {}

type Engine struct {
	store Store
	log   *slog.Logger
	rec   Recorder
	now   func() time.Time
	loc   *time.Location

	windowDays      int
	recentMovements int
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.log = l } }

func WithRecorder(r Recorder) Option { return func(e *Engine) { e.rec = r } }

// WithClock replaces time.Now, used for movement timestamps and codes.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// WithLocation sets the zone in which document codes roll over to a new day.
func WithLocation(loc *time.Location) Option { return func(e *Engine) { e.loc = loc } }

// WithDashboard sets the trailing window and the number of recent movements.
func WithDashboard(windowDays, recentMovements int) Option {
	return func(e *Engine) {
		if windowDays > 0 {
			e.windowDays = windowDays
		}
		if recentMovements > 0 {
			e.recentMovements = recentMovements
		}
	}
}

func New(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:           store,
		log:             slog.Default(),
		rec:             nopRecorder{},
		now:             time.Now,
		loc:             time.UTC,
		windowDays:      30,
		recentMovements: 5,
	}
	for _, o := range opts {
		o(e)
	}
	e.log = e.log.With("component", "ledger")
	return e
}

// run executes fn in one transaction and classifies its error.
func (e *Engine) run(ctx context.Context, op string, fn func(Repos) error) error {
	start := time.Now()
	err := classify(op, e.store.InTx(ctx, fn))
	e.rec.ObserveTx(op, err, time.Since(start))

	switch {
	case err == nil:
		e.log.Debug("tx committed", "op", op)
	case errors.Is(err, ErrStorage):
		e.log.Error("tx failed", "op", op, "err", err)
	default:
		e.log.Info("tx rejected", "op", op, "err", err)
	}
	return err
}

// view runs a read without a transaction.
func (e *Engine) view(op string, fn func(Repos) error) error {
	err := classify(op, fn(e.store))
	if errors.Is(err, ErrStorage) {
		e.log.Error("read failed", "op", op, "err", err)
	}
	return err
}
