package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Spok95/block-plant/internal/domain/yard"
)

type AdjustmentInput struct {
	BlockTypeID int64
	Delta       int64
	Reason      string
}

// AdjustYardStock applies a signed manual correction (breakage, recount) to the yard.
// A block type without a yard row counts as holding zero: a positive delta creates
// the row at delta and a negative one is rejected with ErrNegativeStock, so the
// movement log always sums to the stored quantity.
func (e *Engine) AdjustYardStock(ctx context.Context, in AdjustmentInput) (*yard.Movement, error) {
	reason := strings.TrimSpace(in.Reason)
	if in.Delta == 0 {
		return nil, validation("adjustment delta must not be zero")
	}
	if reason == "" {
		return nil, validation("adjustment reason is required")
	}

	var mv yard.Movement
	err := e.run(ctx, "adjust_yard", func(r Repos) error {
		bt, err := r.Catalog().GetBlockType(ctx, in.BlockTypeID)
		if err != nil {
			return err
		}
		if bt == nil {
			return notFound("block type", in.BlockTypeID)
		}
		s, err := r.Yard().GetForUpdate(ctx, bt.ID)
		if err != nil {
			return err
		}
		var cur int64
		if s != nil {
			cur = s.CurrentQuantity
		}
		if cur+in.Delta < 0 {
			return fmt.Errorf("%w: %s has %d, delta %d", ErrNegativeStock, bt.Name, cur, in.Delta)
		}

		if in.Delta > 0 {
			if _, err := r.Yard().Credit(ctx, bt.ID, in.Delta); err != nil {
				return err
			}
		} else {
			ok, err := r.Yard().Debit(ctx, bt.ID, -in.Delta)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", ErrNegativeStock, bt.Name)
			}
		}

		at := e.now()
		mv = yard.Movement{
			BlockTypeID:   bt.ID,
			BlockTypeName: bt.Name,
			Type:          yard.MoveAdjustment,
			Quantity:      in.Delta,
			Reference:     adjustRef(at, reason),
			CreatedAt:     at,
		}
		return r.Yard().AppendMovement(ctx, &mv)
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("yard adjusted", "block_type", mv.BlockTypeName, "delta", mv.Quantity, "ref", mv.Reference)
	return &mv, nil
}

// ListMovements returns the newest movements first. blockTypeID 0 lists all block types.
func (e *Engine) ListMovements(ctx context.Context, blockTypeID int64, limit int) ([]yard.Movement, error) {
	var out []yard.Movement
	err := e.view("list_movements", func(r Repos) error {
		var err error
		out, err = r.Yard().ListMovements(ctx, blockTypeID, limitOr(limit, 100))
		return err
	})
	return out, err
}

func (e *Engine) YardStock(ctx context.Context) ([]yard.Stock, error) {
	var out []yard.Stock
	err := e.view("yard_stock", func(r Repos) error {
		var err error
		out, err = r.Yard().List(ctx)
		return err
	})
	return out, err
}

// Mismatch is a block type whose yard quantity differs from the sum of its movements.
type Mismatch struct {
	BlockTypeID   int64  `json:"block_type_id"`
	BlockTypeName string `json:"block_type_name"`
	Stock         int64  `json:"stock"`
	Movements     int64  `json:"movements"`
}

// Reconcile compares every yard row with its movement log. An empty result means the books agree.
func (e *Engine) Reconcile(ctx context.Context) ([]Mismatch, error) {
	out := []Mismatch{}
	err := e.view("reconcile", func(r Repos) error {
		stock, err := r.Yard().List(ctx)
		if err != nil {
			return err
		}
		totals, err := r.Yard().MovementTotals(ctx)
		if err != nil {
			return err
		}
		for _, s := range stock {
			if sum := totals[s.BlockTypeID]; sum != s.CurrentQuantity {
				out = append(out, Mismatch{s.BlockTypeID, s.BlockTypeName, s.CurrentQuantity, sum})
			}
			delete(totals, s.BlockTypeID)
		}
		for id, sum := range totals {
			if sum == 0 {
				continue
			}
			name, err := blockTypeName(ctx, r, id)
			if err != nil {
				return err
			}
			out = append(out, Mismatch{BlockTypeID: id, BlockTypeName: name, Movements: sum})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BlockTypeID < out[j].BlockTypeID })
	if len(out) > 0 {
		e.log.Warn("yard out of balance", "block_types", len(out))
	}
	return out, nil
}
