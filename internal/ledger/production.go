package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Spok95/block-plant/internal/domain/materials"
	"github.com/Spok95/block-plant/internal/domain/production"
	"github.com/Spok95/block-plant/internal/domain/yard"
	"github.com/shopspring/decimal"
)

type ProductionInput struct {
	Date        time.Time
	Shift       production.Shift
	BlockTypeID int64
	CreatedByID int64
	Workers     []production.WorkerOutput
}

func (in ProductionInput) validate() (int64, error) {
	if len(in.Workers) == 0 {
		return 0, fmt.Errorf("%w: at least one worker entry is required", ErrInvalidQuantity)
	}
	seen := make(map[int64]bool, len(in.Workers))
	for _, w := range in.Workers {
		if w.Units <= 0 {
			return 0, fmt.Errorf("%w: worker %d units %d", ErrInvalidQuantity, w.WorkerID, w.Units)
		}
		if seen[w.WorkerID] {
			return 0, validation("worker %d listed twice", w.WorkerID)
		}
		seen[w.WorkerID] = true
	}
	total, ok := production.TotalUnits(in.Workers)
	if !ok || total <= 0 {
		return 0, fmt.Errorf("%w: total units overflow", ErrInvalidQuantity)
	}
	if !in.Shift.Valid() {
		return 0, validation("unknown shift %q", in.Shift)
	}
	if in.Date.IsZero() {
		return 0, validation("production date is required")
	}
	return total, nil
}

type need struct {
	material *materials.RawMaterial
	qty      decimal.Decimal
}

// CreateProductionBatch consumes the active formulation for the produced units,
// snapshots its cost and credits the yard.
func (e *Engine) CreateProductionBatch(ctx context.Context, in ProductionInput) (*production.Batch, error) {
	total, err := in.validate()
	if err != nil {
		return nil, err
	}

	var b production.Batch
	err = e.run(ctx, "create_batch", func(r Repos) error {
		bt, err := r.Catalog().GetBlockType(ctx, in.BlockTypeID)
		if err != nil {
			return err
		}
		if bt == nil {
			return notFound("block type", in.BlockTypeID)
		}
		if !bt.Active {
			return validation("block type %q is inactive", bt.Name)
		}
		f, err := r.Catalog().ActiveFormulation(ctx, bt.ID)
		if err != nil {
			return err
		}
		if f == nil || len(f.Items) == 0 {
			return fmt.Errorf("%w: block type %q", ErrMissingFormulation, bt.Name)
		}

		required := f.Needs(total)
		ids := make([]int64, 0, len(required))
		for id := range required {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		// check every material before debiting any
		needs := make([]need, 0, len(ids))
		for _, id := range ids {
			m, err := r.Materials().GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if m == nil {
				return notFound("material", id)
			}
			qty := required[id].Round(materials.Scale)
			has := m.CurrentStock
			switch err := m.Consume(qty); {
			case errors.Is(err, materials.ErrInsufficientStock):
				return fmt.Errorf("%w: %s needs %s, has %s",
					ErrInsufficientStock, m.Name, qty.String(), has.String())
			case err != nil:
				return fmt.Errorf("%w: %s: %v", ErrInvalidQuantity, m.Name, err)
			}
			needs = append(needs, need{material: m, qty: qty})
		}

		b = production.Batch{
			Date:          in.Date,
			Shift:         in.Shift,
			BlockTypeID:   bt.ID,
			FormulationID: f.ID,
			TotalUnits:    total,
			TotalCost:     decimal.Zero,
			CreatedByID:   in.CreatedByID,
			Workers:       append([]production.WorkerOutput(nil), in.Workers...),
		}
		for _, n := range needs {
			price := n.material.AverageUnitPrice
			cost := n.material.CostOf(n.qty)
			// conditional debit backstops the in-memory Consume above
			ok, err := r.Materials().Debit(ctx, n.material.ID, n.qty)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", ErrInsufficientStock, n.material.Name)
			}
			b.Materials = append(b.Materials, production.MaterialCost{
				MaterialID: n.material.ID,
				Quantity:   n.qty,
				UnitPrice:  price,
				Cost:       cost,
			})
			b.TotalCost = b.TotalCost.Add(cost)
		}
		b.UnitCost = b.TotalCost.DivRound(decimal.NewFromInt(total), materials.Scale)

		for _, wo := range in.Workers {
			w, err := r.Workers().Get(ctx, wo.WorkerID)
			if err != nil {
				return err
			}
			if w == nil {
				return notFound("worker", wo.WorkerID)
			}
			if !w.Active {
				return validation("worker %s is inactive", w.FullName())
			}
		}

		if b.Code, err = e.nextCode(ctx, r, batchPrefix, in.Date); err != nil {
			return err
		}
		if err := r.Batches().Create(ctx, &b); err != nil {
			return err
		}
		if _, err := r.Yard().Credit(ctx, bt.ID, total); err != nil {
			return err
		}
		return r.Yard().AppendMovement(ctx, &yard.Movement{
			BlockTypeID:   bt.ID,
			BlockTypeName: bt.Name,
			Type:          yard.MoveInProduction,
			Quantity:      total,
			Reference:     b.Code,
			CreatedAt:     e.now(),
		})
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("batch produced", "code", b.Code, "units", b.TotalUnits, "cost", b.TotalCost.String())
	return &b, nil
}

func (e *Engine) ListBatches(ctx context.Context, limit int) ([]production.Batch, error) {
	var out []production.Batch
	err := e.view("list_batches", func(r Repos) error {
		var err error
		out, err = r.Batches().List(ctx, limitOr(limit, 100))
		return err
	})
	return out, err
}
