package production

import (
	"context"
	"time"

	"github.com/Spok95/block-plant/internal/domain/dbtx"
	"github.com/shopspring/decimal"
)

type Repo struct{ db dbtx.DBTX }

func NewRepo(db dbtx.DBTX) *Repo { return &Repo{db: db} }

func (r *Repo) Create(ctx context.Context, b *Batch) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO production_batches
		(code, date, shift, block_type_id, formulation_id, total_units, total_cost, unit_cost, created_by_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at
	`, b.Code, b.Date, string(b.Shift), b.BlockTypeID, b.FormulationID, b.TotalUnits, b.TotalCost, b.UnitCost, b.CreatedByID)
	if err := row.Scan(&b.ID, &b.CreatedAt); err != nil {
		return err
	}

	for _, m := range b.Materials {
		if _, err := r.db.Exec(ctx, `
			INSERT INTO batch_materials (batch_id, material_id, quantity, unit_price, cost)
			VALUES ($1,$2,$3,$4,$5)
		`, b.ID, m.MaterialID, m.Quantity, m.UnitPrice, m.Cost); err != nil {
			return err
		}
	}
	for _, w := range b.Workers {
		if _, err := r.db.Exec(ctx, `
			INSERT INTO batch_workers (batch_id, worker_id, units_produced)
			VALUES ($1,$2,$3)
		`, b.ID, w.WorkerID, w.Units); err != nil {
			return err
		}
	}
	return nil
}

// List returns the latest batches with their cost breakdown and worker allocations.
func (r *Repo) List(ctx context.Context, limit int) ([]Batch, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, code, date, shift, block_type_id, formulation_id, total_units, total_cost, unit_cost, created_by_id, created_at
		FROM production_batches
		ORDER BY date DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Batch{}
	idx := map[int64]int{}
	ids := []int64{}
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.Code, &b.Date, &b.Shift, &b.BlockTypeID, &b.FormulationID,
			&b.TotalUnits, &b.TotalCost, &b.UnitCost, &b.CreatedByID, &b.CreatedAt); err != nil {
			return nil, err
		}
		idx[b.ID] = len(out)
		ids = append(ids, b.ID)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()
	if len(ids) == 0 {
		return out, nil
	}

	mrows, err := r.db.Query(ctx, `
		SELECT batch_id, material_id, quantity, unit_price, cost
		FROM batch_materials WHERE batch_id = ANY($1)
		ORDER BY batch_id, material_id
	`, ids)
	if err != nil {
		return nil, err
	}
	defer mrows.Close()
	for mrows.Next() {
		var id int64
		var m MaterialCost
		if err := mrows.Scan(&id, &m.MaterialID, &m.Quantity, &m.UnitPrice, &m.Cost); err != nil {
			return nil, err
		}
		out[idx[id]].Materials = append(out[idx[id]].Materials, m)
	}
	if err := mrows.Err(); err != nil {
		return nil, err
	}
	mrows.Close()

	wrows, err := r.db.Query(ctx, `
		SELECT batch_id, worker_id, units_produced
		FROM batch_workers WHERE batch_id = ANY($1)
		ORDER BY batch_id, worker_id
	`, ids)
	if err != nil {
		return nil, err
	}
	defer wrows.Close()
	for wrows.Next() {
		var id int64
		var w WorkerOutput
		if err := wrows.Scan(&id, &w.WorkerID, &w.Units); err != nil {
			return nil, err
		}
		out[idx[id]].Workers = append(out[idx[id]].Workers, w)
	}
	return out, wrows.Err()
}

// Totals sums produced units and cost of batches dated on or after since.
func (r *Repo) Totals(ctx context.Context, since time.Time) (int64, decimal.Decimal, error) {
	var units int64
	var cost decimal.Decimal
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_units),0)::BIGINT, COALESCE(SUM(total_cost),0)
		FROM production_batches WHERE date >= $1
	`, since).Scan(&units, &cost)
	return units, cost, err
}
