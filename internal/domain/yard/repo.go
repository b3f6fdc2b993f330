package yard

import (
	"context"
	"errors"

	"github.com/Spok95/block-plant/internal/domain/dbtx"
	"github.com/jackc/pgx/v5"
)

type Repo struct{ db dbtx.DBTX }

func NewRepo(db dbtx.DBTX) *Repo { return &Repo{db: db} }

// GetForUpdate locks the yard row of a block type (nil if the row does not exist yet).
func (r *Repo) GetForUpdate(ctx context.Context, blockTypeID int64) (*Stock, error) {
	row := r.db.QueryRow(ctx, `
		SELECT s.block_type_id, b.name, s.current_quantity, s.updated_at
		FROM yard_stock s
		JOIN block_types b ON b.id = s.block_type_id
		WHERE s.block_type_id = $1
		FOR UPDATE OF s
	`, blockTypeID)
	var s Stock
	if err := row.Scan(&s.BlockTypeID, &s.BlockTypeName, &s.CurrentQuantity, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repo) List(ctx context.Context) ([]Stock, error) {
	rows, err := r.db.Query(ctx, `
		SELECT s.block_type_id, b.name, s.current_quantity, s.updated_at
		FROM yard_stock s
		JOIN block_types b ON b.id = s.block_type_id
		ORDER BY b.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Stock{}
	for rows.Next() {
		var s Stock
		if err := rows.Scan(&s.BlockTypeID, &s.BlockTypeName, &s.CurrentQuantity, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Credit adds qty (creating the row when absent) and returns the new quantity.
func (r *Repo) Credit(ctx context.Context, blockTypeID, qty int64) (int64, error) {
	var cur int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO yard_stock (block_type_id, current_quantity)
		VALUES ($1,$2)
		ON CONFLICT (block_type_id)
		DO UPDATE SET current_quantity = yard_stock.current_quantity + EXCLUDED.current_quantity,
		              updated_at = now()
		RETURNING current_quantity
	`, blockTypeID, qty).Scan(&cur)
	return cur, err
}

// Debit subtracts qty only when the yard holds at least qty. false means nothing changed.
func (r *Repo) Debit(ctx context.Context, blockTypeID, qty int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE yard_stock SET current_quantity = current_quantity - $2, updated_at = now()
		WHERE block_type_id = $1 AND current_quantity >= $2
	`, blockTypeID, qty)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repo) TotalUnits(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(current_quantity),0)::BIGINT FROM yard_stock`).Scan(&n)
	return n, err
}

/* Movements */

func (r *Repo) AppendMovement(ctx context.Context, m *Movement) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO stock_movements (block_type_id, type, quantity, reference, created_at)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id
	`, m.BlockTypeID, string(m.Type), m.Quantity, m.Reference, m.CreatedAt).Scan(&m.ID)
}

// ListMovements returns the newest movements first; blockTypeID 0 means all block types.
func (r *Repo) ListMovements(ctx context.Context, blockTypeID int64, limit int) ([]Movement, error) {
	rows, err := r.db.Query(ctx, `
		SELECT m.id, m.block_type_id, b.name, m.type, m.quantity, m.reference, m.created_at
		FROM stock_movements m
		JOIN block_types b ON b.id = m.block_type_id
		WHERE $1::BIGINT = 0 OR m.block_type_id = $1::BIGINT
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT $2
	`, blockTypeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Movement{}
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.BlockTypeID, &m.BlockTypeName, &m.Type, &m.Quantity, &m.Reference, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MovementTotals sums the signed movement log per block type.
func (r *Repo) MovementTotals(ctx context.Context) (map[int64]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT block_type_id, SUM(quantity)::BIGINT
		FROM stock_movements
		GROUP BY block_type_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[int64]int64{}
	for rows.Next() {
		var id, sum int64
		if err := rows.Scan(&id, &sum); err != nil {
			return nil, err
		}
		out[id] = sum
	}
	return out, rows.Err()
}
