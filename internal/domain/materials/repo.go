package materials

import (
	"context"
	"errors"

	"github.com/Spok95/block-plant/internal/domain/dbtx"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type Repo struct{ db dbtx.DBTX }

func NewRepo(db dbtx.DBTX) *Repo { return &Repo{db: db} }

const cols = `id, name, unit, current_stock, min_stock_alert, average_unit_price, created_at`

func scan(row pgx.Row) (*RawMaterial, error) {
	var m RawMaterial
	if err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Unit,
		&m.CurrentStock,
		&m.MinStockAlert,
		&m.AverageUnitPrice,
		&m.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repo) Create(ctx context.Context, m *RawMaterial) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO raw_materials (name, unit, current_stock, min_stock_alert, average_unit_price)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at
	`, m.Name, string(m.Unit), m.CurrentStock, m.MinStockAlert, m.AverageUnitPrice)
	return row.Scan(&m.ID, &m.CreatedAt)
}

func (r *Repo) Get(ctx context.Context, id int64) (*RawMaterial, error) {
	return r.get(ctx, `SELECT `+cols+` FROM raw_materials WHERE id = $1`, id)
}

// GetForUpdate locks the row until the surrounding transaction ends.
func (r *Repo) GetForUpdate(ctx context.Context, id int64) (*RawMaterial, error) {
	return r.get(ctx, `SELECT `+cols+` FROM raw_materials WHERE id = $1 FOR UPDATE`, id)
}

func (r *Repo) GetByName(ctx context.Context, name string) (*RawMaterial, error) {
	return r.get(ctx, `SELECT `+cols+` FROM raw_materials WHERE LOWER(name) = LOWER($1)`, name)
}

func (r *Repo) get(ctx context.Context, q string, args ...any) (*RawMaterial, error) {
	m, err := scan(r.db.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func (r *Repo) List(ctx context.Context) ([]RawMaterial, error) {
	return r.list(ctx, `SELECT `+cols+` FROM raw_materials ORDER BY name`)
}

// ListLowStock returns materials at or below their alert threshold.
func (r *Repo) ListLowStock(ctx context.Context) ([]RawMaterial, error) {
	return r.list(ctx, `
		SELECT `+cols+` FROM raw_materials
		WHERE current_stock <= min_stock_alert
		ORDER BY name
	`)
}

func (r *Repo) list(ctx context.Context, q string, args ...any) ([]RawMaterial, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []RawMaterial{}
	for rows.Next() {
		m, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *Repo) SetStockAndPrice(ctx context.Context, id int64, stock, avg decimal.Decimal) error {
	_, err := r.db.Exec(ctx, `
		UPDATE raw_materials SET current_stock=$2, average_unit_price=$3
		WHERE id=$1
	`, id, stock, avg)
	return err
}

// Debit subtracts qty only if enough stock is left. false means nothing was changed.
func (r *Repo) Debit(ctx context.Context, id int64, qty decimal.Decimal) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE raw_materials SET current_stock = current_stock - $2
		WHERE id=$1 AND current_stock >= $2
	`, id, qty)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
