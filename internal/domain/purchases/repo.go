package purchases

import (
	"context"
	"errors"
	"time"

	"github.com/Spok95/block-plant/internal/domain/dbtx"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type Repo struct{ db dbtx.DBTX }

func NewRepo(db dbtx.DBTX) *Repo { return &Repo{db: db} }

/* Suppliers */

func (r *Repo) CreateSupplier(ctx context.Context, s *Supplier) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO suppliers (name, cif, contact_info)
		VALUES ($1,$2,$3)
		RETURNING id, created_at
	`, s.Name, s.CIF, s.ContactInfo).Scan(&s.ID, &s.CreatedAt)
}

func (r *Repo) GetSupplier(ctx context.Context, id int64) (*Supplier, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, cif, contact_info, created_at
		FROM suppliers WHERE id = $1
	`, id)
	var s Supplier
	if err := row.Scan(&s.ID, &s.Name, &s.CIF, &s.ContactInfo, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repo) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, cif, contact_info, created_at
		FROM suppliers ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Supplier{}
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.CIF, &s.ContactInfo, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

/* Purchases */

func (r *Repo) Create(ctx context.Context, p *Purchase) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO raw_material_purchases
		(supplier_id, material_id, date, invoice_number, quantity, unit_price, total_price)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at
	`, p.SupplierID, p.MaterialID, p.Date, p.InvoiceNumber, p.Quantity, p.UnitPrice, p.TotalPrice).
		Scan(&p.ID, &p.CreatedAt)
}

func (r *Repo) List(ctx context.Context, limit int) ([]Purchase, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, supplier_id, material_id, date, invoice_number, quantity, unit_price, total_price, created_at
		FROM raw_material_purchases
		ORDER BY date DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Purchase{}
	for rows.Next() {
		var p Purchase
		if err := rows.Scan(&p.ID, &p.SupplierID, &p.MaterialID, &p.Date, &p.InvoiceNumber,
			&p.Quantity, &p.UnitPrice, &p.TotalPrice, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// TotalSince sums purchase totals dated on or after since.
func (r *Repo) TotalSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_price),0) FROM raw_material_purchases WHERE date >= $1
	`, since).Scan(&total)
	return total, err
}
