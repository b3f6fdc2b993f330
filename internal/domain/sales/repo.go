package sales

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

/* Clients */

func (r *Repo) CreateClient(ctx context.Context, c *Client) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO clients (name, cif, phone, address)
		VALUES ($1,$2,$3,$4)
		RETURNING id, created_at
	`, c.Name, c.CIF, c.Phone, c.Address).Scan(&c.ID, &c.CreatedAt)
}

func (r *Repo) GetClient(ctx context.Context, id int64) (*Client, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, cif, phone, address, created_at FROM clients WHERE id = $1
	`, id)
	var c Client
	if err := row.Scan(&c.ID, &c.Name, &c.CIF, &c.Phone, &c.Address, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *Repo) ListClients(ctx context.Context) ([]Client, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, cif, phone, address, created_at FROM clients ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Client{}
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.CIF, &c.Phone, &c.Address, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) CountClients(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM clients`).Scan(&n)
	return n, err
}

/* Orders */

func (r *Repo) CreateOrder(ctx context.Context, o *Order) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO orders (code, client_id, date, status, total_amount, created_by_id)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at
	`, o.Code, o.ClientID, o.Date, string(o.Status), o.TotalAmount, o.CreatedByID)
	if err := row.Scan(&o.ID, &o.CreatedAt); err != nil {
		return err
	}
	for i := range o.Lines {
		l := &o.Lines[i]
		if err := r.db.QueryRow(ctx, `
			INSERT INTO order_lines (order_id, block_type_id, quantity, unit_price, total_price)
			VALUES ($1,$2,$3,$4,$5)
			RETURNING id
		`, o.ID, l.BlockTypeID, l.Quantity, l.UnitPrice, l.TotalPrice).Scan(&l.ID); err != nil {
			return err
		}
	}
	return nil
}

const orderCols = `id, code, client_id, date, status, total_amount, created_by_id, created_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	if err := row.Scan(&o.ID, &o.Code, &o.ClientID, &o.Date, &o.Status, &o.TotalAmount, &o.CreatedByID, &o.CreatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repo) GetOrder(ctx context.Context, id int64) (*Order, error) {
	return r.getOrder(ctx, `SELECT `+orderCols+` FROM orders WHERE id = $1`, id)
}

// GetOrderForUpdate locks the order row so two dispatches of it serialize.
func (r *Repo) GetOrderForUpdate(ctx context.Context, id int64) (*Order, error) {
	return r.getOrder(ctx, `SELECT `+orderCols+` FROM orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *Repo) getOrder(ctx context.Context, q string, id int64) (*Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadDetails(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *Repo) loadDetails(ctx context.Context, o *Order) error {
	rows, err := r.db.Query(ctx, `
		SELECT id, block_type_id, quantity, unit_price, total_price
		FROM order_lines WHERE order_id = $1 ORDER BY id
	`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.BlockTypeID, &l.Quantity, &l.UnitPrice, &l.TotalPrice); err != nil {
			return err
		}
		o.Lines = append(o.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	d, err := r.GetDispatch(ctx, o.ID)
	if err != nil {
		return err
	}
	o.Dispatch = d
	return nil
}

func (r *Repo) ListOrders(ctx context.Context, limit int) ([]Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+orderCols+` FROM orders ORDER BY date DESC, id DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range out {
		if err := r.loadDetails(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Repo) SetOrderStatus(ctx context.Context, id int64, st Status) error {
	_, err := r.db.Exec(ctx, `UPDATE orders SET status=$2 WHERE id=$1`, id, string(st))
	return err
}

// SalesTotalSince sums amounts of fulfilled orders dated on or after since.
func (r *Repo) SalesTotalSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_amount),0) FROM orders
		WHERE status IN ('DISPATCHED','COMPLETED') AND date >= $1
	`, since).Scan(&total)
	return total, err
}

/* Dispatches */

func (r *Repo) CreateDispatch(ctx context.Context, d *Dispatch) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO dispatches (order_id, dispatch_date, worker_id, total_units)
		VALUES ($1,$2,$3,$4)
		RETURNING id, created_at
	`, d.OrderID, d.DispatchDate, d.WorkerID, d.TotalUnits)
	if err := row.Scan(&d.ID, &d.CreatedAt); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO weighing_tickets (dispatch_id, gross_weight_kg, tare_weight_kg, net_weight_kg)
		VALUES ($1,$2,$3,$4)
	`, d.ID, d.Ticket.GrossWeightKg, d.Ticket.TareWeightKg, d.Ticket.NetWeightKg)
	return err
}

func (r *Repo) GetDispatch(ctx context.Context, orderID int64) (*Dispatch, error) {
	row := r.db.QueryRow(ctx, `
		SELECT d.id, d.order_id, d.dispatch_date, d.worker_id, d.total_units, d.created_at,
		       t.gross_weight_kg, t.tare_weight_kg, t.net_weight_kg
		FROM dispatches d
		JOIN weighing_tickets t ON t.dispatch_id = d.id
		WHERE d.order_id = $1
	`, orderID)
	var d Dispatch
	if err := row.Scan(&d.ID, &d.OrderID, &d.DispatchDate, &d.WorkerID, &d.TotalUnits, &d.CreatedAt,
		&d.Ticket.GrossWeightKg, &d.Ticket.TareWeightKg, &d.Ticket.NetWeightKg); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}
