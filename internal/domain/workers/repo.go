package workers

import (
	"context"
	"errors"

	"github.com/Spok95/block-plant/internal/domain/dbtx"
	"github.com/jackc/pgx/v5"
)

type Repo struct{ db dbtx.DBTX }

func NewRepo(db dbtx.DBTX) *Repo { return &Repo{db: db} }

const cols = `id, dni, first_name, last_name, role, is_active, created_at, updated_at`

func scan(row pgx.Row) (*Worker, error) {
	var w Worker
	if err := row.Scan(&w.ID, &w.DNI, &w.FirstName, &w.LastName, &w.Role, &w.Active, &w.CreatedAt, &w.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

func (r *Repo) Create(ctx context.Context, w *Worker) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO workers (dni, first_name, last_name, role, is_active)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at, updated_at
	`, w.DNI, w.FirstName, w.LastName, string(w.Role), w.Active).Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
}

func (r *Repo) Get(ctx context.Context, id int64) (*Worker, error) {
	return scan(r.db.QueryRow(ctx, `SELECT `+cols+` FROM workers WHERE id = $1`, id))
}

func (r *Repo) GetByDNI(ctx context.Context, dni string) (*Worker, error) {
	return scan(r.db.QueryRow(ctx, `SELECT `+cols+` FROM workers WHERE UPPER(dni) = UPPER($1)`, dni))
}

func (r *Repo) List(ctx context.Context, onlyActive bool) ([]Worker, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+cols+` FROM workers
		WHERE is_active OR NOT $1
		ORDER BY first_name, last_name
	`, onlyActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Worker{}
	for rows.Next() {
		w, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

// SetActive toggles the worker and returns the updated row (nil if missing).
func (r *Repo) SetActive(ctx context.Context, id int64, active bool) (*Worker, error) {
	return scan(r.db.QueryRow(ctx, `
		UPDATE workers SET is_active=$2, updated_at=now()
		WHERE id=$1
		RETURNING `+cols, id, active))
}

func (r *Repo) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM workers WHERE is_active`).Scan(&n)
	return n, err
}
