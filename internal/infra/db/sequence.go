package db

import (
	"context"
	"time"

	"github.com/Spok95/block-plant/internal/domain/dbtx"
)

// codeRepo bumps the per-day counter inside the caller's transaction,
// so a rolled back batch or order gives its number back.
type codeRepo struct{ db dbtx.DBTX }

func (r codeRepo) Next(ctx context.Context, prefix string, day time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		INSERT INTO code_sequences (prefix, day, last_no)
		VALUES ($1, $2, 1)
		ON CONFLICT (prefix, day)
		DO UPDATE SET last_no = code_sequences.last_no + 1
		RETURNING last_no
	`, prefix, day).Scan(&n)
	return n, err
}
