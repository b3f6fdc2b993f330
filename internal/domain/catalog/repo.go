package catalog

import (
	"context"
	"errors"

	"github.com/Spok95/block-plant/internal/domain/dbtx"
	"github.com/jackc/pgx/v5"
)

type Repo struct{ db dbtx.DBTX }

func NewRepo(db dbtx.DBTX) *Repo { return &Repo{db: db} }

/* Block types */

func (r *Repo) CreateBlockType(ctx context.Context, bt *BlockType) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO block_types (name, dimensions, is_active)
		VALUES ($1,$2,$3)
		RETURNING id, created_at
	`, bt.Name, bt.Dimensions, bt.Active)
	return row.Scan(&bt.ID, &bt.CreatedAt)
}

func (r *Repo) GetBlockType(ctx context.Context, id int64) (*BlockType, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, dimensions, is_active, created_at
		FROM block_types WHERE id = $1
	`, id)
	var bt BlockType
	if err := row.Scan(&bt.ID, &bt.Name, &bt.Dimensions, &bt.Active, &bt.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &bt, nil
}

func (r *Repo) GetBlockTypeByName(ctx context.Context, name string) (*BlockType, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, dimensions, is_active, created_at
		FROM block_types WHERE LOWER(name) = LOWER($1)
	`, name)
	var bt BlockType
	if err := row.Scan(&bt.ID, &bt.Name, &bt.Dimensions, &bt.Active, &bt.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &bt, nil
}

func (r *Repo) ListBlockTypes(ctx context.Context, onlyActive bool) ([]BlockType, error) {
	q := `SELECT id, name, dimensions, is_active, created_at FROM block_types`
	if onlyActive {
		q += " WHERE is_active = TRUE"
	}
	q += " ORDER BY name"

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []BlockType{}
	for rows.Next() {
		var bt BlockType
		if err := rows.Scan(&bt.ID, &bt.Name, &bt.Dimensions, &bt.Active, &bt.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, bt)
	}
	return out, rows.Err()
}

func (r *Repo) CountBlockTypes(ctx context.Context, onlyActive bool) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM block_types WHERE is_active OR NOT $1
	`, onlyActive).Scan(&n)
	return n, err
}

func (r *Repo) SetBlockTypeActive(ctx context.Context, id int64, active bool) (*BlockType, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE block_types SET is_active=$2 WHERE id=$1
		RETURNING id, name, dimensions, is_active, created_at
	`, id, active)
	var bt BlockType
	if err := row.Scan(&bt.ID, &bt.Name, &bt.Dimensions, &bt.Active, &bt.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &bt, nil
}

/* Formulations */

// ActiveFormulation returns the recipe new batches must use (nil if none).
func (r *Repo) ActiveFormulation(ctx context.Context, blockTypeID int64) (*Formulation, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, block_type_id, version, is_active, created_at
		FROM formulations
		WHERE block_type_id = $1 AND is_active = TRUE
	`, blockTypeID)
	var f Formulation
	if err := row.Scan(&f.ID, &f.BlockTypeID, &f.Version, &f.Active, &f.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT material_id, kg_per_unit
		FROM formulation_items
		WHERE formulation_id = $1
		ORDER BY material_id
	`, f.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it FormulationItem
		if err := rows.Scan(&it.MaterialID, &it.KgPerUnit); err != nil {
			return nil, err
		}
		f.Items = append(f.Items, it)
	}
	return &f, rows.Err()
}

// SaveFormulation retires the active version (if any) and stores f as the next one.
func (r *Repo) SaveFormulation(ctx context.Context, f *Formulation) error {
	if _, err := r.db.Exec(ctx, `
		UPDATE formulations SET is_active = FALSE
		WHERE block_type_id = $1 AND is_active = TRUE
	`, f.BlockTypeID); err != nil {
		return err
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO formulations (block_type_id, version, is_active)
		VALUES ($1, COALESCE((SELECT MAX(version) FROM formulations WHERE block_type_id = $1), 0) + 1, TRUE)
		RETURNING id, version, is_active, created_at
	`, f.BlockTypeID)
	if err := row.Scan(&f.ID, &f.Version, &f.Active, &f.CreatedAt); err != nil {
		return err
	}

	for _, it := range f.Items {
		if _, err := r.db.Exec(ctx, `
			INSERT INTO formulation_items (formulation_id, material_id, kg_per_unit)
			VALUES ($1,$2,$3)
		`, f.ID, it.MaterialID, it.KgPerUnit); err != nil {
			return err
		}
	}
	return nil
}
