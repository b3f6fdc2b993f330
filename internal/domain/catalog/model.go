package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// BlockType is a finished product (block, paver) that can be produced and sold.
type BlockType struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Dimensions string    `json:"dimensions"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
}

// Formulation is the per-unit recipe of a block type. Only one version is active at a time;
// editing a recipe stores a new version.
type Formulation struct {
	ID          int64             `json:"id"`
	BlockTypeID int64             `json:"block_type_id"`
	Version     int               `json:"version"`
	Active      bool              `json:"active"`
	Items       []FormulationItem `json:"items"`
	CreatedAt   time.Time         `json:"created_at"`
}

type FormulationItem struct {
	MaterialID int64           `json:"material_id"`
	KgPerUnit  decimal.Decimal `json:"kg_per_unit"`
}

// Needs returns how much of every material totalUnits consume, keyed by material id.
func (f *Formulation) Needs(totalUnits int64) map[int64]decimal.Decimal {
	units := decimal.NewFromInt(totalUnits)
	out := make(map[int64]decimal.Decimal, len(f.Items))
	for _, it := range f.Items {
		out[it.MaterialID] = out[it.MaterialID].Add(it.KgPerUnit.Mul(units))
	}
	return out
}
