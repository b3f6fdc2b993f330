package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/Spok95/block-plant/internal/domain/catalog"
	"github.com/Spok95/block-plant/internal/domain/materials"
	"github.com/Spok95/block-plant/internal/domain/purchases"
	"github.com/Spok95/block-plant/internal/domain/sales"
	"github.com/Spok95/block-plant/internal/domain/workers"
	"github.com/shopspring/decimal"
)

/* Materials */

type MaterialInput struct {
	Name          string
	Unit          materials.Unit
	MinStockAlert decimal.Decimal
	OpeningStock  decimal.Decimal
	OpeningPrice  decimal.Decimal
}

func (e *Engine) CreateMaterial(ctx context.Context, in MaterialInput) (*materials.RawMaterial, error) {
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return nil, validation("material name is required")
	case !in.Unit.Valid():
		return nil, validation("unknown unit %q", in.Unit)
	case in.MinStockAlert.IsNegative(), in.OpeningStock.IsNegative(), in.OpeningPrice.IsNegative():
		return nil, validation("stock, alert and price must be >= 0")
	}

	m := materials.RawMaterial{
		Name:             name,
		Unit:             in.Unit,
		CurrentStock:     in.OpeningStock.Round(materials.Scale),
		MinStockAlert:    in.MinStockAlert.Round(materials.Scale),
		AverageUnitPrice: in.OpeningPrice.Round(materials.Scale),
	}
	err := e.run(ctx, "create_material", func(r Repos) error {
		dup, err := r.Materials().GetByName(ctx, name)
		if err != nil {
			return err
		}
		if dup != nil {
			return fmt.Errorf("%w: material %q", ErrConflict, name)
		}
		return r.Materials().Create(ctx, &m)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (e *Engine) ListMaterials(ctx context.Context) ([]materials.RawMaterial, error) {
	var out []materials.RawMaterial
	err := e.view("list_materials", func(r Repos) error {
		var err error
		out, err = r.Materials().List(ctx)
		return err
	})
	return out, err
}

// LowStockMaterials lists materials at or below their alert threshold.
func (e *Engine) LowStockMaterials(ctx context.Context) ([]materials.RawMaterial, error) {
	var out []materials.RawMaterial
	err := e.view("low_stock", func(r Repos) error {
		var err error
		out, err = r.Materials().ListLowStock(ctx)
		return err
	})
	if err == nil {
		e.rec.SetLowStock(len(out))
	}
	return out, err
}

/* Block types and formulations */

type BlockTypeInput struct {
	Name       string
	Dimensions string
	Items      []catalog.FormulationItem
}

type BlockTypeResult struct {
	BlockType   catalog.BlockType   `json:"block_type"`
	Formulation catalog.Formulation `json:"formulation"`
}

func validateItems(ctx context.Context, r Repos, items []catalog.FormulationItem) error {
	if len(items) == 0 {
		return validation("formulation needs at least one material")
	}
	seen := make(map[int64]bool, len(items))
	for _, it := range items {
		if !it.KgPerUnit.IsPositive() {
			return validation("material %d: kg per unit must be > 0", it.MaterialID)
		}
		if seen[it.MaterialID] {
			return validation("material %d listed twice", it.MaterialID)
		}
		seen[it.MaterialID] = true

		m, err := r.Materials().Get(ctx, it.MaterialID)
		if err != nil {
			return err
		}
		if m == nil {
			return notFound("material", it.MaterialID)
		}
	}
	return nil
}

func roundItems(items []catalog.FormulationItem) []catalog.FormulationItem {
	out := make([]catalog.FormulationItem, len(items))
	for i, it := range items {
		out[i] = catalog.FormulationItem{MaterialID: it.MaterialID, KgPerUnit: it.KgPerUnit.Round(materials.Scale)}
	}
	return out
}

// CreateBlockType registers an active block type, its first formulation and an empty yard row.
func (e *Engine) CreateBlockType(ctx context.Context, in BlockTypeInput) (*BlockTypeResult, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validation("block type name is required")
	}

	var res BlockTypeResult
	err := e.run(ctx, "create_block_type", func(r Repos) error {
		dup, err := r.Catalog().GetBlockTypeByName(ctx, name)
		if err != nil {
			return err
		}
		if dup != nil {
			return fmt.Errorf("%w: block type %q", ErrConflict, name)
		}
		if err := validateItems(ctx, r, in.Items); err != nil {
			return err
		}

		bt := catalog.BlockType{Name: name, Dimensions: strings.TrimSpace(in.Dimensions), Active: true}
		if err := r.Catalog().CreateBlockType(ctx, &bt); err != nil {
			return err
		}
		f := catalog.Formulation{BlockTypeID: bt.ID, Items: roundItems(in.Items)}
		if err := r.Catalog().SaveFormulation(ctx, &f); err != nil {
			return err
		}
		if _, err := r.Yard().Credit(ctx, bt.ID, 0); err != nil {
			return err
		}
		res = BlockTypeResult{BlockType: bt, Formulation: f}
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("block type created", "name", res.BlockType.Name, "materials", len(res.Formulation.Items))
	return &res, nil
}

// UpdateFormulation stores a new formulation version. Existing batches keep their cost snapshot.
func (e *Engine) UpdateFormulation(ctx context.Context, blockTypeID int64, items []catalog.FormulationItem) (*catalog.Formulation, error) {
	var f catalog.Formulation
	err := e.run(ctx, "update_formulation", func(r Repos) error {
		bt, err := r.Catalog().GetBlockType(ctx, blockTypeID)
		if err != nil {
			return err
		}
		if bt == nil {
			return notFound("block type", blockTypeID)
		}
		if err := validateItems(ctx, r, items); err != nil {
			return err
		}
		f = catalog.Formulation{BlockTypeID: bt.ID, Items: roundItems(items)}
		return r.Catalog().SaveFormulation(ctx, &f)
	})
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (e *Engine) ActiveFormulation(ctx context.Context, blockTypeID int64) (*catalog.Formulation, error) {
	var f *catalog.Formulation
	err := e.view("active_formulation", func(r Repos) error {
		var err error
		if f, err = r.Catalog().ActiveFormulation(ctx, blockTypeID); err != nil {
			return err
		}
		if f == nil {
			return fmt.Errorf("%w: block type %d", ErrMissingFormulation, blockTypeID)
		}
		return nil
	})
	return f, err
}

func (e *Engine) SetBlockTypeActive(ctx context.Context, id int64, active bool) (*catalog.BlockType, error) {
	var bt *catalog.BlockType
	err := e.run(ctx, "set_block_type_active", func(r Repos) error {
		var err error
		if bt, err = r.Catalog().SetBlockTypeActive(ctx, id, active); err != nil {
			return err
		}
		if bt == nil {
			return notFound("block type", id)
		}
		return nil
	})
	return bt, err
}

func (e *Engine) ListBlockTypes(ctx context.Context, onlyActive bool) ([]catalog.BlockType, error) {
	var out []catalog.BlockType
	err := e.view("list_block_types", func(r Repos) error {
		var err error
		out, err = r.Catalog().ListBlockTypes(ctx, onlyActive)
		return err
	})
	return out, err
}

/* Workers */

type WorkerInput struct {
	DNI       string
	FirstName string
	LastName  string
	Role      workers.Role
}

func (e *Engine) CreateWorker(ctx context.Context, in WorkerInput) (*workers.Worker, error) {
	w := workers.Worker{
		DNI:       strings.ToUpper(strings.TrimSpace(in.DNI)),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Role:      in.Role,
		Active:    true,
	}
	if w.DNI == "" || w.FirstName == "" {
		return nil, validation("worker DNI and first name are required")
	}
	if w.Role == "" {
		w.Role = workers.RoleOperator
	}

	err := e.run(ctx, "create_worker", func(r Repos) error {
		dup, err := r.Workers().GetByDNI(ctx, w.DNI)
		if err != nil {
			return err
		}
		if dup != nil {
			return fmt.Errorf("%w: worker DNI %s", ErrConflict, w.DNI)
		}
		return r.Workers().Create(ctx, &w)
	})
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (e *Engine) SetWorkerActive(ctx context.Context, id int64, active bool) (*workers.Worker, error) {
	var w *workers.Worker
	err := e.run(ctx, "set_worker_active", func(r Repos) error {
		var err error
		if w, err = r.Workers().SetActive(ctx, id, active); err != nil {
			return err
		}
		if w == nil {
			return notFound("worker", id)
		}
		return nil
	})
	return w, err
}

func (e *Engine) ListWorkers(ctx context.Context, onlyActive bool) ([]workers.Worker, error) {
	var out []workers.Worker
	err := e.view("list_workers", func(r Repos) error {
		var err error
		out, err = r.Workers().List(ctx, onlyActive)
		return err
	})
	return out, err
}

/* Suppliers and clients */

func (e *Engine) CreateSupplier(ctx context.Context, s purchases.Supplier) (*purchases.Supplier, error) {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return nil, validation("supplier name is required")
	}
	err := e.run(ctx, "create_supplier", func(r Repos) error {
		return r.Purchases().CreateSupplier(ctx, &s)
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (e *Engine) ListSuppliers(ctx context.Context) ([]purchases.Supplier, error) {
	var out []purchases.Supplier
	err := e.view("list_suppliers", func(r Repos) error {
		var err error
		out, err = r.Purchases().ListSuppliers(ctx)
		return err
	})
	return out, err
}

func (e *Engine) CreateClient(ctx context.Context, c sales.Client) (*sales.Client, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, validation("client name is required")
	}
	err := e.run(ctx, "create_client", func(r Repos) error {
		return r.Sales().CreateClient(ctx, &c)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (e *Engine) ListClients(ctx context.Context) ([]sales.Client, error) {
	var out []sales.Client
	err := e.view("list_clients", func(r Repos) error {
		var err error
		out, err = r.Sales().ListClients(ctx)
		return err
	})
	return out, err
}
