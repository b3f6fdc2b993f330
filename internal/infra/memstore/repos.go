package memstore

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/Spok95/block-plant/internal/domain/catalog"
	"github.com/Spok95/block-plant/internal/domain/materials"
	"github.com/Spok95/block-plant/internal/domain/production"
	"github.com/Spok95/block-plant/internal/domain/purchases"
	"github.com/Spok95/block-plant/internal/domain/sales"
	"github.com/Spok95/block-plant/internal/domain/workers"
	"github.com/Spok95/block-plant/internal/domain/yard"
	"github.com/Spok95/block-plant/internal/ledger"
	"github.com/shopspring/decimal"
)

func conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ledger.ErrConflict, fmt.Sprintf(format, args...))
}

func ptr[T any](v T) *T { return &v }

/* Materials */

type materialRepo struct{ *repos }

func (m materialRepo) Create(_ context.Context, rm *materials.RawMaterial) error {
	st, done := m.write()
	defer done()
	for _, x := range st.materials {
		if strings.EqualFold(x.Name, rm.Name) {
			return conflict("material %q", rm.Name)
		}
	}
	rm.ID = st.nextID("materials")
	rm.CreatedAt = m.s.now()
	st.materials[rm.ID] = *rm
	return nil
}

func (m materialRepo) Get(_ context.Context, id int64) (*materials.RawMaterial, error) {
	st, done := m.read()
	defer done()
	x, ok := st.materials[id]
	if !ok {
		return nil, nil
	}
	return &x, nil
}

func (m materialRepo) GetForUpdate(ctx context.Context, id int64) (*materials.RawMaterial, error) {
	return m.Get(ctx, id)
}

func (m materialRepo) GetByName(_ context.Context, name string) (*materials.RawMaterial, error) {
	st, done := m.read()
	defer done()
	for _, x := range st.materials {
		if strings.EqualFold(x.Name, name) {
			return ptr(x), nil
		}
	}
	return nil, nil
}

func (m materialRepo) List(context.Context) ([]materials.RawMaterial, error) {
	return m.list(func(materials.RawMaterial) bool { return true }), nil
}

func (m materialRepo) ListLowStock(context.Context) ([]materials.RawMaterial, error) {
	return m.list(func(x materials.RawMaterial) bool { return x.IsLow() }), nil
}

func (m materialRepo) list(keep func(materials.RawMaterial) bool) []materials.RawMaterial {
	st, done := m.read()
	defer done()
	out := []materials.RawMaterial{}
	for _, x := range st.materials {
		if keep(x) {
			out = append(out, x)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (m materialRepo) SetStockAndPrice(_ context.Context, id int64, stock, avg decimal.Decimal) error {
	st, done := m.write()
	defer done()
	x, ok := st.materials[id]
	if !ok {
		return nil
	}
	if stock.IsNegative() || avg.IsNegative() {
		return fmt.Errorf("raw_materials check constraint violated for id %d", id)
	}
	x.CurrentStock, x.AverageUnitPrice = stock, avg
	st.materials[id] = x
	return nil
}

func (m materialRepo) Debit(_ context.Context, id int64, qty decimal.Decimal) (bool, error) {
	st, done := m.write()
	defer done()
	x, ok := st.materials[id]
	if !ok || x.CurrentStock.LessThan(qty) {
		return false, nil
	}
	x.CurrentStock = x.CurrentStock.Sub(qty)
	st.materials[id] = x
	return true, nil
}

/* Catalog */

type catalogRepo struct{ *repos }

func (c catalogRepo) CreateBlockType(_ context.Context, bt *catalog.BlockType) error {
	st, done := c.write()
	defer done()
	for _, x := range st.blockTypes {
		if strings.EqualFold(x.Name, bt.Name) {
			return conflict("block type %q", bt.Name)
		}
	}
	bt.ID = st.nextID("block_types")
	bt.CreatedAt = c.s.now()
	st.blockTypes[bt.ID] = *bt
	return nil
}

func (c catalogRepo) GetBlockType(_ context.Context, id int64) (*catalog.BlockType, error) {
	st, done := c.read()
	defer done()
	x, ok := st.blockTypes[id]
	if !ok {
		return nil, nil
	}
	return &x, nil
}

func (c catalogRepo) GetBlockTypeByName(_ context.Context, name string) (*catalog.BlockType, error) {
	st, done := c.read()
	defer done()
	for _, x := range st.blockTypes {
		if strings.EqualFold(x.Name, name) {
			return ptr(x), nil
		}
	}
	return nil, nil
}

func (c catalogRepo) ListBlockTypes(_ context.Context, onlyActive bool) ([]catalog.BlockType, error) {
	st, done := c.read()
	defer done()
	out := []catalog.BlockType{}
	for _, x := range st.blockTypes {
		if x.Active || !onlyActive {
			out = append(out, x)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c catalogRepo) CountBlockTypes(ctx context.Context, onlyActive bool) (int, error) {
	l, err := c.ListBlockTypes(ctx, onlyActive)
	return len(l), err
}

func (c catalogRepo) SetBlockTypeActive(_ context.Context, id int64, active bool) (*catalog.BlockType, error) {
	st, done := c.write()
	defer done()
	x, ok := st.blockTypes[id]
	if !ok {
		return nil, nil
	}
	x.Active = active
	st.blockTypes[id] = x
	return &x, nil
}

func (c catalogRepo) ActiveFormulation(_ context.Context, blockTypeID int64) (*catalog.Formulation, error) {
	st, done := c.read()
	defer done()
	for _, f := range st.formulations {
		if f.BlockTypeID == blockTypeID && f.Active {
			f.Items = slices.Clone(f.Items)
			return &f, nil
		}
	}
	return nil, nil
}

func (c catalogRepo) SaveFormulation(_ context.Context, f *catalog.Formulation) error {
	st, done := c.write()
	defer done()
	version := 0
	for i := range st.formulations {
		x := &st.formulations[i]
		if x.BlockTypeID != f.BlockTypeID {
			continue
		}
		x.Active = false
		version = max(version, x.Version)
	}
	f.ID = st.nextID("formulations")
	f.Version = version + 1
	f.Active = true
	f.CreatedAt = c.s.now()
	stored := *f
	stored.Items = slices.Clone(f.Items)
	st.formulations = append(st.formulations, stored)
	return nil
}

/* Yard */

type yardRepo struct{ *repos }

func (y yardRepo) withName(st *state, s yard.Stock) yard.Stock {
	s.BlockTypeName = st.blockTypes[s.BlockTypeID].Name
	return s
}

func (y yardRepo) GetForUpdate(_ context.Context, blockTypeID int64) (*yard.Stock, error) {
	st, done := y.read()
	defer done()
	s, ok := st.yard[blockTypeID]
	if !ok {
		return nil, nil
	}
	return ptr(y.withName(st, s)), nil
}

func (y yardRepo) List(context.Context) ([]yard.Stock, error) {
	st, done := y.read()
	defer done()
	out := []yard.Stock{}
	for _, s := range st.yard {
		out = append(out, y.withName(st, s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BlockTypeName < out[j].BlockTypeName })
	return out, nil
}

func (y yardRepo) Credit(_ context.Context, blockTypeID, qty int64) (int64, error) {
	st, done := y.write()
	defer done()
	s := st.yard[blockTypeID]
	s.BlockTypeID = blockTypeID
	if s.CurrentQuantity+qty < 0 {
		return 0, fmt.Errorf("yard_stock check constraint violated for block type %d", blockTypeID)
	}
	s.CurrentQuantity += qty
	s.UpdatedAt = y.s.now()
	st.yard[blockTypeID] = s
	return s.CurrentQuantity, nil
}

func (y yardRepo) Debit(_ context.Context, blockTypeID, qty int64) (bool, error) {
	st, done := y.write()
	defer done()
	s, ok := st.yard[blockTypeID]
	if !ok || s.CurrentQuantity < qty {
		return false, nil
	}
	s.CurrentQuantity -= qty
	s.UpdatedAt = y.s.now()
	st.yard[blockTypeID] = s
	return true, nil
}

func (y yardRepo) TotalUnits(context.Context) (int64, error) {
	st, done := y.read()
	defer done()
	var n int64
	for _, s := range st.yard {
		n += s.CurrentQuantity
	}
	return n, nil
}

func (y yardRepo) AppendMovement(_ context.Context, m *yard.Movement) error {
	st, done := y.write()
	defer done()
	m.ID = st.nextID("stock_movements")
	if m.CreatedAt.IsZero() {
		m.CreatedAt = y.s.now()
	}
	st.movements = append(st.movements, *m)
	return nil
}

func (y yardRepo) ListMovements(_ context.Context, blockTypeID int64, limit int) ([]yard.Movement, error) {
	st, done := y.read()
	defer done()
	out := []yard.Movement{}
	for _, m := range st.movements {
		if blockTypeID == 0 || m.BlockTypeID == blockTypeID {
			m.BlockTypeName = st.blockTypes[m.BlockTypeID].Name
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (y yardRepo) MovementTotals(context.Context) (map[int64]int64, error) {
	st, done := y.read()
	defer done()
	out := map[int64]int64{}
	for _, m := range st.movements {
		out[m.BlockTypeID] += m.Quantity
	}
	return out, nil
}

/* Batches */

type batchRepo struct{ *repos }

func (b batchRepo) Create(_ context.Context, batch *production.Batch) error {
	st, done := b.write()
	defer done()
	for _, x := range st.batches {
		if x.Code == batch.Code {
			return conflict("batch code %s", batch.Code)
		}
	}
	batch.ID = st.nextID("production_batches")
	batch.CreatedAt = b.s.now()
	stored := *batch
	stored.Materials = slices.Clone(batch.Materials)
	stored.Workers = slices.Clone(batch.Workers)
	st.batches = append(st.batches, stored)
	return nil
}

func (b batchRepo) List(_ context.Context, limit int) ([]production.Batch, error) {
	st, done := b.read()
	defer done()
	out := make([]production.Batch, 0, len(st.batches))
	for _, x := range st.batches {
		x.Materials = slices.Clone(x.Materials)
		x.Workers = slices.Clone(x.Workers)
		out = append(out, x)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (b batchRepo) Totals(_ context.Context, since time.Time) (int64, decimal.Decimal, error) {
	st, done := b.read()
	defer done()
	var units int64
	cost := decimal.Zero
	for _, x := range st.batches {
		if !x.Date.Before(since) {
			units += x.TotalUnits
			cost = cost.Add(x.TotalCost)
		}
	}
	return units, cost, nil
}

/* Purchases */

type purchaseRepo struct{ *repos }

func (p purchaseRepo) CreateSupplier(_ context.Context, s *purchases.Supplier) error {
	st, done := p.write()
	defer done()
	s.ID = st.nextID("suppliers")
	s.CreatedAt = p.s.now()
	st.suppliers[s.ID] = *s
	return nil
}

func (p purchaseRepo) GetSupplier(_ context.Context, id int64) (*purchases.Supplier, error) {
	st, done := p.read()
	defer done()
	s, ok := st.suppliers[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (p purchaseRepo) ListSuppliers(context.Context) ([]purchases.Supplier, error) {
	st, done := p.read()
	defer done()
	out := []purchases.Supplier{}
	for _, s := range st.suppliers {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (p purchaseRepo) Create(_ context.Context, x *purchases.Purchase) error {
	st, done := p.write()
	defer done()
	x.ID = st.nextID("raw_material_purchases")
	x.CreatedAt = p.s.now()
	st.purchases = append(st.purchases, *x)
	return nil
}

func (p purchaseRepo) List(_ context.Context, limit int) ([]purchases.Purchase, error) {
	st, done := p.read()
	defer done()
	out := slices.Clone(st.purchases)
	if out == nil {
		out = []purchases.Purchase{}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (p purchaseRepo) TotalSince(_ context.Context, since time.Time) (decimal.Decimal, error) {
	st, done := p.read()
	defer done()
	total := decimal.Zero
	for _, x := range st.purchases {
		if !x.Date.Before(since) {
			total = total.Add(x.TotalPrice)
		}
	}
	return total, nil
}

/* Sales */

type salesRepo struct{ *repos }

func (s salesRepo) CreateClient(_ context.Context, c *sales.Client) error {
	st, done := s.write()
	defer done()
	c.ID = st.nextID("clients")
	c.CreatedAt = s.s.now()
	st.clients[c.ID] = *c
	return nil
}

func (s salesRepo) GetClient(_ context.Context, id int64) (*sales.Client, error) {
	st, done := s.read()
	defer done()
	c, ok := st.clients[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s salesRepo) ListClients(context.Context) ([]sales.Client, error) {
	st, done := s.read()
	defer done()
	out := []sales.Client{}
	for _, c := range st.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s salesRepo) CountClients(context.Context) (int, error) {
	st, done := s.read()
	defer done()
	return len(st.clients), nil
}

func (s salesRepo) CreateOrder(_ context.Context, o *sales.Order) error {
	st, done := s.write()
	defer done()
	for _, x := range st.orders {
		if x.Code == o.Code {
			return conflict("order code %s", o.Code)
		}
	}
	o.ID = st.nextID("orders")
	o.CreatedAt = s.s.now()
	for i := range o.Lines {
		o.Lines[i].ID = st.nextID("order_lines")
	}
	stored := *o
	stored.Lines = slices.Clone(o.Lines)
	stored.Dispatch = nil
	st.orders[o.ID] = stored
	return nil
}

func (s salesRepo) order(st *state, o sales.Order) sales.Order {
	o.Lines = slices.Clone(o.Lines)
	if d, ok := st.dispatches[o.ID]; ok {
		o.Dispatch = &d
	}
	return o
}

func (s salesRepo) GetOrder(_ context.Context, id int64) (*sales.Order, error) {
	st, done := s.read()
	defer done()
	o, ok := st.orders[id]
	if !ok {
		return nil, nil
	}
	return ptr(s.order(st, o)), nil
}

func (s salesRepo) GetOrderForUpdate(ctx context.Context, id int64) (*sales.Order, error) {
	return s.GetOrder(ctx, id)
}

func (s salesRepo) ListOrders(_ context.Context, limit int) ([]sales.Order, error) {
	st, done := s.read()
	defer done()
	out := []sales.Order{}
	for _, o := range st.orders {
		out = append(out, s.order(st, o))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s salesRepo) SetOrderStatus(_ context.Context, id int64, status sales.Status) error {
	st, done := s.write()
	defer done()
	o, ok := st.orders[id]
	if !ok {
		return nil
	}
	o.Status = status
	st.orders[id] = o
	return nil
}

func (s salesRepo) SalesTotalSince(_ context.Context, since time.Time) (decimal.Decimal, error) {
	st, done := s.read()
	defer done()
	total := decimal.Zero
	for _, o := range st.orders {
		if o.Status.Fulfilled() && !o.Date.Before(since) {
			total = total.Add(o.TotalAmount)
		}
	}
	return total, nil
}

func (s salesRepo) CreateDispatch(_ context.Context, d *sales.Dispatch) error {
	st, done := s.write()
	defer done()
	if _, ok := st.dispatches[d.OrderID]; ok {
		return conflict("dispatch for order %d", d.OrderID)
	}
	d.ID = st.nextID("dispatches")
	d.CreatedAt = s.s.now()
	st.dispatches[d.OrderID] = *d
	return nil
}

func (s salesRepo) GetDispatch(_ context.Context, orderID int64) (*sales.Dispatch, error) {
	st, done := s.read()
	defer done()
	d, ok := st.dispatches[orderID]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

/* Workers */

type workerRepo struct{ *repos }

func (w workerRepo) Create(_ context.Context, x *workers.Worker) error {
	st, done := w.write()
	defer done()
	for _, y := range st.workers {
		if strings.EqualFold(y.DNI, x.DNI) {
			return conflict("worker DNI %s", x.DNI)
		}
	}
	x.ID = st.nextID("workers")
	x.CreatedAt = w.s.now()
	x.UpdatedAt = x.CreatedAt
	st.workers[x.ID] = *x
	return nil
}

func (w workerRepo) Get(_ context.Context, id int64) (*workers.Worker, error) {
	st, done := w.read()
	defer done()
	x, ok := st.workers[id]
	if !ok {
		return nil, nil
	}
	return &x, nil
}

func (w workerRepo) GetByDNI(_ context.Context, dni string) (*workers.Worker, error) {
	st, done := w.read()
	defer done()
	for _, x := range st.workers {
		if strings.EqualFold(x.DNI, dni) {
			return ptr(x), nil
		}
	}
	return nil, nil
}

func (w workerRepo) List(_ context.Context, onlyActive bool) ([]workers.Worker, error) {
	st, done := w.read()
	defer done()
	out := []workers.Worker{}
	for _, x := range st.workers {
		if x.Active || !onlyActive {
			out = append(out, x)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName() < out[j].FullName() })
	return out, nil
}

func (w workerRepo) SetActive(_ context.Context, id int64, active bool) (*workers.Worker, error) {
	st, done := w.write()
	defer done()
	x, ok := st.workers[id]
	if !ok {
		return nil, nil
	}
	x.Active = active
	x.UpdatedAt = w.s.now()
	st.workers[id] = x
	return &x, nil
}

func (w workerRepo) CountActive(context.Context) (int, error) {
	st, done := w.read()
	defer done()
	n := 0
	for _, x := range st.workers {
		if x.Active {
			n++
		}
	}
	return n, nil
}
