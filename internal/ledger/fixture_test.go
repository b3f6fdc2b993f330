package ledger_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Spok95/block-plant/internal/domain/catalog"
	"github.com/Spok95/block-plant/internal/domain/materials"
	"github.com/Spok95/block-plant/internal/domain/purchases"
	"github.com/Spok95/block-plant/internal/domain/sales"
	"github.com/Spok95/block-plant/internal/domain/workers"
	"github.com/Spok95/block-plant/internal/infra/memstore"
	"github.com/Spok95/block-plant/internal/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	ctx      context.Context
	store    *memstore.Store
	eng      *ledger.Engine
	rec      *fakeRecorder
	cement   *materials.RawMaterial
	sand     *materials.RawMaterial
	additive *materials.RawMaterial
	block    catalog.BlockType
	ana      *workers.Worker
	luis     *workers.Worker
	supplier *purchases.Supplier
	client   *sales.Client
}

// newFixture seeds a plant with one block type: 1.5 kg cement, 3 kg sand and
// 0.01 kg additive per unit.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{ctx: context.Background(), store: memstore.New(), rec: &fakeRecorder{}}
	f.eng = ledger.New(f.store,
		ledger.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		ledger.WithRecorder(f.rec),
		ledger.WithClock(func() time.Time { return day }),
	)

	f.cement = f.material(t, "Cement", "8500", "0.14", "1000")
	f.sand = f.material(t, "Sand", "30000", "0.02", "5000")
	f.additive = f.material(t, "Additive", "50", "2", "10")

	bt, err := f.eng.CreateBlockType(f.ctx, ledger.BlockTypeInput{
		Name:       "Block 20",
		Dimensions: "20x20x40",
		Items: []catalog.FormulationItem{
			{MaterialID: f.cement.ID, KgPerUnit: d("1.5")},
			{MaterialID: f.sand.ID, KgPerUnit: d("3")},
			{MaterialID: f.additive.ID, KgPerUnit: d("0.01")},
		},
	})
	require.NoError(t, err)
	f.block = bt.BlockType

	f.ana, err = f.eng.CreateWorker(f.ctx, ledger.WorkerInput{DNI: "12345678a", FirstName: "Ana", LastName: "Ruiz"})
	require.NoError(t, err)
	f.luis, err = f.eng.CreateWorker(f.ctx, ledger.WorkerInput{DNI: "87654321B", FirstName: "Luis", Role: workers.RoleDriver})
	require.NoError(t, err)

	f.supplier, err = f.eng.CreateSupplier(f.ctx, purchases.Supplier{Name: "Cementos Sur", CIF: "B123"})
	require.NoError(t, err)
	f.client, err = f.eng.CreateClient(f.ctx, sales.Client{Name: "Obras Norte"})
	require.NoError(t, err)
	return f
}

func (f *fixture) material(t *testing.T, name, stock, avg, alert string) *materials.RawMaterial {
	t.Helper()
	m, err := f.eng.CreateMaterial(f.ctx, ledger.MaterialInput{
		Name:          name,
		Unit:          materials.UnitKg,
		MinStockAlert: d(alert),
		OpeningStock:  d(stock),
		OpeningPrice:  d(avg),
	})
	require.NoError(t, err)
	return m
}

func (f *fixture) stockOf(t *testing.T, id int64) decimal.Decimal {
	t.Helper()
	m, err := f.store.Materials().Get(f.ctx, id)
	require.NoError(t, err)
	require.NotNil(t, m)
	return m.CurrentStock
}

func (f *fixture) yardOf(t *testing.T, blockTypeID int64) int64 {
	t.Helper()
	s, err := f.store.Yard().GetForUpdate(f.ctx, blockTypeID)
	require.NoError(t, err)
	if s == nil {
		return 0
	}
	return s.CurrentQuantity
}

func (f *fixture) produce(t *testing.T, units ...int64) {
	t.Helper()
	in := ledger.ProductionInput{Date: day, Shift: "MORNING", BlockTypeID: f.block.ID, CreatedByID: 1}
	ws := []*workers.Worker{f.ana, f.luis}
	for i, u := range units {
		in.Workers = append(in.Workers, workerUnits(ws[i].ID, u))
	}
	_, err := f.eng.CreateProductionBatch(f.ctx, in)
	require.NoError(t, err)
}

type fakeRecorder struct {
	ops      []string
	failed   int
	lowStock int
}

func (r *fakeRecorder) ObserveTx(op string, err error, _ time.Duration) {
	r.ops = append(r.ops, op)
	if err != nil {
		r.failed++
	}
}

func (r *fakeRecorder) SetLowStock(n int) { r.lowStock = n }
