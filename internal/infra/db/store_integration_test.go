//go:build integration

package db

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Spok95/block-plant/internal/domain/catalog"
	"github.com/Spok95/block-plant/internal/domain/materials"
	"github.com/Spok95/block-plant/internal/domain/production"
	"github.com/Spok95/block-plant/internal/domain/purchases"
	"github.com/Spok95/block-plant/internal/domain/sales"
	"github.com/Spok95/block-plant/internal/ledger"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pg, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("plant"),
		postgres.WithUsername("plant"),
		postgres.WithPassword("plant"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, pg)
	require.NoError(t, err)

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := Connect(ctx, dsn, 10)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, Migrate(ctx, pool))
	return pool
}

func TestStore_EndToEnd(t *testing.T) {
	ctx := context.Background()
	pool := newPool(t)
	day := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	eng := ledger.New(NewStore(pool), ledger.WithClock(func() time.Time { return day.Add(9 * time.Hour) }))

	cement, err := eng.CreateMaterial(ctx, ledger.MaterialInput{
		Name: "Cement", Unit: materials.UnitKg, OpeningStock: d("8500"), OpeningPrice: d("0.14"), MinStockAlert: d("1000"),
	})
	require.NoError(t, err)
	_, err = eng.CreateMaterial(ctx, ledger.MaterialInput{Name: "CEMENT", Unit: materials.UnitKg})
	require.ErrorIs(t, err, ledger.ErrConflict)

	sup, err := eng.CreateSupplier(ctx, purchases.Supplier{Name: "Cementos Sur"})
	require.NoError(t, err)
	res, err := eng.ReceivePurchase(ctx, ledger.PurchaseInput{
		Date: day, SupplierID: sup.ID, MaterialID: cement.ID, InvoiceNumber: "F-1",
		Quantity: d("6000"), UnitPrice: d("0.20"),
	})
	require.NoError(t, err)
	assert.Equal(t, "0.1648", res.Material.AverageUnitPrice.StringFixed(4))

	bt, err := eng.CreateBlockType(ctx, ledger.BlockTypeInput{
		Name:  "Block 20",
		Items: []catalog.FormulationItem{{MaterialID: cement.ID, KgPerUnit: d("1.5")}},
	})
	require.NoError(t, err)
	w, err := eng.CreateWorker(ctx, ledger.WorkerInput{DNI: "123A", FirstName: "Ana"})
	require.NoError(t, err)

	b, err := eng.CreateProductionBatch(ctx, ledger.ProductionInput{
		Date: day, Shift: production.ShiftMorning, BlockTypeID: bt.BlockType.ID,
		Workers: []production.WorkerOutput{{WorkerID: w.ID, Units: 800}},
	})
	require.NoError(t, err)
	assert.Equal(t, "LOTE-20241001-0001", b.Code)

	// a rejected batch must leave stock untouched
	_, err = eng.CreateProductionBatch(ctx, ledger.ProductionInput{
		Date: day, Shift: production.ShiftMorning, BlockTypeID: bt.BlockType.ID,
		Workers: []production.WorkerOutput{{WorkerID: w.ID, Units: 100000}},
	})
	require.ErrorIs(t, err, ledger.ErrInsufficientStock)
	m, err := NewStore(pool).Materials().Get(ctx, cement.ID)
	require.NoError(t, err)
	assert.True(t, m.CurrentStock.Equal(d("13300")), "stock %s", m.CurrentStock)

	c, err := eng.CreateClient(ctx, sales.Client{Name: "Obras Norte"})
	require.NoError(t, err)
	o, err := eng.CreateOrder(ctx, ledger.OrderInput{Date: day, ClientID: c.ID, Lines: []ledger.OrderLineInput{
		{BlockTypeID: bt.BlockType.ID, Quantity: 300, UnitPrice: d("0.85")},
		{BlockTypeID: bt.BlockType.ID, Quantity: 200, UnitPrice: d("0.80")},
	}})
	require.NoError(t, err)

	got, err := eng.DispatchOrder(ctx, ledger.DispatchInput{
		OrderID: o.ID, WorkerID: w.ID, GrossWeightKg: d("16000"), TareWeightKg: d("6000"),
	})
	require.NoError(t, err)
	assert.True(t, got.Dispatch.Ticket.NetWeightKg.Equal(d("10000")))

	stored, err := eng.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, sales.StatusDispatched, stored.Status)
	require.NotNil(t, stored.Dispatch)
	assert.Len(t, stored.Lines, 2)

	_, err = eng.AdjustYardStock(ctx, ledger.AdjustmentInput{BlockTypeID: bt.BlockType.ID, Delta: -50, Reason: "breakage"})
	require.NoError(t, err)

	stock, err := eng.YardStock(ctx)
	require.NoError(t, err)
	require.Len(t, stock, 1)
	assert.Equal(t, int64(250), stock[0].CurrentQuantity)

	mismatches, err := eng.Reconcile(ctx)
	require.NoError(t, err)
	assert.Empty(t, mismatches)

	dash, err := eng.Dashboard(ctx)
	require.NoError(t, err)
	assert.True(t, dash.SalesTotal.Equal(d("415")))
	assert.Equal(t, int64(800), dash.ProducedUnits)
	assert.Len(t, dash.RecentMovements, 4)
}

func TestStore_ConcurrentDispatchesCannotOversell(t *testing.T) {
	ctx := context.Background()
	pool := newPool(t)
	day := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	eng := ledger.New(NewStore(pool))

	cement, err := eng.CreateMaterial(ctx, ledger.MaterialInput{
		Name: "Cement", Unit: materials.UnitKg, OpeningStock: d("100000"), OpeningPrice: d("0.1"),
	})
	require.NoError(t, err)
	bt, err := eng.CreateBlockType(ctx, ledger.BlockTypeInput{
		Name: "Block 20", Items: []catalog.FormulationItem{{MaterialID: cement.ID, KgPerUnit: d("1")}},
	})
	require.NoError(t, err)
	w, err := eng.CreateWorker(ctx, ledger.WorkerInput{DNI: "1", FirstName: "Ana"})
	require.NoError(t, err)
	_, err = eng.CreateProductionBatch(ctx, ledger.ProductionInput{
		Date: day, Shift: production.ShiftMorning, BlockTypeID: bt.BlockType.ID,
		Workers: []production.WorkerOutput{{WorkerID: w.ID, Units: 800}},
	})
	require.NoError(t, err)
	c, err := eng.CreateClient(ctx, sales.Client{Name: "Obras"})
	require.NoError(t, err)

	const n = 4
	orders := make([]int64, n)
	for i := range orders {
		o, err := eng.CreateOrder(ctx, ledger.OrderInput{Date: day, ClientID: c.ID, Lines: []ledger.OrderLineInput{
			{BlockTypeID: bt.BlockType.ID, Quantity: 300, UnitPrice: d("1")},
		}})
		require.NoError(t, err)
		orders[i] = o.ID
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i, id := range orders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = eng.DispatchOrder(ctx, ledger.DispatchInput{
				OrderID: id, WorkerID: w.ID, GrossWeightKg: d("9000"), TareWeightKg: d("6000"),
			})
		}()
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ledger.ErrInsufficientYardStock)
	}
	assert.Equal(t, 2, ok)

	stock, err := eng.YardStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(200), stock[0].CurrentQuantity)

	mismatches, err := eng.Reconcile(ctx)
	require.NoError(t, err)
	assert.Empty(t, mismatches)
}
