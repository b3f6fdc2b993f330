package ledger

import (
	"context"
	"time"

	"github.com/Spok95/block-plant/internal/domain/catalog"
	"github.com/Spok95/block-plant/internal/domain/materials"
	"github.com/Spok95/block-plant/internal/domain/production"
	"github.com/Spok95/block-plant/internal/domain/purchases"
	"github.com/Spok95/block-plant/internal/domain/sales"
	"github.com/Spok95/block-plant/internal/domain/workers"
	"github.com/Spok95/block-plant/internal/domain/yard"
	"github.com/shopspring/decimal"
)

// Repos has the same nil-on-missing contract as the postgres repos:
// a lookup that finds nothing returns (nil, nil).
type Repos interface {
	Materials() MaterialRepo
	Catalog() CatalogRepo
	Yard() YardRepo
	Batches() BatchRepo
	Purchases() PurchaseRepo
	Sales() SalesRepo
	Workers() WorkerRepo
	Codes() CodeRepo
}

// Store runs reads directly and writes inside InTx. If fn returns an error
// nothing it did is kept.
type Store interface {
	Repos
	InTx(ctx context.Context, fn func(Repos) error) error
}

type MaterialRepo interface {
	Create(ctx context.Context, m *materials.RawMaterial) error
	Get(ctx context.Context, id int64) (*materials.RawMaterial, error)
	GetForUpdate(ctx context.Context, id int64) (*materials.RawMaterial, error)
	GetByName(ctx context.Context, name string) (*materials.RawMaterial, error)
	List(ctx context.Context) ([]materials.RawMaterial, error)
	ListLowStock(ctx context.Context) ([]materials.RawMaterial, error)
	SetStockAndPrice(ctx context.Context, id int64, stock, avg decimal.Decimal) error
	Debit(ctx context.Context, id int64, qty decimal.Decimal) (bool, error)
}

type CatalogRepo interface {
	CreateBlockType(ctx context.Context, bt *catalog.BlockType) error
	GetBlockType(ctx context.Context, id int64) (*catalog.BlockType, error)
	GetBlockTypeByName(ctx context.Context, name string) (*catalog.BlockType, error)
	ListBlockTypes(ctx context.Context, onlyActive bool) ([]catalog.BlockType, error)
	CountBlockTypes(ctx context.Context, onlyActive bool) (int, error)
	SetBlockTypeActive(ctx context.Context, id int64, active bool) (*catalog.BlockType, error)
	ActiveFormulation(ctx context.Context, blockTypeID int64) (*catalog.Formulation, error)
	SaveFormulation(ctx context.Context, f *catalog.Formulation) error
}

type YardRepo interface {
	GetForUpdate(ctx context.Context, blockTypeID int64) (*yard.Stock, error)
	List(ctx context.Context) ([]yard.Stock, error)
	Credit(ctx context.Context, blockTypeID, qty int64) (int64, error)
	Debit(ctx context.Context, blockTypeID, qty int64) (bool, error)
	TotalUnits(ctx context.Context) (int64, error)
	AppendMovement(ctx context.Context, m *yard.Movement) error
	ListMovements(ctx context.Context, blockTypeID int64, limit int) ([]yard.Movement, error)
	MovementTotals(ctx context.Context) (map[int64]int64, error)
}

type BatchRepo interface {
	Create(ctx context.Context, b *production.Batch) error
	List(ctx context.Context, limit int) ([]production.Batch, error)
	Totals(ctx context.Context, since time.Time) (int64, decimal.Decimal, error)
}

type PurchaseRepo interface {
	CreateSupplier(ctx context.Context, s *purchases.Supplier) error
	GetSupplier(ctx context.Context, id int64) (*purchases.Supplier, error)
	ListSuppliers(ctx context.Context) ([]purchases.Supplier, error)
	Create(ctx context.Context, p *purchases.Purchase) error
	List(ctx context.Context, limit int) ([]purchases.Purchase, error)
	TotalSince(ctx context.Context, since time.Time) (decimal.Decimal, error)
}

type SalesRepo interface {
	CreateClient(ctx context.Context, c *sales.Client) error
	GetClient(ctx context.Context, id int64) (*sales.Client, error)
	ListClients(ctx context.Context) ([]sales.Client, error)
	CountClients(ctx context.Context) (int, error)
	CreateOrder(ctx context.Context, o *sales.Order) error
	GetOrder(ctx context.Context, id int64) (*sales.Order, error)
	GetOrderForUpdate(ctx context.Context, id int64) (*sales.Order, error)
	ListOrders(ctx context.Context, limit int) ([]sales.Order, error)
	SetOrderStatus(ctx context.Context, id int64, st sales.Status) error
	SalesTotalSince(ctx context.Context, since time.Time) (decimal.Decimal, error)
	CreateDispatch(ctx context.Context, d *sales.Dispatch) error
	GetDispatch(ctx context.Context, orderID int64) (*sales.Dispatch, error)
}

type WorkerRepo interface {
	Create(ctx context.Context, w *workers.Worker) error
	Get(ctx context.Context, id int64) (*workers.Worker, error)
	GetByDNI(ctx context.Context, dni string) (*workers.Worker, error)
	List(ctx context.Context, onlyActive bool) ([]workers.Worker, error)
	SetActive(ctx context.Context, id int64, active bool) (*workers.Worker, error)
	CountActive(ctx context.Context) (int, error)
}

// CodeRepo hands out per-day counters for human readable document codes.
type CodeRepo interface {
	Next(ctx context.Context, prefix string, day time.Time) (int, error)
}
