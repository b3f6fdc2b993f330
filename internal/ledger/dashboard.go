package ledger

import (
	"context"
	"time"

	"github.com/Spok95/block-plant/internal/domain/materials"
	"github.com/Spok95/block-plant/internal/domain/yard"
	"github.com/shopspring/decimal"
)

type Dashboard struct {
	Since            time.Time               `json:"since"`
	PurchasesTotal   decimal.Decimal         `json:"purchases_total"`
	SalesTotal       decimal.Decimal         `json:"sales_total"`
	ProducedUnits    int64                   `json:"produced_units"`
	ProductionCost   decimal.Decimal         `json:"production_cost"`
	YardUnits        int64                   `json:"yard_units"`
	ActiveWorkers    int                     `json:"active_workers"`
	Clients          int                     `json:"clients"`
	ActiveBlockTypes int                     `json:"active_block_types"`
	RecentMovements  []yard.Movement         `json:"recent_movements"`
	LowStock         []materials.RawMaterial `json:"low_stock"`
}

// Dashboard aggregates the trailing window without taking locks.
func (e *Engine) Dashboard(ctx context.Context) (*Dashboard, error) {
	since := e.now().In(e.loc).AddDate(0, 0, -e.windowDays)

	d := Dashboard{Since: since}
	err := e.view("dashboard", func(r Repos) error {
		var err error
		if d.PurchasesTotal, err = r.Purchases().TotalSince(ctx, since); err != nil {
			return err
		}
		if d.SalesTotal, err = r.Sales().SalesTotalSince(ctx, since); err != nil {
			return err
		}
		if d.ProducedUnits, d.ProductionCost, err = r.Batches().Totals(ctx, since); err != nil {
			return err
		}
		if d.YardUnits, err = r.Yard().TotalUnits(ctx); err != nil {
			return err
		}
		if d.ActiveWorkers, err = r.Workers().CountActive(ctx); err != nil {
			return err
		}
		if d.Clients, err = r.Sales().CountClients(ctx); err != nil {
			return err
		}
		if d.ActiveBlockTypes, err = r.Catalog().CountBlockTypes(ctx, true); err != nil {
			return err
		}
		if d.RecentMovements, err = r.Yard().ListMovements(ctx, 0, e.recentMovements); err != nil {
			return err
		}
		d.LowStock, err = r.Materials().ListLowStock(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.rec.SetLowStock(len(d.LowStock))
	return &d, nil
}
