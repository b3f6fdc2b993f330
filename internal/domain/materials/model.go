package materials

import (
	"time"

	"github.com/shopspring/decimal"
)

type Unit string

const (
	UnitKg    Unit = "KG"
	UnitLitre Unit = "LITRE"
	UnitPcs   Unit = "PCS"
)

func (u Unit) Valid() bool {
	switch u {
	case UnitKg, UnitLitre, UnitPcs:
		return true
	}
	return false
}

type RawMaterial struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Unit             Unit            `json:"unit"`
	CurrentStock     decimal.Decimal `json:"current_stock"`
	MinStockAlert    decimal.Decimal `json:"min_stock_alert"`
	AverageUnitPrice decimal.Decimal `json:"average_unit_price"` // weighted average, recomputed on every purchase
	CreatedAt        time.Time       `json:"created_at"`
}
