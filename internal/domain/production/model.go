package production

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

type Shift string

const (
	ShiftMorning   Shift = "MORNING"
	ShiftAfternoon Shift = "AFTERNOON"
	ShiftNight     Shift = "NIGHT"
)

func (s Shift) Valid() bool {
	switch s {
	case ShiftMorning, ShiftAfternoon, ShiftNight:
		return true
	}
	return false
}

// Batch is one production run. It is written once and never updated.
type Batch struct {
	ID            int64           `json:"id"`
	Code          string          `json:"code"`
	Date          time.Time       `json:"date"`
	Shift         Shift           `json:"shift"`
	BlockTypeID   int64           `json:"block_type_id"`
	FormulationID int64           `json:"formulation_id"`
	TotalUnits    int64           `json:"total_units"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	CreatedByID   int64           `json:"created_by_id"`
	Materials     []MaterialCost  `json:"materials"`
	Workers       []WorkerOutput  `json:"workers"`
	CreatedAt     time.Time       `json:"created_at"`
}

// MaterialCost is the cost snapshot of one raw material consumed by a batch,
// valued at the average price in force when it was debited.
type MaterialCost struct {
	MaterialID int64           `json:"material_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Cost       decimal.Decimal `json:"cost"`
}

type WorkerOutput struct {
	WorkerID int64 `json:"worker_id"`
	Units    int64 `json:"units"`
}

// TotalUnits sums the units of all workers. ok is false if any entry is not
// positive or the sum does not fit in an int64.
func TotalUnits(ws []WorkerOutput) (n int64, ok bool) {
	for _, w := range ws {
		if w.Units <= 0 || n > math.MaxInt64-w.Units {
			return 0, false
		}
		n += w.Units
	}
	return n, true
}
