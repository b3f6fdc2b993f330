package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusDispatched Status = "DISPATCHED"
	StatusCompleted  Status = "COMPLETED"
)

// Fulfilled reports whether the order already left the yard.
func (s Status) Fulfilled() bool {
	return s == StatusDispatched || s == StatusCompleted
}

type Client struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CIF       string    `json:"cif"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// Order lines are fixed at creation; only Status changes afterwards.
type Order struct {
	ID          int64           `json:"id"`
	Code        string          `json:"code"`
	ClientID    int64           `json:"client_id"`
	Date        time.Time       `json:"date"`
	Status      Status          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedByID int64           `json:"created_by_id"`
	Lines       []Line          `json:"lines"`
	Dispatch    *Dispatch       `json:"dispatch,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Line struct {
	ID          int64           `json:"id"`
	BlockTypeID int64           `json:"block_type_id"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// UnitsByBlockType sums ordered units per block type.
func (o *Order) UnitsByBlockType() map[int64]int64 {
	out := make(map[int64]int64, len(o.Lines))
	for _, l := range o.Lines {
		out[l.BlockTypeID] += l.Quantity
	}
	return out
}

func (o *Order) TotalUnits() int64 {
	var n int64
	for _, l := range o.Lines {
		n += l.Quantity
	}
	return n
}

type Dispatch struct {
	ID           int64          `json:"id"`
	OrderID      int64          `json:"order_id"`
	DispatchDate time.Time      `json:"dispatch_date"`
	WorkerID     int64          `json:"worker_id"`
	TotalUnits   int64          `json:"total_units"`
	Ticket       WeighingTicket `json:"ticket"`
	CreatedAt    time.Time      `json:"created_at"`
}

type WeighingTicket struct {
	GrossWeightKg decimal.Decimal `json:"gross_weight_kg"`
	TareWeightKg  decimal.Decimal `json:"tare_weight_kg"`
	NetWeightKg   decimal.Decimal `json:"net_weight_kg"`
}

// NewWeighingTicket derives the net weight from gross and tare.
func NewWeighingTicket(gross, tare decimal.Decimal) WeighingTicket {
	return WeighingTicket{GrossWeightKg: gross, TareWeightKg: tare, NetWeightKg: gross.Sub(tare)}
}
