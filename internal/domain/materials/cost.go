package materials

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places kept for quantities, prices and costs.
const Scale = 6

var (
	ErrInsufficientStock = errors.New("materials: insufficient stock")
	ErrInvalidQuantity   = errors.New("materials: quantity must be > 0")
	ErrInvalidPrice      = errors.New("materials: unit price must be >= 0")
)

// WeightedAverage returns (stock*avg + qty*price) / (stock+qty).
// When the resulting stock is zero the incoming price becomes the average.
func WeightedAverage(stock, avg, qty, price decimal.Decimal) decimal.Decimal {
	total := stock.Add(qty)
	if total.IsZero() {
		return price.Round(Scale)
	}
	value := stock.Mul(avg).Add(qty.Mul(price))
	return value.DivRound(total, Scale)
}

// Receive books a purchase of qty at price into the material.
func (m *RawMaterial) Receive(qty, price decimal.Decimal) error {
	if !qty.IsPositive() {
		return ErrInvalidQuantity
	}
	if price.IsNegative() {
		return ErrInvalidPrice
	}
	m.AverageUnitPrice = WeightedAverage(m.CurrentStock, m.AverageUnitPrice, qty, price)
	m.CurrentStock = m.CurrentStock.Add(qty)
	return nil
}

// Consume debits qty without touching the average price.
func (m *RawMaterial) Consume(qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return ErrInvalidQuantity
	}
	if m.CurrentStock.LessThan(qty) {
		return ErrInsufficientStock
	}
	m.CurrentStock = m.CurrentStock.Sub(qty)
	return nil
}

// CostOf values qty at the current average price.
func (m *RawMaterial) CostOf(qty decimal.Decimal) decimal.Decimal {
	return qty.Mul(m.AverageUnitPrice).Round(Scale)
}

func (m *RawMaterial) IsLow() bool {
	return m.CurrentStock.LessThanOrEqual(m.MinStockAlert)
}
