package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/Spok95/block-plant/internal/domain/materials"
	"github.com/Spok95/block-plant/internal/domain/purchases"
	"github.com/shopspring/decimal"
)

type PurchaseInput struct {
	Date          time.Time
	SupplierID    int64
	MaterialID    int64
	InvoiceNumber string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
}

type PurchaseResult struct {
	Purchase purchases.Purchase    `json:"purchase"`
	Material materials.RawMaterial `json:"material"`
}

func (in PurchaseInput) validate() error {
	switch {
	case !in.Quantity.IsPositive():
		return ErrInvalidQuantity
	case in.UnitPrice.IsNegative():
		return validation("unit price must be >= 0")
	case strings.TrimSpace(in.InvoiceNumber) == "":
		return validation("invoice number is required")
	case in.Date.IsZero():
		return validation("purchase date is required")
	}
	return nil
}

// ReceivePurchase books a raw-material purchase and reweights the material's average price.
func (e *Engine) ReceivePurchase(ctx context.Context, in PurchaseInput) (*PurchaseResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	qty := in.Quantity.Round(materials.Scale)
	price := in.UnitPrice.Round(materials.Scale)
	if !qty.IsPositive() {
		return nil, ErrInvalidQuantity
	}

	var res PurchaseResult
	err := e.run(ctx, "receive_purchase", func(r Repos) error {
		s, err := r.Purchases().GetSupplier(ctx, in.SupplierID)
		if err != nil {
			return err
		}
		if s == nil {
			return notFound("supplier", in.SupplierID)
		}

		m, err := r.Materials().GetForUpdate(ctx, in.MaterialID)
		if err != nil {
			return err
		}
		if m == nil {
			return notFound("material", in.MaterialID)
		}
		if err := m.Receive(qty, price); err != nil {
			return validation("%v", err)
		}
		if err := r.Materials().SetStockAndPrice(ctx, m.ID, m.CurrentStock, m.AverageUnitPrice); err != nil {
			return err
		}

		p := purchases.Purchase{
			SupplierID:    s.ID,
			MaterialID:    m.ID,
			Date:          in.Date,
			InvoiceNumber: strings.TrimSpace(in.InvoiceNumber),
			Quantity:      qty,
			UnitPrice:     price,
			TotalPrice:    qty.Mul(price).Round(materials.Scale),
		}
		if err := r.Purchases().Create(ctx, &p); err != nil {
			return err
		}
		res = PurchaseResult{Purchase: p, Material: *m}
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("purchase received",
		"material", res.Material.Name,
		"qty", qty.String(),
		"avg", res.Material.AverageUnitPrice.String(),
	)
	return &res, nil
}

func (e *Engine) ListPurchases(ctx context.Context, limit int) ([]purchases.Purchase, error) {
	var out []purchases.Purchase
	err := e.view("list_purchases", func(r Repos) error {
		var err error
		out, err = r.Purchases().List(ctx, limitOr(limit, 100))
		return err
	})
	return out, err
}

func limitOr(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}
