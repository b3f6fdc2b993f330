package purchases

import (
	"time"

	"github.com/shopspring/decimal"
)

type Supplier struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	CIF         string    `json:"cif"`
	ContactInfo string    `json:"contact_info"`
	CreatedAt   time.Time `json:"created_at"`
}

// Purchase is a raw-material receipt. It is immutable once stored.
type Purchase struct {
	ID            int64           `json:"id"`
	SupplierID    int64           `json:"supplier_id"`
	MaterialID    int64           `json:"material_id"`
	Date          time.Time       `json:"date"`
	InvoiceNumber string          `json:"invoice_number"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	CreatedAt     time.Time       `json:"created_at"`
}
