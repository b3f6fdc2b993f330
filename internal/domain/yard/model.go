package yard

import "time"

type MoveType string

const (
	MoveInProduction MoveType = "IN_PRODUCTION"
	MoveOutDispatch  MoveType = "OUT_DISPATCH"
	MoveAdjustment   MoveType = "ADJUSTMENT"
)

// Stock is the finished-goods quantity of one block type waiting in the yard.
type Stock struct {
	BlockTypeID     int64     `json:"block_type_id"`
	BlockTypeName   string    `json:"block_type_name"`
	CurrentQuantity int64     `json:"current_quantity"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Movement is one immutable entry of the yard kardex. Quantity is signed.
type Movement struct {
	ID            int64     `json:"id"`
	BlockTypeID   int64     `json:"block_type_id"`
	BlockTypeName string    `json:"block_type_name"`
	Type          MoveType  `json:"type"`
	Quantity      int64     `json:"quantity"`
	Reference     string    `json:"reference"`
	CreatedAt     time.Time `json:"created_at"`
}
