package models

import (
	"time"

	"github.com/google/uuid"
)

// CheckoutIntent is a short-lived snapshot of a prospective order. It is
// held in redis under a TTL, never in postgres: expiry is enforced by the
// store, and an expired intent is indistinguishable from a missing one.
type CheckoutIntent struct {
	ID            uuid.UUID      `json:"id"`
	UserID        uuid.UUID      `json:"user_id"`
	Lines         []CheckoutLine `json:"lines"`
	TotalQuantity int            `json:"total_quantity"`
	Subtotal      float64        `json:"subtotal"`
	Discount      float64        `json:"discount"`
	FinalPrice    float64        `json:"final_price"`
	VoucherCode   string         `json:"voucher_code"`
	VoucherType   string         `json:"voucher_type"`
	VoucherValue  float64        `json:"voucher_value"`
	CreatedAt     time.Time      `json:"created_at"`
}

// CheckoutLine captures one selected cart line at checkout time.
type CheckoutLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Size      string    `json:"size"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	OldPrice  float64   `json:"old_price"`
	Images    []string  `json:"images"`
}
