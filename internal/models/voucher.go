package models

import "time"

// Voucher discount types.
const (
	VoucherPercent = "percent"
	VoucherFixed   = "fixed"
)

// Voucher is a discount code with a redemption quota and expiry.
type Voucher struct {
	BaseModel
	Code          string    `gorm:"uniqueIndex" json:"code"`
	Type          string    `json:"type"`
	Value         float64   `json:"value"`
	MinOrderValue float64   `json:"min_order_value"`
	ExpiresAt     time.Time `json:"expires_at"`
	IsActive      bool      `json:"is_active"`
	Quantity      int       `json:"quantity"`
	IsUsed        bool      `json:"is_used"`
}

// Discount computes the discount amount for the given order total. It does
// not check eligibility; callers validate first.
func (v *Voucher) Discount(totalPrice float64) float64 {
	var discount float64
	switch v.Type {
	case VoucherPercent:
		discount = v.Value / 100 * totalPrice
	case VoucherFixed:
		discount = v.Value
	}
	if discount > totalPrice {
		discount = totalPrice
	}
	return discount
}
