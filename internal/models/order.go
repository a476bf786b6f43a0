package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Order statuses. The set of terminal statuses is configurable; see
// config.Config.TerminalStatuses.
const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderShipping   = "shipping"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
	OrderReturned   = "returned"
)

// Payment methods and statuses.
const (
	PaymentCOD   = "cod"
	PaymentPayme = "payme"
	PaymentClick = "click"

	PaymentUnpaid   = "unpaid"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
	PaymentFailed   = "failed"
)

type Order struct {
	BaseModel
	UserID      uuid.UUID   `gorm:"type:uuid;index" json:"user_id"`
	User        *User       `json:"user,omitempty"`
	OrderNumber string      `gorm:"uniqueIndex" json:"order_number"`
	Items       []OrderItem `json:"items,omitempty"`

	// Shipping address snapshot taken at order time.
	StreetLine string `json:"street_line"`
	Apartment  string `json:"apartment"`
	City       string `json:"city"`
	District   string `json:"district"`
	PostalCode string `json:"postal_code"`

	TotalQuantity int     `json:"total_quantity"`
	Subtotal      float64 `json:"subtotal"`
	Discount      float64 `json:"discount"`
	ShippingFee   float64 `json:"shipping_fee"`
	FinalPrice    float64 `json:"final_price"`

	// Voucher snapshot; later voucher edits never touch past orders.
	VoucherCode  string  `json:"voucher_code"`
	VoucherType  string  `json:"voucher_type"`
	VoucherValue float64 `json:"voucher_value"`

	PaymentMethod string     `json:"payment_method"`
	PaymentStatus string     `json:"payment_status"`
	Status        string     `json:"status"`
	Note          string     `json:"note"`
	PaidAt        *time.Time `json:"paid_at"`
	DeliveredAt   *time.Time `json:"delivered_at"`
}

// OrderItem is a line snapshot copied from the consumed checkout intent.
type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID      `gorm:"type:uuid;index" json:"order_id"`
	ProductID uuid.UUID      `gorm:"type:uuid" json:"product_id"`
	Name      string         `json:"name"`
	Size      string         `json:"size"`
	Quantity  int            `json:"quantity"`
	Price     float64        `json:"price"`
	OldPrice  float64        `json:"old_price"`
	Images    pq.StringArray `gorm:"type:text[]" json:"images"`
}

// StatusLabel returns the human-readable label used in notifications.
func StatusLabel(status string) string {
	switch status {
	case OrderPending:
		return "is pending confirmation"
	case OrderProcessing:
		return "is being processed"
	case OrderShipping:
		return "is on its way"
	case OrderDelivered:
		return "has been delivered"
	case OrderCancelled:
		return "has been cancelled"
	case OrderReturned:
		return "has been returned"
	}
	return "was updated"
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s string) bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipping, OrderDelivered, OrderCancelled, OrderReturned:
		return true
	}
	return false
}
