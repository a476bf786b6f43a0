package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// CartItem is one live cart line. Display fields are captured from the
// product at add time so the cart survives later product edits.
type CartItem struct {
	BaseModel
	UserID    uuid.UUID      `gorm:"type:uuid;index;uniqueIndex:idx_cart_user_product_size" json:"user_id"`
	ProductID uuid.UUID      `gorm:"type:uuid;uniqueIndex:idx_cart_user_product_size" json:"product_id"`
	Product   *Product       `json:"product,omitempty"`
	Size      string         `gorm:"uniqueIndex:idx_cart_user_product_size" json:"size"`
	Quantity  int            `json:"quantity"`
	Name      string         `json:"name"`
	Price     float64        `json:"price"`
	OldPrice  float64        `json:"old_price"`
	Images    pq.StringArray `gorm:"type:text[]" json:"images"`
}
