package models

// User roles.
const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
	RoleAdmin    = "admin"
)

// User represents a storefront account. Staff and admin accounts share the
// same table and are distinguished by Role.
type User struct {
	BaseModel
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `gorm:"uniqueIndex" json:"email"`
	Phone        string `json:"phone"`
	PasswordHash string `json:"-"`
	Role         string `gorm:"default:customer" json:"role"`
	Avatar       string `json:"avatar"`

	// Shipping address. StreetLine presence gates checkout.
	StreetLine string `json:"street_line"`
	Apartment  string `json:"apartment"`
	City       string `json:"city"`
	District   string `json:"district"`
	PostalCode string `json:"postal_code"`

	CartItems []CartItem `json:"cart_items,omitempty"`
	Orders    []Order    `json:"orders,omitempty"`
}

// IsStaff reports whether the user may perform staff-only operations.
func (u *User) IsStaff() bool {
	return u.Role == RoleStaff || u.Role == RoleAdmin
}
