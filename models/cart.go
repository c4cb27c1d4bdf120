package models

import (
	"fmt"
	"time"
)

type ownerKind string

const (
	ownerGuest    ownerKind = "guest"
	ownerCustomer ownerKind = "customer"
)

// CartOwner identifies who a cart belongs to: either an anonymous guest
// session or an authenticated customer. It is passed explicitly through
// every cart operation instead of living in request-global state.
type CartOwner struct {
	kind       ownerKind
	token      string
	customerID uint
}

func GuestOwner(token string) CartOwner {
	return CartOwner{kind: ownerGuest, token: token}
}

func CustomerOwner(id uint) CartOwner {
	return CartOwner{kind: ownerCustomer, customerID: id}
}

func (o CartOwner) IsGuest() bool { return o.kind == ownerGuest }

// Key is the value stored in carts.owner_key. The unique index on that
// column is what enforces one cart per owner.
func (o CartOwner) Key() string {
	if o.kind == ownerGuest {
		return "guest:" + o.token
	}
	return fmt.Sprintf("customer:%d", o.customerID)
}

// CustomerID returns the owning customer id when the owner is a customer.
func (o CartOwner) CustomerID() (uint, bool) {
	if o.kind == ownerCustomer {
		return o.customerID, true
	}
	return 0, false
}

type Cart struct {
	CartID     uint       `gorm:"primaryKey" json:"cart_id"`
	OwnerKey   string     `gorm:"uniqueIndex" json:"-"` // Enforces ONE cart per owner
	CustomerID *uint      `gorm:"index" json:"customer_id,omitempty"`
	Items      []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	Subtotal   float64    `json:"subtotal"`
	Tax        float64    `json:"tax"`
	Shipping   float64    `json:"shipping"`
	Discount   float64    `json:"discount"`
	Total      float64    `json:"total"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CartID       uint      `gorm:"index" json:"cart_id"`
	ProductID    uint      `json:"product_id"`
	ProductName  string    `json:"product_name"`
	ProductImage string    `json:"product_image"`
	UnitPrice    float64   `json:"unit_price"` // captured at add/update time, not re-fetched on read
	Quantity     int       `json:"quantity"`
	AddedAt      time.Time `json:"added_at"`
}
