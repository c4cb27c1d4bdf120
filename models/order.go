package models

import "time"

type OrderStatus string
type PaymentStatus string

const (
	// Order statuses (typical e-commerce flow)
	OrderStatusPending    OrderStatus = "pending"    // Order placed, awaiting confirmation
	OrderStatusProcessing OrderStatus = "processing" // Confirmed and being prepared
	OrderStatusShipped    OrderStatus = "shipped"    // Out for delivery
	OrderStatusDelivered  OrderStatus = "delivered"  // Customer received the item
	OrderStatusCancelled  OrderStatus = "cancelled"  // Cancelled before shipping
	OrderStatusReturned   OrderStatus = "returned"   // Customer returned the item

	// Payment statuses
	PaymentStatusPending   PaymentStatus = "pending"   // Payment not completed yet
	PaymentStatusCompleted PaymentStatus = "completed" // Payment completed successfully
	PaymentStatusFailed    PaymentStatus = "failed"    // Payment attempt failed
	PaymentStatusRefunded  PaymentStatus = "refunded"  // Money returned to customer
)

type Order struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	OrderNumber     string        `gorm:"uniqueIndex;not null" json:"order_number"`
	CustomerID      *uint         `gorm:"index" json:"customer_id,omitempty"` // nil for guest checkout
	CustomerName    string        `gorm:"not null" json:"customer_name"`
	CustomerEmail   string        `gorm:"not null" json:"customer_email"`
	CustomerPhone   string        `json:"customer_phone,omitempty"`
	BillingAddress  string        `gorm:"not null" json:"billing_address"`
	ShippingAddress string        `gorm:"not null" json:"shipping_address"`
	PaymentMethod   string        `json:"payment_method,omitempty"` // e.g. "card", "cod"
	Notes           string        `json:"notes,omitempty"`
	Items           []OrderItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Subtotal        float64       `json:"subtotal"`
	Tax             float64       `json:"tax"`
	Shipping        float64       `json:"shipping"`
	Discount        float64       `json:"discount"`
	Total           float64       `json:"total"`
	Status          OrderStatus   `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	PaymentStatus   PaymentStatus `gorm:"type:VARCHAR(20);default:'pending'" json:"payment_status"`
	PaidAt          *time.Time    `json:"paid_at,omitempty"`
	ShippedAt       *time.Time    `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time    `json:"delivered_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

// OrderItem is a deep snapshot of a cart line at commit time. It carries no
// foreign key back to products so later catalog changes cannot alter it.
type OrderItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	OrderID     uint    `gorm:"index" json:"order_id"`
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
}
