package orderControllers

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bimalmithran/storefront-api/catalog"
	cartControllers "github.com/bimalmithran/storefront-api/controllers/cart"
	"github.com/bimalmithran/storefront-api/models"
)

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrOrderNotFound = errors.New("order not found")
)

// CheckoutInfo carries the contact and address fields the caller supplies
// at checkout. Payment itself is out of scope; the method is recorded as-is.
type CheckoutInfo struct {
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	BillingAddress  string
	ShippingAddress string
	PaymentMethod   string
	Notes           string
}

// generateOrderNumber yields a human-referenceable, collision-free number.
// Example: 20250908130500-<uuid4>
func generateOrderNumber() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}

// PlaceOrderFromCart converts a non-empty cart into an order inside a
// single transaction: per-line conditional stock decrement, order snapshot,
// cart clear. Any failure rolls the whole attempt back, leaving stock and
// cart exactly as before.
func PlaceOrderFromCart(db *gorm.DB, cartID uint, info CheckoutInfo) (*models.Order, error) {
	defer cartControllers.Lock(cartID)()

	var order *models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.Preload("Items").First(&cart, cartID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return cartControllers.ErrCartNotFound
			}
			return err
		}
		if len(cart.Items) == 0 {
			return ErrEmptyCart
		}

		orderItems := make([]models.OrderItem, 0, len(cart.Items))
		for _, item := range cart.Items {
			// Validates against live stock and decrements in one
			// conditional write; a shortfall on any line aborts the
			// transaction before an order row becomes visible.
			if err := catalog.DecrementStock(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
			orderItems = append(orderItems, models.OrderItem{
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				UnitPrice:   item.UnitPrice,
				Quantity:    item.Quantity,
			})
		}

		order = &models.Order{
			OrderNumber:     generateOrderNumber(),
			CustomerID:      cart.CustomerID,
			CustomerName:    info.CustomerName,
			CustomerEmail:   info.CustomerEmail,
			CustomerPhone:   info.CustomerPhone,
			BillingAddress:  info.BillingAddress,
			ShippingAddress: info.ShippingAddress,
			PaymentMethod:   info.PaymentMethod,
			Notes:           info.Notes,
			Items:           orderItems,
			Subtotal:        cart.Subtotal,
			Tax:             cart.Tax,
			Shipping:        cart.Shipping,
			Discount:        cart.Discount,
			Total:           cart.Total,
			Status:          models.OrderStatusPending,
			PaymentStatus:   models.PaymentStatusPending,
			CreatedAt:       time.Now(),
		}
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		// Empty the source cart; the row itself survives for reuse.
		if err := tx.Where("cart_id = ?", cart.CartID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Cart{}).Where("cart_id = ?", cart.CartID).Updates(map[string]interface{}{
			"subtotal": 0, "tax": 0, "shipping": 0, "discount": 0, "total": 0,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ListCustomerOrders returns a customer's orders newest-first, paginated.
func ListCustomerOrders(db *gorm.DB, customerID uint, page, limit int) ([]models.Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := db.Model(&models.Order{}).Where("customer_id = ?", customerID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := db.Preload("Items").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&orders).Error
	return orders, total, err
}

// GetCustomerOrder returns one order, only if the customer owns it.
func GetCustomerOrder(db *gorm.DB, customerID uint, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := db.Preload("Items").
		Where("id = ? AND customer_id = ?", orderID, customerID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}
