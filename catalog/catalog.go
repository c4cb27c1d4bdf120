// Package catalog is the read side of the product catalog plus the one
// write this core is allowed to make: a conditional stock decrement.
// Everything else about products (CRUD, categories, media) belongs to the
// surrounding application.
package catalog

import (
	"errors"
	"fmt"

	"github.com/bimalmithran/storefront-api/models"
	"gorm.io/gorm"
)

// ErrProductUnavailable covers both a missing product id and a product
// soft-deleted out of the catalog.
var ErrProductUnavailable = errors.New("product is not available")

// InsufficientStockError reports which product ran short during checkout.
type InsufficientStockError struct {
	ProductID uint
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d", e.ProductID)
}

// Get returns the authoritative product record for price/stock checks.
func Get(db *gorm.DB, productID uint) (*models.Product, error) {
	var product models.Product
	if err := db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductUnavailable
		}
		return nil, err
	}
	return &product, nil
}

// DecrementStock subtracts quantity from the product's stock as a single
// conditional update. A plain read-then-subtract loses updates under
// concurrent checkouts; the WHERE guard makes the decrement atomic, so two
// orders racing for the last unit cannot both succeed.
func DecrementStock(tx *gorm.DB, productID uint, quantity int) error {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return InsufficientStockError{ProductID: productID}
	}
	return nil
}
