package cartControllers

import (
	"errors"
	"math"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bimalmithran/storefront-api/auth"
	"github.com/bimalmithran/storefront-api/catalog"
	"github.com/bimalmithran/storefront-api/models"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrInvalidDiscount = errors.New("discount must not be negative")
	ErrOutOfStock      = errors.New("not enough stock for the requested quantity")
	ErrLineNotFound    = errors.New("product is not in the cart")
	ErrCartNotFound    = errors.New("cart not found")
)

// Pricing is the fixed tax/shipping policy applied to every cart. Real
// tax-jurisdiction and carrier-rate logic live outside this core.
type Pricing struct {
	TaxRate      float64 // fraction of subtotal, e.g. 0.05
	FlatShipping float64 // charged once per non-empty cart
}

var Policy Pricing

// cartLocks serializes mutations per cart so concurrent requests from the
// same owner cannot interleave the recompute-and-save sequence.
var cartLocks sync.Map

// Lock acquires the per-cart mutex and returns its unlock func.
func Lock(cartID uint) func() {
	v, _ := cartLocks.LoadOrStore(cartID, &sync.Mutex{})
	m := v.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// Resolve maps an inbound identity to exactly one cart, creating it on
// first touch. When an authenticated customer also carries a guest session
// token, the guest cart is merged into the customer cart and deleted.
// Returns the session token in use (freshly generated for new guests).
func Resolve(db *gorm.DB, sessionToken string, customerID *uint) (*models.Cart, string, error) {
	if customerID != nil {
		cart, err := findOrCreate(db, models.CustomerOwner(*customerID))
		if err != nil {
			return nil, sessionToken, err
		}
		if sessionToken != "" {
			if err := mergeGuestCart(db, sessionToken, cart); err != nil {
				return nil, sessionToken, err
			}
			if cart, err = Find(db, models.CustomerOwner(*customerID)); err != nil {
				return nil, sessionToken, err
			}
		}
		return cart, sessionToken, nil
	}

	token := sessionToken
	if token == "" {
		token = auth.NewSessionToken()
	}
	cart, err := findOrCreate(db, models.GuestOwner(token))
	return cart, token, err
}

// Find returns the owner's cart with its items, without creating one.
func Find(db *gorm.DB, owner models.CartOwner) (*models.Cart, error) {
	var cart models.Cart
	if err := db.Preload("Items").Where("owner_key = ?", owner.Key()).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	return &cart, nil
}

// findOrCreate is an insert-if-absent keyed by the unique owner_key index,
// not an exists-check followed by an insert. Two first requests racing for
// the same owner end up on the same row.
func findOrCreate(db *gorm.DB, owner models.CartOwner) (*models.Cart, error) {
	cart := models.Cart{OwnerKey: owner.Key()}
	if id, ok := owner.CustomerID(); ok {
		cart.CustomerID = &id
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_key"}},
		DoNothing: true,
	}).Create(&cart).Error; err != nil {
		return nil, err
	}
	return Find(db, owner)
}

// mergeGuestCart folds the guest cart's lines into the customer cart by
// re-running AddItem per line (quantities sum, prices refresh), then
// deletes the guest cart. Re-running against an already-merged or absent
// guest cart is a no-op.
func mergeGuestCart(db *gorm.DB, sessionToken string, customerCart *models.Cart) error {
	guest, err := Find(db, models.GuestOwner(sessionToken))
	if errors.Is(err, ErrCartNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, item := range guest.Items {
		if _, err := AddItem(db, customerCart.CartID, item.ProductID, item.Quantity); err != nil {
			// Resolution never fails: lines whose product has since
			// vanished or run out of stock are dropped.
			if errors.Is(err, ErrOutOfStock) || errors.Is(err, catalog.ErrProductUnavailable) {
				continue
			}
			return err
		}
	}

	if err := db.Where("cart_id = ?", guest.CartID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.Cart{}, guest.CartID).Error
}

// AddItem appends a line or sums quantities into an existing one. The
// line's unit price is refreshed to the product's current effective price.
func AddItem(db *gorm.DB, cartID uint, productID uint, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	defer Lock(cartID)()

	product, err := catalog.Get(db, productID)
	if err != nil {
		return nil, err
	}
	if product.Stock < quantity {
		return nil, ErrOutOfStock
	}

	var item models.CartItem
	err = db.Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error
	switch {
	case err == nil:
		item.Quantity += quantity
		item.UnitPrice = product.EffectivePrice()
		item.AddedAt = time.Now()
		if err := db.Save(&item).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = models.CartItem{
			CartID:       cartID,
			ProductID:    productID,
			ProductName:  product.Name,
			ProductImage: product.Image,
			UnitPrice:    product.EffectivePrice(),
			Quantity:     quantity,
			AddedAt:      time.Now(),
		}
		if err := db.Create(&item).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return refreshTotals(db, cartID)
}

// UpdateItemQuantity sets an existing line to an absolute quantity.
func UpdateItemQuantity(db *gorm.DB, cartID uint, productID uint, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	defer Lock(cartID)()

	var item models.CartItem
	if err := db.Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLineNotFound
		}
		return nil, err
	}

	product, err := catalog.Get(db, productID)
	if err != nil {
		return nil, err
	}
	if product.Stock < quantity {
		return nil, ErrOutOfStock
	}

	item.Quantity = quantity
	item.AddedAt = time.Now()
	if err := db.Save(&item).Error; err != nil {
		return nil, err
	}

	return refreshTotals(db, cartID)
}

// RemoveItem deletes a line. Removing a line that is not there is a no-op.
func RemoveItem(db *gorm.DB, cartID uint, productID uint) (*models.Cart, error) {
	defer Lock(cartID)()

	if err := db.Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{}).Error; err != nil {
		return nil, err
	}
	return refreshTotals(db, cartID)
}

// Clear empties the cart and resets every derived total, discount included.
func Clear(db *gorm.DB, cartID uint) (*models.Cart, error) {
	defer Lock(cartID)()
	return clearTx(db, cartID)
}

func clearTx(db *gorm.DB, cartID uint) (*models.Cart, error) {
	if err := db.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Cart{}).Where("cart_id = ?", cartID).Updates(map[string]interface{}{
		"subtotal": 0, "tax": 0, "shipping": 0, "discount": 0, "total": 0,
	}).Error; err != nil {
		return nil, err
	}
	return reload(db, cartID)
}

// ApplyDiscount sets the cart discount, clamped so it never exceeds the
// subtotal, and recomputes the total.
func ApplyDiscount(db *gorm.DB, cartID uint, amount float64) (*models.Cart, error) {
	if amount < 0 {
		return nil, ErrInvalidDiscount
	}
	defer Lock(cartID)()

	if err := db.Model(&models.Cart{}).Where("cart_id = ?", cartID).
		Update("discount", amount).Error; err != nil {
		return nil, err
	}
	return refreshTotals(db, cartID)
}

// refreshTotals recomputes subtotal..total from the cart's lines and
// persists the result. Every mutation funnels through here.
func refreshTotals(db *gorm.DB, cartID uint) (*models.Cart, error) {
	cart, err := reload(db, cartID)
	if err != nil {
		return nil, err
	}

	var subtotal float64
	for _, item := range cart.Items {
		subtotal += item.UnitPrice * float64(item.Quantity)
	}

	cart.Subtotal = round2(subtotal)
	if cart.Discount > cart.Subtotal {
		cart.Discount = cart.Subtotal
	}
	cart.Tax = round2(cart.Subtotal * Policy.TaxRate)
	cart.Shipping = 0
	if len(cart.Items) > 0 {
		cart.Shipping = Policy.FlatShipping
	}
	cart.Total = round2(math.Max(0, cart.Subtotal+cart.Tax+cart.Shipping-cart.Discount))

	if err := db.Model(&models.Cart{}).Where("cart_id = ?", cart.CartID).Updates(map[string]interface{}{
		"subtotal": cart.Subtotal,
		"tax":      cart.Tax,
		"shipping": cart.Shipping,
		"discount": cart.Discount,
		"total":    cart.Total,
	}).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

func reload(db *gorm.DB, cartID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := db.Preload("Items").First(&cart, cartID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	return &cart, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
