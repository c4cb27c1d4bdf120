package cartControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bimalmithran/storefront-api/api"
	"github.com/bimalmithran/storefront-api/catalog"
	"github.com/bimalmithran/storefront-api/middleware"
	"github.com/bimalmithran/storefront-api/models"
)

type cartItemInput struct {
	SessionID string `json:"session_id"`
	ProductID uint   `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type removeItemInput struct {
	SessionID string `json:"session_id"`
	ProductID uint   `json:"product_id" binding:"required"`
}

type discountInput struct {
	SessionID string  `json:"session_id"`
	Discount  float64 `json:"discount" binding:"min=0"`
}

type sessionInput struct {
	SessionID string `json:"session_id"`
}

// hydratedLine joins a cart line with live product data for display.
type hydratedLine struct {
	models.CartItem
	LineTotal float64         `json:"line_total"`
	Product   *models.Product `json:"product,omitempty"`
}

func sessionToken(c *gin.Context, bodyToken string) string {
	if bodyToken != "" {
		return bodyToken
	}
	if q := c.Query("session_id"); q != "" {
		return q
	}
	return c.GetHeader("X-Session-Token")
}

func customerID(c *gin.Context) *uint {
	if id, ok := middleware.CustomerID(c); ok {
		return &id
	}
	return nil
}

func cartPayload(db *gorm.DB, cart *models.Cart, token string) gin.H {
	lines := make([]hydratedLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		line := hydratedLine{
			CartItem:  item,
			LineTotal: round2(item.UnitPrice * float64(item.Quantity)),
		}
		if product, err := catalog.Get(db, item.ProductID); err == nil {
			line.Product = product
		}
		lines = append(lines, line)
	}
	return gin.H{"session_id": token, "cart": cart, "items": lines}
}

func failCart(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrInvalidDiscount),
		errors.Is(err, ErrOutOfStock),
		errors.Is(err, ErrLineNotFound),
		errors.Is(err, catalog.ErrProductUnavailable):
		api.Fail(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrCartNotFound):
		api.Fail(c, http.StatusNotFound, "Cart not found")
	default:
		api.Fail(c, http.StatusInternalServerError, "Something went wrong")
	}
}

// GET /cart
func GetCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, token, err := Resolve(db, sessionToken(c, ""), customerID(c))
		if err != nil {
			failCart(c, err)
			return
		}
		api.OK(c, http.StatusOK, cartPayload(db, cart, token))
	}
}

// POST /cart/items
func AddCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input cartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			api.Fail(c, http.StatusUnprocessableEntity, "Invalid input: "+err.Error())
			return
		}
		cart, token, err := Resolve(db, sessionToken(c, input.SessionID), customerID(c))
		if err != nil {
			failCart(c, err)
			return
		}
		if cart, err = AddItem(db, cart.CartID, input.ProductID, input.Quantity); err != nil {
			failCart(c, err)
			return
		}
		api.OK(c, http.StatusCreated, cartPayload(db, cart, token))
	}
}

// PUT /cart/items
func UpdateCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input cartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			api.Fail(c, http.StatusUnprocessableEntity, "Invalid input: "+err.Error())
			return
		}
		cart, token, err := Resolve(db, sessionToken(c, input.SessionID), customerID(c))
		if err != nil {
			failCart(c, err)
			return
		}
		if cart, err = UpdateItemQuantity(db, cart.CartID, input.ProductID, input.Quantity); err != nil {
			failCart(c, err)
			return
		}
		api.OK(c, http.StatusOK, cartPayload(db, cart, token))
	}
}

// DELETE /cart/items
func DeleteCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input removeItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			api.Fail(c, http.StatusUnprocessableEntity, "Invalid input: "+err.Error())
			return
		}
		cart, token, err := Resolve(db, sessionToken(c, input.SessionID), customerID(c))
		if err != nil {
			failCart(c, err)
			return
		}
		if cart, err = RemoveItem(db, cart.CartID, input.ProductID); err != nil {
			failCart(c, err)
			return
		}
		api.OK(c, http.StatusOK, cartPayload(db, cart, token))
	}
}

// POST /cart/clear
func ClearCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input sessionInput
		_ = c.ShouldBindJSON(&input)

		cart, token, err := Resolve(db, sessionToken(c, input.SessionID), customerID(c))
		if err != nil {
			failCart(c, err)
			return
		}
		if cart, err = Clear(db, cart.CartID); err != nil {
			failCart(c, err)
			return
		}
		api.OK(c, http.StatusOK, cartPayload(db, cart, token))
	}
}

// POST /cart/discount
func ApplyCartDiscount(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input discountInput
		if err := c.ShouldBindJSON(&input); err != nil {
			api.Fail(c, http.StatusUnprocessableEntity, "Invalid input: "+err.Error())
			return
		}
		cart, token, err := Resolve(db, sessionToken(c, input.SessionID), customerID(c))
		if err != nil {
			failCart(c, err)
			return
		}
		if cart, err = ApplyDiscount(db, cart.CartID, input.Discount); err != nil {
			failCart(c, err)
			return
		}
		api.OK(c, http.StatusOK, cartPayload(db, cart, token))
	}
}
