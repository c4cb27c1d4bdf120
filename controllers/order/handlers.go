package orderControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bimalmithran/storefront-api/api"
	"github.com/bimalmithran/storefront-api/catalog"
	cartControllers "github.com/bimalmithran/storefront-api/controllers/cart"
	"github.com/bimalmithran/storefront-api/middleware"
	"github.com/bimalmithran/storefront-api/models"
)

type checkoutRequest struct {
	SessionID       string `json:"session_id"`
	CustomerName    string `json:"customer_name" binding:"required"`
	CustomerEmail   string `json:"customer_email" binding:"required,email"`
	CustomerPhone   string `json:"customer_phone"`
	BillingAddress  string `json:"billing_address" binding:"required"`
	ShippingAddress string `json:"shipping_address" binding:"required"`
	PaymentMethod   string `json:"payment_method"`
	Notes           string `json:"notes"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type updatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

func failOrder(c *gin.Context, err error) {
	var insufficient catalog.InsufficientStockError
	switch {
	case errors.Is(err, cartControllers.ErrCartNotFound):
		api.Fail(c, http.StatusNotFound, "Cart not found")
	case errors.Is(err, ErrOrderNotFound):
		api.Fail(c, http.StatusNotFound, "Order not found")
	case errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrInvalidTransition),
		errors.As(err, &insufficient):
		api.Fail(c, http.StatusUnprocessableEntity, err.Error())
	default:
		api.Fail(c, http.StatusInternalServerError, "Something went wrong")
	}
}

// locateCart finds the cart to check out without creating one: the
// authenticated customer's cart when present, otherwise the guest cart for
// the supplied session token.
func locateCart(db *gorm.DB, c *gin.Context, sessionID string) (*models.Cart, error) {
	if id, ok := middleware.CustomerID(c); ok {
		return cartControllers.Find(db, models.CustomerOwner(id))
	}
	if sessionID == "" {
		return nil, cartControllers.ErrCartNotFound
	}
	return cartControllers.Find(db, models.GuestOwner(sessionID))
}

// POST /orders
func CheckoutHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			api.Fail(c, http.StatusUnprocessableEntity, "Invalid input: "+err.Error())
			return
		}

		cart, err := locateCart(db, c, req.SessionID)
		if err != nil {
			failOrder(c, err)
			return
		}

		order, err := PlaceOrderFromCart(db, cart.CartID, CheckoutInfo{
			CustomerName:    req.CustomerName,
			CustomerEmail:   req.CustomerEmail,
			CustomerPhone:   req.CustomerPhone,
			BillingAddress:  req.BillingAddress,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   req.PaymentMethod,
			Notes:           req.Notes,
		})
		if err != nil {
			failOrder(c, err)
			return
		}

		broadcastOrderEvent("order_created", order)
		api.OK(c, http.StatusCreated, order)
	}
}

// GET /orders/mine
func MyOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID, ok := middleware.CustomerID(c)
		if !ok {
			api.Fail(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

		orders, total, err := ListCustomerOrders(db, customerID, page, limit)
		if err != nil {
			failOrder(c, err)
			return
		}
		api.OK(c, http.StatusOK, gin.H{
			"orders": orders,
			"total":  total,
			"page":   page,
			"limit":  limit,
		})
	}
}

// GET /orders/:orderID
func GetOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID, ok := middleware.CustomerID(c)
		if !ok {
			api.Fail(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		orderID, err := strconv.ParseUint(c.Param("orderID"), 10, 64)
		if err != nil {
			api.Fail(c, http.StatusUnprocessableEntity, "Invalid order id")
			return
		}

		order, err := GetCustomerOrder(db, customerID, uint(orderID))
		if err != nil {
			failOrder(c, err)
			return
		}
		api.OK(c, http.StatusOK, order)
	}
}

// PUT /orders/:orderID/status
func UpdateOrderStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := strconv.ParseUint(c.Param("orderID"), 10, 64)
		if err != nil {
			api.Fail(c, http.StatusUnprocessableEntity, "Invalid order id")
			return
		}

		var req updateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			api.Fail(c, http.StatusUnprocessableEntity, "Invalid input: "+err.Error())
			return
		}
		next, err := ParseOrderStatus(req.Status)
		if err != nil {
			api.Fail(c, http.StatusUnprocessableEntity, err.Error())
			return
		}

		order, err := TransitionOrderStatus(db, uint(orderID), next)
		if err != nil {
			failOrder(c, err)
			return
		}

		broadcastOrderEvent("order_status_updated", order)
		api.OK(c, http.StatusOK, order)
	}
}

// PUT /orders/:orderID/payment-status
func UpdatePaymentStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := strconv.ParseUint(c.Param("orderID"), 10, 64)
		if err != nil {
			api.Fail(c, http.StatusUnprocessableEntity, "Invalid order id")
			return
		}

		var req updatePaymentStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			api.Fail(c, http.StatusUnprocessableEntity, "Invalid input: "+err.Error())
			return
		}
		next, err := ParsePaymentStatus(req.PaymentStatus)
		if err != nil {
			api.Fail(c, http.StatusUnprocessableEntity, err.Error())
			return
		}

		order, err := TransitionPaymentStatus(db, uint(orderID), next)
		if err != nil {
			failOrder(c, err)
			return
		}

		broadcastOrderEvent("payment_status_updated", order)
		api.OK(c, http.StatusOK, order)
	}
}
