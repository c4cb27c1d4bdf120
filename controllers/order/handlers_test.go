package orderControllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bimalmithran/storefront-api/api"
	"github.com/bimalmithran/storefront-api/auth"
	cartControllers "github.com/bimalmithran/storefront-api/controllers/cart"
	"github.com/bimalmithran/storefront-api/middleware"
)

func testRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	orders := r.Group("/orders")
	orders.Use(middleware.ResolveCustomer)
	orders.POST("", CheckoutHandler(db))
	orders.GET("/mine", middleware.RequireCustomer, MyOrdersHandler(db))
	orders.GET("/:orderID", middleware.RequireCustomer, GetOrderHandler(db))
	orders.PUT("/:orderID/status", UpdateOrderStatusHandler(db))
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, api.Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp api.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func validCheckoutBody(sessionID string) gin.H {
	return gin.H{
		"session_id":       sessionID,
		"customer_name":    "Jo Buyer",
		"customer_email":   "jo@example.com",
		"billing_address":  "1 Main St",
		"shipping_address": "1 Main St",
		"payment_method":   "cod",
	}
}

func TestCheckoutHandlerCreatesOrder(t *testing.T) {
	db := testDB(t)
	mug := createProduct(t, db, "Mug", 100, 10)
	cartWith(t, db, "s1", map[uint]int{mug.ID: 2})
	r := testRouter(db)

	w, resp := doJSON(t, r, http.MethodPost, "/orders", validCheckoutBody("s1"), nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.NotEmpty(t, data["order_number"])
	assert.Equal(t, "pending", data["status"])
	assert.Equal(t, 200.0, data["total"])
}

func TestCheckoutHandlerUnknownCart(t *testing.T) {
	db := testDB(t)
	r := testRouter(db)

	w, resp := doJSON(t, r, http.MethodPost, "/orders", validCheckoutBody("nope"), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "Cart not found", resp.Message)
}

func TestCheckoutHandlerEmptyCart(t *testing.T) {
	db := testDB(t)
	cartWith(t, db, "s1", nil)
	r := testRouter(db)

	w, resp := doJSON(t, r, http.MethodPost, "/orders", validCheckoutBody("s1"), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, int64(0), orderCount(t, db))
}

func TestCheckoutHandlerValidation(t *testing.T) {
	db := testDB(t)
	r := testRouter(db)

	body := validCheckoutBody("s1")
	delete(body, "customer_email")
	w, resp := doJSON(t, r, http.MethodPost, "/orders", body, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Message)
}

func TestCheckoutHandlerInsufficientStock(t *testing.T) {
	db := testDB(t)
	mug := createProduct(t, db, "Mug", 100, 2)
	cartWith(t, db, "s1", map[uint]int{mug.ID: 2})
	require.NoError(t, db.Model(mug).Update("stock", 1).Error)
	r := testRouter(db)

	w, resp := doJSON(t, r, http.MethodPost, "/orders", validCheckoutBody("s1"), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "insufficient stock")
}

func TestMyOrdersRequiresAuth(t *testing.T) {
	db := testDB(t)
	r := testRouter(db)

	req := httptest.NewRequest(http.MethodGet, "/orders/mine", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMyOrdersReturnsOwnOrdersOnly(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	db := testDB(t)
	mug := createProduct(t, db, "Mug", 100, 10)
	r := testRouter(db)

	token, err := auth.IssueCustomerToken(7)
	require.NoError(t, err)
	authHeader := map[string]string{"Authorization": "Bearer " + token}

	// customer 7 checks out a cart of their own
	customerID := uint(7)
	cart, _, err := cartControllers.Resolve(db, "", &customerID)
	require.NoError(t, err)
	_, err = cartControllers.AddItem(db, cart.CartID, mug.ID, 1)
	require.NoError(t, err)
	w, _ := doJSON(t, r, http.MethodPost, "/orders", validCheckoutBody(""), authHeader)
	require.Equal(t, http.StatusCreated, w.Code)

	// a stranger's order also exists
	other := cartWith(t, db, "s9", map[uint]int{mug.ID: 1})
	_, err = PlaceOrderFromCart(db, other.CartID, checkoutInfo())
	require.NoError(t, err)

	w, resp := doJSON(t, r, http.MethodGet, "/orders/mine", nil, authHeader)
	assert.Equal(t, http.StatusOK, w.Code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, 1.0, data["total"])
	orders := data["orders"].([]any)
	require.Len(t, orders, 1)
}

func TestUpdateOrderStatusHandler(t *testing.T) {
	db := testDB(t)
	mug := createProduct(t, db, "Mug", 100, 10)
	cart := cartWith(t, db, "s1", map[uint]int{mug.ID: 1})
	order, err := PlaceOrderFromCart(db, cart.CartID, checkoutInfo())
	require.NoError(t, err)
	r := testRouter(db)
	statusPath := fmt.Sprintf("/orders/%d/status", order.ID)

	w, resp := doJSON(t, r, http.MethodPut, statusPath, gin.H{"status": "processing"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	// an illegal jump is rejected, not silently ignored
	w, resp = doJSON(t, r, http.MethodPut, statusPath, gin.H{"status": "delivered"}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.False(t, resp.Success)

	w, _ = doJSON(t, r, http.MethodPut, statusPath, gin.H{"status": "teleported"}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, _ = doJSON(t, r, http.MethodPut, "/orders/999/status", gin.H{"status": "processing"}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
