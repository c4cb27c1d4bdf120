package cartControllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bimalmithran/storefront-api/api"
	"github.com/bimalmithran/storefront-api/middleware"
)

func testRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cart := r.Group("/cart")
	cart.Use(middleware.ResolveCustomer)
	cart.GET("", GetCart(db))
	cart.POST("/items", AddCartItem(db))
	cart.PUT("/items", UpdateCartItem(db))
	cart.DELETE("/items", DeleteCartItem(db))
	cart.POST("/clear", ClearCart(db))
	cart.POST("/discount", ApplyCartDiscount(db))
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, api.Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp api.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestGetCartIssuesSessionAndEmptyCart(t *testing.T) {
	db := testDB(t)
	r := testRouter(db)

	w, resp := doJSON(t, r, http.MethodGet, "/cart", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.NotEmpty(t, data["session_id"])
	assert.Empty(t, data["items"])
}

func TestAddCartItemHydratesLines(t *testing.T) {
	db := testDB(t)
	createProduct(t, db, "Mug", 0, 100, 10)
	r := testRouter(db)

	w, resp := doJSON(t, r, http.MethodPost, "/cart/items", gin.H{
		"session_id": "s1",
		"product_id": 1,
		"quantity":   2,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	items := data["items"].([]any)
	require.Len(t, items, 1)
	line := items[0].(map[string]any)
	assert.Equal(t, 200.0, line["line_total"])
	require.NotNil(t, line["product"])
	assert.Equal(t, "Mug", line["product"].(map[string]any)["name"])

	cart := data["cart"].(map[string]any)
	assert.Equal(t, 200.0, cart["total"])
}

func TestAddCartItemRejectsBadInput(t *testing.T) {
	db := testDB(t)
	createProduct(t, db, "Mug", 0, 100, 1)
	r := testRouter(db)

	w, resp := doJSON(t, r, http.MethodPost, "/cart/items", gin.H{
		"session_id": "s1",
		"product_id": 1,
		"quantity":   0,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.False(t, resp.Success)

	w, resp = doJSON(t, r, http.MethodPost, "/cart/items", gin.H{
		"session_id": "s1",
		"product_id": 1,
		"quantity":   5,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Message)
}

func TestUpdateCartItemNotInCart(t *testing.T) {
	db := testDB(t)
	createProduct(t, db, "Mug", 0, 100, 10)
	r := testRouter(db)

	w, resp := doJSON(t, r, http.MethodPut, "/cart/items", gin.H{
		"session_id": "s1",
		"product_id": 1,
		"quantity":   2,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.False(t, resp.Success)
}

func TestDiscountEndpointClamps(t *testing.T) {
	db := testDB(t)
	createProduct(t, db, "Mug", 0, 100, 10)
	r := testRouter(db)

	_, _ = doJSON(t, r, http.MethodPost, "/cart/items", gin.H{
		"session_id": "s1", "product_id": 1, "quantity": 2,
	})

	w, resp := doJSON(t, r, http.MethodPost, "/cart/discount", gin.H{
		"session_id": "s1", "discount": 300,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	cart := resp.Data.(map[string]any)["cart"].(map[string]any)
	assert.Equal(t, 200.0, cart["discount"])
	assert.Equal(t, 0.0, cart["total"])
}

func TestClearEndpoint(t *testing.T) {
	db := testDB(t)
	createProduct(t, db, "Mug", 0, 100, 10)
	r := testRouter(db)

	_, _ = doJSON(t, r, http.MethodPost, "/cart/items", gin.H{
		"session_id": "s1", "product_id": 1, "quantity": 2,
	})

	w, resp := doJSON(t, r, http.MethodPost, "/cart/clear", gin.H{"session_id": "s1"})
	assert.Equal(t, http.StatusOK, w.Code)
	data := resp.Data.(map[string]any)
	assert.Empty(t, data["items"])
	cart := data["cart"].(map[string]any)
	assert.Equal(t, 0.0, cart["total"])
}
