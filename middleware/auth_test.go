package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bimalmithran/storefront-api/auth"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/open", ResolveCustomer, func(c *gin.Context) {
		if id, ok := CustomerID(c); ok {
			c.JSON(http.StatusOK, gin.H{"customer_id": id})
			return
		}
		c.JSON(http.StatusOK, gin.H{"customer_id": nil})
	})
	r.GET("/locked", RequireCustomer, func(c *gin.Context) {
		id, _ := CustomerID(c)
		c.JSON(http.StatusOK, gin.H{"customer_id": id})
	})
	return r
}

func get(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestResolveCustomerIsOptional(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := testRouter()

	// anonymous requests pass straight through
	w := get(r, "/open", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "null")

	// garbage tokens are ignored, not rejected
	w = get(r, "/open", "not-a-token")
	assert.Equal(t, http.StatusOK, w.Code)

	token, err := auth.IssueCustomerToken(7)
	require.NoError(t, err)
	w = get(r, "/open", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"customer_id":7`)
}

func TestRequireCustomer(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := testRouter()

	w := get(r, "/locked", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, "/locked", "bogus")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := auth.IssueCustomerToken(7)
	require.NoError(t, err)
	w = get(r, "/locked", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"customer_id":7`)
}
