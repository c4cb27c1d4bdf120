package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/bimalmithran/storefront-api/api"
)

const customerIDKey = "customer_id"

func parseCustomerID(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return 0, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid token claims")
	}
	id, ok := claims[customerIDKey].(float64)
	if !ok || id <= 0 {
		return 0, errors.New("token carries no customer id")
	}
	return uint(id), nil
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	return strings.TrimPrefix(header, "Bearer ")
}

// ResolveCustomer sets customer_id in the context when a valid bearer token
// is present and lets the request through either way. Cart routes work for
// guests and customers alike.
func ResolveCustomer(c *gin.Context) {
	if token := bearerToken(c); token != "" {
		if id, err := parseCustomerID(token); err == nil {
			c.Set(customerIDKey, id)
		}
	}
	c.Next()
}

// RequireCustomer rejects requests without a valid customer token.
func RequireCustomer(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		api.Fail(c, http.StatusUnauthorized, "Authorization header is missing")
		c.Abort()
		return
	}
	id, err := parseCustomerID(token)
	if err != nil {
		api.Fail(c, http.StatusUnauthorized, "Invalid or expired token")
		c.Abort()
		return
	}
	c.Set(customerIDKey, id)
	c.Next()
}

// CustomerID reads the authenticated customer id set by the middleware.
func CustomerID(c *gin.Context) (uint, bool) {
	val, exists := c.Get(customerIDKey)
	if !exists {
		return 0, false
	}
	id, ok := val.(uint)
	return id, ok
}
