package auth

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/bimalmithran/storefront-api/api"
)

// NewSessionToken generates the opaque token that identifies a guest cart.
// The cart resolver calls this when a request arrives with no token at all.
func NewSessionToken() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "guest_fallback"
	}
	return "guest_" + hex.EncodeToString(bytes)
}

// POST /auth/session
func CreateSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		api.OK(c, http.StatusOK, gin.H{"session_id": NewSessionToken()})
	}
}

// IssueCustomerToken signs a bearer token for an authenticated customer.
// Customer login itself lives outside this core; the token shape here is
// what the middleware expects back.
func IssueCustomerToken(customerID uint) (string, error) {
	claims := jwt.MapClaims{
		"customer_id": customerID,
		"exp":         time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}
