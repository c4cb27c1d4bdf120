package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/bimalmithran/storefront-api/auth"
)

// SetupAuthRoutes registers the public session endpoints (no middleware).
func SetupAuthRoutes(r *gin.Engine) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/session", auth.CreateSession()) // POST /auth/session
	}
}
