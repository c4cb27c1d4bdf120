package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes is the single entry‐point that wires up Auth, Cart, and Order route groups.
func SetupRoutes(r *gin.Engine, db *gorm.DB) {
	// Public auth routes (session token issuing)
	SetupAuthRoutes(r)

	// Cart routes (guest or customer)
	SetupCartRoutes(r, db)

	// Order routes (checkout, reads, status transitions)
	SetupOrderRoutes(r, db)
}
