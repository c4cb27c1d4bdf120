package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	cartControllers "github.com/bimalmithran/storefront-api/controllers/cart"
	"github.com/bimalmithran/storefront-api/middleware"
)

// SetupCartRoutes registers all "/cart/*" endpoints. Works for guests
// (session token) and customers (bearer token) alike.
func SetupCartRoutes(r *gin.Engine, db *gorm.DB) {
	cartGroup := r.Group("/cart")
	cartGroup.Use(middleware.ResolveCustomer)
	{
		cartGroup.GET("", cartControllers.GetCart(db))                     // GET /cart
		cartGroup.POST("/items", cartControllers.AddCartItem(db))          // POST /cart/items
		cartGroup.PUT("/items", cartControllers.UpdateCartItem(db))        // PUT /cart/items
		cartGroup.DELETE("/items", cartControllers.DeleteCartItem(db))     // DELETE /cart/items
		cartGroup.POST("/clear", cartControllers.ClearCart(db))            // POST /cart/clear
		cartGroup.POST("/discount", cartControllers.ApplyCartDiscount(db)) // POST /cart/discount
	}
}
