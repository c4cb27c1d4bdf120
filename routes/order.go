package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	orderControllers "github.com/bimalmithran/storefront-api/controllers/order"
	"github.com/bimalmithran/storefront-api/middleware"
)

func SetupOrderRoutes(r *gin.Engine, db *gorm.DB) {
	orders := r.Group("/orders")
	orders.Use(middleware.ResolveCustomer)
	{
		// Checkout: convert the caller's cart into an order
		orders.POST("", orderControllers.CheckoutHandler(db))

		// websocket endpoint for real-time order updates
		orders.GET("/ws", orderControllers.OrderWebSocketHandler)

		// Fetch the authenticated customer's orders, newest first
		orders.GET("/mine", middleware.RequireCustomer, orderControllers.MyOrdersHandler(db))

		// Fetch a single order owned by the authenticated customer
		orders.GET("/:orderID", middleware.RequireCustomer, orderControllers.GetOrderHandler(db))

		// Move an order along the fulfillment state machine
		orders.PUT("/:orderID/status", orderControllers.UpdateOrderStatusHandler(db))

		// Move an order along the payment state machine
		orders.PUT("/:orderID/payment-status", orderControllers.UpdatePaymentStatusHandler(db))
	}
}
