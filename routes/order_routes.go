package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/marketplace_backend/controllers"
)

// RegisterOrderRoutes sets up buyer order routes and the admin order desk.
func RegisterOrderRoutes(e *echo.Echo, oc *controllers.OrderController, g guards) {
	orders := e.Group("/api/orders", g.auth)
	orders.POST("", oc.CreateOrder)
	orders.GET("/mine", oc.GetMyOrders)
	orders.GET("/:id", oc.GetOrder)

	admin := e.Group("/api/admin/orders", g.auth, g.admin)
	admin.GET("", oc.GetOrders)
	admin.PATCH("/bulk-status", oc.BulkUpdateOrderStatus)
	admin.PATCH("/:id/status", oc.UpdateOrderStatus)
}
