package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/marketplace_backend/controllers"
)

// RegisterAdminRoutes sets up the dashboard and reporting routes
func RegisterAdminRoutes(e *echo.Echo, ac *controllers.AdminController, g guards) {
	admin := e.Group("/api/admin", g.auth, g.admin)

	admin.GET("/dashboard", ac.GetDashboardStats)
	admin.GET("/reports/sales", ac.GetSalesReport)
	admin.GET("/reports/sales/export", ac.ExportSalesReport)
}
