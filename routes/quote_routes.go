package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/marketplace_backend/controllers"
)

// RegisterQuoteRoutes sets up public quote requests and the admin quote desk.
func RegisterQuoteRoutes(e *echo.Echo, qc *controllers.QuoteController, g guards) {
	quotes := e.Group("/api/quotes")
	quotes.POST("", qc.CreateQuote)
	quotes.GET("/lookup", qc.GetCustomerQuote)

	admin := e.Group("/api/admin/quotes", g.auth, g.admin)
	admin.GET("", qc.GetQuotes)
	admin.GET("/:id", qc.GetQuote)
	admin.PATCH("/:id/status", qc.UpdateQuoteStatus)
}
