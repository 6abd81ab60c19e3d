package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/marketplace_backend/controllers"
)

func RegisterPromotionRoutes(e *echo.Echo, pc *controllers.PromotionController, g guards) {
	promotions := e.Group("/api/promotions", g.auth)
	promotions.POST("/validate", pc.ValidateCoupon)

	promotions.GET("", pc.GetPromotions, g.admin)
	promotions.GET("/:id", pc.GetPromotion, g.admin)
	promotions.POST("", pc.CreatePromotion, g.admin)
	promotions.PUT("/:id", pc.UpdatePromotion, g.admin)
	promotions.DELETE("/:id", pc.DeletePromotion, g.admin)
}
