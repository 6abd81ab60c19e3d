package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/marketplace_backend/controllers"
)

func RegisterBrandRoutes(e *echo.Echo, bc *controllers.BrandController, g guards) {
	brands := e.Group("/api/brands")

	brands.GET("", bc.GetBrands)
	brands.GET("/:id", bc.GetBrand)

	brands.POST("", bc.CreateBrand, g.auth, g.admin)
	brands.PUT("/:id", bc.UpdateBrand, g.auth, g.admin)
	brands.DELETE("/:id", bc.DeleteBrand, g.auth, g.admin)
}
