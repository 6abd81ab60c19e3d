package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/marketplace_backend/controllers"
)

func RegisterProductRoutes(e *echo.Echo, pc *controllers.ProductController, g guards) {
	products := e.Group("/api/products")

	products.GET("", pc.GetProducts)
	products.GET("/:id", pc.GetProduct)

	products.POST("", pc.CreateProduct, g.auth, g.vendor)
	products.PUT("/:id", pc.UpdateProduct, g.auth, g.vendor)
	products.DELETE("/:id", pc.DeleteProduct, g.auth, g.vendor)
	products.POST("/:id/images", pc.UploadProductImage, g.auth, g.vendor)
}
