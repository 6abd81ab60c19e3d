package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/marketplace_backend/controllers"
)

// RegisterCategoryRoutes registers the public category reads and the admin
// maintenance endpoints.
func RegisterCategoryRoutes(e *echo.Echo, cc *controllers.CategoryController, g guards) {
	categories := e.Group("/api/categories")

	categories.GET("", cc.GetCategories)
	categories.GET("/tree", cc.GetCategoryTree)
	categories.GET("/:id", cc.GetCategory)

	categories.POST("", cc.CreateCategory, g.auth, g.admin)
	categories.PUT("/:id", cc.UpdateCategory, g.auth, g.admin)
	categories.DELETE("/:id", cc.DeleteCategory, g.auth, g.admin)
	categories.PUT("/:id/image", cc.UploadCategoryImage, g.auth, g.admin)
	categories.PATCH("/reorder", cc.ReorderCategories, g.auth, g.admin)
	categories.GET("/export", cc.ExportCategories, g.auth, g.admin)
	categories.POST("/import", cc.ImportCategories, g.auth, g.admin)
}
