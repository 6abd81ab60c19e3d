package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/marketplace_backend/controllers"
)

func RegisterWishlistRoutes(e *echo.Echo, wc *controllers.WishlistController, g guards) {
	wishlist := e.Group("/api/wishlist", g.auth)
	wishlist.GET("", wc.GetWishlist)
	wishlist.POST("", wc.AddToWishlist)
	wishlist.DELETE("/:productId", wc.RemoveFromWishlist)
}
