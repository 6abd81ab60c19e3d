package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/marketplace_backend/controllers"
	"github.com/HSouheill/marketplace_backend/middleware"
	"github.com/HSouheill/marketplace_backend/websocket"
)

// Handlers groups every controller the API serves.
type Handlers struct {
	Auth          *controllers.AuthController
	Categories    *controllers.CategoryController
	Products      *controllers.ProductController
	Brands        *controllers.BrandController
	Reviews       *controllers.ReviewController
	Wishlist      *controllers.WishlistController
	Quotes        *controllers.QuoteController
	Promotions    *controllers.PromotionController
	Orders        *controllers.OrderController
	Payments      *controllers.PaymentController
	Vendors       *controllers.VendorController
	Notifications *controllers.NotificationController
	Admin         *controllers.AdminController
	WebSocket     *websocket.Handler
}

// guards bundles the middleware routes pick from.
type guards struct {
	auth   echo.MiddlewareFunc
	admin  echo.MiddlewareFunc
	vendor echo.MiddlewareFunc
}

// SetupRoutes configures all API routes by calling individual route registration functions
func SetupRoutes(e *echo.Echo, tokens *middleware.TokenManager, h Handlers) {
	g := guards{
		auth:   tokens.JWTMiddleware(),
		admin:  middleware.RequireUserType("admin"),
		vendor: middleware.RequireUserType("vendor", "admin"),
	}

	RegisterAuthRoutes(e, h.Auth, g)
	RegisterCategoryRoutes(e, h.Categories, g)
	RegisterProductRoutes(e, h.Products, g)
	RegisterBrandRoutes(e, h.Brands, g)
	RegisterReviewRoutes(e, h.Reviews, g)
	RegisterWishlistRoutes(e, h.Wishlist, g)
	RegisterQuoteRoutes(e, h.Quotes, g)
	RegisterPromotionRoutes(e, h.Promotions, g)
	RegisterOrderRoutes(e, h.Orders, g)
	RegisterPaymentRoutes(e, h.Payments, g)
	RegisterVendorRoutes(e, h.Vendors, g)
	RegisterAdminRoutes(e, h.Admin, g)
	RegisterNotificationRoutes(e, h.Notifications, h.WebSocket, g)
}
