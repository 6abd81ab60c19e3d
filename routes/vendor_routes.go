package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/marketplace_backend/controllers"
)

// RegisterVendorRoutes sets up onboarding, the vendor's own stats and the
// admin vendor management routes.
func RegisterVendorRoutes(e *echo.Echo, vc *controllers.VendorController, g guards) {
	onboarding := e.Group("/api/vendor/onboarding")
	onboarding.GET("/verify", vc.VerifyInvitation)
	onboarding.POST("/complete", vc.CompleteOnboarding)

	e.GET("/api/vendor/stats", vc.GetMyStats, g.auth, g.vendor)

	admin := e.Group("/api/admin/vendors", g.auth, g.admin)
	admin.POST("/invite", vc.InviteVendor)
	admin.GET("/invitations/:id/qr", vc.GetInvitationQRCode)
	admin.GET("", vc.GetVendors)
	admin.GET("/:id", vc.GetVendor)
	admin.PATCH("/:id/status", vc.UpdateVendorStatus)
	admin.DELETE("/:id", vc.DeleteVendor)
	admin.GET("/:id/stats", vc.GetVendorStats)
}
