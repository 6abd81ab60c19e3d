package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/marketplace_backend/controllers"
)

// RegisterPaymentRoutes registers checkout routes. Webhooks are public and
// authenticated by their signature.
func RegisterPaymentRoutes(e *echo.Echo, pc *controllers.PaymentController, g guards) {
	payments := e.Group("/api/payments")

	payments.POST("/initialize", pc.InitializePayment, g.auth)
	payments.GET("/verify/:provider/:reference", pc.VerifyPayment, g.auth)

	payments.POST("/webhook/paystack", pc.PaystackWebhook)
	payments.POST("/webhook/flutterwave", pc.FlutterwaveWebhook)
}
