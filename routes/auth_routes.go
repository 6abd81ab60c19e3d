package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/marketplace_backend/controllers"
)

// RegisterAuthRoutes sets up all authentication and account routes
func RegisterAuthRoutes(e *echo.Echo, ac *controllers.AuthController, g guards) {
	e.POST("/api/auth/register", ac.Register)
	e.POST("/api/auth/login", ac.Login)
	e.GET("/api/auth/me", ac.Me, g.auth)

	users := e.Group("/api/users", g.auth)
	users.PUT("/me/fcm-token", ac.UpdateFCMToken)
}
