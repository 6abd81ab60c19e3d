package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/marketplace_backend/controllers"
	"github.com/HSouheill/marketplace_backend/websocket"
)

// RegisterNotificationRoutes registers the inbox routes and the websocket endpoint.
func RegisterNotificationRoutes(e *echo.Echo, nc *controllers.NotificationController, ws *websocket.Handler, g guards) {
	notifications := e.Group("/api/notifications", g.auth)
	notifications.GET("", nc.GetNotifications)
	notifications.GET("/unread-count", nc.GetUnreadCount)
	notifications.PATCH("/:id/read", nc.MarkAsRead)

	// authenticates from ?token= or the first message
	e.GET("/api/ws", ws.HandleWebSocket)
}
