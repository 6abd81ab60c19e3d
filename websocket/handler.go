package websocket

import (
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Authenticator resolves a bearer token to a user id.
type Authenticator func(token string) (primitive.ObjectID, error)

type Handler struct {
	hub          *Hub
	authenticate Authenticator
	upgrader     websocket.Upgrader
}

func NewHandler(hub *Hub, authenticate Authenticator) *Handler {
	return &Handler{
		hub:          hub,
		authenticate: authenticate,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWebSocket upgrades the connection. A token may be passed as the
// "token" query parameter or later as an "AUTH:<token>" text message; until
// then the client receives nothing addressed to a user.
func (h *Handler) HandleWebSocket(c echo.Context) error {
	userID := primitive.NilObjectID
	if token := c.QueryParam("token"); token != "" {
		id, err := h.authenticate(token)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Invalid or expired token"})
		}
		userID = id
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		UserID:        userID,
		Conn:          conn,
		Authenticated: userID != primitive.NilObjectID,
	}
	h.hub.register <- client

	if client.Authenticated {
		client.WriteJSON(Notification{
			Type:    NotificationTypeConnected,
			Message: "WebSocket connection established",
			UserID:  userID.Hex(),
		})
	} else {
		client.WriteJSON(Notification{
			Type:         NotificationTypeConnected,
			Message:      "WebSocket connection established. Please authenticate to receive notifications.",
			RequiresAuth: true,
		})
	}

	go h.readLoop(client)
	return nil
}

func (h *Handler) readLoop(client *Client) {
	defer func() {
		h.hub.unregister <- client
	}()

	for {
		messageType, message, err := client.Conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		text := string(message)
		if !strings.HasPrefix(text, "AUTH:") {
			continue
		}

		id, err := h.authenticate(strings.TrimSpace(strings.TrimPrefix(text, "AUTH:")))
		if err != nil {
			client.WriteJSON(Notification{
				Type:         NotificationTypeAuthResponse,
				Message:      "Authentication failed",
				RequiresAuth: true,
			})
			continue
		}

		h.hub.AuthenticateClient(client, id)
		log.Printf("WebSocket client authenticated: %s", id.Hex())
		client.WriteJSON(Notification{
			Type:    NotificationTypeAuthResponse,
			Message: "Authenticated",
			UserID:  id.Hex(),
		})
	}
}
