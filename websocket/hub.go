package websocket

import (
	"context"
	"errors"
	"sync"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types pushed to connected clients
const (
	NotificationTypeConnected    = "connected"
	NotificationTypeAuthResponse = "auth_response"
	NotificationTypeOrderStatus  = "order_status"
	NotificationTypeOrderPaid    = "order_paid"
	NotificationTypeVendorStatus = "vendor_status"
)

var ErrNotConnected = errors.New("user not connected")

// Notification represents a message sent over WebSocket
type Notification struct {
	Type         string      `json:"type"`
	Message      string      `json:"message"`
	Data         interface{} `json:"data,omitempty"`
	UserID       string      `json:"userID,omitempty"`
	RequiresAuth bool        `json:"requiresAuth,omitempty"`
}

// Client represents a connected WebSocket client
type Client struct {
	UserID        primitive.ObjectID
	Conn          *websocket.Conn
	Authenticated bool

	writeMu sync.Mutex
}

// WriteJSON serializes writes; a gorilla connection allows one writer at a time.
func (c *Client) WriteJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteJSON(v)
}

// Hub tracks connected clients. A user has at most one live connection; a new
// connection replaces the previous one.
type Hub struct {
	clients                map[primitive.ObjectID]*Client
	unauthenticatedClients map[*Client]bool
	register               chan *Client
	unregister             chan *Client
	mu                     sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:                make(map[primitive.ObjectID]*Client),
		unauthenticatedClients: make(map[*Client]bool),
		register:               make(chan *Client),
		unregister:             make(chan *Client),
	}
}

// Run processes registrations until ctx is cancelled, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if client.Authenticated && client.UserID != primitive.NilObjectID {
				if previous, ok := h.clients[client.UserID]; ok && previous != client {
					previous.Conn.Close()
				}
				h.clients[client.UserID] = client
			} else {
				h.unauthenticatedClients[client] = true
			}
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.UserID]; ok && current == client {
				delete(h.clients, client.UserID)
			}
			delete(h.unauthenticatedClients, client)
			client.Conn.Close()
			h.mu.Unlock()
		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				client.Conn.Close()
				delete(h.clients, id)
			}
			for client := range h.unauthenticatedClients {
				client.Conn.Close()
				delete(h.unauthenticatedClients, client)
			}
			h.mu.Unlock()
			return
		}
	}
}

// IsConnected reports whether userID has a live authenticated connection.
func (h *Hub) IsConnected(userID primitive.ObjectID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// SendToUser sends a message to a specific user
func (h *Hub) SendToUser(userID primitive.ObjectID, notification Notification) error {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()

	if !ok {
		return ErrNotConnected
	}
	return client.WriteJSON(notification)
}

// AuthenticateClient moves a client from unauthenticated to authenticated state
func (h *Hub) AuthenticateClient(client *Client, userID primitive.ObjectID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.unauthenticatedClients, client)
	if previous, ok := h.clients[userID]; ok && previous != client {
		previous.Conn.Close()
	}

	client.Authenticated = true
	client.UserID = userID
	h.clients[userID] = client
}

// Push delivers a stored notification to its owner when they are online.
func (h *Hub) Push(userID primitive.ObjectID, kind, message string, data interface{}) error {
	return h.SendToUser(userID, Notification{
		Type:    kind,
		Message: message,
		Data:    data,
		UserID:  userID.Hex(),
	})
}
