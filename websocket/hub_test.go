package websocket

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func startServer(t *testing.T, hub *Hub, users map[string]primitive.ObjectID) string {
	t.Helper()
	auth := func(token string) (primitive.ObjectID, error) {
		if id, ok := users[token]; ok {
			return id, nil
		}
		return primitive.NilObjectID, errors.New("bad token")
	}

	e := echo.New()
	e.GET("/ws", NewHandler(hub, auth).HandleWebSocket)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func readNotification(t *testing.T, conn *websocket.Conn) Notification {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var n Notification
	if err := conn.ReadJSON(&n); err != nil {
		t.Fatalf("read: %v", err)
	}
	return n
}

func TestHubDeliversToAuthenticatedUser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub()
	go hub.Run(ctx)

	userID := primitive.NewObjectID()
	url := startServer(t, hub, map[string]primitive.ObjectID{"good": userID})

	conn, _, err := websocket.DefaultDialer.Dial(url+"?token=good", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if n := readNotification(t, conn); n.Type != NotificationTypeConnected || n.UserID != userID.Hex() {
		t.Fatalf("welcome = %+v", n)
	}
	waitFor(t, func() bool { return hub.IsConnected(userID) })

	if err := hub.Push(userID, NotificationTypeOrderStatus, "Your order has shipped", map[string]string{"status": "shipped"}); err != nil {
		t.Fatal(err)
	}
	if n := readNotification(t, conn); n.Type != NotificationTypeOrderStatus || n.Message != "Your order has shipped" {
		t.Errorf("push = %+v", n)
	}

	if err := hub.SendToUser(primitive.NewObjectID(), Notification{}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("err = %v, want ErrNotConnected", err)
	}
}

func TestHubAuthMessage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub()
	go hub.Run(ctx)

	userID := primitive.NewObjectID()
	url := startServer(t, hub, map[string]primitive.ObjectID{"good": userID})

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if n := readNotification(t, conn); !n.RequiresAuth {
		t.Fatalf("welcome = %+v", n)
	}

	conn.WriteMessage(websocket.TextMessage, []byte("AUTH:bad"))
	if n := readNotification(t, conn); n.Type != NotificationTypeAuthResponse || !n.RequiresAuth {
		t.Errorf("bad auth response = %+v", n)
	}

	conn.WriteMessage(websocket.TextMessage, []byte("AUTH:good"))
	if n := readNotification(t, conn); n.UserID != userID.Hex() {
		t.Errorf("auth response = %+v", n)
	}
	if !hub.IsConnected(userID) {
		t.Error("client should be registered after AUTH")
	}
}

func TestHandlerRejectsBadQueryToken(t *testing.T) {
	hub := NewHub()
	url := startServer(t, hub, nil)

	_, resp, err := websocket.DefaultDialer.Dial(url+"?token=nope", nil)
	if err == nil {
		t.Fatal("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != 401 {
		t.Errorf("resp = %v", resp)
	}
}
