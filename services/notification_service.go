package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/HSouheill/marketplace_backend/repositories"
	"github.com/HSouheill/marketplace_backend/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkRead(ctx context.Context, id, userID primitive.ObjectID) (*models.Notification, error)
}

// RealtimePusher reaches users connected over a websocket.
type RealtimePusher interface {
	Push(userID primitive.ObjectID, kind, message string, data interface{}) error
}

type UserFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Notifier is what other services use to tell a user something happened.
type Notifier interface {
	Notify(ctx context.Context, userID primitive.ObjectID, kind, title, message string, data map[string]string) error
}

type NotificationService struct {
	store    NotificationStore
	users    UserFinder
	realtime RealtimePusher
	push     PushSender
}

// NewNotificationService wires the stored inbox to live delivery. realtime and
// push may be nil.
func NewNotificationService(store NotificationStore, users UserFinder, realtime RealtimePusher, push PushSender) *NotificationService {
	return &NotificationService{store: store, users: users, realtime: realtime, push: push}
}

// Notify stores the notification, then tries websocket and FCM delivery.
// Only the write can fail the call.
func (s *NotificationService) Notify(ctx context.Context, userID primitive.ObjectID, kind, title, message string, data map[string]string) error {
	n := &models.Notification{
		User:      userID,
		Type:      kind,
		Title:     title,
		Message:   message,
		Data:      data,
		CreatedAt: time.Now(),
	}
	if err := s.store.Create(ctx, n); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}

	if s.realtime != nil {
		if err := s.realtime.Push(userID, kind, message, n); err != nil {
			log.Printf("Realtime delivery to %s skipped: %v", userID.Hex(), err)
		}
	}

	if s.push != nil && s.users != nil {
		user, err := s.users.FindByID(ctx, userID)
		switch {
		case err != nil:
			log.Printf("Push delivery to %s skipped: %v", userID.Hex(), err)
		case user.FCMToken != "":
			if err := s.push.SendPush(ctx, user.FCMToken, title, message, data); err != nil {
				log.Printf("Error sending push notification to %s: %v", userID.Hex(), err)
			}
		}
	}
	return nil
}

func (s *NotificationService) ListNotifications(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	notifications, err := s.store.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	count, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id, userID primitive.ObjectID) (*models.Notification, error) {
	n, err := s.store.MarkRead(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NotFound("Notification not found")
		}
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return n, nil
}
