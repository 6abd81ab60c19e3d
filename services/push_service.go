package services

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
)

// PushSender delivers a mobile push notification to one device token.
type PushSender interface {
	SendPush(ctx context.Context, token, title, body string, data map[string]string) error
}

type PushService struct {
	app *firebase.App
}

// NewPushService returns nil when app is nil so callers can skip push delivery.
func NewPushService(app *firebase.App) *PushService {
	if app == nil {
		return nil
	}
	return &PushService{app: app}
}

func (s *PushService) SendPush(ctx context.Context, token, title, body string, data map[string]string) error {
	client, err := s.app.Messaging(ctx)
	if err != nil {
		return fmt.Errorf("messaging client: %w", err)
	}

	badge := 1
	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: "marketplace_orders",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{Title: title, Body: body},
					Sound: "default",
					Badge: &badge,
				},
			},
		},
	}

	id, err := client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	log.Printf("Push notification sent: %s", id)
	return nil
}
