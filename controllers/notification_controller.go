package controllers

import (
	"context"
	"net/http"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationReader interface {
	ListNotifications(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkAsRead(ctx context.Context, id, userID primitive.ObjectID) (*models.Notification, error)
}

type NotificationController struct {
	notifications NotificationReader
}

func NewNotificationController(notifications NotificationReader) *NotificationController {
	return &NotificationController{notifications: notifications}
}

func (nc *NotificationController) GetNotifications(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	list, err := nc.notifications.ListNotifications(c.Request().Context(), actor.ID, queryInt(c, "limit"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Notifications retrieved successfully", list)
}

func (nc *NotificationController) GetUnreadCount(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	count, err := nc.notifications.UnreadCount(c.Request().Context(), actor.ID)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Unread count retrieved successfully", map[string]int64{"count": count})
}

func (nc *NotificationController) MarkAsRead(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id", "Invalid notification id")
	if err != nil {
		return respondError(c, err)
	}
	n, err := nc.notifications.MarkAsRead(c.Request().Context(), id, actor.ID)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Notification marked as read", n)
}
