package controllers

import (
	"context"
	"net/http"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Authenticator interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	CurrentUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateFCMToken(ctx context.Context, id primitive.ObjectID, token string) error
}

// AuthController contains authentication logic
type AuthController struct {
	auth Authenticator
}

func NewAuthController(auth Authenticator) *AuthController {
	return &AuthController{auth: auth}
}

func (ac *AuthController) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	resp, err := ac.auth.Register(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusCreated, "User registered successfully", resp)
}

// Login leaves field checks to the service.
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Invalid request body", nil)
	}
	resp, err := ac.auth.Login(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Login successful", resp)
}

func (ac *AuthController) Me(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	user, err := ac.auth.CurrentUser(c.Request().Context(), actor.ID)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "User retrieved successfully", user)
}

func (ac *AuthController) UpdateFCMToken(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	var req models.FCMTokenRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Invalid request body", nil)
	}
	if err := ac.auth.UpdateFCMToken(c.Request().Context(), actor.ID, req.Token); err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "FCM token updated successfully", nil)
}
