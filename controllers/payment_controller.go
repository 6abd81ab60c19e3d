package controllers

import (
	"context"
	"io"
	"net/http"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/HSouheill/marketplace_backend/security"
	"github.com/HSouheill/marketplace_backend/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxWebhookBody = 1 << 20

type PaymentProcessor interface {
	InitializePayment(ctx context.Context, userID primitive.ObjectID, req models.InitializePaymentRequest) (*models.PaymentSession, error)
	VerifyPayment(ctx context.Context, provider, reference string) (*models.Order, *models.PaymentVerification, error)
	HandlePaystackWebhook(ctx context.Context, body []byte, signature string) error
	HandleFlutterwaveWebhook(ctx context.Context, body []byte, hash string) error
}

type PaymentController struct {
	payments PaymentProcessor
}

func NewPaymentController(payments PaymentProcessor) *PaymentController {
	return &PaymentController{payments: payments}
}

func (pc *PaymentController) InitializePayment(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	var req models.InitializePaymentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	session, err := pc.payments.InitializePayment(c.Request().Context(), actor.ID, req)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Payment initialized successfully", session)
}

func (pc *PaymentController) VerifyPayment(c echo.Context) error {
	order, verification, err := pc.payments.VerifyPayment(c.Request().Context(), c.Param("provider"), c.Param("reference"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Payment verified successfully", map[string]interface{}{
		"order":        order,
		"verification": verification,
	})
}

// PaystackWebhook needs the untouched body: the signature is an HMAC of the raw bytes.
func (pc *PaymentController) PaystackWebhook(c echo.Context) error {
	body, err := readWebhookBody(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := pc.payments.HandlePaystackWebhook(c.Request().Context(), body, c.Request().Header.Get("x-paystack-signature")); err != nil {
		return webhookError(c, "paystack", err)
	}
	return respond(c, http.StatusOK, "Webhook received", nil)
}

func (pc *PaymentController) FlutterwaveWebhook(c echo.Context) error {
	body, err := readWebhookBody(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := pc.payments.HandleFlutterwaveWebhook(c.Request().Context(), body, c.Request().Header.Get("verif-hash")); err != nil {
		return webhookError(c, "flutterwave", err)
	}
	return respond(c, http.StatusOK, "Webhook received", nil)
}

// webhookError logs rejected deliveries with credentials stripped from the headers.
func webhookError(c echo.Context, provider string, err error) error {
	if utils.StatusOf(err) == http.StatusUnauthorized {
		c.Logger().Warnf("Rejected %s webhook from %s, headers: %v",
			provider, c.RealIP(), security.SanitizeHeaders(c.Request().Header.Clone()))
	}
	return respondError(c, err)
}

func readWebhookBody(c echo.Context) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil || len(body) == 0 {
		return nil, utils.BadRequest("Invalid webhook payload")
	}
	return body, nil
}
