package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/HSouheill/marketplace_backend/repositories"
	"github.com/HSouheill/marketplace_backend/security"
	"github.com/HSouheill/marketplace_backend/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderPayer is the part of the order service that payments settle.
type OrderPayer interface {
	MarkOrderPaid(ctx context.Context, id primitive.ObjectID, payment models.PaymentResult) (*models.Order, error)
}

type PaymentConfig struct {
	CallbackURL           string
	PaystackSecret        string
	FlutterwaveSecretHash string
}

type PaymentService struct {
	gateways map[string]PaymentGateway
	orders   OrderStore
	users    UserFinder
	payer    OrderPayer
	cfg      PaymentConfig
}

func NewPaymentService(orders OrderStore, users UserFinder, payer OrderPayer, cfg PaymentConfig, gateways ...PaymentGateway) *PaymentService {
	byName := make(map[string]PaymentGateway, len(gateways))
	for _, g := range gateways {
		byName[g.Name()] = g
	}
	return &PaymentService{gateways: byName, orders: orders, users: users, payer: payer, cfg: cfg}
}

func (s *PaymentService) gateway(provider string) (PaymentGateway, error) {
	g, ok := s.gateways[provider]
	if !ok {
		return nil, utils.BadRequest("Unsupported payment provider")
	}
	return g, nil
}

func paymentReference(orderID primitive.ObjectID) string {
	return fmt.Sprintf("order-%s-%s", orderID.Hex(), uuid.New().String()[:8])
}

// InitializePayment opens a checkout for the caller's own unpaid order and
// remembers the reference on the order.
func (s *PaymentService) InitializePayment(ctx context.Context, userID primitive.ObjectID, req models.InitializePaymentRequest) (*models.PaymentSession, error) {
	g, err := s.gateway(req.Provider)
	if err != nil {
		return nil, err
	}

	orderID, err := primitive.ObjectIDFromHex(req.OrderID)
	if err != nil {
		return nil, utils.BadRequest("Invalid order id")
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NotFound("No order found with that ID")
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	if order.User != userID {
		return nil, utils.Forbidden("Not authorized to pay for this order")
	}
	if order.IsPaid {
		return nil, utils.BadRequest("Order is already paid")
	}
	if order.Status == models.OrderStatusCancelled {
		return nil, utils.BadRequest("Cannot pay for a cancelled order")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	reference := paymentReference(order.ID)
	session, err := g.Initialize(ctx, models.PaymentInit{
		Reference:   reference,
		Amount:      order.TotalPrice,
		Email:       user.Email,
		Name:        user.Name,
		CallbackURL: s.cfg.CallbackURL + "?provider=" + g.Name(),
		OrderID:     order.ID.Hex(),
	})
	if err != nil {
		log.Printf("Error initializing %s payment for order %s: %v", g.Name(), order.ID.Hex(), err)
		return nil, utils.NewAppError(http.StatusBadGateway, "Failed to initialize payment")
	}

	if err := s.orders.SetPaymentReference(ctx, order.ID, g.Name(), session.Reference); err != nil {
		return nil, fmt.Errorf("store payment reference: %w", err)
	}
	return session, nil
}

// VerifyPayment asks the provider about reference and settles the order when
// the charge succeeded.
func (s *PaymentService) VerifyPayment(ctx context.Context, provider, reference string) (*models.Order, *models.PaymentVerification, error) {
	g, err := s.gateway(provider)
	if err != nil {
		return nil, nil, err
	}

	verification, err := g.Verify(ctx, reference)
	if err != nil {
		log.Printf("Error verifying %s payment %s: %v", provider, reference, err)
		return nil, nil, utils.NewAppError(http.StatusBadGateway, "Failed to verify payment")
	}
	if !verification.Successful {
		return nil, verification, utils.BadRequest("Payment was not successful")
	}

	order, err := s.settle(ctx, verification)
	return order, verification, err
}

func (s *PaymentService) settle(ctx context.Context, v *models.PaymentVerification) (*models.Order, error) {
	order, err := s.orders.FindByReference(ctx, v.Reference)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NotFound("No order found for this payment reference")
		}
		return nil, fmt.Errorf("find order by reference: %w", err)
	}

	paid := decimal.NewFromFloat(v.Amount)
	if paid.LessThan(decimal.NewFromFloat(order.TotalPrice)) {
		log.Printf("Payment %s amount %.2f is below order total %.2f", v.Reference, v.Amount, order.TotalPrice)
		return nil, utils.BadRequest("Payment amount does not match order total")
	}

	return s.payer.MarkOrderPaid(ctx, order.ID, models.PaymentResult{
		ID:           v.TransactionID,
		Status:       v.Status,
		UpdateTime:   firstNonEmpty(v.PaidAt, time.Now().UTC().Format(time.RFC3339)),
		EmailAddress: v.Email,
	})
}

// HandlePaystackWebhook checks the HMAC signature and settles charge.success
// events. Other events are accepted and ignored.
func (s *PaymentService) HandlePaystackWebhook(ctx context.Context, body []byte, signature string) error {
	if s.cfg.PaystackSecret == "" || !security.VerifySHA512Signature(body, s.cfg.PaystackSecret, signature) {
		return utils.Unauthorized("Invalid webhook signature")
	}

	var event models.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return utils.BadRequest("Invalid webhook payload")
	}
	if event.Event != "charge.success" {
		log.Printf("Ignoring paystack event %s", event.Event)
		return nil
	}

	v := paystackVerification(event.Data, "")
	if !v.Successful || v.Reference == "" {
		return nil
	}
	_, err := s.settle(ctx, v)
	return err
}

// HandleFlutterwaveWebhook checks the verif-hash header, then confirms the
// transaction with the API before settling it.
func (s *PaymentService) HandleFlutterwaveWebhook(ctx context.Context, body []byte, hash string) error {
	if s.cfg.FlutterwaveSecretHash == "" || !security.ConstantTimeEqual(hash, s.cfg.FlutterwaveSecretHash) {
		return utils.Unauthorized("Invalid webhook signature")
	}

	var event models.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return utils.BadRequest("Invalid webhook payload")
	}
	if event.Event != "charge.completed" || stringField(event.Data, "status", "") != "successful" {
		log.Printf("Ignoring flutterwave event %s", event.Event)
		return nil
	}

	reference := stringField(event.Data, "tx_ref", "")
	if reference == "" {
		return utils.BadRequest("Webhook is missing tx_ref")
	}
	_, _, err := s.VerifyPayment(ctx, models.ProviderFlutterwave, reference)
	return err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
