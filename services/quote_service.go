package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/HSouheill/marketplace_backend/repositories"
	"github.com/HSouheill/marketplace_backend/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type QuoteStore interface {
	Create(ctx context.Context, quote *models.Quote) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Quote, error)
	List(ctx context.Context, filter models.QuoteFilter) ([]models.Quote, int64, error)
	Respond(ctx context.Context, quote *models.Quote) error
	FindLatestForCustomer(ctx context.Context, productID primitive.ObjectID, email string) (*models.Quote, error)
}

var errQuoteNotFound = utils.NotFound("No quote found with that ID")

type QuoteService struct {
	store    QuoteStore
	products ProductFinder
	mailer   Mailer
}

func NewQuoteService(store QuoteStore, products ProductFinder, mailer Mailer) *QuoteService {
	return &QuoteService{store: store, products: products, mailer: mailer}
}

// CreateQuote records a customer's price request. Customers need no account.
func (s *QuoteService) CreateQuote(ctx context.Context, req models.QuoteRequest) (*models.Quote, error) {
	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return nil, utils.BadRequest("Invalid product id")
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NotFound("Product not found")
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	if !product.IsActive {
		return nil, utils.BadRequest("This product is not available")
	}

	email, err := utils.SanitizeEmail(req.CustomerEmail)
	if err != nil {
		return nil, utils.BadRequest("Invalid email address")
	}
	phone, err := utils.SanitizePhone(req.CustomerPhone)
	if err != nil {
		return nil, utils.BadRequest("Invalid phone number")
	}
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return nil, utils.BadRequest("Please provide all required fields")
	}

	urgency := req.Urgency
	if urgency == "" {
		urgency = "medium"
	}

	now := time.Now()
	quote := &models.Quote{
		Product:       productID,
		ProductName:   product.Name,
		Image:         product.ImageCover,
		Quantity:      req.Quantity,
		CustomerName:  name,
		CustomerEmail: email,
		CustomerPhone: phone,
		Company:       strings.TrimSpace(req.Company),
		Message:       strings.TrimSpace(req.Message),
		ExpectedPrice: req.ExpectedPrice,
		Urgency:       urgency,
		Status:        models.QuoteStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Create(ctx, quote); err != nil {
		return nil, fmt.Errorf("create quote: %w", err)
	}
	return quote, nil
}

func (s *QuoteService) ListQuotes(ctx context.Context, filter models.QuoteFilter) (models.PagedResult, error) {
	filter.Page, filter.Limit = utils.NormalizePage(filter.Page, filter.Limit)
	quotes, total, err := s.store.List(ctx, filter)
	if err != nil {
		return models.PagedResult{}, fmt.Errorf("list quotes: %w", err)
	}
	return models.PagedResult{Items: quotes, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *QuoteService) GetQuote(ctx context.Context, id primitive.ObjectID) (*models.Quote, error) {
	quote, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errQuoteNotFound
		}
		return nil, fmt.Errorf("find quote: %w", err)
	}
	return quote, nil
}

// RespondToQuote records the admin's answer and emails it to the customer.
// A failed email is logged; the response stays saved.
func (s *QuoteService) RespondToQuote(ctx context.Context, actor models.Actor, id primitive.ObjectID, req models.QuoteResponseRequest) (*models.Quote, error) {
	quote, err := s.GetQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status == models.QuoteStatusAccepted && req.ApprovedPrice == nil && quote.ApprovedPrice == nil {
		return nil, utils.BadRequest("An accepted quote needs an approved price")
	}

	now := time.Now()
	responder := actor.ID
	quote.Status = req.Status
	quote.ResponseMessage = strings.TrimSpace(req.ResponseMessage)
	if req.ApprovedPrice != nil {
		quote.ApprovedPrice = req.ApprovedPrice
	}
	if req.ApprovedQuantity != nil {
		quote.ApprovedQuantity = req.ApprovedQuantity
	}
	quote.RespondedAt = &now
	quote.RespondedBy = &responder

	if err := s.store.Respond(ctx, quote); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errQuoteNotFound
		}
		return nil, fmt.Errorf("respond to quote: %w", err)
	}

	if err := s.mailer.Send(quote.CustomerEmail, "Your quote for "+quote.ProductName, quoteResponseEmail(quote)); err != nil {
		log.Printf("Error emailing quote %s response to %s: %v", quote.ID.Hex(), quote.CustomerEmail, err)
	}
	return quote, nil
}

// GetCustomerQuote lets a customer look up their latest quote for a product
// by the email they requested it with.
func (s *QuoteService) GetCustomerQuote(ctx context.Context, productHex, rawEmail string) (*models.Quote, error) {
	productID, err := primitive.ObjectIDFromHex(productHex)
	if err != nil {
		return nil, utils.BadRequest("Invalid product id")
	}
	email, err := utils.SanitizeEmail(rawEmail)
	if err != nil {
		return nil, utils.BadRequest("Invalid email address")
	}
	quote, err := s.store.FindLatestForCustomer(ctx, productID, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NotFound("No quote found for this product")
		}
		return nil, fmt.Errorf("find customer quote: %w", err)
	}
	return quote, nil
}
