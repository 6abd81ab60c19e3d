package controllers

import (
	"context"
	"net/http"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/HSouheill/marketplace_backend/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type QuoteManager interface {
	CreateQuote(ctx context.Context, req models.QuoteRequest) (*models.Quote, error)
	ListQuotes(ctx context.Context, filter models.QuoteFilter) (models.PagedResult, error)
	GetQuote(ctx context.Context, id primitive.ObjectID) (*models.Quote, error)
	RespondToQuote(ctx context.Context, actor models.Actor, id primitive.ObjectID, req models.QuoteResponseRequest) (*models.Quote, error)
	GetCustomerQuote(ctx context.Context, productHex, email string) (*models.Quote, error)
}

type QuoteController struct {
	quotes QuoteManager
}

func NewQuoteController(quotes QuoteManager) *QuoteController {
	return &QuoteController{quotes: quotes}
}

func (qc *QuoteController) CreateQuote(c echo.Context) error {
	var req models.QuoteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	quote, err := qc.quotes.CreateQuote(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusCreated, "Quote request submitted successfully", quote)
}

// GetCustomerQuote takes ?product= and ?email=.
func (qc *QuoteController) GetCustomerQuote(c echo.Context) error {
	product, email := c.QueryParam("product"), c.QueryParam("email")
	if product == "" || email == "" {
		return respondError(c, utils.BadRequest("Please provide a product and an email"))
	}
	quote, err := qc.quotes.GetCustomerQuote(c.Request().Context(), product, email)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Quote retrieved successfully", quote)
}

// GetQuotes supports ?status=, ?page= and ?limit=.
func (qc *QuoteController) GetQuotes(c echo.Context) error {
	filter := models.QuoteFilter{
		Status: c.QueryParam("status"),
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
	}
	page, err := qc.quotes.ListQuotes(c.Request().Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Quotes retrieved successfully", page)
}

func (qc *QuoteController) GetQuote(c echo.Context) error {
	id, err := paramID(c, "id", "Invalid quote id")
	if err != nil {
		return respondError(c, err)
	}
	quote, err := qc.quotes.GetQuote(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Quote retrieved successfully", quote)
}

func (qc *QuoteController) UpdateQuoteStatus(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id", "Invalid quote id")
	if err != nil {
		return respondError(c, err)
	}
	var req models.QuoteResponseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	quote, err := qc.quotes.RespondToQuote(c.Request().Context(), actor, id, req)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Quote updated successfully", quote)
}
