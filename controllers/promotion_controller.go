package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/HSouheill/marketplace_backend/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PromotionManager interface {
	ValidateCoupon(ctx context.Context, code string, items []models.CartItem) (models.CouponResult, error)
	ListPromotions(ctx context.Context, activeOnly bool) ([]models.Promotion, error)
	GetPromotion(ctx context.Context, id primitive.ObjectID) (*models.Promotion, error)
	CreatePromotion(ctx context.Context, req models.PromotionRequest) (*models.Promotion, error)
	UpdatePromotion(ctx context.Context, id primitive.ObjectID, req models.PromotionRequest) (*models.Promotion, error)
	DeletePromotion(ctx context.Context, id primitive.ObjectID) error
}

type PromotionController struct {
	promotions PromotionManager
}

func NewPromotionController(promotions PromotionManager) *PromotionController {
	return &PromotionController{promotions: promotions}
}

// ValidateCoupon prices a coupon against the caller's cart without redeeming it.
func (pc *PromotionController) ValidateCoupon(c echo.Context) error {
	var req models.ValidateCouponRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, utils.BadRequest("Invalid request body"))
	}
	for _, item := range req.CartItems {
		if err := c.Validate(&item); err != nil {
			return respondError(c, utils.BadRequest(validationMessage(err)))
		}
	}

	result, err := pc.promotions.ValidateCoupon(c.Request().Context(), req.Code, req.CartItems)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, result.Promotion.Message, result)
}

func (pc *PromotionController) GetPromotions(c echo.Context) error {
	activeOnly, _ := strconv.ParseBool(c.QueryParam("active"))
	promos, err := pc.promotions.ListPromotions(c.Request().Context(), activeOnly)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Promotions retrieved successfully", promos)
}

func (pc *PromotionController) GetPromotion(c echo.Context) error {
	id, err := paramID(c, "id", "Invalid promotion id")
	if err != nil {
		return respondError(c, err)
	}
	promo, err := pc.promotions.GetPromotion(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Promotion retrieved successfully", promo)
}

func (pc *PromotionController) CreatePromotion(c echo.Context) error {
	var req models.PromotionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	promo, err := pc.promotions.CreatePromotion(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusCreated, "Promotion created successfully", promo)
}

func (pc *PromotionController) UpdatePromotion(c echo.Context) error {
	id, err := paramID(c, "id", "Invalid promotion id")
	if err != nil {
		return respondError(c, err)
	}
	var req models.PromotionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	promo, err := pc.promotions.UpdatePromotion(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Promotion updated successfully", promo)
}

func (pc *PromotionController) DeletePromotion(c echo.Context) error {
	id, err := paramID(c, "id", "Invalid promotion id")
	if err != nil {
		return respondError(c, err)
	}
	if err := pc.promotions.DeletePromotion(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Promotion deleted successfully", nil)
}
