package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/HSouheill/marketplace_backend/repositories"
	"github.com/HSouheill/marketplace_backend/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PromotionStore interface {
	Create(ctx context.Context, promo *models.Promotion) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Promotion, error)
	FindActiveByName(ctx context.Context, code string, now time.Time) (*models.Promotion, error)
	List(ctx context.Context, activeOnly bool, now time.Time) ([]models.Promotion, error)
	Update(ctx context.Context, promo *models.Promotion) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	IncrementUsage(ctx context.Context, id primitive.ObjectID) (bool, error)
	DecrementUsage(ctx context.Context, id primitive.ObjectID) error
}

type PromotionService struct {
	store PromotionStore
	now   func() time.Time
}

func NewPromotionService(store PromotionStore) *PromotionService {
	return &PromotionService{store: store, now: time.Now}
}

// ValidateCoupon looks code up and evaluates it against the cart.
func (s *PromotionService) ValidateCoupon(ctx context.Context, code string, items []models.CartItem) (models.CouponResult, error) {
	code = strings.TrimSpace(code)
	if code == "" || len(items) == 0 {
		return models.CouponResult{}, utils.BadRequest("Coupon code and cart items are required")
	}

	now := s.now()
	promo, err := s.store.FindActiveByName(ctx, code, now)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.CouponResult{}, utils.BadRequest("Invalid or expired coupon code")
		}
		return models.CouponResult{}, fmt.Errorf("find promotion: %w", err)
	}

	return EvaluateCoupon(promo, items, now)
}

// RedeemPromotion counts one use of the promotion, failing once its limit is hit.
func (s *PromotionService) RedeemPromotion(ctx context.Context, id primitive.ObjectID) error {
	ok, err := s.store.IncrementUsage(ctx, id)
	if err != nil {
		return fmt.Errorf("redeem promotion: %w", err)
	}
	if !ok {
		return utils.BadRequest("Coupon usage limit has been reached")
	}
	return nil
}

// ReleasePromotion gives back a use taken by RedeemPromotion.
func (s *PromotionService) ReleasePromotion(ctx context.Context, id primitive.ObjectID) error {
	if err := s.store.DecrementUsage(ctx, id); err != nil {
		return fmt.Errorf("release promotion: %w", err)
	}
	return nil
}

func (s *PromotionService) ListPromotions(ctx context.Context, activeOnly bool) ([]models.Promotion, error) {
	promos, err := s.store.List(ctx, activeOnly, s.now())
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}
	return promos, nil
}

func (s *PromotionService) GetPromotion(ctx context.Context, id primitive.ObjectID) (*models.Promotion, error) {
	promo, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NotFound("No promotion found with that ID")
		}
		return nil, fmt.Errorf("find promotion: %w", err)
	}
	return promo, nil
}

func (s *PromotionService) CreatePromotion(ctx context.Context, req models.PromotionRequest) (*models.Promotion, error) {
	promo := &models.Promotion{IsActive: true}
	if err := applyPromotionRequest(promo, req); err != nil {
		return nil, err
	}

	now := s.now()
	promo.CreatedAt = now
	promo.UpdatedAt = now

	if err := s.store.Create(ctx, promo); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, utils.BadRequest("A promotion with this name already exists")
		}
		return nil, fmt.Errorf("create promotion: %w", err)
	}
	return promo, nil
}

// UpdatePromotion replaces the promotion's terms. The usage count is kept.
func (s *PromotionService) UpdatePromotion(ctx context.Context, id primitive.ObjectID, req models.PromotionRequest) (*models.Promotion, error) {
	promo, err := s.GetPromotion(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyPromotionRequest(promo, req); err != nil {
		return nil, err
	}
	promo.UpdatedAt = s.now()

	if err := s.store.Update(ctx, promo); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, utils.BadRequest("A promotion with this name already exists")
		case errors.Is(err, repositories.ErrNotFound):
			return nil, utils.NotFound("No promotion found with that ID")
		}
		return nil, fmt.Errorf("update promotion: %w", err)
	}
	return promo, nil
}

func (s *PromotionService) DeletePromotion(ctx context.Context, id primitive.ObjectID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return utils.NotFound("No promotion found with that ID")
		}
		return fmt.Errorf("delete promotion: %w", err)
	}
	return nil
}

func applyPromotionRequest(promo *models.Promotion, req models.PromotionRequest) error {
	if !req.EndDate.After(req.StartDate) {
		return utils.BadRequest("End date must be after start date")
	}
	if req.Value < 0 {
		return utils.BadRequest("Promotion value cannot be negative")
	}
	if req.Type == models.PromotionPercentage && req.Value > 100 {
		return utils.BadRequest("Percentage discount cannot exceed 100")
	}

	applicableTo := req.ApplicableTo
	if applicableTo == "" {
		applicableTo = models.ApplicableAllProducts
	}

	products, err := utils.ParseObjectIDs(req.Products)
	if err != nil {
		return utils.BadRequest("Invalid product id in promotion")
	}
	categories, err := utils.ParseObjectIDs(req.Categories)
	if err != nil {
		return utils.BadRequest("Invalid category id in promotion")
	}
	if applicableTo == models.ApplicableSpecificProducts && len(products) == 0 {
		return utils.BadRequest("Please select at least one product")
	}
	if applicableTo == models.ApplicableSpecificCategories && len(categories) == 0 {
		return utils.BadRequest("Please select at least one category")
	}

	promo.Name = strings.TrimSpace(req.Name)
	promo.Type = req.Type
	promo.Value = req.Value
	promo.StartDate = req.StartDate
	promo.EndDate = req.EndDate
	promo.ApplicableTo = applicableTo
	promo.Products = products
	promo.Categories = categories
	promo.MinimumOrderAmount = req.MinimumOrderAmount
	promo.MaximumDiscountAmount = req.MaximumDiscountAmount
	promo.UsageLimit = req.UsageLimit
	if req.IsActive != nil {
		promo.IsActive = *req.IsActive
	}
	return nil
}
