package services

import (
	"time"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/HSouheill/marketplace_backend/utils"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var hundred = decimal.NewFromInt(100)

// EvaluateCoupon computes the discount promo grants on items at time now.
// It never changes the promotion; usage is only counted on redemption.
func EvaluateCoupon(promo *models.Promotion, items []models.CartItem, now time.Time) (models.CouponResult, error) {
	if promo == nil || !promo.IsActive || now.Before(promo.StartDate) || now.After(promo.EndDate) {
		return models.CouponResult{}, utils.BadRequest("Invalid or expired coupon code")
	}
	if promo.UsageLimit != nil && promo.UsedCount >= *promo.UsageLimit {
		return models.CouponResult{}, utils.BadRequest("Coupon usage limit has been reached")
	}

	applicable := applicableItems(promo, items)
	if len(applicable) == 0 {
		return models.CouponResult{}, utils.BadRequest("Coupon does not apply to any items in your cart")
	}

	total := decimal.Zero
	for _, item := range applicable {
		total = total.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	value := decimal.NewFromFloat(promo.Value)
	discount := decimal.Zero
	switch promo.Type {
	case models.PromotionPercentage:
		discount = value.Div(hundred).Mul(total)
		if promo.MaximumDiscountAmount != nil && *promo.MaximumDiscountAmount > 0 {
			discount = decimal.Min(discount, decimal.NewFromFloat(*promo.MaximumDiscountAmount))
		}
	case models.PromotionFixedAmount:
		discount = decimal.Min(value, total)
	}
	discount = discount.Round(2)

	if promo.MinimumOrderAmount > 0 {
		minimum := decimal.NewFromFloat(promo.MinimumOrderAmount)
		if total.LessThan(minimum) {
			return models.CouponResult{}, utils.BadRequest("Minimum order amount for this coupon is ₦" + minimum.String())
		}
	}

	if !discount.IsPositive() {
		return models.CouponResult{}, utils.BadRequest("Coupon does not apply to any items in your cart")
	}

	amount, _ := discount.Float64()
	return models.CouponResult{
		Success:  true,
		Discount: amount,
		Promotion: models.PromotionSummary{
			Name:    promo.Name,
			Type:    promo.Type,
			Value:   promo.Value,
			Message: "Coupon applied: -₦" + discount.String(),
		},
		PromotionID: promo.ID,
	}, nil
}

// applicableItems returns the cart lines a promotion's targeting matches.
// Category targeting relies on the category carried by the cart line.
func applicableItems(promo *models.Promotion, items []models.CartItem) []models.CartItem {
	switch promo.ApplicableTo {
	case models.ApplicableSpecificProducts:
		return filterItems(items, func(item models.CartItem) bool {
			return hexIn(item.Product, promo.Products)
		})
	case models.ApplicableSpecificCategories:
		return filterItems(items, func(item models.CartItem) bool {
			return item.Category != "" && hexIn(item.Category, promo.Categories)
		})
	default:
		return items
	}
}

func filterItems(items []models.CartItem, keep func(models.CartItem) bool) []models.CartItem {
	out := make([]models.CartItem, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func hexIn(hex string, ids []primitive.ObjectID) bool {
	for _, id := range ids {
		if id.Hex() == hex {
			return true
		}
	}
	return false
}
