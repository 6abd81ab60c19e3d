package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PromotionPercentage  = "percentage"
	PromotionFixedAmount = "fixed_amount"

	ApplicableAllProducts        = "all_products"
	ApplicableSpecificProducts   = "specific_products"
	ApplicableSpecificCategories = "specific_categories"
)

// Promotion is a coupon; its Name doubles as the code customers type in.
type Promotion struct {
	ID                    primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Name                  string               `json:"name" bson:"name"`
	Type                  string               `json:"type" bson:"type"`
	Value                 float64              `json:"value" bson:"value"`
	StartDate             time.Time            `json:"startDate" bson:"startDate"`
	EndDate               time.Time            `json:"endDate" bson:"endDate"`
	IsActive              bool                 `json:"isActive" bson:"isActive"`
	ApplicableTo          string               `json:"applicableTo" bson:"applicableTo"`
	Products              []primitive.ObjectID `json:"products" bson:"products"`
	Categories            []primitive.ObjectID `json:"categories" bson:"categories"`
	MinimumOrderAmount    float64              `json:"minimumOrderAmount" bson:"minimumOrderAmount"`
	MaximumDiscountAmount *float64             `json:"maximumDiscountAmount,omitempty" bson:"maximumDiscountAmount,omitempty"`
	UsageLimit            *int                 `json:"usageLimit,omitempty" bson:"usageLimit,omitempty"`
	UsedCount             int                  `json:"usedCount" bson:"usedCount"`
	CreatedAt             time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt             time.Time            `json:"updatedAt" bson:"updatedAt"`
}

type PromotionRequest struct {
	Name                  string    `json:"name" validate:"required,min=2,max=50"`
	Type                  string    `json:"type" validate:"required,oneof=percentage fixed_amount"`
	Value                 float64   `json:"value" validate:"gte=0"`
	StartDate             time.Time `json:"startDate" validate:"required"`
	EndDate               time.Time `json:"endDate" validate:"required"`
	IsActive              *bool     `json:"isActive,omitempty"`
	ApplicableTo          string    `json:"applicableTo,omitempty" validate:"omitempty,oneof=all_products specific_products specific_categories"`
	Products              []string  `json:"products,omitempty"`
	Categories            []string  `json:"categories,omitempty"`
	MinimumOrderAmount    float64   `json:"minimumOrderAmount" validate:"gte=0"`
	MaximumDiscountAmount *float64  `json:"maximumDiscountAmount,omitempty" validate:"omitempty,gt=0"`
	UsageLimit            *int      `json:"usageLimit,omitempty" validate:"omitempty,gt=0"`
}

type CartItem struct {
	Product  string  `json:"product" validate:"required"`
	Price    float64 `json:"price" validate:"gte=0"`
	Quantity int     `json:"quantity" validate:"gte=1"`
	Category string  `json:"category,omitempty"`
}

type ValidateCouponRequest struct {
	Code      string     `json:"code"`
	CartItems []CartItem `json:"cartItems"`
}

type PromotionSummary struct {
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Value   float64 `json:"value"`
	Message string  `json:"message"`
}

type CouponResult struct {
	Success   bool             `json:"success"`
	Discount  float64          `json:"discount"`
	Promotion PromotionSummary `json:"promotion"`

	PromotionID primitive.ObjectID `json:"-"`
}
