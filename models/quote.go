package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	QuoteStatusPending   = "pending"
	QuoteStatusResponded = "responded"
	QuoteStatusAccepted  = "accepted"
	QuoteStatusRejected  = "rejected"
)

// Quote is a customer's request for a custom price on a product.
type Quote struct {
	ID               primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Product          primitive.ObjectID  `json:"product" bson:"product"`
	ProductName      string              `json:"productName" bson:"productName"`
	Image            string              `json:"image,omitempty" bson:"image,omitempty"`
	Quantity         int                 `json:"quantity" bson:"quantity"`
	CustomerName     string              `json:"customerName" bson:"customerName"`
	CustomerEmail    string              `json:"customerEmail" bson:"customerEmail"`
	CustomerPhone    string              `json:"customerPhone,omitempty" bson:"customerPhone,omitempty"`
	Company          string              `json:"company,omitempty" bson:"company,omitempty"`
	Message          string              `json:"message,omitempty" bson:"message,omitempty"`
	ExpectedPrice    float64             `json:"expectedPrice,omitempty" bson:"expectedPrice,omitempty"`
	Urgency          string              `json:"urgency" bson:"urgency"`
	Status           string              `json:"status" bson:"status"`
	ResponseMessage  string              `json:"responseMessage,omitempty" bson:"responseMessage,omitempty"`
	ApprovedPrice    *float64            `json:"approvedPrice,omitempty" bson:"approvedPrice,omitempty"`
	ApprovedQuantity *int                `json:"approvedQuantity,omitempty" bson:"approvedQuantity,omitempty"`
	RespondedAt      *time.Time          `json:"respondedAt,omitempty" bson:"respondedAt,omitempty"`
	RespondedBy      *primitive.ObjectID `json:"respondedBy,omitempty" bson:"respondedBy,omitempty"`
	CreatedAt        time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt" bson:"updatedAt"`
}

type QuoteRequest struct {
	ProductID     string  `json:"productId" validate:"required"`
	Quantity      int     `json:"quantity" validate:"required,min=1"`
	CustomerName  string  `json:"customerName" validate:"required,max=100"`
	CustomerEmail string  `json:"customerEmail" validate:"required,email"`
	CustomerPhone string  `json:"customerPhone,omitempty"`
	Company       string  `json:"company,omitempty" validate:"max=100"`
	Message       string  `json:"message,omitempty" validate:"max=1000"`
	ExpectedPrice float64 `json:"expectedPrice,omitempty" validate:"gte=0"`
	Urgency       string  `json:"urgency,omitempty" validate:"omitempty,oneof=low medium high"`
}

type QuoteResponseRequest struct {
	Status           string   `json:"status" validate:"required,oneof=responded accepted rejected"`
	ResponseMessage  string   `json:"responseMessage,omitempty" validate:"max=1000"`
	ApprovedPrice    *float64 `json:"approvedPrice,omitempty" validate:"omitempty,gte=0"`
	ApprovedQuantity *int     `json:"approvedQuantity,omitempty" validate:"omitempty,min=1"`
}

type QuoteFilter struct {
	Status string
	Page   int
	Limit  int
}
