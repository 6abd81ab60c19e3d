package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

type OrderItem struct {
	Product  primitive.ObjectID  `json:"product" bson:"product"`
	Name     string              `json:"name" bson:"name"`
	Quantity int                 `json:"quantity" bson:"quantity"`
	Price    float64             `json:"price" bson:"price"`
	Category *primitive.ObjectID `json:"category,omitempty" bson:"category,omitempty"`
}

type Address struct {
	Type       string `json:"type,omitempty" bson:"type,omitempty" validate:"omitempty,oneof=home work other"`
	Street     string `json:"street" bson:"street"`
	City       string `json:"city" bson:"city"`
	State      string `json:"state" bson:"state"`
	Country    string `json:"country" bson:"country"`
	PostalCode string `json:"postalCode" bson:"postalCode"`
}

type PaymentResult struct {
	ID           string `json:"id" bson:"id"`
	Status       string `json:"status" bson:"status"`
	UpdateTime   string `json:"updateTime" bson:"update_time"`
	EmailAddress string `json:"emailAddress" bson:"email_address"`
}

type Order struct {
	ID               primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	User             primitive.ObjectID `json:"user" bson:"user"`
	OrderItems       []OrderItem        `json:"orderItems" bson:"orderItems"`
	ShippingAddress  Address            `json:"shippingAddress" bson:"shippingAddress"`
	BillingAddress   Address            `json:"billingAddress" bson:"billingAddress"`
	PaymentMethod    string             `json:"paymentMethod" bson:"paymentMethod"`
	PaymentResult    *PaymentResult     `json:"paymentResult,omitempty" bson:"paymentResult,omitempty"`
	PaymentReference string             `json:"paymentReference,omitempty" bson:"paymentReference,omitempty"`
	PaymentProvider  string             `json:"paymentProvider,omitempty" bson:"paymentProvider,omitempty"`
	CouponCode       string             `json:"couponCode,omitempty" bson:"couponCode,omitempty"`
	DiscountAmount   float64            `json:"discountAmount" bson:"discountAmount"`
	TaxPrice         float64            `json:"taxPrice" bson:"taxPrice"`
	ShippingPrice    float64            `json:"shippingPrice" bson:"shippingPrice"`
	TotalPrice       float64            `json:"totalPrice" bson:"totalPrice"`
	IsPaid           bool               `json:"isPaid" bson:"isPaid"`
	PaidAt           *time.Time         `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
	IsDelivered      bool               `json:"isDelivered" bson:"isDelivered"`
	DeliveredAt      *time.Time         `json:"deliveredAt,omitempty" bson:"deliveredAt,omitempty"`
	Status           string             `json:"status" bson:"status"`
	TrackingNumber   string             `json:"trackingNumber,omitempty" bson:"trackingNumber,omitempty"`
	CreatedAt        time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type OrderItemRequest struct {
	Product  string `json:"product" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gte=1"`
}

type CreateOrderRequest struct {
	OrderItems      []OrderItemRequest `json:"orderItems" validate:"required,min=1,dive"`
	ShippingAddress Address            `json:"shippingAddress"`
	BillingAddress  Address            `json:"billingAddress"`
	PaymentMethod   string             `json:"paymentMethod" validate:"required,oneof=card bank-transfer mobile-money paypal"`
	TaxPrice        float64            `json:"taxPrice" validate:"gte=0"`
	ShippingPrice   float64            `json:"shippingPrice" validate:"gte=0"`
	CouponCode      string             `json:"couponCode,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status         string `json:"status" validate:"required,oneof=processing shipped delivered cancelled"`
	TrackingNumber string `json:"trackingNumber,omitempty"`
}

type BulkOrderStatusRequest struct {
	OrderIDs []string `json:"orderIds" validate:"required,min=1"`
	Status   string   `json:"status" validate:"required,oneof=processing shipped delivered cancelled"`
}

type OrderFilter struct {
	User   *primitive.ObjectID
	Status string
	Page   int
	Limit  int
}
