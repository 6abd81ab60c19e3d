package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const LowStockThreshold = 10

// Product model. Vendor holds the owning vendor's user id.
type Product struct {
	ID              primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Name            string              `json:"name" bson:"name"`
	Slug            string              `json:"slug" bson:"slug"`
	Description     string              `json:"description" bson:"description"`
	Price           float64             `json:"price" bson:"price"`
	Quantity        int                 `json:"quantity" bson:"quantity"`
	Sold            int                 `json:"sold" bson:"sold"`
	Category        primitive.ObjectID  `json:"category" bson:"category"`
	Brand           *primitive.ObjectID `json:"brand,omitempty" bson:"brand,omitempty"`
	Vendor          *primitive.ObjectID `json:"vendor,omitempty" bson:"vendor,omitempty"`
	ImageCover      string              `json:"imageCover,omitempty" bson:"imageCover,omitempty"`
	Images          []string            `json:"images,omitempty" bson:"images,omitempty"`
	IsActive        bool                `json:"isActive" bson:"isActive"`
	RatingsAverage  float64             `json:"ratingsAverage" bson:"ratingsAverage"`
	RatingsQuantity int                 `json:"ratingsQuantity" bson:"ratingsQuantity"`
	CreatedAt       time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt" bson:"updatedAt"`
}

type ProductRequest struct {
	Name        string  `json:"name" validate:"required,min=5,max=100"`
	Description string  `json:"description" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
	Category    string  `json:"category" validate:"required"`
	Brand       string  `json:"brand,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// MaxProductImages caps the gallery of one product.
const MaxProductImages = 10

type ProductFilter struct {
	Category *primitive.ObjectID
	Brand    *primitive.ObjectID
	Vendor   *primitive.ObjectID
	Query    string
	Page     int
	Limit    int
}

type PagedResult struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}
