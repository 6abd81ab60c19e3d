package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WishlistItem struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	Product   primitive.ObjectID `json:"product" bson:"product"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// WishlistEntry is a wishlist item joined with its product.
type WishlistEntry struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	Product   Product            `json:"product" bson:"product"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

type WishlistRequest struct {
	ProductID string `json:"productId" validate:"required"`
}
