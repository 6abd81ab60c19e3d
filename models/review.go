package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReviewHideThreshold is the number of reports that hides a review.
const ReviewHideThreshold = 5

type ReviewReport struct {
	User      primitive.ObjectID `json:"user" bson:"user"`
	Reason    string             `json:"reason" bson:"reason"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// ReviewReply is the selling vendor's public answer to a review.
type ReviewReply struct {
	User      primitive.ObjectID `json:"user" bson:"user"`
	Message   string             `json:"message" bson:"message"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// Review model. One per user and product.
type Review struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Product   primitive.ObjectID `json:"product" bson:"product"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	Rating    int                `json:"rating" bson:"rating"`
	Comment   string             `json:"comment" bson:"comment"`
	Reports   []ReviewReport     `json:"reports,omitempty" bson:"reports"`
	Reply     *ReviewReply       `json:"reply,omitempty" bson:"reply,omitempty"`
	IsActive  bool               `json:"isActive" bson:"isActive"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required,max=500"`
}

type ReviewReportRequest struct {
	Reason string `json:"reason" validate:"required,oneof=spam inappropriate false_information hate_speech other"`
}

type ReviewReplyRequest struct {
	Message string `json:"message" validate:"required,max=500"`
}

type ReviewVisibilityRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

type ReviewFilter struct {
	Product       *primitive.ObjectID
	User          *primitive.ObjectID
	IncludeHidden bool
	Page          int
	Limit         int
}

// RatingStats summarises the visible reviews of one product.
type RatingStats struct {
	Average float64 `bson:"avgRating"`
	Count   int     `bson:"nRating"`
}
