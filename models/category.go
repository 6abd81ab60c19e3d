package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const MaxCategoryLevel = 3

type Category struct {
	ID        primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string               `json:"name" bson:"name"`
	Slug      string               `json:"slug" bson:"slug"`
	Image     string               `json:"image" bson:"image"`
	Level     int                  `json:"level" bson:"level"`
	Parent    *primitive.ObjectID  `json:"parent" bson:"parent"`
	Ancestors []primitive.ObjectID `json:"ancestors" bson:"ancestors"`
	Path      string               `json:"path" bson:"path"`
	Order     int                  `json:"order" bson:"order"`
	IsActive  bool                 `json:"isActive" bson:"isActive"`
	CreatedAt time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// CategoryNode is a category with its children attached, as returned by the tree endpoint.
type CategoryNode struct {
	Category
	Subcategories []*CategoryNode `json:"subcategories"`
}

type CreateCategoryRequest struct {
	Name   string `json:"name" validate:"required"`
	Parent string `json:"parent,omitempty"`
	Order  *int   `json:"order,omitempty"`
	Image  string `json:"image,omitempty"`
}

// UpdateCategoryRequest carries optional fields. Parent is a pointer to a
// string so that an explicit empty string can move a category to the root.
type UpdateCategoryRequest struct {
	Name     *string `json:"name,omitempty"`
	Parent   *string `json:"parent,omitempty"`
	Order    *int    `json:"order,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
	Image    *string `json:"image,omitempty"`
}

type CategoryOrder struct {
	ID    string `json:"id" validate:"required"`
	Order int    `json:"order"`
}

type ReorderCategoriesRequest struct {
	Categories []CategoryOrder `json:"categories" validate:"required,min=1,dive"`
}

type CategoryFilter struct {
	Level  int
	Parent *primitive.ObjectID
	Roots  bool
	Active *bool
}

// ItemError reports the failure of one item in a per-item batch operation.
type ItemError struct {
	ID    string `json:"id,omitempty"`
	Row   int    `json:"row,omitempty"`
	Error string `json:"error"`
}

type BatchResult struct {
	Created int         `json:"created,omitempty"`
	Updated int         `json:"updated"`
	Skipped int         `json:"skipped,omitempty"`
	Failed  []ItemError `json:"failed"`
}
