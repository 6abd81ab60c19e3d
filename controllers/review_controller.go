package controllers

import (
	"context"
	"net/http"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/HSouheill/marketplace_backend/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewManager interface {
	CreateReview(ctx context.Context, actor models.Actor, productID primitive.ObjectID, req models.ReviewRequest) (*models.Review, error)
	ListProductReviews(ctx context.Context, productID primitive.ObjectID, page, limit int) (models.PagedResult, error)
	ListMyReviews(ctx context.Context, userID primitive.ObjectID, page, limit int) (models.PagedResult, error)
	ListReviews(ctx context.Context, filter models.ReviewFilter) (models.PagedResult, error)
	GetReview(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	UpdateReview(ctx context.Context, actor models.Actor, id primitive.ObjectID, req models.ReviewRequest) (*models.Review, error)
	DeleteReview(ctx context.Context, actor models.Actor, id primitive.ObjectID) error
	ReportReview(ctx context.Context, actor models.Actor, id primitive.ObjectID, req models.ReviewReportRequest) (*models.Review, error)
	ReplyToReview(ctx context.Context, actor models.Actor, id primitive.ObjectID, req models.ReviewReplyRequest) (*models.Review, error)
	SetReviewVisibility(ctx context.Context, id primitive.ObjectID, active bool) (*models.Review, error)
}

type ReviewController struct {
	reviews ReviewManager
}

func NewReviewController(reviews ReviewManager) *ReviewController {
	return &ReviewController{reviews: reviews}
}

// GetProductReviews lists the visible reviews of a product, newest first.
func (rc *ReviewController) GetProductReviews(c echo.Context) error {
	productID, err := paramID(c, "id", "Invalid product id")
	if err != nil {
		return respondError(c, err)
	}
	page, err := rc.reviews.ListProductReviews(c.Request().Context(), productID, queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Reviews retrieved successfully", page)
}

func (rc *ReviewController) CreateReview(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	productID, err := paramID(c, "id", "Invalid product id")
	if err != nil {
		return respondError(c, err)
	}
	var req models.ReviewRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, utils.BadRequest("Invalid request body"))
	}
	if req.Rating < 1 || req.Rating > 5 {
		return respondError(c, utils.BadRequest("Rating must be between 1 and 5"))
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, utils.BadRequest(validationMessage(err)))
	}

	review, err := rc.reviews.CreateReview(c.Request().Context(), actor, productID, req)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusCreated, "Review created successfully", review)
}

func (rc *ReviewController) GetMyReviews(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	page, err := rc.reviews.ListMyReviews(c.Request().Context(), actor.ID, queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Reviews retrieved successfully", page)
}

// GetReviews is the admin moderation list. It supports ?product= and ?user=.
func (rc *ReviewController) GetReviews(c echo.Context) error {
	filter := models.ReviewFilter{Page: queryInt(c, "page"), Limit: queryInt(c, "limit")}
	if product := c.QueryParam("product"); product != "" {
		id, err := primitive.ObjectIDFromHex(product)
		if err != nil {
			return respondError(c, utils.BadRequest("Invalid product id"))
		}
		filter.Product = &id
	}
	if user := c.QueryParam("user"); user != "" {
		id, err := primitive.ObjectIDFromHex(user)
		if err != nil {
			return respondError(c, utils.BadRequest("Invalid user id"))
		}
		filter.User = &id
	}

	page, err := rc.reviews.ListReviews(c.Request().Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Reviews retrieved successfully", page)
}

func (rc *ReviewController) GetReview(c echo.Context) error {
	id, err := paramID(c, "id", "Invalid review id")
	if err != nil {
		return respondError(c, err)
	}
	review, err := rc.reviews.GetReview(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Review retrieved successfully", review)
}

func (rc *ReviewController) UpdateReview(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id", "Invalid review id")
	if err != nil {
		return respondError(c, err)
	}
	var req models.ReviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	review, err := rc.reviews.UpdateReview(c.Request().Context(), actor, id, req)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Review updated successfully", review)
}

func (rc *ReviewController) DeleteReview(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id", "Invalid review id")
	if err != nil {
		return respondError(c, err)
	}
	if err := rc.reviews.DeleteReview(c.Request().Context(), actor, id); err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Review deleted successfully", nil)
}

func (rc *ReviewController) ReportReview(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id", "Invalid review id")
	if err != nil {
		return respondError(c, err)
	}
	var req models.ReviewReportRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	if _, err := rc.reviews.ReportReview(c.Request().Context(), actor, id, req); err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Review reported successfully", nil)
}

// PostReviewReply lets the product's vendor answer a review.
func (rc *ReviewController) PostReviewReply(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id", "Invalid review id")
	if err != nil {
		return respondError(c, err)
	}
	var req models.ReviewReplyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	review, err := rc.reviews.ReplyToReview(c.Request().Context(), actor, id, req)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Reply posted successfully", review)
}

func (rc *ReviewController) UpdateReviewVisibility(c echo.Context) error {
	id, err := paramID(c, "id", "Invalid review id")
	if err != nil {
		return respondError(c, err)
	}
	var req models.ReviewVisibilityRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	review, err := rc.reviews.SetReviewVisibility(c.Request().Context(), id, *req.IsActive)
	if err != nil {
		return respondError(c, err)
	}
	message := "Review hidden successfully"
	if review.IsActive {
		message = "Review restored successfully"
	}
	return respond(c, http.StatusOK, message, review)
}
