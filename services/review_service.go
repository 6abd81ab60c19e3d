package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/HSouheill/marketplace_backend/repositories"
	"github.com/HSouheill/marketplace_backend/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewStore interface {
	Create(ctx context.Context, review *models.Review) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	List(ctx context.Context, filter models.ReviewFilter) ([]models.Review, int64, error)
	Update(ctx context.Context, review *models.Review) error
	SetActive(ctx context.Context, id primitive.ObjectID, active bool) error
	SetReply(ctx context.Context, id primitive.ObjectID, reply models.ReviewReply) error
	AddReport(ctx context.Context, id primitive.ObjectID, report models.ReviewReport, hideAt int) (*models.Review, error)
	RatingStats(ctx context.Context, productID primitive.ObjectID) (models.RatingStats, error)
}

// RatedProducts is the product side of reviews.
type RatedProducts interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	UpdateRatings(ctx context.Context, id primitive.ObjectID, average float64, count int) error
}

// PurchaseChecker tells whether a user received a product.
type PurchaseChecker interface {
	HasDeliveredItem(ctx context.Context, userID, productID primitive.ObjectID) (bool, error)
}

var errReviewNotFound = utils.NotFound("Review not found")

type ReviewService struct {
	store     ReviewStore
	products  RatedProducts
	purchases PurchaseChecker
	notifier  Notifier
}

func NewReviewService(store ReviewStore, products RatedProducts, purchases PurchaseChecker, notifier Notifier) *ReviewService {
	return &ReviewService{store: store, products: products, purchases: purchases, notifier: notifier}
}

// CreateReview records the actor's review of a product they received.
// Each user reviews a product at most once.
func (s *ReviewService) CreateReview(ctx context.Context, actor models.Actor, productID primitive.ObjectID, req models.ReviewRequest) (*models.Review, error) {
	product, err := s.findProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	bought, err := s.purchases.HasDeliveredItem(ctx, actor.ID, productID)
	if err != nil {
		return nil, fmt.Errorf("check purchase: %w", err)
	}
	if !bought {
		return nil, utils.Forbidden("You can only review products you have purchased")
	}

	now := time.Now()
	review := &models.Review{
		Product:   productID,
		User:      actor.ID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, review); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, utils.Conflict("You have already reviewed this product")
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.refreshRatings(ctx, productID)
	if product.Vendor != nil {
		s.notify(ctx, *product.Vendor, "New review",
			fmt.Sprintf("%s received a %d star review", product.Name, review.Rating), review)
	}
	return review, nil
}

func (s *ReviewService) ListProductReviews(ctx context.Context, productID primitive.ObjectID, page, limit int) (models.PagedResult, error) {
	return s.list(ctx, models.ReviewFilter{Product: &productID, Page: page, Limit: limit})
}

// ListMyReviews includes the user's hidden reviews.
func (s *ReviewService) ListMyReviews(ctx context.Context, userID primitive.ObjectID, page, limit int) (models.PagedResult, error) {
	return s.list(ctx, models.ReviewFilter{User: &userID, IncludeHidden: true, Page: page, Limit: limit})
}

// ListReviews is the moderation view: hidden reviews are included.
func (s *ReviewService) ListReviews(ctx context.Context, filter models.ReviewFilter) (models.PagedResult, error) {
	filter.IncludeHidden = true
	return s.list(ctx, filter)
}

func (s *ReviewService) list(ctx context.Context, filter models.ReviewFilter) (models.PagedResult, error) {
	filter.Page, filter.Limit = utils.NormalizePage(filter.Page, filter.Limit)
	reviews, total, err := s.store.List(ctx, filter)
	if err != nil {
		return models.PagedResult{}, fmt.Errorf("list reviews: %w", err)
	}
	return models.PagedResult{Items: reviews, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// GetReview returns a visible review.
func (s *ReviewService) GetReview(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	review, err := s.findReview(ctx, id)
	if err != nil {
		return nil, err
	}
	if !review.IsActive {
		return nil, errReviewNotFound
	}
	return review, nil
}

func (s *ReviewService) UpdateReview(ctx context.Context, actor models.Actor, id primitive.ObjectID, req models.ReviewRequest) (*models.Review, error) {
	review, err := s.findReview(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.User != actor.ID && !actor.IsAdmin() {
		return nil, utils.Forbidden("You are not authorized to update this review")
	}

	review.Rating = req.Rating
	review.Comment = strings.TrimSpace(req.Comment)
	if err := s.store.Update(ctx, review); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errReviewNotFound
		}
		return nil, fmt.Errorf("update review: %w", err)
	}
	s.refreshRatings(ctx, review.Product)
	return review, nil
}

// DeleteReview hides the review. The author cannot review the product again.
func (s *ReviewService) DeleteReview(ctx context.Context, actor models.Actor, id primitive.ObjectID) error {
	review, err := s.findReview(ctx, id)
	if err != nil {
		return err
	}
	if review.User != actor.ID && !actor.IsAdmin() {
		return utils.Forbidden("You are not authorized to delete this review")
	}
	return s.setActive(ctx, review, false)
}

// SetReviewVisibility lets an admin hide or restore a review.
func (s *ReviewService) SetReviewVisibility(ctx context.Context, id primitive.ObjectID, active bool) (*models.Review, error) {
	review, err := s.findReview(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.setActive(ctx, review, active); err != nil {
		return nil, err
	}
	review.IsActive = active
	return review, nil
}

func (s *ReviewService) setActive(ctx context.Context, review *models.Review, active bool) error {
	if err := s.store.SetActive(ctx, review.ID, active); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return errReviewNotFound
		}
		return fmt.Errorf("set review visibility: %w", err)
	}
	s.refreshRatings(ctx, review.Product)
	return nil
}

// ReportReview files one report per user. The review is hidden once it
// collects models.ReviewHideThreshold reports.
func (s *ReviewService) ReportReview(ctx context.Context, actor models.Actor, id primitive.ObjectID, req models.ReviewReportRequest) (*models.Review, error) {
	review, err := s.findReview(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.User == actor.ID {
		return nil, utils.BadRequest("You cannot report your own review")
	}

	report := models.ReviewReport{User: actor.ID, Reason: req.Reason, CreatedAt: time.Now()}
	updated, err := s.store.AddReport(ctx, id, report, models.ReviewHideThreshold)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.BadRequest("You have already reported this review")
		}
		return nil, fmt.Errorf("report review: %w", err)
	}

	if review.IsActive && !updated.IsActive {
		log.Printf("Review %s hidden after %d reports", id.Hex(), len(updated.Reports))
		s.refreshRatings(ctx, updated.Product)
	}
	return updated, nil
}

// ReplyToReview sets the public answer of the product's vendor. Admins may
// reply to any review.
func (s *ReviewService) ReplyToReview(ctx context.Context, actor models.Actor, id primitive.ObjectID, req models.ReviewReplyRequest) (*models.Review, error) {
	review, err := s.findReview(ctx, id)
	if err != nil {
		return nil, err
	}
	product, err := s.findProduct(ctx, review.Product)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && (product.Vendor == nil || *product.Vendor != actor.ID) {
		return nil, utils.Forbidden("You can only reply to reviews of your own products")
	}

	reply := models.ReviewReply{User: actor.ID, Message: strings.TrimSpace(req.Message), CreatedAt: time.Now()}
	if err := s.store.SetReply(ctx, id, reply); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errReviewNotFound
		}
		return nil, fmt.Errorf("reply to review: %w", err)
	}
	review.Reply = &reply

	s.notify(ctx, review.User, "Reply to your review", "The seller replied to your review of "+product.Name, review)
	return review, nil
}

// refreshRatings recomputes the product's rating summary from its visible
// reviews. Failures are logged; the review change itself has succeeded.
func (s *ReviewService) refreshRatings(ctx context.Context, productID primitive.ObjectID) {
	stats, err := s.store.RatingStats(ctx, productID)
	if err != nil {
		log.Printf("Error computing ratings for product %s: %v", productID.Hex(), err)
		return
	}
	average := math.Round(stats.Average*10) / 10
	if err := s.products.UpdateRatings(ctx, productID, average, stats.Count); err != nil {
		log.Printf("Error updating ratings for product %s: %v", productID.Hex(), err)
	}
}

func (s *ReviewService) notify(ctx context.Context, userID primitive.ObjectID, title, message string, review *models.Review) {
	if s.notifier == nil {
		return
	}
	data := map[string]string{"reviewId": review.ID.Hex(), "productId": review.Product.Hex()}
	if err := s.notifier.Notify(ctx, userID, "review", title, message, data); err != nil {
		log.Printf("Error notifying user %s about review %s: %v", userID.Hex(), review.ID.Hex(), err)
	}
}

func (s *ReviewService) findReview(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	review, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errReviewNotFound
		}
		return nil, fmt.Errorf("find review: %w", err)
	}
	return review, nil
}

func (s *ReviewService) findProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NotFound("Product not found")
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return product, nil
}
