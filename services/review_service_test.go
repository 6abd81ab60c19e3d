package services

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/HSouheill/marketplace_backend/repositories"
	"github.com/HSouheill/marketplace_backend/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memReviewStore is an in-memory ReviewStore with a unique (product, user).
type memReviewStore struct {
	mu      sync.Mutex
	reviews map[primitive.ObjectID]*models.Review
}

func newMemReviewStore() *memReviewStore {
	return &memReviewStore{reviews: map[primitive.ObjectID]*models.Review{}}
}

func (m *memReviewStore) Create(_ context.Context, r *models.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.reviews {
		if other.Product == r.Product && other.User == r.User {
			return repositories.ErrDuplicate
		}
	}
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	cp := *r
	m.reviews[r.ID] = &cp
	return nil
}

func (m *memReviewStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memReviewStore) List(_ context.Context, filter models.ReviewFilter) ([]models.Review, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Review{}
	for _, r := range m.reviews {
		if filter.Product != nil && r.Product != *filter.Product {
			continue
		}
		if filter.User != nil && r.User != *filter.User {
			continue
		}
		if !filter.IncludeHidden && !r.IsActive {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (m *memReviewStore) Update(_ context.Context, r *models.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.reviews[r.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.Rating, stored.Comment = r.Rating, r.Comment
	return nil
}

func (m *memReviewStore) SetActive(_ context.Context, id primitive.ObjectID, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok {
		return repositories.ErrNotFound
	}
	r.IsActive = active
	return nil
}

func (m *memReviewStore) SetReply(_ context.Context, id primitive.ObjectID, reply models.ReviewReply) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok {
		return repositories.ErrNotFound
	}
	r.Reply = &reply
	return nil
}

func (m *memReviewStore) AddReport(_ context.Context, id primitive.ObjectID, report models.ReviewReport, hideAt int) (*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	for _, existing := range r.Reports {
		if existing.User == report.User {
			return nil, repositories.ErrNotFound
		}
	}
	r.Reports = append(r.Reports, report)
	if len(r.Reports) >= hideAt {
		r.IsActive = false
	}
	cp := *r
	return &cp, nil
}

func (m *memReviewStore) RatingStats(_ context.Context, productID primitive.ObjectID) (models.RatingStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var stats models.RatingStats
	sum := 0
	for _, r := range m.reviews {
		if r.Product == productID && r.IsActive {
			stats.Count++
			sum += r.Rating
		}
	}
	if stats.Count > 0 {
		stats.Average = float64(sum) / float64(stats.Count)
	}
	return stats, nil
}

type reviewFixture struct {
	svc      *ReviewService
	store    *memReviewStore
	products *memProductStore
	orders   *memOrderStore
	notifier *recordingNotifier
	product  *models.Product
	vendor   models.Actor
}

func newReviewFixture() *reviewFixture {
	vendor := models.Actor{ID: primitive.NewObjectID(), Role: models.RoleVendor}
	f := &reviewFixture{
		store:    newMemReviewStore(),
		orders:   newMemOrderStore(),
		notifier: &recordingNotifier{},
		product:  &models.Product{Name: "Kitchen Sink", Price: 250, Vendor: &vendor.ID, IsActive: true},
		vendor:   vendor,
	}
	f.products = newMemProductStore(f.product)
	f.svc = NewReviewService(f.store, f.products, f.orders, f.notifier)
	return f
}

// buyer returns a user with an order for the product in the given status.
func (f *reviewFixture) buyer(t *testing.T, status string) models.Actor {
	t.Helper()
	actor := models.Actor{ID: primitive.NewObjectID(), Role: models.RoleUser}
	order := &models.Order{
		User:       actor.ID,
		Status:     status,
		OrderItems: []models.OrderItem{{Product: f.product.ID, Quantity: 1, Price: f.product.Price}},
	}
	if err := f.orders.Create(context.Background(), order); err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return actor
}

func (f *reviewFixture) review(t *testing.T, actor models.Actor, rating int) *models.Review {
	t.Helper()
	r, err := f.svc.CreateReview(context.Background(), actor, f.product.ID, models.ReviewRequest{Rating: rating, Comment: "Solid build"})
	if err != nil {
		t.Fatalf("CreateReview: %v", err)
	}
	return r
}

func (f *reviewFixture) ratings(t *testing.T) (float64, int) {
	t.Helper()
	p, err := f.products.FindByID(context.Background(), f.product.ID)
	if err != nil {
		t.Fatalf("find product: %v", err)
	}
	return p.RatingsAverage, p.RatingsQuantity
}

func TestCreateReviewRequiresDeliveredPurchase(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	req := models.ReviewRequest{Rating: 4, Comment: "Good"}

	stranger := models.Actor{ID: primitive.NewObjectID(), Role: models.RoleUser}
	if _, err := f.svc.CreateReview(ctx, stranger, f.product.ID, req); utils.StatusOf(err) != http.StatusForbidden {
		t.Errorf("stranger status = %d, want 403", utils.StatusOf(err))
	}
	waiting := f.buyer(t, models.OrderStatusShipped)
	if _, err := f.svc.CreateReview(ctx, waiting, f.product.ID, req); utils.StatusOf(err) != http.StatusForbidden {
		t.Errorf("undelivered status = %d, want 403", utils.StatusOf(err))
	}
	if _, err := f.svc.CreateReview(ctx, waiting, primitive.NewObjectID(), req); utils.StatusOf(err) != http.StatusNotFound {
		t.Errorf("unknown product status = %d, want 404", utils.StatusOf(err))
	}

	buyer := f.buyer(t, models.OrderStatusDelivered)
	review := f.review(t, buyer, 4)
	if !review.IsActive || review.User != buyer.ID {
		t.Errorf("review = %+v", review)
	}
	if avg, n := f.ratings(t); avg != 4 || n != 1 {
		t.Errorf("ratings = %v/%d, want 4/1", avg, n)
	}
	if len(f.notifier.sent) != 1 || !strings.HasPrefix(f.notifier.sent[0], "review:") {
		t.Errorf("vendor notifications = %v", f.notifier.sent)
	}

	if _, err := f.svc.CreateReview(ctx, buyer, f.product.ID, req); utils.StatusOf(err) != http.StatusConflict {
		t.Errorf("second review status = %d, want 409", utils.StatusOf(err))
	}
}

func TestProductRatingsFollowVisibleReviews(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	a, b, c := f.buyer(t, models.OrderStatusDelivered), f.buyer(t, models.OrderStatusDelivered), f.buyer(t, models.OrderStatusDelivered)
	f.review(t, a, 5)
	rb := f.review(t, b, 4)
	f.review(t, c, 4)
	if avg, n := f.ratings(t); avg != 4.3 || n != 3 {
		t.Errorf("ratings = %v/%d, want 4.3/3", avg, n)
	}

	if _, err := f.svc.UpdateReview(ctx, b, rb.ID, models.ReviewRequest{Rating: 1, Comment: "Leaks"}); err != nil {
		t.Fatalf("UpdateReview: %v", err)
	}
	if avg, n := f.ratings(t); avg != 3.3 || n != 3 {
		t.Errorf("after update ratings = %v/%d, want 3.3/3", avg, n)
	}

	if err := f.svc.DeleteReview(ctx, b, rb.ID); err != nil {
		t.Fatalf("DeleteReview: %v", err)
	}
	if avg, n := f.ratings(t); avg != 4.5 || n != 2 {
		t.Errorf("after delete ratings = %v/%d, want 4.5/2", avg, n)
	}
	if _, err := f.svc.GetReview(ctx, rb.ID); utils.StatusOf(err) != http.StatusNotFound {
		t.Errorf("deleted review status = %d, want 404", utils.StatusOf(err))
	}
	if _, err := f.svc.CreateReview(ctx, b, f.product.ID, models.ReviewRequest{Rating: 5, Comment: "again"}); utils.StatusOf(err) != http.StatusConflict {
		t.Errorf("review after delete status = %d, want 409", utils.StatusOf(err))
	}

	if _, err := f.svc.SetReviewVisibility(ctx, rb.ID, true); err != nil {
		t.Fatalf("SetReviewVisibility: %v", err)
	}
	if _, n := f.ratings(t); n != 3 {
		t.Errorf("after restore count = %d, want 3", n)
	}

	page, err := f.svc.ListProductReviews(ctx, f.product.ID, 0, 0)
	if err != nil || page.Total != 3 {
		t.Errorf("ListProductReviews = %d, %v", page.Total, err)
	}
}

func TestReviewOwnership(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	author := f.buyer(t, models.OrderStatusDelivered)
	review := f.review(t, author, 3)
	req := models.ReviewRequest{Rating: 1, Comment: "edited"}

	other := models.Actor{ID: primitive.NewObjectID(), Role: models.RoleUser}
	if _, err := f.svc.UpdateReview(ctx, other, review.ID, req); utils.StatusOf(err) != http.StatusForbidden {
		t.Errorf("foreign update status = %d, want 403", utils.StatusOf(err))
	}
	if err := f.svc.DeleteReview(ctx, other, review.ID); utils.StatusOf(err) != http.StatusForbidden {
		t.Errorf("foreign delete status = %d, want 403", utils.StatusOf(err))
	}

	admin := models.Actor{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
	updated, err := f.svc.UpdateReview(ctx, admin, review.ID, req)
	if err != nil || updated.Rating != 1 {
		t.Fatalf("admin update = %+v, %v", updated, err)
	}
	if err := f.svc.DeleteReview(ctx, admin, review.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}

	mine, err := f.svc.ListMyReviews(ctx, author.ID, 1, 10)
	if err != nil || mine.Total != 1 {
		t.Errorf("ListMyReviews should include hidden reviews: %d, %v", mine.Total, err)
	}
}

func TestReportsHideReview(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	author := f.buyer(t, models.OrderStatusDelivered)
	review := f.review(t, author, 1)
	spam := models.ReviewReportRequest{Reason: "spam"}

	if _, err := f.svc.ReportReview(ctx, author, review.ID, spam); utils.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("own report status = %d, want 400", utils.StatusOf(err))
	}

	first := models.Actor{ID: primitive.NewObjectID(), Role: models.RoleUser}
	if _, err := f.svc.ReportReview(ctx, first, review.ID, spam); err != nil {
		t.Fatalf("ReportReview: %v", err)
	}
	_, err := f.svc.ReportReview(ctx, first, review.ID, spam)
	if appErr, ok := utils.AsAppError(err); !ok || appErr.Message != "You have already reported this review" {
		t.Errorf("repeat report = %v", err)
	}

	for i := 1; i < models.ReviewHideThreshold; i++ {
		reporter := models.Actor{ID: primitive.NewObjectID(), Role: models.RoleUser}
		updated, err := f.svc.ReportReview(ctx, reporter, review.ID, spam)
		if err != nil {
			t.Fatalf("report %d: %v", i+1, err)
		}
		if wantActive := i+1 < models.ReviewHideThreshold; updated.IsActive != wantActive {
			t.Fatalf("after %d reports active = %v", i+1, updated.IsActive)
		}
	}

	if _, err := f.svc.GetReview(ctx, review.ID); utils.StatusOf(err) != http.StatusNotFound {
		t.Errorf("hidden review status = %d, want 404", utils.StatusOf(err))
	}
	if avg, n := f.ratings(t); avg != 0 || n != 0 {
		t.Errorf("ratings = %v/%d, want 0/0 once the only review is hidden", avg, n)
	}
	all, err := f.svc.ListReviews(ctx, models.ReviewFilter{Product: &f.product.ID})
	if err != nil || all.Total != 1 {
		t.Errorf("moderation list = %d, %v", all.Total, err)
	}
}

func TestReplyToReview(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	review := f.review(t, f.buyer(t, models.OrderStatusDelivered), 2)
	req := models.ReviewReplyRequest{Message: " Sorry, a replacement is on its way "}

	rival := models.Actor{ID: primitive.NewObjectID(), Role: models.RoleVendor}
	if _, err := f.svc.ReplyToReview(ctx, rival, review.ID, req); utils.StatusOf(err) != http.StatusForbidden {
		t.Errorf("rival vendor status = %d, want 403", utils.StatusOf(err))
	}

	f.notifier.sent = nil
	replied, err := f.svc.ReplyToReview(ctx, f.vendor, review.ID, req)
	if err != nil {
		t.Fatalf("ReplyToReview: %v", err)
	}
	if replied.Reply == nil || replied.Reply.Message != "Sorry, a replacement is on its way" {
		t.Errorf("reply = %+v", replied.Reply)
	}
	stored, _ := f.store.FindByID(ctx, review.ID)
	if stored.Reply == nil || stored.Reply.User != f.vendor.ID {
		t.Errorf("stored reply = %+v", stored.Reply)
	}
	if len(f.notifier.sent) != 1 {
		t.Errorf("author notifications = %v", f.notifier.sent)
	}

	if _, err := f.svc.ReplyToReview(ctx, f.vendor, primitive.NewObjectID(), req); utils.StatusOf(err) != http.StatusNotFound {
		t.Errorf("missing review status = %d, want 404", utils.StatusOf(err))
	}
}
