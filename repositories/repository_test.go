package repositories

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/HSouheill/marketplace_backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// testDB connects to TEST_MONGO_URI and returns a throwaway database that is
// dropped when the test ends. Tests are skipped when no server is configured.
func testDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Skipf("mongo unreachable: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Skipf("mongo unreachable: %v", err)
	}

	db := client.Database("marketplace_test_" + primitive.NewObjectID().Hex())
	t.Cleanup(func() {
		db.Drop(context.Background())
		client.Disconnect(context.Background())
	})
	return db
}

func TestCategoryRepositoryCascadeDelete(t *testing.T) {
	db := testDB(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	indoor := &models.Category{Name: "Indoor", Level: 1, Path: "Indoor", Ancestors: []primitive.ObjectID{}}
	if err := repo.Create(ctx, indoor); err != nil {
		t.Fatalf("create indoor: %v", err)
	}
	kitchen := &models.Category{Name: "Kitchen", Level: 2, Parent: &indoor.ID,
		Ancestors: []primitive.ObjectID{indoor.ID}, Path: "Indoor/Kitchen"}
	if err := repo.Create(ctx, kitchen); err != nil {
		t.Fatalf("create kitchen: %v", err)
	}
	sinks := &models.Category{Name: "Sinks", Level: 3, Parent: &kitchen.ID,
		Ancestors: []primitive.ObjectID{indoor.ID, kitchen.ID}, Path: "Indoor/Kitchen/Sinks"}
	if err := repo.Create(ctx, sinks); err != nil {
		t.Fatalf("create sinks: %v", err)
	}
	outdoor := &models.Category{Name: "Outdoor", Level: 1, Path: "Outdoor", Ancestors: []primitive.ObjectID{}}
	if err := repo.Create(ctx, outdoor); err != nil {
		t.Fatalf("create outdoor: %v", err)
	}

	ids, err := repo.FindDescendantIDs(ctx, indoor.ID)
	if err != nil {
		t.Fatalf("FindDescendantIDs: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("descendants = %d, want 2", len(ids))
	}

	deleted, err := repo.DeleteMany(ctx, append(ids, indoor.ID))
	if err != nil || deleted != 3 {
		t.Fatalf("DeleteMany = %d, %v", deleted, err)
	}

	if _, err := repo.FindByID(ctx, outdoor.ID); err != nil {
		t.Errorf("unrelated category removed: %v", err)
	}
	if _, err := repo.FindByID(ctx, sinks.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("grandchild still present: %v", err)
	}
}

func TestCategoryRepositoryFindByNameAndParent(t *testing.T) {
	db := testDB(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	root := &models.Category{Name: "Indoor", Level: 1, Path: "Indoor"}
	if err := repo.Create(ctx, root); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := repo.FindByNameAndParent(ctx, "Indoor", nil); err != nil {
		t.Errorf("root lookup: %v", err)
	}
	if _, err := repo.FindByNameAndParent(ctx, "Indoor", &root.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("child lookup should miss, got %v", err)
	}
}

func TestOrderRepositorySalesLinesForProducts(t *testing.T) {
	db := testDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	mine, other := primitive.NewObjectID(), primitive.NewObjectID()
	orders := []*models.Order{
		{IsPaid: true, OrderItems: []models.OrderItem{
			{Product: mine, Quantity: 2, Price: 100},
			{Product: other, Quantity: 5, Price: 10},
			{Product: mine, Quantity: 1, Price: 100},
		}},
		{IsPaid: false, OrderItems: []models.OrderItem{{Product: mine, Quantity: 9, Price: 100}}},
	}
	for _, o := range orders {
		if err := repo.Create(ctx, o); err != nil {
			t.Fatalf("create order: %v", err)
		}
	}

	lines, err := repo.SalesLinesForProducts(ctx, []primitive.ObjectID{mine})
	if err != nil {
		t.Fatalf("SalesLinesForProducts: %v", err)
	}
	if len(lines) != 1 || lines[0].Quantity != 3 || lines[0].Price != 100 || lines[0].OrderID != orders[0].ID {
		t.Fatalf("lines = %+v", lines)
	}
}

func TestPromotionRepositoryIncrementUsage(t *testing.T) {
	db := testDB(t)
	repo := NewPromotionRepository(db)
	ctx := context.Background()

	limit := 1
	promo := &models.Promotion{Name: "ONCE", Type: models.PromotionFixedAmount, Value: 100, UsageLimit: &limit}
	if err := repo.Create(ctx, promo); err != nil {
		t.Fatalf("create: %v", err)
	}

	ok, err := repo.IncrementUsage(ctx, promo.ID)
	if err != nil || !ok {
		t.Fatalf("first redemption = %v, %v", ok, err)
	}
	ok, err = repo.IncrementUsage(ctx, promo.ID)
	if err != nil || ok {
		t.Fatalf("second redemption = %v, %v; want false", ok, err)
	}

	// released twice, the count stops at zero
	for i := 0; i < 2; i++ {
		if err := repo.DecrementUsage(ctx, promo.ID); err != nil {
			t.Fatalf("DecrementUsage: %v", err)
		}
	}
	got, err := repo.FindByID(ctx, promo.ID)
	if err != nil || got.UsedCount != 0 {
		t.Fatalf("after release = %+v, %v", got, err)
	}
	if ok, err := repo.IncrementUsage(ctx, promo.ID); err != nil || !ok {
		t.Fatalf("redemption after release = %v, %v", ok, err)
	}
}

func TestOrderRepositoryCancelledIsTerminal(t *testing.T) {
	db := testDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	order := &models.Order{Status: models.OrderStatusPending, OrderItems: []models.OrderItem{
		{Product: primitive.NewObjectID(), Quantity: 1, Price: 100},
	}}
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.UpdateStatus(ctx, order.ID, models.OrderStatusCancelled, ""); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if _, err := repo.UpdateStatus(ctx, order.ID, models.OrderStatusCancelled, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("second cancel err = %v, want ErrNotFound", err)
	}
	changed, err := repo.MarkPaid(ctx, order.ID, models.PaymentResult{ID: "tx-late"})
	if err != nil || changed {
		t.Errorf("MarkPaid on cancelled = %v, %v; want false", changed, err)
	}
	got, err := repo.FindByID(ctx, order.ID)
	if err != nil || got.IsPaid || got.Status != models.OrderStatusCancelled {
		t.Errorf("order = %+v, %v", got, err)
	}
}

func TestReviewRepositoryRatingsAndReports(t *testing.T) {
	db := testDB(t)
	repo := NewReviewRepository(db)
	ctx := context.Background()

	_, err := db.Collection("reviews").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "product", Value: 1}, {Key: "user", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		t.Fatalf("create index: %v", err)
	}

	product := primitive.NewObjectID()
	var reviews []*models.Review
	for _, rating := range []int{5, 4, 2} {
		r := &models.Review{Product: product, User: primitive.NewObjectID(), Rating: rating, IsActive: true, CreatedAt: time.Now()}
		if err := repo.Create(ctx, r); err != nil {
			t.Fatalf("create: %v", err)
		}
		reviews = append(reviews, r)
	}
	// another product's review must not count
	if err := repo.Create(ctx, &models.Review{Product: primitive.NewObjectID(), User: reviews[0].User, Rating: 1, IsActive: true}); err != nil {
		t.Fatalf("create other: %v", err)
	}

	dup := &models.Review{Product: product, User: reviews[0].User, Rating: 1, IsActive: true}
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrDuplicate) {
		t.Errorf("second review by same user err = %v, want ErrDuplicate", err)
	}

	stats, err := repo.RatingStats(ctx, product)
	if err != nil || stats.Count != 3 || stats.Average < 3.66 || stats.Average > 3.67 {
		t.Fatalf("stats = %+v, %v", stats, err)
	}

	target := reviews[2].ID
	for i := 0; i < 3; i++ {
		reporter := primitive.NewObjectID()
		updated, err := repo.AddReport(ctx, target, models.ReviewReport{User: reporter, Reason: "spam", CreatedAt: time.Now()}, 3)
		if err != nil {
			t.Fatalf("report %d: %v", i+1, err)
		}
		if len(updated.Reports) != i+1 || updated.IsActive != (i < 2) {
			t.Fatalf("after report %d: reports=%d active=%v", i+1, len(updated.Reports), updated.IsActive)
		}
		if i == 0 {
			if _, err := repo.AddReport(ctx, target, models.ReviewReport{User: reporter, Reason: "other"}, 3); !errors.Is(err, ErrNotFound) {
				t.Errorf("repeat report err = %v, want ErrNotFound", err)
			}
		}
	}

	stats, err = repo.RatingStats(ctx, product)
	if err != nil || stats.Count != 2 || stats.Average != 4.5 {
		t.Errorf("stats after hiding = %+v, %v", stats, err)
	}
	visible, total, err := repo.List(ctx, models.ReviewFilter{Product: &product, Page: 1, Limit: 10})
	if err != nil || total != 2 || len(visible) != 2 {
		t.Errorf("visible = %d/%d, %v", len(visible), total, err)
	}

	empty, err := repo.RatingStats(ctx, primitive.NewObjectID())
	if err != nil || empty.Count != 0 || empty.Average != 0 {
		t.Errorf("stats without reviews = %+v, %v", empty, err)
	}
}

func TestWishlistRepository(t *testing.T) {
	db := testDB(t)
	products := NewProductRepository(db)
	repo := NewWishlistRepository(db)
	ctx := context.Background()

	_, err := db.Collection("wishlists").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}, {Key: "product", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		t.Fatalf("create index: %v", err)
	}

	sink := &models.Product{Name: "Kitchen Sink", Price: 250, IsActive: true}
	if err := products.Create(ctx, sink); err != nil {
		t.Fatalf("create product: %v", err)
	}
	user := primitive.NewObjectID()

	added, err := repo.Add(ctx, user, sink.ID)
	if err != nil || !added {
		t.Fatalf("first add = %v, %v", added, err)
	}
	added, err = repo.Add(ctx, user, sink.ID)
	if err != nil || added {
		t.Fatalf("second add = %v, %v; want false", added, err)
	}
	// a wishlisted product that no longer exists is dropped from the list
	if _, err := repo.Add(ctx, user, primitive.NewObjectID()); err != nil {
		t.Fatalf("add missing product: %v", err)
	}

	entries, err := repo.List(ctx, user)
	if err != nil || len(entries) != 1 || entries[0].Product.Name != "Kitchen Sink" {
		t.Fatalf("entries = %+v, %v", entries, err)
	}

	if err := repo.Remove(ctx, user, sink.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := repo.Remove(ctx, user, sink.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second remove err = %v, want ErrNotFound", err)
	}
}

func TestOrderRepositoryHasDeliveredItem(t *testing.T) {
	db := testDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	buyer, sink, tap := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	orders := []*models.Order{
		{User: buyer, Status: models.OrderStatusDelivered, OrderItems: []models.OrderItem{{Product: sink, Quantity: 1, Price: 100}}},
		{User: buyer, Status: models.OrderStatusShipped, OrderItems: []models.OrderItem{{Product: tap, Quantity: 1, Price: 50}}},
	}
	for _, o := range orders {
		if err := repo.Create(ctx, o); err != nil {
			t.Fatalf("create order: %v", err)
		}
	}

	tests := []struct {
		user, product primitive.ObjectID
		want          bool
	}{
		{buyer, sink, true},
		{buyer, tap, false},
		{primitive.NewObjectID(), sink, false},
	}
	for _, tt := range tests {
		got, err := repo.HasDeliveredItem(ctx, tt.user, tt.product)
		if err != nil || got != tt.want {
			t.Errorf("HasDeliveredItem(%s, %s) = %v, %v; want %v", tt.user.Hex(), tt.product.Hex(), got, err, tt.want)
		}
	}
}

func TestBrandRepositoryUniqueSlug(t *testing.T) {
	db := testDB(t)
	repo := NewBrandRepository(db)
	ctx := context.Background()

	_, err := db.Collection("brands").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		t.Fatalf("create index: %v", err)
	}

	if err := repo.Create(ctx, &models.Brand{Name: "Grohe", Slug: "grohe"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, &models.Brand{Name: "GROHE", Slug: "grohe"}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate err = %v, want ErrDuplicate", err)
	}
	hansgrohe := &models.Brand{Name: "Hansgrohe", Slug: "hansgrohe"}
	if err := repo.Create(ctx, hansgrohe); err != nil {
		t.Fatalf("create: %v", err)
	}
	hansgrohe.Name, hansgrohe.Slug = "Grohe", "grohe"
	if err := repo.Update(ctx, hansgrohe); !errors.Is(err, ErrDuplicate) {
		t.Errorf("rename onto existing err = %v, want ErrDuplicate", err)
	}

	brands, err := repo.List(ctx)
	if err != nil || len(brands) != 2 || brands[0].Name != "Grohe" {
		t.Errorf("brands = %+v, %v", brands, err)
	}
}
