package repositories

import (
	"context"
	"time"

	"github.com/HSouheill/marketplace_backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PromotionRepository struct {
	collection *mongo.Collection
}

func NewPromotionRepository(db *mongo.Database) *PromotionRepository {
	return &PromotionRepository{collection: db.Collection("promotions")}
}

func (r *PromotionRepository) Create(ctx context.Context, promo *models.Promotion) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if promo.ID.IsZero() {
		promo.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, promo)
	return mapErr(err)
}

func (r *PromotionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Promotion, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var promo models.Promotion
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&promo); err != nil {
		return nil, mapErr(err)
	}
	return &promo, nil
}

// FindActiveByName returns the active promotion named code whose window contains now.
func (r *PromotionRepository) FindActiveByName(ctx context.Context, code string, now time.Time) (*models.Promotion, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{
		"name":      code,
		"isActive":  true,
		"startDate": bson.M{"$lte": now},
		"endDate":   bson.M{"$gte": now},
	}

	var promo models.Promotion
	if err := r.collection.FindOne(ctx, filter).Decode(&promo); err != nil {
		return nil, mapErr(err)
	}
	return &promo, nil
}

func (r *PromotionRepository) List(ctx context.Context, activeOnly bool, now time.Time) ([]models.Promotion, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{}
	if activeOnly {
		filter = bson.M{
			"isActive":  true,
			"startDate": bson.M{"$lte": now},
			"endDate":   bson.M{"$gte": now},
		}
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	promos := []models.Promotion{}
	if err := cursor.All(ctx, &promos); err != nil {
		return nil, err
	}
	return promos, nil
}

func (r *PromotionRepository) Update(ctx context.Context, promo *models.Promotion) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	promo.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"name":                  promo.Name,
		"type":                  promo.Type,
		"value":                 promo.Value,
		"startDate":             promo.StartDate,
		"endDate":               promo.EndDate,
		"isActive":              promo.IsActive,
		"applicableTo":          promo.ApplicableTo,
		"products":              promo.Products,
		"categories":            promo.Categories,
		"minimumOrderAmount":    promo.MinimumOrderAmount,
		"maximumDiscountAmount": promo.MaximumDiscountAmount,
		"usageLimit":            promo.UsageLimit,
		"updatedAt":             promo.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": promo.ID}, update)
	if err != nil {
		return mapErr(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PromotionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementUsage bumps usedCount unless the promotion has hit its usage limit.
// It reports false when the limit stopped the increment.
func (r *PromotionRepository) IncrementUsage(ctx context.Context, id primitive.ObjectID) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{
		"_id": id,
		"$or": bson.A{
			bson.M{"usageLimit": nil},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$usedCount", "$usageLimit"}}},
		},
	}
	update := bson.M{"$inc": bson.M{"usedCount": 1}, "$set": bson.M{"updatedAt": time.Now()}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

// DecrementUsage undoes one IncrementUsage. usedCount never goes below zero.
func (r *PromotionRepository) DecrementUsage(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "usedCount": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"usedCount": -1}, "$set": bson.M{"updatedAt": time.Now()}},
	)
	return err
}
