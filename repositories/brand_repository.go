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

// BrandRepository stores brands. The slug index is unique, so names differing
// only in case or punctuation collide with ErrDuplicate.
type BrandRepository struct {
	collection *mongo.Collection
}

func NewBrandRepository(db *mongo.Database) *BrandRepository {
	return &BrandRepository{collection: db.Collection("brands")}
}

func (r *BrandRepository) Create(ctx context.Context, brand *models.Brand) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if brand.ID.IsZero() {
		brand.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, brand)
	return mapErr(err)
}

func (r *BrandRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Brand, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var brand models.Brand
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&brand); err != nil {
		return nil, mapErr(err)
	}
	return &brand, nil
}

func (r *BrandRepository) List(ctx context.Context) ([]models.Brand, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	brands := []models.Brand{}
	if err := cursor.All(ctx, &brands); err != nil {
		return nil, err
	}
	return brands, nil
}

func (r *BrandRepository) Update(ctx context.Context, brand *models.Brand) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	brand.UpdatedAt = time.Now()
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": brand.ID},
		bson.M{"$set": bson.M{"name": brand.Name, "slug": brand.Slug, "updatedAt": brand.UpdatedAt}},
	)
	if err != nil {
		return mapErr(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BrandRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
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
