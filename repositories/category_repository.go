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

type CategoryRepository struct {
	collection *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{collection: db.Collection("categories")}
}

func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if category.ID.IsZero() {
		category.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, category)
	return mapErr(err)
}

func (r *CategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var category models.Category
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&category); err != nil {
		return nil, mapErr(err)
	}
	return &category, nil
}

// FindByNameAndParent looks a category up by its unique (name, parent) key.
// A nil parent matches root categories.
func (r *CategoryRepository) FindByNameAndParent(ctx context.Context, name string, parent *primitive.ObjectID) (*models.Category, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{"name": name, "parent": nil}
	if parent != nil {
		filter["parent"] = *parent
	}

	var category models.Category
	if err := r.collection.FindOne(ctx, filter).Decode(&category); err != nil {
		return nil, mapErr(err)
	}
	return &category, nil
}

// List returns categories matching filter sorted by their sibling order.
func (r *CategoryRepository) List(ctx context.Context, filter models.CategoryFilter) ([]models.Category, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := bson.M{}
	if filter.Level > 0 {
		query["level"] = filter.Level
	}
	if filter.Parent != nil {
		query["parent"] = *filter.Parent
	} else if filter.Roots {
		query["parent"] = nil
	}
	if filter.Active != nil {
		query["isActive"] = *filter.Active
	}

	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	category.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"name":      category.Name,
		"slug":      category.Slug,
		"image":     category.Image,
		"level":     category.Level,
		"parent":    category.Parent,
		"ancestors": category.Ancestors,
		"path":      category.Path,
		"order":     category.Order,
		"isActive":  category.IsActive,
		"updatedAt": category.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": category.ID}, update)
	if err != nil {
		return mapErr(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// FindDescendantIDs returns every category whose lineage contains id, at any depth.
func (r *CategoryRepository) FindDescendantIDs(ctx context.Context, id primitive.ObjectID) ([]primitive.ObjectID, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"ancestors": id}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// DeleteMany removes all listed categories in a single bulk operation.
func (r *CategoryRepository) DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *CategoryRepository) UpdateOrder(ctx context.Context, id primitive.ObjectID, order int) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"order": order, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
