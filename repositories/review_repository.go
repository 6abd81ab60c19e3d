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

// ReviewRepository stores product reviews. (product, user) is unique.
type ReviewRepository struct {
	collection *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{collection: db.Collection("reviews")}
}

func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	if review.Reports == nil {
		review.Reports = []models.ReviewReport{}
	}
	_, err := r.collection.InsertOne(ctx, review)
	return mapErr(err)
}

func (r *ReviewRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var review models.Review
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&review); err != nil {
		return nil, mapErr(err)
	}
	return &review, nil
}

// List returns reviews newest first. Hidden reviews are skipped unless
// filter.IncludeHidden is set.
func (r *ReviewRepository) List(ctx context.Context, filter models.ReviewFilter) ([]models.Review, int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := bson.M{}
	if filter.Product != nil {
		query["product"] = *filter.Product
	}
	if filter.User != nil {
		query["user"] = *filter.User
	}
	if !filter.IncludeHidden {
		query["isActive"] = true
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *ReviewRepository) Update(ctx context.Context, review *models.Review) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	review.UpdatedAt = time.Now()
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": review.ID},
		bson.M{"$set": bson.M{"rating": review.Rating, "comment": review.Comment, "updatedAt": review.UpdatedAt}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ReviewRepository) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isActive": active, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ReviewRepository) SetReply(ctx context.Context, id primitive.ObjectID, reply models.ReviewReply) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"reply": reply, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddReport appends a report and hides the review once it has hideAt
// reports, in one update. It returns ErrNotFound when the review is missing
// or the user has already reported it.
func (r *ReviewRepository) AddReport(ctx context.Context, id primitive.ObjectID, report models.ReviewReport, hideAt int) (*models.Review, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{"_id": id, "reports.user": bson.M{"$ne": report.User}}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"reports": bson.M{"$concatArrays": bson.A{
				bson.M{"$ifNull": bson.A{"$reports", bson.A{}}},
				bson.A{report},
			}},
		}}},
		{{Key: "$set", Value: bson.M{
			"isActive": bson.M{"$cond": bson.A{
				bson.M{"$gte": bson.A{bson.M{"$size": "$reports"}, hideAt}},
				false,
				"$isActive",
			}},
		}}},
	}

	var review models.Review
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&review); err != nil {
		return nil, mapErr(err)
	}
	return &review, nil
}

// RatingStats averages the visible ratings of a product. A product without
// visible reviews yields a zero RatingStats.
func (r *ReviewRepository) RatingStats(ctx context.Context, productID primitive.ObjectID) (models.RatingStats, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"product": productID, "isActive": true}}},
		{{Key: "$group", Value: bson.M{
			"_id":       "$product",
			"nRating":   bson.M{"$sum": 1},
			"avgRating": bson.M{"$avg": "$rating"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return models.RatingStats{}, err
	}
	defer cursor.Close(ctx)

	var stats models.RatingStats
	if cursor.Next(ctx) {
		if err := cursor.Decode(&stats); err != nil {
			return models.RatingStats{}, err
		}
	}
	return stats, cursor.Err()
}
