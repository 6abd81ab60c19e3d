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

type QuoteRepository struct {
	collection *mongo.Collection
}

func NewQuoteRepository(db *mongo.Database) *QuoteRepository {
	return &QuoteRepository{collection: db.Collection("quotes")}
}

func (r *QuoteRepository) Create(ctx context.Context, quote *models.Quote) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if quote.ID.IsZero() {
		quote.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, quote)
	return mapErr(err)
}

func (r *QuoteRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Quote, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var quote models.Quote
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&quote); err != nil {
		return nil, mapErr(err)
	}
	return &quote, nil
}

func (r *QuoteRepository) List(ctx context.Context, filter models.QuoteFilter) ([]models.Quote, int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
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

	quotes := []models.Quote{}
	if err := cursor.All(ctx, &quotes); err != nil {
		return nil, 0, err
	}
	return quotes, total, nil
}

// Respond stores the admin's answer on the quote.
func (r *QuoteRepository) Respond(ctx context.Context, quote *models.Quote) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	quote.UpdatedAt = time.Now()
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": quote.ID}, bson.M{"$set": bson.M{
		"status":           quote.Status,
		"responseMessage":  quote.ResponseMessage,
		"approvedPrice":    quote.ApprovedPrice,
		"approvedQuantity": quote.ApprovedQuantity,
		"respondedAt":      quote.RespondedAt,
		"respondedBy":      quote.RespondedBy,
		"updatedAt":        quote.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// FindLatestForCustomer returns the newest quote the email requested for the product.
func (r *QuoteRepository) FindLatestForCustomer(ctx context.Context, productID primitive.ObjectID, email string) (*models.Quote, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var quote models.Quote
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	err := r.collection.FindOne(ctx, bson.M{"product": productID, "customerEmail": email}, opts).Decode(&quote)
	if err != nil {
		return nil, mapErr(err)
	}
	return &quote, nil
}
