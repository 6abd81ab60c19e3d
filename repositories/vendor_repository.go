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

type VendorRepository struct {
	vendors     *mongo.Collection
	invitations *mongo.Collection
}

func NewVendorRepository(db *mongo.Database) *VendorRepository {
	return &VendorRepository{
		vendors:     db.Collection("vendors"),
		invitations: db.Collection("vendorInvitations"),
	}
}

func (r *VendorRepository) Create(ctx context.Context, vendor *models.Vendor) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if vendor.ID.IsZero() {
		vendor.ID = primitive.NewObjectID()
	}
	_, err := r.vendors.InsertOne(ctx, vendor)
	return mapErr(err)
}

func (r *VendorRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Vendor, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var vendor models.Vendor
	if err := r.vendors.FindOne(ctx, bson.M{"_id": id}).Decode(&vendor); err != nil {
		return nil, mapErr(err)
	}
	return &vendor, nil
}

func (r *VendorRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Vendor, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var vendor models.Vendor
	if err := r.vendors.FindOne(ctx, bson.M{"user": userID}).Decode(&vendor); err != nil {
		return nil, mapErr(err)
	}
	return &vendor, nil
}

// ListDetails joins vendors with their user accounts. An empty status lists all.
func (r *VendorRepository) ListDetails(ctx context.Context, status string) ([]models.VendorDetails, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	match := bson.M{}
	if status != "" {
		match["status"] = status
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "user",
			"foreignField": "_id",
			"as":           "account",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$account", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$addFields", Value: bson.M{
			"name":  "$account.name",
			"email": "$account.email",
			"phone": "$account.phone",
		}}},
		{{Key: "$project", Value: bson.M{"account": 0}}},
		{{Key: "$sort", Value: bson.M{"joinedDate": -1}}},
	}

	cursor, err := r.vendors.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	vendors := []models.VendorDetails{}
	if err := cursor.All(ctx, &vendors); err != nil {
		return nil, err
	}
	return vendors, nil
}

func (r *VendorRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Vendor, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}}

	var vendor models.Vendor
	if err := r.vendors.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&vendor); err != nil {
		return nil, mapErr(err)
	}
	return &vendor, nil
}

func (r *VendorRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := r.vendors.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateCounters overwrites the cached counters on the vendor owned by userID.
func (r *VendorRepository) UpdateCounters(ctx context.Context, userID primitive.ObjectID, products, orders, sales int, revenue float64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	now := time.Now()
	result, err := r.vendors.UpdateOne(ctx, bson.M{"user": userID}, bson.M{"$set": bson.M{
		"productsCount":    products,
		"ordersCount":      orders,
		"totalSales":       sales,
		"totalRevenue":     revenue,
		"statsRefreshedAt": now,
		"updatedAt":        now,
	}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *VendorRepository) UserIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	raw, err := r.vendors.Distinct(ctx, "user", bson.M{})
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *VendorRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return r.vendors.CountDocuments(ctx, bson.M{})
}

func (r *VendorRepository) CreateInvitation(ctx context.Context, inv *models.VendorInvitation) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if inv.ID.IsZero() {
		inv.ID = primitive.NewObjectID()
	}
	_, err := r.invitations.InsertOne(ctx, inv)
	return mapErr(err)
}

func (r *VendorRepository) FindInvitationByID(ctx context.Context, id primitive.ObjectID) (*models.VendorInvitation, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var inv models.VendorInvitation
	if err := r.invitations.FindOne(ctx, bson.M{"_id": id}).Decode(&inv); err != nil {
		return nil, mapErr(err)
	}
	return &inv, nil
}

// FindPendingInvitation returns a still-valid pending invitation for email.
func (r *VendorRepository) FindPendingInvitation(ctx context.Context, email string, now time.Time) (*models.VendorInvitation, error) {
	return r.findInvitation(ctx, bson.M{
		"email":     email,
		"status":    models.InvitationPending,
		"expiresAt": bson.M{"$gt": now},
	})
}

// FindInvitationByToken returns the pending, unexpired invitation holding token.
func (r *VendorRepository) FindInvitationByToken(ctx context.Context, token string, now time.Time) (*models.VendorInvitation, error) {
	return r.findInvitation(ctx, bson.M{
		"token":     token,
		"status":    models.InvitationPending,
		"expiresAt": bson.M{"$gt": now},
	})
}

func (r *VendorRepository) findInvitation(ctx context.Context, filter bson.M) (*models.VendorInvitation, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var inv models.VendorInvitation
	if err := r.invitations.FindOne(ctx, filter).Decode(&inv); err != nil {
		return nil, mapErr(err)
	}
	return &inv, nil
}

// AcceptInvitation marks a pending invitation accepted. It reports false if
// the invitation was no longer pending.
func (r *VendorRepository) AcceptInvitation(ctx context.Context, id primitive.ObjectID) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := r.invitations.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.InvitationPending},
		bson.M{"$set": bson.M{"status": models.InvitationAccepted, "updatedAt": time.Now()}},
	)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

func (r *VendorRepository) ExpireInvitations(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := r.invitations.UpdateMany(ctx,
		bson.M{"status": models.InvitationPending, "expiresAt": bson.M{"$lte": now}},
		bson.M{"$set": bson.M{"status": models.InvitationExpired, "updatedAt": now}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}
