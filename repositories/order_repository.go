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

type OrderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{collection: db.Collection("orders")}
}

func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, order)
	return mapErr(err)
}

func (r *OrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var order models.Order
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		return nil, mapErr(err)
	}
	return &order, nil
}

func (r *OrderRepository) FindByReference(ctx context.Context, reference string) (*models.Order, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var order models.Order
	if err := r.collection.FindOne(ctx, bson.M{"paymentReference": reference}).Decode(&order); err != nil {
		return nil, mapErr(err)
	}
	return &order, nil
}

func (r *OrderRepository) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := bson.M{}
	if filter.User != nil {
		query["user"] = *filter.User
	}
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

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatus sets the status and, for deliveries, the delivery fields.
// Cancelled orders never match, so it returns ErrNotFound for them.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status, trackingNumber string) (*models.Order, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	now := time.Now()
	set := bson.M{"status": status, "updatedAt": now}
	if status == models.OrderStatusDelivered {
		set["isDelivered"] = true
		set["deliveredAt"] = now
	}
	if trackingNumber != "" {
		set["trackingNumber"] = trackingNumber
	}

	filter := bson.M{"_id": id, "status": bson.M{"$ne": models.OrderStatusCancelled}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var order models.Order
	if err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&order); err != nil {
		return nil, mapErr(err)
	}
	return &order, nil
}

// MarkPaid flips an unpaid, uncancelled order to paid. It reports false when
// nothing changed, so callers can stay idempotent.
func (r *OrderRepository) MarkPaid(ctx context.Context, id primitive.ObjectID, result models.PaymentResult) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	now := time.Now()
	update := bson.M{"$set": bson.M{
		"isPaid":        true,
		"paidAt":        now,
		"status":        models.OrderStatusProcessing,
		"paymentResult": result,
		"updatedAt":     now,
	}}

	res, err := r.collection.UpdateOne(ctx, bson.M{
		"_id":    id,
		"isPaid": false,
		"status": bson.M{"$ne": models.OrderStatusCancelled},
	}, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *OrderRepository) SetPaymentReference(ctx context.Context, id primitive.ObjectID, provider, reference string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"paymentProvider":  provider,
		"paymentReference": reference,
		"updatedAt":        time.Now(),
	}})
	return err
}

// SalesLinesForProducts unwinds paid orders, keeps the lines whose product is
// in productIDs and groups them per order and unit price. Revenue is left to
// the caller so it can be summed in decimal.
func (r *OrderRepository) SalesLinesForProducts(ctx context.Context, productIDs []primitive.ObjectID) ([]models.VendorSalesLine, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"isPaid": true, "orderItems.product": bson.M{"$in": productIDs}}}},
		{{Key: "$unwind", Value: "$orderItems"}},
		{{Key: "$match", Value: bson.M{"orderItems.product": bson.M{"$in": productIDs}}}},
		{{Key: "$group", Value: bson.M{
			"_id":      bson.M{"order": "$_id", "price": "$orderItems.price"},
			"quantity": bson.M{"$sum": "$orderItems.quantity"},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":      0,
			"orderId":  "$_id.order",
			"price":    "$_id.price",
			"quantity": 1,
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	lines := []models.VendorSalesLine{}
	if err := cursor.All(ctx, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// PaidTotals sums paid order count and revenue created at or after since.
func (r *OrderRepository) PaidTotals(ctx context.Context, since time.Time) (int64, float64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"isPaid": true, "createdAt": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"orders":  bson.M{"$sum": 1},
			"revenue": bson.M{"$sum": "$totalPrice"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Orders  int64   `bson:"orders"`
		Revenue float64 `bson:"revenue"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, 0, err
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}
	return rows[0].Orders, rows[0].Revenue, nil
}

func (r *OrderRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return r.collection.CountDocuments(ctx, bson.M{"status": status})
}

// HasDeliveredItem reports whether the user has a delivered order containing the product.
func (r *OrderRepository) HasDeliveredItem(ctx context.Context, userID, productID primitive.ObjectID) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	n, err := r.collection.CountDocuments(ctx,
		bson.M{"user": userID, "status": models.OrderStatusDelivered, "orderItems.product": productID},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountDistinctBuyers counts users who placed an order at or after since.
func (r *OrderRepository) CountDistinctBuyers(ctx context.Context, since time.Time) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	users, err := r.collection.Distinct(ctx, "user", bson.M{"createdAt": bson.M{"$gte": since}})
	if err != nil {
		return 0, err
	}
	return int64(len(users)), nil
}

// DailySales groups paid orders in [from, to) by calendar day (UTC).
func (r *OrderRepository) DailySales(ctx context.Context, from, to time.Time) ([]models.SalesReportRow, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"isPaid": true, "createdAt": bson.M{"$gte": from, "$lt": to}}}},
		{{Key: "$group", Value: bson.M{
			"_id":               bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$createdAt"}},
			"orders":            bson.M{"$sum": 1},
			"revenue":           bson.M{"$sum": "$totalPrice"},
			"averageOrderValue": bson.M{"$avg": "$totalPrice"},
			"itemsSold":         bson.M{"$sum": bson.M{"$sum": "$orderItems.quantity"}},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	rows := []models.SalesReportRow{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
