package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DashboardStats struct {
	TodaySales       float64 `json:"todaySales"`
	PendingOrders    int64   `json:"pendingOrders"`
	LowStockProducts int64   `json:"lowStockProducts"`
	TotalOrders      int64   `json:"totalOrders"`
	TotalRevenue     float64 `json:"totalRevenue"`
	ActiveUsers      int64   `json:"activeUsers"`
	NewSignups       int64   `json:"newSignups"`
	TotalProducts    int64   `json:"totalProducts"`
	TotalVendors     int64   `json:"totalVendors"`
}

type SalesReportRow struct {
	Date              string  `json:"date" bson:"_id"`
	Orders            int     `json:"orders" bson:"orders"`
	Revenue           float64 `json:"revenue" bson:"revenue"`
	AverageOrderValue float64 `json:"averageOrderValue" bson:"averageOrderValue"`
	ItemsSold         int     `json:"itemsSold" bson:"itemsSold"`
}

type SalesReport struct {
	From         time.Time        `json:"from"`
	To           time.Time        `json:"to"`
	Rows         []SalesReportRow `json:"rows"`
	TotalOrders  int              `json:"totalOrders"`
	TotalRevenue float64          `json:"totalRevenue"`
}

// OrderEvent is published to the order topic whenever an order changes.
type OrderEvent struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	OrderID    primitive.ObjectID `json:"orderId"`
	UserID     primitive.ObjectID `json:"userId"`
	Status     string             `json:"status"`
	TotalPrice float64            `json:"totalPrice"`
	OccurredAt time.Time          `json:"occurredAt"`
}
