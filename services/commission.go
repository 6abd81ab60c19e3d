package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/HSouheill/marketplace_backend/repositories"
	"github.com/HSouheill/marketplace_backend/utils"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VendorProductLister interface {
	IDsByVendor(ctx context.Context, vendorUserID primitive.ObjectID) ([]primitive.ObjectID, error)
}

type SalesLineSource interface {
	SalesLinesForProducts(ctx context.Context, productIDs []primitive.ObjectID) ([]models.VendorSalesLine, error)
}

type VendorCounterStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Vendor, error)
	UpdateCounters(ctx context.Context, userID primitive.ObjectID, products, orders, sales int, revenue float64) error
	UserIDs(ctx context.Context) ([]primitive.ObjectID, error)
}

// CommissionService attributes paid order lines to vendors through product
// ownership. Every figure is recomputed from the orders on each call.
type CommissionService struct {
	products VendorProductLister
	orders   SalesLineSource
	vendors  VendorCounterStore
	rate     decimal.Decimal
}

func NewCommissionService(products VendorProductLister, orders SalesLineSource, vendors VendorCounterStore, rate float64) *CommissionService {
	return &CommissionService{
		products: products,
		orders:   orders,
		vendors:  vendors,
		rate:     decimal.NewFromFloat(rate),
	}
}

// ReduceVendorSales sums units and revenue over lines and applies the
// commission rate. It also returns the number of distinct orders seen.
func ReduceVendorSales(lines []models.VendorSalesLine, rate decimal.Decimal) (models.VendorSales, int) {
	units := 0
	revenue := decimal.Zero
	orders := make(map[primitive.ObjectID]struct{})

	for _, line := range lines {
		units += line.Quantity
		revenue = revenue.Add(decimal.NewFromFloat(line.Price).Mul(decimal.NewFromInt(int64(line.Quantity))))
		orders[line.OrderID] = struct{}{}
	}

	total, _ := revenue.Round(2).Float64()
	commission, _ := revenue.Mul(rate).Round(2).Float64()
	return models.VendorSales{
		TotalSales:       units,
		TotalRevenue:     total,
		CommissionEarned: commission,
	}, len(orders)
}

// GetVendorStats reports product count and commissioned sales for the vendor
// owning vendorUserID. A vendor with no products gets zeros, not an error.
func (s *CommissionService) GetVendorStats(ctx context.Context, vendorUserID primitive.ObjectID) (models.VendorStats, error) {
	stats, _, err := s.compute(ctx, vendorUserID)
	return stats, err
}

// GetVendorStatsByVendorID resolves a vendor record to its user first.
func (s *CommissionService) GetVendorStatsByVendorID(ctx context.Context, vendorID primitive.ObjectID) (models.VendorStats, error) {
	vendor, err := s.vendors.FindByID(ctx, vendorID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.VendorStats{}, utils.NotFound("Vendor not found")
		}
		return models.VendorStats{}, fmt.Errorf("find vendor: %w", err)
	}
	return s.GetVendorStats(ctx, vendor.User)
}

func (s *CommissionService) compute(ctx context.Context, vendorUserID primitive.ObjectID) (models.VendorStats, int, error) {
	productIDs, err := s.products.IDsByVendor(ctx, vendorUserID)
	if err != nil {
		return models.VendorStats{}, 0, fmt.Errorf("vendor products: %w", err)
	}
	if len(productIDs) == 0 {
		return models.VendorStats{}, 0, nil
	}

	lines, err := s.orders.SalesLinesForProducts(ctx, productIDs)
	if err != nil {
		return models.VendorStats{}, 0, fmt.Errorf("vendor sales: %w", err)
	}

	sales, orders := ReduceVendorSales(lines, s.rate)
	return models.VendorStats{Products: int64(len(productIDs)), Sales: sales}, orders, nil
}

// RefreshVendorCounters writes the current figures onto the vendor record.
func (s *CommissionService) RefreshVendorCounters(ctx context.Context, vendorUserID primitive.ObjectID) (models.VendorStats, error) {
	stats, orders, err := s.compute(ctx, vendorUserID)
	if err != nil {
		return stats, err
	}

	err = s.vendors.UpdateCounters(ctx, vendorUserID, int(stats.Products), orders, stats.Sales.TotalSales, stats.Sales.TotalRevenue)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return stats, utils.NotFound("Vendor not found")
		}
		return stats, fmt.Errorf("update vendor counters: %w", err)
	}
	return stats, nil
}

// RefreshAllVendorCounters refreshes every vendor and returns how many
// succeeded. A failing vendor is logged and skipped.
func (s *CommissionService) RefreshAllVendorCounters(ctx context.Context) (int, error) {
	userIDs, err := s.vendors.UserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list vendors: %w", err)
	}

	refreshed := 0
	for _, id := range userIDs {
		if err := ctx.Err(); err != nil {
			return refreshed, err
		}
		if _, err := s.RefreshVendorCounters(ctx, id); err != nil {
			log.Printf("Error refreshing stats for vendor %s: %v", id.Hex(), err)
			continue
		}
		refreshed++
	}
	return refreshed, nil
}
