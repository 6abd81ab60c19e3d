package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/HSouheill/marketplace_backend/utils"
	"github.com/shopspring/decimal"
)

const reportDateLayout = "2006-01-02"

type SalesStatsSource interface {
	PaidTotals(ctx context.Context, since time.Time) (int64, float64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	CountDistinctBuyers(ctx context.Context, since time.Time) (int64, error)
	DailySales(ctx context.Context, from, to time.Time) ([]models.SalesReportRow, error)
}

type InventoryCounter interface {
	Count(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context, threshold int) (int64, error)
}

type SignupCounter interface {
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
}

type VendorCounter interface {
	Count(ctx context.Context) (int64, error)
}

type DashboardService struct {
	orders   SalesStatsSource
	products InventoryCounter
	users    SignupCounter
	vendors  VendorCounter
	now      func() time.Time
}

func NewDashboardService(orders SalesStatsSource, products InventoryCounter, users SignupCounter, vendors VendorCounter) *DashboardService {
	return &DashboardService{orders: orders, products: products, users: users, vendors: vendors, now: time.Now}
}

// GetDashboardStats gathers the admin overview. Windows are measured from the
// start of the current UTC day.
func (s *DashboardService) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	monthAgo := today.AddDate(0, 0, -30)
	weekAgo := today.AddDate(0, 0, -7)

	var stats models.DashboardStats
	var err error

	if _, stats.TodaySales, err = s.orders.PaidTotals(ctx, today); err != nil {
		return nil, fmt.Errorf("today's sales: %w", err)
	}
	if stats.TotalOrders, stats.TotalRevenue, err = s.orders.PaidTotals(ctx, monthAgo); err != nil {
		return nil, fmt.Errorf("monthly sales: %w", err)
	}
	if stats.PendingOrders, err = s.orders.CountByStatus(ctx, models.OrderStatusProcessing); err != nil {
		return nil, fmt.Errorf("pending orders: %w", err)
	}
	if stats.ActiveUsers, err = s.orders.CountDistinctBuyers(ctx, monthAgo); err != nil {
		return nil, fmt.Errorf("active users: %w", err)
	}
	if stats.LowStockProducts, err = s.products.CountLowStock(ctx, models.LowStockThreshold); err != nil {
		return nil, fmt.Errorf("low stock products: %w", err)
	}
	if stats.TotalProducts, err = s.products.Count(ctx); err != nil {
		return nil, fmt.Errorf("total products: %w", err)
	}
	if stats.NewSignups, err = s.users.CountCreatedSince(ctx, weekAgo); err != nil {
		return nil, fmt.Errorf("new signups: %w", err)
	}
	if stats.TotalVendors, err = s.vendors.Count(ctx); err != nil {
		return nil, fmt.Errorf("total vendors: %w", err)
	}

	stats.TodaySales = roundMoney(stats.TodaySales)
	stats.TotalRevenue = roundMoney(stats.TotalRevenue)
	return &stats, nil
}

// ParseReportRange reads optional YYYY-MM-DD bounds. Both empty means the last
// 30 days; to is inclusive.
func (s *DashboardService) ParseReportRange(fromStr, toStr string) (time.Time, time.Time, error) {
	now := s.now().UTC()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	from := to.AddDate(0, 0, -30)

	if toStr != "" {
		t, err := time.Parse(reportDateLayout, toStr)
		if err != nil {
			return time.Time{}, time.Time{}, utils.BadRequest("Invalid 'to' date, expected YYYY-MM-DD")
		}
		to = t.AddDate(0, 0, 1)
		if fromStr == "" {
			from = to.AddDate(0, 0, -30)
		}
	}
	if fromStr != "" {
		f, err := time.Parse(reportDateLayout, fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, utils.BadRequest("Invalid 'from' date, expected YYYY-MM-DD")
		}
		from = f
	}
	return from, to, nil
}

func (s *DashboardService) GenerateSalesReport(ctx context.Context, from, to time.Time) (*models.SalesReport, error) {
	if !to.After(from) {
		return nil, utils.BadRequest("End date must be after start date")
	}

	rows, err := s.orders.DailySales(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("daily sales: %w", err)
	}

	report := &models.SalesReport{From: from, To: to, Rows: rows}
	revenue := decimal.Zero
	for i := range report.Rows {
		row := &report.Rows[i]
		row.Revenue = roundMoney(row.Revenue)
		row.AverageOrderValue = roundMoney(row.AverageOrderValue)
		report.TotalOrders += row.Orders
		revenue = revenue.Add(decimal.NewFromFloat(row.Revenue))
	}
	report.TotalRevenue, _ = revenue.Round(2).Float64()
	return report, nil
}

// ExportSalesReportCSV writes the report rows to w as CSV.
func (s *DashboardService) ExportSalesReportCSV(ctx context.Context, w io.Writer, from, to time.Time) error {
	report, err := s.GenerateSalesReport(ctx, from, to)
	if err != nil {
		return err
	}
	return writeSalesReportCSV(w, report.Rows)
}

func writeSalesReportCSV(w io.Writer, rows []models.SalesReportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "orders", "revenue", "averageOrderValue", "itemsSold"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.Date,
			strconv.Itoa(row.Orders),
			decimal.NewFromFloat(row.Revenue).StringFixed(2),
			decimal.NewFromFloat(row.AverageOrderValue).StringFixed(2),
			strconv.Itoa(row.ItemsSold),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func roundMoney(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
