package controllers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/labstack/echo/v4"
)

type DashboardReporter interface {
	GetDashboardStats(ctx context.Context) (*models.DashboardStats, error)
	ParseReportRange(fromStr, toStr string) (time.Time, time.Time, error)
	GenerateSalesReport(ctx context.Context, from, to time.Time) (*models.SalesReport, error)
	ExportSalesReportCSV(ctx context.Context, w io.Writer, from, to time.Time) error
}

// AdminController serves the admin dashboard and sales reports.
type AdminController struct {
	reports DashboardReporter
}

func NewAdminController(reports DashboardReporter) *AdminController {
	return &AdminController{reports: reports}
}

func (ac *AdminController) GetDashboardStats(c echo.Context) error {
	stats, err := ac.reports.GetDashboardStats(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Dashboard stats retrieved successfully", stats)
}

// GetSalesReport takes ?from= and ?to= as YYYY-MM-DD, both inclusive.
func (ac *AdminController) GetSalesReport(c echo.Context) error {
	from, to, err := ac.reports.ParseReportRange(c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return respondError(c, err)
	}
	report, err := ac.reports.GenerateSalesReport(c.Request().Context(), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Sales report generated successfully", report)
}

func (ac *AdminController) ExportSalesReport(c echo.Context) error {
	from, to, err := ac.reports.ParseReportRange(c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return respondError(c, err)
	}

	filename := "sales-" + from.Format("2006-01-02") + "-" + to.AddDate(0, 0, -1).Format("2006-01-02") + ".csv"
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	c.Response().WriteHeader(http.StatusOK)

	if err := ac.reports.ExportSalesReportCSV(c.Request().Context(), c.Response(), from, to); err != nil {
		c.Logger().Errorf("Error exporting sales report: %v", err)
	}
	return nil
}
