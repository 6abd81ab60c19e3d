package controllers

import (
	"context"
	"net/http"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BrandManager interface {
	ListBrands(ctx context.Context) ([]models.Brand, error)
	GetBrand(ctx context.Context, id primitive.ObjectID) (*models.Brand, error)
	CreateBrand(ctx context.Context, req models.BrandRequest) (*models.Brand, error)
	UpdateBrand(ctx context.Context, id primitive.ObjectID, req models.BrandRequest) (*models.Brand, error)
	DeleteBrand(ctx context.Context, id primitive.ObjectID) error
}

type BrandController struct {
	brands BrandManager
}

func NewBrandController(brands BrandManager) *BrandController {
	return &BrandController{brands: brands}
}

func (bc *BrandController) GetBrands(c echo.Context) error {
	brands, err := bc.brands.ListBrands(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Brands retrieved successfully", brands)
}

func (bc *BrandController) GetBrand(c echo.Context) error {
	id, err := paramID(c, "id", "Invalid brand id")
	if err != nil {
		return respondError(c, err)
	}
	brand, err := bc.brands.GetBrand(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Brand retrieved successfully", brand)
}

func (bc *BrandController) CreateBrand(c echo.Context) error {
	var req models.BrandRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	brand, err := bc.brands.CreateBrand(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusCreated, "Brand created successfully", brand)
}

func (bc *BrandController) UpdateBrand(c echo.Context) error {
	id, err := paramID(c, "id", "Invalid brand id")
	if err != nil {
		return respondError(c, err)
	}
	var req models.BrandRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	brand, err := bc.brands.UpdateBrand(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Brand updated successfully", brand)
}

func (bc *BrandController) DeleteBrand(c echo.Context) error {
	id, err := paramID(c, "id", "Invalid brand id")
	if err != nil {
		return respondError(c, err)
	}
	if err := bc.brands.DeleteBrand(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Brand deleted successfully", nil)
}
