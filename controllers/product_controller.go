package controllers

import (
	"context"
	"net/http"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/HSouheill/marketplace_backend/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProductManager interface {
	ListProducts(ctx context.Context, filter models.ProductFilter) (models.PagedResult, error)
	GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	CreateProduct(ctx context.Context, actor models.Actor, req models.ProductRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, actor models.Actor, id primitive.ObjectID, req models.ProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, actor models.Actor, id primitive.ObjectID) error
	AddProductImage(ctx context.Context, actor models.Actor, id primitive.ObjectID, filename string, data []byte) (*models.Product, error)
}

type ProductController struct {
	products ProductManager
}

func NewProductController(products ProductManager) *ProductController {
	return &ProductController{products: products}
}

// GetProducts supports ?category=, ?brand=, ?vendor=, ?q=, ?page= and ?limit=.
func (pc *ProductController) GetProducts(c echo.Context) error {
	filter := models.ProductFilter{
		Query: c.QueryParam("q"),
		Page:  queryInt(c, "page"),
		Limit: queryInt(c, "limit"),
	}
	if category := c.QueryParam("category"); category != "" {
		id, err := primitive.ObjectIDFromHex(category)
		if err != nil {
			return respondError(c, utils.BadRequest("Invalid category id"))
		}
		filter.Category = &id
	}
	if brand := c.QueryParam("brand"); brand != "" {
		id, err := primitive.ObjectIDFromHex(brand)
		if err != nil {
			return respondError(c, utils.BadRequest("Invalid brand id"))
		}
		filter.Brand = &id
	}
	if vendor := c.QueryParam("vendor"); vendor != "" {
		id, err := primitive.ObjectIDFromHex(vendor)
		if err != nil {
			return respondError(c, utils.BadRequest("Invalid vendor id"))
		}
		filter.Vendor = &id
	}

	page, err := pc.products.ListProducts(c.Request().Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Products retrieved successfully", page)
}

func (pc *ProductController) GetProduct(c echo.Context) error {
	id, err := paramID(c, "id", "Invalid product id")
	if err != nil {
		return respondError(c, err)
	}
	product, err := pc.products.GetProduct(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Product retrieved successfully", product)
}

func (pc *ProductController) CreateProduct(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	var req models.ProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	product, err := pc.products.CreateProduct(c.Request().Context(), actor, req)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusCreated, "Product created successfully", product)
}

func (pc *ProductController) UpdateProduct(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id", "Invalid product id")
	if err != nil {
		return respondError(c, err)
	}
	var req models.ProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	product, err := pc.products.UpdateProduct(c.Request().Context(), actor, id, req)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Product updated successfully", product)
}

func (pc *ProductController) DeleteProduct(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id", "Invalid product id")
	if err != nil {
		return respondError(c, err)
	}
	if err := pc.products.DeleteProduct(c.Request().Context(), actor, id); err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Product deleted successfully", nil)
}

// UploadProductImage adds the "image" form file to the product's gallery.
func (pc *ProductController) UploadProductImage(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id", "Invalid product id")
	if err != nil {
		return respondError(c, err)
	}
	filename, data, err := readImageUpload(c, "image")
	if err != nil {
		return respondError(c, err)
	}
	product, err := pc.products.AddProductImage(c.Request().Context(), actor, id, filename, data)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Product image uploaded successfully", product)
}
