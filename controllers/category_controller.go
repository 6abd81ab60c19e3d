package controllers

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/HSouheill/marketplace_backend/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxCategoryCSVSize = 5 << 20

type CategoryManager interface {
	ListCategories(ctx context.Context, filter models.CategoryFilter) ([]models.Category, error)
	GetCategory(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	GetCategoryTree(ctx context.Context) ([]*models.CategoryNode, error)
	CreateCategory(ctx context.Context, req models.CreateCategoryRequest) (*models.Category, error)
	UpdateCategory(ctx context.Context, id primitive.ObjectID, req models.UpdateCategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, id primitive.ObjectID) (int64, error)
	ReorderCategories(ctx context.Context, items []models.CategoryOrder) models.BatchResult
	ExportCategoriesCSV(ctx context.Context, w io.Writer) error
	ImportCategoriesCSV(ctx context.Context, r io.Reader) (models.BatchResult, error)
	SetCategoryImage(ctx context.Context, id primitive.ObjectID, filename string, data []byte) (*models.Category, error)
}

type CategoryController struct {
	categories CategoryManager
}

func NewCategoryController(categories CategoryManager) *CategoryController {
	return &CategoryController{categories: categories}
}

// GetCategories lists categories, optionally filtered by ?level=, ?parent=
// (an id, or "root") and ?active=.
func (cc *CategoryController) GetCategories(c echo.Context) error {
	var filter models.CategoryFilter

	if level := c.QueryParam("level"); level != "" {
		n, err := strconv.Atoi(level)
		if err != nil {
			return respondError(c, utils.BadRequest("Invalid level"))
		}
		filter.Level = n
	}
	switch parent := c.QueryParam("parent"); parent {
	case "":
	case "root", "null":
		filter.Roots = true
	default:
		id, err := primitive.ObjectIDFromHex(parent)
		if err != nil {
			return respondError(c, utils.BadRequest("Invalid parent category id"))
		}
		filter.Parent = &id
	}
	if active := c.QueryParam("active"); active != "" {
		b, err := strconv.ParseBool(active)
		if err != nil {
			return respondError(c, utils.BadRequest("Invalid active flag"))
		}
		filter.Active = &b
	}

	categories, err := cc.categories.ListCategories(c.Request().Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Categories retrieved successfully", categories)
}

func (cc *CategoryController) GetCategoryTree(c echo.Context) error {
	tree, err := cc.categories.GetCategoryTree(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Category tree retrieved successfully", tree)
}

func (cc *CategoryController) GetCategory(c echo.Context) error {
	id, err := paramID(c, "id", "Invalid category id")
	if err != nil {
		return respondError(c, err)
	}
	category, err := cc.categories.GetCategory(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Category retrieved successfully", category)
}

func (cc *CategoryController) CreateCategory(c echo.Context) error {
	var req models.CreateCategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	category, err := cc.categories.CreateCategory(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusCreated, "Category created successfully", category)
}

func (cc *CategoryController) UpdateCategory(c echo.Context) error {
	id, err := paramID(c, "id", "Invalid category id")
	if err != nil {
		return respondError(c, err)
	}
	var req models.UpdateCategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	category, err := cc.categories.UpdateCategory(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Category updated successfully", category)
}

// DeleteCategory removes the category and its whole subtree.
func (cc *CategoryController) DeleteCategory(c echo.Context) error {
	id, err := paramID(c, "id", "Invalid category id")
	if err != nil {
		return respondError(c, err)
	}
	deleted, err := cc.categories.DeleteCategory(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Category and all subcategories deleted successfully", map[string]int64{"deleted": deleted})
}

func (cc *CategoryController) ReorderCategories(c echo.Context) error {
	var req models.ReorderCategoriesRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	result := cc.categories.ReorderCategories(c.Request().Context(), req.Categories)
	return respond(c, http.StatusOK, "Categories reordered", result)
}

func (cc *CategoryController) ExportCategories(c echo.Context) error {
	filename := "categories-" + time.Now().Format("2006-01-02") + ".csv"
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	c.Response().WriteHeader(http.StatusOK)

	if err := cc.categories.ExportCategoriesCSV(c.Request().Context(), c.Response()); err != nil {
		// headers already written
		c.Logger().Errorf("Error exporting categories: %v", err)
	}
	return nil
}

// ImportCategories reads a CSV upload from the "file" form field.
func (cc *CategoryController) ImportCategories(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return respondError(c, utils.BadRequest("Please upload a CSV file in the 'file' field"))
	}
	if fh.Size > maxCategoryCSVSize {
		return respondError(c, utils.BadRequest("CSV file is too large"))
	}
	f, err := fh.Open()
	if err != nil {
		return respondError(c, utils.BadRequest("Could not read uploaded file"))
	}
	defer f.Close()

	result, err := cc.categories.ImportCategoriesCSV(c.Request().Context(), f)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Categories imported", result)
}

func (cc *CategoryController) UploadCategoryImage(c echo.Context) error {
	id, err := paramID(c, "id", "Invalid category id")
	if err != nil {
		return respondError(c, err)
	}
	filename, data, err := readImageUpload(c, "image")
	if err != nil {
		return respondError(c, err)
	}
	category, err := cc.categories.SetCategoryImage(c.Request().Context(), id, filename, data)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Category image updated successfully", category)
}
