package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/HSouheill/marketplace_backend/repositories"
	"github.com/HSouheill/marketplace_backend/utils"
	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, int64, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type CategoryFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
}

type BrandFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Brand, error)
}

// ImageUploader stores an uploaded image and returns its public URL.
type ImageUploader interface {
	SaveImage(data []byte, filename, subDir string) (string, error)
	RemoveImage(url string) error
}

type ProductService struct {
	store      ProductStore
	categories CategoryFinder
	brands     BrandFinder
	images     ImageUploader
}

func NewProductService(store ProductStore, categories CategoryFinder, brands BrandFinder, images ImageUploader) *ProductService {
	return &ProductService{store: store, categories: categories, brands: brands, images: images}
}

func (s *ProductService) ListProducts(ctx context.Context, filter models.ProductFilter) (models.PagedResult, error) {
	filter.Page, filter.Limit = utils.NormalizePage(filter.Page, filter.Limit)
	filter.Query = strings.TrimSpace(filter.Query)

	products, total, err := s.store.List(ctx, filter)
	if err != nil {
		return models.PagedResult{}, fmt.Errorf("list products: %w", err)
	}
	return models.PagedResult{Items: products, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	product, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NotFound("Product not found")
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return product, nil
}

// CreateProduct stores a product. Products created by a vendor belong to them.
func (s *ProductService) CreateProduct(ctx context.Context, actor models.Actor, req models.ProductRequest) (*models.Product, error) {
	categoryID, err := s.resolveCategory(ctx, req.Category)
	if err != nil {
		return nil, err
	}
	brandID, err := s.resolveBrand(ctx, req.Brand)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	product := &models.Product{
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug.Make(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Category:    categoryID,
		Brand:       brandID,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if actor.Role == models.RoleVendor {
		owner := actor.ID
		product.Vendor = &owner
	}

	if err := s.store.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, actor models.Actor, id primitive.ObjectID, req models.ProductRequest) (*models.Product, error) {
	product, err := s.ownedProduct(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	categoryID, err := s.resolveCategory(ctx, req.Category)
	if err != nil {
		return nil, err
	}
	brandID, err := s.resolveBrand(ctx, req.Brand)
	if err != nil {
		return nil, err
	}

	product.Name = strings.TrimSpace(req.Name)
	product.Slug = slug.Make(req.Name)
	product.Description = req.Description
	product.Price = req.Price
	product.Quantity = req.Quantity
	product.Category = categoryID
	product.Brand = brandID
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.store.Update(ctx, product); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NotFound("Product not found")
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, actor models.Actor, id primitive.ObjectID) error {
	if _, err := s.ownedProduct(ctx, actor, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return utils.NotFound("Product not found")
		}
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// AddProductImage stores an image and appends it to the product's gallery.
// The first image also becomes the cover.
func (s *ProductService) AddProductImage(ctx context.Context, actor models.Actor, id primitive.ObjectID, filename string, data []byte) (*models.Product, error) {
	product, err := s.ownedProduct(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if len(product.Images) >= models.MaxProductImages {
		return nil, utils.BadRequest(fmt.Sprintf("A product can have at most %d images", models.MaxProductImages))
	}

	url, err := s.images.SaveImage(data, filename, "products")
	if err != nil {
		return nil, err
	}

	product.Images = append(product.Images, url)
	if product.ImageCover == "" {
		product.ImageCover = url
	}
	if err := s.store.Update(ctx, product); err != nil {
		if rmErr := s.images.RemoveImage(url); rmErr != nil {
			log.Printf("Error removing orphaned image %s: %v", url, rmErr)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NotFound("Product not found")
		}
		return nil, fmt.Errorf("update product images: %w", err)
	}
	return product, nil
}

// ownedProduct loads a product the actor may modify: admins may modify any,
// vendors only their own.
func (s *ProductService) ownedProduct(ctx context.Context, actor models.Actor, id primitive.ObjectID) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() {
		return product, nil
	}
	if product.Vendor == nil || *product.Vendor != actor.ID {
		return nil, utils.Forbidden("You can only modify your own products")
	}
	return product, nil
}

func (s *ProductService) resolveCategory(ctx context.Context, hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, utils.BadRequest("Invalid category id")
	}
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return primitive.NilObjectID, utils.NotFound("Category not found")
		}
		return primitive.NilObjectID, fmt.Errorf("find category: %w", err)
	}
	return id, nil
}

// resolveBrand checks an optional brand reference. Empty means no brand.
func (s *ProductService) resolveBrand(ctx context.Context, hex string) (*primitive.ObjectID, error) {
	if strings.TrimSpace(hex) == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return nil, utils.BadRequest("Invalid brand id")
	}
	if _, err := s.brands.FindByID(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NotFound("No brand found with that ID")
		}
		return nil, fmt.Errorf("find brand: %w", err)
	}
	return &id, nil
}
