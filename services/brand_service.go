package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/HSouheill/marketplace_backend/repositories"
	"github.com/HSouheill/marketplace_backend/utils"
	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BrandStore interface {
	Create(ctx context.Context, brand *models.Brand) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Brand, error)
	List(ctx context.Context) ([]models.Brand, error)
	Update(ctx context.Context, brand *models.Brand) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// BrandUsage counts the products that reference a brand.
type BrandUsage interface {
	CountByBrand(ctx context.Context, brandID primitive.ObjectID) (int64, error)
}

var errBrandNotFound = utils.NotFound("No brand found with that ID")

type BrandService struct {
	store    BrandStore
	products BrandUsage
}

func NewBrandService(store BrandStore, products BrandUsage) *BrandService {
	return &BrandService{store: store, products: products}
}

func (s *BrandService) ListBrands(ctx context.Context) ([]models.Brand, error) {
	brands, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	return brands, nil
}

func (s *BrandService) GetBrand(ctx context.Context, id primitive.ObjectID) (*models.Brand, error) {
	brand, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errBrandNotFound
		}
		return nil, fmt.Errorf("find brand: %w", err)
	}
	return brand, nil
}

func (s *BrandService) CreateBrand(ctx context.Context, req models.BrandRequest) (*models.Brand, error) {
	name, err := brandName(req.Name)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	brand := &models.Brand{Name: name, Slug: slug.Make(name), CreatedAt: now, UpdatedAt: now}
	if err := s.store.Create(ctx, brand); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, utils.Conflict("A brand with this name already exists")
		}
		return nil, fmt.Errorf("create brand: %w", err)
	}
	return brand, nil
}

func (s *BrandService) UpdateBrand(ctx context.Context, id primitive.ObjectID, req models.BrandRequest) (*models.Brand, error) {
	name, err := brandName(req.Name)
	if err != nil {
		return nil, err
	}
	brand, err := s.GetBrand(ctx, id)
	if err != nil {
		return nil, err
	}

	brand.Name = name
	brand.Slug = slug.Make(name)
	if err := s.store.Update(ctx, brand); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, errBrandNotFound
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, utils.Conflict("A brand with this name already exists")
		}
		return nil, fmt.Errorf("update brand: %w", err)
	}
	return brand, nil
}

// DeleteBrand refuses to remove a brand that products still reference.
func (s *BrandService) DeleteBrand(ctx context.Context, id primitive.ObjectID) error {
	used, err := s.products.CountByBrand(ctx, id)
	if err != nil {
		return fmt.Errorf("count brand products: %w", err)
	}
	if used > 0 {
		return utils.Conflict(fmt.Sprintf("Brand is used by %d products", used))
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return errBrandNotFound
		}
		return fmt.Errorf("delete brand: %w", err)
	}
	return nil
}

func brandName(raw string) (string, error) {
	name := strings.Join(strings.Fields(raw), " ")
	if len(name) < 2 {
		return "", utils.BadRequest("Please provide a brand name")
	}
	return name, nil
}
