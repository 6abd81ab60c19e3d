package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/HSouheill/marketplace_backend/repositories"
	"github.com/HSouheill/marketplace_backend/utils"
	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultCategoryImage = "/default-category.jpg"

// CategoryStore is the persistence the category tree needs.
type CategoryStore interface {
	Create(ctx context.Context, category *models.Category) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	FindByNameAndParent(ctx context.Context, name string, parent *primitive.ObjectID) (*models.Category, error)
	List(ctx context.Context, filter models.CategoryFilter) ([]models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	FindDescendantIDs(ctx context.Context, id primitive.ObjectID) ([]primitive.ObjectID, error)
	DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	UpdateOrder(ctx context.Context, id primitive.ObjectID, order int) error
}

// CategoryService maintains the three-level category hierarchy. Each category
// stores its full lineage (ancestors and path) so subtree queries need no recursion.
type CategoryService struct {
	store  CategoryStore
	cache  TreeCache
	images ImageUploader
}

// NewCategoryService builds the service. cache and images may be nil; without
// images, image uploads are refused.
func NewCategoryService(store CategoryStore, cache TreeCache, images ImageUploader) *CategoryService {
	if cache == nil {
		cache = noopTreeCache{}
	}
	return &CategoryService{store: store, cache: cache, images: images}
}

func (s *CategoryService) ListCategories(ctx context.Context, filter models.CategoryFilter) ([]models.Category, error) {
	categories, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *CategoryService) GetCategory(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	category, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NotFound("Category not found")
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return category, nil
}

func (s *CategoryService) CreateCategory(ctx context.Context, req models.CreateCategoryRequest) (*models.Category, error) {
	var parentID *primitive.ObjectID
	if req.Parent != "" {
		id, err := primitive.ObjectIDFromHex(req.Parent)
		if err != nil {
			return nil, utils.BadRequest("Invalid parent category id")
		}
		parentID = &id
	}

	order := 0
	if req.Order != nil {
		order = *req.Order
	}

	category, err := s.create(ctx, req.Name, parentID, order, req.Image, true)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	return category, nil
}

func (s *CategoryService) create(ctx context.Context, name string, parentID *primitive.ObjectID, order int, image string, active bool) (*models.Category, error) {
	if err := utils.ValidateCategoryName(name); err != nil {
		return nil, utils.BadRequest(err.Error())
	}

	var parent *models.Category
	if parentID != nil {
		p, err := s.store.FindByID(ctx, *parentID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, utils.NotFound("Parent category not found")
			}
			return nil, fmt.Errorf("find parent category: %w", err)
		}
		parent = p
	}

	level, ancestors, path, err := computeLineage(name, parent)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateCategoryPath(path); err != nil {
		return nil, utils.BadRequest(err.Error())
	}

	if _, err := s.store.FindByNameAndParent(ctx, name, parentID); err == nil {
		return nil, duplicateCategoryError()
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("check duplicate category: %w", err)
	}

	if image == "" {
		image = defaultCategoryImage
	}

	now := time.Now()
	category := &models.Category{
		Name:      name,
		Slug:      slug.Make(name),
		Image:     image,
		Level:     level,
		Parent:    parentID,
		Ancestors: ancestors,
		Path:      path,
		Order:     order,
		IsActive:  active,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Create(ctx, category); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, duplicateCategoryError()
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

// UpdateCategory applies a partial update. Moving a category recomputes its own
// lineage only; existing descendants keep the ancestors and path they had.
func (s *CategoryService) UpdateCategory(ctx context.Context, id primitive.ObjectID, req models.UpdateCategoryRequest) (*models.Category, error) {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	nameChanged := false
	if req.Name != nil && *req.Name != category.Name {
		if err := utils.ValidateCategoryName(*req.Name); err != nil {
			return nil, utils.BadRequest(err.Error())
		}
		category.Name = *req.Name
		category.Slug = slug.Make(*req.Name)
		nameChanged = true
	}

	target := category.Parent
	parentChanged := false
	if req.Parent != nil {
		var newParent *primitive.ObjectID
		if *req.Parent != "" {
			pid, err := primitive.ObjectIDFromHex(*req.Parent)
			if err != nil {
				return nil, utils.BadRequest("Invalid parent category id")
			}
			newParent = &pid
		}
		if !sameParent(category.Parent, newParent) {
			target = newParent
			parentChanged = true
		}
	}

	if nameChanged || parentChanged {
		var parent *models.Category
		if target != nil {
			if *target == category.ID {
				return nil, utils.BadRequest("A category cannot be moved under itself or its descendants")
			}
			p, err := s.store.FindByID(ctx, *target)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return nil, utils.NotFound("Parent category not found")
				}
				return nil, fmt.Errorf("find parent category: %w", err)
			}
			if containsID(p.Ancestors, category.ID) {
				return nil, utils.BadRequest("A category cannot be moved under itself or its descendants")
			}
			parent = p
		}

		level, ancestors, path, err := computeLineage(category.Name, parent)
		if err != nil {
			return nil, err
		}
		if err := utils.ValidateCategoryPath(path); err != nil {
			return nil, utils.BadRequest(err.Error())
		}
		category.Parent = target
		category.Level = level
		category.Ancestors = ancestors
		category.Path = path

		existing, err := s.store.FindByNameAndParent(ctx, category.Name, target)
		switch {
		case err == nil && existing.ID != category.ID:
			return nil, duplicateCategoryError()
		case err != nil && !errors.Is(err, repositories.ErrNotFound):
			return nil, fmt.Errorf("check duplicate category: %w", err)
		}
	}

	if req.Order != nil {
		category.Order = *req.Order
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if req.Image != nil {
		category.Image = *req.Image
	}

	if err := s.store.Update(ctx, category); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, duplicateCategoryError()
		case errors.Is(err, repositories.ErrNotFound):
			return nil, utils.NotFound("Category not found")
		}
		return nil, fmt.Errorf("update category: %w", err)
	}

	if parentChanged {
		log.Printf("Category %s moved to %s; descendant paths were not updated", category.ID.Hex(), category.Path)
	}
	s.cache.Invalidate(ctx)
	return category, nil
}

// SetCategoryImage replaces the category's image with an upload.
func (s *CategoryService) SetCategoryImage(ctx context.Context, id primitive.ObjectID, filename string, data []byte) (*models.Category, error) {
	if s.images == nil {
		return nil, utils.NewAppError(http.StatusServiceUnavailable, "Image uploads are not available")
	}
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.images.SaveImage(data, filename, "categories")
	if err != nil {
		return nil, err
	}
	previous := category.Image
	category.Image = url
	if err := s.store.Update(ctx, category); err != nil {
		if rmErr := s.images.RemoveImage(url); rmErr != nil {
			log.Printf("Error removing orphaned image %s: %v", url, rmErr)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NotFound("Category not found")
		}
		return nil, fmt.Errorf("update category image: %w", err)
	}

	if previous != "" && previous != defaultCategoryImage {
		if err := s.images.RemoveImage(previous); err != nil {
			log.Printf("Error removing old category image %s: %v", previous, err)
		}
	}
	s.cache.Invalidate(ctx)
	return category, nil
}

// DeleteCategory removes the category and every category below it in one bulk
// delete. It returns the number of categories removed.
func (s *CategoryService) DeleteCategory(ctx context.Context, id primitive.ObjectID) (int64, error) {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return 0, err
	}

	descendants, err := s.store.FindDescendantIDs(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("find descendants: %w", err)
	}

	deleted, err := s.store.DeleteMany(ctx, append(descendants, id))
	if err != nil {
		return 0, fmt.Errorf("delete categories: %w", err)
	}

	s.cache.Invalidate(ctx)
	return deleted, nil
}

func (s *CategoryService) GetCategoryTree(ctx context.Context) ([]*models.CategoryNode, error) {
	if tree, ok := s.cache.Get(ctx); ok {
		return tree, nil
	}

	categories, err := s.store.List(ctx, models.CategoryFilter{})
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	tree := BuildCategoryTree(categories)
	s.cache.Set(ctx, tree)
	return tree, nil
}

// ReorderCategories updates each item independently. Failures are reported per
// item and never undo the updates that already succeeded.
func (s *CategoryService) ReorderCategories(ctx context.Context, items []models.CategoryOrder) models.BatchResult {
	result := models.BatchResult{Failed: []models.ItemError{}}

	for _, item := range items {
		id, err := primitive.ObjectIDFromHex(item.ID)
		if err != nil {
			result.Failed = append(result.Failed, models.ItemError{ID: item.ID, Error: "invalid id"})
			continue
		}
		if err := s.store.UpdateOrder(ctx, id, item.Order); err != nil {
			msg := "update failed"
			if errors.Is(err, repositories.ErrNotFound) {
				msg = "Category not found"
			} else {
				log.Printf("Error reordering category %s: %v", item.ID, err)
			}
			result.Failed = append(result.Failed, models.ItemError{ID: item.ID, Error: msg})
			continue
		}
		result.Updated++
	}

	if result.Updated > 0 {
		s.cache.Invalidate(ctx)
	}
	return result
}

func duplicateCategoryError() error {
	return utils.BadRequest("A category with this name already exists under the same parent")
}
