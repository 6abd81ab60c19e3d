package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/HSouheill/marketplace_backend/repositories"
	"github.com/HSouheill/marketplace_backend/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WishlistStore interface {
	Add(ctx context.Context, userID, productID primitive.ObjectID) (bool, error)
	Remove(ctx context.Context, userID, productID primitive.ObjectID) error
	List(ctx context.Context, userID primitive.ObjectID) ([]models.WishlistEntry, error)
}

type ProductFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
}

type WishlistService struct {
	store    WishlistStore
	products ProductFinder
}

func NewWishlistService(store WishlistStore, products ProductFinder) *WishlistService {
	return &WishlistService{store: store, products: products}
}

// AddToWishlist reports whether the product was newly added.
func (s *WishlistService) AddToWishlist(ctx context.Context, userID, productID primitive.ObjectID) (bool, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, utils.NotFound("Product not found")
		}
		return false, fmt.Errorf("find product: %w", err)
	}
	added, err := s.store.Add(ctx, userID, productID)
	if err != nil {
		return false, fmt.Errorf("add to wishlist: %w", err)
	}
	return added, nil
}

func (s *WishlistService) RemoveFromWishlist(ctx context.Context, userID, productID primitive.ObjectID) error {
	if err := s.store.Remove(ctx, userID, productID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return utils.NotFound("Product is not in your wishlist")
		}
		return fmt.Errorf("remove from wishlist: %w", err)
	}
	return nil
}

func (s *WishlistService) ListWishlist(ctx context.Context, userID primitive.ObjectID) ([]models.WishlistEntry, error) {
	entries, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	return entries, nil
}
