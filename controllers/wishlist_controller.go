package controllers

import (
	"context"
	"net/http"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/HSouheill/marketplace_backend/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WishlistManager interface {
	AddToWishlist(ctx context.Context, userID, productID primitive.ObjectID) (bool, error)
	RemoveFromWishlist(ctx context.Context, userID, productID primitive.ObjectID) error
	ListWishlist(ctx context.Context, userID primitive.ObjectID) ([]models.WishlistEntry, error)
}

type WishlistController struct {
	wishlist WishlistManager
}

func NewWishlistController(wishlist WishlistManager) *WishlistController {
	return &WishlistController{wishlist: wishlist}
}

// AddToWishlist answers 201 for a new item and 200 when it was already listed.
func (wc *WishlistController) AddToWishlist(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	var req models.WishlistRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return respondError(c, utils.BadRequest("Invalid product id"))
	}

	added, err := wc.wishlist.AddToWishlist(c.Request().Context(), actor.ID, productID)
	if err != nil {
		return respondError(c, err)
	}
	if !added {
		return respond(c, http.StatusOK, "Already in wishlist", nil)
	}
	return respond(c, http.StatusCreated, "Added to wishlist", nil)
}

func (wc *WishlistController) RemoveFromWishlist(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	productID, err := paramID(c, "productId", "Invalid product id")
	if err != nil {
		return respondError(c, err)
	}
	if err := wc.wishlist.RemoveFromWishlist(c.Request().Context(), actor.ID, productID); err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Removed from wishlist", nil)
}

func (wc *WishlistController) GetWishlist(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	entries, err := wc.wishlist.ListWishlist(c.Request().Context(), actor.ID)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Wishlist retrieved successfully", entries)
}
