package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bengalbreeze/backend/internal/middleware"
	"github.com/bengalbreeze/backend/internal/services"
	appErrors "github.com/bengalbreeze/backend/pkg/errors"
	"github.com/bengalbreeze/backend/pkg/response"
)

// WishlistHandler exposes the caller's saved-listings collection.
type WishlistHandler struct {
	wishlist *services.WishlistService
}

// NewWishlistHandler constructs a WishlistHandler instance.
func NewWishlistHandler(wishlist *services.WishlistService) (*WishlistHandler, error) {
	if wishlist == nil {
		return nil, errors.New("wishlist handler: wishlist service is required")
	}
	return &WishlistHandler{wishlist: wishlist}, nil
}

type addWishlistRequest struct {
	PropertyID string `json:"property_id" validate:"required,uuid4"`
}

// Add saves a listing to the caller's wishlist. Saving the same listing twice
// is a no-op success.
func (h *WishlistHandler) Add(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}

	var req addWishlistRequest
	if !bindAndValidate(c, &req) {
		return
	}

	entry, err := h.wishlist.Add(requestContext(c), identity.Email, req.PropertyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, entry)
}

// List returns the caller's wishlist entries.
func (h *WishlistHandler) List(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}

	entries, err := h.wishlist.List(requestContext(c), identity.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, entries)
}

// Remove deletes the caller's wishlist entry behind :id. Entries belonging to
// other buyers are invisible here and report not found.
func (h *WishlistHandler) Remove(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}

	if err := h.wishlist.Remove(requestContext(c), identity.Email, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
