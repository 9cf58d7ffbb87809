package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/bengalbreeze/backend/internal/models"
	apperrors "github.com/bengalbreeze/backend/pkg/errors"
)

// WishlistService manages buyers' saved listings. The buyer identity always
// comes from the verified request context; one buyer cannot read or edit
// another's wishlist.
type WishlistService struct {
	db *gorm.DB
}

// NewWishlistService constructs a WishlistService instance.
func NewWishlistService(db *gorm.DB) (*WishlistService, error) {
	if db == nil {
		return nil, errors.New("wishlist service: db is required")
	}
	return &WishlistService{db: db}, nil
}

// Add bookmarks a property for the buyer. Adding the same property twice is
// a no-op success.
func (s *WishlistService) Add(ctx context.Context, buyerEmail, propertyID string) (*models.WishlistEntry, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(propertyID) == "" {
		return nil, apperrors.NewBadRequest("property id is required")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Property{}).
		Where("id = ?", propertyID).Count(&count).Error; err != nil {
		return nil, apperrors.ErrStorageUnavailable.WithInternal(err)
	}
	if count == 0 {
		return nil, apperrors.ErrNotFound
	}

	entry := &models.WishlistEntry{PropertyID: propertyID, BuyerEmail: buyerEmail}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		if isUniqueConstraintError(err) {
			var existing models.WishlistEntry
			if lookupErr := s.db.WithContext(ctx).
				Where("property_id = ? AND buyer_email = ?", propertyID, buyerEmail).
				First(&existing).Error; lookupErr == nil {
				return &existing, nil
			}
		}
		return nil, apperrors.ErrStorageUnavailable.WithInternal(err)
	}

	return entry, nil
}

// List returns the buyer's saved listings, newest first.
func (s *WishlistService) List(ctx context.Context, buyerEmail string) ([]models.WishlistEntry, error) {
	ctx = ensureContext(ctx)

	var entries []models.WishlistEntry
	err := s.db.WithContext(ctx).
		Where("buyer_email = ?", buyerEmail).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, apperrors.ErrStorageUnavailable.WithInternal(err)
	}
	return entries, nil
}

// Remove deletes one of the buyer's own entries. An entry belonging to a
// different buyer is reported as absent rather than forbidden, so the
// endpoint leaks nothing about other users' wishlists.
func (s *WishlistService) Remove(ctx context.Context, buyerEmail, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("id = ? AND buyer_email = ?", id, buyerEmail).
		Delete(&models.WishlistEntry{})
	if result.Error != nil {
		return apperrors.ErrStorageUnavailable.WithInternal(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
