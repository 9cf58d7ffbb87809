package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/bengalbreeze/backend/internal/models"
	apperrors "github.com/bengalbreeze/backend/pkg/errors"
)

// CreateReviewInput describes a buyer's review of a listing. The reviewer
// identity comes from the verified request context.
type CreateReviewInput struct {
	PropertyID    string
	ReviewerEmail string
	ReviewerName  string
	Rating        int
	Comment       string
}

// ReviewService manages property reviews.
type ReviewService struct {
	db *gorm.DB
}

// NewReviewService constructs a ReviewService instance.
func NewReviewService(db *gorm.DB) (*ReviewService, error) {
	if db == nil {
		return nil, errors.New("review service: db is required")
	}
	return &ReviewService{db: db}, nil
}

// Create stores a review against an existing property.
func (s *ReviewService) Create(ctx context.Context, input CreateReviewInput) (*models.Review, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(input.PropertyID) == "" {
		return nil, apperrors.NewBadRequest("property id is required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, apperrors.NewBadRequest("rating must be between 1 and 5")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Property{}).
		Where("id = ?", input.PropertyID).Count(&count).Error; err != nil {
		return nil, apperrors.ErrStorageUnavailable.WithInternal(err)
	}
	if count == 0 {
		return nil, apperrors.ErrNotFound
	}

	review := &models.Review{
		PropertyID:    input.PropertyID,
		ReviewerEmail: input.ReviewerEmail,
		ReviewerName:  strings.TrimSpace(input.ReviewerName),
		Rating:        input.Rating,
		Comment:       strings.TrimSpace(input.Comment),
	}

	if err := s.db.WithContext(ctx).Create(review).Error; err != nil {
		return nil, apperrors.ErrStorageUnavailable.WithInternal(err)
	}

	return review, nil
}

// ListByProperty returns reviews for a listing, newest first.
func (s *ReviewService) ListByProperty(ctx context.Context, propertyID string) ([]models.Review, error) {
	ctx = ensureContext(ctx)

	var reviews []models.Review
	err := s.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, apperrors.ErrStorageUnavailable.WithInternal(err)
	}
	return reviews, nil
}

// Delete removes a review. Only its author or an admin may delete it; the
// caller's role is resolved by the handler's guard, so this method only
// re-checks authorship for non-admin callers.
func (s *ReviewService) Delete(ctx context.Context, id, callerEmail string, callerIsAdmin bool) error {
	ctx = ensureContext(ctx)

	var review models.Review
	err := s.db.WithContext(ctx).First(&review, "id = ?", id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.ErrNotFound
	case err != nil:
		return apperrors.ErrStorageUnavailable.WithInternal(err)
	}

	if !callerIsAdmin && review.ReviewerEmail != callerEmail {
		return apperrors.ErrForbidden
	}

	if err := s.db.WithContext(ctx).Delete(&review).Error; err != nil {
		return apperrors.ErrStorageUnavailable.WithInternal(err)
	}
	return nil
}
