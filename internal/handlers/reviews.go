package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bengalbreeze/backend/internal/middleware"
	"github.com/bengalbreeze/backend/internal/models"
	"github.com/bengalbreeze/backend/internal/services"
	appErrors "github.com/bengalbreeze/backend/pkg/errors"
	"github.com/bengalbreeze/backend/pkg/response"
)

// ReviewHandler exposes review creation and browsing.
type ReviewHandler struct {
	reviews  *services.ReviewService
	resolver roleResolver
}

type roleResolver interface {
	Resolve(ctx context.Context, email string) (models.Role, error)
}

// NewReviewHandler constructs a ReviewHandler instance.
func NewReviewHandler(reviews *services.ReviewService, resolver roleResolver) (*ReviewHandler, error) {
	if reviews == nil {
		return nil, errors.New("review handler: review service is required")
	}
	if resolver == nil {
		return nil, errors.New("review handler: role resolver is required")
	}
	return &ReviewHandler{reviews: reviews, resolver: resolver}, nil
}

type createReviewRequest struct {
	PropertyID string `json:"property_id" validate:"required,uuid4"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	Comment    string `json:"comment" validate:"omitempty,max=2000"`
}

// Create files a review against a listing on behalf of the caller.
func (h *ReviewHandler) Create(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}

	var req createReviewRequest
	if !bindAndValidate(c, &req) {
		return
	}

	review, err := h.reviews.Create(requestContext(c), services.CreateReviewInput{
		PropertyID:    req.PropertyID,
		ReviewerEmail: identity.Email,
		ReviewerName:  identity.Claims.Name,
		Rating:        req.Rating,
		Comment:       req.Comment,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, review)
}

// ListByProperty returns every review filed against the listing behind :id.
func (h *ReviewHandler) ListByProperty(c *gin.Context) {
	reviews, err := h.reviews.ListByProperty(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, reviews)
}

// Delete removes a review. Authors may delete their own; admins may delete any.
func (h *ReviewHandler) Delete(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}

	role, err := h.resolver.Resolve(requestContext(c), identity.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.reviews.Delete(requestContext(c), c.Param("id"), identity.Email, role == models.RoleAdmin); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
