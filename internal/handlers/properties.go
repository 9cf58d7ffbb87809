package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/bengalbreeze/backend/internal/middleware"
	"github.com/bengalbreeze/backend/internal/models"
	"github.com/bengalbreeze/backend/internal/services"
	appErrors "github.com/bengalbreeze/backend/pkg/errors"
	"github.com/bengalbreeze/backend/pkg/response"
)

// PropertyHandler exposes listing submission, public browsing and the admin
// lifecycle surface.
type PropertyHandler struct {
	properties *services.PropertyService
}

// NewPropertyHandler constructs a PropertyHandler instance.
func NewPropertyHandler(properties *services.PropertyService) (*PropertyHandler, error) {
	if properties == nil {
		return nil, errors.New("property handler: property service is required")
	}
	return &PropertyHandler{properties: properties}, nil
}

type submitPropertyRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Location    string   `json:"location" validate:"required,max=200"`
	Description string   `json:"description" validate:"omitempty,max=4000"`
	PriceMin    int64    `json:"price_min" validate:"gte=0"`
	PriceMax    int64    `json:"price_max" validate:"gte=0,gtefield=PriceMin"`
	Images      []string `json:"images" validate:"omitempty,dive,image_ref,max=2048"`
}

// Submit creates a new listing owned by the calling agent. The agent identity
// comes from the verified token, never from the payload, so an agent cannot
// file listings under another agent's name.
func (h *PropertyHandler) Submit(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}

	var req submitPropertyRequest
	if !bindAndValidate(c, &req) {
		return
	}

	images, err := json.Marshal(req.Images)
	if err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid image list"))
		return
	}

	property, err := h.properties.Submit(requestContext(c), services.SubmitPropertyInput{
		AgentEmail:  identity.Email,
		AgentName:   identity.Claims.Name,
		Title:       req.Title,
		Location:    req.Location,
		Description: req.Description,
		PriceMin:    req.PriceMin,
		PriceMax:    req.PriceMax,
		Images:      datatypes.JSON(images),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, property)
}

// ListMine returns the calling agent's own listings in every state. The
// filter is derived from the verified identity rather than a query value.
func (h *PropertyHandler) ListMine(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}

	properties, err := h.properties.ListByAgent(requestContext(c), identity.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, properties)
}

// ListVerified returns every listing an admin has verified.
func (h *PropertyHandler) ListVerified(c *gin.Context) {
	properties, err := h.properties.ListVerified(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, properties)
}

// ListAdvertised returns the listings currently promoted on the home page.
func (h *PropertyHandler) ListAdvertised(c *gin.Context) {
	properties, err := h.properties.ListAdvertised(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, properties)
}

// Get returns a single listing by id.
func (h *PropertyHandler) Get(c *gin.Context) {
	property, err := h.properties.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, property)
}

// Verify marks the listing behind :id as verified.
func (h *PropertyHandler) Verify(c *gin.Context) {
	h.lifecycle(c, h.properties.Verify)
}

// Reject marks the listing behind :id as rejected and pulls any advertisement.
func (h *PropertyHandler) Reject(c *gin.Context) {
	h.lifecycle(c, h.properties.Reject)
}

// Advertise promotes a verified listing to the home page.
func (h *PropertyHandler) Advertise(c *gin.Context) {
	h.lifecycle(c, h.properties.Advertise)
}

// Unadvertise withdraws a listing from the home page.
func (h *PropertyHandler) Unadvertise(c *gin.Context) {
	h.lifecycle(c, h.properties.Unadvertise)
}

func (h *PropertyHandler) lifecycle(c *gin.Context, op func(ctx context.Context, id string) (*models.Property, error)) {
	property, err := op(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, property)
}
