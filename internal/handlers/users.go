package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bengalbreeze/backend/internal/models"
	"github.com/bengalbreeze/backend/internal/services"
	appErrors "github.com/bengalbreeze/backend/pkg/errors"
	"github.com/bengalbreeze/backend/pkg/response"
)

// UserHandler exposes account registration, role lookups and the admin user
// management surface.
type UserHandler struct {
	users *services.UserService
}

// NewUserHandler constructs a UserHandler instance.
func NewUserHandler(users *services.UserService) (*UserHandler, error) {
	if users == nil {
		return nil, errors.New("user handler: user service is required")
	}
	return &UserHandler{users: users}, nil
}

type registerUserRequest struct {
	Name  string `json:"name" validate:"required,max=120"`
	Email string `json:"email" validate:"required,email"`
	Photo string `json:"photo" validate:"omitempty,max=2048"`
}

// Register creates an account on first sign-in. Registering an email that
// already exists returns the stored account unchanged, so repeated sign-ins
// never reset a granted role.
func (h *UserHandler) Register(c *gin.Context) {
	var req registerUserRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, created, err := h.users.Register(requestContext(c), services.RegisterUserInput{
		Name:  req.Name,
		Email: req.Email,
		Photo: req.Photo,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.Success(c, status, user)
}

// List returns a paginated view of every account.
func (h *UserHandler) List(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	perPage := parseIntQuery(c, "per_page", 25)

	users, total, err := h.users.List(requestContext(c), services.ListUsersOptions{
		Page:     page,
		PageSize: perPage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	totalPages := 0
	if perPage > 0 {
		totalPages = int((total + int64(perPage) - 1) / int64(perPage))
	}
	response.SuccessWithMeta(c, http.StatusOK, users, &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      int(total),
		TotalPages: totalPages,
	})
}

// CheckAdmin reports whether the account behind :email holds the admin role.
// The route is self-guarded, so callers can only ask about themselves.
func (h *UserHandler) CheckAdmin(c *gin.Context) {
	h.checkRole(c, models.RoleAdmin, "admin")
}

// CheckAgent reports whether the account behind :email holds the agent role.
func (h *UserHandler) CheckAgent(c *gin.Context) {
	h.checkRole(c, models.RoleAgent, "agent")
}

func (h *UserHandler) checkRole(c *gin.Context, role models.Role, field string) {
	email := c.Param("email")

	user, err := h.users.GetByEmail(requestContext(c), email)
	if err != nil {
		// An account that was never registered simply holds no role.
		if errors.Is(err, appErrors.ErrNotFound) {
			response.Success(c, http.StatusOK, gin.H{field: false})
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{field: user.Role == role})
}

// PromoteToAdmin grants the admin role to the account behind :id.
func (h *UserHandler) PromoteToAdmin(c *gin.Context) {
	h.setRole(c, models.RoleAdmin)
}

// PromoteToAgent grants the agent role to the account behind :id.
func (h *UserHandler) PromoteToAgent(c *gin.Context) {
	h.setRole(c, models.RoleAgent)
}

func (h *UserHandler) setRole(c *gin.Context, role models.Role) {
	user, err := h.users.SetRole(requestContext(c), c.Param("id"), role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// Delete removes the account behind :id. Listings submitted by a deleted
// agent survive until the maintenance sweep unadvertises them.
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
