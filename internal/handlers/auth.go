package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bengalbreeze/backend/internal/auth"
	appErrors "github.com/bengalbreeze/backend/pkg/errors"
	"github.com/bengalbreeze/backend/pkg/metrics"
	"github.com/bengalbreeze/backend/pkg/response"
)

// AuthHandler issues access tokens for authenticated clients.
type AuthHandler struct {
	tokens *auth.TokenService
}

// NewAuthHandler constructs an AuthHandler instance.
func NewAuthHandler(tokens *auth.TokenService) (*AuthHandler, error) {
	if tokens == nil {
		return nil, errors.New("auth handler: token service is required")
	}
	return &AuthHandler{tokens: tokens}, nil
}

type issueTokenRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"omitempty,max=120"`
}

// IssueToken mints a short-lived bearer token for the supplied identity.
// The token carries no role; roles are resolved from storage on each request
// so a role change takes effect without waiting for expiry.
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req issueTokenRequest
	if !bindAndValidate(c, &req) {
		return
	}

	token, err := h.tokens.Issue(auth.TokenInput{Email: req.Email, Name: req.Name})
	if err != nil {
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}

	metrics.TokensIssued.Inc()
	response.Success(c, http.StatusOK, gin.H{"token": token})
}
