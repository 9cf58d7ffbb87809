package auth

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bengalbreeze/backend/internal/models"
	apperrors "github.com/bengalbreeze/backend/pkg/errors"
)

// RoleResolver answers "what role does this email hold right now" with a
// fresh store lookup on every call. Roles are never cached across requests:
// a grant or revocation takes effect on the next check, while the token
// itself stays valid until natural expiry.
type RoleResolver struct {
	db *gorm.DB
}

// NewRoleResolver constructs a resolver backed by the provided database.
func NewRoleResolver(db *gorm.DB) (*RoleResolver, error) {
	if db == nil {
		return nil, errors.New("role resolver: db is required")
	}
	return &RoleResolver{db: db}, nil
}

// Resolve returns the caller's current role. An absent user record is a
// valid terminal answer, RoleNone, not an error: a token can outlive the
// account it was issued for, and such a holder is simply unprivileged.
func (r *RoleResolver) Resolve(ctx context.Context, email string) (models.Role, error) {
	if email == "" {
		return models.RoleNone, nil
	}

	var user models.User
	err := r.db.WithContext(ctx).Select("role").Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
		return models.ParseRole(string(user.Role)), nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.RoleNone, nil
	default:
		return models.RoleNone, apperrors.ErrStorageUnavailable.WithInternal(err)
	}
}
