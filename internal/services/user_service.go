package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/bengalbreeze/backend/internal/models"
	apperrors "github.com/bengalbreeze/backend/pkg/errors"
)

// RegisterUserInput describes the fields accepted on first registration.
type RegisterUserInput struct {
	Name  string
	Email string
	Photo string
}

// ListUsersOptions controls pagination for user listing.
type ListUsersOptions struct {
	Page     int
	PageSize int
}

// UserService manages marketplace accounts. Role changes go through SetRole
// exclusively; there is no path for a user to escalate their own role.
type UserService struct {
	db *gorm.DB
}

// NewUserService constructs a UserService instance.
func NewUserService(db *gorm.DB) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db}, nil
}

// Register creates an account on first sight of an email. Registering an
// email that already exists is a success and leaves the stored record
// untouched, so clients can repeat the call safely.
func (s *UserService) Register(ctx context.Context, input RegisterUserInput) (*models.User, bool, error) {
	ctx = ensureContext(ctx)

	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, false, apperrors.NewBadRequest("email is required")
	}

	var existing models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		return &existing, false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, apperrors.ErrStorageUnavailable.WithInternal(err)
	}

	user := &models.User{
		Name:  strings.TrimSpace(input.Name),
		Email: email,
		Photo: strings.TrimSpace(input.Photo),
		Role:  models.RoleNone,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		// Lost a race with a concurrent registration of the same email;
		// the account exists, which is all the caller asked for.
		if isUniqueConstraintError(err) {
			if lookupErr := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error; lookupErr == nil {
				return &existing, false, nil
			}
		}
		return nil, false, apperrors.ErrStorageUnavailable.WithInternal(err)
	}

	return user, true, nil
}

// GetByEmail loads an account by its identity key.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperrors.ErrNotFound
	default:
		return nil, apperrors.ErrStorageUnavailable.WithInternal(err)
	}
}

// List returns a page of accounts with the total count.
func (s *UserService) List(ctx context.Context, opts ListUsersOptions) ([]models.User, int64, error) {
	ctx = ensureContext(ctx)

	page := opts.Page
	if page < 1 {
		page = 1
	}
	size := opts.PageSize
	if size < 1 || size > 100 {
		size = 20
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, apperrors.ErrStorageUnavailable.WithInternal(err)
	}

	var users []models.User
	err := s.db.WithContext(ctx).
		Order("created_at ASC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&users).Error
	if err != nil {
		return nil, 0, apperrors.ErrStorageUnavailable.WithInternal(err)
	}

	return users, total, nil
}

// SetRole grants a role to an existing account. Granting a role the user
// already holds is a no-op success. The target must exist: role grants are
// transitions on existing entities, not upserts that materialise partial
// records.
func (s *UserService) SetRole(ctx context.Context, id string, role models.Role) (*models.User, error) {
	ctx = ensureContext(ctx)

	if models.ParseRole(string(role)) != role {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown role %q", role))
	}

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperrors.ErrNotFound
	case err != nil:
		return nil, apperrors.ErrStorageUnavailable.WithInternal(err)
	}

	if user.Role == role {
		return &user, nil
	}

	if err := s.db.WithContext(ctx).Model(&user).Update("role", role).Error; err != nil {
		return nil, apperrors.ErrStorageUnavailable.WithInternal(err)
	}

	user.Role = role
	return &user, nil
}

// Delete removes an account by identifier.
func (s *UserService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return apperrors.ErrStorageUnavailable.WithInternal(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
