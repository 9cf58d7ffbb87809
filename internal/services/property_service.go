package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/bengalbreeze/backend/internal/models"
	apperrors "github.com/bengalbreeze/backend/pkg/errors"
	"github.com/bengalbreeze/backend/pkg/metrics"
)

// SubmitPropertyInput describes a new listing. The agent identity always
// comes from the verified request context, never from the request body.
type SubmitPropertyInput struct {
	AgentEmail  string
	AgentName   string
	Title       string
	Location    string
	Description string
	PriceMin    int64
	PriceMax    int64
	Images      datatypes.JSON
}

// PropertyService owns every mutation of a listing's verification and
// advertisement state. Handlers never touch those columns directly.
//
// Transitions are idempotent: re-applying one that already holds is a no-op
// success so admins can retry safely. Each write touches a single row; a
// verify-then-advertise sequence is two independent writes and a concurrent
// reject may interleave, which the design accepts because a later read
// always reflects the latest write.
type PropertyService struct {
	db *gorm.DB
}

// NewPropertyService constructs a PropertyService instance.
func NewPropertyService(db *gorm.DB) (*PropertyService, error) {
	if db == nil {
		return nil, errors.New("property service: db is required")
	}
	return &PropertyService{db: db}, nil
}

// Submit creates a listing. Every listing starts out pending and
// unadvertised regardless of what the caller supplied.
func (s *PropertyService) Submit(ctx context.Context, input SubmitPropertyInput) (*models.Property, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(input.AgentEmail) == "" {
		return nil, apperrors.NewBadRequest("agent email is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewBadRequest("title is required")
	}

	property := &models.Property{
		AgentEmail:         strings.TrimSpace(input.AgentEmail),
		AgentName:          strings.TrimSpace(input.AgentName),
		Title:              strings.TrimSpace(input.Title),
		Location:           strings.TrimSpace(input.Location),
		Description:        strings.TrimSpace(input.Description),
		PriceMin:           input.PriceMin,
		PriceMax:           input.PriceMax,
		Images:             input.Images,
		VerificationStatus: models.VerificationPending,
		IsAdvertised:       false,
	}

	if err := s.db.WithContext(ctx).Create(property).Error; err != nil {
		metrics.LifecycleTransitions.WithLabelValues("submit", "error").Inc()
		return nil, apperrors.ErrStorageUnavailable.WithInternal(err)
	}

	metrics.LifecycleTransitions.WithLabelValues("submit", "applied").Inc()
	return property, nil
}

// Verify marks a pending or rejected listing as verified. Verifying an
// already verified listing changes nothing and succeeds.
func (s *PropertyService) Verify(ctx context.Context, id string) (*models.Property, error) {
	return s.transition(ctx, id, "verify", func(p *models.Property) (map[string]any, bool) {
		if p.VerificationStatus == models.VerificationVerified {
			return nil, false
		}
		return map[string]any{"verification_status": models.VerificationVerified}, true
	})
}

// Reject marks a listing as rejected. Rejection also withdraws any running
// advertisement: an advertised listing must stay verified, so the two
// columns flip together in one write.
func (s *PropertyService) Reject(ctx context.Context, id string) (*models.Property, error) {
	return s.transition(ctx, id, "reject", func(p *models.Property) (map[string]any, bool) {
		if p.VerificationStatus == models.VerificationRejected {
			return nil, false
		}
		return map[string]any{
			"verification_status": models.VerificationRejected,
			"is_advertised":       false,
		}, true
	})
}

// Advertise starts advertising a verified listing. Listings that are
// pending or rejected cannot be advertised; that is an invalid transition,
// reported distinctly from authorization failures so the client can tell
// "not right now" from "never".
func (s *PropertyService) Advertise(ctx context.Context, id string) (*models.Property, error) {
	ctx = ensureContext(ctx)

	property, err := s.load(ctx, id, "advertise")
	if err != nil {
		return nil, err
	}

	if property.VerificationStatus != models.VerificationVerified {
		metrics.LifecycleTransitions.WithLabelValues("advertise", "invalid").Inc()
		return nil, apperrors.ErrInvalidTransition
	}

	if property.IsAdvertised {
		metrics.LifecycleTransitions.WithLabelValues("advertise", "noop").Inc()
		return property, nil
	}

	// Conditional write: the status could have been rejected since the read
	// above, and an unverified listing must never end up advertised.
	result := s.db.WithContext(ctx).Model(&models.Property{}).
		Where("id = ? AND verification_status = ?", id, models.VerificationVerified).
		Update("is_advertised", true)
	if result.Error != nil {
		metrics.LifecycleTransitions.WithLabelValues("advertise", "error").Inc()
		return nil, apperrors.ErrStorageUnavailable.WithInternal(result.Error)
	}
	if result.RowsAffected == 0 {
		metrics.LifecycleTransitions.WithLabelValues("advertise", "invalid").Inc()
		return nil, apperrors.ErrInvalidTransition
	}

	property.IsAdvertised = true
	metrics.LifecycleTransitions.WithLabelValues("advertise", "applied").Inc()
	return property, nil
}

// Unadvertise withdraws a listing's advertisement. Valid in any state.
func (s *PropertyService) Unadvertise(ctx context.Context, id string) (*models.Property, error) {
	return s.transition(ctx, id, "unadvertise", func(p *models.Property) (map[string]any, bool) {
		if !p.IsAdvertised {
			return nil, false
		}
		return map[string]any{"is_advertised": false}, true
	})
}

// GetByID loads a single listing.
func (s *PropertyService) GetByID(ctx context.Context, id string) (*models.Property, error) {
	return s.load(ensureContext(ctx), id, "")
}

// ListByAgent returns every listing owned by the given agent email.
func (s *PropertyService) ListByAgent(ctx context.Context, agentEmail string) ([]models.Property, error) {
	ctx = ensureContext(ctx)

	var properties []models.Property
	err := s.db.WithContext(ctx).
		Where("agent_email = ?", agentEmail).
		Order("created_at DESC").
		Find(&properties).Error
	if err != nil {
		return nil, apperrors.ErrStorageUnavailable.WithInternal(err)
	}
	return properties, nil
}

// ListVerified returns listings visible to buyers.
func (s *PropertyService) ListVerified(ctx context.Context) ([]models.Property, error) {
	return s.list(ensureContext(ctx), "verification_status = ?", models.VerificationVerified)
}

// ListAdvertised returns the listings currently promoted on the landing page.
func (s *PropertyService) ListAdvertised(ctx context.Context) ([]models.Property, error) {
	return s.list(ensureContext(ctx), "is_advertised = ?", true)
}

func (s *PropertyService) list(ctx context.Context, query string, args ...any) ([]models.Property, error) {
	var properties []models.Property
	err := s.db.WithContext(ctx).Where(query, args...).Order("created_at DESC").Find(&properties).Error
	if err != nil {
		return nil, apperrors.ErrStorageUnavailable.WithInternal(err)
	}
	return properties, nil
}

func (s *PropertyService) load(ctx context.Context, id, operation string) (*models.Property, error) {
	var property models.Property
	err := s.db.WithContext(ctx).First(&property, "id = ?", id).Error
	switch {
	case err == nil:
		return &property, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if operation != "" {
			metrics.LifecycleTransitions.WithLabelValues(operation, "not_found").Inc()
		}
		return nil, apperrors.ErrNotFound
	default:
		if operation != "" {
			metrics.LifecycleTransitions.WithLabelValues(operation, "error").Inc()
		}
		return nil, apperrors.ErrStorageUnavailable.WithInternal(err)
	}
}

// transition applies a state change computed from the current row. The
// compute callback returns the column updates and whether anything changes;
// a no-change transition succeeds without touching the store.
func (s *PropertyService) transition(ctx context.Context, id, operation string, compute func(*models.Property) (map[string]any, bool)) (*models.Property, error) {
	ctx = ensureContext(ctx)

	property, err := s.load(ctx, id, operation)
	if err != nil {
		return nil, err
	}

	updates, changed := compute(property)
	if !changed {
		metrics.LifecycleTransitions.WithLabelValues(operation, "noop").Inc()
		return property, nil
	}

	if err := s.db.WithContext(ctx).Model(property).Updates(updates).Error; err != nil {
		metrics.LifecycleTransitions.WithLabelValues(operation, "error").Inc()
		return nil, apperrors.ErrStorageUnavailable.WithInternal(err)
	}

	metrics.LifecycleTransitions.WithLabelValues(operation, "applied").Inc()
	return property, nil
}
