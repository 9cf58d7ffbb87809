package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	testutil "github.com/bengalbreeze/backend/internal/database/testutil"
	"github.com/bengalbreeze/backend/internal/models"
	apperrors "github.com/bengalbreeze/backend/pkg/errors"
)

func newPropertyService(t *testing.T) (*PropertyService, *gorm.DB) {
	t.Helper()
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewPropertyService(db)
	require.NoError(t, err)
	return svc, db
}

func submitListing(t *testing.T, svc *PropertyService) *models.Property {
	t.Helper()
	property, err := svc.Submit(context.Background(), SubmitPropertyInput{
		AgentEmail: "agent@x.com",
		Title:      "Lakeside flat",
		Location:   "Dhaka",
		PriceMin:   100_000,
		PriceMax:   120_000,
	})
	require.NoError(t, err)
	return property
}

func TestSubmitStartsPendingAndUnadvertised(t *testing.T) {
	svc, _ := newPropertyService(t)

	property := submitListing(t, svc)
	require.Equal(t, models.VerificationPending, property.VerificationStatus)
	require.False(t, property.IsAdvertised)
	require.NotEmpty(t, property.ID)
}

func TestVerifyIsIdempotent(t *testing.T) {
	svc, _ := newPropertyService(t)
	ctx := context.Background()

	property := submitListing(t, svc)

	first, err := svc.Verify(ctx, property.ID)
	require.NoError(t, err)
	require.Equal(t, models.VerificationVerified, first.VerificationStatus)

	// Second verify is a no-op success with the same terminal state.
	second, err := svc.Verify(ctx, property.ID)
	require.NoError(t, err)
	require.Equal(t, models.VerificationVerified, second.VerificationStatus)
}

func TestVerifyRecoversRejectedListing(t *testing.T) {
	svc, _ := newPropertyService(t)
	ctx := context.Background()

	property := submitListing(t, svc)

	_, err := svc.Reject(ctx, property.ID)
	require.NoError(t, err)

	recovered, err := svc.Verify(ctx, property.ID)
	require.NoError(t, err)
	require.Equal(t, models.VerificationVerified, recovered.VerificationStatus)
}

func TestAdvertiseRequiresVerification(t *testing.T) {
	svc, _ := newPropertyService(t)
	ctx := context.Background()

	property := submitListing(t, svc)

	// Pending listing: allowed caller, wrong state.
	_, err := svc.Advertise(ctx, property.ID)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperrors.ErrInvalidTransition.Code, appErr.Code)

	_, err = svc.Verify(ctx, property.ID)
	require.NoError(t, err)

	advertised, err := svc.Advertise(ctx, property.ID)
	require.NoError(t, err)
	require.True(t, advertised.IsAdvertised)
}

func TestAdvertiseRejectedListingFails(t *testing.T) {
	svc, _ := newPropertyService(t)
	ctx := context.Background()

	property := submitListing(t, svc)
	_, err := svc.Reject(ctx, property.ID)
	require.NoError(t, err)

	_, err = svc.Advertise(ctx, property.ID)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperrors.ErrInvalidTransition.Code, appErr.Code)
}

func TestRejectWithdrawsAdvertisement(t *testing.T) {
	svc, db := newPropertyService(t)
	ctx := context.Background()

	property := submitListing(t, svc)
	_, err := svc.Verify(ctx, property.ID)
	require.NoError(t, err)
	_, err = svc.Advertise(ctx, property.ID)
	require.NoError(t, err)

	_, err = svc.Reject(ctx, property.ID)
	require.NoError(t, err)

	var current models.Property
	require.NoError(t, db.First(&current, "id = ?", property.ID).Error)
	require.Equal(t, models.VerificationRejected, current.VerificationStatus)
	require.False(t, current.IsAdvertised)
}

func TestAdvertisedImpliesVerifiedUnderAllSequences(t *testing.T) {
	svc, db := newPropertyService(t)
	ctx := context.Background()

	property := submitListing(t, svc)

	// Walk the machine through every operation in several orders; after each
	// step the invariant must hold.
	steps := []func(string) (*models.Property, error){
		func(id string) (*models.Property, error) { return svc.Advertise(ctx, id) },
		func(id string) (*models.Property, error) { return svc.Verify(ctx, id) },
		func(id string) (*models.Property, error) { return svc.Advertise(ctx, id) },
		func(id string) (*models.Property, error) { return svc.Reject(ctx, id) },
		func(id string) (*models.Property, error) { return svc.Advertise(ctx, id) },
		func(id string) (*models.Property, error) { return svc.Verify(ctx, id) },
		func(id string) (*models.Property, error) { return svc.Unadvertise(ctx, id) },
		func(id string) (*models.Property, error) { return svc.Advertise(ctx, id) },
	}

	for i, step := range steps {
		_, _ = step(property.ID) // some steps legitimately fail

		var current models.Property
		require.NoError(t, db.First(&current, "id = ?", property.ID).Error)
		if current.IsAdvertised {
			require.Equalf(t, models.VerificationVerified, current.VerificationStatus,
				"step %d: advertised listing must be verified", i)
		}
	}
}

func TestUnadvertiseIsAlwaysValid(t *testing.T) {
	svc, _ := newPropertyService(t)
	ctx := context.Background()

	property := submitListing(t, svc)

	// Pending, never advertised: still a success.
	current, err := svc.Unadvertise(ctx, property.ID)
	require.NoError(t, err)
	require.False(t, current.IsAdvertised)

	_, err = svc.Verify(ctx, property.ID)
	require.NoError(t, err)
	_, err = svc.Advertise(ctx, property.ID)
	require.NoError(t, err)

	current, err = svc.Unadvertise(ctx, property.ID)
	require.NoError(t, err)
	require.False(t, current.IsAdvertised)
	require.Equal(t, models.VerificationVerified, current.VerificationStatus)
}

func TestLifecycleUnknownIDIsNotFound(t *testing.T) {
	svc, _ := newPropertyService(t)
	ctx := context.Background()

	for name, op := range map[string]func(context.Context, string) (*models.Property, error){
		"verify":      svc.Verify,
		"reject":      svc.Reject,
		"advertise":   svc.Advertise,
		"unadvertise": svc.Unadvertise,
	} {
		_, err := op(ctx, "missing-id")
		var appErr *apperrors.AppError
		require.ErrorAsf(t, err, &appErr, "operation %s", name)
		require.Equalf(t, apperrors.ErrNotFound.Code, appErr.Code, "operation %s", name)
	}
}

func TestListByAgentFiltersOwner(t *testing.T) {
	svc, _ := newPropertyService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, SubmitPropertyInput{AgentEmail: "a@x.com", Title: "One"})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, SubmitPropertyInput{AgentEmail: "a@x.com", Title: "Two"})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, SubmitPropertyInput{AgentEmail: "b@x.com", Title: "Other"})
	require.NoError(t, err)

	mine, err := svc.ListByAgent(ctx, "a@x.com")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, p := range mine {
		require.Equal(t, "a@x.com", p.AgentEmail)
	}
}

func TestPublicListings(t *testing.T) {
	svc, _ := newPropertyService(t)
	ctx := context.Background()

	pending := submitListing(t, svc)
	verified := submitListing(t, svc)
	promoted := submitListing(t, svc)

	_, err := svc.Verify(ctx, verified.ID)
	require.NoError(t, err)
	_, err = svc.Verify(ctx, promoted.ID)
	require.NoError(t, err)
	_, err = svc.Advertise(ctx, promoted.ID)
	require.NoError(t, err)

	verifiedList, err := svc.ListVerified(ctx)
	require.NoError(t, err)
	require.Len(t, verifiedList, 2)

	advertisedList, err := svc.ListAdvertised(ctx)
	require.NoError(t, err)
	require.Len(t, advertisedList, 1)
	require.Equal(t, promoted.ID, advertisedList[0].ID)

	for _, p := range verifiedList {
		require.NotEqual(t, pending.ID, p.ID)
	}
}
