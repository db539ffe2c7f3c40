package clinic

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/booking-api/internal/model"
	"github.com/bookhaven/booking-api/internal/repository/memory"
	apperrors "github.com/bookhaven/booking-api/pkg/errors"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(memory.NewClinicRepository(memory.NewStore()))
}

func TestCreateClinicValidatesSlug(t *testing.T) {
	svc := newTestService(t)
	providerID := uuid.New()

	for _, slug := range []string{"Downtown", "down_town", "down town", "-downtown", "downtown-", ""} {
		_, err := svc.CreateClinic(context.Background(), providerID, &model.CreateClinicRequest{
			Name:        "Downtown Clinic",
			BookingSlug: slug,
		})
		require.Error(t, err, "slug %q should be rejected", slug)
		assert.True(t, apperrors.IsValidation(err))
	}

	created, err := svc.CreateClinic(context.Background(), providerID, &model.CreateClinicRequest{
		Name:        "Downtown Clinic",
		BookingSlug: "downtown-clinic-2",
	})
	require.NoError(t, err)
	assert.True(t, created.Active)
}

func TestCreateClinicDuplicateSlug(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateClinic(ctx, uuid.New(), &model.CreateClinicRequest{
		Name:        "First",
		BookingSlug: "shared-slug",
	})
	require.NoError(t, err)

	_, err = svc.CreateClinic(ctx, uuid.New(), &model.CreateClinicRequest{
		Name:        "Second",
		BookingSlug: "shared-slug",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestGetClinicBySlugHidesInactive(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateClinic(ctx, uuid.New(), &model.CreateClinicRequest{
		Name:        "Downtown Clinic",
		BookingSlug: "downtown-clinic",
	})
	require.NoError(t, err)

	found, err := svc.GetClinicBySlug(ctx, "downtown-clinic")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	inactive := false
	_, err = svc.UpdateClinic(ctx, created.ID, &model.UpdateClinicRequest{Active: &inactive})
	require.NoError(t, err)

	_, err = svc.GetClinicBySlug(ctx, "downtown-clinic")
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.HTTPStatus(err))
}

func TestUpdateClinicPreservesSlug(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateClinic(ctx, uuid.New(), &model.CreateClinicRequest{
		Name:        "Downtown Clinic",
		BookingSlug: "downtown-clinic",
	})
	require.NoError(t, err)

	name := "Renamed Clinic"
	granularity := 15
	updated, err := svc.UpdateClinic(ctx, created.ID, &model.UpdateClinicRequest{
		Name:            &name,
		SlotGranularity: &granularity,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Clinic", updated.Name)
	assert.Equal(t, 15, updated.SlotGranularity)
	assert.Equal(t, "downtown-clinic", updated.BookingSlug)

	found, err := svc.GetClinicBySlug(ctx, "downtown-clinic")
	require.NoError(t, err)
	assert.Equal(t, "Renamed Clinic", found.Name)
}

func TestOwnsClinic(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	providerID := uuid.New()

	created, err := svc.CreateClinic(ctx, providerID, &model.CreateClinicRequest{
		Name:        "Downtown Clinic",
		BookingSlug: "downtown-clinic",
	})
	require.NoError(t, err)

	owns, err := svc.OwnsClinic(ctx, providerID, created.ID)
	require.NoError(t, err)
	assert.True(t, owns)

	owns, err = svc.OwnsClinic(ctx, uuid.New(), created.ID)
	require.NoError(t, err)
	assert.False(t, owns)

	owns, err = svc.OwnsClinic(ctx, providerID, uuid.New())
	require.NoError(t, err)
	assert.False(t, owns)
}

func TestServiceCatalog(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	clinic, err := svc.CreateClinic(ctx, uuid.New(), &model.CreateClinicRequest{
		Name:        "Downtown Clinic",
		BookingSlug: "downtown-clinic",
	})
	require.NoError(t, err)

	created, err := svc.CreateService(ctx, clinic.ID, &model.CreateServiceRequest{
		Name:     "Consultation",
		Duration: 30,
		Price:    300,
	})
	require.NoError(t, err)
	assert.Equal(t, "EGP", created.Currency)
	assert.True(t, created.Active)

	inactive := false
	_, err = svc.UpdateService(ctx, created.ID, &model.UpdateServiceRequest{Active: &inactive})
	require.NoError(t, err)

	all, err := svc.ListServices(ctx, clinic.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	active, err := svc.ListActiveServices(ctx, clinic.ID)
	require.NoError(t, err)
	assert.Empty(t, active)
}
