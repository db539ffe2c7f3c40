package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/bookhaven/booking-api/internal/model"
	"github.com/bookhaven/booking-api/internal/repository"
)

const (
	statsCacheTTL     = 30 * time.Second
	statsCacheCleanup = 5 * time.Minute
)

// Service computes read-only provider statistics over the booking
// ledger. It has no write side effects and is safe to call
// concurrently and speculatively; results are cached briefly per
// provider.
type Service struct {
	bookings repository.BookingRepository
	clinics  repository.ClinicRepository
	cache    *gocache.Cache

	now func() time.Time
}

func NewService(bookings repository.BookingRepository, clinics repository.ClinicRepository) *Service {
	return &Service{
		bookings: bookings,
		clinics:  clinics,
		cache:    gocache.New(statsCacheTTL, statsCacheCleanup),
		now:      time.Now,
	}
}

func (s *Service) Stats(ctx context.Context, providerID uuid.UUID) (*model.DashboardStats, error) {
	cacheKey := providerID.String()
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.(*model.DashboardStats), nil
	}

	clinics, err := s.clinics.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clinics: %w", err)
	}

	clinicIDs := make([]uuid.UUID, len(clinics))
	priceByService := make(map[uuid.UUID]float64)
	for i, clinic := range clinics {
		clinicIDs[i] = clinic.ID
		services, err := s.clinics.ListServices(ctx, clinic.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list services: %w", err)
		}
		for _, svc := range services {
			priceByService[svc.ID] = svc.Price
		}
	}

	bookings, err := s.bookings.ListForClinics(ctx, clinicIDs, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	stats := s.compute(bookings, priceByService)
	s.cache.Set(cacheKey, stats, gocache.DefaultExpiration)
	return stats, nil
}

func (s *Service) compute(bookings []*model.Booking, priceByService map[uuid.UUID]float64) *model.DashboardStats {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	stats := &model.DashboardStats{
		TotalBookings: len(bookings),
	}

	var completed, noShow int
	for _, b := range bookings {
		price := priceByService[b.ServiceID]

		if b.Status != model.BookingStatusCanceled {
			stats.TotalRevenue += price
		}

		if !b.CreatedAt.Before(monthStart) {
			stats.ThisMonthBookings++
			if b.Status != model.BookingStatusCanceled {
				stats.ThisMonthRevenue += price
			}
		}

		switch b.Status {
		case model.BookingStatusCompleted:
			completed++
		case model.BookingStatusNoShow:
			noShow++
		}

		if b.ScheduledAt.After(now) &&
			(b.Status == model.BookingStatusPending || b.Status == model.BookingStatusConfirmed) {
			stats.UpcomingBookings++
		}
	}

	// max(total, 1) floor: an empty ledger reports 0%, not an error.
	denom := float64(stats.TotalBookings)
	if denom < 1 {
		denom = 1
	}
	stats.CompletionRate = float64(completed) / denom * 100
	stats.NoShowRate = float64(noShow) / denom * 100

	return stats
}
