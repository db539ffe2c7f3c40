package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/bookhaven/booking-api/internal/model"
	"github.com/bookhaven/booking-api/internal/repository"
)

type ClinicRepository struct {
	store *Store
}

func NewClinicRepository(store *Store) *ClinicRepository {
	return &ClinicRepository{store: store}
}

func (r *ClinicRepository) Create(ctx context.Context, clinic *model.Clinic) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.clinics {
		if existing.BookingSlug == clinic.BookingSlug {
			return repository.ErrDuplicateSlug
		}
	}

	clinic.ID = uuid.New()
	clinic.CreatedAt = time.Now()
	clinic.UpdatedAt = clinic.CreatedAt

	cp := *clinic
	r.store.clinics[clinic.ID] = &cp
	return nil
}

func (r *ClinicRepository) Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	clinic, ok := r.store.clinics[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *clinic
	return &cp, nil
}

func (r *ClinicRepository) GetBySlug(ctx context.Context, slug string) (*model.Clinic, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, clinic := range r.store.clinics {
		if clinic.BookingSlug == slug {
			cp := *clinic
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *ClinicRepository) Update(ctx context.Context, clinic *model.Clinic) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.clinics[clinic.ID]
	if !ok {
		return repository.ErrNotFound
	}

	clinic.BookingSlug = existing.BookingSlug // immutable
	clinic.UpdatedAt = time.Now()
	cp := *clinic
	r.store.clinics[clinic.ID] = &cp
	return nil
}

func (r *ClinicRepository) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*model.Clinic, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*model.Clinic
	for _, clinic := range r.store.clinics {
		if clinic.ProviderID == providerID {
			cp := *clinic
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *ClinicRepository) CreateService(ctx context.Context, service *model.Service) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	service.ID = uuid.New()
	service.CreatedAt = time.Now()
	service.UpdatedAt = service.CreatedAt

	cp := *service
	r.store.services[service.ID] = &cp
	return nil
}

func (r *ClinicRepository) GetService(ctx context.Context, serviceID uuid.UUID) (*model.Service, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	service, ok := r.store.services[serviceID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *service
	return &cp, nil
}

func (r *ClinicRepository) UpdateService(ctx context.Context, service *model.Service) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.services[service.ID]; !ok {
		return repository.ErrNotFound
	}
	service.UpdatedAt = time.Now()
	cp := *service
	r.store.services[service.ID] = &cp
	return nil
}

func (r *ClinicRepository) ListServices(ctx context.Context, clinicID uuid.UUID) ([]*model.Service, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*model.Service
	for _, service := range r.store.services {
		if service.ClinicID == clinicID {
			cp := *service
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
