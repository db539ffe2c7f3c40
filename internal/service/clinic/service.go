package clinic

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/bookhaven/booking-api/internal/model"
	"github.com/bookhaven/booking-api/internal/repository"
	apperrors "github.com/bookhaven/booking-api/pkg/errors"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type Service struct {
	repo repository.ClinicRepository
}

func NewService(repo repository.ClinicRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateClinic(ctx context.Context, providerID uuid.UUID, req *model.CreateClinicRequest) (*model.Clinic, error) {
	if !slugPattern.MatchString(req.BookingSlug) {
		return nil, apperrors.Validation("booking slug must be lowercase letters, digits and hyphens", nil)
	}

	clinic := &model.Clinic{
		ProviderID:      providerID,
		Name:            req.Name,
		Description:     req.Description,
		Address:         req.Address,
		Phone:           req.Phone,
		Email:           req.Email,
		Active:          true,
		BookingSlug:     req.BookingSlug,
		SlotGranularity: req.SlotGranularity,
	}

	if err := s.repo.Create(ctx, clinic); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlug) {
			return nil, apperrors.Conflict("booking slug already in use", err)
		}
		return nil, fmt.Errorf("failed to create clinic: %w", err)
	}
	return clinic, nil
}

func (s *Service) GetClinic(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	clinic, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("clinic", err)
		}
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}
	return clinic, nil
}

// GetClinicBySlug resolves a public booking page. Inactive clinics are
// hidden from the public surface.
func (s *Service) GetClinicBySlug(ctx context.Context, slug string) (*model.Clinic, error) {
	clinic, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("clinic", err)
		}
		return nil, fmt.Errorf("failed to get clinic by slug: %w", err)
	}
	if !clinic.Active {
		return nil, apperrors.NotFound("clinic", nil)
	}
	return clinic, nil
}

func (s *Service) UpdateClinic(ctx context.Context, id uuid.UUID, req *model.UpdateClinicRequest) (*model.Clinic, error) {
	clinic, err := s.GetClinic(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		clinic.Name = *req.Name
	}
	if req.Description != nil {
		clinic.Description = *req.Description
	}
	if req.Address != nil {
		clinic.Address = *req.Address
	}
	if req.Phone != nil {
		clinic.Phone = *req.Phone
	}
	if req.Email != nil {
		clinic.Email = *req.Email
	}
	if req.Active != nil {
		clinic.Active = *req.Active
	}
	if req.SlotGranularity != nil {
		clinic.SlotGranularity = *req.SlotGranularity
	}

	if err := s.repo.Update(ctx, clinic); err != nil {
		return nil, fmt.Errorf("failed to update clinic: %w", err)
	}
	return clinic, nil
}

func (s *Service) ListClinics(ctx context.Context, providerID uuid.UUID) ([]*model.Clinic, error) {
	clinics, err := s.repo.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clinics: %w", err)
	}
	return clinics, nil
}

// OwnsClinic reports whether the provider owns the clinic; used by
// handlers to scope provider operations.
func (s *Service) OwnsClinic(ctx context.Context, providerID, clinicID uuid.UUID) (bool, error) {
	clinic, err := s.repo.Get(ctx, clinicID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get clinic: %w", err)
	}
	return clinic.ProviderID == providerID, nil
}

func (s *Service) CreateService(ctx context.Context, clinicID uuid.UUID, req *model.CreateServiceRequest) (*model.Service, error) {
	if _, err := s.GetClinic(ctx, clinicID); err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = "EGP"
	}

	service := &model.Service{
		ClinicID:    clinicID,
		Name:        req.Name,
		Description: req.Description,
		Duration:    req.Duration,
		Price:       req.Price,
		Currency:    currency,
		Active:      true,
	}

	if err := s.repo.CreateService(ctx, service); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return service, nil
}

func (s *Service) GetService(ctx context.Context, serviceID uuid.UUID) (*model.Service, error) {
	service, err := s.repo.GetService(ctx, serviceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("service", err)
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return service, nil
}

func (s *Service) UpdateService(ctx context.Context, serviceID uuid.UUID, req *model.UpdateServiceRequest) (*model.Service, error) {
	service, err := s.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		service.Name = *req.Name
	}
	if req.Description != nil {
		service.Description = *req.Description
	}
	if req.Duration != nil {
		service.Duration = *req.Duration
	}
	if req.Price != nil {
		service.Price = *req.Price
	}
	if req.Currency != nil {
		service.Currency = *req.Currency
	}
	if req.Active != nil {
		service.Active = *req.Active
	}

	if err := s.repo.UpdateService(ctx, service); err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}
	return service, nil
}

func (s *Service) ListServices(ctx context.Context, clinicID uuid.UUID) ([]*model.Service, error) {
	services, err := s.repo.ListServices(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

// ListActiveServices backs the public booking page: only active
// services are offered.
func (s *Service) ListActiveServices(ctx context.Context, clinicID uuid.UUID) ([]*model.Service, error) {
	services, err := s.ListServices(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	active := services[:0]
	for _, svc := range services {
		if svc.Active {
			active = append(active, svc)
		}
	}
	return active, nil
}
