package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/bookhaven/booking-api/internal/model"
	"github.com/bookhaven/booking-api/internal/repository"
)

const clinicColumns = `
	id, provider_id, name, description, address, phone, email,
	is_active, booking_slug, slot_granularity, created_at, updated_at
`

func (r *clinicRepository) Create(ctx context.Context, clinic *model.Clinic) error {
	query := `
		INSERT INTO clinics (
			id, provider_id, name, description, address, phone, email,
			is_active, booking_slug, slot_granularity, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	clinic.ID = uuid.New()
	clinic.CreatedAt = time.Now()
	clinic.UpdatedAt = clinic.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		clinic.ID,
		clinic.ProviderID,
		clinic.Name,
		clinic.Description,
		clinic.Address,
		clinic.Phone,
		clinic.Email,
		clinic.Active,
		clinic.BookingSlug,
		clinic.SlotGranularity,
		clinic.CreatedAt,
		clinic.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return repository.ErrDuplicateSlug
		}
		return fmt.Errorf("failed to create clinic: %w", err)
	}
	return nil
}

func (r *clinicRepository) Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	var clinic model.Clinic
	err := r.db.GetContext(ctx, &clinic, `SELECT `+clinicColumns+` FROM clinics WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}
	return &clinic, nil
}

func (r *clinicRepository) GetBySlug(ctx context.Context, slug string) (*model.Clinic, error) {
	var clinic model.Clinic
	err := r.db.GetContext(ctx, &clinic, `SELECT `+clinicColumns+` FROM clinics WHERE booking_slug = $1`, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get clinic by slug: %w", err)
	}
	return &clinic, nil
}

// Update never touches booking_slug: the slug is immutable once
// published.
func (r *clinicRepository) Update(ctx context.Context, clinic *model.Clinic) error {
	clinic.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, `
		UPDATE clinics
		SET name = $1, description = $2, address = $3, phone = $4, email = $5,
		    is_active = $6, slot_granularity = $7, updated_at = $8
		WHERE id = $9
	`,
		clinic.Name,
		clinic.Description,
		clinic.Address,
		clinic.Phone,
		clinic.Email,
		clinic.Active,
		clinic.SlotGranularity,
		clinic.UpdatedAt,
		clinic.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update clinic: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *clinicRepository) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*model.Clinic, error) {
	var clinics []*model.Clinic
	err := r.db.SelectContext(ctx, &clinics, `
		SELECT `+clinicColumns+`
		FROM clinics
		WHERE provider_id = $1
		ORDER BY created_at ASC
	`, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clinics: %w", err)
	}
	return clinics, nil
}

const serviceColumns = `
	id, clinic_id, name, description, duration, price, currency,
	is_active, created_at, updated_at
`

func (r *clinicRepository) CreateService(ctx context.Context, service *model.Service) error {
	query := `
		INSERT INTO services (
			id, clinic_id, name, description, duration, price, currency,
			is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	service.ID = uuid.New()
	service.CreatedAt = time.Now()
	service.UpdatedAt = service.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		service.ID,
		service.ClinicID,
		service.Name,
		service.Description,
		service.Duration,
		service.Price,
		service.Currency,
		service.Active,
		service.CreatedAt,
		service.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	return nil
}

func (r *clinicRepository) GetService(ctx context.Context, serviceID uuid.UUID) (*model.Service, error) {
	var service model.Service
	err := r.db.GetContext(ctx, &service, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, serviceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return &service, nil
}

func (r *clinicRepository) UpdateService(ctx context.Context, service *model.Service) error {
	service.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, `
		UPDATE services
		SET name = $1, description = $2, duration = $3, price = $4,
		    currency = $5, is_active = $6, updated_at = $7
		WHERE id = $8
	`,
		service.Name,
		service.Description,
		service.Duration,
		service.Price,
		service.Currency,
		service.Active,
		service.UpdatedAt,
		service.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *clinicRepository) ListServices(ctx context.Context, clinicID uuid.UUID) ([]*model.Service, error) {
	var services []*model.Service
	err := r.db.SelectContext(ctx, &services, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE clinic_id = $1
		ORDER BY created_at ASC
	`, clinicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}
