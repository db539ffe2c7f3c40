package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bookhaven/booking-api/internal/model"
	"github.com/bookhaven/booking-api/internal/repository"
)

const ruleColumns = `
	id, clinic_id, day_of_week, start_time, end_time, is_active,
	created_at, updated_at
`

func (r *availabilityRepository) Create(ctx context.Context, rule *model.AvailabilityRule) error {
	query := `
		INSERT INTO availability_rules (
			id, clinic_id, day_of_week, start_time, end_time, is_active,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	rule.ID = uuid.New()
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = rule.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		rule.ID,
		rule.ClinicID,
		rule.DayOfWeek,
		rule.StartTime,
		rule.EndTime,
		rule.Active,
		rule.CreatedAt,
		rule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create availability rule: %w", err)
	}
	return nil
}

func (r *availabilityRepository) Get(ctx context.Context, id uuid.UUID) (*model.AvailabilityRule, error) {
	var rule model.AvailabilityRule
	err := r.db.GetContext(ctx, &rule, `SELECT `+ruleColumns+` FROM availability_rules WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get availability rule: %w", err)
	}
	return &rule, nil
}

func (r *availabilityRepository) Update(ctx context.Context, rule *model.AvailabilityRule) error {
	rule.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, `
		UPDATE availability_rules
		SET day_of_week = $1, start_time = $2, end_time = $3, is_active = $4, updated_at = $5
		WHERE id = $6
	`,
		rule.DayOfWeek,
		rule.StartTime,
		rule.EndTime,
		rule.Active,
		rule.UpdatedAt,
		rule.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update availability rule: %w", err)
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

func (r *availabilityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM availability_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete availability rule: %w", err)
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

func (r *availabilityRepository) ListForClinic(ctx context.Context, clinicID uuid.UUID) ([]*model.AvailabilityRule, error) {
	var rules []*model.AvailabilityRule
	err := r.db.SelectContext(ctx, &rules, `
		SELECT `+ruleColumns+`
		FROM availability_rules
		WHERE clinic_id = $1
		ORDER BY day_of_week ASC, start_time ASC
	`, clinicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list availability rules: %w", err)
	}
	return rules, nil
}

func (r *availabilityRepository) GetActiveRules(ctx context.Context, clinicID uuid.UUID, dayOfWeek int) ([]*model.AvailabilityRule, error) {
	var rules []*model.AvailabilityRule
	err := r.db.SelectContext(ctx, &rules, `
		SELECT `+ruleColumns+`
		FROM availability_rules
		WHERE clinic_id = $1 AND day_of_week = $2 AND is_active = true
		ORDER BY start_time ASC
	`, clinicID, dayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("failed to get active rules: %w", err)
	}
	return rules, nil
}
