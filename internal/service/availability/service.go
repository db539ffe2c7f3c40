package availability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/bookhaven/booking-api/internal/model"
	"github.com/bookhaven/booking-api/internal/repository"
	apperrors "github.com/bookhaven/booking-api/pkg/errors"
)

type Service struct {
	repo    repository.AvailabilityRepository
	clinics repository.ClinicRepository
}

func NewService(repo repository.AvailabilityRepository, clinics repository.ClinicRepository) *Service {
	return &Service{
		repo:    repo,
		clinics: clinics,
	}
}

// EffectiveWindows returns the merged open-hours windows for a clinic
// on the given date, ordered by start. Overlapping and adjacent rules
// are folded into single windows. An empty result means the clinic is
// closed that day; it is not an error.
func (s *Service) EffectiveWindows(ctx context.Context, clinicID uuid.UUID, date time.Time) ([]model.TimeWindow, error) {
	rules, err := s.repo.GetActiveRules(ctx, clinicID, int(date.Weekday()))
	if err != nil {
		return nil, fmt.Errorf("failed to get active rules: %w", err)
	}
	if len(rules) == 0 {
		return nil, nil
	}

	windows := make([]model.TimeWindow, 0, len(rules))
	for _, rule := range rules {
		start, err := model.ParseClock(rule.StartTime)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rule.ID, err)
		}
		end, err := model.ParseClock(rule.EndTime)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rule.ID, err)
		}
		if end <= start {
			continue
		}
		windows = append(windows, model.TimeWindow{Start: start, End: end})
	}

	return mergeWindows(windows), nil
}

// mergeWindows folds sorted overlapping or adjacent windows into one.
func mergeWindows(windows []model.TimeWindow) []model.TimeWindow {
	if len(windows) == 0 {
		return nil
	}

	sort.Slice(windows, func(i, j int) bool { return windows[i].Start < windows[j].Start })

	merged := windows[:1]
	for _, w := range windows[1:] {
		last := &merged[len(merged)-1]
		if w.Start <= last.End {
			if w.End > last.End {
				last.End = w.End
			}
			continue
		}
		merged = append(merged, w)
	}
	return merged
}

func (s *Service) CreateRule(ctx context.Context, clinicID uuid.UUID, req *model.CreateAvailabilityRuleRequest) (*model.AvailabilityRule, error) {
	if _, err := s.clinics.Get(ctx, clinicID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("clinic", err)
		}
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}

	if err := validateClockRange(req.StartTime, req.EndTime); err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}

	rule := &model.AvailabilityRule{
		ClinicID:  clinicID,
		DayOfWeek: *req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Active:    true,
	}
	if err := s.repo.Create(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to create availability rule: %w", err)
	}
	return rule, nil
}

func (s *Service) GetRule(ctx context.Context, id uuid.UUID) (*model.AvailabilityRule, error) {
	rule, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("availability rule", err)
		}
		return nil, fmt.Errorf("failed to get availability rule: %w", err)
	}
	return rule, nil
}

func (s *Service) UpdateRule(ctx context.Context, id uuid.UUID, req *model.UpdateAvailabilityRuleRequest) (*model.AvailabilityRule, error) {
	rule, err := s.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DayOfWeek != nil {
		rule.DayOfWeek = *req.DayOfWeek
	}
	if req.StartTime != nil {
		rule.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		rule.EndTime = *req.EndTime
	}
	if req.Active != nil {
		rule.Active = *req.Active
	}

	if err := validateClockRange(rule.StartTime, rule.EndTime); err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}

	if err := s.repo.Update(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to update availability rule: %w", err)
	}
	return rule, nil
}

func (s *Service) DeleteRule(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("availability rule", err)
		}
		return fmt.Errorf("failed to delete availability rule: %w", err)
	}
	return nil
}

func (s *Service) ListRules(ctx context.Context, clinicID uuid.UUID) ([]*model.AvailabilityRule, error) {
	rules, err := s.repo.ListForClinic(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list availability rules: %w", err)
	}
	return rules, nil
}

func validateClockRange(startStr, endStr string) error {
	start, err := model.ParseClock(startStr)
	if err != nil {
		return err
	}
	end, err := model.ParseClock(endStr)
	if err != nil {
		return err
	}
	if end <= start {
		return fmt.Errorf("end time %s must be after start time %s", endStr, startStr)
	}
	return nil
}
