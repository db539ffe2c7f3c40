package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/bookhaven/booking-api/internal/model"
	"github.com/bookhaven/booking-api/internal/repository"
)

type AvailabilityRepository struct {
	store *Store
}

func NewAvailabilityRepository(store *Store) *AvailabilityRepository {
	return &AvailabilityRepository{store: store}
}

func (r *AvailabilityRepository) Create(ctx context.Context, rule *model.AvailabilityRule) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rule.ID = uuid.New()
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = rule.CreatedAt

	cp := *rule
	r.store.rules[rule.ID] = &cp
	return nil
}

func (r *AvailabilityRepository) Get(ctx context.Context, id uuid.UUID) (*model.AvailabilityRule, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rule, ok := r.store.rules[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *rule
	return &cp, nil
}

func (r *AvailabilityRepository) Update(ctx context.Context, rule *model.AvailabilityRule) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.rules[rule.ID]; !ok {
		return repository.ErrNotFound
	}
	rule.UpdatedAt = time.Now()
	cp := *rule
	r.store.rules[rule.ID] = &cp
	return nil
}

func (r *AvailabilityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.rules[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.store.rules, id)
	return nil
}

func (r *AvailabilityRepository) ListForClinic(ctx context.Context, clinicID uuid.UUID) ([]*model.AvailabilityRule, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*model.AvailabilityRule
	for _, rule := range r.store.rules {
		if rule.ClinicID == clinicID {
			cp := *rule
			out = append(out, &cp)
		}
	}
	sortRules(out)
	return out, nil
}

func (r *AvailabilityRepository) GetActiveRules(ctx context.Context, clinicID uuid.UUID, dayOfWeek int) ([]*model.AvailabilityRule, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*model.AvailabilityRule
	for _, rule := range r.store.rules {
		if rule.ClinicID == clinicID && rule.DayOfWeek == dayOfWeek && rule.Active {
			cp := *rule
			out = append(out, &cp)
		}
	}
	sortRules(out)
	return out, nil
}

func sortRules(rules []*model.AvailabilityRule) {
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].DayOfWeek != rules[j].DayOfWeek {
			return rules[i].DayOfWeek < rules[j].DayOfWeek
		}
		return rules[i].StartTime < rules[j].StartTime
	})
}
