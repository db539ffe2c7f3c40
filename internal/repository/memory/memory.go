// Package memory provides map-backed repository implementations. They
// honor the same contracts as the postgres package, including the
// per-service atomicity of CreateIfNoOverlap, and back the service
// tests.
package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/bookhaven/booking-api/internal/model"
)

// Store is an explicitly constructed, explicitly owned in-memory data
// store. It is handed to each repository rather than living as package
// state, so its lifecycle is tied to whoever created it.
type Store struct {
	mu            sync.RWMutex
	users         map[uuid.UUID]*model.User
	clinics       map[uuid.UUID]*model.Clinic
	services      map[uuid.UUID]*model.Service
	rules         map[uuid.UUID]*model.AvailabilityRule
	bookings      map[uuid.UUID]*model.Booking
	notifications map[uuid.UUID]*model.Notification

	// serviceLocks serializes check-then-insert per service.
	serviceLocks sync.Map // uuid.UUID -> *sync.Mutex
}

func NewStore() *Store {
	return &Store{
		users:         make(map[uuid.UUID]*model.User),
		clinics:       make(map[uuid.UUID]*model.Clinic),
		services:      make(map[uuid.UUID]*model.Service),
		rules:         make(map[uuid.UUID]*model.AvailabilityRule),
		bookings:      make(map[uuid.UUID]*model.Booking),
		notifications: make(map[uuid.UUID]*model.Notification),
	}
}

func (s *Store) serviceLock(serviceID uuid.UUID) *sync.Mutex {
	v, _ := s.serviceLocks.LoadOrStore(serviceID, &sync.Mutex{})
	return v.(*sync.Mutex)
}
