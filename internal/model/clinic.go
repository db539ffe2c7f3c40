package model

import (
	"github.com/google/uuid"
)

// DefaultSlotGranularity is the slot step used when a clinic has not
// configured one, in minutes. It determines how dense the offered
// start times are.
const DefaultSlotGranularity = 30

type Clinic struct {
	Base
	ProviderID      uuid.UUID `db:"provider_id" json:"provider_id"`
	Name            string    `db:"name" json:"name"`
	Description     string    `db:"description" json:"description,omitempty"`
	Address         string    `db:"address" json:"address,omitempty"`
	Phone           string    `db:"phone" json:"phone,omitempty"`
	Email           string    `db:"email" json:"email,omitempty"`
	Active          bool      `db:"is_active" json:"is_active"`
	BookingSlug     string    `db:"booking_slug" json:"booking_slug"`
	SlotGranularity int       `db:"slot_granularity" json:"slot_granularity"`
}

// Granularity returns the clinic's slot step in minutes, falling back
// to the platform default when unset.
func (c *Clinic) Granularity() int {
	if c.SlotGranularity > 0 {
		return c.SlotGranularity
	}
	return DefaultSlotGranularity
}

type CreateClinicRequest struct {
	Name            string `json:"name" binding:"required,max=100"`
	Description     string `json:"description" binding:"max=1000"`
	Address         string `json:"address" binding:"max=255"`
	Phone           string `json:"phone" binding:"omitempty,e164"`
	Email           string `json:"email" binding:"omitempty,email"`
	BookingSlug     string `json:"booking_slug" binding:"required,max=100"`
	SlotGranularity int    `json:"slot_granularity" binding:"omitempty,min=5,max=240"`
}

// UpdateClinicRequest deliberately has no slug field: the booking slug
// is immutable once published.
type UpdateClinicRequest struct {
	Name            *string `json:"name" binding:"omitempty,max=100"`
	Description     *string `json:"description" binding:"omitempty,max=1000"`
	Address         *string `json:"address" binding:"omitempty,max=255"`
	Phone           *string `json:"phone" binding:"omitempty,e164"`
	Email           *string `json:"email" binding:"omitempty,email"`
	Active          *bool   `json:"is_active"`
	SlotGranularity *int    `json:"slot_granularity" binding:"omitempty,min=5,max=240"`
}
