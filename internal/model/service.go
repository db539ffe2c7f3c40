package model

import (
	"time"

	"github.com/google/uuid"
)

type Service struct {
	Base
	ClinicID    uuid.UUID `db:"clinic_id" json:"clinic_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	Duration    int       `db:"duration" json:"duration"` // in minutes
	Price       float64   `db:"price" json:"price"`
	Currency    string    `db:"currency" json:"currency"`
	Active      bool      `db:"is_active" json:"is_active"`
}

// DurationD returns the service duration as a time.Duration.
func (s *Service) DurationD() time.Duration {
	return time.Duration(s.Duration) * time.Minute
}

type CreateServiceRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Description string  `json:"description" binding:"max=1000"`
	Duration    int     `json:"duration" binding:"required,gt=0,max=480"`
	Price       float64 `json:"price" binding:"gte=0"`
	Currency    string  `json:"currency" binding:"omitempty,len=3"`
}

type UpdateServiceRequest struct {
	Name        *string  `json:"name" binding:"omitempty,max=100"`
	Description *string  `json:"description" binding:"omitempty,max=1000"`
	Duration    *int     `json:"duration" binding:"omitempty,gt=0,max=480"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	Currency    *string  `json:"currency" binding:"omitempty,len=3"`
	Active      *bool    `json:"is_active"`
}
