package model

import (
	"fmt"

	"github.com/google/uuid"
)

// AvailabilityRule is a recurring weekly open-hours definition for a
// clinic. Several rules may exist for the same weekday (split shifts)
// and are allowed to overlap; overlap is resolved when windows are
// computed, not at write time.
type AvailabilityRule struct {
	Base
	ClinicID  uuid.UUID `db:"clinic_id" json:"clinic_id"`
	DayOfWeek int       `db:"day_of_week" json:"day_of_week"` // 0-6, Sunday to Saturday
	StartTime string    `db:"start_time" json:"start_time"`   // HH:MM
	EndTime   string    `db:"end_time" json:"end_time"`       // HH:MM
	Active    bool      `db:"is_active" json:"is_active"`
}

// TimeWindow is a time-of-day interval in minutes since midnight,
// half-open: [Start, End).
type TimeWindow struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (w TimeWindow) String() string {
	return fmt.Sprintf("%s-%s", FormatClock(w.Start), FormatClock(w.End))
}

type CreateAvailabilityRuleRequest struct {
	DayOfWeek *int   `json:"day_of_week" binding:"required,min=0,max=6"`
	StartTime string `json:"start_time" binding:"required,clock"`
	EndTime   string `json:"end_time" binding:"required,clock"`
}

type UpdateAvailabilityRuleRequest struct {
	DayOfWeek *int    `json:"day_of_week" binding:"omitempty,min=0,max=6"`
	StartTime *string `json:"start_time" binding:"omitempty,clock"`
	EndTime   *string `json:"end_time" binding:"omitempty,clock"`
	Active    *bool   `json:"is_active"`
}

// ParseClock parses an HH:MM wall-clock string into minutes since
// midnight.
func ParseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as HH:MM.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
