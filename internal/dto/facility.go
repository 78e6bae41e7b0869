package dto

import "github.com/maxton76/stall-bokning-sub008/internal/availability"

// ── facility module DTOs ──

// CreateFacilityRequest creates a facility within the caller's stable.
type CreateFacilityRequest struct {
	Name     string `json:"name"     binding:"required,min=2,max=100"`
	Kind     string `json:"kind"     binding:"omitempty,oneof=arena paddock track"`
	Capacity int    `json:"capacity" binding:"omitempty,min=1,max=100"`
}

// UpdateFacilityRequest updates facility fields.
type UpdateFacilityRequest struct {
	Name     *string `json:"name"     binding:"omitempty,min=2,max=100"`
	Kind     *string `json:"kind"     binding:"omitempty,oneof=arena paddock track"`
	Capacity *int    `json:"capacity" binding:"omitempty,min=1,max=100"`
}

// UpdateAvailabilityRequest replaces the layered schedule. The shape
// round-trips verbatim with the persisted JSONB form.
type UpdateAvailabilityRequest struct {
	WeeklySchedule availability.WeeklySchedule      `json:"weeklySchedule" binding:"required"`
	Exceptions     []availability.ScheduleException `json:"exceptions"`
}

// MigrateAvailabilityRequest upgrades a legacy flat availability.
type MigrateAvailabilityRequest struct {
	AvailableFrom string          `json:"availableFrom" binding:"required"`
	AvailableTo   string          `json:"availableTo"   binding:"required"`
	DaysAvailable map[string]bool `json:"daysAvailable" binding:"required"`
}

// EffectiveBlocksQuery selects the resolution date.
type EffectiveBlocksQuery struct {
	Date string `form:"date" binding:"required"` // "YYYY-MM-DD"
}

// RangeCheckQuery asks whether a range fits the resolved blocks.
type RangeCheckQuery struct {
	Date string `form:"date" binding:"required"`
	From string `form:"from" binding:"required"` // "HH:mm"
	To   string `form:"to"   binding:"required"` // "HH:mm"
}

// FacilityResponse is a facility's public shape.
type FacilityResponse struct {
	ID           string                 `json:"id"`
	StableID     string                 `json:"stable_id"`
	Name         string                 `json:"name"`
	Kind         string                 `json:"kind"`
	Capacity     int                    `json:"capacity"`
	Availability *availability.Schedule `json:"availability,omitempty"`
	CreatedAt    string                 `json:"created_at"`
	UpdatedAt    string                 `json:"updated_at"`
}

// EffectiveBlocksResponse is the resolved open windows for one date.
type EffectiveBlocksResponse struct {
	Date       string                   `json:"date"`
	TimeBlocks []availability.TimeBlock `json:"timeBlocks"`
}

// RangeCheckResponse reports a containment check.
type RangeCheckResponse struct {
	Available bool `json:"available"`
}
