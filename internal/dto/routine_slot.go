package dto

// ── routine slot module DTOs ──

// CreateRoutineSlotRequest schedules a routine instance.
type CreateRoutineSlotRequest struct {
	FacilityID *string  `json:"facility_id" binding:"omitempty,uuid"`
	Title      string   `json:"title"       binding:"required,min=2,max=200"`
	StartsAt   FlexTime `json:"starts_at"   binding:"required"`
	EndsAt     FlexTime `json:"ends_at"     binding:"required"`
}

// UpdateRoutineSlotRequest updates slot fields.
type UpdateRoutineSlotRequest struct {
	Title    *string   `json:"title"     binding:"omitempty,min=2,max=200"`
	StartsAt *FlexTime `json:"starts_at"`
	EndsAt   *FlexTime `json:"ends_at"`
}

// RoutineSlotListRequest filters slots by window and assignment state.
type RoutineSlotListRequest struct {
	From       string `form:"from"       binding:"required"` // "YYYY-MM-DD"
	To         string `form:"to"         binding:"required"` // "YYYY-MM-DD"
	Unassigned bool   `form:"unassigned"`
}

// RoutineSlotResponse is a slot's public shape.
type RoutineSlotResponse struct {
	ID         string     `json:"id"`
	StableID   string     `json:"stable_id"`
	FacilityID *string    `json:"facility_id,omitempty"`
	Title      string     `json:"title"`
	StartsAt   string     `json:"starts_at"`
	EndsAt     string     `json:"ends_at"`
	AssigneeID *string    `json:"assignee_id,omitempty"`
	Assignee   *UserBrief `json:"assignee,omitempty"`
}

// UserBrief embeds in slot responses.
type UserBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
