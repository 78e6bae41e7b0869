package dto

// ── selection process module DTOs ──

// CreateSelectionProcessRequest creates a draft process. Participants are
// listed in turn order; orders are assigned 1..n from this list.
type CreateSelectionProcessRequest struct {
	Name               string   `json:"name"                 binding:"required,min=2,max=100"`
	Algorithm          string   `json:"algorithm"            binding:"omitempty,oneof=round_robin"`
	SelectionStartDate FlexTime `json:"selection_start_date" binding:"required"`
	SelectionEndDate   FlexTime `json:"selection_end_date"   binding:"required"`
	ParticipantIDs     []string `json:"participant_ids"      binding:"required,min=1,dive,uuid"`
}

// UpdateDatesRequest changes the selection window; only changed fields are
// persisted.
type UpdateDatesRequest struct {
	SelectionStartDate *FlexTime `json:"selection_start_date"`
	SelectionEndDate   *FlexTime `json:"selection_end_date"`
}

// SelectSlotRequest claims a slot for the caller's active turn.
type SelectSlotRequest struct {
	SlotID string `json:"slot_id" binding:"required,uuid"`
}

// TurnResponse is one member's turn.
type TurnResponse struct {
	UserID          string `json:"user_id"`
	UserName        string `json:"user_name"`
	Order           int    `json:"order"`
	Status          string `json:"status"`
	SelectionsCount int    `json:"selections_count"`
}

// SelectionProcessResponse mirrors the process resource on the wire.
type SelectionProcessResponse struct {
	ID                 string         `json:"id"`
	StableID           string         `json:"stable_id"`
	Name               string         `json:"name"`
	Status             string         `json:"status"`
	Algorithm          string         `json:"algorithm"`
	SelectionStartDate string         `json:"selection_start_date"`
	SelectionEndDate   string         `json:"selection_end_date"`
	CurrentTurnUserID  *string        `json:"current_turn_user_id,omitempty"`
	Turns              []TurnResponse `json:"turns"`
}

// SuggestedSlot is one alternate offered on a capacity conflict.
type SuggestedSlot struct {
	StartTime         string `json:"startTime"`
	EndTime           string `json:"endTime"`
	RemainingCapacity int    `json:"remainingCapacity"`
}

// CapacityConflictResponse is the 409 body on slot-claim conflicts.
type CapacityConflictResponse struct {
	Message           string          `json:"message"`
	RemainingCapacity int             `json:"remainingCapacity"`
	SuggestedSlots    []SuggestedSlot `json:"suggestedSlots"`
}
