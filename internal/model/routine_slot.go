package model

import "time"

// RoutineSlot — maps to routine_slots. A scheduled routine instance a
// member can claim through a selection process. Unassigned while
// AssigneeID is nil.
type RoutineSlot struct {
	SlotID             string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"slot_id"`
	StableID           string    `gorm:"type:uuid;not null"                             json:"stable_id"`
	FacilityID         *string   `gorm:"type:uuid"                                      json:"facility_id,omitempty"`
	Title              string    `gorm:"type:varchar(200);not null"                     json:"title"`
	StartsAt           time.Time `gorm:"not null"                                       json:"starts_at"`
	EndsAt             time.Time `gorm:"not null"                                       json:"ends_at"`
	AssigneeID         *string   `gorm:"type:uuid"                                      json:"assignee_id,omitempty"`
	SelectionProcessID *string   `gorm:"type:uuid"                                      json:"selection_process_id,omitempty"`
	VersionedModel

	Facility *Facility `gorm:"foreignKey:FacilityID;references:FacilityID" json:"facility,omitempty"`
	Assignee *User     `gorm:"foreignKey:AssigneeID;references:UserID"     json:"assignee,omitempty"`
}

func (RoutineSlot) TableName() string { return "routine_slots" }
