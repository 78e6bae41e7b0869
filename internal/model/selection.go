package model

import "time"

// Selection process statuses.
const (
	ProcessStatusDraft     = "draft"
	ProcessStatusActive    = "active"
	ProcessStatusCancelled = "cancelled"
	ProcessStatusCompleted = "completed"
)

// Turn statuses.
const (
	TurnStatusPending   = "pending"
	TurnStatusActive    = "active"
	TurnStatusCompleted = "completed"
)

// SelectionProcess — maps to selection_processes. A round-robin queue of
// members taking turns claiming routine slots inside the selection window.
// While active, exactly one turn is active and CurrentTurnUserID names its
// holder.
type SelectionProcess struct {
	ProcessID          string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"process_id"`
	StableID           string    `gorm:"type:uuid;not null"                             json:"stable_id"`
	Name               string    `gorm:"type:varchar(100);not null"                     json:"name"`
	Status             string    `gorm:"type:varchar(20);not null;default:'draft'"      json:"status"`
	Algorithm          string    `gorm:"type:varchar(30);not null;default:'round_robin'" json:"algorithm"`
	SelectionStartDate time.Time `gorm:"type:date;not null"                             json:"selection_start_date"`
	SelectionEndDate   time.Time `gorm:"type:date;not null"                             json:"selection_end_date"`
	CurrentTurnUserID  *string   `gorm:"type:uuid"                                      json:"current_turn_user_id,omitempty"`
	VersionedModel

	Turns []SelectionTurn `gorm:"foreignKey:ProcessID" json:"turns,omitempty"`
}

func (SelectionProcess) TableName() string { return "selection_processes" }

// SelectionTurn — maps to selection_turns. Order is 1-based, unique and
// contiguous per process, fixed when the process starts.
type SelectionTurn struct {
	TurnID          string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"turn_id"`
	ProcessID       string `gorm:"type:uuid;not null"                             json:"process_id"`
	UserID          string `gorm:"type:uuid;not null"                             json:"user_id"`
	UserName        string `gorm:"type:varchar(100);not null"                     json:"user_name"`
	Order           int    `gorm:"column:turn_order;type:smallint;not null"       json:"order"`
	Status          string `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	SelectionsCount int    `gorm:"not null;default:0"                             json:"selections_count"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (SelectionTurn) TableName() string { return "selection_turns" }
