package model

import "time"

// FeatureToggle — maps to feature_toggles. StableID nil means a global
// default; a stable-scoped row overrides it.
type FeatureToggle struct {
	ToggleID  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"toggle_id"`
	StableID  *string   `gorm:"type:uuid"                                      json:"stable_id,omitempty"`
	Key       string    `gorm:"type:varchar(100);not null"                     json:"key"`
	Enabled   bool      `gorm:"not null;default:false"                         json:"enabled"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

func (FeatureToggle) TableName() string { return "feature_toggles" }
