package model

import "time"

// Member roles within a stable.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Stable is the tenant: one equestrian facility organization.
// Maps to stables.
type Stable struct {
	StableID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"stable_id"`
	Name     string `gorm:"type:varchar(100);not null"                     json:"name"`
	Timezone string `gorm:"type:varchar(64);not null;default:'Europe/Stockholm'" json:"timezone"`
	VersionedModel
}

func (Stable) TableName() string { return "stables" }

// StableMember links a user to a stable with a role — maps to stable_members
type StableMember struct {
	MemberID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"member_id"`
	StableID string `gorm:"type:uuid;not null"                             json:"stable_id"`
	UserID   string `gorm:"type:uuid;not null"                             json:"user_id"`
	Role     string `gorm:"type:varchar(20);not null;default:'member'"     json:"role"`
	BaseModel

	User   *User   `gorm:"foreignKey:UserID;references:UserID"     json:"user,omitempty"`
	Stable *Stable `gorm:"foreignKey:StableID;references:StableID" json:"stable,omitempty"`
}

func (StableMember) TableName() string { return "stable_members" }

// InviteCode — maps to invite_codes
type InviteCode struct {
	InviteCodeID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"invite_code_id"`
	StableID     string     `gorm:"type:uuid;not null"                             json:"stable_id"`
	Code         string     `gorm:"type:varchar(50);not null"                      json:"code"`
	Role         string     `gorm:"type:varchar(20);not null;default:'member'"     json:"role"`
	ExpiresAt    time.Time  `gorm:"not null"                                       json:"expires_at"`
	UsedAt       *time.Time `json:"used_at,omitempty"`
	UsedBy       *string    `gorm:"type:uuid"                                      json:"used_by,omitempty"`
	VersionedModel
}

func (InviteCode) TableName() string { return "invite_codes" }
