package dto

// ── stable module DTOs ──

// CreateStableRequest creates a tenant; the caller becomes its admin.
type CreateStableRequest struct {
	Name     string `json:"name"     binding:"required,min=2,max=100"`
	Timezone string `json:"timezone" binding:"omitempty,max=64"`
}

// UpdateStableRequest updates tenant fields.
type UpdateStableRequest struct {
	Name     *string `json:"name"     binding:"omitempty,min=2,max=100"`
	Timezone *string `json:"timezone" binding:"omitempty,max=64"`
}

// StableResponse is a tenant's public shape.
type StableResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Timezone  string `json:"timezone"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// StableBrief embeds in other responses.
type StableBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MemberResponse is one stable membership.
type MemberResponse struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	JoinedAt string `json:"joined_at"`
}

// GenerateInviteRequest creates an invite code.
type GenerateInviteRequest struct {
	Role        string `json:"role"          binding:"omitempty,oneof=admin member"`
	TTLHours    int    `json:"ttl_hours"     binding:"omitempty,min=1,max=720"`
}

// InviteResponse is a generated invite code.
type InviteResponse struct {
	Code      string `json:"code"`
	Role      string `json:"role"`
	ExpiresAt string `json:"expires_at"`
}

// StableContextResponse aggregates the parallel context loads performed
// when a client establishes an organization scope. Branch failures leave
// the corresponding field empty and are listed in Degraded.
type StableContextResponse struct {
	Stable     *StableResponse     `json:"stable,omitempty"`
	Membership *MemberResponse     `json:"membership,omitempty"`
	Facilities []FacilityResponse  `json:"facilities,omitempty"`
	Toggles    map[string]bool     `json:"toggles,omitempty"`
	Degraded   []string            `json:"degraded,omitempty"`
}
