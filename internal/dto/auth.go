package dto

// ── auth module DTOs ──

// RegisterRequest creates a user account, optionally joining a stable via
// invite code.
type RegisterRequest struct {
	Name       string `json:"name"        binding:"required,min=2,max=100"`
	Email      string `json:"email"       binding:"required,email"`
	Password   string `json:"password"    binding:"required,min=8,max=72"`
	InviteCode string `json:"invite_code" binding:"omitempty,max=50"`
}

// LoginRequest authenticates a user. StableID selects which membership the
// token is scoped to; empty means the first membership.
type LoginRequest struct {
	Email      string `json:"email"       binding:"required,email"`
	Password   string `json:"password"    binding:"required"`
	StableID   string `json:"stable_id"   binding:"omitempty,uuid"`
	RememberMe bool   `json:"remember_me"`
}

// RefreshRequest exchanges a refresh token for a new pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse carries a token pair plus the authenticated user.
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"`
	User         UserResponse `json:"user"`
}

// UserResponse is the user's public shape.
type UserResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	StableID *string `json:"stable_id,omitempty"`
	Role     *string `json:"role,omitempty"`
}
