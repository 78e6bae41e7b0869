package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/maxton76/stall-bokning-sub008/config"
	"github.com/maxton76/stall-bokning-sub008/internal/dto"
	"github.com/maxton76/stall-bokning-sub008/internal/model"
	"github.com/maxton76/stall-bokning-sub008/pkg/jwt"
)

func testAuthConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:              "test-secret-key-for-auth-tests",
			AccessTokenTTL:         15 * time.Minute,
			RefreshTokenTTLDefault: 24 * time.Hour,
		},
	}
}

func setupAuthFixture(t *testing.T) (AuthService, *mockUserRepo, *mockStableRepo) {
	t.Helper()
	repo, users, stables, _, _, _, _ := newTestRepository()
	cfg := testAuthConfig()
	svc := NewAuthService(cfg, repo, jwt.NewManager(&cfg.Auth), nil, zap.NewNop())
	return svc, users, stables
}

func seedUser(t *testing.T, users *mockUserRepo, id, email, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := users.Create(context.Background(), &model.User{
		UserID:       id,
		Name:         "Anna",
		Email:        email,
		PasswordHash: string(hash),
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

// ── Register ──

func TestAuthService_Register_Success(t *testing.T) {
	svc, _, _ := setupAuthFixture(t)

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:     "Anna",
		Email:    "anna@example.com",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.Email != "anna@example.com" {
		t.Errorf("expected email anna@example.com, got %s", resp.Email)
	}
	if resp.StableID != nil {
		t.Error("register without invite should not join a stable")
	}
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	svc, users, _ := setupAuthFixture(t)
	seedUser(t, users, "anna", "anna@example.com", "s3cret-pass")

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:     "Other Anna",
		Email:    "anna@example.com",
		Password: "another-pass",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthService_Register_WithInviteJoinsStable(t *testing.T) {
	svc, _, stables := setupAuthFixture(t)
	ctx := context.Background()

	if err := stables.Create(ctx, &model.Stable{StableID: "stable-1", Name: "Ekgården"}); err != nil {
		t.Fatalf("seed stable: %v", err)
	}
	if err := stables.CreateInvite(ctx, &model.InviteCode{
		InviteCodeID: "invite-1",
		StableID:     "stable-1",
		Code:         "WELCOME",
		Role:         model.RoleMember,
		ExpiresAt:    time.Now().Add(time.Hour),
	}); err != nil {
		t.Fatalf("seed invite: %v", err)
	}

	resp, err := svc.Register(ctx, &dto.RegisterRequest{
		Name:       "Anna",
		Email:      "anna@example.com",
		Password:   "s3cret-pass",
		InviteCode: "WELCOME",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.StableID == nil || *resp.StableID != "stable-1" {
		t.Errorf("expected stable-1 membership, got %v", resp.StableID)
	}
	if resp.Role == nil || *resp.Role != model.RoleMember {
		t.Errorf("expected member role, got %v", resp.Role)
	}

	invite, err := stables.GetInviteByCode(ctx, "WELCOME")
	if err != nil {
		t.Fatalf("invite lookup: %v", err)
	}
	if invite.UsedAt == nil {
		t.Error("invite should be marked used")
	}
}

func TestAuthService_Register_ExpiredInvite(t *testing.T) {
	svc, _, stables := setupAuthFixture(t)
	ctx := context.Background()

	if err := stables.CreateInvite(ctx, &model.InviteCode{
		InviteCodeID: "invite-1",
		StableID:     "stable-1",
		Code:         "STALE",
		Role:         model.RoleMember,
		ExpiresAt:    time.Now().Add(-time.Hour),
	}); err != nil {
		t.Fatalf("seed invite: %v", err)
	}

	_, err := svc.Register(ctx, &dto.RegisterRequest{
		Name:       "Anna",
		Email:      "anna@example.com",
		Password:   "s3cret-pass",
		InviteCode: "STALE",
	})
	if !errors.Is(err, ErrInviteInvalid) {
		t.Errorf("expected ErrInviteInvalid, got %v", err)
	}
}

// ── Login ──

func TestAuthService_Login_Success(t *testing.T) {
	svc, users, stables := setupAuthFixture(t)
	ctx := context.Background()
	seedUser(t, users, "anna", "anna@example.com", "s3cret-pass")
	if err := stables.AddMember(ctx, &model.StableMember{StableID: "stable-1", UserID: "anna", Role: model.RoleAdmin}); err != nil {
		t.Fatalf("seed member: %v", err)
	}

	resp, err := svc.Login(ctx, &dto.LoginRequest{
		Email:    "anna@example.com",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("expected a token pair")
	}
	if resp.User.StableID == nil || *resp.User.StableID != "stable-1" {
		t.Errorf("expected stable scope stable-1, got %v", resp.User.StableID)
	}
	if resp.User.Role == nil || *resp.User.Role != model.RoleAdmin {
		t.Errorf("expected admin role, got %v", resp.User.Role)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, users, _ := setupAuthFixture(t)
	seedUser(t, users, "anna", "anna@example.com", "s3cret-pass")

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "anna@example.com",
		Password: "wrong",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc, _, _ := setupAuthFixture(t)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_ExplicitStableNotMember(t *testing.T) {
	svc, users, _ := setupAuthFixture(t)
	seedUser(t, users, "anna", "anna@example.com", "s3cret-pass")

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "anna@example.com",
		Password: "s3cret-pass",
		StableID: "stable-other",
	})
	if !errors.Is(err, ErrNotAMember) {
		t.Errorf("expected ErrNotAMember, got %v", err)
	}
}

func TestAuthService_Login_NoMembershipStillAuthenticates(t *testing.T) {
	svc, users, _ := setupAuthFixture(t)
	seedUser(t, users, "anna", "anna@example.com", "s3cret-pass")

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "anna@example.com",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.User.StableID != nil {
		t.Error("user without memberships should get an unscoped token")
	}
}

// ── Refresh ──

func TestAuthService_RefreshToken_IssuesNewPair(t *testing.T) {
	svc, users, stables := setupAuthFixture(t)
	ctx := context.Background()
	seedUser(t, users, "anna", "anna@example.com", "s3cret-pass")
	if err := stables.AddMember(ctx, &model.StableMember{StableID: "stable-1", UserID: "anna", Role: model.RoleMember}); err != nil {
		t.Fatalf("seed member: %v", err)
	}

	login, err := svc.Login(ctx, &dto.LoginRequest{Email: "anna@example.com", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := svc.RefreshToken(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Error("expected a new access token")
	}
}

func TestAuthService_RefreshToken_RejectsAccessToken(t *testing.T) {
	svc, users, _ := setupAuthFixture(t)
	ctx := context.Background()
	seedUser(t, users, "anna", "anna@example.com", "s3cret-pass")

	login, err := svc.Login(ctx, &dto.LoginRequest{Email: "anna@example.com", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	_, err = svc.RefreshToken(ctx, login.AccessToken)
	if !errors.Is(err, jwt.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

// ── GetCurrentUser ──

func TestAuthService_GetCurrentUser_NotFound(t *testing.T) {
	svc, _, _ := setupAuthFixture(t)

	_, err := svc.GetCurrentUser(context.Background(), "ghost")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
