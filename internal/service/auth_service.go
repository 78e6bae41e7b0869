package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/maxton76/stall-bokning-sub008/config"
	"github.com/maxton76/stall-bokning-sub008/internal/dto"
	"github.com/maxton76/stall-bokning-sub008/internal/model"
	"github.com/maxton76/stall-bokning-sub008/internal/repository"
	"github.com/maxton76/stall-bokning-sub008/pkg/jwt"
	"github.com/maxton76/stall-bokning-sub008/pkg/redis"
)

// ── auth module errors ──

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInviteInvalid      = errors.New("invite code is invalid or expired")
	ErrNotAMember         = errors.New("user is not a member of this stable")
)

// AuthService is the authentication business interface.
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error)
}

type authService struct {
	cfg    *config.Config
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	rdb    *redis.Client
	logger *zap.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:    cfg,
		repo:   repo,
		jwtMgr: jwtMgr,
		rdb:    rdb,
		logger: logger,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	if _, err := s.repo.User.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("lookup user by email failed", zap.Error(err))
		return nil, err
	}

	// invite is resolved up front so a bad code fails before the user row
	// is written
	var invite *model.InviteCode
	if req.InviteCode != "" {
		found, err := s.repo.Stable.GetInviteByCode(ctx, req.InviteCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInviteInvalid
			}
			s.logger.Error("lookup invite failed", zap.Error(err))
			return nil, err
		}
		if found.UsedAt != nil || time.Now().After(found.ExpiresAt) {
			return nil, ErrInviteInvalid
		}
		invite = found
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("create user failed", zap.Error(err))
		return nil, err
	}

	resp := &dto.UserResponse{
		ID:    user.UserID,
		Name:  user.Name,
		Email: user.Email,
	}

	if invite != nil {
		member := &model.StableMember{
			StableID: invite.StableID,
			UserID:   user.UserID,
			Role:     invite.Role,
		}
		if err := s.repo.Stable.AddMember(ctx, member); err != nil {
			s.logger.Error("add member from invite failed", zap.Error(err))
			return nil, err
		}
		if err := s.repo.Stable.MarkInviteUsed(ctx, invite.InviteCodeID, user.UserID); err != nil {
			s.logger.Error("mark invite used failed", zap.Error(err))
			return nil, err
		}
		resp.StableID = &invite.StableID
		resp.Role = &member.Role
	}

	return resp, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.repo.User.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("lookup user failed", zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// tokens are scoped to one stable membership
	stableID, role, err := s.resolveMembership(ctx, user.UserID, req.StableID)
	if err != nil {
		return nil, err
	}

	return s.issueTokens(user, stableID, role, req.RememberMe)
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != "refresh" {
		return nil, jwt.ErrTokenInvalid
	}

	if s.rdb != nil {
		blacklisted, err := s.rdb.IsBlacklisted(ctx, claims.ID)
		if err == nil && blacklisted {
			return nil, jwt.ErrTokenInvalid
		}
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("lookup user failed", zap.Error(err))
		return nil, err
	}

	// role is re-read so revoked memberships invalidate old refresh tokens
	stableID, role, err := s.resolveMembership(ctx, user.UserID, claims.StableID)
	if err != nil {
		return nil, err
	}

	return s.issueTokens(user, stableID, role, claims.RememberMe)
}

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.rdb == nil {
		return nil // blacklist unavailable, token simply ages out
	}
	return s.rdb.BlacklistToken(ctx, jti, time.Until(expiresAt))
}

func (s *authService) GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("lookup user failed", zap.String("id", userID), zap.Error(err))
		return nil, err
	}

	return &dto.UserResponse{
		ID:    user.UserID,
		Name:  user.Name,
		Email: user.Email,
	}, nil
}

// ── helpers ──

func (s *authService) resolveMembership(ctx context.Context, userID, stableID string) (string, string, error) {
	if stableID != "" {
		member, err := s.repo.Stable.GetMember(ctx, stableID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", "", ErrNotAMember
			}
			s.logger.Error("lookup membership failed", zap.Error(err))
			return "", "", err
		}
		return member.StableID, member.Role, nil
	}

	memberships, err := s.repo.Stable.ListMembershipsForUser(ctx, userID)
	if err != nil {
		s.logger.Error("list memberships failed", zap.Error(err))
		return "", "", err
	}
	if len(memberships) == 0 {
		// a user without a stable can still authenticate, e.g. to create one
		return "", "", nil
	}
	return memberships[0].StableID, memberships[0].Role, nil
}

func (s *authService) issueTokens(user *model.User, stableID, role string, rememberMe bool) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, role, stableID)
	if err != nil {
		s.logger.Error("generate access token failed", zap.Error(err))
		return nil, err
	}

	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, role, stableID, rememberMe)
	if err != nil {
		s.logger.Error("generate refresh token failed", zap.Error(err))
		return nil, err
	}

	resp := &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.cfg.Auth.AccessTokenTTL.Seconds()),
		User: dto.UserResponse{
			ID:    user.UserID,
			Name:  user.Name,
			Email: user.Email,
		},
	}
	if stableID != "" {
		resp.User.StableID = &stableID
		resp.User.Role = &role
	}
	return resp, nil
}
