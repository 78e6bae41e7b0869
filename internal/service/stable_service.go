package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/maxton76/stall-bokning-sub008/internal/dto"
	"github.com/maxton76/stall-bokning-sub008/internal/model"
	"github.com/maxton76/stall-bokning-sub008/internal/repository"
)

// ── stable module errors ──

var (
	ErrStableNotFound = errors.New("stable not found")
)

// StableService is the tenant business interface.
type StableService interface {
	Create(ctx context.Context, req *dto.CreateStableRequest, callerID string) (*dto.StableResponse, error)
	GetByID(ctx context.Context, id string) (*dto.StableResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateStableRequest, callerID string) (*dto.StableResponse, error)
	ListMembers(ctx context.Context, stableID string) ([]dto.MemberResponse, error)
	GenerateInvite(ctx context.Context, stableID string, req *dto.GenerateInviteRequest, callerID string) (*dto.InviteResponse, error)
}

type stableService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStableService creates a StableService.
func NewStableService(repo *repository.Repository, logger *zap.Logger) StableService {
	return &stableService{repo: repo, logger: logger}
}

func (s *stableService) Create(ctx context.Context, req *dto.CreateStableRequest, callerID string) (*dto.StableResponse, error) {
	stable := &model.Stable{
		Name: req.Name,
	}
	if req.Timezone != "" {
		stable.Timezone = req.Timezone
	}
	stable.CreatedBy = &callerID
	stable.UpdatedBy = &callerID

	if err := s.repo.Stable.Create(ctx, stable); err != nil {
		s.logger.Error("create stable failed", zap.Error(err))
		return nil, err
	}

	// the creator is the first admin
	member := &model.StableMember{
		StableID: stable.StableID,
		UserID:   callerID,
		Role:     model.RoleAdmin,
	}
	if err := s.repo.Stable.AddMember(ctx, member); err != nil {
		s.logger.Error("add creator as admin failed", zap.Error(err))
		return nil, err
	}

	return toStableResponse(stable), nil
}

func (s *stableService) GetByID(ctx context.Context, id string) (*dto.StableResponse, error) {
	stable, err := s.repo.Stable.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStableNotFound
		}
		s.logger.Error("lookup stable failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toStableResponse(stable), nil
}

func (s *stableService) Update(ctx context.Context, id string, req *dto.UpdateStableRequest, callerID string) (*dto.StableResponse, error) {
	stable, err := s.repo.Stable.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStableNotFound
		}
		s.logger.Error("lookup stable failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		stable.Name = *req.Name
	}
	if req.Timezone != nil {
		stable.Timezone = *req.Timezone
	}
	stable.UpdatedBy = &callerID

	if err := s.repo.Stable.Update(ctx, stable); err != nil {
		s.logger.Error("update stable failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toStableResponse(stable), nil
}

func (s *stableService) ListMembers(ctx context.Context, stableID string) ([]dto.MemberResponse, error) {
	members, err := s.repo.Stable.ListMembers(ctx, stableID)
	if err != nil {
		s.logger.Error("list members failed", zap.Error(err))
		return nil, err
	}

	result := make([]dto.MemberResponse, 0, len(members))
	for i := range members {
		result = append(result, toMemberResponse(&members[i]))
	}
	return result, nil
}

func (s *stableService) GenerateInvite(ctx context.Context, stableID string, req *dto.GenerateInviteRequest, callerID string) (*dto.InviteResponse, error) {
	if _, err := s.repo.Stable.GetByID(ctx, stableID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStableNotFound
		}
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = model.RoleMember
	}
	ttl := time.Duration(req.TTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}

	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}

	invite := &model.InviteCode{
		StableID:  stableID,
		Code:      hex.EncodeToString(buf),
		Role:      role,
		ExpiresAt: time.Now().Add(ttl),
	}
	invite.CreatedBy = &callerID
	invite.UpdatedBy = &callerID

	if err := s.repo.Stable.CreateInvite(ctx, invite); err != nil {
		s.logger.Error("create invite failed", zap.Error(err))
		return nil, err
	}

	return &dto.InviteResponse{
		Code:      invite.Code,
		Role:      invite.Role,
		ExpiresAt: dto.FormatTimestamp(invite.ExpiresAt),
	}, nil
}

// ── helpers ──

func toStableResponse(stable *model.Stable) *dto.StableResponse {
	return &dto.StableResponse{
		ID:        stable.StableID,
		Name:      stable.Name,
		Timezone:  stable.Timezone,
		CreatedAt: dto.FormatTimestamp(stable.CreatedAt),
		UpdatedAt: dto.FormatTimestamp(stable.UpdatedAt),
	}
}

func toMemberResponse(member *model.StableMember) dto.MemberResponse {
	resp := dto.MemberResponse{
		UserID:   member.UserID,
		Role:     member.Role,
		JoinedAt: dto.FormatTimestamp(member.CreatedAt),
	}
	if member.User != nil {
		resp.Name = member.User.Name
		resp.Email = member.User.Email
	}
	return resp
}
