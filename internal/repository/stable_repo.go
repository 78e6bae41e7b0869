package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/maxton76/stall-bokning-sub008/internal/model"
)

// StableRepository is the tenant data-access interface, covering stables,
// memberships and invite codes.
type StableRepository interface {
	Create(ctx context.Context, stable *model.Stable) error
	GetByID(ctx context.Context, id string) (*model.Stable, error)
	Update(ctx context.Context, stable *model.Stable) error

	AddMember(ctx context.Context, member *model.StableMember) error
	GetMember(ctx context.Context, stableID, userID string) (*model.StableMember, error)
	ListMembers(ctx context.Context, stableID string) ([]model.StableMember, error)
	ListMembershipsForUser(ctx context.Context, userID string) ([]model.StableMember, error)

	CreateInvite(ctx context.Context, invite *model.InviteCode) error
	GetInviteByCode(ctx context.Context, code string) (*model.InviteCode, error)
	MarkInviteUsed(ctx context.Context, inviteID, userID string) error
}

type stableRepo struct {
	db *gorm.DB
}

// NewStableRepo creates a StableRepository.
func NewStableRepo(db *gorm.DB) StableRepository {
	return &stableRepo{db: db}
}

func (r *stableRepo) Create(ctx context.Context, stable *model.Stable) error {
	return r.db.WithContext(ctx).Create(stable).Error
}

func (r *stableRepo) GetByID(ctx context.Context, id string) (*model.Stable, error) {
	var stable model.Stable
	err := r.db.WithContext(ctx).
		Where("stable_id = ?", id).
		First(&stable).Error
	if err != nil {
		return nil, err
	}
	return &stable, nil
}

func (r *stableRepo) Update(ctx context.Context, stable *model.Stable) error {
	return r.db.WithContext(ctx).Save(stable).Error
}

func (r *stableRepo) AddMember(ctx context.Context, member *model.StableMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *stableRepo) GetMember(ctx context.Context, stableID, userID string) (*model.StableMember, error) {
	var member model.StableMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("stable_id = ? AND user_id = ?", stableID, userID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *stableRepo) ListMembers(ctx context.Context, stableID string) ([]model.StableMember, error) {
	var members []model.StableMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("stable_id = ?", stableID).
		Order("created_at ASC").
		Find(&members).Error
	return members, err
}

func (r *stableRepo) ListMembershipsForUser(ctx context.Context, userID string) ([]model.StableMember, error) {
	var members []model.StableMember
	err := r.db.WithContext(ctx).
		Preload("Stable").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&members).Error
	return members, err
}

func (r *stableRepo) CreateInvite(ctx context.Context, invite *model.InviteCode) error {
	return r.db.WithContext(ctx).Create(invite).Error
}

func (r *stableRepo) GetInviteByCode(ctx context.Context, code string) (*model.InviteCode, error) {
	var invite model.InviteCode
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&invite).Error
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *stableRepo) MarkInviteUsed(ctx context.Context, inviteID, userID string) error {
	return r.db.WithContext(ctx).
		Model(&model.InviteCode{}).
		Where("invite_code_id = ?", inviteID).
		Updates(map[string]interface{}{
			"used_by": userID,
			"used_at": gorm.Expr("NOW()"),
		}).Error
}
