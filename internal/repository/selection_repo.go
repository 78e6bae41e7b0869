package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/maxton76/stall-bokning-sub008/internal/model"
)

// SelectionRepository is the selection process data-access interface.
type SelectionRepository interface {
	Create(ctx context.Context, process *model.SelectionProcess) error
	GetByID(ctx context.Context, id string) (*model.SelectionProcess, error)
	ListByStable(ctx context.Context, stableID string) ([]model.SelectionProcess, error)
	Update(ctx context.Context, process *model.SelectionProcess) error
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	UpdateTurn(ctx context.Context, turn *model.SelectionTurn) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type selectionRepo struct {
	db *gorm.DB
}

// NewSelectionRepo creates a SelectionRepository.
func NewSelectionRepo(db *gorm.DB) SelectionRepository {
	return &selectionRepo{db: db}
}

func (r *selectionRepo) Create(ctx context.Context, process *model.SelectionProcess) error {
	// creates turns in the same insert via the association
	return r.db.WithContext(ctx).Create(process).Error
}

func (r *selectionRepo) GetByID(ctx context.Context, id string) (*model.SelectionProcess, error) {
	var process model.SelectionProcess
	err := r.db.WithContext(ctx).
		Preload("Turns", func(db *gorm.DB) *gorm.DB {
			return db.Order("turn_order ASC")
		}).
		Where("process_id = ?", id).
		First(&process).Error
	if err != nil {
		return nil, err
	}
	return &process, nil
}

func (r *selectionRepo) ListByStable(ctx context.Context, stableID string) ([]model.SelectionProcess, error) {
	var processes []model.SelectionProcess
	err := r.db.WithContext(ctx).
		Preload("Turns", func(db *gorm.DB) *gorm.DB {
			return db.Order("turn_order ASC")
		}).
		Where("stable_id = ?", stableID).
		Order("created_at DESC").
		Find(&processes).Error
	return processes, err
}

func (r *selectionRepo) Update(ctx context.Context, process *model.SelectionProcess) error {
	return r.db.WithContext(ctx).
		Omit("Turns").
		Save(process).Error
}

func (r *selectionRepo) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.SelectionProcess{}).
		Where("process_id = ?", id).
		Updates(fields).Error
}

func (r *selectionRepo) UpdateTurn(ctx context.Context, turn *model.SelectionTurn) error {
	return r.db.WithContext(ctx).Save(turn).Error
}

func (r *selectionRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.SelectionProcess{}).
		Where("process_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
