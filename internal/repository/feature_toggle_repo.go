package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/maxton76/stall-bokning-sub008/internal/model"
)

// FeatureToggleRepository is the feature toggle data-access interface.
type FeatureToggleRepository interface {
	ListForStable(ctx context.Context, stableID string) ([]model.FeatureToggle, error)
	Upsert(ctx context.Context, toggle *model.FeatureToggle) error
}

type featureToggleRepo struct {
	db *gorm.DB
}

// NewFeatureToggleRepo creates a FeatureToggleRepository.
func NewFeatureToggleRepo(db *gorm.DB) FeatureToggleRepository {
	return &featureToggleRepo{db: db}
}

// ListForStable returns global defaults plus the stable's overrides.
// Overrides sort after defaults so callers can apply them in order.
func (r *featureToggleRepo) ListForStable(ctx context.Context, stableID string) ([]model.FeatureToggle, error) {
	var toggles []model.FeatureToggle
	err := r.db.WithContext(ctx).
		Where("stable_id IS NULL OR stable_id = ?", stableID).
		Order("stable_id ASC NULLS FIRST").
		Find(&toggles).Error
	return toggles, err
}

func (r *featureToggleRepo) Upsert(ctx context.Context, toggle *model.FeatureToggle) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "stable_id"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"enabled", "updated_at"}),
		}).
		Create(toggle).Error
}
