package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/maxton76/stall-bokning-sub008/internal/model"
)

// FacilityRepository is the facility data-access interface.
type FacilityRepository interface {
	Create(ctx context.Context, facility *model.Facility) error
	GetByID(ctx context.Context, id string) (*model.Facility, error)
	ListByStable(ctx context.Context, stableID string) ([]model.Facility, error)
	Update(ctx context.Context, facility *model.Facility) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type facilityRepo struct {
	db *gorm.DB
}

// NewFacilityRepo creates a FacilityRepository.
func NewFacilityRepo(db *gorm.DB) FacilityRepository {
	return &facilityRepo{db: db}
}

func (r *facilityRepo) Create(ctx context.Context, facility *model.Facility) error {
	return r.db.WithContext(ctx).Create(facility).Error
}

func (r *facilityRepo) GetByID(ctx context.Context, id string) (*model.Facility, error) {
	var facility model.Facility
	err := r.db.WithContext(ctx).
		Where("facility_id = ?", id).
		First(&facility).Error
	if err != nil {
		return nil, err
	}
	return &facility, nil
}

func (r *facilityRepo) ListByStable(ctx context.Context, stableID string) ([]model.Facility, error) {
	var facilities []model.Facility
	err := r.db.WithContext(ctx).
		Where("stable_id = ?", stableID).
		Order("name ASC").
		Find(&facilities).Error
	return facilities, err
}

func (r *facilityRepo) Update(ctx context.Context, facility *model.Facility) error {
	return r.db.WithContext(ctx).Save(facility).Error
}

func (r *facilityRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Facility{}).
		Where("facility_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
