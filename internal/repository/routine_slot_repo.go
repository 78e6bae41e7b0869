package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/maxton76/stall-bokning-sub008/internal/model"
	pkgerrors "github.com/maxton76/stall-bokning-sub008/pkg/errors"
)

// RoutineSlotRepository is the routine slot data-access interface.
type RoutineSlotRepository interface {
	Create(ctx context.Context, slot *model.RoutineSlot) error
	GetByID(ctx context.Context, id string) (*model.RoutineSlot, error)
	ListInRange(ctx context.Context, stableID string, from, to time.Time, unassignedOnly bool) ([]model.RoutineSlot, error)
	ListByAssignee(ctx context.Context, stableID, userID string) ([]model.RoutineSlot, error)
	Update(ctx context.Context, slot *model.RoutineSlot) error
	// Assign claims the slot for userID under processID, only if it is
	// still unassigned. Returns pkgerrors.ErrOptimisticLock when a
	// concurrent claim won the race. On success the slot's assignment
	// fields are set.
	Assign(ctx context.Context, slot *model.RoutineSlot, processID, userID string) error
	// AssignWithCapacity claims a facility-bound slot in one transaction.
	// The facility row is locked first, so competing claims on the same
	// facility are serialized; overlapping assigned slots are then counted
	// against the locked row's capacity before the conditional assignment.
	// Returns the overlap count together with pkgerrors.ErrCapacityFull
	// when the facility is full for the slot's time range, or
	// pkgerrors.ErrOptimisticLock when the slot itself was claimed
	// concurrently. On success the slot's assignment fields are set.
	AssignWithCapacity(ctx context.Context, slot *model.RoutineSlot, processID, userID string) (int64, error)
	Delete(ctx context.Context, id string, deletedBy string) error
	// CountOverlappingAssigned counts assigned slots on a facility whose
	// time range overlaps [start, end), excluding excludeSlotID.
	CountOverlappingAssigned(ctx context.Context, facilityID string, start, end time.Time, excludeSlotID string) (int64, error)
}

type routineSlotRepo struct {
	db *gorm.DB
}

// NewRoutineSlotRepo creates a RoutineSlotRepository.
func NewRoutineSlotRepo(db *gorm.DB) RoutineSlotRepository {
	return &routineSlotRepo{db: db}
}

func (r *routineSlotRepo) Create(ctx context.Context, slot *model.RoutineSlot) error {
	return r.db.WithContext(ctx).Create(slot).Error
}

func (r *routineSlotRepo) GetByID(ctx context.Context, id string) (*model.RoutineSlot, error) {
	var slot model.RoutineSlot
	err := r.db.WithContext(ctx).
		Preload("Assignee").
		Preload("Facility").
		Where("slot_id = ?", id).
		First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *routineSlotRepo) ListInRange(ctx context.Context, stableID string, from, to time.Time, unassignedOnly bool) ([]model.RoutineSlot, error) {
	var slots []model.RoutineSlot
	db := r.db.WithContext(ctx).
		Where("stable_id = ?", stableID).
		Where("starts_at >= ? AND starts_at < ?", from, to)

	if unassignedOnly {
		db = db.Where("assignee_id IS NULL")
	}

	err := db.Preload("Assignee").
		Order("starts_at ASC").
		Find(&slots).Error
	return slots, err
}

func (r *routineSlotRepo) ListByAssignee(ctx context.Context, stableID, userID string) ([]model.RoutineSlot, error) {
	var slots []model.RoutineSlot
	err := r.db.WithContext(ctx).
		Where("stable_id = ? AND assignee_id = ?", stableID, userID).
		Preload("Facility").
		Order("starts_at ASC").
		Find(&slots).Error
	return slots, err
}

func (r *routineSlotRepo) Update(ctx context.Context, slot *model.RoutineSlot) error {
	return r.db.WithContext(ctx).Save(slot).Error
}

func (r *routineSlotRepo) Assign(ctx context.Context, slot *model.RoutineSlot, processID, userID string) error {
	if err := assignTx(r.db.WithContext(ctx), slot.SlotID, processID, userID); err != nil {
		return err
	}
	markAssigned(slot, processID, userID)
	return nil
}

func (r *routineSlotRepo) AssignWithCapacity(ctx context.Context, slot *model.RoutineSlot, processID, userID string) (int64, error) {
	var occupied int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// locking the facility row serializes claims per facility, so the
		// count below cannot go stale before the assignment lands
		var facility model.Facility
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("facility_id = ?", *slot.FacilityID).
			First(&facility).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.RoutineSlot{}).
			Where("facility_id = ?", *slot.FacilityID).
			Where("assignee_id IS NOT NULL").
			Where("slot_id <> ?", slot.SlotID).
			Where("starts_at < ? AND ends_at > ?", slot.EndsAt, slot.StartsAt).
			Count(&occupied).Error; err != nil {
			return err
		}
		if occupied >= int64(facility.Capacity) {
			return pkgerrors.ErrCapacityFull
		}

		return assignTx(tx, slot.SlotID, processID, userID)
	})
	if err != nil {
		return occupied, err
	}
	markAssigned(slot, processID, userID)
	return occupied, nil
}

func assignTx(db *gorm.DB, slotID, processID, userID string) error {
	res := db.Model(&model.RoutineSlot{}).
		Where("slot_id = ? AND assignee_id IS NULL", slotID).
		Updates(map[string]interface{}{
			"assignee_id":          userID,
			"selection_process_id": processID,
			"updated_by":           userID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func markAssigned(slot *model.RoutineSlot, processID, userID string) {
	slot.AssigneeID = &userID
	slot.SelectionProcessID = &processID
	slot.UpdatedBy = &userID
}

func (r *routineSlotRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.RoutineSlot{}).
		Where("slot_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *routineSlotRepo) CountOverlappingAssigned(ctx context.Context, facilityID string, start, end time.Time, excludeSlotID string) (int64, error) {
	var count int64
	db := r.db.WithContext(ctx).
		Model(&model.RoutineSlot{}).
		Where("facility_id = ?", facilityID).
		Where("assignee_id IS NOT NULL").
		Where("starts_at < ? AND ends_at > ?", end, start)

	if excludeSlotID != "" {
		db = db.Where("slot_id <> ?", excludeSlotID)
	}

	err := db.Count(&count).Error
	return count, err
}
