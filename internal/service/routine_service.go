package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/maxton76/stall-bokning-sub008/internal/dto"
	"github.com/maxton76/stall-bokning-sub008/internal/model"
	"github.com/maxton76/stall-bokning-sub008/internal/repository"
)

// ── routine slot module errors ──

var (
	ErrSlotNotFound     = errors.New("routine slot not found")
	ErrSlotTimesInvalid = errors.New("slot must end after it starts")
	ErrSlotAssigned     = errors.New("slot is already assigned")
)

// RoutineService manages routine slots. Assignment changes go through the
// selection engine; this service only handles the slot records themselves.
type RoutineService interface {
	Create(ctx context.Context, stableID string, req *dto.CreateRoutineSlotRequest, callerID string) (*dto.RoutineSlotResponse, error)
	GetByID(ctx context.Context, id string) (*dto.RoutineSlotResponse, error)
	ListInRange(ctx context.Context, stableID string, req *dto.RoutineSlotListRequest) ([]dto.RoutineSlotResponse, error)
	ListByAssignee(ctx context.Context, stableID, userID string) ([]dto.RoutineSlotResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateRoutineSlotRequest, callerID string) (*dto.RoutineSlotResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type routineService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRoutineService creates a RoutineService.
func NewRoutineService(repo *repository.Repository, logger *zap.Logger) RoutineService {
	return &routineService{repo: repo, logger: logger}
}

func (s *routineService) Create(ctx context.Context, stableID string, req *dto.CreateRoutineSlotRequest, callerID string) (*dto.RoutineSlotResponse, error) {
	starts := req.StartsAt.Time
	ends := req.EndsAt.Time
	if !ends.After(starts) {
		return nil, ErrSlotTimesInvalid
	}

	slot := &model.RoutineSlot{
		StableID:   stableID,
		FacilityID: req.FacilityID,
		Title:      req.Title,
		StartsAt:   starts,
		EndsAt:     ends,
	}
	slot.CreatedBy = &callerID
	slot.UpdatedBy = &callerID

	if err := s.repo.RoutineSlot.Create(ctx, slot); err != nil {
		s.logger.Error("create routine slot failed", zap.Error(err))
		return nil, err
	}

	return toRoutineSlotResponse(slot), nil
}

func (s *routineService) GetByID(ctx context.Context, id string) (*dto.RoutineSlotResponse, error) {
	slot, err := s.getSlot(ctx, id)
	if err != nil {
		return nil, err
	}
	return toRoutineSlotResponse(slot), nil
}

func (s *routineService) ListInRange(ctx context.Context, stableID string, req *dto.RoutineSlotListRequest) ([]dto.RoutineSlotResponse, error) {
	from, err := time.Parse("2006-01-02", req.From)
	if err != nil {
		return nil, ErrInvalidDate
	}
	to, err := time.Parse("2006-01-02", req.To)
	if err != nil {
		return nil, ErrInvalidDate
	}
	// make the "to" date inclusive
	to = to.AddDate(0, 0, 1)

	slots, err := s.repo.RoutineSlot.ListInRange(ctx, stableID, from, to, req.Unassigned)
	if err != nil {
		s.logger.Error("list routine slots failed", zap.Error(err))
		return nil, err
	}
	return toRoutineSlotResponses(slots), nil
}

func (s *routineService) ListByAssignee(ctx context.Context, stableID, userID string) ([]dto.RoutineSlotResponse, error) {
	slots, err := s.repo.RoutineSlot.ListByAssignee(ctx, stableID, userID)
	if err != nil {
		s.logger.Error("list assigned slots failed", zap.Error(err))
		return nil, err
	}
	return toRoutineSlotResponses(slots), nil
}

func (s *routineService) Update(ctx context.Context, id string, req *dto.UpdateRoutineSlotRequest, callerID string) (*dto.RoutineSlotResponse, error) {
	slot, err := s.getSlot(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		slot.Title = *req.Title
	}
	if req.StartsAt != nil {
		slot.StartsAt = req.StartsAt.Time
	}
	if req.EndsAt != nil {
		slot.EndsAt = req.EndsAt.Time
	}
	if !slot.EndsAt.After(slot.StartsAt) {
		return nil, ErrSlotTimesInvalid
	}
	slot.UpdatedBy = &callerID

	if err := s.repo.RoutineSlot.Update(ctx, slot); err != nil {
		s.logger.Error("update routine slot failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toRoutineSlotResponse(slot), nil
}

func (s *routineService) Delete(ctx context.Context, id string, callerID string) error {
	slot, err := s.getSlot(ctx, id)
	if err != nil {
		return err
	}
	if slot.AssigneeID != nil {
		return ErrSlotAssigned
	}
	if err := s.repo.RoutineSlot.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("delete routine slot failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *routineService) getSlot(ctx context.Context, id string) (*model.RoutineSlot, error) {
	slot, err := s.repo.RoutineSlot.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		s.logger.Error("lookup routine slot failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return slot, nil
}

func toRoutineSlotResponse(slot *model.RoutineSlot) *dto.RoutineSlotResponse {
	resp := &dto.RoutineSlotResponse{
		ID:         slot.SlotID,
		StableID:   slot.StableID,
		FacilityID: slot.FacilityID,
		Title:      slot.Title,
		StartsAt:   dto.FormatTimestamp(slot.StartsAt),
		EndsAt:     dto.FormatTimestamp(slot.EndsAt),
		AssigneeID: slot.AssigneeID,
	}
	if slot.Assignee != nil {
		resp.Assignee = &dto.UserBrief{
			ID:   slot.Assignee.UserID,
			Name: slot.Assignee.Name,
		}
	}
	return resp
}

func toRoutineSlotResponses(slots []model.RoutineSlot) []dto.RoutineSlotResponse {
	result := make([]dto.RoutineSlotResponse, 0, len(slots))
	for i := range slots {
		result = append(result, *toRoutineSlotResponse(&slots[i]))
	}
	return result
}
