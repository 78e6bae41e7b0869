package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/maxton76/stall-bokning-sub008/internal/dto"
	"github.com/maxton76/stall-bokning-sub008/internal/model"
	"github.com/maxton76/stall-bokning-sub008/internal/repository"
	pkgerrors "github.com/maxton76/stall-bokning-sub008/pkg/errors"
)

// ── selection module errors ──

var (
	ErrProcessNotFound      = errors.New("selection process not found")
	ErrInvalidTransition    = errors.New("invalid process status transition")
	ErrNotYourTurn          = errors.New("it is not your turn")
	ErrSlotAlreadyAssigned  = errors.New("slot is already assigned")
	ErrSlotOutsideWindow    = errors.New("slot is outside the selection window")
	ErrSlotWrongStable      = errors.New("slot belongs to a different stable")
	ErrWindowInvalid        = errors.New("selection window must end on or after it starts")
	ErrParticipantNotMember = errors.New("participant is not a stable member")
	ErrNoParticipants       = errors.New("process needs at least one participant")
)

const maxSuggestedSlots = 3

// CapacityError reports a facility-capacity conflict on a slot claim. It
// carries the data the 409 response needs; handlers unwrap it with
// errors.As.
type CapacityError struct {
	RemainingCapacity int
	SuggestedSlots    []dto.SuggestedSlot
}

func (e *CapacityError) Error() string {
	return "facility capacity exceeded for the requested time"
}

// SelectionService runs turn-based slot selection. A process is a queue of
// member turns in fixed order; while it is active exactly one turn is
// active, and only that member may claim or pass. Capacity is arbitrated
// by a single transactional claim against the facility's current
// assignments, so two clients racing for the last opening cannot both win.
type SelectionService interface {
	Create(ctx context.Context, stableID string, req *dto.CreateSelectionProcessRequest, callerID string) (*dto.SelectionProcessResponse, error)
	GetByID(ctx context.Context, id string) (*dto.SelectionProcessResponse, error)
	ListByStable(ctx context.Context, stableID string) ([]dto.SelectionProcessResponse, error)

	Start(ctx context.Context, id string, callerID string) (*dto.SelectionProcessResponse, error)
	SelectSlot(ctx context.Context, processID, userID string, req *dto.SelectSlotRequest) (*dto.RoutineSlotResponse, error)
	CompleteTurn(ctx context.Context, processID, userID string) (*dto.SelectionProcessResponse, error)
	AvailableSlots(ctx context.Context, processID string) ([]dto.RoutineSlotResponse, error)

	UpdateDates(ctx context.Context, id string, req *dto.UpdateDatesRequest, callerID string) (*dto.SelectionProcessResponse, error)
	Cancel(ctx context.Context, id string, callerID string) (*dto.SelectionProcessResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type selectionService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSelectionService creates a SelectionService.
func NewSelectionService(repo *repository.Repository, logger *zap.Logger) SelectionService {
	return &selectionService{repo: repo, logger: logger}
}

// ────────────────────── lifecycle ──────────────────────

func (s *selectionService) Create(ctx context.Context, stableID string, req *dto.CreateSelectionProcessRequest, callerID string) (*dto.SelectionProcessResponse, error) {
	if len(req.ParticipantIDs) == 0 {
		return nil, ErrNoParticipants
	}

	start := dateOnly(req.SelectionStartDate.Time)
	end := dateOnly(req.SelectionEndDate.Time)
	if end.Before(start) {
		return nil, ErrWindowInvalid
	}

	// every participant must be a member; names are frozen into the turn
	// rows so the queue stays readable even if a member later leaves
	turns := make([]model.SelectionTurn, 0, len(req.ParticipantIDs))
	for i, userID := range req.ParticipantIDs {
		member, err := s.repo.Stable.GetMember(ctx, stableID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParticipantNotMember
			}
			s.logger.Error("lookup participant failed", zap.String("user_id", userID), zap.Error(err))
			return nil, err
		}
		name := userID
		if member.User != nil {
			name = member.User.Name
		}
		turns = append(turns, model.SelectionTurn{
			UserID:   userID,
			UserName: name,
			Order:    i + 1,
			Status:   model.TurnStatusPending,
		})
	}

	process := &model.SelectionProcess{
		StableID:           stableID,
		Name:               req.Name,
		Status:             model.ProcessStatusDraft,
		Algorithm:          "round_robin",
		SelectionStartDate: start,
		SelectionEndDate:   end,
		Turns:              turns,
	}
	process.CreatedBy = &callerID
	process.UpdatedBy = &callerID

	if err := s.repo.Selection.Create(ctx, process); err != nil {
		s.logger.Error("create selection process failed", zap.Error(err))
		return nil, err
	}

	return toSelectionProcessResponse(process), nil
}

func (s *selectionService) GetByID(ctx context.Context, id string) (*dto.SelectionProcessResponse, error) {
	process, err := s.getProcess(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSelectionProcessResponse(process), nil
}

func (s *selectionService) ListByStable(ctx context.Context, stableID string) ([]dto.SelectionProcessResponse, error) {
	processes, err := s.repo.Selection.ListByStable(ctx, stableID)
	if err != nil {
		s.logger.Error("list selection processes failed", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SelectionProcessResponse, 0, len(processes))
	for i := range processes {
		result = append(result, *toSelectionProcessResponse(&processes[i]))
	}
	return result, nil
}

func (s *selectionService) Start(ctx context.Context, id string, callerID string) (*dto.SelectionProcessResponse, error) {
	process, err := s.getProcess(ctx, id)
	if err != nil {
		return nil, err
	}
	if process.Status != model.ProcessStatusDraft {
		return nil, ErrInvalidTransition
	}
	if len(process.Turns) == 0 {
		return nil, ErrNoParticipants
	}

	first := &process.Turns[0]
	first.Status = model.TurnStatusActive
	if err := s.repo.Selection.UpdateTurn(ctx, first); err != nil {
		s.logger.Error("activate first turn failed", zap.String("process_id", id), zap.Error(err))
		return nil, err
	}

	process.Status = model.ProcessStatusActive
	process.CurrentTurnUserID = &first.UserID
	process.UpdatedBy = &callerID
	if err := s.repo.Selection.Update(ctx, process); err != nil {
		s.logger.Error("start selection process failed", zap.String("process_id", id), zap.Error(err))
		return nil, err
	}

	return toSelectionProcessResponse(process), nil
}

func (s *selectionService) Cancel(ctx context.Context, id string, callerID string) (*dto.SelectionProcessResponse, error) {
	process, err := s.getProcess(ctx, id)
	if err != nil {
		return nil, err
	}
	if process.Status != model.ProcessStatusActive {
		return nil, ErrInvalidTransition
	}

	process.Status = model.ProcessStatusCancelled
	process.CurrentTurnUserID = nil
	process.UpdatedBy = &callerID
	if err := s.repo.Selection.Update(ctx, process); err != nil {
		s.logger.Error("cancel selection process failed", zap.String("process_id", id), zap.Error(err))
		return nil, err
	}

	return toSelectionProcessResponse(process), nil
}

func (s *selectionService) Delete(ctx context.Context, id string, callerID string) error {
	process, err := s.getProcess(ctx, id)
	if err != nil {
		return err
	}
	if process.Status == model.ProcessStatusActive {
		return ErrInvalidTransition
	}
	if err := s.repo.Selection.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("delete selection process failed", zap.String("process_id", id), zap.Error(err))
		return err
	}
	return nil
}

// UpdateDates persists only the fields that actually changed, so a request
// repeating the current window is a no-op write.
func (s *selectionService) UpdateDates(ctx context.Context, id string, req *dto.UpdateDatesRequest, callerID string) (*dto.SelectionProcessResponse, error) {
	process, err := s.getProcess(ctx, id)
	if err != nil {
		return nil, err
	}
	if process.Status != model.ProcessStatusActive {
		return nil, ErrInvalidTransition
	}

	start := process.SelectionStartDate
	end := process.SelectionEndDate
	if req.SelectionStartDate != nil {
		start = dateOnly(req.SelectionStartDate.Time)
	}
	if req.SelectionEndDate != nil {
		end = dateOnly(req.SelectionEndDate.Time)
	}
	if end.Before(start) {
		return nil, ErrWindowInvalid
	}

	fields := map[string]interface{}{}
	if !start.Equal(process.SelectionStartDate) {
		fields["selection_start_date"] = start
	}
	if !end.Equal(process.SelectionEndDate) {
		fields["selection_end_date"] = end
	}
	if len(fields) > 0 {
		fields["updated_by"] = callerID
		if err := s.repo.Selection.UpdateFields(ctx, id, fields); err != nil {
			s.logger.Error("update selection dates failed", zap.String("process_id", id), zap.Error(err))
			return nil, err
		}
		process.SelectionStartDate = start
		process.SelectionEndDate = end
	}

	return toSelectionProcessResponse(process), nil
}

// ────────────────────── turn engine ──────────────────────

// SelectSlot claims a slot for the caller's active turn. The turn check
// runs before any slot access, so a member claiming out of turn never
// touches slot data.
func (s *selectionService) SelectSlot(ctx context.Context, processID, userID string, req *dto.SelectSlotRequest) (*dto.RoutineSlotResponse, error) {
	process, err := s.getProcess(ctx, processID)
	if err != nil {
		return nil, err
	}
	if process.Status != model.ProcessStatusActive {
		return nil, ErrInvalidTransition
	}

	turn := activeTurn(process)
	if turn == nil || turn.UserID != userID {
		return nil, ErrNotYourTurn
	}

	slot, err := s.repo.RoutineSlot.GetByID(ctx, req.SlotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		s.logger.Error("lookup slot failed", zap.String("slot_id", req.SlotID), zap.Error(err))
		return nil, err
	}
	if slot.StableID != process.StableID {
		return nil, ErrSlotWrongStable
	}
	if slot.AssigneeID != nil {
		return nil, ErrSlotAlreadyAssigned
	}
	if !inWindow(process, slot.StartsAt) {
		return nil, ErrSlotOutsideWindow
	}

	if slot.FacilityID != nil {
		occupied, err := s.repo.RoutineSlot.AssignWithCapacity(ctx, slot, processID, userID)
		if err != nil {
			switch {
			case errors.Is(err, pkgerrors.ErrCapacityFull):
				return nil, s.capacityConflict(ctx, process, slot, occupied)
			case errors.Is(err, pkgerrors.ErrOptimisticLock):
				return nil, ErrSlotAlreadyAssigned
			case errors.Is(err, gorm.ErrRecordNotFound):
				return nil, ErrFacilityNotFound
			}
			s.logger.Error("assign slot failed", zap.String("slot_id", slot.SlotID), zap.Error(err))
			return nil, err
		}
	} else if err := s.repo.RoutineSlot.Assign(ctx, slot, processID, userID); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrSlotAlreadyAssigned
		}
		s.logger.Error("assign slot failed", zap.String("slot_id", slot.SlotID), zap.Error(err))
		return nil, err
	}

	turn.SelectionsCount++
	if err := s.repo.Selection.UpdateTurn(ctx, turn); err != nil {
		s.logger.Error("bump selections count failed", zap.String("turn_id", turn.TurnID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("slot selected",
		zap.String("process_id", processID),
		zap.String("slot_id", slot.SlotID),
		zap.String("user_id", userID))

	return toRoutineSlotResponse(slot), nil
}

// CompleteTurn ends the caller's active turn and activates the next one in
// order, or completes the process when the queue is exhausted.
func (s *selectionService) CompleteTurn(ctx context.Context, processID, userID string) (*dto.SelectionProcessResponse, error) {
	process, err := s.getProcess(ctx, processID)
	if err != nil {
		return nil, err
	}
	if process.Status != model.ProcessStatusActive {
		return nil, ErrInvalidTransition
	}

	turn := activeTurn(process)
	if turn == nil || turn.UserID != userID {
		return nil, ErrNotYourTurn
	}

	turn.Status = model.TurnStatusCompleted
	if err := s.repo.Selection.UpdateTurn(ctx, turn); err != nil {
		s.logger.Error("complete turn failed", zap.String("turn_id", turn.TurnID), zap.Error(err))
		return nil, err
	}

	next := nextPendingTurn(process, turn.Order)
	if next != nil {
		next.Status = model.TurnStatusActive
		if err := s.repo.Selection.UpdateTurn(ctx, next); err != nil {
			s.logger.Error("activate next turn failed", zap.String("turn_id", next.TurnID), zap.Error(err))
			return nil, err
		}
		process.CurrentTurnUserID = &next.UserID
	} else {
		process.Status = model.ProcessStatusCompleted
		process.CurrentTurnUserID = nil
	}

	process.UpdatedBy = &userID
	if err := s.repo.Selection.Update(ctx, process); err != nil {
		s.logger.Error("advance selection process failed", zap.String("process_id", processID), zap.Error(err))
		return nil, err
	}

	return toSelectionProcessResponse(process), nil
}

// AvailableSlots lists unassigned slots inside the process window.
func (s *selectionService) AvailableSlots(ctx context.Context, processID string) ([]dto.RoutineSlotResponse, error) {
	process, err := s.getProcess(ctx, processID)
	if err != nil {
		return nil, err
	}

	slots, err := s.repo.RoutineSlot.ListInRange(ctx, process.StableID,
		process.SelectionStartDate, process.SelectionEndDate.AddDate(0, 0, 1), true)
	if err != nil {
		s.logger.Error("list available slots failed", zap.String("process_id", processID), zap.Error(err))
		return nil, err
	}
	return toRoutineSlotResponses(slots), nil
}

// ────────────────────── capacity ──────────────────────

// capacityConflict builds the CapacityError returned after the
// transactional claim reported a full facility, carrying alternates with
// openings left, ordered by start time. occupied is the overlap count the
// claim observed.
func (s *selectionService) capacityConflict(ctx context.Context, process *model.SelectionProcess, slot *model.RoutineSlot, occupied int64) error {
	conflict := &CapacityError{SuggestedSlots: []dto.SuggestedSlot{}}

	facility, err := s.repo.Facility.GetByID(ctx, *slot.FacilityID)
	if err != nil {
		// the conflict still stands even if the payload cannot be enriched
		s.logger.Warn("lookup facility for conflict failed", zap.String("facility_id", *slot.FacilityID), zap.Error(err))
		return conflict
	}
	if remaining := facility.Capacity - int(occupied); remaining > 0 {
		conflict.RemainingCapacity = remaining
	}

	suggestions, err := s.suggestAlternates(ctx, process, facility, slot.SlotID)
	if err != nil {
		s.logger.Warn("suggest alternates failed", zap.String("facility_id", facility.FacilityID), zap.Error(err))
		return conflict
	}
	conflict.SuggestedSlots = suggestions
	return conflict
}

func (s *selectionService) suggestAlternates(ctx context.Context, process *model.SelectionProcess, facility *model.Facility, excludeSlotID string) ([]dto.SuggestedSlot, error) {
	slots, err := s.repo.RoutineSlot.ListInRange(ctx, process.StableID,
		process.SelectionStartDate, process.SelectionEndDate.AddDate(0, 0, 1), true)
	if err != nil {
		return nil, err
	}

	suggestions := make([]dto.SuggestedSlot, 0, maxSuggestedSlots)
	for i := range slots {
		slot := &slots[i]
		if slot.SlotID == excludeSlotID {
			continue
		}
		if slot.FacilityID == nil || *slot.FacilityID != facility.FacilityID {
			continue
		}

		occupied, err := s.repo.RoutineSlot.CountOverlappingAssigned(ctx, facility.FacilityID, slot.StartsAt, slot.EndsAt, slot.SlotID)
		if err != nil {
			return nil, err
		}
		remaining := facility.Capacity - int(occupied)
		if remaining <= 0 {
			continue
		}

		suggestions = append(suggestions, dto.SuggestedSlot{
			StartTime:         dto.FormatTimestamp(slot.StartsAt),
			EndTime:           dto.FormatTimestamp(slot.EndsAt),
			RemainingCapacity: remaining,
		})
		if len(suggestions) == maxSuggestedSlots {
			break
		}
	}

	sort.Slice(suggestions, func(i, j int) bool {
		return suggestions[i].StartTime < suggestions[j].StartTime
	})
	return suggestions, nil
}

// ── helpers ──

func (s *selectionService) getProcess(ctx context.Context, id string) (*model.SelectionProcess, error) {
	process, err := s.repo.Selection.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProcessNotFound
		}
		s.logger.Error("lookup selection process failed", zap.String("process_id", id), zap.Error(err))
		return nil, err
	}
	return process, nil
}

func activeTurn(process *model.SelectionProcess) *model.SelectionTurn {
	for i := range process.Turns {
		if process.Turns[i].Status == model.TurnStatusActive {
			return &process.Turns[i]
		}
	}
	return nil
}

func nextPendingTurn(process *model.SelectionProcess, afterOrder int) *model.SelectionTurn {
	var next *model.SelectionTurn
	for i := range process.Turns {
		t := &process.Turns[i]
		if t.Status != model.TurnStatusPending || t.Order <= afterOrder {
			continue
		}
		if next == nil || t.Order < next.Order {
			next = t
		}
	}
	return next
}

func inWindow(process *model.SelectionProcess, at time.Time) bool {
	windowEnd := process.SelectionEndDate.AddDate(0, 0, 1)
	return !at.Before(process.SelectionStartDate) && at.Before(windowEnd)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func toSelectionProcessResponse(process *model.SelectionProcess) *dto.SelectionProcessResponse {
	turns := make([]dto.TurnResponse, 0, len(process.Turns))
	for _, t := range process.Turns {
		turns = append(turns, dto.TurnResponse{
			UserID:          t.UserID,
			UserName:        t.UserName,
			Order:           t.Order,
			Status:          t.Status,
			SelectionsCount: t.SelectionsCount,
		})
	}

	return &dto.SelectionProcessResponse{
		ID:                 process.ProcessID,
		StableID:           process.StableID,
		Name:               process.Name,
		Status:             process.Status,
		Algorithm:          process.Algorithm,
		SelectionStartDate: dto.FormatDate(process.SelectionStartDate),
		SelectionEndDate:   dto.FormatDate(process.SelectionEndDate),
		CurrentTurnUserID:  process.CurrentTurnUserID,
		Turns:              turns,
	}
}
