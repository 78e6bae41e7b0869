package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/maxton76/stall-bokning-sub008/internal/dto"
	"github.com/maxton76/stall-bokning-sub008/internal/service"
	"github.com/maxton76/stall-bokning-sub008/pkg/response"
)

// SelectionHandler handles the selection process endpoints.
type SelectionHandler struct {
	selectionSvc service.SelectionService
}

// NewSelectionHandler creates a SelectionHandler.
func NewSelectionHandler(selectionSvc service.SelectionService) *SelectionHandler {
	return &SelectionHandler{selectionSvc: selectionSvc}
}

// CreateProcess creates a draft selection process.
// POST /api/v1/selection-processes
func (h *SelectionHandler) CreateProcess(c *gin.Context) {
	stableID, ok := MustGetStableID(c)
	if !ok {
		return
	}

	var req dto.CreateSelectionProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	process, err := h.selectionSvc.Create(c.Request.Context(), stableID, &req, callerID)
	if err != nil {
		h.handleSelectionError(c, err)
		return
	}

	response.Created(c, process)
}

// ListProcesses lists the scoped stable's processes.
// GET /api/v1/selection-processes
func (h *SelectionHandler) ListProcesses(c *gin.Context) {
	stableID, ok := MustGetStableID(c)
	if !ok {
		return
	}

	processes, err := h.selectionSvc.ListByStable(c.Request.Context(), stableID)
	if err != nil {
		h.handleSelectionError(c, err)
		return
	}

	response.OK(c, gin.H{"list": processes})
}

// GetProcess returns one process with its turn queue.
// GET /api/v1/selection-processes/:id
func (h *SelectionHandler) GetProcess(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "process id required")
		return
	}

	process, err := h.selectionSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleSelectionError(c, err)
		return
	}

	response.OK(c, process)
}

// StartProcess activates a draft process and its first turn.
// POST /api/v1/selection-processes/:id/start
func (h *SelectionHandler) StartProcess(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "process id required")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	process, err := h.selectionSvc.Start(c.Request.Context(), id, callerID)
	if err != nil {
		h.handleSelectionError(c, err)
		return
	}

	response.OK(c, process)
}

// SelectSlot claims a slot for the caller's active turn. A capacity
// conflict comes back as 409 with remaining capacity and suggested
// alternates in data.
// POST /api/v1/selection-processes/:id/select
func (h *SelectionHandler) SelectSlot(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "process id required")
		return
	}

	var req dto.SelectSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	slot, err := h.selectionSvc.SelectSlot(c.Request.Context(), id, userID, &req)
	if err != nil {
		var capErr *service.CapacityError
		if errors.As(err, &capErr) {
			response.ConflictWithData(c, 16001, "facility capacity exceeded", dto.CapacityConflictResponse{
				Message:           capErr.Error(),
				RemainingCapacity: capErr.RemainingCapacity,
				SuggestedSlots:    capErr.SuggestedSlots,
			})
			return
		}
		h.handleSelectionError(c, err)
		return
	}

	response.OK(c, slot)
}

// CompleteTurn ends the caller's turn, advancing to the next member.
// POST /api/v1/selection-processes/:id/complete-turn
func (h *SelectionHandler) CompleteTurn(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "process id required")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	process, err := h.selectionSvc.CompleteTurn(c.Request.Context(), id, userID)
	if err != nil {
		h.handleSelectionError(c, err)
		return
	}

	response.OK(c, process)
}

// ListAvailableSlots lists unassigned slots inside the process window.
// GET /api/v1/selection-processes/:id/available-slots
func (h *SelectionHandler) ListAvailableSlots(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "process id required")
		return
	}

	slots, err := h.selectionSvc.AvailableSlots(c.Request.Context(), id)
	if err != nil {
		h.handleSelectionError(c, err)
		return
	}

	response.OK(c, gin.H{"list": slots})
}

// UpdateDates changes the selection window.
// PATCH /api/v1/selection-processes/:id/dates
func (h *SelectionHandler) UpdateDates(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "process id required")
		return
	}

	var req dto.UpdateDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	process, err := h.selectionSvc.UpdateDates(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleSelectionError(c, err)
		return
	}

	response.OK(c, process)
}

// CancelProcess cancels an active process.
// POST /api/v1/selection-processes/:id/cancel
func (h *SelectionHandler) CancelProcess(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "process id required")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	process, err := h.selectionSvc.Cancel(c.Request.Context(), id, callerID)
	if err != nil {
		h.handleSelectionError(c, err)
		return
	}

	response.OK(c, process)
}

// DeleteProcess soft-deletes a non-active process.
// DELETE /api/v1/selection-processes/:id
func (h *SelectionHandler) DeleteProcess(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "process id required")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.selectionSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleSelectionError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *SelectionHandler) handleSelectionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProcessNotFound):
		response.NotFound(c, 16002, "selection process not found")
	case errors.Is(err, service.ErrInvalidTransition):
		response.Conflict(c, 16003, "operation not allowed in the current status")
	case errors.Is(err, service.ErrNotYourTurn):
		response.Forbidden(c, 16004, "it is not your turn")
	case errors.Is(err, service.ErrSlotAlreadyAssigned):
		response.Conflict(c, 16005, "slot is already assigned")
	case errors.Is(err, service.ErrSlotOutsideWindow):
		response.BadRequest(c, 16006, "slot is outside the selection window")
	case errors.Is(err, service.ErrSlotWrongStable):
		response.Forbidden(c, 16007, "slot belongs to a different stable")
	case errors.Is(err, service.ErrWindowInvalid):
		response.BadRequest(c, 16008, "selection window must end on or after it starts")
	case errors.Is(err, service.ErrParticipantNotMember):
		response.BadRequest(c, 16009, "participant is not a stable member")
	case errors.Is(err, service.ErrNoParticipants):
		response.BadRequest(c, 16010, "process needs at least one participant")
	case errors.Is(err, service.ErrSlotNotFound):
		response.NotFound(c, 15001, "routine slot not found")
	case errors.Is(err, service.ErrFacilityNotFound):
		response.NotFound(c, 13001, "facility not found")
	default:
		response.InternalError(c)
	}
}
