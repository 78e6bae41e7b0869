package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/maxton76/stall-bokning-sub008/internal/dto"
	"github.com/maxton76/stall-bokning-sub008/internal/service"
	"github.com/maxton76/stall-bokning-sub008/pkg/response"
)

// RoutineSlotHandler handles the routine slot endpoints.
type RoutineSlotHandler struct {
	routineSvc service.RoutineService
}

// NewRoutineSlotHandler creates a RoutineSlotHandler.
func NewRoutineSlotHandler(routineSvc service.RoutineService) *RoutineSlotHandler {
	return &RoutineSlotHandler{routineSvc: routineSvc}
}

// CreateSlot schedules a routine slot in the scoped stable.
// POST /api/v1/routine-slots
func (h *RoutineSlotHandler) CreateSlot(c *gin.Context) {
	stableID, ok := MustGetStableID(c)
	if !ok {
		return
	}

	var req dto.CreateRoutineSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	slot, err := h.routineSvc.Create(c.Request.Context(), stableID, &req, callerID)
	if err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.Created(c, slot)
}

// ListSlots lists slots in a date window, optionally unassigned only.
// GET /api/v1/routine-slots?from=...&to=...&unassigned=true
func (h *RoutineSlotHandler) ListSlots(c *gin.Context) {
	stableID, ok := MustGetStableID(c)
	if !ok {
		return
	}

	var req dto.RoutineSlotListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "from and to query parameters required")
		return
	}

	slots, err := h.routineSvc.ListInRange(c.Request.Context(), stableID, &req)
	if err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.OK(c, gin.H{"list": slots})
}

// ListMySlots lists the caller's claimed slots.
// GET /api/v1/routine-slots/mine
func (h *RoutineSlotHandler) ListMySlots(c *gin.Context) {
	stableID, ok := MustGetStableID(c)
	if !ok {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	slots, err := h.routineSvc.ListByAssignee(c.Request.Context(), stableID, userID)
	if err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.OK(c, gin.H{"list": slots})
}

// GetSlot returns one slot.
// GET /api/v1/routine-slots/:id
func (h *RoutineSlotHandler) GetSlot(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "slot id required")
		return
	}

	slot, err := h.routineSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.OK(c, slot)
}

// UpdateSlot updates slot fields.
// PUT /api/v1/routine-slots/:id
func (h *RoutineSlotHandler) UpdateSlot(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "slot id required")
		return
	}

	var req dto.UpdateRoutineSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	slot, err := h.routineSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.OK(c, slot)
}

// DeleteSlot removes an unassigned slot.
// DELETE /api/v1/routine-slots/:id
func (h *RoutineSlotHandler) DeleteSlot(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "slot id required")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.routineSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *RoutineSlotHandler) handleSlotError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSlotNotFound):
		response.NotFound(c, 15001, "routine slot not found")
	case errors.Is(err, service.ErrSlotTimesInvalid):
		response.BadRequest(c, 15002, "slot must end after it starts")
	case errors.Is(err, service.ErrSlotAssigned):
		response.Conflict(c, 15003, "slot is already assigned")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 13003, "date must be YYYY-MM-DD")
	default:
		response.InternalError(c)
	}
}
