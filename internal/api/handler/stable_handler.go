package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/maxton76/stall-bokning-sub008/internal/dto"
	"github.com/maxton76/stall-bokning-sub008/internal/service"
	"github.com/maxton76/stall-bokning-sub008/pkg/response"
)

// StableHandler handles the tenant endpoints and the context aggregate.
type StableHandler struct {
	stableSvc  service.StableService
	contextSvc service.ContextService
}

// NewStableHandler creates a StableHandler.
func NewStableHandler(stableSvc service.StableService, contextSvc service.ContextService) *StableHandler {
	return &StableHandler{stableSvc: stableSvc, contextSvc: contextSvc}
}

// CreateStable creates a stable with the caller as admin.
// POST /api/v1/stables
func (h *StableHandler) CreateStable(c *gin.Context) {
	var req dto.CreateStableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	stable, err := h.stableSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleStableError(c, err)
		return
	}

	response.Created(c, stable)
}

// GetCurrentStable returns the stable the token is scoped to.
// GET /api/v1/stables/current
func (h *StableHandler) GetCurrentStable(c *gin.Context) {
	stableID, ok := MustGetStableID(c)
	if !ok {
		return
	}

	stable, err := h.stableSvc.GetByID(c.Request.Context(), stableID)
	if err != nil {
		h.handleStableError(c, err)
		return
	}

	response.OK(c, stable)
}

// UpdateCurrentStable updates the scoped stable.
// PUT /api/v1/stables/current
func (h *StableHandler) UpdateCurrentStable(c *gin.Context) {
	stableID, ok := MustGetStableID(c)
	if !ok {
		return
	}

	var req dto.UpdateStableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	stable, err := h.stableSvc.Update(c.Request.Context(), stableID, &req, callerID)
	if err != nil {
		h.handleStableError(c, err)
		return
	}

	response.OK(c, stable)
}

// ListMembers lists the scoped stable's members.
// GET /api/v1/stables/current/members
func (h *StableHandler) ListMembers(c *gin.Context) {
	stableID, ok := MustGetStableID(c)
	if !ok {
		return
	}

	members, err := h.stableSvc.ListMembers(c.Request.Context(), stableID)
	if err != nil {
		h.handleStableError(c, err)
		return
	}

	response.OK(c, gin.H{"list": members})
}

// GenerateInvite creates an invite code for the scoped stable.
// POST /api/v1/stables/current/invites
func (h *StableHandler) GenerateInvite(c *gin.Context) {
	stableID, ok := MustGetStableID(c)
	if !ok {
		return
	}

	var req dto.GenerateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	invite, err := h.stableSvc.GenerateInvite(c.Request.Context(), stableID, &req, callerID)
	if err != nil {
		h.handleStableError(c, err)
		return
	}

	response.Created(c, invite)
}

// GetContext returns the aggregated stable context for the caller.
// GET /api/v1/stables/current/context
func (h *StableHandler) GetContext(c *gin.Context) {
	stableID, ok := MustGetStableID(c)
	if !ok {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	ctx, err := h.contextSvc.GetStableContext(c.Request.Context(), stableID, userID)
	if err != nil {
		h.handleStableError(c, err)
		return
	}

	response.OK(c, ctx)
}

// SetToggle upserts a feature toggle for the scoped stable.
// PUT /api/v1/stables/current/toggles/:key
func (h *StableHandler) SetToggle(c *gin.Context) {
	stableID, ok := MustGetStableID(c)
	if !ok {
		return
	}

	key := c.Param("key")
	if key == "" {
		response.BadRequest(c, 10001, "toggle key required")
		return
	}

	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	if err := h.contextSvc.SetToggle(c.Request.Context(), &stableID, key, req.Enabled); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

func (h *StableHandler) handleStableError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStableNotFound):
		response.NotFound(c, 12001, "stable not found")
	case errors.Is(err, service.ErrNotAMember):
		response.Forbidden(c, 12002, "not a member of this stable")
	default:
		response.InternalError(c)
	}
}
