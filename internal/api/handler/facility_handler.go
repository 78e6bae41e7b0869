package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/maxton76/stall-bokning-sub008/internal/dto"
	"github.com/maxton76/stall-bokning-sub008/internal/service"
	"github.com/maxton76/stall-bokning-sub008/pkg/response"
)

// FacilityHandler handles the facility endpoints, including availability
// schedule management and resolution.
type FacilityHandler struct {
	facilitySvc service.FacilityService
}

// NewFacilityHandler creates a FacilityHandler.
func NewFacilityHandler(facilitySvc service.FacilityService) *FacilityHandler {
	return &FacilityHandler{facilitySvc: facilitySvc}
}

// CreateFacility creates a facility in the scoped stable.
// POST /api/v1/facilities
func (h *FacilityHandler) CreateFacility(c *gin.Context) {
	stableID, ok := MustGetStableID(c)
	if !ok {
		return
	}

	var req dto.CreateFacilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	facility, err := h.facilitySvc.Create(c.Request.Context(), stableID, &req, callerID)
	if err != nil {
		h.handleFacilityError(c, err)
		return
	}

	response.Created(c, facility)
}

// ListFacilities lists the scoped stable's facilities.
// GET /api/v1/facilities
func (h *FacilityHandler) ListFacilities(c *gin.Context) {
	stableID, ok := MustGetStableID(c)
	if !ok {
		return
	}

	facilities, err := h.facilitySvc.ListByStable(c.Request.Context(), stableID)
	if err != nil {
		h.handleFacilityError(c, err)
		return
	}

	response.OK(c, gin.H{"list": facilities})
}

// GetFacility returns one facility.
// GET /api/v1/facilities/:id
func (h *FacilityHandler) GetFacility(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "facility id required")
		return
	}

	facility, err := h.facilitySvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleFacilityError(c, err)
		return
	}

	response.OK(c, facility)
}

// UpdateFacility updates facility fields.
// PUT /api/v1/facilities/:id
func (h *FacilityHandler) UpdateFacility(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "facility id required")
		return
	}

	var req dto.UpdateFacilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	facility, err := h.facilitySvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleFacilityError(c, err)
		return
	}

	response.OK(c, facility)
}

// DeleteFacility soft-deletes a facility.
// DELETE /api/v1/facilities/:id
func (h *FacilityHandler) DeleteFacility(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "facility id required")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.facilitySvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleFacilityError(c, err)
		return
	}

	response.OK(c, nil)
}

// UpdateAvailability replaces the facility's layered schedule. Validation
// findings come back as a 400 with the full issue list in data.
// PUT /api/v1/facilities/:id/availability
func (h *FacilityHandler) UpdateAvailability(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "facility id required")
		return
	}

	var req dto.UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	issues, facility, err := h.facilitySvc.UpdateAvailability(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleFacilityError(c, err)
		return
	}
	if len(issues) > 0 {
		response.BadRequestWithData(c, 13002, "schedule validation failed", gin.H{"issues": issues})
		return
	}

	response.OK(c, facility)
}

// MigrateAvailability upgrades a flat legacy availability to the layered
// schedule form.
// POST /api/v1/facilities/:id/availability/migrate
func (h *FacilityHandler) MigrateAvailability(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "facility id required")
		return
	}

	var req dto.MigrateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	issues, facility, err := h.facilitySvc.MigrateAvailability(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleFacilityError(c, err)
		return
	}
	if len(issues) > 0 {
		response.BadRequestWithData(c, 13002, "schedule validation failed", gin.H{"issues": issues})
		return
	}

	response.OK(c, facility)
}

// GetEffectiveBlocks resolves the open time blocks for one date.
// GET /api/v1/facilities/:id/availability/effective?date=YYYY-MM-DD
func (h *FacilityHandler) GetEffectiveBlocks(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "facility id required")
		return
	}

	var query dto.EffectiveBlocksQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, 10001, "date query parameter required")
		return
	}

	blocks, err := h.facilitySvc.EffectiveBlocks(c.Request.Context(), id, query.Date)
	if err != nil {
		h.handleFacilityError(c, err)
		return
	}

	response.OK(c, blocks)
}

// CheckRange reports whether a time range fits the resolved blocks.
// GET /api/v1/facilities/:id/availability/check?date=...&from=...&to=...
func (h *FacilityHandler) CheckRange(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "facility id required")
		return
	}

	var query dto.RangeCheckQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, 10001, "date, from and to query parameters required")
		return
	}

	result, err := h.facilitySvc.CheckRange(c.Request.Context(), id, query.Date, query.From, query.To)
	if err != nil {
		h.handleFacilityError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *FacilityHandler) handleFacilityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrFacilityNotFound):
		response.NotFound(c, 13001, "facility not found")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 13003, "date must be YYYY-MM-DD")
	case errors.Is(err, service.ErrNoAvailability):
		response.NotFound(c, 13004, "facility has no availability schedule")
	default:
		response.InternalError(c)
	}
}
