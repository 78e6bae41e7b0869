package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/maxton76/stall-bokning-sub008/internal/service"
	"github.com/maxton76/stall-bokning-sub008/pkg/response"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"
)

// ExportHandler handles the download endpoints.
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates an ExportHandler.
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportProcess downloads a selection process as an Excel workbook.
// GET /api/v1/export/selection-processes/:id
func (h *ExportHandler) ExportProcess(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "process id required")
		return
	}

	buf, filename, err := h.exportSvc.ExportProcessXLSX(c.Request.Context(), id)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeDownload(c, filename, xlsxContentType, buf.Bytes())
}

// ExportMyCalendar downloads the caller's claimed slots as an .ics file.
// GET /api/v1/export/calendar
func (h *ExportHandler) ExportMyCalendar(c *gin.Context) {
	stableID, ok := MustGetStableID(c)
	if !ok {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportMemberCalendar(c.Request.Context(), stableID, userID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeDownload(c, filename, icsContentType, buf.Bytes())
}

func writeDownload(c *gin.Context, filename, contentType string, data []byte) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, data)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProcessNotFound):
		response.NotFound(c, 16002, "selection process not found")
	case errors.Is(err, service.ErrExportNoSlots):
		response.NotFound(c, 17001, "no assigned slots to export")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
