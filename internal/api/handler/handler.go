package handler

import "github.com/maxton76/stall-bokning-sub008/internal/service"

// Handler aggregates all handlers.
type Handler struct {
	Auth      *AuthHandler
	Stable    *StableHandler
	Facility  *FacilityHandler
	Routine   *RoutineSlotHandler
	Selection *SelectionHandler
	Export    *ExportHandler
}

// NewHandler creates the handler aggregate.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(svc.Auth),
		Stable:    NewStableHandler(svc.Stable, svc.Context),
		Facility:  NewFacilityHandler(svc.Facility),
		Routine:   NewRoutineSlotHandler(svc.Routine),
		Selection: NewSelectionHandler(svc.Selection),
		Export:    NewExportHandler(svc.Export),
	}
}
