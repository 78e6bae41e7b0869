package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/maxton76/stall-bokning-sub008/internal/model"
	"github.com/maxton76/stall-bokning-sub008/internal/repository"
)

func setupExportFixture(t *testing.T) (ExportService, *repository.Repository, *mockRoutineSlotRepo, *mockSelectionRepo) {
	t.Helper()
	repo, _, _, _, slots, selections, _ := newTestRepository()
	return NewExportService(repo, zap.NewNop()), repo, slots, selections
}

func seedExportProcess(t *testing.T, selections *mockSelectionRepo, slots *mockRoutineSlotRepo) string {
	t.Helper()
	ctx := context.Background()

	process := &model.SelectionProcess{
		ProcessID:          "process-1",
		StableID:           "stable-1",
		Name:               "Spring rotation",
		Status:             model.ProcessStatusCompleted,
		Algorithm:          "round_robin",
		SelectionStartDate: utc("2026-03-02T00:00:00Z"),
		SelectionEndDate:   utc("2026-03-08T00:00:00Z"),
		Turns: []model.SelectionTurn{
			{UserID: "anna", UserName: "Anna", Order: 1, Status: model.TurnStatusCompleted, SelectionsCount: 1},
			{UserID: "bjorn", UserName: "Björn", Order: 2, Status: model.TurnStatusCompleted},
		},
	}
	if err := selections.Create(ctx, process); err != nil {
		t.Fatalf("seed process: %v", err)
	}

	anna := "anna"
	processID := "process-1"
	if err := slots.Create(ctx, &model.RoutineSlot{
		SlotID:             "slot-1",
		StableID:           "stable-1",
		Title:              "Morning feed",
		StartsAt:           utc("2026-03-03T07:00:00Z"),
		EndsAt:             utc("2026-03-03T08:00:00Z"),
		AssigneeID:         &anna,
		SelectionProcessID: &processID,
	}); err != nil {
		t.Fatalf("seed slot: %v", err)
	}

	return process.ProcessID
}

func TestExportService_ExportProcessXLSX_Success(t *testing.T) {
	svc, _, slots, selections := setupExportFixture(t)
	processID := seedExportProcess(t, selections, slots)

	buf, filename, err := svc.ExportProcessXLSX(context.Background(), processID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if buf == nil || buf.Len() == 0 {
		t.Error("expected a non-empty workbook")
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("expected .xlsx filename, got %s", filename)
	}
}

func TestExportService_ExportProcessXLSX_NotFound(t *testing.T) {
	svc, _, _, _ := setupExportFixture(t)

	_, _, err := svc.ExportProcessXLSX(context.Background(), "ghost")
	if !errors.Is(err, ErrProcessNotFound) {
		t.Errorf("expected ErrProcessNotFound, got %v", err)
	}
}

func TestExportService_ExportMemberCalendar_Success(t *testing.T) {
	svc, _, slots, selections := setupExportFixture(t)
	seedExportProcess(t, selections, slots)

	buf, filename, err := svc.ExportMemberCalendar(context.Background(), "stable-1", "anna")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if filename != "routine_slots.ics" {
		t.Errorf("unexpected filename %s", filename)
	}

	content := buf.String()
	if !strings.Contains(content, "BEGIN:VCALENDAR") {
		t.Error("expected an iCalendar document")
	}
	if !strings.Contains(content, "Morning feed") {
		t.Error("expected the claimed slot summary")
	}
}

func TestExportService_ExportMemberCalendar_NoSlots(t *testing.T) {
	svc, _, _, _ := setupExportFixture(t)

	_, _, err := svc.ExportMemberCalendar(context.Background(), "stable-1", "anna")
	if !errors.Is(err, ErrExportNoSlots) {
		t.Errorf("expected ErrExportNoSlots, got %v", err)
	}
}
