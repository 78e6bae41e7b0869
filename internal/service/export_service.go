package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/maxton76/stall-bokning-sub008/internal/repository"
)

// ── export module errors ──

var (
	ErrExportNoSlots      = errors.New("no assigned slots to export")
	ErrExportGenerateFail = errors.New("failed to generate export file")
)

// ExportService produces downloadable artifacts. The Excel export gives an
// admin the full outcome of a selection process; the calendar export gives
// a member their claimed slots as an .ics feed. Both return a buffer plus a
// suggested filename; the handler sets the HTTP headers and streams it.
type ExportService interface {
	ExportProcessXLSX(ctx context.Context, processID string) (*bytes.Buffer, string, error)
	ExportMemberCalendar(ctx context.Context, stableID, userID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService creates an ExportService.
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ExportProcessXLSX renders a selection process as a workbook. One row per
// turn in queue order, then one row per slot claimed through the process.
func (s *exportService) ExportProcessXLSX(ctx context.Context, processID string) (*bytes.Buffer, string, error) {
	process, err := s.repo.Selection.GetByID(ctx, processID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrProcessNotFound
		}
		s.logger.Error("lookup selection process failed", zap.Error(err))
		return nil, "", err
	}

	slots, err := s.repo.RoutineSlot.ListInRange(ctx, process.StableID,
		process.SelectionStartDate, process.SelectionEndDate.AddDate(0, 0, 1), false)
	if err != nil {
		s.logger.Error("list slots for export failed", zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Selection"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 8)
	f.SetColWidth(sheetName, "B", "B", 24)
	f.SetColWidth(sheetName, "C", "C", 14)
	f.SetColWidth(sheetName, "D", "D", 12)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s (%s to %s)",
		process.Name,
		process.SelectionStartDate.Format("2006-01-02"),
		process.SelectionEndDate.Format("2006-01-02")))
	f.MergeCell(sheetName, "A1", "D1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	row := 2
	f.SetCellValue(sheetName, cell("A", row), "Order")
	f.SetCellValue(sheetName, cell("B", row), "Member")
	f.SetCellValue(sheetName, cell("C", row), "Status")
	f.SetCellValue(sheetName, cell("D", row), "Selections")
	row++

	for _, t := range process.Turns {
		f.SetCellValue(sheetName, cell("A", row), t.Order)
		f.SetCellValue(sheetName, cell("B", row), t.UserName)
		f.SetCellValue(sheetName, cell("C", row), t.Status)
		f.SetCellValue(sheetName, cell("D", row), t.SelectionsCount)
		row++
	}

	// claimed-slot section below the queue
	row++
	f.SetCellValue(sheetName, cell("A", row), "Slot")
	f.SetCellValue(sheetName, cell("B", row), "Starts")
	f.SetCellValue(sheetName, cell("C", row), "Ends")
	f.SetCellValue(sheetName, cell("D", row), "Assignee")
	row++

	nameByID := make(map[string]string, len(process.Turns))
	for _, t := range process.Turns {
		nameByID[t.UserID] = t.UserName
	}

	for i := range slots {
		slot := &slots[i]
		if slot.SelectionProcessID == nil || *slot.SelectionProcessID != process.ProcessID {
			continue
		}
		assignee := "-"
		if slot.AssigneeID != nil {
			if name, ok := nameByID[*slot.AssigneeID]; ok {
				assignee = name
			} else {
				assignee = *slot.AssigneeID
			}
		}
		f.SetCellValue(sheetName, cell("A", row), slot.Title)
		f.SetCellValue(sheetName, cell("B", row), slot.StartsAt.Format("2006-01-02 15:04"))
		f.SetCellValue(sheetName, cell("C", row), slot.EndsAt.Format("2006-01-02 15:04"))
		f.SetCellValue(sheetName, cell("D", row), assignee)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write workbook failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("selection_%s.xlsx", process.SelectionStartDate.Format("2006-01-02"))
	return buf, filename, nil
}

// ExportMemberCalendar renders a member's claimed slots as an iCalendar
// file, importable into any calendar client.
func (s *exportService) ExportMemberCalendar(ctx context.Context, stableID, userID string) (*bytes.Buffer, string, error) {
	slots, err := s.repo.RoutineSlot.ListByAssignee(ctx, stableID, userID)
	if err != nil {
		s.logger.Error("list assigned slots failed", zap.Error(err))
		return nil, "", err
	}
	if len(slots) == 0 {
		return nil, "", ErrExportNoSlots
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//stall-bokning//routine-slots//EN")

	for i := range slots {
		slot := &slots[i]
		ev := cal.AddEvent(slot.SlotID + "@stall-bokning")
		ev.SetCreatedTime(slot.CreatedAt)
		ev.SetDtStampTime(slot.UpdatedAt)
		ev.SetStartAt(slot.StartsAt)
		ev.SetEndAt(slot.EndsAt)
		ev.SetSummary(slot.Title)
		if slot.Facility != nil {
			ev.SetLocation(slot.Facility.Name)
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())
	return buf, "routine_slots.ics", nil
}

// ── helpers ──

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
