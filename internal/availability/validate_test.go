package availability

import "testing"

func hasIssue(issues []Issue, kind IssueKind) bool {
	for _, i := range issues {
		if i.Kind == kind {
			return true
		}
	}
	return false
}

// ── ValidateTimeBlocks ──

func TestValidateTimeBlocks_Valid(t *testing.T) {
	issues := ValidateTimeBlocks([]TimeBlock{{From: "08:00", To: "12:00"}}, 0)
	if len(issues) != 0 {
		t.Errorf("valid block set should produce no issues, got %v", issues)
	}
}

func TestValidateTimeBlocks_TooMany(t *testing.T) {
	blocks := []TimeBlock{
		{From: "06:00", To: "07:00"},
		{From: "08:00", To: "09:00"},
		{From: "10:00", To: "11:00"},
	}
	issues := ValidateTimeBlocks(blocks, 2)
	if len(issues) != 1 || issues[0].Kind != IssueTooManyBlocks {
		t.Errorf("expected single too_many_blocks issue, got %v", issues)
	}
}

func TestValidateTimeBlocks_InvalidFormat(t *testing.T) {
	issues := ValidateTimeBlocks([]TimeBlock{{From: "8:00", To: "12:00"}}, 0)
	if !hasIssue(issues, IssueInvalidTimeFormat) {
		t.Errorf("expected invalid_time_format, got %v", issues)
	}
}

func TestValidateTimeBlocks_FromBeforeTo(t *testing.T) {
	issues := ValidateTimeBlocks([]TimeBlock{{From: "12:00", To: "08:00"}}, 0)
	if !hasIssue(issues, IssueFromBeforeTo) {
		t.Errorf("expected from_before_to, got %v", issues)
	}

	// zero-length is equally invalid
	issues = ValidateTimeBlocks([]TimeBlock{{From: "08:00", To: "08:00"}}, 0)
	if !hasIssue(issues, IssueFromBeforeTo) {
		t.Errorf("expected from_before_to for zero-length block, got %v", issues)
	}
}

func TestValidateTimeBlocks_Overlap(t *testing.T) {
	blocks := []TimeBlock{
		{From: "08:00", To: "12:00"},
		{From: "11:00", To: "14:00"},
	}
	issues := ValidateTimeBlocks(blocks, 0)
	if !hasIssue(issues, IssueOverlappingBlocks) {
		t.Errorf("expected overlapping_blocks, got %v", issues)
	}
}

func TestValidateTimeBlocks_AdjacentBlocksAllowed(t *testing.T) {
	blocks := []TimeBlock{
		{From: "08:00", To: "12:00"},
		{From: "12:00", To: "14:00"},
	}
	if issues := ValidateTimeBlocks(blocks, 0); len(issues) != 0 {
		t.Errorf("adjacent blocks must not count as overlapping, got %v", issues)
	}
}

// One category per call: a set that is both malformed and overlapping
// reports only the higher-priority category.
func TestValidateTimeBlocks_ShortCircuit(t *testing.T) {
	blocks := []TimeBlock{
		{From: "8:00", To: "12:00"},
		{From: "11:00", To: "14:00"},
	}
	issues := ValidateTimeBlocks(blocks, 0)
	if !hasIssue(issues, IssueInvalidTimeFormat) {
		t.Errorf("expected invalid_time_format first, got %v", issues)
	}
	if hasIssue(issues, IssueOverlappingBlocks) {
		t.Errorf("overlap must not be reported alongside format issues, got %v", issues)
	}
}

// ── ValidateSchedule ──

func TestValidateSchedule_Valid(t *testing.T) {
	if issues := ValidateSchedule(testSchedule()); len(issues) != 0 {
		t.Errorf("valid schedule should produce no issues, got %v", issues)
	}
}

func TestValidateSchedule_DefaultBlocksRequired(t *testing.T) {
	s := testSchedule()
	s.WeeklySchedule.DefaultTimeBlocks = nil
	issues := ValidateSchedule(s)
	if !hasIssue(issues, IssueDefaultBlocksRequired) {
		t.Errorf("expected default_blocks_required, got %v", issues)
	}
}

func TestValidateSchedule_NoDayAvailable(t *testing.T) {
	days := make(map[string]DaySchedule)
	for _, name := range DayNames {
		days[name] = DaySchedule{Available: false}
	}
	s := Schedule{WeeklySchedule: WeeklySchedule{
		DefaultTimeBlocks: []TimeBlock{{From: "08:00", To: "20:00"}},
		Days:              days,
	}}
	issues := ValidateSchedule(s)
	if !hasIssue(issues, IssueNoDayAvailable) {
		t.Errorf("expected no_day_available, got %v", issues)
	}
}

func TestValidateSchedule_DayIssueTaggedWithDayName(t *testing.T) {
	s := testSchedule()
	s.WeeklySchedule.Days["wednesday"] = DaySchedule{
		Available:  true,
		TimeBlocks: []TimeBlock{{From: "18:00", To: "09:00"}},
	}
	issues := ValidateSchedule(s)
	found := false
	for _, i := range issues {
		if i.Kind == IssueFromBeforeTo && i.Field == "wednesday" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected from_before_to tagged wednesday, got %v", issues)
	}
}

func TestValidateSchedule_ExceptionChecks(t *testing.T) {
	s := testSchedule()
	s.Exceptions = []ScheduleException{
		{Date: "not-a-date", Type: ExceptionClosed},
		{Date: "2026-03-01", Type: ExceptionClosed, TimeBlocks: []TimeBlock{{From: "08:00", To: "09:00"}}},
		{Date: "2026-03-02", Type: ExceptionModified},
		{Date: "2026-03-02", Type: ExceptionModified, TimeBlocks: []TimeBlock{{From: "08:00", To: "09:00"}}},
		{Date: "2026-03-03", Type: "holiday"},
	}
	issues := ValidateSchedule(s)

	for _, kind := range []IssueKind{
		IssueInvalidExceptionDate,
		IssueClosedExceptionBlocks,
		IssueModifiedExceptionEmpty,
		IssueDuplicateExceptionDate,
		IssueInvalidExceptionType,
	} {
		if !hasIssue(issues, kind) {
			t.Errorf("expected %s in aggregate findings, got %v", kind, issues)
		}
	}
}

func TestValidateSchedule_TooManyExceptions(t *testing.T) {
	s := testSchedule()
	s.Exceptions = nil
	for i := 0; i < MaxExceptions+1; i++ {
		// dates beyond a real calendar year are fine for the count check
		s.Exceptions = append(s.Exceptions, ScheduleException{
			Date: "2026-01-01", Type: ExceptionClosed,
		})
	}
	issues := ValidateSchedule(s)
	if !hasIssue(issues, IssueTooManyExceptions) {
		t.Errorf("expected too_many_exceptions, got %v", issues)
	}
}

// ── MigrateLegacy ──

func TestMigrateLegacy(t *testing.T) {
	legacy := LegacyAvailability{
		AvailableFrom: "07:00",
		AvailableTo:   "21:00",
		DaysAvailable: map[string]bool{
			"monday": true,
			"sunday": false,
		},
	}

	s := MigrateLegacy(legacy)

	if len(s.WeeklySchedule.DefaultTimeBlocks) != 1 {
		t.Fatalf("expected one default block, got %v", s.WeeklySchedule.DefaultTimeBlocks)
	}
	b := s.WeeklySchedule.DefaultTimeBlocks[0]
	if b.From != "07:00" || b.To != "21:00" {
		t.Errorf("default block should carry the legacy range, got %v", b)
	}

	mon, ok := s.WeeklySchedule.Days["monday"]
	if !ok || !mon.Available || len(mon.TimeBlocks) != 0 {
		t.Errorf("monday should be available with no custom blocks, got %v", mon)
	}
	sun, ok := s.WeeklySchedule.Days["sunday"]
	if !ok || sun.Available {
		t.Errorf("sunday should be unavailable, got %v", sun)
	}
	if _, ok := s.WeeklySchedule.Days["tuesday"]; ok {
		t.Error("days absent from the legacy shape should stay absent")
	}

	// migrated schedules validate cleanly
	if issues := ValidateSchedule(s); len(issues) != 0 {
		t.Errorf("migrated schedule should be valid, got %v", issues)
	}
}
