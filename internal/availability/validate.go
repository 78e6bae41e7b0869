package availability

import (
	"sort"
	"time"
)

// IssueKind tags one category of validation finding.
type IssueKind string

const (
	IssueTooManyBlocks     IssueKind = "too_many_blocks"
	IssueInvalidTimeFormat IssueKind = "invalid_time_format"
	IssueFromBeforeTo      IssueKind = "from_before_to"
	IssueOverlappingBlocks IssueKind = "overlapping_blocks"

	IssueDefaultBlocksRequired   IssueKind = "default_blocks_required"
	IssueNoDayAvailable          IssueKind = "no_day_available"
	IssueTooManyExceptions       IssueKind = "too_many_exceptions"
	IssueInvalidExceptionDate    IssueKind = "invalid_exception_date"
	IssueDuplicateExceptionDate  IssueKind = "duplicate_exception_date"
	IssueInvalidExceptionType    IssueKind = "invalid_exception_type"
	IssueClosedExceptionBlocks   IssueKind = "closed_exception_has_blocks"
	IssueModifiedExceptionEmpty  IssueKind = "modified_exception_missing_blocks"
)

// Issue is one validation finding. Field locates it: "defaultTimeBlocks",
// a day name, or an exception date. Issues are data, not errors; user
// editing is expected to produce them and the UI renders the full list.
type Issue struct {
	Kind  IssueKind `json:"kind"`
	Field string    `json:"field,omitempty"`
}

// MaxBlocksPerDay bounds the block count per day/default set.
const MaxBlocksPerDay = 5

// MaxExceptions bounds the number of dated exceptions per schedule.
const MaxExceptions = 365

// ValidateTimeBlocks checks a block set and reports at most ONE issue
// category, in priority order: count bound, time format, ordering, overlap.
// The short-circuit is deliberate: later checks assume the earlier ones
// passed (overlap detection needs parseable, ordered blocks).
func ValidateTimeBlocks(blocks []TimeBlock, maxBlocks int) []Issue {
	if maxBlocks <= 0 {
		maxBlocks = MaxBlocksPerDay
	}

	if len(blocks) > maxBlocks {
		return []Issue{{Kind: IssueTooManyBlocks}}
	}

	var issues []Issue
	for _, b := range blocks {
		if !ValidTimeFormat(b.From) || !ValidTimeFormat(b.To) {
			issues = append(issues, Issue{Kind: IssueInvalidTimeFormat})
		}
	}
	if len(issues) > 0 {
		return issues
	}

	for _, b := range blocks {
		if b.From >= b.To {
			issues = append(issues, Issue{Kind: IssueFromBeforeTo})
		}
	}
	if len(issues) > 0 {
		return issues
	}

	sorted := make([]TimeBlock, len(blocks))
	copy(sorted, blocks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].From < sorted[j].From })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].From < sorted[i-1].To {
			return []Issue{{Kind: IssueOverlappingBlocks}}
		}
	}

	return nil
}

// ValidateSchedule checks a full schedule and aggregates ALL findings,
// unlike ValidateTimeBlocks, so a UI can show every problem at once.
func ValidateSchedule(s Schedule) []Issue {
	var issues []Issue

	if len(s.WeeklySchedule.DefaultTimeBlocks) == 0 {
		issues = append(issues, Issue{Kind: IssueDefaultBlocksRequired, Field: "defaultTimeBlocks"})
	} else {
		for _, iss := range ValidateTimeBlocks(s.WeeklySchedule.DefaultTimeBlocks, MaxBlocksPerDay) {
			iss.Field = "defaultTimeBlocks"
			issues = append(issues, iss)
		}
	}

	// A day absent from the override map follows the defaults and counts
	// as available.
	anyAvailable := false
	for _, name := range DayNames {
		day, ok := s.WeeklySchedule.Days[name]
		if !ok || day.Available {
			anyAvailable = true
		}
		if ok && day.Available && len(day.TimeBlocks) > 0 {
			for _, iss := range ValidateTimeBlocks(day.TimeBlocks, MaxBlocksPerDay) {
				iss.Field = name
				issues = append(issues, iss)
			}
		}
	}
	if !anyAvailable {
		issues = append(issues, Issue{Kind: IssueNoDayAvailable})
	}

	if len(s.Exceptions) > MaxExceptions {
		issues = append(issues, Issue{Kind: IssueTooManyExceptions})
	}

	seen := make(map[string]bool, len(s.Exceptions))
	for _, exc := range s.Exceptions {
		if _, err := time.Parse("2006-01-02", exc.Date); err != nil {
			issues = append(issues, Issue{Kind: IssueInvalidExceptionDate, Field: exc.Date})
			continue
		}
		if seen[exc.Date] {
			issues = append(issues, Issue{Kind: IssueDuplicateExceptionDate, Field: exc.Date})
		}
		seen[exc.Date] = true

		switch exc.Type {
		case ExceptionClosed:
			if len(exc.TimeBlocks) > 0 {
				issues = append(issues, Issue{Kind: IssueClosedExceptionBlocks, Field: exc.Date})
			}
		case ExceptionModified:
			if len(exc.TimeBlocks) == 0 {
				issues = append(issues, Issue{Kind: IssueModifiedExceptionEmpty, Field: exc.Date})
			} else {
				for _, iss := range ValidateTimeBlocks(exc.TimeBlocks, MaxBlocksPerDay) {
					iss.Field = exc.Date
					issues = append(issues, iss)
				}
			}
		default:
			issues = append(issues, Issue{Kind: IssueInvalidExceptionType, Field: exc.Date})
		}
	}

	return issues
}
