// Package availability resolves a facility's effective open time windows
// from a layered schedule: dated exceptions over per-day overrides over
// weekly defaults. The package is pure; it owns no storage and performs no
// I/O, so every function is deterministic in its inputs.
package availability

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// ErrInvalidFormat is returned when a time string does not match "HH:mm".
var ErrInvalidFormat = errors.New("time must be in HH:mm format")

// timePattern matches zero-padded 24h clock times, "00:00".."23:59".
var timePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// TimeBlock is a half-open window [From, To) within one day.
type TimeBlock struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// DaySchedule overrides the weekly default for one weekday. When Available
// is false the day is closed regardless of TimeBlocks. When Available is
// true and TimeBlocks is empty the day inherits the weekly default blocks.
type DaySchedule struct {
	Available  bool        `json:"available"`
	TimeBlocks []TimeBlock `json:"timeBlocks"`
}

// WeeklySchedule is the base layer: default blocks plus optional per-day
// overrides keyed by lowercase weekday name ("monday".."sunday"). A day
// absent from Days follows the defaults.
type WeeklySchedule struct {
	DefaultTimeBlocks []TimeBlock            `json:"defaultTimeBlocks"`
	Days              map[string]DaySchedule `json:"days"`
}

// ExceptionType distinguishes full-day closures from modified hours.
type ExceptionType string

const (
	ExceptionClosed   ExceptionType = "closed"
	ExceptionModified ExceptionType = "modified"
)

// ScheduleException replaces the resolved blocks for a single date.
// Closed exceptions carry no blocks; modified exceptions carry at least one.
type ScheduleException struct {
	Date       string        `json:"date"` // "YYYY-MM-DD"
	Type       ExceptionType `json:"type"`
	TimeBlocks []TimeBlock   `json:"timeBlocks,omitempty"`
	Reason     string        `json:"reason,omitempty"`
}

// Schedule is a facility's full layered availability schedule. The JSON
// shape round-trips verbatim with the persisted form.
type Schedule struct {
	WeeklySchedule WeeklySchedule      `json:"weeklySchedule"`
	Exceptions     []ScheduleException `json:"exceptions"`
}

// weekdayNames maps time.Weekday to the schedule's day keys.
var weekdayNames = map[time.Weekday]string{
	time.Monday:    "monday",
	time.Tuesday:   "tuesday",
	time.Wednesday: "wednesday",
	time.Thursday:  "thursday",
	time.Friday:    "friday",
	time.Saturday:  "saturday",
	time.Sunday:    "sunday",
}

// DayNames lists the schedule's day keys in monday-first order.
var DayNames = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// TimeToMinutes parses a validated "HH:mm" string into minutes since
// midnight (0-1439). Callers validate first; this is the resolution hot
// path and assumes well-formed input, failing with ErrInvalidFormat
// otherwise.
func TimeToMinutes(t string) (int, error) {
	if !timePattern.MatchString(t) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, t)
	}
	h := int(t[0]-'0')*10 + int(t[1]-'0')
	m := int(t[3]-'0')*10 + int(t[4]-'0')
	return h*60 + m, nil
}

// ValidTimeFormat reports whether t matches "HH:mm".
func ValidTimeFormat(t string) bool {
	return timePattern.MatchString(t)
}
