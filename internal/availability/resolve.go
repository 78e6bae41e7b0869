package availability

import "time"

// EffectiveTimeBlocks resolves the open windows for date, in priority order
// exception > day override > weekly default. An empty result means the
// facility is closed that day.
//
// Date fields are read via the calendar fields of the given time.Time in
// its own location. Callers must construct date at local midnight in the
// facility's timezone; the resolver does not correct for timezone skew.
func EffectiveTimeBlocks(s Schedule, date time.Time) []TimeBlock {
	dateKey := date.Format("2006-01-02")

	for _, exc := range s.Exceptions {
		if exc.Date != dateKey {
			continue
		}
		if exc.Type == ExceptionClosed {
			return nil
		}
		return exc.TimeBlocks
	}

	day, ok := s.WeeklySchedule.Days[weekdayNames[date.Weekday()]]
	if ok {
		if !day.Available {
			return nil
		}
		if len(day.TimeBlocks) > 0 {
			return day.TimeBlocks
		}
		// available with no custom blocks inherits the defaults
	}

	return s.WeeklySchedule.DefaultTimeBlocks
}

// IsTimeRangeAvailable reports whether [startTime, endTime) is fully
// contained within a single block. A range spanning the gap between two
// adjacent blocks is not available; a zero or negative range never is.
func IsTimeRangeAvailable(blocks []TimeBlock, startTime, endTime string) bool {
	start, err := TimeToMinutes(startTime)
	if err != nil {
		return false
	}
	end, err := TimeToMinutes(endTime)
	if err != nil {
		return false
	}
	if end <= start {
		return false
	}

	for _, b := range blocks {
		from, err := TimeToMinutes(b.From)
		if err != nil {
			continue
		}
		to, err := TimeToMinutes(b.To)
		if err != nil {
			continue
		}
		if start >= from && end <= to {
			return true
		}
	}
	return false
}
