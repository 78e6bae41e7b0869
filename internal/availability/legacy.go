package availability

// LegacyAvailability is the flat shape used before layered schedules:
// one daily range plus per-day booleans.
type LegacyAvailability struct {
	AvailableFrom string          `json:"availableFrom"`
	AvailableTo   string          `json:"availableTo"`
	DaysAvailable map[string]bool `json:"daysAvailable"`
}

// MigrateLegacy upgrades a legacy flat availability into a layered
// schedule: the legacy range becomes the single default block, and each
// legacy day flag becomes a day override with no custom blocks, so enabled
// days inherit the default.
func MigrateLegacy(legacy LegacyAvailability) Schedule {
	days := make(map[string]DaySchedule, len(legacy.DaysAvailable))
	for _, name := range DayNames {
		enabled, ok := legacy.DaysAvailable[name]
		if !ok {
			continue
		}
		days[name] = DaySchedule{Available: enabled}
	}

	return Schedule{
		WeeklySchedule: WeeklySchedule{
			DefaultTimeBlocks: []TimeBlock{{From: legacy.AvailableFrom, To: legacy.AvailableTo}},
			Days:              days,
		},
	}
}
