package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/maxton76/stall-bokning-sub008/internal/availability"
)

// AvailabilityJSON stores a layered availability schedule as JSONB.
// The JSON shape round-trips verbatim with the API representation.
type AvailabilityJSON availability.Schedule

// Scan parses the JSONB column into the schedule.
func (a *AvailabilityJSON) Scan(src interface{}) error {
	if src == nil {
		*a = AvailabilityJSON{}
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("AvailabilityJSON.Scan: unsupported type %T", src)
	}
	return json.Unmarshal(raw, (*availability.Schedule)(a))
}

// Value serializes the schedule for the JSONB column.
func (a AvailabilityJSON) Value() (driver.Value, error) {
	return json.Marshal(availability.Schedule(a))
}

// Facility kinds.
const (
	FacilityKindArena   = "arena"
	FacilityKindPaddock = "paddock"
	FacilityKindTrack   = "track"
)

// Facility — maps to facilities. Capacity bounds how many claimed slots may
// overlap at any moment; the availability schedule resolves its open hours.
type Facility struct {
	FacilityID   string            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"facility_id"`
	StableID     string            `gorm:"type:uuid;not null"                             json:"stable_id"`
	Name         string            `gorm:"type:varchar(100);not null"                     json:"name"`
	Kind         string            `gorm:"type:varchar(30);not null;default:'arena'"      json:"kind"`
	Capacity     int               `gorm:"not null;default:1"                             json:"capacity"`
	Availability *AvailabilityJSON `gorm:"type:jsonb"                                     json:"availability,omitempty"`
	VersionedModel

	Stable *Stable `gorm:"foreignKey:StableID;references:StableID" json:"stable,omitempty"`
}

func (Facility) TableName() string { return "facilities" }
