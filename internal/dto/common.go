package dto

import (
	"encoding/json"
	"fmt"
	"time"
)

// FlexTime normalizes the timestamp variants the clients send: RFC3339
// with or without fractional seconds, a plain date, or a Firestore-style
// {_seconds,_nanoseconds} object. It always marshals as UTC RFC3339, so
// the canonical form is fixed at the API boundary and only one shape
// reaches the domain layer.
type FlexTime struct {
	time.Time
}

type firestoreTimestamp struct {
	Seconds     int64 `json:"_seconds"`
	Nanoseconds int64 `json:"_nanoseconds"`
}

// UnmarshalJSON accepts the tolerated input shapes.
func (t *FlexTime) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	if data[0] == '{' {
		var fs firestoreTimestamp
		if err := json.Unmarshal(data, &fs); err != nil {
			return fmt.Errorf("parse timestamp object: %w", err)
		}
		t.Time = time.Unix(fs.Seconds, fs.Nanoseconds).UTC()
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("parse timestamp: %w", err)
	}

	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

// MarshalJSON always emits UTC RFC3339.
func (t FlexTime) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.UTC().Format(time.RFC3339))
}

// FormatTimestamp renders a time the way every response does.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// FormatDate renders a date-only field.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
