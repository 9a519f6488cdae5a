package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// TimeFrame is a window in minutes from the start of a local day: [StartMinute, EndMinute).
type TimeFrame struct {
	StartMinute int `json:"start_minute"`
	EndMinute   int `json:"end_minute"`
}

// WorkingHoursRule is a weekly window; Days holds weekdays 0 (Sunday) to 6.
type WorkingHoursRule struct {
	Days        []int `json:"days"`
	StartMinute int   `json:"start_minute"`
	EndMinute   int   `json:"end_minute"`
}

func (r WorkingHoursRule) ActiveOn(weekday int) bool {
	for _, d := range r.Days {
		if d == weekday {
			return true
		}
	}
	return false
}

// DateOverride replaces the weekly rules on Date (YYYY-MM-DD, event type time zone).
// An override with StartMinute == EndMinute marks the day unavailable.
type DateOverride struct {
	Date        string `json:"date"`
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
}

type WorkingHours []WorkingHoursRule

func (w WorkingHours) Value() (driver.Value, error) {
	if w == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(w)
}

func (w *WorkingHours) Scan(value any) error {
	return scanJSON(value, w)
}

type DateOverrides []DateOverride

func (d DateOverrides) Value() (driver.Value, error) {
	if d == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(d)
}

func (d *DateOverrides) Scan(value any) error {
	return scanJSON(value, d)
}

func scanJSON(value any, dest any) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, dest)
}
