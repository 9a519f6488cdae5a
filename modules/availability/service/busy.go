package service

import (
	calendarEntity "go-booking-api/modules/calendar/entity"
)

// FromBusy converts aggregated busy intervals to overlap intervals.
func FromBusy(in []calendarEntity.BusyInterval) []Interval {
	out := make([]Interval, 0, len(in))
	for _, b := range in {
		out = append(out, Interval{Start: b.Start, End: b.End})
	}
	return out
}
