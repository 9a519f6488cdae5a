package service

import (
	"time"

	eventTypeEntity "go-booking-api/modules/eventtype/entity"
)

// Occurrences expands a recurring booking from start. requested caps the rule's count; zero or a
// missing rule yields start alone. Dates are stepped in loc so wall-clock time survives DST changes.
func Occurrences(start time.Time, rule eventTypeEntity.Recurrence, requested int, loc *time.Location) []time.Time {
	if !rule.Valid() || requested <= 0 {
		return []time.Time{start}
	}
	count := min(rule.Count, requested)
	interval := max(rule.Interval, 1)

	local := start.In(loc)
	out := make([]time.Time, 0, count)
	for i := 0; i < count; i++ {
		var t time.Time
		switch rule.Freq {
		case eventTypeEntity.FreqDaily:
			t = local.AddDate(0, 0, i*interval)
		case eventTypeEntity.FreqMonthly:
			t = local.AddDate(0, i*interval, 0)
		default:
			t = local.AddDate(0, 0, 7*i*interval)
		}
		out = append(out, t.UTC())
	}
	return out
}
