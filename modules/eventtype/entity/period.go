package entity

import "time"

// InPeriod reports whether a booking starting at start falls inside the event type's booking window
// as seen at now. Past starts are handled by the caller.
func (e *EventType) InPeriod(start, now time.Time) bool {
	loc := e.Location()
	switch e.PeriodType {
	case PeriodRolling:
		if !e.PeriodDays.Valid || e.PeriodDays.Int32 <= 0 {
			return true
		}
		today := midnight(now.In(loc))
		days := int(e.PeriodDays.Int32)
		var last time.Time
		if e.PeriodCountCalendarDays {
			last = today.AddDate(0, 0, days)
		} else {
			last = addBusinessDays(today, days)
		}
		return start.Before(last.AddDate(0, 0, 1))
	case PeriodRange:
		if e.PeriodStartDate.Valid && start.Before(midnight(e.PeriodStartDate.Time.In(loc))) {
			return false
		}
		if e.PeriodEndDate.Valid && !start.Before(midnight(e.PeriodEndDate.Time.In(loc)).AddDate(0, 0, 1)) {
			return false
		}
		return true
	default:
		return true
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func addBusinessDays(t time.Time, n int) time.Time {
	for n > 0 {
		t = t.AddDate(0, 0, 1)
		if wd := t.Weekday(); wd != time.Saturday && wd != time.Sunday {
			n--
		}
	}
	return t
}
