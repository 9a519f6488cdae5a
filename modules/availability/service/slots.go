package service

import (
	"sort"
	"time"

	"go-booking-api/modules/availability/entity"
)

// Interval is a half-open busy range.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect. Touching ends do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

func minimumOfOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// Candidates walks every window of the day in steps of frequency and returns the starts whose
// slot fits the window (one minute of tolerance at the end) and is not earlier than
// now + minimumNotice. day must be local midnight of the invitee's day.
func Candidates(day time.Time, windows []entity.TimeFrame, frequency, eventLength int, now time.Time, minimumNotice int) []time.Time {
	step := minimumOfOne(frequency)
	length := minimumOfOne(eventLength)
	floor := now.Add(time.Duration(minimumNotice) * time.Minute)

	seen := make(map[int64]bool)
	var out []time.Time
	for _, w := range windows {
		for t := w.StartMinute; t < w.EndMinute; t += step {
			if t+length > w.EndMinute+1 {
				continue
			}
			slot := day.Add(time.Duration(t) * time.Minute)
			if slot.Before(floor) {
				continue
			}
			if key := slot.UnixNano(); !seen[key] {
				seen[key] = true
				out = append(out, slot)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// CompactInput describes one shift for CompactCandidates.
type CompactInput struct {
	Day          time.Time
	ShiftStart   time.Time
	ShiftEnd     time.Time
	ActiveDays   []int
	MinStartTime time.Time
	EventLength  int
	Busy         []Interval
}

// CompactCandidates steps through the shift by the event length; a candidate that hits a busy
// interval moves the cursor to that interval's end so no idle minutes are lost.
func CompactCandidates(in CompactInput) []time.Time {
	loc := in.Day.Location()
	if dateOf(in.Day, loc).Before(dateOf(in.MinStartTime, loc)) {
		return nil
	}
	if !containsDay(in.ActiveDays, int(in.Day.Weekday())) {
		return nil
	}

	length := time.Duration(minimumOfOne(in.EventLength)) * time.Minute
	var out []time.Time
	for start := in.ShiftStart; !start.Add(length).After(in.ShiftEnd); {
		end := start.Add(length)
		if start.Before(in.MinStartTime) {
			start = end
			continue
		}
		if blocking, ok := firstOverlap(start, end, in.Busy); ok {
			start = blocking.End
			continue
		}
		out = append(out, start)
		start = end
	}
	return out
}

// FilterBusy drops candidates whose slot of eventLength minutes overlaps any busy interval.
func FilterBusy(candidates []time.Time, eventLength int, busy []Interval) []time.Time {
	length := time.Duration(minimumOfOne(eventLength)) * time.Minute
	out := make([]time.Time, 0, len(candidates))
	for _, c := range candidates {
		if _, hit := firstOverlap(c, c.Add(length), busy); !hit {
			out = append(out, c)
		}
	}
	return out
}

// WorkingHoursFor resolves the windows that apply to day: the date's overrides when any exist,
// otherwise the weekly rules active on that weekday.
func WorkingHoursFor(day time.Time, rules []entity.WorkingHoursRule, overrides []entity.DateOverride) []entity.TimeFrame {
	key := day.Format("2006-01-02")
	var frames []entity.TimeFrame
	overridden := false
	for _, o := range overrides {
		if o.Date != key {
			continue
		}
		overridden = true
		if o.EndMinute > o.StartMinute {
			frames = append(frames, entity.TimeFrame{StartMinute: o.StartMinute, EndMinute: o.EndMinute})
		}
	}
	if !overridden {
		weekday := int(day.Weekday())
		for _, r := range rules {
			if r.ActiveOn(weekday) && r.EndMinute > r.StartMinute {
				frames = append(frames, entity.TimeFrame{StartMinute: r.StartMinute, EndMinute: r.EndMinute})
			}
		}
	}
	sort.Slice(frames, func(i, j int) bool { return frames[i].StartMinute < frames[j].StartMinute })
	return frames
}

func firstOverlap(start, end time.Time, busy []Interval) (Interval, bool) {
	for _, b := range busy {
		if Overlaps(start, end, b.Start, b.End) {
			return b, true
		}
	}
	return Interval{}, false
}

func containsDay(days []int, weekday int) bool {
	for _, d := range days {
		if d == weekday {
			return true
		}
	}
	return false
}

func dateOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// StartOfDay returns local midnight of t in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	return dateOf(t, loc)
}
