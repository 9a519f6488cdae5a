package service

import (
	"context"
	"fmt"
	"time"

	"go-booking-api/core/errors"
	"go-booking-api/modules/booking/repository"
	eventTypeEntity "go-booking-api/modules/eventtype/entity"

	"github.com/google/uuid"
)

var limitOrder = []string{
	eventTypeEntity.LimitPerDay,
	eventTypeEntity.LimitPerWeek,
	eventTypeEntity.LimitPerMonth,
	eventTypeEntity.LimitPerYear,
}

// PeriodWindow returns the [from, to) calendar period of the given limit key containing t.
// Weeks start on Monday.
func PeriodWindow(key string, t time.Time, loc *time.Location) (time.Time, time.Time) {
	t = t.In(loc)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	switch key {
	case eventTypeEntity.LimitPerWeek:
		from := day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
		return from, from.AddDate(0, 0, 7)
	case eventTypeEntity.LimitPerMonth:
		from := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
		return from, from.AddDate(0, 1, 0)
	case eventTypeEntity.LimitPerYear:
		from := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, loc)
		return from, from.AddDate(1, 0, 0)
	default:
		return day, day.AddDate(0, 0, 1)
	}
}

// LimitGuard checks the event type's booking caps for hostID, counting starts as about to be written.
func LimitGuard(et *eventTypeEntity.EventType, hostID uuid.UUID, starts []time.Time) repository.Guard {
	return func(ctx context.Context, view repository.TxView) error {
		return CheckLimits(ctx, view, et, hostID, starts)
	}
}

// SlotGuard re-checks inside the write that no host already holds an accepted booking overlapping a slot.
func SlotGuard(hostIDs []uuid.UUID, slots []Slot) repository.Guard {
	return func(ctx context.Context, view repository.TxView) error {
		for _, id := range hostIDs {
			for _, slot := range slots {
				n, err := view.CountOverlapping(ctx, id, slot.Start, slot.End)
				if err != nil {
					return err
				}
				if n > 0 {
					return errors.NewAppError(errors.ErrUnavailable, "The selected time is no longer available", nil)
				}
			}
		}
		return nil
	}
}

// Guards runs each guard in order and stops at the first error.
func Guards(guards ...repository.Guard) repository.Guard {
	return func(ctx context.Context, view repository.TxView) error {
		for _, g := range guards {
			if err := g(ctx, view); err != nil {
				return err
			}
		}
		return nil
	}
}

func CheckLimits(ctx context.Context, counter repository.Counter, et *eventTypeEntity.EventType, hostID uuid.UUID, starts []time.Time) error {
	if len(et.BookingLimits) == 0 {
		return nil
	}
	loc := et.Location()
	for _, key := range limitOrder {
		limit := et.BookingLimits[key]
		if limit <= 0 {
			continue
		}

		type window struct {
			from, to time.Time
			adding   int
		}
		var windows []*window
		byStart := map[int64]*window{}
		for _, s := range starts {
			from, to := PeriodWindow(key, s, loc)
			w, ok := byStart[from.Unix()]
			if !ok {
				w = &window{from: from, to: to}
				byStart[from.Unix()] = w
				windows = append(windows, w)
			}
			w.adding++
		}

		for _, w := range windows {
			existing, err := counter.CountInRange(ctx, et.ID, hostID, w.from, w.to)
			if err != nil {
				return err
			}
			if existing+w.adding > limit {
				return errors.NewAppError(errors.ErrUnavailable,
					fmt.Sprintf("Booking limit reached (%s: %d)", key, limit), nil)
			}
		}
	}
	return nil
}
