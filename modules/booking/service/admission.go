package service

import (
	"context"
	"time"

	"go-booking-api/core/errors"
	availability "go-booking-api/modules/availability/service"
	calendarService "go-booking-api/modules/calendar/service"
	eventTypeEntity "go-booking-api/modules/eventtype/entity"

	"github.com/google/uuid"
)

// BusyReader is the slice of the calendar service admission depends on.
type BusyReader interface {
	BusyIntervals(ctx context.Context, userIDs []uuid.UUID, from, to time.Time) (*calendarService.BusyIndex, error)
}

// Slot is one requested occurrence, half-open.
type Slot struct {
	Start time.Time
	End   time.Time
}

// ResolveHosts picks the hosts for slots. COLLECTIVE needs every candidate free; ROUND_ROBIN takes the
// first free candidate in the given order. A host is free only when every slot is. Busy intervals
// tagged ignoreSource (the booking being rescheduled) are skipped.
func ResolveHosts(schedulingType eventTypeEntity.SchedulingType, candidates []eventTypeEntity.Host, index *calendarService.BusyIndex, slots []Slot, ignoreSource string) ([]eventTypeEntity.Host, error) {
	if len(candidates) == 0 {
		return nil, errors.NewAppError(errors.ErrUnavailable, "No available users found", nil)
	}

	free := func(h eventTypeEntity.Host) bool {
		busy := index.ForUser(h.UserID)
		for _, s := range slots {
			for _, b := range busy {
				if ignoreSource != "" && b.Source == ignoreSource {
					continue
				}
				if availability.Overlaps(s.Start, s.End, b.Start, b.End) {
					return false
				}
			}
		}
		return true
	}

	if schedulingType == eventTypeEntity.SchedulingRoundRobin {
		for _, h := range candidates {
			if free(h) {
				return []eventTypeEntity.Host{h}, nil
			}
		}
		return nil, errors.NewAppError(errors.ErrUnavailable, "No available users found", nil)
	}

	for _, h := range candidates {
		if !free(h) {
			return nil, errors.NewAppError(errors.ErrUnavailable, "No available users found", nil)
		}
	}
	return candidates, nil
}

// preferHost moves id to the front of hosts, keeping the others in order.
func preferHost(hosts []eventTypeEntity.Host, id uuid.UUID) []eventTypeEntity.Host {
	out := make([]eventTypeEntity.Host, 0, len(hosts))
	for _, h := range hosts {
		if h.UserID == id {
			out = append(out, h)
		}
	}
	for _, h := range hosts {
		if h.UserID != id {
			out = append(out, h)
		}
	}
	return out
}
