package service

import (
	"context"
	"time"

	"go-booking-api/core/errors"
	"go-booking-api/core/logger"
	"go-booking-api/modules/availability/dto"
	"go-booking-api/modules/availability/entity"
	calendarService "go-booking-api/modules/calendar/service"
	eventTypeEntity "go-booking-api/modules/eventtype/entity"
	eventTypeService "go-booking-api/modules/eventtype/service"

	"github.com/google/uuid"
)

// BusyReader is the slice of the calendar service availability depends on.
type BusyReader interface {
	BusyIntervals(ctx context.Context, userIDs []uuid.UUID, from, to time.Time) (*calendarService.BusyIndex, error)
}

type AvailabilityService interface {
	DaySlots(ctx context.Context, slug string, query dto.SlotsQuery) (*dto.SlotsResponse, error)
}

type availabilityService struct {
	eventTypes eventTypeService.EventTypeService
	busy       BusyReader
	now        func() time.Time
}

func NewAvailabilityService(eventTypes eventTypeService.EventTypeService, busy BusyReader, now func() time.Time) AvailabilityService {
	if now == nil {
		now = time.Now
	}
	return &availabilityService{eventTypes: eventTypes, busy: busy, now: now}
}

// DaySlots lists the bookable starts of one day of the event type. The day and the working hours are
// read in the event type's time zone; slot times are returned in the requested zone.
func (s *availabilityService) DaySlots(ctx context.Context, slug string, query dto.SlotsQuery) (*dto.SlotsResponse, error) {
	et, err := s.eventTypes.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	display := et.Location()
	if query.TimeZone != "" {
		loc, err := time.LoadLocation(query.TimeZone)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrValidation, "Invalid time zone", err)
		}
		display = loc
	}

	loc := et.Location()
	day, err := time.ParseInLocation("2006-01-02", query.Date, loc)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrValidation, "Invalid date, expected YYYY-MM-DD", err)
	}

	hosts, err := s.eventTypes.Hosts(ctx, et, nil)
	if err != nil {
		return nil, err
	}
	hostIDs := make([]uuid.UUID, len(hosts))
	for i, h := range hosts {
		hostIDs[i] = h.UserID
	}

	resp := &dto.SlotsResponse{
		EventTypeID: et.ID,
		Date:        query.Date,
		TimeZone:    display.String(),
		Length:      et.Length,
		Slots:       []dto.Slot{},
		GeneratedAt: s.now().UTC(),
	}

	windows := WorkingHoursFor(day, et.WorkingHours, et.DateOverrides)
	if len(windows) == 0 {
		return resp, nil
	}

	from := day
	to := day.AddDate(0, 0, 1).Add(et.Duration())
	index, err := s.busy.BusyIntervals(ctx, hostIDs, from, to)
	if err != nil {
		return nil, err
	}
	resp.Degraded = len(index.Degraded) > 0

	now := s.now()
	var starts []time.Time
	if query.Compact && len(hosts) == 1 {
		starts = s.compact(et, day, windows, now, FromBusy(index.ForUser(hostIDs[0])))
	} else {
		candidates := Candidates(day, windows, et.Frequency(), et.Length, now, et.MinimumBookingNotice)
		starts = filterForHosts(et, candidates, hostIDs, index)
	}

	for _, t := range starts {
		if !et.InPeriod(t, now) {
			continue
		}
		resp.Slots = append(resp.Slots, dto.Slot{Time: t.In(display)})
	}
	logger.Debug("AvailabilityService:DaySlots:Done", "event_type_id", et.ID, "date", query.Date, "slots", len(resp.Slots))
	return resp, nil
}

func (s *availabilityService) compact(et *eventTypeEntity.EventType, day time.Time, windows []entity.TimeFrame, now time.Time, busy []Interval) []time.Time {
	minStart := now.Add(time.Duration(et.MinimumBookingNotice) * time.Minute)
	weekday := []int{int(day.Weekday())}
	var out []time.Time
	for _, w := range windows {
		out = append(out, CompactCandidates(CompactInput{
			Day:          day,
			ShiftStart:   day.Add(time.Duration(w.StartMinute) * time.Minute),
			ShiftEnd:     day.Add(time.Duration(w.EndMinute) * time.Minute),
			ActiveDays:   weekday,
			MinStartTime: minStart,
			EventLength:  et.Length,
			Busy:         busy,
		})...)
	}
	return out
}

// filterForHosts keeps a candidate when every host is free (COLLECTIVE) or any host is (ROUND_ROBIN).
func filterForHosts(et *eventTypeEntity.EventType, candidates []time.Time, hostIDs []uuid.UUID, index *calendarService.BusyIndex) []time.Time {
	if et.SchedulingType != eventTypeEntity.SchedulingRoundRobin {
		var busy []Interval
		for _, id := range hostIDs {
			busy = append(busy, FromBusy(index.ForUser(id))...)
		}
		return FilterBusy(candidates, et.Length, busy)
	}

	free := make(map[int64]bool, len(candidates))
	for _, id := range hostIDs {
		for _, t := range FilterBusy(candidates, et.Length, FromBusy(index.ForUser(id))) {
			free[t.UnixNano()] = true
		}
	}
	out := make([]time.Time, 0, len(candidates))
	for _, t := range candidates {
		if free[t.UnixNano()] {
			out = append(out, t)
		}
	}
	return out
}
