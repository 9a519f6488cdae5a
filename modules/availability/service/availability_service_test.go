package service

import (
	"context"
	"testing"
	"time"

	"go-booking-api/core/errors"
	"go-booking-api/modules/availability/dto"
	"go-booking-api/modules/availability/entity"
	calendarEntity "go-booking-api/modules/calendar/entity"
	calendarService "go-booking-api/modules/calendar/service"
	eventTypeEntity "go-booking-api/modules/eventtype/entity"

	"github.com/google/uuid"
)

type fakeEventTypes struct {
	et    *eventTypeEntity.EventType
	hosts []eventTypeEntity.Host
}

func (f *fakeEventTypes) GetBySlug(_ context.Context, s string) (*eventTypeEntity.EventType, error) {
	if f.et == nil || f.et.Slug != s {
		return nil, errors.NewAppError(errors.ErrNotFound, "Event type not found", nil)
	}
	return f.et, nil
}

func (f *fakeEventTypes) GetByID(context.Context, int64) (*eventTypeEntity.EventType, error) {
	return f.et, nil
}

func (f *fakeEventTypes) Hosts(context.Context, *eventTypeEntity.EventType, []uuid.UUID) ([]eventTypeEntity.Host, error) {
	return f.hosts, nil
}

type fakeBusy struct {
	perUser map[uuid.UUID][]calendarEntity.BusyInterval
	calls   int
}

func (f *fakeBusy) BusyIntervals(_ context.Context, _ []uuid.UUID, _, _ time.Time) (*calendarService.BusyIndex, error) {
	f.calls++
	return calendarService.NewBusyIndex(f.perUser, nil), nil
}

var (
	hostA = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	hostB = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
)

func weekdayEventType(scheduling eventTypeEntity.SchedulingType) *eventTypeEntity.EventType {
	return &eventTypeEntity.EventType{
		ID:             7,
		Slug:           "intro-call",
		Length:         30,
		SchedulingType: scheduling,
		PeriodType:     eventTypeEntity.PeriodUnlimited,
		TimeZone:       "UTC",
		WorkingHours: entity.WorkingHours{
			{Days: []int{1, 2, 3, 4, 5}, StartMinute: 9 * 60, EndMinute: 17 * 60},
		},
	}
}

func utcAt(h, m int) time.Time {
	return time.Date(2024, 5, 6, h, m, 0, 0, time.UTC)
}

func busyAt(startH, startM, endH, endM int) calendarEntity.BusyInterval {
	return calendarEntity.BusyInterval{Start: utcAt(startH, startM), End: utcAt(endH, endM), Source: "test"}
}

func newService(et *eventTypeEntity.EventType, hosts []uuid.UUID, busy map[uuid.UUID][]calendarEntity.BusyInterval) AvailabilityService {
	var hs []eventTypeEntity.Host
	for i, id := range hosts {
		hs = append(hs, eventTypeEntity.Host{UserID: id, Priority: i})
	}
	now := func() time.Time { return time.Date(2024, 5, 5, 12, 0, 0, 0, time.UTC) }
	return NewAvailabilityService(&fakeEventTypes{et: et, hosts: hs}, &fakeBusy{perUser: busy}, now)
}

func slotClock(resp *dto.SlotsResponse) []string {
	out := make([]string, len(resp.Slots))
	for i, s := range resp.Slots {
		out[i] = s.Time.Format("15:04")
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func TestDaySlotsCollectiveNeedsEveryHostFree(t *testing.T) {
	svc := newService(weekdayEventType(eventTypeEntity.SchedulingCollective), []uuid.UUID{hostA, hostB},
		map[uuid.UUID][]calendarEntity.BusyInterval{hostB: {busyAt(10, 0, 11, 0)}})

	resp, err := svc.DaySlots(context.Background(), "intro-call", dto.SlotsQuery{Date: "2024-05-06"})
	if err != nil {
		t.Fatalf("DaySlots: %v", err)
	}
	got := slotClock(resp)
	if len(got) != 14 {
		t.Fatalf("expected 14 slots, got %d: %v", len(got), got)
	}
	if contains(got, "10:00") || contains(got, "10:30") {
		t.Fatalf("slots during host B's meeting must be removed: %v", got)
	}
}

func TestDaySlotsRoundRobinNeedsAnyHostFree(t *testing.T) {
	svc := newService(weekdayEventType(eventTypeEntity.SchedulingRoundRobin), []uuid.UUID{hostA, hostB},
		map[uuid.UUID][]calendarEntity.BusyInterval{hostA: {busyAt(10, 0, 11, 0)}})

	resp, err := svc.DaySlots(context.Background(), "intro-call", dto.SlotsQuery{Date: "2024-05-06"})
	if err != nil {
		t.Fatalf("DaySlots: %v", err)
	}
	if got := slotClock(resp); len(got) != 16 || !contains(got, "10:00") {
		t.Fatalf("host B covers host A's meeting, got %v", got)
	}
}

func TestDaySlotsCompactSingleHost(t *testing.T) {
	et := weekdayEventType(eventTypeEntity.SchedulingCollective)
	et.WorkingHours = entity.WorkingHours{{Days: []int{1}, StartMinute: 9 * 60, EndMinute: 12 * 60}}
	svc := newService(et, []uuid.UUID{hostA},
		map[uuid.UUID][]calendarEntity.BusyInterval{hostA: {busyAt(9, 50, 10, 20)}})

	resp, err := svc.DaySlots(context.Background(), "intro-call", dto.SlotsQuery{Date: "2024-05-06", Compact: true})
	if err != nil {
		t.Fatalf("DaySlots: %v", err)
	}
	got := slotClock(resp)
	want := []string{"09:00", "10:20", "10:50", "11:20"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestDaySlotsRendersRequestedTimeZone(t *testing.T) {
	svc := newService(weekdayEventType(eventTypeEntity.SchedulingCollective), []uuid.UUID{hostA}, nil)

	resp, err := svc.DaySlots(context.Background(), "intro-call", dto.SlotsQuery{Date: "2024-05-06", TimeZone: "Asia/Tokyo"})
	if err != nil {
		t.Fatalf("DaySlots: %v", err)
	}
	if resp.TimeZone != "Asia/Tokyo" {
		t.Fatalf("TimeZone = %q", resp.TimeZone)
	}
	if got := resp.Slots[0].Time.Format("15:04"); got != "18:00" {
		t.Fatalf("09:00 UTC should read 18:00 in Tokyo, got %s", got)
	}
}

func TestDaySlotsBlockedByDateOverride(t *testing.T) {
	et := weekdayEventType(eventTypeEntity.SchedulingCollective)
	et.DateOverrides = entity.DateOverrides{{Date: "2024-05-06"}}
	busy := &fakeBusy{}
	svc := NewAvailabilityService(&fakeEventTypes{et: et, hosts: []eventTypeEntity.Host{{UserID: hostA}}}, busy, time.Now)

	resp, err := svc.DaySlots(context.Background(), "intro-call", dto.SlotsQuery{Date: "2024-05-06"})
	if err != nil {
		t.Fatalf("DaySlots: %v", err)
	}
	if len(resp.Slots) != 0 {
		t.Fatalf("expected no slots, got %d", len(resp.Slots))
	}
	if busy.calls != 0 {
		t.Fatal("busy intervals should not be fetched for a day without working hours")
	}
}

func TestDaySlotsErrors(t *testing.T) {
	svc := newService(weekdayEventType(eventTypeEntity.SchedulingCollective), []uuid.UUID{hostA}, nil)

	_, err := svc.DaySlots(context.Background(), "intro-call", dto.SlotsQuery{Date: "2024-05-06", TimeZone: "Mars/Olympus"})
	if !errors.HasCode(err, errors.ErrValidation) {
		t.Fatalf("bad time zone: expected validation error, got %v", err)
	}

	_, err = svc.DaySlots(context.Background(), "missing", dto.SlotsQuery{Date: "2024-05-06"})
	if !errors.HasCode(err, errors.ErrNotFound) {
		t.Fatalf("unknown slug: expected not found, got %v", err)
	}
}
