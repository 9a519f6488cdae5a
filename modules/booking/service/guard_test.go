package service

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go-booking-api/core/errors"
	"go-booking-api/modules/booking/entity"
	calendarService "go-booking-api/modules/calendar/service"
	eventTypeEntity "go-booking-api/modules/eventtype/entity"

	"github.com/google/uuid"
)

// gatedBusy holds every availability read until all expected readers have one, so the
// requests reach the write together.
type gatedBusy struct {
	inner   BusyReader
	arrived sync.WaitGroup
}

func (g *gatedBusy) BusyIntervals(ctx context.Context, userIDs []uuid.UUID, from, to time.Time) (*calendarService.BusyIndex, error) {
	index, err := g.inner.BusyIntervals(ctx, userIDs, from, to)
	g.arrived.Done()
	g.arrived.Wait()
	return index, err
}

func TestConcurrentCreatesForOneSlotAdmitOne(t *testing.T) {
	const requests = 4
	f := newFixture(eventType(eventTypeEntity.SchedulingCollective), hostA)
	gate := &gatedBusy{inner: f.busy}
	gate.arrived.Add(requests)

	var tick atomic.Int64
	svc := NewBookingService(Options{
		Store:      f.store,
		EventTypes: f.types,
		Busy:       gate,
		Now:        func() time.Time { return clock.Add(time.Duration(tick.Add(1))) },
	})

	var (
		wg          sync.WaitGroup
		successes   atomic.Int32
		unavailable atomic.Int32
	)
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(context.Background(), request(slotAt(6, 10, 0)), nil)
			switch {
			case err == nil:
				successes.Add(1)
			case errors.HasCode(err, errors.ErrUnavailable):
				unavailable.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	svc.Drain()

	if successes.Load() != 1 || unavailable.Load() != requests-1 {
		t.Fatalf("expected 1 booking and %d rejections, got %d and %d", requests-1, successes.Load(), unavailable.Load())
	}
	if n := len(f.store.all()); n != 1 {
		t.Fatalf("expected one stored booking, found %d", n)
	}
}

func TestSlotGuard(t *testing.T) {
	store := newMemStore()
	store.seed(&entity.Booking{UID: "taken", UserID: hostA, StartTime: slotAt(6, 10, 0), EndTime: slotAt(6, 10, 30), Status: entity.StatusAccepted})
	store.seed(&entity.Booking{UID: "dropped", UserID: hostA, StartTime: slotAt(6, 12, 0), EndTime: slotAt(6, 12, 30), Status: entity.StatusCancelled})

	cases := []struct {
		name  string
		hosts []uuid.UUID
		start time.Time
		busy  bool
	}{
		{"overlapping", []uuid.UUID{hostA}, slotAt(6, 10, 15), true},
		{"adjacent", []uuid.UUID{hostA}, slotAt(6, 10, 30), false},
		{"cancelled booking frees the slot", []uuid.UUID{hostA}, slotAt(6, 12, 0), false},
		{"other host", []uuid.UUID{hostB}, slotAt(6, 10, 0), false},
		{"any collective host", []uuid.UUID{hostB, hostA}, slotAt(6, 10, 0), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			guard := SlotGuard(tc.hosts, []Slot{{Start: tc.start, End: tc.start.Add(30 * time.Minute)}})
			store.mu.Lock()
			err := guard(context.Background(), lockedView{store})
			store.mu.Unlock()
			if got := errors.HasCode(err, errors.ErrUnavailable); got != tc.busy {
				t.Fatalf("busy = %v (err %v), want %v", got, err, tc.busy)
			}
		})
	}
}

func TestSeatedBookingHoldsOnlyTheBooker(t *testing.T) {
	et := eventType(eventTypeEntity.SchedulingCollective)
	et.SeatsPerTimeSlot = sql.NullInt32{Int32: 2, Valid: true}
	f := newFixture(et, hostA, hostB)

	req := request(slotAt(6, 10, 0))
	req.Guests = []string{"one@example.com", "two@example.com", "three@example.com"}
	if _, err := f.svc.Create(context.Background(), req, nil); !errors.HasCode(err, errors.ErrValidation) {
		t.Fatalf("guests on a seated event: expected validation error, got %v", err)
	}

	res, err := f.svc.Create(context.Background(), request(slotAt(6, 10, 0)), nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	f.svc.Drain()
	if len(res.Attendees) != 1 || res.Attendees[0].Email != "guest@example.com" {
		t.Fatalf("expected the booker alone in the first seat, got %+v", res.Attendees)
	}
}

func TestBookingUIDRequiresSeats(t *testing.T) {
	f := newFixture(eventType(eventTypeEntity.SchedulingCollective), hostA)
	seatedBooking(f)

	req := request(slotAt(6, 10, 0))
	req.BookingUID = "seated"
	if _, err := f.svc.Create(context.Background(), req, nil); !errors.HasCode(err, errors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if got := f.store.get("seated").SeatsUsed(); got != 1 {
		t.Fatalf("seated booking must be untouched, has %d attendees", got)
	}
	if n := len(f.store.all()); n != 1 {
		t.Fatalf("no new booking may be created, found %d", n)
	}
}

func TestRecurringOccurrencesStayInPeriod(t *testing.T) {
	et := eventType(eventTypeEntity.SchedulingCollective)
	et.Recurring = eventTypeEntity.Recurrence{Freq: eventTypeEntity.FreqWeekly, Interval: 1, Count: 5}
	et.PeriodType = eventTypeEntity.PeriodRange
	et.PeriodStartDate = sql.NullTime{Time: slotAt(1, 0, 0), Valid: true}
	et.PeriodEndDate = sql.NullTime{Time: slotAt(15, 0, 0), Valid: true}
	f := newFixture(et, hostA)

	req := request(slotAt(6, 10, 0))
	req.RecurringCount = 3
	if _, err := f.svc.Create(context.Background(), req, nil); !errors.HasCode(err, errors.ErrOutOfBounds) {
		t.Fatalf("third week is past the range, expected out of bounds, got %v", err)
	}
	if n := len(f.store.all()); n != 0 {
		t.Fatalf("nothing should be written, found %d bookings", n)
	}

	req.RecurringCount = 2
	res, err := f.svc.Create(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("two weeks fit the range: %v", err)
	}
	if len(res.Occurrences) != 2 {
		t.Fatalf("expected 2 occurrences, got %d", len(res.Occurrences))
	}
}
