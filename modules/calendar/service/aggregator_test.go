package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go-booking-api/core/cache"
	"go-booking-api/core/errors"
	"go-booking-api/modules/calendar/adapter"
	"go-booking-api/modules/calendar/entity"

	"github.com/google/uuid"
)

type fakeInternal struct {
	busy map[uuid.UUID][]entity.BusyInterval
	err  error
}

func (f *fakeInternal) BusyIntervals(_ context.Context, userID uuid.UUID, _, _ time.Time) ([]entity.BusyInterval, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.busy[userID], nil
}

type fakeCalendar struct {
	calls atomic.Int32
	busy  []entity.BusyInterval
	err   error
}

func (f *fakeCalendar) ListCalendars(context.Context) ([]entity.Calendar, error) { return nil, nil }

func (f *fakeCalendar) GetAvailability(context.Context, time.Time, time.Time, []entity.SelectedCalendar) ([]entity.BusyInterval, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.busy, nil
}

func (f *fakeCalendar) CreateEvent(context.Context, entity.CalendarEvent) (*entity.RemoteEvent, error) {
	return nil, nil
}

func (f *fakeCalendar) UpdateEvent(context.Context, string, entity.CalendarEvent) (*entity.RemoteEvent, error) {
	return nil, nil
}

func (f *fakeCalendar) DeleteEvent(context.Context, string) error { return nil }

type fakeProvider struct {
	mu        sync.Mutex
	calendars map[int64]*fakeCalendar
}

func (p *fakeProvider) For(cred entity.Credential) (adapter.Calendar, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cal, ok := p.calendars[cred.ID]
	if !ok {
		return nil, fmt.Errorf("no adapter for %d", cred.ID)
	}
	return cal, nil
}

var day = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func newAggregator(internal InternalBusySource, provider AdapterProvider) *Aggregator {
	return NewAggregator(internal, provider, cache.NewMemoryCache(nil), AggregatorConfig{
		CacheTTL:       30 * time.Second,
		MaxFanout:      4,
		AdapterTimeout: time.Second,
	})
}

func TestBusyIntervalsMergesSourcesSorted(t *testing.T) {
	host := uuid.New()
	internal := &fakeInternal{busy: map[uuid.UUID][]entity.BusyInterval{
		host: {{Start: at(11, 0), End: at(12, 0), Source: "eventType-1-booking-9"}},
	}}
	provider := &fakeProvider{calendars: map[int64]*fakeCalendar{
		1: {busy: []entity.BusyInterval{{Start: at(9, 50), End: at(10, 20)}}},
	}}
	users := []entity.UserCalendars{{
		UserID: host,
		Credentials: []entity.Credential{
			{ID: 1, UserID: host, Type: entity.IntegrationGoogle},
			{ID: 2, UserID: host, Type: "stripe_payment"},
		},
	}}

	index, err := newAggregator(internal, provider).BusyIntervals(context.Background(), users, day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("BusyIntervals returned error: %v", err)
	}

	got := index.Day(host, "2025-01-06")
	if len(got) != 2 {
		t.Fatalf("expected 2 intervals, got %+v", got)
	}
	if got[0].Source != "1" || !got[0].Start.Equal(at(9, 50)) {
		t.Fatalf("expected external interval first tagged with credential id, got %+v", got[0])
	}
	if got[1].Source != "eventType-1-booking-9" {
		t.Fatalf("unexpected second interval %+v", got[1])
	}
}

func TestBusyIntervalsCachesAdapterResults(t *testing.T) {
	host := uuid.New()
	cal := &fakeCalendar{busy: []entity.BusyInterval{{Start: at(9, 0), End: at(9, 30)}}}
	agg := newAggregator(&fakeInternal{}, &fakeProvider{calendars: map[int64]*fakeCalendar{5: cal}})
	users := []entity.UserCalendars{{
		UserID:            host,
		Credentials:       []entity.Credential{{ID: 5, UserID: host, Type: entity.IntegrationGoogle}},
		SelectedCalendars: []entity.SelectedCalendar{{UserID: host, Integration: entity.IntegrationGoogle, ExternalID: "b"}, {UserID: host, Integration: entity.IntegrationGoogle, ExternalID: "a"}},
	}}

	first, err := agg.BusyIntervals(context.Background(), users, day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("first call returned error: %v", err)
	}
	second, err := agg.BusyIntervals(context.Background(), users, day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("second call returned error: %v", err)
	}

	if n := cal.calls.Load(); n != 1 {
		t.Fatalf("expected one adapter call, got %d", n)
	}
	a, _ := json.Marshal(first.ByUser)
	b, _ := json.Marshal(second.ByUser)
	if string(a) != string(b) {
		t.Fatalf("cached result differs:\n%s\n%s", a, b)
	}
}

func TestBusyIntervalsAdapterFailureIsSoft(t *testing.T) {
	hostA, hostB := uuid.New(), uuid.New()
	provider := &fakeProvider{calendars: map[int64]*fakeCalendar{
		1: {err: fmt.Errorf("timeout")},
		2: {busy: []entity.BusyInterval{{Start: at(14, 0), End: at(15, 0)}}},
		3: {busy: []entity.BusyInterval{{Start: at(16, 0), End: at(17, 0)}}},
	}}
	users := []entity.UserCalendars{
		{UserID: hostA, Credentials: []entity.Credential{
			{ID: 1, UserID: hostA, Type: entity.IntegrationGoogle},
			{ID: 2, UserID: hostA, Type: entity.IntegrationOutlook},
		}},
		{UserID: hostB, Credentials: []entity.Credential{{ID: 3, UserID: hostB, Type: entity.IntegrationGoogle}}},
	}

	index, err := newAggregator(&fakeInternal{}, provider).BusyIntervals(context.Background(), users, day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("adapter failure must not fail the call: %v", err)
	}
	if got := index.ForUser(hostA); len(got) != 1 || got[0].Source != "2" {
		t.Fatalf("sibling credential lost: %+v", got)
	}
	if got := index.ForUser(hostB); len(got) != 1 {
		t.Fatalf("other user affected: %+v", got)
	}
	if len(index.Degraded) != 1 || index.Degraded[0].CredentialID != 1 {
		t.Fatalf("expected one degraded credential, got %+v", index.Degraded)
	}
}

func TestBusyIntervalsInternalFailureIsFatal(t *testing.T) {
	users := []entity.UserCalendars{{UserID: uuid.New()}}
	_, err := newAggregator(&fakeInternal{err: fmt.Errorf("connection refused")}, &fakeProvider{}).
		BusyIntervals(context.Background(), users, day, day.Add(time.Hour))
	if !errors.HasCode(err, errors.ErrDependency) {
		t.Fatalf("expected ErrDependency, got %v", err)
	}
}

func TestBusyIntervalsSplitsAcrossDaysInUTC(t *testing.T) {
	host := uuid.New()
	plus7 := time.FixedZone("UTC+7", 7*3600)
	// 06:00-08:30 local on Jan 7 is 23:00 Jan 6 to 01:30 Jan 7 UTC.
	internal := &fakeInternal{busy: map[uuid.UUID][]entity.BusyInterval{host: {{
		Start:  time.Date(2025, 1, 7, 6, 0, 0, 0, plus7),
		End:    time.Date(2025, 1, 7, 8, 30, 0, 0, plus7),
		Source: "eventType-1-booking-1",
	}}}}

	index, err := newAggregator(internal, &fakeProvider{}).
		BusyIntervals(context.Background(), []entity.UserCalendars{{UserID: host}}, day, day.Add(48*time.Hour))
	if err != nil {
		t.Fatalf("BusyIntervals returned error: %v", err)
	}

	for _, key := range []string{"2025-01-06", "2025-01-07"} {
		got := index.Day(host, key)
		if len(got) != 1 {
			t.Fatalf("expected interval under %s, got %+v", key, got)
		}
		if got[0].Start.Location() != time.UTC {
			t.Fatalf("interval not normalized to UTC: %v", got[0].Start)
		}
	}
	if len(index.ForUser(host)) != 1 {
		t.Fatalf("flattened view must list the interval once")
	}
}

func TestBusyIntervalsRejectsEmptyRange(t *testing.T) {
	_, err := newAggregator(&fakeInternal{}, &fakeProvider{}).BusyIntervals(context.Background(), nil, day, day)
	if !errors.HasCode(err, errors.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCacheKeyIgnoresSelectedCalendarOrder(t *testing.T) {
	a := []entity.SelectedCalendar{{ExternalID: "x"}, {ExternalID: "y"}}
	b := []entity.SelectedCalendar{{ExternalID: "y"}, {ExternalID: "x"}}
	if CacheKey(1, a, day, day.Add(time.Hour)) != CacheKey(1, b, day, day.Add(time.Hour)) {
		t.Fatal("expected identical keys for reordered calendars")
	}
	if CacheKey(1, a, day, day.Add(time.Hour)) == CacheKey(2, a, day, day.Add(time.Hour)) {
		t.Fatal("expected different keys per credential")
	}
}
