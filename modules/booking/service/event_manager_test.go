package service

import (
	"context"
	stdErrors "errors"
	"sync"
	"testing"
	"time"

	"go-booking-api/modules/booking/entity"
	"go-booking-api/modules/calendar/adapter"
	calendarEntity "go-booking-api/modules/calendar/entity"

	"github.com/google/uuid"
)

type fakeCredentials struct {
	creds []calendarEntity.Credential
}

func (f *fakeCredentials) Credentials(context.Context, uuid.UUID) ([]calendarEntity.Credential, error) {
	return f.creds, nil
}

type writeCalendar struct {
	mu      sync.Mutex
	created []calendarEntity.CalendarEvent
	updated []string
	deleted []string
	failing bool
}

func (w *writeCalendar) ListCalendars(context.Context) ([]calendarEntity.Calendar, error) {
	return nil, nil
}

func (w *writeCalendar) GetAvailability(context.Context, time.Time, time.Time, []calendarEntity.SelectedCalendar) ([]calendarEntity.BusyInterval, error) {
	return nil, nil
}

func (w *writeCalendar) CreateEvent(_ context.Context, ev calendarEntity.CalendarEvent) (*calendarEntity.RemoteEvent, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failing {
		return nil, stdErrors.New("provider down")
	}
	w.created = append(w.created, ev)
	return &calendarEntity.RemoteEvent{UID: "remote-" + ev.UID, MeetingURL: "https://meet.example.com/x"}, nil
}

func (w *writeCalendar) UpdateEvent(_ context.Context, remoteUID string, ev calendarEntity.CalendarEvent) (*calendarEntity.RemoteEvent, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.updated = append(w.updated, remoteUID)
	return &calendarEntity.RemoteEvent{UID: remoteUID}, nil
}

func (w *writeCalendar) DeleteEvent(_ context.Context, remoteUID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.deleted = append(w.deleted, remoteUID)
	return nil
}

type staticAdapters map[int64]adapter.Calendar

func (s staticAdapters) For(cred calendarEntity.Credential) (adapter.Calendar, error) {
	if cal, ok := s[cred.ID]; ok {
		return cal, nil
	}
	return nil, stdErrors.New("no adapter")
}

func TestEventManagerCreateStoresReferences(t *testing.T) {
	store := newMemStore()
	good, bad := &writeCalendar{}, &writeCalendar{failing: true}
	creds := &fakeCredentials{creds: []calendarEntity.Credential{
		{ID: 1, UserID: hostA, Type: calendarEntity.IntegrationGoogle},
		{ID: 2, UserID: hostA, Type: calendarEntity.IntegrationOutlook},
		{ID: 3, UserID: hostA, Type: "zoom_video"},
	}}
	m := NewEventManager(creds, staticAdapters{1: good, 2: bad}, store, time.Second)

	b := store.seed(&entity.Booking{
		UID:       "b1",
		UserID:    hostA,
		Title:     "Intro",
		StartTime: slotAt(6, 10, 0),
		EndTime:   slotAt(6, 10, 30),
		Attendees: []entity.Attendee{{Email: "guest@example.com", Name: "Guest"}},
	})
	if err := m.Create(context.Background(), b, calendarEntity.Person{Email: "a@example.com"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if len(good.created) != 1 || len(good.created[0].Attendees) != 1 {
		t.Fatalf("expected one event with the attendee, got %+v", good.created)
	}
	refs, _ := store.FindReferences(context.Background(), b.ID)
	if len(refs) != 1 || refs[0].UID != "remote-b1" || refs[0].CredentialID.Int64 != 1 {
		t.Fatalf("only the successful write is referenced, got %+v", refs)
	}
}

func TestEventManagerRescheduleUpdatesOrCreates(t *testing.T) {
	store := newMemStore()
	google, outlook := &writeCalendar{}, &writeCalendar{}
	creds := &fakeCredentials{creds: []calendarEntity.Credential{
		{ID: 1, UserID: hostA, Type: calendarEntity.IntegrationGoogle},
		{ID: 2, UserID: hostA, Type: calendarEntity.IntegrationOutlook},
	}}
	m := NewEventManager(creds, staticAdapters{1: google, 2: outlook}, store, time.Second)

	old := store.seed(&entity.Booking{UID: "old", UserID: hostA, StartTime: slotAt(6, 10, 0), EndTime: slotAt(6, 10, 30)})
	if err := m.Create(context.Background(), old, calendarEntity.Person{}); err != nil {
		t.Fatal(err)
	}
	// Outlook lost its reference; it gets a fresh event.
	store.refs[old.ID] = store.refs[old.ID][:1]

	next := store.seed(&entity.Booking{UID: "next", UserID: hostA, StartTime: slotAt(7, 10, 0), EndTime: slotAt(7, 10, 30)})
	if err := m.Reschedule(context.Background(), old, next, calendarEntity.Person{}); err != nil {
		t.Fatalf("Reschedule: %v", err)
	}

	if len(google.updated) != 1 || google.updated[0] != "remote-old" {
		t.Fatalf("google event should be updated in place, got %v", google.updated)
	}
	if len(outlook.created) != 2 {
		t.Fatalf("outlook should get a new event, got %d creates", len(outlook.created))
	}
	refs, _ := store.FindReferences(context.Background(), next.ID)
	if len(refs) != 2 {
		t.Fatalf("expected two references on the new booking, got %+v", refs)
	}

	if err := m.Delete(context.Background(), next); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(google.deleted) != 1 || len(outlook.deleted) != 1 {
		t.Fatalf("expected one delete per provider, got %v %v", google.deleted, outlook.deleted)
	}
}
