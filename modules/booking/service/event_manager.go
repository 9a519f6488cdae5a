package service

import (
	"context"
	"database/sql"
	"time"

	"go-booking-api/core/logger"
	"go-booking-api/modules/booking/entity"
	"go-booking-api/modules/booking/repository"
	calendarEntity "go-booking-api/modules/calendar/entity"
	calendarService "go-booking-api/modules/calendar/service"

	"github.com/google/uuid"
)

type CredentialReader interface {
	Credentials(ctx context.Context, userID uuid.UUID) ([]calendarEntity.Credential, error)
}

// EventManager mirrors bookings into the host's external calendars and records the references.
type EventManager interface {
	Create(ctx context.Context, b *entity.Booking, organizer calendarEntity.Person) error
	Reschedule(ctx context.Context, old, next *entity.Booking, organizer calendarEntity.Person) error
	Delete(ctx context.Context, b *entity.Booking) error
}

type eventManager struct {
	credentials CredentialReader
	adapters    calendarService.AdapterProvider
	store       repository.BookingRepository
	timeout     time.Duration
}

func NewEventManager(credentials CredentialReader, adapters calendarService.AdapterProvider, store repository.BookingRepository, timeout time.Duration) EventManager {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &eventManager{credentials: credentials, adapters: adapters, store: store, timeout: timeout}
}

func calendarEvent(b *entity.Booking, organizer calendarEntity.Person) calendarEntity.CalendarEvent {
	ev := calendarEntity.CalendarEvent{
		UID:         b.UID,
		Title:       b.Title,
		Description: b.Description,
		Location:    b.Location,
		Start:       b.StartTime.UTC(),
		End:         b.EndTime.UTC(),
		Organizer:   organizer,
	}
	for _, a := range b.Attendees {
		ev.Attendees = append(ev.Attendees, calendarEntity.Person{Name: a.Name, Email: a.Email, TimeZone: a.TimeZone})
	}
	return ev
}

func (m *eventManager) calendarCredentials(ctx context.Context, userID uuid.UUID) ([]calendarEntity.Credential, error) {
	creds, err := m.credentials.Credentials(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := creds[:0:0]
	for _, c := range creds {
		if c.IsCalendar() && !c.Invalid {
			out = append(out, c)
		}
	}
	return out, nil
}

// Create writes the booking to every calendar credential of the host. Per-credential failures are logged.
func (m *eventManager) Create(ctx context.Context, b *entity.Booking, organizer calendarEntity.Person) error {
	creds, err := m.calendarCredentials(ctx, b.UserID)
	if err != nil {
		return err
	}
	ev := calendarEvent(b, organizer)
	var refs []entity.Reference
	for _, cred := range creds {
		if ref, ok := m.create(ctx, cred, ev); ok {
			refs = append(refs, ref)
		}
	}
	if len(refs) == 0 {
		return nil
	}
	return m.store.AddReferences(ctx, b.ID, refs)
}

func (m *eventManager) create(ctx context.Context, cred calendarEntity.Credential, ev calendarEntity.CalendarEvent) (entity.Reference, bool) {
	cal, err := m.adapters.For(cred)
	if err != nil {
		logger.Warn("EventManager:Create:Adapter:Error", "credential_id", cred.ID, "error", err)
		return entity.Reference{}, false
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	remote, err := cal.CreateEvent(ctx, ev)
	if err != nil {
		logger.Warn("EventManager:Create:Error", "credential_id", cred.ID, "booking_uid", ev.UID, "error", err)
		return entity.Reference{}, false
	}
	return toReference(cred, remote), true
}

// Reschedule updates the events created for old; credentials without a usable reference get a new event.
func (m *eventManager) Reschedule(ctx context.Context, old, next *entity.Booking, organizer calendarEntity.Person) error {
	creds, err := m.calendarCredentials(ctx, next.UserID)
	if err != nil {
		return err
	}
	previous, err := m.store.FindReferences(ctx, old.ID)
	if err != nil {
		return err
	}
	byCredential := make(map[int64]entity.Reference, len(previous))
	for _, ref := range previous {
		if ref.CredentialID.Valid {
			byCredential[ref.CredentialID.Int64] = ref
		}
	}

	ev := calendarEvent(next, organizer)
	var refs []entity.Reference
	for _, cred := range creds {
		if prev, ok := byCredential[cred.ID]; ok {
			if ref, ok := m.update(ctx, cred, prev.UID, ev); ok {
				refs = append(refs, ref)
				continue
			}
		}
		if ref, ok := m.create(ctx, cred, ev); ok {
			refs = append(refs, ref)
		}
	}
	if len(refs) == 0 {
		return nil
	}
	return m.store.AddReferences(ctx, next.ID, refs)
}

func (m *eventManager) update(ctx context.Context, cred calendarEntity.Credential, remoteUID string, ev calendarEntity.CalendarEvent) (entity.Reference, bool) {
	cal, err := m.adapters.For(cred)
	if err != nil {
		logger.Warn("EventManager:Update:Adapter:Error", "credential_id", cred.ID, "error", err)
		return entity.Reference{}, false
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	remote, err := cal.UpdateEvent(ctx, remoteUID, ev)
	if err != nil {
		logger.Warn("EventManager:Update:Error", "credential_id", cred.ID, "remote_uid", remoteUID, "error", err)
		return entity.Reference{}, false
	}
	return toReference(cred, remote), true
}

// Delete removes the external events of a cancelled booking.
func (m *eventManager) Delete(ctx context.Context, b *entity.Booking) error {
	refs, err := m.store.FindReferences(ctx, b.ID)
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return nil
	}
	creds, err := m.calendarCredentials(ctx, b.UserID)
	if err != nil {
		return err
	}
	byID := make(map[int64]calendarEntity.Credential, len(creds))
	for _, c := range creds {
		byID[c.ID] = c
	}
	for _, ref := range refs {
		cred, ok := byID[ref.CredentialID.Int64]
		if !ref.CredentialID.Valid || !ok {
			continue
		}
		cal, err := m.adapters.For(cred)
		if err != nil {
			logger.Warn("EventManager:Delete:Adapter:Error", "credential_id", cred.ID, "error", err)
			continue
		}
		dctx, cancel := context.WithTimeout(ctx, m.timeout)
		if err := cal.DeleteEvent(dctx, ref.UID); err != nil {
			logger.Warn("EventManager:Delete:Error", "credential_id", cred.ID, "remote_uid", ref.UID, "error", err)
		}
		cancel()
	}
	return nil
}

func toReference(cred calendarEntity.Credential, remote *calendarEntity.RemoteEvent) entity.Reference {
	ref := entity.Reference{
		Type:         cred.Type,
		CredentialID: sql.NullInt64{Int64: cred.ID, Valid: true},
	}
	if remote != nil {
		ref.UID = remote.UID
		ref.MeetingURL = remote.MeetingURL
		if remote.Type != "" {
			ref.Type = remote.Type
		}
	}
	return ref
}
