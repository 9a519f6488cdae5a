package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"go-booking-api/core/errors"
	"go-booking-api/modules/booking/entity"
	"go-booking-api/modules/booking/repository"
	calendarEntity "go-booking-api/modules/calendar/entity"
	calendarService "go-booking-api/modules/calendar/service"
	eventTypeEntity "go-booking-api/modules/eventtype/entity"

	"github.com/google/uuid"
)

// memStore is an in-memory BookingRepository. One mutex stands in for the database transaction.
type memStore struct {
	mu       sync.Mutex
	bookings map[string]*entity.Booking
	refs     map[uuid.UUID][]entity.Reference
}

func newMemStore() *memStore {
	return &memStore{bookings: map[string]*entity.Booking{}, refs: map[uuid.UUID][]entity.Reference{}}
}

func clone(b *entity.Booking) *entity.Booking {
	c := *b
	c.Attendees = append([]entity.Attendee(nil), b.Attendees...)
	return &c
}

func (m *memStore) seed(b *entity.Booking) *entity.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	m.bookings[b.UID] = clone(b)
	return b
}

func (m *memStore) get(uid string) *entity.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.bookings[uid]; ok {
		return clone(b)
	}
	return nil
}

func (m *memStore) all() []*entity.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.Booking, 0, len(m.bookings))
	for _, b := range m.bookings {
		out = append(out, clone(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

func (m *memStore) FindByUID(_ context.Context, uid string) (*entity.Booking, error) {
	return m.get(uid), nil
}

func (m *memStore) FindManyByUserAndRange(_ context.Context, userID uuid.UUID, from, to time.Time) ([]entity.Booking, error) {
	var out []entity.Booking
	for _, b := range m.all() {
		if b.UserID == userID && b.StartTime.Before(to) && b.EndTime.After(from) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memStore) BusyIntervals(_ context.Context, userID uuid.UUID, from, to time.Time) ([]calendarEntity.BusyInterval, error) {
	var out []calendarEntity.BusyInterval
	for _, b := range m.all() {
		if b.UserID != userID || b.Status != entity.StatusAccepted {
			continue
		}
		if b.StartTime.Before(to) && b.EndTime.After(from) {
			out = append(out, calendarEntity.BusyInterval{
				Start:  b.StartTime,
				End:    b.EndTime,
				Source: repository.BusySource(b.EventTypeID.Int64, b.UID),
			})
		}
	}
	return out, nil
}

func (m *memStore) countLocked(eventTypeID int64, userID uuid.UUID, from, to time.Time) int {
	n := 0
	for _, b := range m.bookings {
		if b.EventTypeID.Int64 != eventTypeID || b.UserID != userID {
			continue
		}
		if b.Status != entity.StatusAccepted && b.Status != entity.StatusPending {
			continue
		}
		if !b.StartTime.Before(from) && b.StartTime.Before(to) {
			n++
		}
	}
	return n
}

func (m *memStore) CountInRange(_ context.Context, eventTypeID int64, userID uuid.UUID, from, to time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countLocked(eventTypeID, userID, from, to), nil
}

// lockedView reads the store while the caller holds its mutex.
type lockedView struct{ m *memStore }

func (v lockedView) CountInRange(_ context.Context, eventTypeID int64, userID uuid.UUID, from, to time.Time) (int, error) {
	return v.m.countLocked(eventTypeID, userID, from, to), nil
}

func (v lockedView) CountOverlapping(_ context.Context, userID uuid.UUID, start, end time.Time) (int, error) {
	n := 0
	for _, b := range v.m.bookings {
		if b.UserID == userID && b.Status == entity.StatusAccepted && b.StartTime.Before(end) && b.EndTime.After(start) {
			n++
		}
	}
	return n, nil
}

func (m *memStore) insertLocked(b *entity.Booking) error {
	if _, exists := m.bookings[b.UID]; exists {
		return errors.NewAppError(errors.ErrConflict, "Booking already exists", nil)
	}
	b.ID = uuid.New()
	for i := range b.Attendees {
		b.Attendees[i].BookingID = b.ID
		b.Attendees[i].Position = i
	}
	m.bookings[b.UID] = clone(b)
	return nil
}

func (m *memStore) CreateWithAttendees(ctx context.Context, bookings []*entity.Booking, guard repository.Guard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if guard != nil {
		if err := guard(ctx, lockedView{m}); err != nil {
			return err
		}
	}
	for _, b := range bookings {
		if _, exists := m.bookings[b.UID]; exists {
			return errors.NewAppError(errors.ErrConflict, "Booking already exists", nil)
		}
	}
	for _, b := range bookings {
		if err := m.insertLocked(b); err != nil {
			return err
		}
	}
	return nil
}

func (m *memStore) AppendAttendee(_ context.Context, uid string, a entity.Attendee, seats int) (*entity.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[uid]
	if !ok {
		return nil, errors.NewAppError(errors.ErrNotFound, "Booking not found", nil)
	}
	if b.Status.Closed() {
		return nil, errors.NewAppError(errors.ErrConflict, "Booking is no longer open for seats", nil)
	}
	if b.SeatsUsed() >= seats {
		return nil, errors.NewAppError(errors.ErrConflict, "No seats available", nil)
	}
	if b.HasAttendee(a.Email) {
		return nil, errors.NewAppError(errors.ErrConflict, "Attendee already has a seat", nil)
	}
	a.BookingID = b.ID
	a.Position = b.SeatsUsed()
	b.Attendees = append(b.Attendees, a)
	return clone(b), nil
}

func (m *memStore) Supersede(ctx context.Context, oldUID string, next *entity.Booking, guard repository.Guard) (*entity.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.bookings[oldUID]
	if !ok {
		return nil, errors.NewAppError(errors.ErrNotFound, "Booking to reschedule not found", nil)
	}
	if old.Status.Closed() {
		return nil, errors.NewAppError(errors.ErrConflict, "Booking can no longer be rescheduled", nil)
	}
	previous := clone(old)
	old.Status = entity.StatusCancelled
	old.Rescheduled = true
	if guard != nil {
		if err := guard(ctx, lockedView{m}); err != nil {
			m.bookings[oldUID] = previous
			return nil, err
		}
	}
	if err := m.insertLocked(next); err != nil {
		m.bookings[oldUID] = previous
		return nil, err
	}
	return clone(old), nil
}

func (m *memStore) UpdateStatus(_ context.Context, uid string, from []entity.Status, to entity.Status, reason string) (*entity.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[uid]
	if !ok {
		return nil, errors.NewAppError(errors.ErrNotFound, "Booking not found", nil)
	}
	allowed := false
	for _, s := range from {
		allowed = allowed || s == b.Status
	}
	if !allowed {
		return nil, errors.NewAppError(errors.ErrConflict, "Booking is "+string(b.Status), nil)
	}
	b.Status = to
	b.CancellationReason = reason
	return clone(b), nil
}

func (m *memStore) AddReferences(_ context.Context, bookingID uuid.UUID, refs []entity.Reference) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range refs {
		r.BookingID = bookingID
		r.ID = int64(len(m.refs[bookingID]) + 1)
		m.refs[bookingID] = append(m.refs[bookingID], r)
	}
	return nil
}

func (m *memStore) FindReferences(_ context.Context, bookingID uuid.UUID) ([]entity.Reference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.Reference(nil), m.refs[bookingID]...), nil
}

type fakeEventTypes struct {
	types map[int64]*eventTypeEntity.EventType
	users map[uuid.UUID]eventTypeEntity.Host
	hosts map[int64][]uuid.UUID
}

func (f *fakeEventTypes) GetBySlug(_ context.Context, s string) (*eventTypeEntity.EventType, error) {
	for _, et := range f.types {
		if et.Slug == s {
			return et, nil
		}
	}
	return nil, errors.NewAppError(errors.ErrNotFound, "Event type not found", nil)
}

func (f *fakeEventTypes) GetByID(_ context.Context, id int64) (*eventTypeEntity.EventType, error) {
	if et, ok := f.types[id]; ok {
		return et, nil
	}
	return nil, errors.NewAppError(errors.ErrNotFound, "Event type not found", nil)
}

func (f *fakeEventTypes) Hosts(_ context.Context, et *eventTypeEntity.EventType, requested []uuid.UUID) ([]eventTypeEntity.Host, error) {
	ids := requested
	if len(ids) == 0 {
		ids = f.hosts[et.ID]
	}
	out := make([]eventTypeEntity.Host, 0, len(ids))
	for i, id := range ids {
		h, ok := f.users[id]
		if !ok {
			return nil, errors.NewAppError(errors.ErrNotFound, "User not found", nil)
		}
		h.Priority = i
		out = append(out, h)
	}
	return out, nil
}

// fakeBusy merges the store's accepted bookings with fixed external intervals.
type fakeBusy struct {
	store    *memStore
	external map[uuid.UUID][]calendarEntity.BusyInterval
}

func (f *fakeBusy) BusyIntervals(ctx context.Context, userIDs []uuid.UUID, from, to time.Time) (*calendarService.BusyIndex, error) {
	perUser := map[uuid.UUID][]calendarEntity.BusyInterval{}
	for _, id := range userIDs {
		internal, _ := f.store.BusyIntervals(ctx, id, from, to)
		perUser[id] = append(internal, f.external[id]...)
	}
	return calendarService.NewBusyIndex(perUser, nil), nil
}

type recorder struct {
	mu     sync.Mutex
	events []entity.BookingEvent
}

func (r *recorder) record(ev entity.BookingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) Notify(_ context.Context, ev entity.BookingEvent) error { return r.record(ev) }
func (r *recorder) Emit(_ context.Context, ev entity.BookingEvent) error   { return r.record(ev) }

func (r *recorder) triggers() map[entity.Trigger]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[entity.Trigger]int{}
	for _, ev := range r.events {
		out[ev.Trigger]++
	}
	return out
}

// fakePayments links payments to bookings in the store and settles them the way the payment repository does.
type fakePayments struct {
	mu    sync.Mutex
	store *memStore
	calls int
	err   error
}

func (f *fakePayments) Initiate(_ context.Context, b *entity.Booking, amount int, currency string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.calls++
	ref := "pay_" + b.UID[:8]

	m := f.store
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, held := range m.bookings {
		sameSeries := b.RecurringGroupID.Valid && held.RecurringGroupID == b.RecurringGroupID
		if held.Status == entity.StatusPending && (held.UID == b.UID || sameSeries) {
			held.PaymentRef = sql.NullString{String: ref, Valid: true}
		}
	}
	return ref, nil
}

func (f *fakePayments) Complete(ctx context.Context, ref string, success bool, next func(context.Context, *entity.Booking) (entity.Status, error)) ([]*entity.Booking, error) {
	m := f.store
	m.mu.Lock()
	defer m.mu.Unlock()

	var held []*entity.Booking
	for _, b := range m.bookings {
		if b.PaymentRef.String == ref && b.Status == entity.StatusPending {
			held = append(held, b)
		}
	}
	if len(held) == 0 {
		return nil, errors.NewAppError(errors.ErrConflict, "No booking is waiting for this payment", nil)
	}
	sort.Slice(held, func(i, j int) bool { return held[i].StartTime.Before(held[j].StartTime) })

	out := make([]*entity.Booking, 0, len(held))
	for _, b := range held {
		if !success {
			b.Status = entity.StatusCancelled
			b.CancellationReason = "Payment failed"
		} else {
			status, err := next(ctx, clone(b))
			if err != nil {
				return nil, err
			}
			b.Paid = true
			b.Status = status
		}
		out = append(out, clone(b))
	}
	return out, nil
}
