package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"go-booking-api/core/errors"
	"go-booking-api/core/logger"
	"go-booking-api/core/utils"
	"go-booking-api/modules/booking/dto"
	"go-booking-api/modules/booking/entity"
	"go-booking-api/modules/booking/repository"
	calendarEntity "go-booking-api/modules/calendar/entity"
	eventTypeEntity "go-booking-api/modules/eventtype/entity"
	eventTypeService "go-booking-api/modules/eventtype/service"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("go-booking-api/modules/booking")

// Notifier schedules emails, reminders and in-app notifications for a booking event.
type Notifier interface {
	Notify(ctx context.Context, ev entity.BookingEvent) error
}

// WebhookEmitter delivers a booking event to the subscribers of the host and event type.
type WebhookEmitter interface {
	Emit(ctx context.Context, ev entity.BookingEvent) error
}

// PaymentGateway opens payments for bookings held until they are paid and settles their outcome.
type PaymentGateway interface {
	// Initiate opens a payment for b and returns its reference.
	Initiate(ctx context.Context, b *entity.Booking, amount int, currency string) (string, error)
	// Complete records the outcome of a payment and returns the bookings it moved.
	Complete(ctx context.Context, paymentUID string, success bool, next func(context.Context, *entity.Booking) (entity.Status, error)) ([]*entity.Booking, error)
}

type BookingService interface {
	Create(ctx context.Context, req *dto.CreateBookingRequest, actor *uuid.UUID) (*dto.BookingResult, error)
	Confirm(ctx context.Context, uid string, actor uuid.UUID) (*dto.BookingResponse, error)
	Reject(ctx context.Context, uid string, actor uuid.UUID, reason string) (*dto.BookingResponse, error)
	Cancel(ctx context.Context, uid string, actor uuid.UUID, reason string) (*dto.BookingResponse, error)
	// SettlePayment applies a payment outcome to the bookings the payment holds.
	SettlePayment(ctx context.Context, paymentUID string, success bool) ([]dto.BookingResponse, error)
	// Drain waits for detached side effects to finish.
	Drain()
}

// Options wires the booking service. Events, Notifier, Webhooks and Payments may be nil.
type Options struct {
	Store         repository.BookingRepository
	EventTypes    eventTypeService.EventTypeService
	Busy          BusyReader
	Events        EventManager
	Notifier      Notifier
	Webhooks      WebhookEmitter
	Payments      PaymentGateway
	Now           func() time.Time
	DefaultLocale string
}

type bookingService struct {
	opts Options
	wg   sync.WaitGroup
}

func NewBookingService(opts Options) BookingService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DefaultLocale == "" {
		opts.DefaultLocale = "en"
	}
	return &bookingService{opts: opts}
}

func (s *bookingService) Create(ctx context.Context, req *dto.CreateBookingRequest, actor *uuid.UUID) (*dto.BookingResult, error) {
	ctx, span := tracer.Start(ctx, "BookingService.Create")
	defer span.End()

	result, err := s.create(ctx, req, actor)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("booking.uid", result.UID),
		attribute.String("booking.status", string(result.Status)),
		attribute.Bool("booking.payment_required", result.PaymentRequired),
	)
	return result, nil
}

func (s *bookingService) create(ctx context.Context, req *dto.CreateBookingRequest, actor *uuid.UUID) (*dto.BookingResult, error) {
	requestedAt := s.opts.Now()
	logger.Info("BookingService:Create:Start", "event_type_id", req.EventTypeID, "slug", req.EventTypeSlug, "start", req.Start)

	et, err := s.eventType(ctx, req)
	if err != nil {
		return nil, err
	}
	start, end := req.Start.UTC(), req.End.UTC()

	if err := CheckCustomInputs(et.CustomInputs, req.Responses); err != nil {
		return nil, err
	}
	if err := CheckBounds(et, start, end, requestedAt); err != nil {
		return nil, err
	}

	attendee := entity.Attendee{
		Email:    normalizeEmail(req.Attendee.Email),
		Name:     strings.TrimSpace(req.Attendee.Name),
		TimeZone: req.TimeZone,
		Locale:   s.locale(req.Language),
	}

	if et.Seats() > 0 && len(req.Guests) > 0 {
		return nil, errors.NewAppError(errors.ErrValidation, "Guests cannot be added to a seated event", nil)
	}
	if req.BookingUID != "" {
		if et.Seats() == 0 {
			return nil, errors.NewAppError(errors.ErrNotFound, "Event type does not have seats", nil)
		}
		return s.joinSeat(ctx, et, req.BookingUID, start, attendee, requestedAt)
	}

	var old *entity.Booking
	if req.RescheduleUID != "" {
		if old, err = s.rescheduleTarget(ctx, req.RescheduleUID, et); err != nil {
			return nil, err
		}
	}

	occurrences := []time.Time{start}
	if old == nil {
		occurrences = Occurrences(start, et.Recurring, req.RecurringCount, et.Location())
		if err := CheckPeriod(et, occurrences[1:], requestedAt); err != nil {
			return nil, err
		}
	}
	slots := make([]Slot, len(occurrences))
	for i, o := range occurrences {
		slots[i] = Slot{Start: o, End: o.Add(et.Duration())}
	}

	hosts, err := s.resolveHosts(ctx, et, req.Users, old, slots)
	if err != nil {
		return nil, err
	}
	organizer := hosts[0]

	// The reschedule target still counts until it is superseded, so only the in-transaction check applies.
	if old == nil {
		if err := CheckLimits(ctx, s.opts.Store, et, organizer.UserID, occurrences); err != nil {
			if _, typed := errors.As(err); !typed {
				return nil, errors.NewAppError(errors.ErrDependency, "Failed to count bookings", err)
			}
			return nil, err
		}
	}

	paid := old != nil && old.Paid
	selfReschedule := old != nil && actor != nil && *actor == old.UserID
	paymentRequired := et.Price > 0 && !paid && !selfReschedule
	if paymentRequired && s.opts.Payments == nil {
		return nil, errors.NewAppError(errors.ErrValidation, "Missing payment credentials", nil)
	}
	status := DecideStatus(et, start, requestedAt, paymentRequired, selfReschedule)

	// A seated booking holds the booker only; further attendees join through their own seat.
	attendees := []entity.Attendee{attendee}
	if et.Seats() == 0 {
		attendees = buildAttendees(attendee, req.Guests, hosts[1:], s.opts.DefaultLocale)
	}
	bookings := make([]*entity.Booking, len(occurrences))
	for i, o := range occurrences {
		bookings[i] = &entity.Booking{
			UID:         NewUID(hostIdentifier(organizer), o, requestedAt),
			EventTypeID: sql.NullInt64{Int64: et.ID, Valid: true},
			UserID:      organizer.UserID,
			Title:       bookingTitle(et, organizer, attendee),
			Description: req.Description,
			Location:    req.Location,
			StartTime:   o,
			EndTime:     o.Add(et.Duration()),
			Status:      status,
			Paid:        paid,
			Responses:   entity.Responses(req.Responses),
			Attendees:   append([]entity.Attendee(nil), attendees...),
		}
	}
	if len(bookings) > 1 {
		group := req.RecurringEventID
		if group == "" {
			group = utils.GenerateGroupID()
		}
		for _, b := range bookings {
			b.RecurringGroupID = sql.NullString{String: group, Valid: true}
		}
	}

	hostIDs := make([]uuid.UUID, len(hosts))
	for i, h := range hosts {
		hostIDs[i] = h.UserID
	}
	guard := Guards(SlotGuard(hostIDs, slots), LimitGuard(et, organizer.UserID, occurrences))
	if old != nil {
		next := bookings[0]
		next.PaymentRef = old.PaymentRef
		next.RecurringGroupID = old.RecurringGroupID
		next.RescheduledFromUID = sql.NullString{String: old.UID, Valid: true}
		superseded, err := s.opts.Store.Supersede(ctx, old.UID, next, guard)
		if err != nil {
			return nil, err
		}
		old = superseded
	} else if err := s.opts.Store.CreateWithAttendees(ctx, bookings, guard); err != nil {
		return nil, err
	}

	if paymentRequired && !bookings[0].PaymentRef.Valid {
		ref, err := s.opts.Payments.Initiate(ctx, bookings[0], et.Price, et.Currency)
		if err != nil {
			logger.Error("BookingService:Create:Payment:Error", "uid", bookings[0].UID, "error", err)
			s.release(ctx, bookings, "Payment could not be initiated")
			if _, typed := errors.As(err); typed {
				return nil, err
			}
			return nil, errors.NewAppError(errors.ErrDependency, "Failed to initiate payment", err)
		}
		for _, b := range bookings {
			b.PaymentRef = sql.NullString{String: ref, Valid: true}
		}
	}

	s.afterAdmission(ctx, et, organizer, bookings, old, paymentRequired)
	logger.Info("BookingService:Create:Success", "uid", bookings[0].UID, "status", status, "host_id", organizer.UserID, "occurrences", len(bookings))

	result := &dto.BookingResult{BookingResponse: dto.ToBookingResponse(bookings[0]), PaymentRequired: paymentRequired}
	if len(bookings) > 1 {
		for _, b := range bookings {
			result.Occurrences = append(result.Occurrences, dto.ToBookingResponse(b))
		}
	}
	return result, nil
}

func (s *bookingService) eventType(ctx context.Context, req *dto.CreateBookingRequest) (*eventTypeEntity.EventType, error) {
	if req.EventTypeID > 0 {
		return s.opts.EventTypes.GetByID(ctx, req.EventTypeID)
	}
	if req.EventTypeSlug != "" {
		return s.opts.EventTypes.GetBySlug(ctx, req.EventTypeSlug)
	}
	return nil, errors.NewAppError(errors.ErrValidation, "event_type_id or event_type_slug is required", nil)
}

func (s *bookingService) rescheduleTarget(ctx context.Context, uid string, et *eventTypeEntity.EventType) (*entity.Booking, error) {
	old, err := s.opts.Store.FindByUID(ctx, uid)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDependency, "Failed to load booking", err)
	}
	if old == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Booking to reschedule not found", nil)
	}
	if old.EventTypeID.Valid && old.EventTypeID.Int64 != et.ID {
		return nil, errors.NewAppError(errors.ErrValidation, "Booking belongs to another event type", nil)
	}
	if old.Status.Closed() {
		return nil, errors.NewAppError(errors.ErrConflict, "Booking can no longer be rescheduled", nil)
	}
	return old, nil
}

func (s *bookingService) resolveHosts(ctx context.Context, et *eventTypeEntity.EventType, requested []uuid.UUID, old *entity.Booking, slots []Slot) ([]eventTypeEntity.Host, error) {
	candidates, err := s.opts.EventTypes.Hosts(ctx, et, requested)
	if err != nil {
		return nil, err
	}
	ignore := ""
	if old != nil {
		ignore = repository.BusySource(old.EventTypeID.Int64, old.UID)
		if et.SchedulingType == eventTypeEntity.SchedulingRoundRobin {
			candidates = preferHost(candidates, old.UserID)
		}
	}

	ids := make([]uuid.UUID, len(candidates))
	for i, h := range candidates {
		ids[i] = h.UserID
	}
	index, err := s.opts.Busy.BusyIntervals(ctx, ids, slots[0].Start, slots[len(slots)-1].End)
	if err != nil {
		return nil, err
	}
	return ResolveHosts(et.SchedulingType, candidates, index, slots, ignore)
}

// joinSeat admits one more attendee to an existing seated booking without re-checking the host.
func (s *bookingService) joinSeat(ctx context.Context, et *eventTypeEntity.EventType, uid string, start time.Time, attendee entity.Attendee, requestedAt time.Time) (*dto.BookingResult, error) {
	target, err := s.opts.Store.FindByUID(ctx, uid)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDependency, "Failed to load booking", err)
	}
	if target == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Booking not found", nil)
	}
	if target.EventTypeID.Int64 != et.ID {
		return nil, errors.NewAppError(errors.ErrValidation, "Booking belongs to another event type", nil)
	}
	if !target.StartTime.Equal(start) {
		return nil, errors.NewAppError(errors.ErrValidation, "Seat belongs to another time slot", nil)
	}

	b, err := s.opts.Store.AppendAttendee(ctx, uid, attendee, et.Seats())
	if err != nil {
		return nil, err
	}
	logger.Info("BookingService:joinSeat:Success", "uid", uid, "seats_used", b.SeatsUsed(), "seats", et.Seats())

	s.detach(ctx, "webhook", func(ctx context.Context) error {
		return s.emit(ctx, entity.BookingEvent{
			Trigger:     entity.TriggerCreated,
			Booking:     *b,
			EventTypeID: et.ID,
			EventTitle:  et.Title,
			Organizer:   entity.Organizer{UserID: b.UserID},
			OccurredAt:  requestedAt,
		})
	})
	return &dto.BookingResult{BookingResponse: dto.ToBookingResponse(b)}, nil
}

// afterAdmission fans the committed bookings out to collaborators. Failures are logged only.
func (s *bookingService) afterAdmission(ctx context.Context, et *eventTypeEntity.EventType, organizer eventTypeEntity.Host, bookings []*entity.Booking, old *entity.Booking, paymentRequired bool) {
	person := calendarEntity.Person{Name: organizer.Name, Email: organizer.Email, TimeZone: organizer.TimeZone}
	org := entity.Organizer{UserID: organizer.UserID, Email: organizer.Email, Name: organizer.Name, TimeZone: organizer.TimeZone}
	now := s.opts.Now()

	for _, b := range bookings {
		trigger := entity.TriggerCreated
		switch {
		case b.Status == entity.StatusPending:
			trigger = entity.TriggerRequested
		case old != nil:
			trigger = entity.TriggerRescheduled
		}
		ev := entity.BookingEvent{
			Trigger:         trigger,
			Booking:         *b,
			EventTypeID:     et.ID,
			EventTitle:      et.Title,
			Organizer:       org,
			PaymentRequired: paymentRequired,
			OccurredAt:      now,
		}
		if old != nil {
			ev.RescheduledFrom = old.UID
		}

		s.detach(ctx, "notify", func(ctx context.Context) error { return s.notify(ctx, ev) })
		s.detach(ctx, "webhook", func(ctx context.Context) error { return s.emit(ctx, ev) })
		if b.Status != entity.StatusAccepted {
			continue
		}
		ended := ev
		ended.Trigger = entity.TriggerMeetingEnded
		s.detach(ctx, "webhook", func(ctx context.Context) error { return s.emit(ctx, ended) })

		if s.opts.Events == nil {
			continue
		}
		if old != nil {
			s.detach(ctx, "calendar", func(ctx context.Context) error { return s.opts.Events.Reschedule(ctx, old, b, person) })
		} else {
			s.detach(ctx, "calendar", func(ctx context.Context) error { return s.opts.Events.Create(ctx, b, person) })
		}
	}
}

func (s *bookingService) Confirm(ctx context.Context, uid string, actor uuid.UUID) (*dto.BookingResponse, error) {
	b, err := s.transition(ctx, uid, actor, []entity.Status{entity.StatusPending}, entity.StatusAccepted, "", awaitingPayment)
	if err != nil {
		return nil, err
	}
	s.accepted(ctx, b)
	resp := dto.ToBookingResponse(b)
	return &resp, nil
}

// awaitingPayment keeps a booking held for payment out of the host's hands.
func awaitingPayment(b *entity.Booking) error {
	if b.PaymentRef.Valid && !b.Paid {
		return errors.NewAppError(errors.ErrConflict, "Booking is awaiting payment", nil)
	}
	return nil
}

// accepted announces a booking that just became effective and puts it in the host's calendars.
func (s *bookingService) accepted(ctx context.Context, b *entity.Booking) {
	et, org := s.eventContext(ctx, b)
	ev := entity.BookingEvent{Trigger: entity.TriggerCreated, Booking: *b, EventTypeID: b.EventTypeID.Int64, EventTitle: et, Organizer: org, OccurredAt: s.opts.Now()}
	s.detach(ctx, "notify", func(ctx context.Context) error { return s.notify(ctx, ev) })
	s.detach(ctx, "webhook", func(ctx context.Context) error { return s.emit(ctx, ev) })
	ended := ev
	ended.Trigger = entity.TriggerMeetingEnded
	s.detach(ctx, "webhook", func(ctx context.Context) error { return s.emit(ctx, ended) })
	if s.opts.Events != nil {
		person := calendarEntity.Person{Name: org.Name, Email: org.Email, TimeZone: org.TimeZone}
		s.detach(ctx, "calendar", func(ctx context.Context) error { return s.opts.Events.Create(ctx, b, person) })
	}
}

func (s *bookingService) SettlePayment(ctx context.Context, paymentUID string, success bool) ([]dto.BookingResponse, error) {
	if s.opts.Payments == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Payment not found", nil)
	}
	settled, err := s.opts.Payments.Complete(ctx, paymentUID, success, s.statusAfterPayment)
	if err != nil {
		return nil, err
	}

	out := make([]dto.BookingResponse, 0, len(settled))
	for _, held := range settled {
		b, err := s.opts.Store.FindByUID(ctx, held.UID)
		if err != nil || b == nil {
			logger.Warn("BookingService:SettlePayment:Reload:Error", "uid", held.UID, "error", err)
			b = held
		}
		switch b.Status {
		case entity.StatusAccepted:
			s.accepted(ctx, b)
		case entity.StatusPending:
			s.announce(ctx, b, entity.TriggerRequested)
		case entity.StatusCancelled:
			s.announce(ctx, b, entity.TriggerCancelled)
		}
		out = append(out, dto.ToBookingResponse(b))
	}
	logger.Info("BookingService:SettlePayment:Success", "payment_uid", paymentUID, "success", success, "bookings", len(out))
	return out, nil
}

// statusAfterPayment applies the confirmation policy to a booking whose payment went through.
func (s *bookingService) statusAfterPayment(ctx context.Context, b *entity.Booking) (entity.Status, error) {
	if !b.EventTypeID.Valid {
		return entity.StatusAccepted, nil
	}
	et, err := s.opts.EventTypes.GetByID(ctx, b.EventTypeID.Int64)
	if err != nil {
		return "", err
	}
	return DecideStatus(et, b.StartTime, s.opts.Now(), false, false), nil
}

func (s *bookingService) announce(ctx context.Context, b *entity.Booking, trigger entity.Trigger) {
	et, org := s.eventContext(ctx, b)
	ev := entity.BookingEvent{Trigger: trigger, Booking: *b, EventTypeID: b.EventTypeID.Int64, EventTitle: et, Organizer: org, OccurredAt: s.opts.Now()}
	s.detach(ctx, "notify", func(ctx context.Context) error { return s.notify(ctx, ev) })
	s.detach(ctx, "webhook", func(ctx context.Context) error { return s.emit(ctx, ev) })
}

// release cancels bookings that were written but cannot be held. Failures are logged only.
func (s *bookingService) release(ctx context.Context, bookings []*entity.Booking, reason string) {
	for _, b := range bookings {
		if _, err := s.opts.Store.UpdateStatus(ctx, b.UID, []entity.Status{entity.StatusPending}, entity.StatusCancelled, reason); err != nil {
			logger.Error("BookingService:release:Error", "uid", b.UID, "error", err)
		}
	}
}

func (s *bookingService) Reject(ctx context.Context, uid string, actor uuid.UUID, reason string) (*dto.BookingResponse, error) {
	b, err := s.transition(ctx, uid, actor, []entity.Status{entity.StatusPending}, entity.StatusRejected, reason, nil)
	if err != nil {
		return nil, err
	}
	s.announce(ctx, b, entity.TriggerRejected)
	resp := dto.ToBookingResponse(b)
	return &resp, nil
}

func (s *bookingService) Cancel(ctx context.Context, uid string, actor uuid.UUID, reason string) (*dto.BookingResponse, error) {
	b, err := s.transition(ctx, uid, actor, []entity.Status{entity.StatusPending, entity.StatusAccepted}, entity.StatusCancelled, reason, nil)
	if err != nil {
		return nil, err
	}
	s.announce(ctx, b, entity.TriggerCancelled)
	if s.opts.Events != nil {
		s.detach(ctx, "calendar", func(ctx context.Context) error { return s.opts.Events.Delete(ctx, b) })
	}
	resp := dto.ToBookingResponse(b)
	return &resp, nil
}

// transition moves a booking owned by actor between states. precondition, when set, can veto the move.
func (s *bookingService) transition(ctx context.Context, uid string, actor uuid.UUID, from []entity.Status, to entity.Status, reason string, precondition func(*entity.Booking) error) (*entity.Booking, error) {
	current, err := s.opts.Store.FindByUID(ctx, uid)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDependency, "Failed to load booking", err)
	}
	if current == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Booking not found", nil)
	}
	if current.UserID != actor {
		return nil, errors.NewAppError(errors.ErrForbidden, "Only the host can change this booking", nil)
	}
	if precondition != nil {
		if err := precondition(current); err != nil {
			return nil, err
		}
	}
	b, err := s.opts.Store.UpdateStatus(ctx, uid, from, to, reason)
	if err != nil {
		return nil, err
	}
	logger.Info("BookingService:transition:Success", "uid", uid, "from", current.Status, "to", to)
	return b, nil
}

// eventContext loads what collaborators need to describe a booking; lookups failing only thin the payload.
func (s *bookingService) eventContext(ctx context.Context, b *entity.Booking) (string, entity.Organizer) {
	org := entity.Organizer{UserID: b.UserID}
	if !b.EventTypeID.Valid {
		return b.Title, org
	}
	et, err := s.opts.EventTypes.GetByID(ctx, b.EventTypeID.Int64)
	if err != nil {
		logger.Warn("BookingService:eventContext:EventType:Error", "uid", b.UID, "error", err)
		return b.Title, org
	}
	hosts, err := s.opts.EventTypes.Hosts(ctx, et, []uuid.UUID{b.UserID})
	if err == nil && len(hosts) > 0 {
		h := hosts[0]
		org = entity.Organizer{UserID: h.UserID, Email: h.Email, Name: h.Name, TimeZone: h.TimeZone}
	}
	return et.Title, org
}

func (s *bookingService) notify(ctx context.Context, ev entity.BookingEvent) error {
	if s.opts.Notifier == nil {
		return nil
	}
	return s.opts.Notifier.Notify(ctx, ev)
}

func (s *bookingService) emit(ctx context.Context, ev entity.BookingEvent) error {
	if s.opts.Webhooks == nil {
		return nil
	}
	return s.opts.Webhooks.Emit(ctx, ev)
}

// detach runs fn after the response is decided. It outlives the request context.
func (s *bookingService) detach(ctx context.Context, effect string, fn func(ctx context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := fn(ctx); err != nil {
			logger.Warn("BookingService:SideEffect:Error", "effect", effect, "error", err)
		}
	}()
}

func (s *bookingService) Drain() {
	s.wg.Wait()
}

func (s *bookingService) locale(language string) string {
	if language == "" {
		return s.opts.DefaultLocale
	}
	return language
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// buildAttendees orders the booker first, then guests, then collective co-hosts, dropping repeated emails.
func buildAttendees(booker entity.Attendee, guests []string, coHosts []eventTypeEntity.Host, defaultLocale string) []entity.Attendee {
	seen := map[string]bool{booker.Email: true}
	out := []entity.Attendee{booker}
	for _, g := range guests {
		email := normalizeEmail(g)
		if email == "" || seen[email] {
			continue
		}
		seen[email] = true
		out = append(out, entity.Attendee{Email: email, Name: email, TimeZone: booker.TimeZone, Locale: booker.Locale})
	}
	for _, h := range coHosts {
		email := normalizeEmail(h.Email)
		if email == "" || seen[email] {
			continue
		}
		seen[email] = true
		out = append(out, entity.Attendee{Email: email, Name: h.Name, TimeZone: h.TimeZone, Locale: defaultLocale})
	}
	return out
}

func hostIdentifier(h eventTypeEntity.Host) string {
	if h.Username != "" {
		return h.Username
	}
	return h.UserID.String()
}

func bookingTitle(et *eventTypeEntity.EventType, organizer eventTypeEntity.Host, attendee entity.Attendee) string {
	host := organizer.Name
	if host == "" {
		host = hostIdentifier(organizer)
	}
	return fmt.Sprintf("%s between %s and %s", et.Title, host, attendee.Name)
}
