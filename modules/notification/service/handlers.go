package service

import (
	"context"
	"fmt"
	"time"

	"go-booking-api/core/constants"
	"go-booking-api/core/logger"
	"go-booking-api/core/queue"
	"go-booking-api/core/storage"
	bookingEntity "go-booking-api/modules/booking/entity"
	"go-booking-api/modules/notification/entity"

	"github.com/hibiken/asynq"
)

// BookingReader lets the reminder task see the booking as it is when the task fires.
type BookingReader interface {
	FindByUID(ctx context.Context, uid string) (*bookingEntity.Booking, error)
}

// HandlerRegistry is satisfied by *queue.Worker.
type HandlerRegistry interface {
	HandleFunc(taskType string, handler func(context.Context, *asynq.Task) error)
}

type Handlers struct {
	notifications NotificationService
	store         storage.ObjectStore
	bookings      BookingReader
	now           func() time.Time
}

func NewHandlers(notifications NotificationService, store storage.ObjectStore, bookings BookingReader, now func() time.Time) *Handlers {
	if now == nil {
		now = time.Now
	}
	return &Handlers{notifications: notifications, store: store, bookings: bookings, now: now}
}

func (h *Handlers) Register(r HandlerRegistry) {
	r.HandleFunc(constants.TaskBookingEmail, h.HandleEmail)
	r.HandleFunc(constants.TaskBookingReminder, h.HandleReminder)
	r.HandleFunc(constants.TaskHostNotification, h.HandleHostNotification)
}

// HandleEmail archives the calendar invite for emails that carry one. Rendering and sending
// the message itself belongs to the mail provider.
func (h *Handlers) HandleEmail(ctx context.Context, task *asynq.Task) error {
	var p EmailPayload
	if err := queue.Decode(task, &p); err != nil {
		return err
	}
	recipients := make([]string, 0, len(p.Event.Booking.Attendees)+1)
	for _, a := range p.Event.Booking.Attendees {
		recipients = append(recipients, a.Email)
	}
	if p.Kind == EmailRequest {
		recipients = []string{p.Event.Organizer.Email}
	}

	location := ""
	if p.Kind.Invite() && h.store != nil {
		loc, err := h.store.PutObject(ctx, InviteKey(p.Event.Booking.UID), BuildInvite(p.Event, h.now()), "text/calendar")
		if err != nil {
			return fmt.Errorf("archive invite %s: %w", p.Event.Booking.UID, err)
		}
		location = loc
	}
	logger.Info("NotificationHandlers:HandleEmail:Sent",
		"kind", p.Kind,
		"booking_uid", p.Event.Booking.UID,
		"recipients", len(recipients),
		"invite", location,
	)
	return nil
}

// HandleReminder skips bookings that were cancelled or moved after the reminder was scheduled.
func (h *Handlers) HandleReminder(ctx context.Context, task *asynq.Task) error {
	var p ReminderPayload
	if err := queue.Decode(task, &p); err != nil {
		return err
	}
	current, err := h.bookings.FindByUID(ctx, p.Event.Booking.UID)
	if err != nil {
		return err
	}
	if current == nil || current.Status != bookingEntity.StatusAccepted || !current.StartTime.Equal(p.Event.Booking.StartTime) {
		logger.Info("NotificationHandlers:HandleReminder:Stale", "booking_uid", p.Event.Booking.UID)
		return nil
	}

	return h.notifications.Create(ctx, &entity.Notification{
		UserID:  current.UserID,
		Title:   "Upcoming: " + current.Title,
		Message: "Starts at " + current.StartTime.UTC().Format(time.RFC3339),
		Type:    entity.TypeBookingReminder,
		Data:    bookingData(p.Event),
	})
}

func (h *Handlers) HandleHostNotification(ctx context.Context, task *asynq.Task) error {
	var p HostPayload
	if err := queue.Decode(task, &p); err != nil {
		return err
	}
	n := hostNotification(p)
	if n == nil {
		return nil
	}
	return h.notifications.Create(ctx, n)
}

func hostNotification(p HostPayload) *entity.Notification {
	b := p.Event.Booking
	n := &entity.Notification{UserID: b.UserID, Data: bookingData(p.Event)}
	when := b.StartTime.UTC().Format(time.RFC3339)
	switch p.Kind {
	case EmailScheduled:
		n.Type, n.Title = entity.TypeBookingScheduled, "New booking: "+b.Title
		n.Message = "Scheduled for " + when
	case EmailRescheduled:
		n.Type, n.Title = entity.TypeBookingRescheduled, "Booking rescheduled: "+b.Title
		n.Message = "Moved to " + when
	case EmailRequest:
		n.Type, n.Title = entity.TypeBookingRequested, "Booking request: "+b.Title
		n.Message = "Awaiting your confirmation for " + when
	case EmailCancelled:
		n.Type, n.Title = entity.TypeBookingCancelled, "Booking cancelled: "+b.Title
		n.Message = b.CancellationReason
	case EmailDeclined:
		n.Type, n.Title = entity.TypeBookingRejected, "Booking rejected: "+b.Title
		n.Message = b.CancellationReason
	default:
		return nil
	}
	return n
}

func bookingData(ev bookingEntity.BookingEvent) entity.JSONB {
	data := entity.JSONB{
		"booking_uid":   ev.Booking.UID,
		"event_type_id": ev.EventTypeID,
		"start_time":    ev.Booking.StartTime.UTC().Format(time.RFC3339),
		"status":        string(ev.Booking.Status),
	}
	if ev.RescheduledFrom != "" {
		data["rescheduled_from"] = ev.RescheduledFrom
	}
	if ev.PaymentRequired {
		data["payment_required"] = true
	}
	return data
}
