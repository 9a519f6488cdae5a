package service

import (
	"context"
	stdErrors "errors"
	"time"

	"go-booking-api/core/constants"
	"go-booking-api/core/logger"
	"go-booking-api/core/queue"
	bookingEntity "go-booking-api/modules/booking/entity"

	"github.com/hibiken/asynq"
)

// Dispatcher turns booking events into email, reminder and host notification tasks.
type Dispatcher struct {
	queue        queue.Enqueuer
	reminderLead time.Duration
	now          func() time.Time
}

func NewDispatcher(q queue.Enqueuer, reminderLead time.Duration, now func() time.Time) *Dispatcher {
	if now == nil {
		now = time.Now
	}
	return &Dispatcher{queue: q, reminderLead: reminderLead, now: now}
}

func emailKind(t bookingEntity.Trigger) (EmailKind, bool) {
	switch t {
	case bookingEntity.TriggerCreated:
		return EmailScheduled, true
	case bookingEntity.TriggerRescheduled:
		return EmailRescheduled, true
	case bookingEntity.TriggerRequested:
		return EmailRequest, true
	case bookingEntity.TriggerCancelled:
		return EmailCancelled, true
	case bookingEntity.TriggerRejected:
		return EmailDeclined, true
	}
	return "", false
}

func (d *Dispatcher) Notify(ctx context.Context, ev bookingEntity.BookingEvent) error {
	kind, ok := emailKind(ev.Trigger)
	if !ok {
		return nil
	}

	if err := d.enqueue(ctx, constants.TaskBookingEmail, EmailPayload{Kind: kind, Event: ev},
		asynq.Queue(constants.QueueDefault), asynq.MaxRetry(5)); err != nil {
		return err
	}
	if err := d.enqueue(ctx, constants.TaskHostNotification, HostPayload{Kind: kind, Event: ev},
		asynq.Queue(constants.QueueLow), asynq.MaxRetry(3)); err != nil {
		return err
	}

	if kind == EmailScheduled || kind == EmailRescheduled {
		return d.scheduleReminder(ctx, ev)
	}
	return nil
}

func (d *Dispatcher) scheduleReminder(ctx context.Context, ev bookingEntity.BookingEvent) error {
	if d.reminderLead <= 0 || ev.Booking.Status != bookingEntity.StatusAccepted {
		return nil
	}
	at := ev.Booking.StartTime.Add(-d.reminderLead)
	if !at.After(d.now()) {
		logger.Debug("Dispatcher:scheduleReminder:TooLate", "booking_uid", ev.Booking.UID, "start", ev.Booking.StartTime)
		return nil
	}
	err := d.enqueue(ctx, constants.TaskBookingReminder, ReminderPayload{Event: ev},
		asynq.Queue(constants.QueueDefault),
		asynq.ProcessAt(at),
		asynq.TaskID("reminder:"+ev.Booking.UID),
	)
	if stdErrors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

func (d *Dispatcher) enqueue(ctx context.Context, taskType string, payload any, opts ...asynq.Option) error {
	task, err := queue.NewTask(taskType, payload)
	if err != nil {
		return err
	}
	info, err := d.queue.EnqueueContext(ctx, task, opts...)
	if stdErrors.Is(err, asynq.ErrTaskIDConflict) {
		return err
	}
	if err != nil {
		logger.Error("Dispatcher:enqueue:Error", "type", taskType, "error", err)
		return err
	}
	logger.Debug("Dispatcher:enqueue:Success", "type", taskType, "task_id", info.ID)
	return nil
}
