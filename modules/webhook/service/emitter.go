package service

import (
	"context"
	"encoding/json"
	"time"

	"go-booking-api/core/constants"
	"go-booking-api/core/logger"
	"go-booking-api/core/queue"
	bookingEntity "go-booking-api/modules/booking/entity"
	"go-booking-api/modules/webhook/entity"
	"go-booking-api/modules/webhook/repository"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// DeliveryPayload is one queued POST to one subscriber. The body is rendered at emit time so
// retries send identical bytes.
type DeliveryPayload struct {
	WebhookID  uuid.UUID       `json:"webhook_id"`
	Trigger    string          `json:"trigger"`
	BookingUID string          `json:"booking_uid"`
	StartTime  time.Time       `json:"start_time"`
	EndTime    time.Time       `json:"end_time"`
	Body       json.RawMessage `json:"body"`
}

// Emitter fans a booking event out to its subscribers as delivery tasks.
type Emitter struct {
	repo  repository.WebhookRepository
	queue queue.Enqueuer
}

func NewEmitter(repo repository.WebhookRepository, q queue.Enqueuer) *Emitter {
	return &Emitter{repo: repo, queue: q}
}

func (e *Emitter) Emit(ctx context.Context, ev bookingEntity.BookingEvent) error {
	trigger := string(ev.Trigger)
	hooks, err := e.repo.FindSubscribers(ctx, ev.Booking.UserID, ev.EventTypeID, trigger)
	if err != nil {
		return err
	}
	if len(hooks) == 0 {
		return nil
	}

	body, err := json.Marshal(Render(ev))
	if err != nil {
		return err
	}

	opts := []asynq.Option{asynq.Queue(constants.QueueDefault), asynq.MaxRetry(8)}
	if ev.Trigger == bookingEntity.TriggerMeetingEnded {
		opts = append(opts, asynq.ProcessAt(ev.Booking.EndTime))
	}

	for _, hook := range hooks {
		task, err := queue.NewTask(constants.TaskWebhookDelivery, DeliveryPayload{
			WebhookID:  hook.ID,
			Trigger:    trigger,
			BookingUID: ev.Booking.UID,
			StartTime:  ev.Booking.StartTime,
			EndTime:    ev.Booking.EndTime,
			Body:       body,
		})
		if err != nil {
			return err
		}
		if _, err := e.queue.EnqueueContext(ctx, task, opts...); err != nil {
			logger.Error("WebhookEmitter:Emit:Enqueue:Error", "webhook_id", hook.ID, "trigger", trigger, "error", err)
			return err
		}
	}
	logger.Info("WebhookEmitter:Emit:Queued", "trigger", trigger, "booking_uid", ev.Booking.UID, "subscribers", len(hooks))
	return nil
}

// Render builds the subscriber-facing envelope of a booking event.
func Render(ev bookingEntity.BookingEvent) entity.Envelope {
	b := ev.Booking
	attendees := make([]entity.Person, 0, len(b.Attendees))
	for _, a := range b.Attendees {
		attendees = append(attendees, entity.Person{Name: a.Name, Email: a.Email, TimeZone: a.TimeZone, Language: a.Locale})
	}
	return entity.Envelope{
		TriggerEvent: string(ev.Trigger),
		CreatedAt:    ev.OccurredAt.UTC(),
		Payload: entity.Payload{
			Type:               ev.EventTitle,
			Title:              b.Title,
			Description:        b.Description,
			Location:           b.Location,
			StartTime:          b.StartTime.UTC(),
			EndTime:            b.EndTime.UTC(),
			Organizer:          entity.Person{Name: ev.Organizer.Name, Email: ev.Organizer.Email, TimeZone: ev.Organizer.TimeZone},
			Attendees:          attendees,
			UID:                b.UID,
			BookingID:          b.ID,
			EventTypeID:        ev.EventTypeID,
			Status:             string(b.Status),
			RescheduleUID:      ev.RescheduledFrom,
			CancellationReason: b.CancellationReason,
			PaymentRequired:    ev.PaymentRequired,
			Responses:          b.Responses,
		},
	}
}
