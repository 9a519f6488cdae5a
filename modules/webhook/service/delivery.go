package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go-booking-api/core/constants"
	"go-booking-api/core/logger"
	"go-booking-api/core/queue"
	"go-booking-api/core/utils"
	bookingEntity "go-booking-api/modules/booking/entity"
	"go-booking-api/modules/webhook/repository"

	"github.com/hibiken/asynq"
)

const (
	SignatureHeader = constants.HeaderSignature
	TriggerHeader   = "X-Booking-Trigger"
	noSecret        = "no-secret-provided"
)

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	if secret == "" {
		return noSecret
	}
	return utils.SignHMAC(secret, body)
}

type BookingReader interface {
	FindByUID(ctx context.Context, uid string) (*bookingEntity.Booking, error)
}

type HandlerRegistry interface {
	HandleFunc(taskType string, handler func(context.Context, *asynq.Task) error)
}

// Deliverer posts queued webhook bodies to subscribers.
type Deliverer struct {
	repo     repository.WebhookRepository
	bookings BookingReader
	client   *http.Client
}

func NewDeliverer(repo repository.WebhookRepository, bookings BookingReader, timeout time.Duration) *Deliverer {
	if timeout <= 0 {
		timeout = constants.DefaultTimeout
	}
	return &Deliverer{repo: repo, bookings: bookings, client: &http.Client{Timeout: timeout}}
}

func (d *Deliverer) Register(r HandlerRegistry) {
	r.HandleFunc(constants.TaskWebhookDelivery, d.HandleDelivery)
}

func (d *Deliverer) HandleDelivery(ctx context.Context, task *asynq.Task) error {
	var p DeliveryPayload
	if err := queue.Decode(task, &p); err != nil {
		return err
	}

	hook, err := d.repo.GetByID(ctx, p.WebhookID)
	if err != nil {
		return err
	}
	if hook == nil || !hook.Subscribes(p.Trigger) {
		logger.Info("WebhookDeliverer:HandleDelivery:Unsubscribed", "webhook_id", p.WebhookID, "trigger", p.Trigger)
		return nil
	}
	if p.Trigger == string(bookingEntity.TriggerMeetingEnded) {
		live, err := d.meetingHappened(ctx, p)
		if err != nil {
			return err
		}
		if !live {
			logger.Info("WebhookDeliverer:HandleDelivery:MeetingGone", "booking_uid", p.BookingUID)
			return nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hook.SubscriberURL, bytes.NewReader(p.Body))
	if err != nil {
		return fmt.Errorf("build webhook request: %v: %w", err, asynq.SkipRetry)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SignatureHeader, Sign(hook.Secret, p.Body))
	req.Header.Set(TriggerHeader, p.Trigger)

	resp, err := d.client.Do(req)
	if err != nil {
		logger.Warn("WebhookDeliverer:HandleDelivery:Post:Error", "webhook_id", hook.ID, "error", err)
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		logger.Info("WebhookDeliverer:HandleDelivery:Success", "webhook_id", hook.ID, "trigger", p.Trigger, "status", resp.StatusCode)
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests:
		return fmt.Errorf("subscriber rejected webhook with %d: %w", resp.StatusCode, asynq.SkipRetry)
	default:
		return fmt.Errorf("subscriber returned %d", resp.StatusCode)
	}
}

// meetingHappened reports whether the booking still stands as scheduled when MEETING_ENDED fires.
func (d *Deliverer) meetingHappened(ctx context.Context, p DeliveryPayload) (bool, error) {
	if d.bookings == nil {
		return true, nil
	}
	b, err := d.bookings.FindByUID(ctx, p.BookingUID)
	if err != nil {
		return false, err
	}
	return b != nil && b.Status == bookingEntity.StatusAccepted && b.EndTime.Equal(p.EndTime), nil
}
