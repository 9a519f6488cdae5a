package webhook

import (
	"go-booking-api/core/config"
	"go-booking-api/core/database"
	"go-booking-api/core/queue"
	"go-booking-api/modules/webhook/repository"
	"go-booking-api/modules/webhook/service"
)

// Init returns the emitter used by booking admission and registers the delivery handler.
func Init(db database.IDatabase, q queue.Enqueuer, handlers service.HandlerRegistry, bookings service.BookingReader, cfg *config.Config) *service.Emitter {
	repo := repository.NewWebhookRepository(db)
	if handlers != nil {
		service.NewDeliverer(repo, bookings, cfg.Booking.WebhookTimeout).Register(handlers)
	}
	return service.NewEmitter(repo, q)
}
