package booking

import (
	"time"

	"go-booking-api/core/config"
	"go-booking-api/core/database"
	"go-booking-api/core/middleware"
	"go-booking-api/modules/booking/controller"
	"go-booking-api/modules/booking/repository"
	"go-booking-api/modules/booking/router"
	"go-booking-api/modules/booking/service"
	calendarService "go-booking-api/modules/calendar/service"
	eventTypeService "go-booking-api/modules/eventtype/service"

	"github.com/labstack/echo/v4"
)

// NewRepository is created ahead of the calendar module, which reads internal busy times from it.
func NewRepository(db database.IDatabase) repository.BookingRepository {
	return repository.NewBookingRepository(db)
}

// Collaborators receive booking events after admission; any of them may be nil.
type Collaborators struct {
	Notifier service.Notifier
	Webhooks service.WebhookEmitter
	Payments service.PaymentGateway
}

func Init(
	v1 *echo.Group,
	repo repository.BookingRepository,
	eventTypes eventTypeService.EventTypeService,
	calendars calendarService.CalendarService,
	adapters calendarService.AdapterProvider,
	collab Collaborators,
	cfg *config.Config,
	mw *middleware.Middleware,
) service.BookingService {
	svc := service.NewBookingService(service.Options{
		Store:         repo,
		EventTypes:    eventTypes,
		Busy:          calendars,
		Events:        service.NewEventManager(calendars, adapters, repo, cfg.Aggregator.AdapterTimeout),
		Notifier:      collab.Notifier,
		Webhooks:      collab.Webhooks,
		Payments:      collab.Payments,
		Now:           time.Now,
		DefaultLocale: cfg.Booking.DefaultLocale,
	})
	ctrl := controller.NewBookingController(svc)

	router.NewBookingRouter(ctrl).Setup(v1, mw)
	return svc
}
