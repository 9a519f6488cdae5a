package notification

import (
	"time"

	"go-booking-api/core/config"
	"go-booking-api/core/database"
	"go-booking-api/core/middleware"
	"go-booking-api/core/queue"
	"go-booking-api/core/storage"
	"go-booking-api/modules/notification/controller"
	"go-booking-api/modules/notification/repository"
	"go-booking-api/modules/notification/router"
	"go-booking-api/modules/notification/service"

	"github.com/labstack/echo/v4"
)

// Init registers the notification routes and task handlers and returns the dispatcher
// that booking admission hands its events to.
func Init(
	v1 *echo.Group,
	db database.IDatabase,
	q queue.Enqueuer,
	handlers service.HandlerRegistry,
	store storage.ObjectStore,
	bookings service.BookingReader,
	cfg *config.Config,
	mw *middleware.Middleware,
) *service.Dispatcher {
	repo := repository.NewNotificationRepository(db)
	svc := service.NewNotificationService(repo)
	ctrl := controller.NewNotificationController(svc)
	router.NewNotificationRouter(ctrl).Setup(v1, mw)

	if handlers != nil {
		service.NewHandlers(svc, store, bookings, time.Now).Register(handlers)
	}
	return service.NewDispatcher(q, cfg.Booking.ReminderLead, time.Now)
}
