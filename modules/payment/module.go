package payment

import (
	"go-booking-api/core/config"
	"go-booking-api/core/database"
	"go-booking-api/core/logger"
	"go-booking-api/modules/payment/controller"
	"go-booking-api/modules/payment/repository"
	"go-booking-api/modules/payment/router"
	"go-booking-api/modules/payment/service"

	"github.com/labstack/echo/v4"
)

// Init builds the payment service. Bookings depend on it, so routes are mounted later by Setup.
func Init(db database.IDatabase) *service.PaymentService {
	return service.NewPaymentService(repository.NewPaymentRepository(db))
}

// Setup mounts the payment callback, which settles payments through the booking service.
func Setup(v1 *echo.Group, settler controller.Settler, cfg *config.Config) {
	if cfg.Payment.CallbackSecret == "" {
		logger.Warn("Payment:Setup:NoCallbackSecret")
	}
	ctrl := controller.NewPaymentController(settler, cfg.Payment.CallbackSecret)
	router.NewPaymentRouter(ctrl).Setup(v1)
}
