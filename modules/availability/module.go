package availability

import (
	"time"

	"go-booking-api/modules/availability/controller"
	"go-booking-api/modules/availability/router"
	"go-booking-api/modules/availability/service"
	eventTypeService "go-booking-api/modules/eventtype/service"

	"github.com/labstack/echo/v4"
)

func Init(v1 *echo.Group, eventTypes eventTypeService.EventTypeService, busy service.BusyReader) service.AvailabilityService {
	svc := service.NewAvailabilityService(eventTypes, busy, time.Now)
	ctrl := controller.NewAvailabilityController(svc)

	router.NewAvailabilityRouter(ctrl).Setup(v1)
	return svc
}
