package router

import (
	"go-booking-api/modules/availability/controller"

	"github.com/labstack/echo/v4"
)

type AvailabilityRouter struct {
	controller *controller.AvailabilityController
}

func NewAvailabilityRouter(controller *controller.AvailabilityController) *AvailabilityRouter {
	return &AvailabilityRouter{controller: controller}
}

func (r *AvailabilityRouter) Setup(v1 *echo.Group) {
	eventTypes := v1.Group("/public/event-types")
	eventTypes.GET("/:slug/slots", r.controller.GetSlots)
}
