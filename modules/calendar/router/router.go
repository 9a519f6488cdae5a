package router

import (
	"go-booking-api/core/middleware"
	"go-booking-api/modules/calendar/controller"

	"github.com/labstack/echo/v4"
)

type CalendarRouter struct {
	controller *controller.CalendarController
}

func NewCalendarRouter(controller *controller.CalendarController) *CalendarRouter {
	return &CalendarRouter{controller: controller}
}

func (r *CalendarRouter) Setup(v1 *echo.Group, mw *middleware.Middleware) {
	availability := v1.Group("/private/availability", mw.AuthMiddleware())
	availability.GET("/busy", r.controller.GetBusy)
}
