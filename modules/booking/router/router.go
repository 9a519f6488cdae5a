package router

import (
	"go-booking-api/core/middleware"
	"go-booking-api/modules/booking/controller"

	"github.com/labstack/echo/v4"
)

type BookingRouter struct {
	controller *controller.BookingController
}

func NewBookingRouter(controller *controller.BookingController) *BookingRouter {
	return &BookingRouter{controller: controller}
}

func (r *BookingRouter) Setup(v1 *echo.Group, mw *middleware.Middleware) {
	public := v1.Group("/public/bookings", mw.OptionalAuthMiddleware())
	public.POST("", r.controller.Create)

	private := v1.Group("/private/bookings", mw.AuthMiddleware())
	private.POST("/:uid/confirm", r.controller.Confirm)
	private.POST("/:uid/reject", r.controller.Reject)
	private.POST("/:uid/cancel", r.controller.Cancel)
}
