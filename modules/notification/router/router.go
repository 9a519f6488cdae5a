package router

import (
	"go-booking-api/core/middleware"
	"go-booking-api/modules/notification/controller"

	"github.com/labstack/echo/v4"
)

type NotificationRouter struct {
	controller *controller.NotificationController
}

func NewNotificationRouter(controller *controller.NotificationController) *NotificationRouter {
	return &NotificationRouter{controller: controller}
}

func (r *NotificationRouter) Setup(v1 *echo.Group, mw *middleware.Middleware) {
	group := v1.Group("/private/notifications", mw.AuthMiddleware())
	group.GET("", r.controller.GetMyNotifications)
	group.POST("/read", r.controller.MarkAsRead)
}
