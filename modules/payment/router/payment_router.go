package router

import (
	"go-booking-api/modules/payment/controller"

	"github.com/labstack/echo/v4"
)

type PaymentRouter struct {
	controller *controller.PaymentController
}

func NewPaymentRouter(controller *controller.PaymentController) *PaymentRouter {
	return &PaymentRouter{controller: controller}
}

func (r *PaymentRouter) Setup(v1 *echo.Group) {
	public := v1.Group("/public/payments")
	public.POST("/:uid/result", r.controller.Result)
}
