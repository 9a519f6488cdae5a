package controller

import (
	"go-booking-api/core/controller"
	"go-booking-api/core/errors"
	"go-booking-api/core/params"
	"go-booking-api/modules/notification/dto"
	"go-booking-api/modules/notification/service"

	"github.com/labstack/echo/v4"
)

type NotificationController struct {
	service service.NotificationService
	controller.BaseController
}

func NewNotificationController(service service.NotificationService) *NotificationController {
	return &NotificationController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

// GetMyNotifications lists the caller's notifications, newest first.
// @Summary List notifications
// @Description Returns the notifications of the current user.
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Param page_number query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.AppError
// @Router /private/notifications [get]
func (c *NotificationController) GetMyNotifications(ctx echo.Context) error {
	userID, ok := controller.UserIDFromContext(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	result, err := c.service.GetMyNotifications(ctx.Request().Context(), userID, params.NewQueryParams(ctx))
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, result, "Notifications retrieved successfully")
}

// MarkAsRead marks the given notifications, or all of them, as read.
// @Summary Mark notifications as read
// @Description Marks the listed notifications, or all of them, as read and returns the unread count.
// @Tags Notification
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.MarkAsReadRequest true "Notifications to mark"
// @Success 200 {object} controller.SuccessResponse{data=dto.MarkAsReadResponse}
// @Failure 400 {object} errors.AppError
// @Failure 401 {object} errors.AppError
// @Router /private/notifications/read [post]
func (c *NotificationController) MarkAsRead(ctx echo.Context) error {
	userID, ok := controller.UserIDFromContext(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	req := new(dto.MarkAsReadRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}
	if err := ctx.Validate(req); err != nil {
		return c.ErrorResponse(ctx, err)
	}

	resp, err := c.service.MarkAsRead(ctx.Request().Context(), userID, req)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, resp, "Marked as read successfully")
}
