package controller

import (
	"context"

	"go-booking-api/core/controller"
	"go-booking-api/core/errors"
	"go-booking-api/core/logger"
	"go-booking-api/modules/booking/dto"
	"go-booking-api/modules/booking/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type BookingController struct {
	service service.BookingService
	controller.BaseController
}

func NewBookingController(service service.BookingService) *BookingController {
	return &BookingController{service: service, BaseController: controller.NewBaseController()}
}

// Create books a slot, joins a seat or reschedules.
// @Summary Create a booking
// @Description Books a slot of an event type. booking_uid joins a seat of an existing booking and reschedule_uid moves one. Recurring event types take recurring_count occurrences.
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body dto.CreateBookingRequest true "Booking request"
// @Success 201 {object} controller.SuccessResponse{data=dto.BookingResult}
// @Failure 400 {object} errors.AppError
// @Failure 404 {object} errors.AppError
// @Failure 409 {object} errors.AppError
// @Failure 424 {object} errors.AppError
// @Router /public/bookings [post]
func (c *BookingController) Create(ctx echo.Context) error {
	var req dto.CreateBookingRequest
	if err := ctx.Bind(&req); err != nil {
		logger.Warn("BookingController:Create:Bind:Error", "error", err)
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}
	if err := ctx.Validate(&req); err != nil {
		return c.ErrorResponse(ctx, err)
	}

	var actor *uuid.UUID
	if id, ok := controller.UserIDFromContext(ctx); ok {
		actor = &id
	}

	result, err := c.service.Create(ctx.Request().Context(), &req, actor)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	if result.PaymentRequired {
		return c.CreatedResponse(ctx, result, "Booking created, payment required")
	}
	return c.CreatedResponse(ctx, result, "Booking created successfully")
}

// Confirm accepts a booking that waits for the organizer.
// @Summary Confirm a booking
// @Description Moves a pending booking to accepted. A booking whose payment is still open cannot be confirmed.
// @Tags Booking
// @Security BearerAuth
// @Produce json
// @Param uid path string true "Booking UID"
// @Success 200 {object} controller.SuccessResponse{data=dto.BookingResponse}
// @Failure 401 {object} errors.AppError
// @Failure 404 {object} errors.AppError
// @Failure 409 {object} errors.AppError
// @Router /private/bookings/{uid}/confirm [post]
func (c *BookingController) Confirm(ctx echo.Context) error {
	userID, ok := controller.UserIDFromContext(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}
	resp, err := c.service.Confirm(ctx.Request().Context(), ctx.Param("uid"), userID)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, resp, "Booking confirmed")
}

// @Summary Reject a booking
// @Description Moves a pending booking to rejected with an optional reason.
// @Tags Booking
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param uid path string true "Booking UID"
// @Param request body dto.TransitionRequest false "Reason"
// @Success 200 {object} controller.SuccessResponse{data=dto.BookingResponse}
// @Failure 401 {object} errors.AppError
// @Failure 404 {object} errors.AppError
// @Failure 409 {object} errors.AppError
// @Router /private/bookings/{uid}/reject [post]
func (c *BookingController) Reject(ctx echo.Context) error {
	return c.withReason(ctx, c.service.Reject, "Booking rejected")
}

// @Summary Cancel a booking
// @Description Cancels a pending or accepted booking and releases its slot.
// @Tags Booking
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param uid path string true "Booking UID"
// @Param request body dto.TransitionRequest false "Reason"
// @Success 200 {object} controller.SuccessResponse{data=dto.BookingResponse}
// @Failure 401 {object} errors.AppError
// @Failure 404 {object} errors.AppError
// @Failure 409 {object} errors.AppError
// @Router /private/bookings/{uid}/cancel [post]
func (c *BookingController) Cancel(ctx echo.Context) error {
	return c.withReason(ctx, c.service.Cancel, "Booking cancelled")
}

type reasonTransition func(ctx context.Context, uid string, actor uuid.UUID, reason string) (*dto.BookingResponse, error)

func (c *BookingController) withReason(ctx echo.Context, fn reasonTransition, message string) error {
	userID, ok := controller.UserIDFromContext(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}
	var req dto.TransitionRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}
	if err := ctx.Validate(&req); err != nil {
		return c.ErrorResponse(ctx, err)
	}
	resp, err := fn(ctx.Request().Context(), ctx.Param("uid"), userID, req.Reason)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, resp, message)
}
