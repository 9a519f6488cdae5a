package controller

import (
	"time"

	"go-booking-api/core/controller"
	"go-booking-api/core/errors"
	"go-booking-api/modules/calendar/dto"
	"go-booking-api/modules/calendar/entity"
	"go-booking-api/modules/calendar/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type CalendarController struct {
	service service.CalendarService
	controller.BaseController
}

func NewCalendarController(service service.CalendarService) *CalendarController {
	return &CalendarController{service: service, BaseController: controller.NewBaseController()}
}

// GetBusy returns the caller's aggregated busy intervals grouped by UTC day.
// @Summary Get busy intervals
// @Description Merges bookings and connected calendars into busy intervals. Calendars that failed to answer are listed under degraded.
// @Tags Availability
// @Security BearerAuth
// @Produce json
// @Param from query string true "Range start, RFC3339"
// @Param to query string true "Range end, RFC3339"
// @Success 200 {object} controller.SuccessResponse{data=dto.BusyResponse}
// @Failure 400 {object} errors.AppError
// @Failure 401 {object} errors.AppError
// @Router /private/availability/busy [get]
func (c *CalendarController) GetBusy(ctx echo.Context) error {
	userID, ok := controller.UserIDFromContext(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	from, err := time.Parse(time.RFC3339, ctx.QueryParam("from"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid from, expected RFC3339")
	}
	to, err := time.Parse(time.RFC3339, ctx.QueryParam("to"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid to, expected RFC3339")
	}
	if err := ctx.Validate(&dto.BusyQuery{From: from, To: to}); err != nil {
		return c.ErrorResponse(ctx, err)
	}

	index, err := c.service.BusyIntervals(ctx.Request().Context(), []uuid.UUID{userID}, from, to)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	resp := dto.BusyResponse{
		UserID: userID.String(),
		From:   from.UTC(),
		To:     to.UTC(),
		Days:   index.ByUser[userID],
	}
	if resp.Days == nil {
		resp.Days = map[string][]entity.BusyInterval{}
	}
	for _, f := range index.Degraded {
		resp.Degraded = append(resp.Degraded, dto.DegradedSource{CredentialID: f.CredentialID, Reason: f.Reason})
	}
	return c.SuccessResponse(ctx, resp, "Busy intervals retrieved successfully")
}
