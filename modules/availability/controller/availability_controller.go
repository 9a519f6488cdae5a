package controller

import (
	"go-booking-api/core/controller"
	"go-booking-api/core/errors"
	"go-booking-api/modules/availability/dto"
	"go-booking-api/modules/availability/service"

	"github.com/labstack/echo/v4"
)

type AvailabilityController struct {
	service service.AvailabilityService
	controller.BaseController
}

func NewAvailabilityController(service service.AvailabilityService) *AvailabilityController {
	return &AvailabilityController{service: service, BaseController: controller.NewBaseController()}
}

// GetSlots lists the bookable slots of one day.
// @Summary List available slots
// @Description Returns the start times still bookable on the given day, in the requested time zone.
// @Tags Availability
// @Produce json
// @Param slug path string true "Event type slug"
// @Param date query string true "Day, YYYY-MM-DD"
// @Param timezone query string false "IANA time zone, e.g. Europe/Paris"
// @Param compact query bool false "Drop slots that would leave unusable gaps"
// @Success 200 {object} controller.SuccessResponse{data=dto.SlotsResponse}
// @Failure 400 {object} errors.AppError
// @Failure 404 {object} errors.AppError
// @Router /public/event-types/{slug}/slots [get]
func (c *AvailabilityController) GetSlots(ctx echo.Context) error {
	var query dto.SlotsQuery
	if err := ctx.Bind(&query); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid query parameters")
	}
	if err := ctx.Validate(&query); err != nil {
		return c.ErrorResponse(ctx, err)
	}

	resp, err := c.service.DaySlots(ctx.Request().Context(), ctx.Param("slug"), query)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, resp, "Slots retrieved successfully")
}
