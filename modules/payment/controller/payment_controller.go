package controller

import (
	"context"
	"encoding/json"
	"io"

	"go-booking-api/core/constants"
	"go-booking-api/core/controller"
	"go-booking-api/core/errors"
	"go-booking-api/core/logger"
	"go-booking-api/core/utils"
	bookingDto "go-booking-api/modules/booking/dto"

	"github.com/labstack/echo/v4"
)

const maxResultBody = 64 << 10

// Settler applies a payment outcome to the bookings the payment holds.
type Settler interface {
	SettlePayment(ctx context.Context, paymentUID string, success bool) ([]bookingDto.BookingResponse, error)
}

type PaymentController struct {
	settler Settler
	secret  string
	controller.BaseController
}

func NewPaymentController(settler Settler, secret string) *PaymentController {
	return &PaymentController{settler: settler, secret: secret, BaseController: controller.NewBaseController()}
}

// Result godoc
// @Summary Report a payment outcome
// @Description Called by the payment provider. The raw body must be signed with HMAC-SHA256 of the callback secret in X-Booking-Signature. A successful payment makes its bookings effective; a failed one cancels them.
// @Tags Payment
// @Accept json
// @Produce json
// @Param uid path string true "Payment reference"
// @Param X-Booking-Signature header string true "Hex HMAC-SHA256 of the body"
// @Param request body bookingDto.PaymentResultRequest true "Payment outcome"
// @Success 200 {object} controller.SuccessResponse{data=[]bookingDto.BookingResponse}
// @Failure 400 {object} errors.AppError
// @Failure 401 {object} errors.AppError
// @Failure 404 {object} errors.AppError
// @Failure 409 {object} errors.AppError
// @Router /public/payments/{uid}/result [post]
func (c *PaymentController) Result(ctx echo.Context) error {
	uid := ctx.Param("uid")
	body, err := io.ReadAll(io.LimitReader(ctx.Request().Body, maxResultBody))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}
	if !utils.VerifyHMAC(c.secret, body, ctx.Request().Header.Get(constants.HeaderSignature)) {
		logger.Warn("PaymentController:Result:InvalidSignature", "payment_uid", uid)
		return c.Unauthorized(errors.ErrUnauthorized, "Invalid signature")
	}

	var req bookingDto.PaymentResultRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}
	if err := ctx.Validate(&req); err != nil {
		return c.ErrorResponse(ctx, err)
	}

	settled, err := c.settler.SettlePayment(ctx.Request().Context(), uid, *req.Success)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, settled, "Payment recorded")
}
