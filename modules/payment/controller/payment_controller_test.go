package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-booking-api/core/constants"
	"go-booking-api/core/errors"
	"go-booking-api/core/utils"
	"go-booking-api/core/validator"
	bookingDto "go-booking-api/modules/booking/dto"
	bookingEntity "go-booking-api/modules/booking/entity"

	"github.com/labstack/echo/v4"
)

const secret = "callback-secret"

type stubSettler struct {
	uid     string
	success *bool
	err     error
}

func (s *stubSettler) SettlePayment(_ context.Context, uid string, success bool) ([]bookingDto.BookingResponse, error) {
	s.uid, s.success = uid, &success
	if s.err != nil {
		return nil, s.err
	}
	return []bookingDto.BookingResponse{{UID: "booking-1", Status: bookingEntity.StatusAccepted, Paid: success}}, nil
}

func result(body, signature string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = validator.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/payments/pay_1/result", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if signature != "" {
		req.Header.Set(constants.HeaderSignature, signature)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("uid")
	c.SetParamValues("pay_1")
	return c, rec
}

func TestResultSettlesSignedOutcome(t *testing.T) {
	body := `{"success":true}`
	settler := &stubSettler{}
	c, rec := result(body, utils.SignHMAC(secret, []byte(body)))

	if err := NewPaymentController(settler, secret).Result(c); err != nil {
		t.Fatalf("Result: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	if settler.uid != "pay_1" || settler.success == nil || !*settler.success {
		t.Fatalf("settler called with %q %v", settler.uid, settler.success)
	}
	if !strings.Contains(rec.Body.String(), `"paid":true`) {
		t.Fatalf("expected the paid booking in the body, got %s", rec.Body.String())
	}
}

func TestResultRejectsBadSignature(t *testing.T) {
	cases := map[string]struct {
		secret    string
		signature string
	}{
		"unsigned":          {secret, ""},
		"wrong secret":      {secret, utils.SignHMAC("other", []byte(`{"success":true}`))},
		"no secret on file": {"", utils.SignHMAC("", []byte(`{"success":true}`))},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			settler := &stubSettler{}
			c, _ := result(`{"success":true}`, tc.signature)
			err := NewPaymentController(settler, tc.secret).Result(c)
			he, ok := err.(*echo.HTTPError)
			if !ok || he.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401 HTTPError, got %v", err)
			}
			if settler.success != nil {
				t.Fatal("settler must not be called")
			}
		})
	}
}

func TestResultRequiresOutcome(t *testing.T) {
	body := `{}`
	settler := &stubSettler{}
	c, rec := result(body, utils.SignHMAC(secret, []byte(body)))

	if err := NewPaymentController(settler, secret).Result(c); err != nil {
		t.Fatalf("Result: %v", err)
	}
	if rec.Code != http.StatusBadRequest || settler.success != nil {
		t.Fatalf("status = %d, settler called = %v", rec.Code, settler.success != nil)
	}
}

func TestResultMapsSettledPaymentToConflict(t *testing.T) {
	body := `{"success":false}`
	settler := &stubSettler{err: errors.NewAppError(errors.ErrConflict, "Payment is already completed", nil)}
	c, rec := result(body, utils.SignHMAC(secret, []byte(body)))

	if err := NewPaymentController(settler, secret).Result(c); err != nil {
		t.Fatalf("Result: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
}
