package validator

import (
	stdErrors "errors"
	"strings"

	"go-booking-api/core/controller"
	"go-booking-api/core/errors"

	"github.com/go-playground/validator/v10"
)

// CustomValidator plugs validator/v10 into echo.Context.Validate.
type CustomValidator struct {
	validator *validator.Validate
}

func New() *CustomValidator {
	return &CustomValidator{validator: validator.New(validator.WithRequiredStructEnabled())}
}

func (cv *CustomValidator) Validate(i any) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stdErrors.As(err, &verrs) {
		return errors.NewAppError(errors.ErrValidation, "Invalid request data", err)
	}

	details := make([]controller.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, controller.NewValidationError(strings.ToLower(fe.Field()), describe(fe)))
	}
	return &errors.AppError{
		Code:    errors.ErrValidation,
		Message: "Invalid request data",
		Err:     &FieldErrors{Fields: details},
	}
}

// FieldErrors carries per-field failures for the error response details.
type FieldErrors struct {
	Fields []controller.ValidationError
}

func (f *FieldErrors) Error() string {
	parts := make([]string, 0, len(f.Fields))
	for _, fe := range f.Fields {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return strings.Join(parts, "; ")
}

func (f *FieldErrors) Details() any {
	return f.Fields
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "gt", "gte", "min":
		return "must be at least " + fe.Param()
	case "lt", "lte", "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "gtfield":
		return "must be after " + strings.ToLower(fe.Param())
	default:
		return "is invalid"
	}
}
