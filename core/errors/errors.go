package errors

import (
	stdErrors "errors"
	"fmt"
)

type ErrorCode int

const (
	ErrInternalServer ErrorCode = 1000 + iota
	ErrInvalidInput
	ErrInvalidRequestData
	ErrUnauthorized
	ErrForbidden
	ErrNotFound
	ErrAlreadyExists
	ErrTokenExpired
	ErrInvalidTokenFormat
	ErrMissingAuthorizationHeader
	ErrCreateFailed
	ErrUpdateFailed
	ErrGetFailed
)

// Booking admission taxonomy.
const (
	// ErrValidation: malformed input or unmet custom-input rules, raised before any external call.
	ErrValidation ErrorCode = 2000 + iota
	// ErrOutOfBounds: slot outside the event's booking period, including the past.
	ErrOutOfBounds
	// ErrUnavailable: no host free, a recurring occurrence conflicts, or the booking limit is reached.
	ErrUnavailable
	// ErrConflict: duplicate uid, seat overflow or a serialization failure detected at write time.
	ErrConflict
	// ErrDependency: the internal store could not be read.
	ErrDependency
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches any *AppError carrying the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// As extracts the first *AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stdErrors.As(err, &appErr) && appErr != nil {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries an *AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}
