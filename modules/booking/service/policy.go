package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go-booking-api/core/errors"
	"go-booking-api/modules/booking/entity"
	eventTypeEntity "go-booking-api/modules/eventtype/entity"

	"github.com/google/uuid"
)

var phonePattern = regexp.MustCompile(`^\+[1-9][0-9]{6,14}$`)

// CheckCustomInputs validates the answers to required custom inputs. Answers are keyed by label.
func CheckCustomInputs(inputs eventTypeEntity.CustomInputs, responses map[string]any) error {
	for _, in := range inputs {
		if !in.Required {
			continue
		}
		v, ok := responses[in.Label]
		if !ok || v == nil {
			return inputError(in, "is required")
		}
		switch in.Type {
		case eventTypeEntity.InputBool:
			if b, _ := v.(bool); !b {
				return inputError(in, "must be checked")
			}
		case eventTypeEntity.InputPhone:
			s, _ := v.(string)
			if !phonePattern.MatchString(strings.ReplaceAll(s, " ", "")) {
				return inputError(in, "must be a valid phone number")
			}
		case eventTypeEntity.InputNumber:
			if !isNumber(v) {
				return inputError(in, "must be a number")
			}
		default:
			s, _ := v.(string)
			if strings.TrimSpace(s) == "" {
				return inputError(in, "is required")
			}
		}
	}
	return nil
}

func isNumber(v any) bool {
	switch n := v.(type) {
	case float64, int, int64:
		return true
	case string:
		_, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return err == nil
	default:
		return false
	}
}

func inputError(in eventTypeEntity.CustomInput, problem string) error {
	return errors.NewAppError(errors.ErrValidation, fmt.Sprintf("%s %s", in.Label, problem), nil)
}

// CheckBounds rejects slots in the past, inside the minimum notice, outside the booking period,
// or whose length differs from the event type's.
func CheckBounds(et *eventTypeEntity.EventType, start, end, now time.Time) error {
	if end.Sub(start) != et.Duration() {
		return errors.NewAppError(errors.ErrValidation, "Booking length does not match the event type", nil)
	}
	if start.Before(now) {
		return errors.NewAppError(errors.ErrOutOfBounds, "Attempting to book a meeting in the past", nil)
	}
	if start.Before(now.Add(time.Duration(et.MinimumBookingNotice) * time.Minute)) {
		return errors.NewAppError(errors.ErrOutOfBounds, "Booking is inside the minimum notice", nil)
	}
	if !et.InPeriod(start, now) {
		return errors.NewAppError(errors.ErrOutOfBounds, "Booking is outside the bookable period", nil)
	}
	return nil
}

// CheckPeriod rejects a recurring series when any later occurrence falls outside the booking period.
func CheckPeriod(et *eventTypeEntity.EventType, starts []time.Time, now time.Time) error {
	for _, start := range starts {
		if !et.InPeriod(start, now) {
			return errors.NewAppError(errors.ErrOutOfBounds,
				fmt.Sprintf("Occurrence on %s is outside the bookable period", start.In(et.Location()).Format(time.DateOnly)), nil)
		}
	}
	return nil
}

// DecideStatus applies the confirmation policy:
// ACCEPTED iff ((no confirmation needed or lead time above threshold) and no payment due) or the host
// reschedules their own booking.
func DecideStatus(et *eventTypeEntity.EventType, start, now time.Time, paymentRequired, selfReschedule bool) entity.Status {
	if selfReschedule {
		return entity.StatusAccepted
	}
	confirmed := !et.RequiresConfirmation
	if et.RequiresConfirmation && et.ConfirmationThreshold.Valid() {
		confirmed = start.Sub(now) > et.ConfirmationThreshold.Duration()
	}
	if confirmed && !paymentRequired {
		return entity.StatusAccepted
	}
	return entity.StatusPending
}

// NewUID derives a booking uid from the host, the slot start and the request time.
// Two requests for the same slot get distinct uids; overlap detection prevents double booking.
func NewUID(hostIdentifier string, start time.Time, requestedAt time.Time) string {
	seed := fmt.Sprintf("%s:%s:%d", hostIdentifier, start.UTC().Format(time.RFC3339), requestedAt.UnixNano())
	return strings.ReplaceAll(uuid.NewSHA1(uuid.NameSpaceURL, []byte(seed)).String(), "-", "")
}
