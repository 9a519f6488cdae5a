package service

import (
	bookingEntity "go-booking-api/modules/booking/entity"
)

// EmailKind selects the template of a booking email.
type EmailKind string

const (
	EmailScheduled   EmailKind = "scheduled"
	EmailRescheduled EmailKind = "rescheduled"
	EmailRequest     EmailKind = "request_to_organizer"
	EmailCancelled   EmailKind = "cancelled"
	EmailDeclined    EmailKind = "declined"
)

// Invite reports whether the email carries a calendar attachment.
func (k EmailKind) Invite() bool {
	switch k {
	case EmailScheduled, EmailRescheduled, EmailCancelled:
		return true
	}
	return false
}

type EmailPayload struct {
	Kind  EmailKind                  `json:"kind"`
	Event bookingEntity.BookingEvent `json:"event"`
}

type ReminderPayload struct {
	Event bookingEntity.BookingEvent `json:"event"`
}

type HostPayload struct {
	Kind  EmailKind                  `json:"kind"`
	Event bookingEntity.BookingEvent `json:"event"`
}
