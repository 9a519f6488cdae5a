package entity

import (
	"time"

	"github.com/google/uuid"
)

// Trigger names a booking lifecycle event delivered to collaborators.
type Trigger string

const (
	TriggerCreated      Trigger = "BOOKING_CREATED"
	TriggerRescheduled  Trigger = "BOOKING_RESCHEDULED"
	TriggerRequested    Trigger = "BOOKING_REQUESTED"
	TriggerCancelled    Trigger = "BOOKING_CANCELLED"
	TriggerRejected     Trigger = "BOOKING_REJECTED"
	TriggerMeetingEnded Trigger = "MEETING_ENDED"
)

type Organizer struct {
	UserID   uuid.UUID `json:"user_id"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	TimeZone string    `json:"time_zone"`
}

// BookingEvent is the payload handed to notification, webhook and reminder collaborators.
type BookingEvent struct {
	Trigger         Trigger   `json:"trigger"`
	Booking         Booking   `json:"booking"`
	EventTypeID     int64     `json:"event_type_id"`
	EventTitle      string    `json:"event_title"`
	Organizer       Organizer `json:"organizer"`
	RescheduledFrom string    `json:"rescheduled_from,omitempty"`
	PaymentRequired bool      `json:"payment_required"`
	OccurredAt      time.Time `json:"occurred_at"`
}
