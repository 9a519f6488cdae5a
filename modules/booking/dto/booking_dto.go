package dto

import (
	"time"

	"go-booking-api/modules/booking/entity"

	"github.com/google/uuid"
)

type AttendeeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,max=255"`
}

// CreateBookingRequest is a booking attempt. BookingUID joins a seated booking; RescheduleUID replaces one.
type CreateBookingRequest struct {
	EventTypeID      int64           `json:"event_type_id" validate:"required_without=EventTypeSlug"`
	EventTypeSlug    string          `json:"event_type_slug" validate:"required_without=EventTypeID,max=255"`
	Start            time.Time       `json:"start" validate:"required"`
	End              time.Time       `json:"end" validate:"required,gtfield=Start"`
	Attendee         AttendeeRequest `json:"attendee" validate:"required"`
	Guests           []string        `json:"guests" validate:"omitempty,max=20,dive,email"`
	TimeZone         string          `json:"time_zone" validate:"required,timezone"`
	Language         string          `json:"language" validate:"omitempty,max=35"`
	Users            []uuid.UUID     `json:"users" validate:"omitempty,max=50"`
	Description      string          `json:"description" validate:"max=5000"`
	Location         string          `json:"location" validate:"max=500"`
	Responses        map[string]any  `json:"responses"`
	BookingUID       string          `json:"booking_uid" validate:"omitempty,max=64"`
	RescheduleUID    string          `json:"reschedule_uid" validate:"omitempty,max=64"`
	RecurringEventID string          `json:"recurring_event_id" validate:"omitempty,alphanum,max=64"`
	RecurringCount   int             `json:"recurring_count" validate:"omitempty,min=1,max=730"`
}

// PaymentResultRequest is the pass/fail outcome reported for a payment.
type PaymentResultRequest struct {
	Success *bool `json:"success" validate:"required"`
}

type TransitionRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

type AttendeeResponse struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	TimeZone string `json:"time_zone"`
	Locale   string `json:"locale"`
}

type BookingResponse struct {
	ID                 uuid.UUID          `json:"id"`
	UID                string             `json:"uid"`
	EventTypeID        int64              `json:"event_type_id,omitempty"`
	HostID             uuid.UUID          `json:"host_id"`
	Title              string             `json:"title"`
	Status             entity.Status      `json:"status"`
	Paid               bool               `json:"paid"`
	StartTime          time.Time          `json:"start_time"`
	EndTime            time.Time          `json:"end_time"`
	Attendees          []AttendeeResponse `json:"attendees"`
	SeatsUsed          int                `json:"seats_used"`
	RecurringGroupID   string             `json:"recurring_group_id,omitempty"`
	RescheduledFromUID string             `json:"rescheduled_from_uid,omitempty"`
	PaymentRef         string             `json:"payment_ref,omitempty"`
	CancellationReason string             `json:"cancellation_reason,omitempty"`
}

// BookingResult is the admission outcome. PaymentRequired marks a booking held until payment.
type BookingResult struct {
	BookingResponse
	PaymentRequired bool              `json:"payment_required"`
	Occurrences     []BookingResponse `json:"occurrences,omitempty"`
}

func ToBookingResponse(b *entity.Booking) BookingResponse {
	resp := BookingResponse{
		ID:                 b.ID,
		UID:                b.UID,
		EventTypeID:        b.EventTypeID.Int64,
		HostID:             b.UserID,
		Title:              b.Title,
		Status:             b.Status,
		Paid:               b.Paid,
		StartTime:          b.StartTime.UTC(),
		EndTime:            b.EndTime.UTC(),
		Attendees:          make([]AttendeeResponse, 0, len(b.Attendees)),
		SeatsUsed:          b.SeatsUsed(),
		RecurringGroupID:   b.RecurringGroupID.String,
		RescheduledFromUID: b.RescheduledFromUID.String,
		PaymentRef:         b.PaymentRef.String,
		CancellationReason: b.CancellationReason,
	}
	for _, a := range b.Attendees {
		resp.Attendees = append(resp.Attendees, AttendeeResponse{Email: a.Email, Name: a.Name, TimeZone: a.TimeZone, Locale: a.Locale})
	}
	return resp
}
