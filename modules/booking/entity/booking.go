package entity

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go-booking-api/core/entity"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAccepted  Status = "ACCEPTED"
	StatusCancelled Status = "CANCELLED"
	StatusRejected  Status = "REJECTED"
)

// Closed reports whether no further transition is possible.
func (s Status) Closed() bool {
	return s == StatusCancelled || s == StatusRejected
}

type Booking struct {
	UID                string         `db:"uid" json:"uid"`
	EventTypeID        sql.NullInt64  `db:"event_type_id" json:"-"`
	UserID             uuid.UUID      `db:"user_id" json:"user_id"`
	Title              string         `db:"title" json:"title"`
	Description        string         `db:"description" json:"description"`
	Location           string         `db:"location" json:"location"`
	StartTime          time.Time      `db:"start_time" json:"start_time"`
	EndTime            time.Time      `db:"end_time" json:"end_time"`
	Status             Status         `db:"status" json:"status"`
	Paid               bool           `db:"paid" json:"paid"`
	PaymentRef         sql.NullString `db:"payment_ref" json:"-"`
	RecurringGroupID   sql.NullString `db:"recurring_group_id" json:"-"`
	RescheduledFromUID sql.NullString `db:"rescheduled_from_uid" json:"-"`
	Rescheduled        bool           `db:"rescheduled" json:"rescheduled"`
	Responses          Responses      `db:"custom_inputs" json:"responses"`
	CancellationReason string         `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	Attendees          []Attendee     `db:"-" json:"attendees"`
	entity.BaseEntity
}

// SeatsUsed counts the attendees occupying the slot.
func (b *Booking) SeatsUsed() int {
	return len(b.Attendees)
}

func (b *Booking) HasAttendee(email string) bool {
	for _, a := range b.Attendees {
		if strings.EqualFold(a.Email, email) {
			return true
		}
	}
	return false
}

type Attendee struct {
	ID        int64     `db:"id" json:"-"`
	BookingID uuid.UUID `db:"booking_id" json:"-"`
	Position  int       `db:"position" json:"position"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	TimeZone  string    `db:"time_zone" json:"time_zone"`
	Locale    string    `db:"locale" json:"locale"`
}

// Reference links a booking to the event created for it in an external calendar.
type Reference struct {
	ID           int64         `db:"id" json:"id"`
	BookingID    uuid.UUID     `db:"booking_id" json:"booking_id"`
	Type         string        `db:"type" json:"type"`
	UID          string        `db:"uid" json:"uid"`
	MeetingURL   string        `db:"meeting_url" json:"meeting_url"`
	CredentialID sql.NullInt64 `db:"credential_id" json:"-"`
}

// Responses holds the answers to the event type's custom inputs, keyed by label.
type Responses map[string]any

func (r Responses) Value() (driver.Value, error) {
	if r == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r)
}

func (r *Responses) Scan(value any) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, r)
}
