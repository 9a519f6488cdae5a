package entity

import (
	"database/sql"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Webhook subscribes a URL to booking triggers of one host or one event type.
type Webhook struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	UserID        uuid.NullUUID  `db:"user_id" json:"-"`
	EventTypeID   sql.NullInt64  `db:"event_type_id" json:"-"`
	SubscriberURL string         `db:"subscriber_url" json:"subscriber_url"`
	Secret        string         `db:"secret" json:"-"`
	EventTriggers pq.StringArray `db:"event_triggers" json:"event_triggers"`
	Active        bool           `db:"active" json:"active"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

func (w Webhook) Subscribes(trigger string) bool {
	return w.Active && slices.Contains(w.EventTriggers, trigger)
}

// Envelope is the JSON body posted to subscribers.
type Envelope struct {
	TriggerEvent string    `json:"triggerEvent"`
	CreatedAt    time.Time `json:"createdAt"`
	Payload      Payload   `json:"payload"`
}

type Person struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	TimeZone string `json:"timeZone,omitempty"`
	Language string `json:"language,omitempty"`
}

type Payload struct {
	Type               string         `json:"type"`
	Title              string         `json:"title"`
	Description        string         `json:"description,omitempty"`
	Location           string         `json:"location,omitempty"`
	StartTime          time.Time      `json:"startTime"`
	EndTime            time.Time      `json:"endTime"`
	Organizer          Person         `json:"organizer"`
	Attendees          []Person       `json:"attendees"`
	UID                string         `json:"uid"`
	BookingID          uuid.UUID      `json:"bookingId"`
	EventTypeID        int64          `json:"eventTypeId,omitempty"`
	Status             string         `json:"status"`
	RescheduleUID      string         `json:"rescheduleUid,omitempty"`
	CancellationReason string         `json:"cancellationReason,omitempty"`
	PaymentRequired    bool           `json:"paymentRequired,omitempty"`
	Responses          map[string]any `json:"responses,omitempty"`
}
