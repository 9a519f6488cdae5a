package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"go-booking-api/core/entity"

	"github.com/google/uuid"
)

// Type classifies an in-app notification shown to a host.
type Type string

const (
	TypeBookingScheduled   Type = "BOOKING_SCHEDULED"
	TypeBookingRescheduled Type = "BOOKING_RESCHEDULED"
	TypeBookingRequested   Type = "BOOKING_REQUESTED"
	TypeBookingCancelled   Type = "BOOKING_CANCELLED"
	TypeBookingRejected    Type = "BOOKING_REJECTED"
	TypeBookingReminder    Type = "BOOKING_REMINDER"
)

type Notification struct {
	UserID  uuid.UUID `db:"user_id" json:"user_id"`
	Title   string    `db:"title" json:"title"`
	Message string    `db:"message" json:"message"`
	Type    Type      `db:"type" json:"type"`
	Data    JSONB     `db:"data" json:"data"`
	IsRead  bool      `db:"is_read" json:"is_read"`
	entity.BaseEntity
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	if a == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(a)
}

func (a *JSONB) Scan(value any) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, a)
}

type PaginatedNotificationEntity = entity.Pagination[Notification]
