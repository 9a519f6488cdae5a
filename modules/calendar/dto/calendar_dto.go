package dto

import (
	"time"

	"go-booking-api/modules/calendar/entity"
)

type BusyQuery struct {
	From time.Time `query:"from" validate:"required"`
	To   time.Time `query:"to" validate:"required,gtfield=From"`
}

type BusyResponse struct {
	UserID   string                           `json:"user_id"`
	From     time.Time                        `json:"from"`
	To       time.Time                        `json:"to"`
	Days     map[string][]entity.BusyInterval `json:"days"`
	Degraded []DegradedSource                 `json:"degraded,omitempty"`
}

type DegradedSource struct {
	CredentialID int64  `json:"credential_id"`
	Reason       string `json:"reason"`
}
