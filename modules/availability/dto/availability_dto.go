package dto

import "time"

type SlotsQuery struct {
	Date     string `query:"date" validate:"required,datetime=2006-01-02"`
	TimeZone string `query:"timezone" validate:"omitempty,timezone"`
	Compact  bool   `query:"compact"`
}

type SlotsResponse struct {
	EventTypeID int64     `json:"event_type_id"`
	Date        string    `json:"date"`
	TimeZone    string    `json:"time_zone"`
	Length      int       `json:"length"`
	Slots       []Slot    `json:"slots"`
	Degraded    bool      `json:"degraded,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

type Slot struct {
	Time time.Time `json:"time"`
}
