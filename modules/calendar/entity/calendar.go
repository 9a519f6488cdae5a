package entity

import "time"

// Calendar is one calendar exposed by a provider account.
type Calendar struct {
	ExternalID  string `json:"external_id"`
	Integration string `json:"integration"`
	Name        string `json:"name"`
	Primary     bool   `json:"primary"`
	ReadOnly    bool   `json:"read_only"`
}

type Person struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	TimeZone string `json:"time_zone"`
}

// CalendarEvent is what gets written to a host's external calendar for a booking.
type CalendarEvent struct {
	UID         string    `json:"uid"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Organizer   Person    `json:"organizer"`
	Attendees   []Person  `json:"attendees"`
}

// RemoteEvent is the provider's answer to a create or update.
type RemoteEvent struct {
	Type       string `json:"type"`
	UID        string `json:"uid"`
	MeetingURL string `json:"meeting_url,omitempty"`
}
