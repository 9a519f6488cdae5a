package service

import (
	"strings"
	"time"

	bookingEntity "go-booking-api/modules/booking/entity"
)

const icsTime = "20060102T150405Z"

var icsEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)

// BuildInvite renders an RFC 5545 calendar object for the booking. Cancelled
// bookings produce METHOD:CANCEL so clients remove the event.
func BuildInvite(ev bookingEntity.BookingEvent, stamp time.Time) []byte {
	b := ev.Booking
	method, status := "REQUEST", "CONFIRMED"
	if b.Status.Closed() {
		method, status = "CANCEL", "CANCELLED"
	} else if b.Status == bookingEntity.StatusPending {
		status = "TENTATIVE"
	}

	var sb strings.Builder
	line := func(s string) {
		sb.WriteString(s)
		sb.WriteString("\r\n")
	}
	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:-//go-booking-api//EN")
	line("METHOD:" + method)
	line("BEGIN:VEVENT")
	line("UID:" + b.UID)
	line("DTSTAMP:" + stamp.UTC().Format(icsTime))
	line("DTSTART:" + b.StartTime.UTC().Format(icsTime))
	line("DTEND:" + b.EndTime.UTC().Format(icsTime))
	line("SUMMARY:" + icsEscaper.Replace(b.Title))
	if b.Description != "" {
		line("DESCRIPTION:" + icsEscaper.Replace(b.Description))
	}
	if b.Location != "" {
		line("LOCATION:" + icsEscaper.Replace(b.Location))
	}
	line("STATUS:" + status)
	if ev.Organizer.Email != "" {
		line("ORGANIZER;CN=" + icsEscaper.Replace(ev.Organizer.Name) + ":mailto:" + ev.Organizer.Email)
	}
	for _, a := range b.Attendees {
		line("ATTENDEE;CN=" + icsEscaper.Replace(a.Name) + ";ROLE=REQ-PARTICIPANT:mailto:" + a.Email)
	}
	line("END:VEVENT")
	line("END:VCALENDAR")
	return []byte(sb.String())
}

// InviteKey is the object key of the archived invite; reschedules and cancellations overwrite it.
func InviteKey(uid string) string {
	return "invites/" + uid + ".ics"
}
