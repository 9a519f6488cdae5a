package constants

import "time"

const (
	ContextTokenData = "token_data"
	ContextRequestID = "request_id"

	HeaderRequestID = "X-Request-ID"
	HeaderSignature = "X-Booking-Signature"
)

const (
	DefaultTimeout        = 10 * time.Second
	DefaultRequestTimeout = 30 * time.Second
)

// DayKeyLayout formats the UTC day key of the busy interval index.
const DayKeyLayout = "2006-01-02"

const (
	RedisKeyCalendarAvailability = "calendar:availability:"
)

// Asynq task types.
const (
	TaskBookingEmail     = "booking:email"
	TaskBookingReminder  = "booking:reminder"
	TaskWebhookDelivery  = "webhook:deliver"
	TaskHostNotification = "notification:host"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)
