package entity

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	availability "go-booking-api/modules/availability/entity"

	"github.com/google/uuid"
)

type SchedulingType string

const (
	SchedulingCollective SchedulingType = "COLLECTIVE"
	SchedulingRoundRobin SchedulingType = "ROUND_ROBIN"
)

type PeriodType string

const (
	PeriodUnlimited PeriodType = "UNLIMITED"
	PeriodRolling   PeriodType = "ROLLING"
	PeriodRange     PeriodType = "RANGE"
)

type EventType struct {
	ID                      int64                        `db:"id" json:"id"`
	OwnerID                 uuid.NullUUID                `db:"owner_id" json:"owner_id"`
	Slug                    string                       `db:"slug" json:"slug"`
	Title                   string                       `db:"title" json:"title"`
	Description             string                       `db:"description" json:"description"`
	Length                  int                          `db:"length" json:"length"`
	BeforeBuffer            int                          `db:"before_buffer" json:"before_buffer"`
	AfterBuffer             int                          `db:"after_buffer" json:"after_buffer"`
	MinimumBookingNotice    int                          `db:"minimum_booking_notice" json:"minimum_booking_notice"`
	SlotInterval            sql.NullInt32                `db:"slot_interval" json:"-"`
	SchedulingType          SchedulingType               `db:"scheduling_type" json:"scheduling_type"`
	SeatsPerTimeSlot        sql.NullInt32                `db:"seats_per_time_slot" json:"-"`
	BookingLimits           BookingLimits                `db:"booking_limits" json:"booking_limits"`
	RequiresConfirmation    bool                         `db:"requires_confirmation" json:"requires_confirmation"`
	ConfirmationThreshold   ConfirmationThreshold        `db:"confirmation_threshold" json:"confirmation_threshold"`
	Price                   int                          `db:"price" json:"price"`
	Currency                string                       `db:"currency" json:"currency"`
	PeriodType              PeriodType                   `db:"period_type" json:"period_type"`
	PeriodDays              sql.NullInt32                `db:"period_days" json:"-"`
	PeriodCountCalendarDays bool                         `db:"period_count_calendar_days" json:"period_count_calendar_days"`
	PeriodStartDate         sql.NullTime                 `db:"period_start_date" json:"-"`
	PeriodEndDate           sql.NullTime                 `db:"period_end_date" json:"-"`
	Recurring               Recurrence                   `db:"recurring" json:"recurring"`
	CustomInputs            CustomInputs                 `db:"custom_inputs" json:"custom_inputs"`
	WorkingHours            availability.WorkingHours    `db:"working_hours" json:"working_hours"`
	DateOverrides           availability.DateOverrides   `db:"date_overrides" json:"date_overrides"`
	TimeZone                string                       `db:"time_zone" json:"time_zone"`
	CreatedAt               time.Time                    `db:"created_at" json:"created_at"`
	UpdatedAt               time.Time                    `db:"updated_at" json:"updated_at"`
}

// Frequency is the slot step in minutes, defaulting to the event length.
func (e *EventType) Frequency() int {
	if e.SlotInterval.Valid && e.SlotInterval.Int32 > 0 {
		return int(e.SlotInterval.Int32)
	}
	return e.Length
}

// Seats returns the per-slot capacity, or 0 when seats are disabled.
func (e *EventType) Seats() int {
	if e.SeatsPerTimeSlot.Valid && e.SeatsPerTimeSlot.Int32 > 0 {
		return int(e.SeatsPerTimeSlot.Int32)
	}
	return 0
}

func (e *EventType) Duration() time.Duration {
	return time.Duration(e.Length) * time.Minute
}

func (e *EventType) Location() *time.Location {
	if loc, err := time.LoadLocation(e.TimeZone); err == nil && e.TimeZone != "" {
		return loc
	}
	return time.UTC
}

// Host is a user who can take bookings for an event type.
type Host struct {
	UserID   uuid.UUID `db:"user_id" json:"user_id"`
	Email    string    `db:"email" json:"email"`
	Name     string    `db:"name" json:"name"`
	Username string    `db:"username" json:"username"`
	TimeZone string    `db:"time_zone" json:"time_zone"`
	Priority int       `db:"priority" json:"priority"`
}

// BookingLimits caps bookings per period; keys are PER_DAY, PER_WEEK, PER_MONTH, PER_YEAR.
type BookingLimits map[string]int

const (
	LimitPerDay   = "PER_DAY"
	LimitPerWeek  = "PER_WEEK"
	LimitPerMonth = "PER_MONTH"
	LimitPerYear  = "PER_YEAR"
)

func (b BookingLimits) Value() (driver.Value, error) {
	if b == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(b)
}

func (b *BookingLimits) Scan(value any) error {
	return scanJSON(value, b)
}

// ConfirmationThreshold lets bookings far enough ahead skip manual confirmation.
type ConfirmationThreshold struct {
	Amount int    `json:"amount"`
	Unit   string `json:"unit"`
}

func (c ConfirmationThreshold) Valid() bool {
	return c.Amount > 0
}

// Duration converts the threshold; unknown units read as minutes.
func (c ConfirmationThreshold) Duration() time.Duration {
	d := time.Duration(c.Amount)
	switch c.Unit {
	case "hours":
		return d * time.Hour
	case "days":
		return d * 24 * time.Hour
	default:
		return d * time.Minute
	}
}

func (c ConfirmationThreshold) Value() (driver.Value, error) {
	if !c.Valid() {
		return nil, nil
	}
	return json.Marshal(c)
}

func (c *ConfirmationThreshold) Scan(value any) error {
	return scanJSON(value, c)
}

// Recurrence is the event type's repeat rule. Count == 0 means not recurring.
type Recurrence struct {
	Freq     string `json:"freq"`
	Interval int    `json:"interval"`
	Count    int    `json:"count"`
}

const (
	FreqDaily   = "daily"
	FreqWeekly  = "weekly"
	FreqMonthly = "monthly"
)

func (r Recurrence) Valid() bool {
	return r.Count > 0
}

func (r Recurrence) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, nil
	}
	return json.Marshal(r)
}

func (r *Recurrence) Scan(value any) error {
	return scanJSON(value, r)
}

type CustomInputType string

const (
	InputText     CustomInputType = "TEXT"
	InputTextLong CustomInputType = "TEXTLONG"
	InputNumber   CustomInputType = "NUMBER"
	InputBool     CustomInputType = "BOOL"
	InputPhone    CustomInputType = "PHONE"
	InputEmail    CustomInputType = "EMAIL"
)

type CustomInput struct {
	ID       int             `json:"id"`
	Label    string          `json:"label"`
	Type     CustomInputType `json:"type"`
	Required bool            `json:"required"`
}

type CustomInputs []CustomInput

func (c CustomInputs) Value() (driver.Value, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c)
}

func (c *CustomInputs) Scan(value any) error {
	return scanJSON(value, c)
}

func scanJSON(value any, dest any) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, dest)
}
