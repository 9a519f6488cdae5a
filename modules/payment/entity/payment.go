package entity

import (
	"time"

	"github.com/google/uuid"
)

// ReasonPaymentFailed is recorded on bookings cancelled by a failed payment.
const ReasonPaymentFailed = "Payment failed"

// Payment holds a booking until the booker pays; amount is in the currency's minor unit.
type Payment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UID       string    `db:"uid" json:"uid"`
	BookingID uuid.UUID `db:"booking_id" json:"booking_id"`
	Amount    int       `db:"amount" json:"amount"`
	Currency  string    `db:"currency" json:"currency"`
	Success   bool      `db:"success" json:"success"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
