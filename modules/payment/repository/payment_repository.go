package repository

import (
	"context"
	"database/sql"
	stdErrors "errors"

	"go-booking-api/core/database"
	"go-booking-api/core/errors"
	"go-booking-api/core/logger"
	bookingEntity "go-booking-api/modules/booking/entity"
	"go-booking-api/modules/payment/entity"

	"github.com/jmoiron/sqlx"
)

// NextStatus picks the status of a booking whose payment just succeeded.
type NextStatus func(ctx context.Context, b *bookingEntity.Booking) (bookingEntity.Status, error)

type PaymentRepository interface {
	// Create stores p and points its pending booking, and the rest of its recurring series, at it.
	Create(ctx context.Context, p *entity.Payment) error
	// Complete records the outcome of payment uid and moves every pending booking it holds.
	// A failed payment cancels them; a successful one marks them paid and applies next.
	Complete(ctx context.Context, uid string, success bool, next NextStatus) ([]*bookingEntity.Booking, error)
}

type paymentRepository struct {
	db database.IDatabase
}

func NewPaymentRepository(db database.IDatabase) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, p *entity.Payment) error {
	return r.db.WithLockingTx(ctx, func(tx *sqlx.Tx) error {
		rows, err := sqlx.NamedQueryContext(ctx, tx, `
			INSERT INTO payments (uid, booking_id, amount, currency, success)
			VALUES (:uid, :booking_id, :amount, :currency, :success)
			RETURNING id, created_at
		`, p)
		if err != nil {
			logger.Error("PaymentRepository:Create:Insert:Error", "booking_id", p.BookingID, "error", err)
			return err
		}
		if rows.Next() {
			err = rows.Scan(&p.ID, &p.CreatedAt)
		}
		rows.Close()
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE bookings SET payment_ref = $1, updated_at = NOW()
			WHERE status = 'PENDING' AND (id = $2 OR (recurring_group_id IS NOT NULL
				AND recurring_group_id = (SELECT recurring_group_id FROM bookings WHERE id = $2)))
		`, p.UID, p.BookingID)
		if err != nil {
			logger.Error("PaymentRepository:Create:LinkBooking:Error", "booking_id", p.BookingID, "error", err)
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errors.NewAppError(errors.ErrNotFound, "Booking not found", nil)
		}
		return nil
	})
}

const heldBookingColumns = `id, uid, event_type_id, user_id, title, start_time, end_time, status, paid, payment_ref`

func (r *paymentRepository) Complete(ctx context.Context, uid string, success bool, next NextStatus) ([]*bookingEntity.Booking, error) {
	var settled []*bookingEntity.Booking
	err := r.db.WithLockingTx(ctx, func(tx *sqlx.Tx) error {
		var p entity.Payment
		err := tx.GetContext(ctx, &p,
			`SELECT id, uid, booking_id, amount, currency, success, created_at FROM payments WHERE uid = $1 FOR UPDATE`, uid)
		if stdErrors.Is(err, sql.ErrNoRows) {
			return errors.NewAppError(errors.ErrNotFound, "Payment not found", nil)
		}
		if err != nil {
			return err
		}
		if p.Success {
			return errors.NewAppError(errors.ErrConflict, "Payment is already completed", nil)
		}

		var held []*bookingEntity.Booking
		if err := tx.SelectContext(ctx, &held,
			`SELECT `+heldBookingColumns+` FROM bookings WHERE payment_ref = $1 AND status = 'PENDING' ORDER BY start_time FOR UPDATE`,
			uid); err != nil {
			return err
		}
		if len(held) == 0 {
			return errors.NewAppError(errors.ErrConflict, "No booking is waiting for this payment", nil)
		}

		if !success {
			for _, b := range held {
				if _, err := tx.ExecContext(ctx,
					`UPDATE bookings SET status = $2, cancellation_reason = $3, updated_at = NOW() WHERE id = $1`,
					b.ID, bookingEntity.StatusCancelled, entity.ReasonPaymentFailed); err != nil {
					return err
				}
				b.Status = bookingEntity.StatusCancelled
				b.CancellationReason = entity.ReasonPaymentFailed
			}
			settled = held
			return nil
		}

		if _, err := tx.ExecContext(ctx, `UPDATE payments SET success = TRUE WHERE id = $1`, p.ID); err != nil {
			return err
		}
		for _, b := range held {
			status, err := next(ctx, b)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE bookings SET paid = TRUE, status = $2, updated_at = NOW() WHERE id = $1`, b.ID, status); err != nil {
				return err
			}
			b.Paid = true
			b.Status = status
		}
		settled = held
		return nil
	})
	if err != nil {
		logger.Warn("PaymentRepository:Complete:Error", "uid", uid, "success", success, "error", err)
		return nil, err
	}
	return settled, nil
}
