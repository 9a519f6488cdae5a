package repository

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"fmt"
	"time"

	"go-booking-api/core/database"
	"go-booking-api/core/errors"
	"go-booking-api/core/logger"
	"go-booking-api/modules/booking/entity"
	calendarEntity "go-booking-api/modules/calendar/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Counter counts the live bookings of a host for an event type whose start falls in [from, to).
type Counter interface {
	CountInRange(ctx context.Context, eventTypeID int64, userID uuid.UUID, from, to time.Time) (int, error)
}

// TxView reads the bookings table from inside the writing transaction.
type TxView interface {
	Counter
	// CountOverlapping counts the host's accepted bookings whose buffered span overlaps [start, end).
	CountOverlapping(ctx context.Context, userID uuid.UUID, start, end time.Time) (int, error)
}

// Guard runs inside the writing transaction before any row is written; an error aborts the write.
type Guard func(ctx context.Context, view TxView) error

type BookingRepository interface {
	Counter
	// FindByUID returns the booking with its attendees, or nil when none exists.
	FindByUID(ctx context.Context, uid string) (*entity.Booking, error)
	FindManyByUserAndRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]entity.Booking, error)
	// BusyIntervals returns the host's accepted bookings widened by their event type buffers.
	BusyIntervals(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]calendarEntity.BusyInterval, error)
	CreateWithAttendees(ctx context.Context, bookings []*entity.Booking, guard Guard) error
	// AppendAttendee adds a to the booking when a seat is free and the email is not present yet.
	AppendAttendee(ctx context.Context, uid string, a entity.Attendee, seats int) (*entity.Booking, error)
	// Supersede cancels the booking oldUID as rescheduled and inserts next in the same transaction.
	Supersede(ctx context.Context, oldUID string, next *entity.Booking, guard Guard) (*entity.Booking, error)
	UpdateStatus(ctx context.Context, uid string, from []entity.Status, to entity.Status, reason string) (*entity.Booking, error)
	AddReferences(ctx context.Context, bookingID uuid.UUID, refs []entity.Reference) error
	FindReferences(ctx context.Context, bookingID uuid.UUID) ([]entity.Reference, error)
}

type bookingRepository struct {
	db database.IDatabase
}

func NewBookingRepository(db database.IDatabase) BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumns = `
	id, uid, event_type_id, user_id, title, description, location, start_time, end_time, status, paid,
	payment_ref, recurring_group_id, rescheduled_from_uid, rescheduled, custom_inputs, cancellation_reason,
	created_at, updated_at`

// queryer is satisfied by both the pool and an open transaction.
type queryer interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

func (r *bookingRepository) FindByUID(ctx context.Context, uid string) (*entity.Booking, error) {
	b, err := findByUID(ctx, r.db, uid, false)
	if err != nil {
		logger.Error("BookingRepository:FindByUID:Error", "uid", uid, "error", err)
	}
	return b, err
}

func findByUID(ctx context.Context, q queryer, uid string, lock bool) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE uid = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	var b entity.Booking
	if err := q.GetContext(ctx, &b, query, uid); err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := q.SelectContext(ctx, &b.Attendees,
		`SELECT id, booking_id, position, email, name, time_zone, locale FROM attendees WHERE booking_id = $1 ORDER BY position`,
		b.ID); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) FindManyByUserAndRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE user_id = $1 AND start_time < $3 AND end_time > $2
		ORDER BY start_time`
	var bookings []entity.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, userID, from, to); err != nil {
		logger.Error("BookingRepository:FindManyByUserAndRange:Error", "user_id", userID, "error", err)
		return nil, err
	}
	return bookings, nil
}

type busyRow struct {
	UID          string        `db:"uid"`
	Title        string        `db:"title"`
	EventTypeID  sql.NullInt64 `db:"event_type_id"`
	StartTime    time.Time     `db:"start_time"`
	EndTime      time.Time     `db:"end_time"`
	BeforeBuffer int           `db:"before_buffer"`
	AfterBuffer  int           `db:"after_buffer"`
}

// widen turns a booking row into a busy interval covering its buffers.
func (r busyRow) widen() calendarEntity.BusyInterval {
	return calendarEntity.BusyInterval{
		Start:  r.StartTime.Add(-time.Duration(r.BeforeBuffer) * time.Minute),
		End:    r.EndTime.Add(time.Duration(r.AfterBuffer) * time.Minute),
		Title:  r.Title,
		Source: BusySource(r.EventTypeID.Int64, r.UID),
	}
}

// BusySource tags an internal booking in the busy index.
func BusySource(eventTypeID int64, uid string) string {
	return fmt.Sprintf("eventType-%d-booking-%s", eventTypeID, uid)
}

// busyFilter selects the accepted bookings of $1 whose buffered span overlaps [$2, $3).
const busyFilter = `b.user_id = $1
			AND b.status = 'ACCEPTED'
			AND b.start_time - make_interval(mins => COALESCE(et.before_buffer, 0)) < $3
			AND b.end_time + make_interval(mins => COALESCE(et.after_buffer, 0)) > $2`

func (r *bookingRepository) BusyIntervals(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]calendarEntity.BusyInterval, error) {
	query := `
		SELECT b.uid, b.title, b.event_type_id, b.start_time, b.end_time,
			COALESCE(et.before_buffer, 0) AS before_buffer, COALESCE(et.after_buffer, 0) AS after_buffer
		FROM bookings b
		LEFT JOIN event_types et ON et.id = b.event_type_id
		WHERE ` + busyFilter + `
		ORDER BY b.start_time
	`
	var rows []busyRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, from, to); err != nil {
		logger.Error("BookingRepository:BusyIntervals:Error", "user_id", userID, "error", err)
		return nil, err
	}
	out := make([]calendarEntity.BusyInterval, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.widen())
	}
	return out, nil
}

const countQuery = `
	SELECT COUNT(*) FROM bookings
	WHERE event_type_id = $1 AND user_id = $2 AND status IN ('ACCEPTED', 'PENDING')
		AND start_time >= $3 AND start_time < $4`

func (r *bookingRepository) CountInRange(ctx context.Context, eventTypeID int64, userID uuid.UUID, from, to time.Time) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, countQuery, eventTypeID, userID, from, to); err != nil {
		logger.Error("BookingRepository:CountInRange:Error", "error", err)
		return 0, err
	}
	return n, nil
}

type txView struct {
	tx *sqlx.Tx
}

func (v txView) CountInRange(ctx context.Context, eventTypeID int64, userID uuid.UUID, from, to time.Time) (int, error) {
	var n int
	err := v.tx.GetContext(ctx, &n, countQuery, eventTypeID, userID, from, to)
	return n, err
}

// CountOverlapping reads the rows BusyIntervals reports; concurrent writers for one host and slot conflict on them.
func (v txView) CountOverlapping(ctx context.Context, userID uuid.UUID, start, end time.Time) (int, error) {
	var n int
	err := v.tx.GetContext(ctx, &n, `
		SELECT COUNT(*) FROM bookings b
		LEFT JOIN event_types et ON et.id = b.event_type_id
		WHERE `+busyFilter, userID, start, end)
	return n, err
}

func (r *bookingRepository) CreateWithAttendees(ctx context.Context, bookings []*entity.Booking, guard Guard) error {
	err := r.db.WithSerializableTx(ctx, func(tx *sqlx.Tx) error {
		if guard != nil {
			if err := guard(ctx, txView{tx: tx}); err != nil {
				return err
			}
		}
		for _, b := range bookings {
			if err := insertBooking(ctx, tx, b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("BookingRepository:CreateWithAttendees:Error", "count", len(bookings), "error", err)
	}
	return err
}

func insertBooking(ctx context.Context, tx *sqlx.Tx, b *entity.Booking) error {
	query := `
		INSERT INTO bookings (uid, event_type_id, user_id, title, description, location, start_time, end_time,
			status, paid, payment_ref, recurring_group_id, rescheduled_from_uid, custom_inputs)
		VALUES (:uid, :event_type_id, :user_id, :title, :description, :location, :start_time, :end_time,
			:status, :paid, :payment_ref, :recurring_group_id, :rescheduled_from_uid, :custom_inputs)
		RETURNING id, created_at, updated_at
	`
	rows, err := sqlx.NamedQueryContext(ctx, tx, query, b)
	if err != nil {
		return err
	}
	if rows.Next() {
		if err := rows.Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			rows.Close()
			return err
		}
	}
	if err := rows.Close(); err != nil {
		return err
	}

	for i := range b.Attendees {
		a := &b.Attendees[i]
		a.BookingID = b.ID
		a.Position = i
		if err := insertAttendee(ctx, tx, a); err != nil {
			return err
		}
	}
	return nil
}

func insertAttendee(ctx context.Context, tx *sqlx.Tx, a *entity.Attendee) error {
	return tx.QueryRowxContext(ctx,
		`INSERT INTO attendees (booking_id, position, email, name, time_zone, locale)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		a.BookingID, a.Position, a.Email, a.Name, a.TimeZone, a.Locale,
	).Scan(&a.ID)
}

func (r *bookingRepository) AppendAttendee(ctx context.Context, uid string, a entity.Attendee, seats int) (*entity.Booking, error) {
	var booking *entity.Booking
	err := r.db.WithLockingTx(ctx, func(tx *sqlx.Tx) error {
		b, err := findByUID(ctx, tx, uid, true)
		if err != nil {
			return err
		}
		if b == nil {
			return errors.NewAppError(errors.ErrNotFound, "Booking not found", nil)
		}
		if b.Status.Closed() {
			return errors.NewAppError(errors.ErrConflict, "Booking is no longer open for seats", nil)
		}
		if b.SeatsUsed() >= seats {
			return errors.NewAppError(errors.ErrConflict, "No seats available", nil)
		}
		if b.HasAttendee(a.Email) {
			return errors.NewAppError(errors.ErrConflict, "Attendee already has a seat", nil)
		}
		a.BookingID = b.ID
		a.Position = b.SeatsUsed()
		if err := insertAttendee(ctx, tx, &a); err != nil {
			return err
		}
		b.Attendees = append(b.Attendees, a)
		booking = b
		return nil
	})
	if err != nil {
		logger.Warn("BookingRepository:AppendAttendee:Error", "uid", uid, "error", err)
		return nil, err
	}
	return booking, nil
}

func (r *bookingRepository) Supersede(ctx context.Context, oldUID string, next *entity.Booking, guard Guard) (*entity.Booking, error) {
	var old *entity.Booking
	err := r.db.WithSerializableTx(ctx, func(tx *sqlx.Tx) error {
		b, err := findByUID(ctx, tx, oldUID, true)
		if err != nil {
			return err
		}
		if b == nil {
			return errors.NewAppError(errors.ErrNotFound, "Booking to reschedule not found", nil)
		}
		if b.Status.Closed() {
			return errors.NewAppError(errors.ErrConflict, "Booking can no longer be rescheduled", nil)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE bookings SET status = $2, rescheduled = TRUE, updated_at = NOW() WHERE id = $1`,
			b.ID, entity.StatusCancelled); err != nil {
			return err
		}
		if guard != nil {
			if err := guard(ctx, txView{tx: tx}); err != nil {
				return err
			}
		}
		if err := insertBooking(ctx, tx, next); err != nil {
			return err
		}
		b.Status = entity.StatusCancelled
		b.Rescheduled = true
		old = b
		return nil
	})
	if err != nil {
		logger.Error("BookingRepository:Supersede:Error", "old_uid", oldUID, "error", err)
		return nil, err
	}
	return old, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, uid string, from []entity.Status, to entity.Status, reason string) (*entity.Booking, error) {
	var booking *entity.Booking
	err := r.db.WithLockingTx(ctx, func(tx *sqlx.Tx) error {
		b, err := findByUID(ctx, tx, uid, true)
		if err != nil {
			return err
		}
		if b == nil {
			return errors.NewAppError(errors.ErrNotFound, "Booking not found", nil)
		}
		if !statusIn(b.Status, from) {
			return errors.NewAppError(errors.ErrConflict, fmt.Sprintf("Booking is %s", b.Status), nil)
		}
		if err := tx.GetContext(ctx, &b.UpdatedAt,
			`UPDATE bookings SET status = $2, cancellation_reason = $3, updated_at = NOW() WHERE id = $1 RETURNING updated_at`,
			b.ID, to, reason); err != nil {
			return err
		}
		b.Status = to
		b.CancellationReason = reason
		booking = b
		return nil
	})
	if err != nil {
		logger.Warn("BookingRepository:UpdateStatus:Error", "uid", uid, "to", to, "error", err)
		return nil, err
	}
	return booking, nil
}

func statusIn(s entity.Status, set []entity.Status) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func (r *bookingRepository) AddReferences(ctx context.Context, bookingID uuid.UUID, refs []entity.Reference) error {
	for _, ref := range refs {
		ref.BookingID = bookingID
		if _, err := r.db.NamedExecContext(ctx, `
			INSERT INTO booking_references (booking_id, type, uid, meeting_url, credential_id)
			VALUES (:booking_id, :type, :uid, :meeting_url, :credential_id)
		`, ref); err != nil {
			logger.Error("BookingRepository:AddReferences:Error", "booking_id", bookingID, "error", err)
			return err
		}
	}
	return nil
}

func (r *bookingRepository) FindReferences(ctx context.Context, bookingID uuid.UUID) ([]entity.Reference, error) {
	var refs []entity.Reference
	err := r.db.SelectContext(ctx, &refs,
		`SELECT id, booking_id, type, uid, meeting_url, credential_id FROM booking_references WHERE booking_id = $1 ORDER BY id`,
		bookingID)
	if err != nil {
		logger.Error("BookingRepository:FindReferences:Error", "booking_id", bookingID, "error", err)
		return nil, err
	}
	return refs, nil
}
