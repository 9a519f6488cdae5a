package database

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"fmt"

	"go-booking-api/core/errors"
	"go-booking-api/core/logger"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	pqUniqueViolation      = "23505"
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

// maxSerializableAttempts bounds how often a serializable transaction is replayed
// after Postgres aborts it for a concurrent write.
const maxSerializableAttempts = 5

// WithSerializableTx runs fn in a SERIALIZABLE transaction. fn may be replayed when
// Postgres reports a serialization failure, so it must not have side effects outside tx.
func (d *Database) WithSerializableTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	var err error
	for attempt := 1; attempt <= maxSerializableAttempts; attempt++ {
		err = d.runTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, fn)
		if !IsSerializationFailure(err) {
			return MapError(err)
		}
		logger.Warn("Database:WithSerializableTx:Retry", "attempt", attempt, "error", err)
	}
	return MapError(err)
}

// WithLockingTx runs fn in a READ COMMITTED transaction; callers serialize on rows
// with SELECT ... FOR UPDATE.
func (d *Database) WithLockingTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return MapError(d.runTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, fn))
}

func (d *Database) runTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := d.sqlx.BeginTxx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !stdErrors.Is(rbErr, sql.ErrTxDone) {
				logger.Error("Database:runTx:Rollback:Error", "error", rbErr)
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func pqCode(err error) string {
	var pqErr *pq.Error
	if stdErrors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func IsUniqueViolation(err error) bool {
	return pqCode(err) == pqUniqueViolation
}

func IsSerializationFailure(err error) bool {
	code := pqCode(err)
	return code == pqSerializationFailure || code == pqDeadlockDetected
}

// MapError turns write-time constraint failures into ErrConflict and leaves typed errors untouched.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.As(err); ok {
		return err
	}
	if IsUniqueViolation(err) {
		return errors.NewAppError(errors.ErrConflict, "Booking already exists", err)
	}
	if IsSerializationFailure(err) {
		return errors.NewAppError(errors.ErrConflict, "Concurrent booking update, please retry", err)
	}
	return err
}
