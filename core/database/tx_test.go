package database

import (
	"fmt"
	"testing"

	"go-booking-api/core/errors"

	"github.com/lib/pq"
)

func TestMapError(t *testing.T) {
	t.Run("unique violation becomes conflict", func(t *testing.T) {
		err := MapError(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}))
		if !errors.HasCode(err, errors.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("serialization failure becomes conflict", func(t *testing.T) {
		err := MapError(&pq.Error{Code: "40001"})
		if !errors.HasCode(err, errors.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("typed errors pass through", func(t *testing.T) {
		in := errors.NewAppError(errors.ErrUnavailable, "Booking limit reached", nil)
		if got := MapError(in); got != in {
			t.Fatalf("expected the same error back, got %v", got)
		}
	})

	t.Run("other errors pass through", func(t *testing.T) {
		in := fmt.Errorf("connection reset")
		if got := MapError(in); got != in {
			t.Fatalf("expected the same error back, got %v", got)
		}
		if MapError(nil) != nil {
			t.Fatal("expected nil for nil")
		}
	})
}
