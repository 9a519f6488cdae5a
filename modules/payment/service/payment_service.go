package service

import (
	"context"
	"strings"

	"go-booking-api/core/errors"
	"go-booking-api/core/logger"
	"go-booking-api/core/utils"
	bookingEntity "go-booking-api/modules/booking/entity"
	"go-booking-api/modules/payment/entity"
	"go-booking-api/modules/payment/repository"
)

const defaultCurrency = "usd"

// PaymentService opens payments for bookings admitted pending payment and settles their outcome.
type PaymentService struct {
	repo repository.PaymentRepository
}

func NewPaymentService(repo repository.PaymentRepository) *PaymentService {
	return &PaymentService{repo: repo}
}

// Initiate records an unpaid payment for b and returns its reference.
func (s *PaymentService) Initiate(ctx context.Context, b *bookingEntity.Booking, amount int, currency string) (string, error) {
	if amount <= 0 {
		return "", errors.NewAppError(errors.ErrValidation, "Payment amount must be positive", nil)
	}
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		currency = defaultCurrency
	}

	p := &entity.Payment{
		UID:       utils.GeneratePaymentUID(),
		BookingID: b.ID,
		Amount:    amount,
		Currency:  currency,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if _, ok := errors.As(err); ok {
			return "", err
		}
		return "", errors.NewAppError(errors.ErrDependency, "Failed to create payment", err)
	}
	logger.Info("PaymentService:Initiate:Success", "booking_uid", b.UID, "payment_uid", p.UID, "amount", amount, "currency", currency)
	return p.UID, nil
}

// Complete applies the pass/fail outcome of payment uid to the bookings it holds.
// next decides where a paid booking goes; it runs inside the settling transaction.
func (s *PaymentService) Complete(ctx context.Context, uid string, success bool, next func(context.Context, *bookingEntity.Booking) (bookingEntity.Status, error)) ([]*bookingEntity.Booking, error) {
	settled, err := s.repo.Complete(ctx, uid, success, next)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.NewAppError(errors.ErrDependency, "Failed to complete payment", err)
	}
	logger.Info("PaymentService:Complete:Success", "payment_uid", uid, "success", success, "bookings", len(settled))
	return settled, nil
}
