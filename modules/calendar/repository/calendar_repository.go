package repository

import (
	"context"

	"go-booking-api/core/database"
	"go-booking-api/core/logger"
	"go-booking-api/modules/calendar/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CalendarRepository interface {
	GetCredentialsByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]entity.Credential, error)
	GetSelectedCalendarsByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]entity.SelectedCalendar, error)
}

type calendarRepository struct {
	db database.IDatabase
}

func NewCalendarRepository(db database.IDatabase) CalendarRepository {
	return &calendarRepository{db: db}
}

func (r *calendarRepository) GetCredentialsByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]entity.Credential, error) {
	if len(userIDs) == 0 {
		return []entity.Credential{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, user_id, type, key, invalid
		FROM credentials
		WHERE user_id IN (?) AND invalid = false
		ORDER BY user_id, id
	`, userIDs)
	if err != nil {
		return nil, err
	}

	var credentials []entity.Credential
	if err := r.db.SelectContext(ctx, &credentials, r.db.SQLx().Rebind(query), args...); err != nil {
		logger.Error("CalendarRepository:GetCredentialsByUserIDs:Error", "error", err)
		return nil, err
	}
	return credentials, nil
}

func (r *calendarRepository) GetSelectedCalendarsByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]entity.SelectedCalendar, error) {
	if len(userIDs) == 0 {
		return []entity.SelectedCalendar{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT user_id, integration, external_id, credential_id
		FROM selected_calendars
		WHERE user_id IN (?)
		ORDER BY user_id, integration, external_id
	`, userIDs)
	if err != nil {
		return nil, err
	}

	var selected []entity.SelectedCalendar
	if err := r.db.SelectContext(ctx, &selected, r.db.SQLx().Rebind(query), args...); err != nil {
		logger.Error("CalendarRepository:GetSelectedCalendarsByUserIDs:Error", "error", err)
		return nil, err
	}
	return selected, nil
}
