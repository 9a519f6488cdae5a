package repository

import (
	"context"
	"database/sql"
	stdErrors "errors"

	"go-booking-api/core/database"
	"go-booking-api/core/logger"
	"go-booking-api/modules/eventtype/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type EventTypeRepository interface {
	GetBySlug(ctx context.Context, slug string) (*entity.EventType, error)
	GetByID(ctx context.Context, id int64) (*entity.EventType, error)
	GetHosts(ctx context.Context, eventTypeID int64) ([]entity.Host, error)
	GetUsers(ctx context.Context, userIDs []uuid.UUID) ([]entity.Host, error)
}

type eventTypeRepository struct {
	db database.IDatabase
}

func NewEventTypeRepository(db database.IDatabase) EventTypeRepository {
	return &eventTypeRepository{db: db}
}

const eventTypeColumns = `
	id, owner_id, slug, title, description, length, before_buffer, after_buffer,
	minimum_booking_notice, slot_interval, scheduling_type, seats_per_time_slot, booking_limits,
	requires_confirmation, confirmation_threshold, price, currency, period_type, period_days,
	period_count_calendar_days, period_start_date, period_end_date, recurring, custom_inputs,
	working_hours, date_overrides, time_zone, created_at, updated_at`

// GetBySlug returns nil, nil when no event type matches.
func (r *eventTypeRepository) GetBySlug(ctx context.Context, slug string) (*entity.EventType, error) {
	return r.getOne(ctx, `SELECT `+eventTypeColumns+` FROM event_types WHERE slug = $1`, slug)
}

func (r *eventTypeRepository) GetByID(ctx context.Context, id int64) (*entity.EventType, error) {
	return r.getOne(ctx, `SELECT `+eventTypeColumns+` FROM event_types WHERE id = $1`, id)
}

func (r *eventTypeRepository) getOne(ctx context.Context, query string, arg any) (*entity.EventType, error) {
	var et entity.EventType
	if err := r.db.GetContext(ctx, &et, query, arg); err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		logger.Error("EventTypeRepository:getOne:Error", "error", err)
		return nil, err
	}
	return &et, nil
}

// GetHosts lists configured hosts, lowest priority value first.
func (r *eventTypeRepository) GetHosts(ctx context.Context, eventTypeID int64) ([]entity.Host, error) {
	query := `
		SELECT u.id AS user_id, u.email, u.name, COALESCE(u.username, '') AS username, u.time_zone, h.priority
		FROM event_type_hosts h
		JOIN users u ON u.id = h.user_id
		WHERE h.event_type_id = $1
		ORDER BY h.priority ASC, u.id ASC
	`
	var hosts []entity.Host
	if err := r.db.SelectContext(ctx, &hosts, query, eventTypeID); err != nil {
		logger.Error("EventTypeRepository:GetHosts:Error", "event_type_id", eventTypeID, "error", err)
		return nil, err
	}
	return hosts, nil
}

func (r *eventTypeRepository) GetUsers(ctx context.Context, userIDs []uuid.UUID) ([]entity.Host, error) {
	if len(userIDs) == 0 {
		return []entity.Host{}, nil
	}
	query, args, err := sqlx.In(`
		SELECT id AS user_id, email, name, COALESCE(username, '') AS username, time_zone, 0 AS priority
		FROM users
		WHERE id IN (?)
	`, userIDs)
	if err != nil {
		return nil, err
	}
	var users []entity.Host
	if err := r.db.SelectContext(ctx, &users, r.db.SQLx().Rebind(query), args...); err != nil {
		logger.Error("EventTypeRepository:GetUsers:Error", "error", err)
		return nil, err
	}
	return users, nil
}
