package repository

import (
	"context"
	"database/sql"
	stdErrors "errors"

	"go-booking-api/core/database"
	"go-booking-api/core/logger"
	"go-booking-api/modules/webhook/entity"

	"github.com/google/uuid"
)

type WebhookRepository interface {
	// FindSubscribers returns active webhooks of the host or the event type listening for trigger.
	FindSubscribers(ctx context.Context, userID uuid.UUID, eventTypeID int64, trigger string) ([]entity.Webhook, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Webhook, error)
}

type webhookRepository struct {
	db database.IDatabase
}

func NewWebhookRepository(db database.IDatabase) WebhookRepository {
	return &webhookRepository{db: db}
}

const webhookColumns = `id, user_id, event_type_id, subscriber_url, secret, event_triggers, active, created_at`

func (r *webhookRepository) FindSubscribers(ctx context.Context, userID uuid.UUID, eventTypeID int64, trigger string) ([]entity.Webhook, error) {
	query := `
		SELECT ` + webhookColumns + `
		FROM webhooks
		WHERE active
			AND (user_id = $1 OR ($2 > 0 AND event_type_id = $2))
			AND $3 = ANY(event_triggers)
		ORDER BY created_at, id
	`
	var hooks []entity.Webhook
	if err := r.db.SelectContext(ctx, &hooks, query, userID, eventTypeID, trigger); err != nil {
		logger.Error("WebhookRepository:FindSubscribers:Error", "user_id", userID, "event_type_id", eventTypeID, "error", err)
		return nil, err
	}
	return hooks, nil
}

func (r *webhookRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Webhook, error) {
	var hook entity.Webhook
	err := r.db.GetContext(ctx, &hook, `SELECT `+webhookColumns+` FROM webhooks WHERE id = $1`, id)
	if stdErrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.Error("WebhookRepository:GetByID:Error", "id", id, "error", err)
		return nil, err
	}
	return &hook, nil
}
