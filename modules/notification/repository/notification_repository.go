package repository

import (
	"context"

	"go-booking-api/core/database"
	"go-booking-api/core/logger"
	"go-booking-api/core/params"
	"go-booking-api/modules/notification/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	GetByUserID(ctx context.Context, userID uuid.UUID, p params.QueryParams) (*entity.PaginatedNotificationEntity, error)
	MarkAsRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

type notificationRepository struct {
	db database.IDatabase
}

func NewNotificationRepository(db database.IDatabase) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	query := `
		INSERT INTO notifications (title, message, type, data, user_id, is_read)
		VALUES (:title, :message, :type, :data, :user_id, :is_read)
		RETURNING id, created_at, updated_at
	`
	rows, err := r.db.NamedQueryContext(ctx, query, n)
	if err != nil {
		logger.Error("NotificationRepository:Create:Error", "user_id", n.UserID, "error", err)
		return err
	}
	defer rows.Close()

	if rows.Next() {
		return rows.Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
	}
	return rows.Err()
}

func (r *notificationRepository) GetByUserID(ctx context.Context, userID uuid.UUID, p params.QueryParams) (*entity.PaginatedNotificationEntity, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM notifications WHERE user_id = $1`, userID); err != nil {
		logger.Error("NotificationRepository:GetByUserID:Count:Error", "user_id", userID, "error", err)
		return nil, err
	}

	query := `
		SELECT id, user_id, title, message, type, data, is_read, created_at, updated_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	items := []entity.Notification{}
	if err := r.db.SelectContext(ctx, &items, query, userID, p.PageSize, p.Offset()); err != nil {
		logger.Error("NotificationRepository:GetByUserID:Select:Error", "user_id", userID, "error", err)
		return nil, err
	}

	return &entity.PaginatedNotificationEntity{
		Items:      items,
		TotalItems: total,
		PageNumber: p.PageNumber,
		PageSize:   p.PageSize,
	}, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`UPDATE notifications SET is_read = TRUE, updated_at = NOW() WHERE user_id = ? AND is_read = FALSE AND id IN (?)`, userID, ids)
	if err != nil {
		return err
	}
	if err := r.db.ExecContext(ctx, r.db.SQLx().Rebind(query), args...); err != nil {
		logger.Error("NotificationRepository:MarkAsRead:Error", "user_id", userID, "error", err)
		return err
	}
	return nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE, updated_at = NOW() WHERE user_id = $1 AND is_read = FALSE`, userID)
	if err != nil {
		logger.Error("NotificationRepository:MarkAllAsRead:Error", "user_id", userID, "error", err)
		return err
	}
	return nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`, userID); err != nil {
		logger.Error("NotificationRepository:CountUnread:Error", "user_id", userID, "error", err)
		return 0, err
	}
	return count, nil
}
