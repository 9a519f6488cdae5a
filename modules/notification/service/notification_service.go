package service

import (
	"context"

	"go-booking-api/core/errors"
	"go-booking-api/core/params"
	"go-booking-api/modules/notification/dto"
	"go-booking-api/modules/notification/entity"
	"go-booking-api/modules/notification/repository"

	"github.com/google/uuid"
)

type NotificationService interface {
	Create(ctx context.Context, n *entity.Notification) error
	GetMyNotifications(ctx context.Context, userID uuid.UUID, p params.QueryParams) (*entity.PaginatedNotificationEntity, error)
	MarkAsRead(ctx context.Context, userID uuid.UUID, req *dto.MarkAsReadRequest) (*dto.MarkAsReadResponse, error)
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) Create(ctx context.Context, n *entity.Notification) error {
	if n.Data == nil {
		n.Data = entity.JSONB{}
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return errors.NewAppError(errors.ErrDependency, "Failed to create notification", err)
	}
	return nil
}

func (s *notificationService) GetMyNotifications(ctx context.Context, userID uuid.UUID, p params.QueryParams) (*entity.PaginatedNotificationEntity, error) {
	page, err := s.repo.GetByUserID(ctx, userID, p)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDependency, "Failed to get notifications", err)
	}
	return page, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID uuid.UUID, req *dto.MarkAsReadRequest) (*dto.MarkAsReadResponse, error) {
	var err error
	if req.All {
		err = s.repo.MarkAllAsRead(ctx, userID)
	} else {
		err = s.repo.MarkAsRead(ctx, userID, req.IDs)
	}
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDependency, "Failed to mark as read", err)
	}

	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDependency, "Failed to count unread", err)
	}
	return &dto.MarkAsReadResponse{Unread: unread}, nil
}
