package service

import (
	"context"

	"go-booking-api/core/errors"
	"go-booking-api/modules/eventtype/entity"
	"go-booking-api/modules/eventtype/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type EventTypeService interface {
	GetBySlug(ctx context.Context, s string) (*entity.EventType, error)
	GetByID(ctx context.Context, id int64) (*entity.EventType, error)
	// Hosts returns the candidate hosts in priority order; requested user ids, when given, replace the pool.
	Hosts(ctx context.Context, et *entity.EventType, requested []uuid.UUID) ([]entity.Host, error)
}

type eventTypeService struct {
	repo repository.EventTypeRepository
}

func NewEventTypeService(repo repository.EventTypeRepository) EventTypeService {
	return &eventTypeService{repo: repo}
}

func (s *eventTypeService) GetBySlug(ctx context.Context, raw string) (*entity.EventType, error) {
	normalized := slug.Make(raw)
	if normalized == "" {
		return nil, errors.NewAppError(errors.ErrNotFound, "Event type not found", nil)
	}
	et, err := s.repo.GetBySlug(ctx, normalized)
	return found(et, err)
}

func (s *eventTypeService) GetByID(ctx context.Context, id int64) (*entity.EventType, error) {
	et, err := s.repo.GetByID(ctx, id)
	return found(et, err)
}

func found(et *entity.EventType, err error) (*entity.EventType, error) {
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDependency, "Failed to load event type", err)
	}
	if et == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Event type not found", nil)
	}
	return et, nil
}

func (s *eventTypeService) Hosts(ctx context.Context, et *entity.EventType, requested []uuid.UUID) ([]entity.Host, error) {
	if len(requested) > 0 {
		users, err := s.repo.GetUsers(ctx, requested)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrDependency, "Failed to load users", err)
		}
		byID := make(map[uuid.UUID]entity.Host, len(users))
		for _, u := range users {
			byID[u.UserID] = u
		}
		// Keep the caller's order; it is the priority order.
		ordered := make([]entity.Host, 0, len(requested))
		for i, id := range requested {
			u, ok := byID[id]
			if !ok {
				return nil, errors.NewAppError(errors.ErrNotFound, "User not found", nil)
			}
			u.Priority = i
			ordered = append(ordered, u)
		}
		return ordered, nil
	}

	hosts, err := s.repo.GetHosts(ctx, et.ID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDependency, "Failed to load hosts", err)
	}
	if len(hosts) == 0 && et.OwnerID.Valid {
		owner, err := s.repo.GetUsers(ctx, []uuid.UUID{et.OwnerID.UUID})
		if err != nil {
			return nil, errors.NewAppError(errors.ErrDependency, "Failed to load event owner", err)
		}
		hosts = owner
	}
	if len(hosts) == 0 {
		return nil, errors.NewAppError(errors.ErrNotFound, "Event type has no hosts", nil)
	}
	return hosts, nil
}
