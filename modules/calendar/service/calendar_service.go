package service

import (
	"context"
	"time"

	"go-booking-api/core/errors"
	"go-booking-api/core/logger"
	"go-booking-api/modules/calendar/entity"
	"go-booking-api/modules/calendar/repository"

	"github.com/google/uuid"
)

type CalendarService interface {
	// UserCalendars loads credentials and selected calendars for userIDs, preserving their order.
	UserCalendars(ctx context.Context, userIDs []uuid.UUID) ([]entity.UserCalendars, error)
	BusyIntervals(ctx context.Context, userIDs []uuid.UUID, from, to time.Time) (*BusyIndex, error)
	Credentials(ctx context.Context, userID uuid.UUID) ([]entity.Credential, error)
}

type calendarService struct {
	repo       repository.CalendarRepository
	aggregator *Aggregator
}

func NewCalendarService(repo repository.CalendarRepository, aggregator *Aggregator) CalendarService {
	return &calendarService{repo: repo, aggregator: aggregator}
}

func (s *calendarService) UserCalendars(ctx context.Context, userIDs []uuid.UUID) ([]entity.UserCalendars, error) {
	credentials, err := s.repo.GetCredentialsByUserIDs(ctx, userIDs)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDependency, "Failed to load calendar credentials", err)
	}
	selected, err := s.repo.GetSelectedCalendarsByUserIDs(ctx, userIDs)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDependency, "Failed to load selected calendars", err)
	}

	byUser := make(map[uuid.UUID]*entity.UserCalendars, len(userIDs))
	out := make([]entity.UserCalendars, len(userIDs))
	for i, id := range userIDs {
		out[i].UserID = id
		if _, seen := byUser[id]; !seen {
			byUser[id] = &out[i]
		}
	}
	for _, c := range credentials {
		if uc, ok := byUser[c.UserID]; ok {
			uc.Credentials = append(uc.Credentials, c)
		}
	}
	for _, sc := range selected {
		if uc, ok := byUser[sc.UserID]; ok {
			uc.SelectedCalendars = append(uc.SelectedCalendars, sc)
		}
	}
	// Duplicated ids in the request share the first entry's calendars.
	for i, id := range userIDs {
		if first := byUser[id]; first != &out[i] {
			out[i] = *first
		}
	}
	return out, nil
}

func (s *calendarService) BusyIntervals(ctx context.Context, userIDs []uuid.UUID, from, to time.Time) (*BusyIndex, error) {
	users, err := s.UserCalendars(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	index, err := s.aggregator.BusyIntervals(ctx, users, from, to)
	if err != nil {
		return nil, err
	}
	if len(index.Degraded) > 0 {
		logger.Warn("CalendarService:BusyIntervals:Degraded", "failures", len(index.Degraded))
	}
	return index, nil
}

func (s *calendarService) Credentials(ctx context.Context, userID uuid.UUID) ([]entity.Credential, error) {
	credentials, err := s.repo.GetCredentialsByUserIDs(ctx, []uuid.UUID{userID})
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDependency, "Failed to load calendar credentials", err)
	}
	return credentials, nil
}
