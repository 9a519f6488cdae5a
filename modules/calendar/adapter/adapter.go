package adapter

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go-booking-api/modules/calendar/entity"
)

// Calendar is the capability every provider integration implements.
type Calendar interface {
	ListCalendars(ctx context.Context) ([]entity.Calendar, error)
	GetAvailability(ctx context.Context, from, to time.Time, selected []entity.SelectedCalendar) ([]entity.BusyInterval, error)
	CreateEvent(ctx context.Context, event entity.CalendarEvent) (*entity.RemoteEvent, error)
	UpdateEvent(ctx context.Context, remoteUID string, event entity.CalendarEvent) (*entity.RemoteEvent, error)
	DeleteEvent(ctx context.Context, remoteUID string) error
}

// Factory builds an adapter bound to one credential.
type Factory func(cred entity.Credential) (Calendar, error)

// Registry maps integration types to adapter factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

func (r *Registry) Register(integration string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[integration]; exists {
		return fmt.Errorf("calendar integration %s already registered", integration)
	}
	r.factories[integration] = factory
	return nil
}

// For returns the adapter for cred's integration type.
func (r *Registry) For(cred entity.Credential) (Calendar, error) {
	r.mu.RLock()
	factory, exists := r.factories[cred.Type]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("calendar integration %s not found", cred.Type)
	}
	return factory(cred)
}

func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
