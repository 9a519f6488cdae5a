package service

import (
	"context"
	"sync"

	"go-booking-api/core/params"
	bookingEntity "go-booking-api/modules/booking/entity"
	"go-booking-api/modules/notification/entity"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type enqueued struct {
	task *asynq.Task
	opts []asynq.Option
}

type fakeQueue struct {
	mu    sync.Mutex
	tasks []enqueued
	ids   map[string]bool
}

func (f *fakeQueue) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range opts {
		if o.Type() == asynq.TaskIDOpt {
			id := o.Value().(string)
			if f.ids == nil {
				f.ids = map[string]bool{}
			}
			if f.ids[id] {
				return nil, asynq.ErrTaskIDConflict
			}
			f.ids[id] = true
		}
	}
	f.tasks = append(f.tasks, enqueued{task: task, opts: opts})
	return &asynq.TaskInfo{ID: uuid.NewString(), Type: task.Type()}, nil
}

func (f *fakeQueue) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.tasks))
	for _, t := range f.tasks {
		out = append(out, t.task.Type())
	}
	return out
}

func (f *fakeQueue) find(taskType string) *enqueued {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].task.Type() == taskType {
			return &f.tasks[i]
		}
	}
	return nil
}

func option(opts []asynq.Option, t asynq.OptionType) (any, bool) {
	for _, o := range opts {
		if o.Type() == t {
			return o.Value(), true
		}
	}
	return nil, false
}

type fakeRepo struct {
	mu      sync.Mutex
	created []*entity.Notification
	read    map[uuid.UUID]bool
}

func (f *fakeRepo) Create(_ context.Context, n *entity.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n.ID = uuid.New()
	f.created = append(f.created, n)
	return nil
}

func (f *fakeRepo) GetByUserID(_ context.Context, userID uuid.UUID, p params.QueryParams) (*entity.PaginatedNotificationEntity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []entity.Notification
	for _, n := range f.created {
		if n.UserID == userID {
			items = append(items, *n)
		}
	}
	return &entity.PaginatedNotificationEntity{Items: items, TotalItems: len(items), PageNumber: p.PageNumber, PageSize: p.PageSize}, nil
}

func (f *fakeRepo) MarkAsRead(_ context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := map[uuid.UUID]bool{}
	for _, id := range ids {
		want[id] = true
	}
	for _, n := range f.created {
		if n.UserID == userID && want[n.ID] {
			n.IsRead = true
		}
	}
	return nil
}

func (f *fakeRepo) MarkAllAsRead(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.created {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (f *fakeRepo) CountUnread(_ context.Context, userID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, n := range f.created {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeObjects) PutObject(_ context.Context, key string, body []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.objects == nil {
		f.objects, f.types = map[string][]byte{}, map[string]string{}
	}
	f.objects[key] = body
	f.types[key] = contentType
	return "s3://test/" + key, nil
}

type fakeBookings map[string]*bookingEntity.Booking

func (f fakeBookings) FindByUID(_ context.Context, uid string) (*bookingEntity.Booking, error) {
	return f[uid], nil
}

type registry map[string]func(context.Context, *asynq.Task) error

func (r registry) HandleFunc(taskType string, handler func(context.Context, *asynq.Task) error) {
	r[taskType] = handler
}
