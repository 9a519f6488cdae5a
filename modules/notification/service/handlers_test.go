package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"go-booking-api/core/constants"
	"go-booking-api/core/params"
	"go-booking-api/core/queue"
	bookingEntity "go-booking-api/modules/booking/entity"
	"go-booking-api/modules/notification/dto"
	"go-booking-api/modules/notification/entity"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

func newHandlers(bookings fakeBookings) (*Handlers, *fakeRepo, *fakeObjects, registry) {
	repo := &fakeRepo{}
	objects := &fakeObjects{}
	h := NewHandlers(NewNotificationService(repo), objects, bookings, func() time.Time { return clock })
	reg := registry{}
	h.Register(reg)
	return h, repo, objects, reg
}

func mustTask(t *testing.T, taskType string, payload any) *asynq.Task {
	t.Helper()
	task, err := queue.NewTask(taskType, payload)
	if err != nil {
		t.Fatal(err)
	}
	return task
}

func TestRegisterCoversEveryTask(t *testing.T) {
	_, _, _, reg := newHandlers(nil)
	for _, tt := range []string{constants.TaskBookingEmail, constants.TaskBookingReminder, constants.TaskHostNotification} {
		if reg[tt] == nil {
			t.Fatalf("no handler for %s", tt)
		}
	}
}

func TestEmailArchivesInvite(t *testing.T) {
	_, _, objects, reg := newHandlers(nil)
	ev := sampleEvent(bookingEntity.TriggerCreated, bookingEntity.StatusAccepted, time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC))

	if err := reg[constants.TaskBookingEmail](context.Background(), mustTask(t, constants.TaskBookingEmail, EmailPayload{Kind: EmailScheduled, Event: ev})); err != nil {
		t.Fatalf("HandleEmail: %v", err)
	}
	body := string(objects.objects[InviteKey("uid-1")])
	for _, want := range []string{"METHOD:REQUEST", "UID:uid-1", "DTSTART:20240506T100000Z", "DTEND:20240506T103000Z", "mailto:bob@example.com", "STATUS:CONFIRMED"} {
		if !strings.Contains(body, want) {
			t.Fatalf("invite missing %q:\n%s", want, body)
		}
	}
	if objects.types[InviteKey("uid-1")] != "text/calendar" {
		t.Fatalf("content type = %q", objects.types[InviteKey("uid-1")])
	}
}

func TestRequestEmailHasNoInvite(t *testing.T) {
	_, _, objects, reg := newHandlers(nil)
	ev := sampleEvent(bookingEntity.TriggerRequested, bookingEntity.StatusPending, clock.Add(48*time.Hour))
	if err := reg[constants.TaskBookingEmail](context.Background(), mustTask(t, constants.TaskBookingEmail, EmailPayload{Kind: EmailRequest, Event: ev})); err != nil {
		t.Fatal(err)
	}
	if len(objects.objects) != 0 {
		t.Fatalf("unexpected objects %v", objects.objects)
	}
}

func TestMalformedPayloadSkipsRetry(t *testing.T) {
	_, _, _, reg := newHandlers(nil)
	err := reg[constants.TaskBookingEmail](context.Background(), asynq.NewTask(constants.TaskBookingEmail, []byte("{")))
	if err == nil || !strings.Contains(err.Error(), asynq.SkipRetry.Error()) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestCancelledInviteUsesCancelMethod(t *testing.T) {
	ev := sampleEvent(bookingEntity.TriggerCancelled, bookingEntity.StatusCancelled, clock)
	ev.Booking.Title = "Sync; planning, Q3"
	body := string(BuildInvite(ev, clock))
	if !strings.Contains(body, "METHOD:CANCEL") || !strings.Contains(body, "STATUS:CANCELLED") {
		t.Fatalf("expected cancel invite:\n%s", body)
	}
	if !strings.Contains(body, `SUMMARY:Sync\; planning\, Q3`) {
		t.Fatalf("summary not escaped:\n%s", body)
	}
	if !strings.HasSuffix(body, "END:VCALENDAR\r\n") {
		t.Fatal("lines must end with CRLF")
	}
}

func TestHostNotificationPerKind(t *testing.T) {
	cases := map[EmailKind]entity.Type{
		EmailScheduled:   entity.TypeBookingScheduled,
		EmailRescheduled: entity.TypeBookingRescheduled,
		EmailRequest:     entity.TypeBookingRequested,
		EmailCancelled:   entity.TypeBookingCancelled,
		EmailDeclined:    entity.TypeBookingRejected,
	}
	for kind, want := range cases {
		t.Run(string(kind), func(t *testing.T) {
			_, repo, _, reg := newHandlers(nil)
			ev := sampleEvent(bookingEntity.TriggerCreated, bookingEntity.StatusAccepted, clock.Add(24*time.Hour))
			task := mustTask(t, constants.TaskHostNotification, HostPayload{Kind: kind, Event: ev})
			if err := reg[constants.TaskHostNotification](context.Background(), task); err != nil {
				t.Fatal(err)
			}
			if len(repo.created) != 1 {
				t.Fatalf("expected one notification, got %d", len(repo.created))
			}
			n := repo.created[0]
			if n.Type != want || n.UserID != host || n.Data["booking_uid"] != "uid-1" {
				t.Fatalf("unexpected notification %+v", n)
			}
		})
	}
}

func TestReminderSkipsStaleBookings(t *testing.T) {
	start := clock.Add(24 * time.Hour)
	ev := sampleEvent(bookingEntity.TriggerCreated, bookingEntity.StatusAccepted, start)

	moved := ev.Booking
	moved.StartTime = start.Add(time.Hour)
	cancelled := ev.Booking
	cancelled.Status = bookingEntity.StatusCancelled
	live := ev.Booking

	cases := []struct {
		name    string
		current *bookingEntity.Booking
		want    int
	}{
		{"deleted", nil, 0},
		{"cancelled", &cancelled, 0},
		{"moved", &moved, 0},
		{"live", &live, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bookings := fakeBookings{}
			if tc.current != nil {
				bookings["uid-1"] = tc.current
			}
			_, repo, _, reg := newHandlers(bookings)
			task := mustTask(t, constants.TaskBookingReminder, ReminderPayload{Event: ev})
			if err := reg[constants.TaskBookingReminder](context.Background(), task); err != nil {
				t.Fatal(err)
			}
			if len(repo.created) != tc.want {
				t.Fatalf("notifications = %d, want %d", len(repo.created), tc.want)
			}
			if tc.want == 1 && repo.created[0].Type != entity.TypeBookingReminder {
				t.Fatalf("type = %s", repo.created[0].Type)
			}
		})
	}
}

func TestMarkAsReadReturnsUnreadCount(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewNotificationService(repo)
	ctx := context.Background()
	for range 3 {
		if err := svc.Create(ctx, &entity.Notification{UserID: host, Type: entity.TypeBookingScheduled}); err != nil {
			t.Fatal(err)
		}
	}

	resp, err := svc.MarkAsRead(ctx, host, &dto.MarkAsReadRequest{IDs: []uuid.UUID{repo.created[0].ID}})
	if err != nil || resp.Unread != 2 {
		t.Fatalf("after one: %+v %v", resp, err)
	}
	resp, err = svc.MarkAsRead(ctx, host, &dto.MarkAsReadRequest{All: true})
	if err != nil || resp.Unread != 0 {
		t.Fatalf("after all: %+v %v", resp, err)
	}

	page, _ := svc.GetMyNotifications(ctx, host, params.QueryParams{PageNumber: 1, PageSize: 20})
	if page.TotalItems != 3 || page.Items[0].Data == nil {
		t.Fatalf("unexpected page %+v", page)
	}
}
