package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go-booking-api/core/config"
	"go-booking-api/modules/calendar/entity"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleProvider = "google"
	googleAPIBase  = "https://www.googleapis.com/calendar/v3"
)

var googleScopes = []string{
	"https://www.googleapis.com/auth/calendar.readonly",
	"https://www.googleapis.com/auth/calendar.events",
}

type googleCalendar struct {
	conf    *oauth2.Config
	token   *oauth2.Token
	baseURL string
}

// NewGoogleFactory builds Google Calendar adapters authenticated with the credential's stored token.
func NewGoogleFactory(client config.OAuthClient) Factory {
	conf := &oauth2.Config{
		ClientID:     client.ClientID,
		ClientSecret: client.ClientSecret,
		RedirectURL:  client.RedirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       googleScopes,
	}
	return func(cred entity.Credential) (Calendar, error) {
		if cred.Key.AccessToken == "" && cred.Key.RefreshToken == "" {
			return nil, fmt.Errorf("google credential %d has no token", cred.ID)
		}
		return &googleCalendar{conf: conf, token: cred.Key.Token(), baseURL: googleAPIBase}, nil
	}
}

func (g *googleCalendar) client(ctx context.Context) *http.Client {
	return g.conf.Client(ctx, g.token)
}

func (g *googleCalendar) ListCalendars(ctx context.Context) ([]entity.Calendar, error) {
	var result struct {
		Items []struct {
			ID         string `json:"id"`
			Summary    string `json:"summary"`
			Primary    bool   `json:"primary"`
			AccessRole string `json:"accessRole"`
		} `json:"items"`
	}
	if err := doJSON(ctx, g.client(ctx), googleProvider, http.MethodGet, g.baseURL+"/users/me/calendarList", nil, &result, nil); err != nil {
		return nil, err
	}

	calendars := make([]entity.Calendar, 0, len(result.Items))
	for _, item := range result.Items {
		calendars = append(calendars, entity.Calendar{
			ExternalID:  item.ID,
			Integration: entity.IntegrationGoogle,
			Name:        item.Summary,
			Primary:     item.Primary,
			ReadOnly:    item.AccessRole != "owner" && item.AccessRole != "writer",
		})
	}
	return calendars, nil
}

func (g *googleCalendar) GetAvailability(ctx context.Context, from, to time.Time, selected []entity.SelectedCalendar) ([]entity.BusyInterval, error) {
	items := make([]map[string]string, 0, len(selected))
	for _, sc := range selected {
		items = append(items, map[string]string{"id": sc.ExternalID})
	}
	if len(items) == 0 {
		items = append(items, map[string]string{"id": "primary"})
	}

	payload := map[string]any{
		"timeMin": from.UTC().Format(time.RFC3339),
		"timeMax": to.UTC().Format(time.RFC3339),
		"items":   items,
	}
	var result struct {
		Calendars map[string]struct {
			Busy []struct {
				Start time.Time `json:"start"`
				End   time.Time `json:"end"`
			} `json:"busy"`
			Errors []struct {
				Reason string `json:"reason"`
			} `json:"errors"`
		} `json:"calendars"`
	}
	if err := doJSON(ctx, g.client(ctx), googleProvider, http.MethodPost, g.baseURL+"/freeBusy", payload, &result, nil); err != nil {
		return nil, err
	}

	var busy []entity.BusyInterval
	for _, item := range items {
		cal, ok := result.Calendars[item["id"]]
		if !ok {
			continue
		}
		for _, b := range cal.Busy {
			busy = append(busy, entity.BusyInterval{Start: b.Start, End: b.End})
		}
	}
	return busy, nil
}

type googleEvent struct {
	ID          string            `json:"id,omitempty"`
	Summary     string            `json:"summary"`
	Description string            `json:"description,omitempty"`
	Location    string            `json:"location,omitempty"`
	Start       map[string]string `json:"start"`
	End         map[string]string `json:"end"`
	Attendees   []map[string]any  `json:"attendees,omitempty"`
	HangoutLink string            `json:"hangoutLink,omitempty"`
	ICalUID     string            `json:"iCalUID,omitempty"`
}

func toGoogleEvent(event entity.CalendarEvent) googleEvent {
	tz := event.Organizer.TimeZone
	if tz == "" {
		tz = "UTC"
	}
	ge := googleEvent{
		Summary:     event.Title,
		Description: event.Description,
		Location:    event.Location,
		Start:       map[string]string{"dateTime": event.Start.UTC().Format(time.RFC3339), "timeZone": tz},
		End:         map[string]string{"dateTime": event.End.UTC().Format(time.RFC3339), "timeZone": tz},
	}
	for _, a := range event.Attendees {
		ge.Attendees = append(ge.Attendees, map[string]any{"email": a.Email, "displayName": a.Name})
	}
	return ge
}

func (g *googleCalendar) CreateEvent(ctx context.Context, event entity.CalendarEvent) (*entity.RemoteEvent, error) {
	var created googleEvent
	endpoint := g.baseURL + "/calendars/primary/events?sendUpdates=none"
	if err := doJSON(ctx, g.client(ctx), googleProvider, http.MethodPost, endpoint, toGoogleEvent(event), &created, nil); err != nil {
		return nil, err
	}
	return &entity.RemoteEvent{Type: entity.IntegrationGoogle, UID: created.ID, MeetingURL: created.HangoutLink}, nil
}

func (g *googleCalendar) UpdateEvent(ctx context.Context, remoteUID string, event entity.CalendarEvent) (*entity.RemoteEvent, error) {
	var updated googleEvent
	endpoint := g.baseURL + "/calendars/primary/events/" + url.PathEscape(remoteUID)
	if err := doJSON(ctx, g.client(ctx), googleProvider, http.MethodPut, endpoint, toGoogleEvent(event), &updated, nil); err != nil {
		return nil, err
	}
	return &entity.RemoteEvent{Type: entity.IntegrationGoogle, UID: updated.ID, MeetingURL: updated.HangoutLink}, nil
}

func (g *googleCalendar) DeleteEvent(ctx context.Context, remoteUID string) error {
	endpoint := g.baseURL + "/calendars/primary/events/" + url.PathEscape(remoteUID)
	return doJSON(ctx, g.client(ctx), googleProvider, http.MethodDelete, endpoint, nil, nil, nil)
}
