package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go-booking-api/core/config"
	"go-booking-api/modules/calendar/entity"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

const (
	outlookProvider = "outlook"
	graphAPIBase    = "https://graph.microsoft.com/v1.0"
	// Graph returns naive timestamps in the zone requested through the Prefer header.
	graphTimeLayout = "2006-01-02T15:04:05.9999999"
)

type outlookCalendar struct {
	conf    *oauth2.Config
	token   *oauth2.Token
	baseURL string
}

// NewOutlookFactory builds Microsoft Graph calendar adapters.
func NewOutlookFactory(client config.OAuthClient) Factory {
	tenant := client.Tenant
	if tenant == "" {
		tenant = "common"
	}
	conf := &oauth2.Config{
		ClientID:     client.ClientID,
		ClientSecret: client.ClientSecret,
		RedirectURL:  client.RedirectURL,
		Endpoint:     microsoft.AzureADEndpoint(tenant),
		Scopes:       []string{"offline_access", "Calendars.ReadWrite"},
	}
	return func(cred entity.Credential) (Calendar, error) {
		if cred.Key.AccessToken == "" && cred.Key.RefreshToken == "" {
			return nil, fmt.Errorf("outlook credential %d has no token", cred.ID)
		}
		return &outlookCalendar{conf: conf, token: cred.Key.Token(), baseURL: graphAPIBase}, nil
	}
}

func (o *outlookCalendar) client(ctx context.Context) *http.Client {
	return o.conf.Client(ctx, o.token)
}

var utcPreference = map[string]string{"Prefer": `outlook.timezone="UTC"`}

type graphDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

func (d graphDateTime) parse() (time.Time, error) {
	return time.ParseInLocation(graphTimeLayout, strings.TrimSuffix(d.DateTime, "Z"), time.UTC)
}

func (o *outlookCalendar) ListCalendars(ctx context.Context) ([]entity.Calendar, error) {
	var result struct {
		Value []struct {
			ID                string `json:"id"`
			Name              string `json:"name"`
			IsDefaultCalendar bool   `json:"isDefaultCalendar"`
			CanEdit           bool   `json:"canEdit"`
		} `json:"value"`
	}
	if err := doJSON(ctx, o.client(ctx), outlookProvider, http.MethodGet, o.baseURL+"/me/calendars", nil, &result, nil); err != nil {
		return nil, err
	}

	calendars := make([]entity.Calendar, 0, len(result.Value))
	for _, c := range result.Value {
		calendars = append(calendars, entity.Calendar{
			ExternalID:  c.ID,
			Integration: entity.IntegrationOutlook,
			Name:        c.Name,
			Primary:     c.IsDefaultCalendar,
			ReadOnly:    !c.CanEdit,
		})
	}
	return calendars, nil
}

func (o *outlookCalendar) GetAvailability(ctx context.Context, from, to time.Time, selected []entity.SelectedCalendar) ([]entity.BusyInterval, error) {
	paths := make([]string, 0, len(selected))
	for _, sc := range selected {
		paths = append(paths, "/me/calendars/"+url.PathEscape(sc.ExternalID)+"/calendarView")
	}
	if len(paths) == 0 {
		paths = append(paths, "/me/calendarView")
	}

	query := url.Values{}
	query.Set("startDateTime", from.UTC().Format(time.RFC3339))
	query.Set("endDateTime", to.UTC().Format(time.RFC3339))
	query.Set("$select", "subject,showAs,start,end")
	query.Set("$top", "500")

	client := o.client(ctx)
	var busy []entity.BusyInterval
	for _, p := range paths {
		var result struct {
			Value []struct {
				Subject string        `json:"subject"`
				ShowAs  string        `json:"showAs"`
				Start   graphDateTime `json:"start"`
				End     graphDateTime `json:"end"`
			} `json:"value"`
		}
		if err := doJSON(ctx, client, outlookProvider, http.MethodGet, o.baseURL+p+"?"+query.Encode(), nil, &result, utcPreference); err != nil {
			return nil, err
		}
		for _, ev := range result.Value {
			if ev.ShowAs == "free" || ev.ShowAs == "workingElsewhere" {
				continue
			}
			start, err := ev.Start.parse()
			if err != nil {
				return nil, fmt.Errorf("parse outlook start %q: %w", ev.Start.DateTime, err)
			}
			end, err := ev.End.parse()
			if err != nil {
				return nil, fmt.Errorf("parse outlook end %q: %w", ev.End.DateTime, err)
			}
			busy = append(busy, entity.BusyInterval{Start: start, End: end, Title: ev.Subject})
		}
	}
	return busy, nil
}

type graphEvent struct {
	ID            string            `json:"id,omitempty"`
	Subject       string            `json:"subject"`
	Body          map[string]string `json:"body"`
	Start         graphDateTime     `json:"start"`
	End           graphDateTime     `json:"end"`
	Location      map[string]string `json:"location,omitempty"`
	Attendees     []map[string]any  `json:"attendees,omitempty"`
	OnlineMeeting *struct {
		JoinURL string `json:"joinUrl"`
	} `json:"onlineMeeting,omitempty"`
}

func toGraphEvent(event entity.CalendarEvent) graphEvent {
	ge := graphEvent{
		Subject: event.Title,
		Body:    map[string]string{"contentType": "text", "content": event.Description},
		Start:   graphDateTime{DateTime: event.Start.UTC().Format(graphTimeLayout), TimeZone: "UTC"},
		End:     graphDateTime{DateTime: event.End.UTC().Format(graphTimeLayout), TimeZone: "UTC"},
	}
	if event.Location != "" {
		ge.Location = map[string]string{"displayName": event.Location}
	}
	for _, a := range event.Attendees {
		ge.Attendees = append(ge.Attendees, map[string]any{
			"emailAddress": map[string]string{"address": a.Email, "name": a.Name},
			"type":         "required",
		})
	}
	return ge
}

func remoteFromGraph(ge graphEvent) *entity.RemoteEvent {
	remote := &entity.RemoteEvent{Type: entity.IntegrationOutlook, UID: ge.ID}
	if ge.OnlineMeeting != nil {
		remote.MeetingURL = ge.OnlineMeeting.JoinURL
	}
	return remote
}

func (o *outlookCalendar) CreateEvent(ctx context.Context, event entity.CalendarEvent) (*entity.RemoteEvent, error) {
	var created graphEvent
	if err := doJSON(ctx, o.client(ctx), outlookProvider, http.MethodPost, o.baseURL+"/me/events", toGraphEvent(event), &created, nil); err != nil {
		return nil, err
	}
	return remoteFromGraph(created), nil
}

func (o *outlookCalendar) UpdateEvent(ctx context.Context, remoteUID string, event entity.CalendarEvent) (*entity.RemoteEvent, error) {
	var updated graphEvent
	endpoint := o.baseURL + "/me/events/" + url.PathEscape(remoteUID)
	if err := doJSON(ctx, o.client(ctx), outlookProvider, http.MethodPatch, endpoint, toGraphEvent(event), &updated, nil); err != nil {
		return nil, err
	}
	return remoteFromGraph(updated), nil
}

func (o *outlookCalendar) DeleteEvent(ctx context.Context, remoteUID string) error {
	return doJSON(ctx, o.client(ctx), outlookProvider, http.MethodDelete, o.baseURL+"/me/events/"+url.PathEscape(remoteUID), nil, nil, nil)
}
