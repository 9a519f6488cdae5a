package entity

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	IntegrationGoogle  = "google_calendar"
	IntegrationOutlook = "office365_calendar"
)

// Credential is a host's connection to one external provider.
type Credential struct {
	ID      int64         `db:"id" json:"id"`
	UserID  uuid.UUID     `db:"user_id" json:"user_id"`
	Type    string        `db:"type" json:"type"`
	Key     CredentialKey `db:"key" json:"-"`
	Invalid bool          `db:"invalid" json:"invalid"`
}

// IsCalendar reports whether the credential belongs to a calendar integration.
func (c Credential) IsCalendar() bool {
	return strings.HasSuffix(c.Type, "_calendar")
}

// Source is the tag stamped on busy intervals coming from this credential.
func (c Credential) Source() string {
	return strconv.FormatInt(c.ID, 10)
}

// CredentialKey holds the provider tokens, stored as JSONB.
type CredentialKey struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry"`
}

func (k CredentialKey) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  k.AccessToken,
		RefreshToken: k.RefreshToken,
		TokenType:    k.TokenType,
		Expiry:       k.Expiry,
	}
}

func (k CredentialKey) Value() (driver.Value, error) {
	return json.Marshal(k)
}

func (k *CredentialKey) Scan(value any) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, k)
}

type SelectedCalendar struct {
	UserID       uuid.UUID     `db:"user_id" json:"user_id"`
	Integration  string        `db:"integration" json:"integration"`
	ExternalID   string        `db:"external_id" json:"external_id"`
	CredentialID sql.NullInt64 `db:"credential_id" json:"-"`
}

// UserCalendars is the aggregation input for one host.
type UserCalendars struct {
	UserID            uuid.UUID
	Credentials       []Credential
	SelectedCalendars []SelectedCalendar
}

// SelectedFor returns the selected calendars that belong to credential c.
func (u UserCalendars) SelectedFor(c Credential) []SelectedCalendar {
	out := make([]SelectedCalendar, 0, len(u.SelectedCalendars))
	for _, sc := range u.SelectedCalendars {
		if sc.Integration != c.Type {
			continue
		}
		if sc.CredentialID.Valid && sc.CredentialID.Int64 != c.ID {
			continue
		}
		out = append(out, sc)
	}
	return out
}
