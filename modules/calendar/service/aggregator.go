package service

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"go-booking-api/core/cache"
	"go-booking-api/core/constants"
	"go-booking-api/core/errors"
	"go-booking-api/core/logger"
	"go-booking-api/modules/calendar/adapter"
	"go-booking-api/modules/calendar/entity"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("go-booking-api/modules/calendar")

// InternalBusySource reads the accepted bookings of one host, already widened by buffers.
type InternalBusySource interface {
	BusyIntervals(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]entity.BusyInterval, error)
}

type AdapterProvider interface {
	For(cred entity.Credential) (adapter.Calendar, error)
}

type AggregatorConfig struct {
	CacheTTL       time.Duration
	MaxFanout      int
	AdapterTimeout time.Duration
}

// SoftFailure records a credential whose busy times could not be read.
type SoftFailure struct {
	UserID       uuid.UUID `json:"user_id"`
	CredentialID int64     `json:"credential_id"`
	Reason       string    `json:"reason"`
}

// credentialResult is the outcome of one adapter read: intervals, or a soft failure.
type credentialResult struct {
	intervals []entity.BusyInterval
	failure   *SoftFailure
}

// BusyIndex holds busy intervals per user and UTC day key.
type BusyIndex struct {
	ByUser   map[uuid.UUID]map[string][]entity.BusyInterval
	all      map[uuid.UUID][]entity.BusyInterval
	Degraded []SoftFailure
}

// Day returns the intervals of userID touching the given day key (YYYY-MM-DD, UTC).
func (i *BusyIndex) Day(userID uuid.UUID, dayKey string) []entity.BusyInterval {
	if i == nil {
		return nil
	}
	return i.ByUser[userID][dayKey]
}

// ForUser returns every interval of userID once, ordered by start.
func (i *BusyIndex) ForUser(userID uuid.UUID) []entity.BusyInterval {
	if i == nil {
		return nil
	}
	return i.all[userID]
}

// NewBusyIndex sorts each user's intervals and files them under every UTC day they touch.
func NewBusyIndex(perUser map[uuid.UUID][]entity.BusyInterval, degraded []SoftFailure) *BusyIndex {
	index := &BusyIndex{
		ByUser:   make(map[uuid.UUID]map[string][]entity.BusyInterval, len(perUser)),
		all:      make(map[uuid.UUID][]entity.BusyInterval, len(perUser)),
		Degraded: degraded,
	}
	for userID, intervals := range perUser {
		sorted := append([]entity.BusyInterval(nil), intervals...)
		sortIntervals(sorted)
		index.all[userID] = sorted
		index.ByUser[userID] = splitByDay(sorted)
	}
	return index
}

type Aggregator struct {
	internal InternalBusySource
	adapters AdapterProvider
	cache    cache.Cache
	cfg      AggregatorConfig
}

func NewAggregator(internal InternalBusySource, adapters AdapterProvider, c cache.Cache, cfg AggregatorConfig) *Aggregator {
	if cfg.MaxFanout <= 0 {
		cfg.MaxFanout = 8
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Second
	}
	return &Aggregator{internal: internal, adapters: adapters, cache: c, cfg: cfg}
}

type userResult struct {
	intervals []entity.BusyInterval
	failures  []SoftFailure
}

// BusyIntervals merges internal bookings and external calendars for every user over [from, to).
// A failed internal read fails the call; adapter failures only shrink coverage.
func (a *Aggregator) BusyIntervals(ctx context.Context, users []entity.UserCalendars, from, to time.Time) (*BusyIndex, error) {
	ctx, span := tracer.Start(ctx, "Aggregator.BusyIntervals")
	defer span.End()
	span.SetAttributes(
		attribute.Int("busy.users", len(users)),
		attribute.String("busy.from", from.UTC().Format(time.RFC3339)),
		attribute.String("busy.to", to.UTC().Format(time.RFC3339)),
	)

	index, err := a.busyIntervals(ctx, users, from, to)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("busy.degraded", len(index.Degraded)))
	return index, nil
}

func (a *Aggregator) busyIntervals(ctx context.Context, users []entity.UserCalendars, from, to time.Time) (*BusyIndex, error) {
	if !to.After(from) {
		return nil, errors.NewAppError(errors.ErrValidation, "dateTo must be after dateFrom", nil)
	}

	results := make([]userResult, len(users))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.MaxFanout)
	for i := range users {
		g.Go(func() error {
			res, err := a.forUser(gctx, users[i], from, to)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	perUser := make(map[uuid.UUID][]entity.BusyInterval, len(users))
	var degraded []SoftFailure
	for i, u := range users {
		perUser[u.UserID] = append(perUser[u.UserID], results[i].intervals...)
		degraded = append(degraded, results[i].failures...)
	}
	return NewBusyIndex(perUser, degraded), nil
}

func (a *Aggregator) forUser(ctx context.Context, u entity.UserCalendars, from, to time.Time) (userResult, error) {
	calendarCreds := make([]entity.Credential, 0, len(u.Credentials))
	for _, cred := range u.Credentials {
		if cred.IsCalendar() {
			calendarCreds = append(calendarCreds, cred)
		}
	}

	var internal []entity.BusyInterval
	external := make([]credentialResult, len(calendarCreds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.MaxFanout)
	g.Go(func() error {
		busy, err := a.internal.BusyIntervals(gctx, u.UserID, from, to)
		if err != nil {
			logger.Error("Aggregator:forUser:InternalRead:Error", "user_id", u.UserID, "error", err)
			return errors.NewAppError(errors.ErrDependency, "Failed to read bookings", err)
		}
		internal = busy
		return nil
	})
	for i := range calendarCreds {
		g.Go(func() error {
			external[i] = a.fetchCredential(gctx, u, calendarCreds[i], from, to)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return userResult{}, err
	}

	var res userResult
	res.intervals = normalize(u.UserID, internal)
	for _, cr := range external {
		if cr.failure != nil {
			res.failures = append(res.failures, *cr.failure)
			continue
		}
		res.intervals = append(res.intervals, normalize(u.UserID, cr.intervals)...)
	}
	return res, nil
}

func (a *Aggregator) fetchCredential(ctx context.Context, u entity.UserCalendars, cred entity.Credential, from, to time.Time) credentialResult {
	selected := u.SelectedFor(cred)
	key := CacheKey(cred.ID, selected, from, to)

	if a.cache != nil {
		data, ok, err := a.cache.Get(ctx, key)
		if err != nil {
			logger.Warn("Aggregator:fetchCredential:CacheGet:Error", "credential_id", cred.ID, "error", err)
		} else if ok {
			var cached []entity.BusyInterval
			if err := json.Unmarshal(data, &cached); err == nil {
				return credentialResult{intervals: cached}
			}
			logger.Warn("Aggregator:fetchCredential:CacheDecode:Error", "credential_id", cred.ID)
		}
	}

	soft := func(reason string, err error) credentialResult {
		logger.Warn("Aggregator:fetchCredential:"+reason, "user_id", u.UserID, "credential_id", cred.ID, "error", err)
		return credentialResult{failure: &SoftFailure{UserID: u.UserID, CredentialID: cred.ID, Reason: err.Error()}}
	}

	cal, err := a.adapters.For(cred)
	if err != nil {
		return soft("Adapter:Unavailable", err)
	}

	callCtx := ctx
	if a.cfg.AdapterTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.cfg.AdapterTimeout)
		defer cancel()
	}

	busy, err := cal.GetAvailability(callCtx, from, to, selected)
	if err != nil {
		return soft("GetAvailability:Error", err)
	}

	tagged := make([]entity.BusyInterval, 0, len(busy))
	for _, b := range busy {
		b = b.UTC()
		b.Source = cred.Source()
		tagged = append(tagged, b)
	}

	if a.cache != nil {
		if data, err := json.Marshal(tagged); err == nil {
			if err := a.cache.Set(ctx, key, data, a.cfg.CacheTTL); err != nil {
				logger.Warn("Aggregator:fetchCredential:CacheSet:Error", "credential_id", cred.ID, "error", err)
			}
		}
	}
	return credentialResult{intervals: tagged}
}

// CacheKey hashes the credential, its sorted selected calendars and the range.
func CacheKey(credentialID int64, selected []entity.SelectedCalendar, from, to time.Time) string {
	ids := make([]string, 0, len(selected))
	for _, sc := range selected {
		ids = append(ids, sc.ExternalID)
	}
	sort.Strings(ids)

	payload, _ := json.Marshal(struct {
		ID                  string   `json:"id"`
		SelectedCalendarIDs []string `json:"selectedCalendarIds"`
		DateFrom            string   `json:"dateFrom"`
		DateTo              string   `json:"dateTo"`
	}{
		ID:                  strconv.FormatInt(credentialID, 10),
		SelectedCalendarIDs: ids,
		DateFrom:            from.UTC().Format(time.RFC3339Nano),
		DateTo:              to.UTC().Format(time.RFC3339Nano),
	})
	sum := blake2b.Sum256(payload)
	return constants.RedisKeyCalendarAvailability + hex.EncodeToString(sum[:])
}

func normalize(userID uuid.UUID, in []entity.BusyInterval) []entity.BusyInterval {
	out := make([]entity.BusyInterval, 0, len(in))
	for _, b := range in {
		b = b.UTC()
		if !b.Valid() {
			logger.Warn("Aggregator:normalize:DroppingEmptyInterval", "user_id", userID, "source", b.Source, "start", b.Start, "end", b.End)
			continue
		}
		out = append(out, b)
	}
	return out
}

// sortIntervals orders by start, then end, then source so results do not depend on fetch order.
func sortIntervals(intervals []entity.BusyInterval) {
	sort.SliceStable(intervals, func(i, j int) bool {
		a, b := intervals[i], intervals[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if !a.End.Equal(b.End) {
			return a.End.Before(b.End)
		}
		return a.Source < b.Source
	})
}

// splitByDay files each interval under every UTC day it touches, both boundary days included.
func splitByDay(intervals []entity.BusyInterval) map[string][]entity.BusyInterval {
	days := make(map[string][]entity.BusyInterval)
	for _, b := range intervals {
		lastDay := truncateDay(b.End)
		for d := truncateDay(b.Start); !d.After(lastDay); d = d.AddDate(0, 0, 1) {
			key := d.Format(constants.DayKeyLayout)
			days[key] = append(days[key], b)
		}
	}
	return days
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
