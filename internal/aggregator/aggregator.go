package aggregator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jackmcnulty/sports-ticker/internal/metrics"
	"github.com/jackmcnulty/sports-ticker/internal/registry"
	"github.com/jackmcnulty/sports-ticker/pkg/models"
)

// Mode selects which view an aggregation call produces
type Mode string

const (
	ModeSports  Mode = "sports"
	ModeFantasy Mode = "fantasy"
)

// ParseMode validates a request's mode; empty means sports
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeSports:
		return ModeSports, nil
	case ModeFantasy:
		return ModeFantasy, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// FantasyNotConfigured is the alert when fantasy mode has no source
const FantasyNotConfigured = "Fantasy league is not configured"

// FantasyUnavailable is the alert when the fantasy source fails
const FantasyUnavailable = "Could not load fantasy matchups"

// Fetcher retrieves one league's raw scoreboard
type Fetcher interface {
	FetchScoreboard(ctx context.Context, league, url string) ([]byte, error)
}

// FantasySource returns already-normalized fantasy matchups
type FantasySource interface {
	CurrentWeekMatchups(ctx context.Context) ([]models.Matchup, error)
}

// Snapshot is the result of one aggregation call
type Snapshot struct {
	ID          string           `json:"id"`
	Mode        Mode             `json:"mode"`
	GeneratedAt time.Time        `json:"generated_at"`
	Events      []models.Event   `json:"events,omitempty"`
	Matchups    []models.Matchup `json:"matchups,omitempty"`
	Alert       string           `json:"alert,omitempty"`    // first failure only
	Failures    []Failure        `json:"failures,omitempty"` // every failed league, registry order
}

// Aggregator fans out fetch+parse across the registry and merges results
type Aggregator struct {
	registry *registry.Registry
	fetcher  Fetcher
	fantasy  FantasySource
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures an Aggregator
type Option func(*Aggregator)

// WithFantasy enables fantasy mode
func WithFantasy(source FantasySource) Option {
	return func(a *Aggregator) { a.fantasy = source }
}

// WithMetrics records per-league outcomes
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Aggregator) { a.metrics = m }
}

// WithClock overrides the wall clock used for time windows
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// New creates an aggregator over reg
func New(reg *registry.Registry, fetcher Fetcher, logger *zap.Logger, opts ...Option) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Aggregator{
		registry: reg,
		fetcher:  fetcher,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate produces one snapshot for mode. It never fails as a whole:
// league failures become an alert and zero events for that league.
func (a *Aggregator) Aggregate(ctx context.Context, mode Mode) Snapshot {
	start := time.Now()
	defer func() {
		a.metrics.ObserveAggregation(string(mode), time.Since(start))
	}()

	snap := Snapshot{
		ID:          uuid.NewString(),
		Mode:        mode,
		GeneratedAt: a.now().UTC(),
	}

	if mode == ModeFantasy {
		a.aggregateFantasy(ctx, &snap)
		return snap
	}

	a.aggregateSports(ctx, &snap)
	return snap
}

type leagueResult struct {
	events  []models.Event
	failure *Failure
}

func (a *Aggregator) aggregateSports(ctx context.Context, snap *Snapshot) {
	leagues := a.registry.Leagues()
	results := make([]leagueResult, len(leagues))
	now := a.now()

	var wg sync.WaitGroup
	for i, league := range leagues {
		wg.Add(1)
		go func(i int, league registry.League) {
			defer wg.Done()
			results[i] = a.collect(ctx, league, now)
		}(i, league)
	}
	wg.Wait()

	snap.Events = []models.Event{}
	for _, r := range results {
		if r.failure != nil {
			snap.Failures = append(snap.Failures, *r.failure)
			if snap.Alert == "" {
				snap.Alert = r.failure.Message()
			}
			continue
		}
		snap.Events = append(snap.Events, r.events...)
	}

	a.logger.Info("aggregation complete",
		zap.String("snapshot_id", snap.ID),
		zap.Int("leagues", len(leagues)),
		zap.Int("events", len(snap.Events)),
		zap.Int("failures", len(snap.Failures)),
	)
}

// collect fetches and parses one league. Nothing escapes: errors and
// adapter panics become a Failure.
func (a *Aggregator) collect(ctx context.Context, league registry.League, now time.Time) leagueResult {
	name := league.Adapter.DisplayName()

	fetchStart := time.Now()
	raw, err := a.fetcher.FetchScoreboard(ctx, name, league.Endpoint)
	a.metrics.ObserveFetch(league.Key, time.Since(fetchStart))
	if err != nil {
		a.metrics.RecordLeague(league.Key, metrics.ResultFetchError, 0)
		return leagueResult{failure: &Failure{Sport: league.Key, League: name, Err: err}}
	}

	events, err := parseSafely(league, raw, now)
	if err != nil {
		a.logger.Warn("league parse failed",
			zap.String("sport", league.Key),
			zap.Error(err),
		)
		a.metrics.RecordLeague(league.Key, metrics.ResultParseError, 0)
		return leagueResult{failure: &Failure{Sport: league.Key, League: name, Err: err}}
	}

	for i := range events {
		events[i].Sport = league.Key
	}

	a.logger.Debug("league collected",
		zap.String("sport", league.Key),
		zap.Int("events", len(events)),
	)
	a.metrics.RecordLeague(league.Key, metrics.ResultOK, len(events))
	return leagueResult{events: events}
}

func parseSafely(league registry.League, raw []byte, now time.Time) (events []models.Event, err error) {
	name := league.Adapter.DisplayName()

	defer func() {
		if r := recover(); r != nil {
			events = nil
			err = &AdapterError{Sport: league.Key, League: name, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	events, err = league.Adapter.Parse(raw, now)
	if err != nil {
		var adapterErr *AdapterError
		if errors.As(err, &adapterErr) {
			return nil, err
		}
		return nil, &AdapterError{Sport: league.Key, League: name, Err: err}
	}
	return events, nil
}

func (a *Aggregator) aggregateFantasy(ctx context.Context, snap *Snapshot) {
	snap.Matchups = []models.Matchup{}

	if a.fantasy == nil {
		snap.Alert = FantasyNotConfigured
		return
	}

	matchups, err := a.fantasy.CurrentWeekMatchups(ctx)
	if err != nil {
		a.logger.Warn("fantasy fetch failed", zap.Error(err))
		snap.Alert = FantasyUnavailable
		snap.Failures = append(snap.Failures, Failure{Sport: "fantasy", League: "Fantasy", Err: err})
		return
	}

	snap.Matchups = matchups
}
