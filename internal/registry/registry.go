package registry

import (
	"fmt"

	"github.com/jackmcnulty/sports-ticker/internal/providers/espn"
	"github.com/jackmcnulty/sports-ticker/internal/sports/racing_f1"
	"github.com/jackmcnulty/sports-ticker/internal/sports/teamsport"
	"github.com/jackmcnulty/sports-ticker/internal/sports/tennis"
	"github.com/jackmcnulty/sports-ticker/pkg/contracts"
)

// League is one registered source: where to fetch it and how to parse it
type League struct {
	Key      string // "basketball_nba", stamped on events as Sport
	Endpoint string
	Adapter  contracts.LeagueAdapter
}

// Override adjusts a default league, typically from the leagues file
type Override struct {
	Endpoint string
	Disabled bool
}

// Registry is the ordered, read-only set of leagues. Order is the output
// order between leagues.
type Registry struct {
	leagues []League
	index   map[string]int
}

// New creates a registry with all available leagues, applying overrides
// keyed by league key.
func New(overrides map[string]Override) (*Registry, error) {
	r := Empty()

	for _, league := range Defaults() {
		if o, ok := overrides[league.Key]; ok {
			if o.Disabled {
				continue
			}
			if o.Endpoint != "" {
				league.Endpoint = o.Endpoint
			}
		}
		if err := r.Register(league); err != nil {
			return nil, err
		}
	}

	for key := range overrides {
		if !isDefault(key) {
			return nil, fmt.Errorf("override for unknown league: %s", key)
		}
	}

	return r, nil
}

// Empty returns a registry with no leagues, for callers that register
// their own
func Empty() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Defaults returns the built-in league list in display order
func Defaults() []League {
	return []League{
		{Key: "football_nfl", Endpoint: espn.ScoreboardURL("football/nfl"), Adapter: teamsport.New(teamsport.Options{DisplayName: "NFL"})},
		{Key: "basketball_nba", Endpoint: espn.ScoreboardURL("basketball/nba"), Adapter: teamsport.New(teamsport.Options{DisplayName: "NBA"})},
		{Key: "baseball_mlb", Endpoint: espn.ScoreboardURL("baseball/mlb"), Adapter: teamsport.New(teamsport.Options{DisplayName: "MLB"})},
		{Key: "hockey_nhl", Endpoint: espn.ScoreboardURL("hockey/nhl"), Adapter: teamsport.New(teamsport.Options{DisplayName: "NHL"})},
		{Key: "football_ncaaf", Endpoint: espn.ScoreboardURL("football/college-football"), Adapter: teamsport.New(teamsport.Options{DisplayName: "NCAAF"})},
		{Key: "soccer_mls", Endpoint: espn.ScoreboardURL("soccer/usa.1"), Adapter: teamsport.New(teamsport.Options{DisplayName: "MLS", PreferShortDisplayName: true})},
		{Key: "tennis_atp", Endpoint: espn.ScoreboardURL("tennis/atp"), Adapter: tennis.NewATP()},
		{Key: "tennis_wta", Endpoint: espn.ScoreboardURL("tennis/wta"), Adapter: tennis.NewWTA()},
		{Key: "racing_f1", Endpoint: espn.ScoreboardURL("racing/f1"), Adapter: racing_f1.New()},
	}
}

// Register appends a league; keys must be unique
func (r *Registry) Register(league League) error {
	if league.Key == "" || league.Adapter == nil {
		return fmt.Errorf("league %q needs a key and an adapter", league.Key)
	}
	if _, exists := r.index[league.Key]; exists {
		return fmt.Errorf("league already registered: %s", league.Key)
	}
	r.index[league.Key] = len(r.leagues)
	r.leagues = append(r.leagues, league)
	return nil
}

// Get retrieves a league by key
func (r *Registry) Get(key string) (League, error) {
	i, ok := r.index[key]
	if !ok {
		return League{}, fmt.Errorf("league not found: %s", key)
	}
	return r.leagues[i], nil
}

// Leagues returns the leagues in registry order
func (r *Registry) Leagues() []League {
	out := make([]League, len(r.leagues))
	copy(out, r.leagues)
	return out
}

// Keys returns all registered league keys in order
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.leagues))
	for _, l := range r.leagues {
		keys = append(keys, l.Key)
	}
	return keys
}

func isDefault(key string) bool {
	for _, l := range Defaults() {
		if l.Key == key {
			return true
		}
	}
	return false
}
