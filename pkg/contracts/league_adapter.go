package contracts

import (
	"time"

	"github.com/jackmcnulty/sports-ticker/pkg/models"
)

// LeagueAdapter is the pluggable interface for adding new leagues.
// An adapter is pure: it maps one raw scoreboard payload to the events
// relevant at "now", and knows nothing about its registry key.
type LeagueAdapter interface {
	// Identification
	DisplayName() string // "NBA", "ATP"

	// Parse maps the upstream payload to canonical events, already
	// filtered by the league's time window. Any shape problem is
	// returned as an error; the caller contains it to this league.
	Parse(raw []byte, now time.Time) ([]models.Event, error)
}
