// Package tennis adapts ESPN tennis scoreboards. Each tournament nests
// several draws; only one singles draw is surfaced per adapter.
package tennis

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackmcnulty/sports-ticker/internal/providers/espn"
	"github.com/jackmcnulty/sports-ticker/internal/sports/window"
	"github.com/jackmcnulty/sports-ticker/pkg/models"
)

const (
	SlugMensSingles   = "mens-singles"
	SlugWomensSingles = "womens-singles"
)

// Module implements contracts.LeagueAdapter for one tennis tour
type Module struct {
	displayName string
	slug        string
}

// New creates a tennis adapter that extracts the draw matching slug
func New(displayName, slug string) *Module {
	return &Module{displayName: displayName, slug: slug}
}

// NewATP creates the men's tour adapter
func NewATP() *Module {
	return New("ATP", SlugMensSingles)
}

// NewWTA creates the women's tour adapter
func NewWTA() *Module {
	return New("WTA", SlugWomensSingles)
}

func (m *Module) DisplayName() string {
	return m.displayName
}

// Parse returns today's singles matches from every tournament on the board
func (m *Module) Parse(raw []byte, now time.Time) ([]models.Event, error) {
	events, err := espn.DecodeScoreboard(raw)
	if err != nil {
		return nil, err
	}

	var out []models.Event
	for _, ev := range events {
		for _, group := range ev.Groupings {
			if group.Grouping.Slug != m.slug {
				continue
			}
			for _, match := range group.Competitions {
				event, include, err := m.parseMatch(ev, match, now)
				if err != nil {
					return nil, fmt.Errorf("match %s: %w", match.ID, err)
				}
				if include {
					out = append(out, event)
				}
			}
		}
	}

	if out == nil {
		out = []models.Event{}
	}
	return out, nil
}

func (m *Module) parseMatch(ev espn.Event, match espn.Competition, now time.Time) (models.Event, bool, error) {
	if match.Status == nil {
		return models.Event{}, false, errors.New("status missing")
	}
	state, err := match.Status.Type.MatchState()
	if err != nil {
		return models.Event{}, false, err
	}

	if !window.Session.Includes(ev.Date.Time, match.Start(), state, now) {
		return models.Event{}, false, nil
	}

	away, home, err := splitPlayers(match.Competitors)
	if err != nil {
		return models.Event{}, false, err
	}

	awaySets, homeSets := setsWon(away.Linescores, home.Linescores)

	return models.Event{
		Kind:     models.KindHeadToHead,
		League:   m.displayName,
		Away:     away.ShortName(),
		Home:     home.ShortName(),
		AwayLogo: away.LogoURL(),
		HomeLogo: home.LogoURL(),
		Score:    FormatSets(away.Linescores, home.Linescores),
		Status:   match.Status.Type.Label(),
		Winner:   models.DecideWinner(state, float64(awaySets), float64(homeSets)),
		Ongoing:  state.Ongoing(),
	}, true, nil
}

// splitPlayers orders the two players; without homeAway markers the
// lower "order" is away.
func splitPlayers(competitors []espn.Competitor) (away, home espn.Competitor, err error) {
	if len(competitors) < 2 {
		return away, home, errors.New("insufficient competitors")
	}

	var foundAway, foundHome bool
	for _, c := range competitors {
		switch c.HomeAway {
		case "away":
			away, foundAway = c, true
		case "home":
			home, foundHome = c, true
		}
	}
	if foundAway && foundHome {
		return away, home, nil
	}

	away, home = competitors[0], competitors[1]
	if away.Order != nil && home.Order != nil && *away.Order > *home.Order {
		away, home = home, away
	}
	return away, home, nil
}

// FormatSets renders "6-4 3-6 7-5", or "-" before the first set
func FormatSets(away, home []espn.Linescore) string {
	n := min(len(away), len(home))
	if n == 0 {
		return models.NoScore
	}

	sets := make([]string, 0, n)
	for i := 0; i < n; i++ {
		sets = append(sets, fmt.Sprintf("%d-%d", int(away[i].Value), int(home[i].Value)))
	}
	return strings.Join(sets, " ")
}

func setsWon(away, home []espn.Linescore) (int, int) {
	var a, h int
	for i := 0; i < min(len(away), len(home)); i++ {
		switch {
		case away[i].Value > home[i].Value:
			a++
		case home[i].Value > away[i].Value:
			h++
		}
	}
	return a, h
}
