// Package teamsport adapts ESPN team-sport scoreboards (NFL, NBA, MLB,
// NHL, college football, soccer) to head-to-head events.
package teamsport

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackmcnulty/sports-ticker/internal/providers/espn"
	"github.com/jackmcnulty/sports-ticker/internal/sports/window"
	"github.com/jackmcnulty/sports-ticker/pkg/models"
)

// Options configures one league's quirks
type Options struct {
	DisplayName string // "NFL"

	// PreferShortDisplayName shows "Galaxy" instead of "LA"; soccer
	// abbreviations are ambiguous across leagues.
	PreferShortDisplayName bool

	// Policy overrides the default team-sport window
	Policy *window.Policy
}

// Module implements contracts.LeagueAdapter for a team sport
type Module struct {
	opts   Options
	policy window.Policy
}

// New creates a team-sport adapter
func New(opts Options) *Module {
	policy := window.TeamSport
	if opts.Policy != nil {
		policy = *opts.Policy
	}
	return &Module{opts: opts, policy: policy}
}

func (m *Module) DisplayName() string {
	return m.opts.DisplayName
}

// Parse maps a scoreboard to the head-to-head events inside the window
func (m *Module) Parse(raw []byte, now time.Time) ([]models.Event, error) {
	events, err := espn.DecodeScoreboard(raw)
	if err != nil {
		return nil, err
	}

	out := make([]models.Event, 0, len(events))
	for _, ev := range events {
		event, include, err := m.parseEvent(ev, now)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", ev.ID, err)
		}
		if include {
			out = append(out, event)
		}
	}

	return out, nil
}

func (m *Module) parseEvent(ev espn.Event, now time.Time) (models.Event, bool, error) {
	if len(ev.Competitions) == 0 {
		return models.Event{}, false, errors.New("no competitions found in event")
	}
	comp := ev.Competitions[0]

	status := ev.Status
	if status == nil {
		status = comp.Status
	}
	if status == nil {
		return models.Event{}, false, errors.New("status missing")
	}

	state, err := status.Type.MatchState()
	if err != nil {
		return models.Event{}, false, err
	}

	if !m.policy.Includes(ev.Date.Time, comp.Start(), state, now) {
		return models.Event{}, false, nil
	}

	away, home, err := splitSides(comp.Competitors)
	if err != nil {
		return models.Event{}, false, err
	}

	event := models.Event{
		Kind:     models.KindHeadToHead,
		League:   m.opts.DisplayName,
		Away:     m.sideName(away),
		Home:     m.sideName(home),
		AwayLogo: away.LogoURL(),
		HomeLogo: home.LogoURL(),
		Score:    formatScore(away.Score, home.Score),
		Status:   status.Type.Label(),
		Winner:   models.WinnerNone,
		Ongoing:  state.Ongoing(),
	}

	if away.Score.Present && home.Score.Present {
		event.Winner = models.DecideWinner(state, away.Score.Value, home.Score.Value)
	}

	return event, true, nil
}

func (m *Module) sideName(c espn.Competitor) string {
	if m.opts.PreferShortDisplayName && c.Team != nil && c.Team.ShortDisplayName != "" {
		return c.Team.ShortDisplayName
	}
	return c.ShortName()
}

// splitSides picks away and home by homeAway, falling back to ESPN's
// home-first ordering when the marker is absent.
func splitSides(competitors []espn.Competitor) (away, home espn.Competitor, err error) {
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

	if !foundAway || !foundHome {
		home, away = competitors[0], competitors[1]
	}
	return away, home, nil
}

func formatScore(away, home espn.FlexValue) string {
	if !away.Present || !home.Present {
		return models.NoScore
	}
	return fmt.Sprintf("%s : %s", away.Display, home.Display)
}
