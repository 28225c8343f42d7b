package racing_f1

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackmcnulty/sports-ticker/internal/providers/espn"
	"github.com/jackmcnulty/sports-ticker/internal/sports/window"
	"github.com/jackmcnulty/sports-ticker/pkg/models"
)

// missingRank sorts entrants without a car number or position last
const missingRank = 99

// F1Module implements contracts.LeagueAdapter for Formula 1. Unlike the
// head-to-head leagues, every session of a race weekend is a candidate
// event and the output is an ordered field of drivers.
type F1Module struct{}

// New creates a new F1 module
func New() *F1Module {
	return &F1Module{}
}

func (m *F1Module) DisplayName() string {
	return "F1"
}

// Parse returns today's sessions across all race weekends on the board
func (m *F1Module) Parse(raw []byte, now time.Time) ([]models.Event, error) {
	events, err := espn.DecodeScoreboard(raw)
	if err != nil {
		return nil, err
	}

	out := []models.Event{}
	for _, ev := range events {
		for _, session := range ev.Competitions {
			event, include, err := m.parseSession(ev, session, now)
			if err != nil {
				return nil, fmt.Errorf("session %s: %w", session.ID, err)
			}
			if include {
				out = append(out, event)
			}
		}
	}

	return out, nil
}

func (m *F1Module) parseSession(ev espn.Event, session espn.Competition, now time.Time) (models.Event, bool, error) {
	status := session.Status
	if status == nil {
		status = ev.Status
	}
	if status == nil {
		return models.Event{}, false, errors.New("status missing")
	}

	state, err := status.Type.MatchState()
	if err != nil {
		return models.Event{}, false, err
	}

	if !window.Session.Includes(ev.Date.Time, session.Start(), state, now) {
		return models.Event{}, false, nil
	}

	return models.Event{
		Kind:    models.KindField,
		League:  m.DisplayName(),
		Session: sessionLabel(ev, session),
		Status:  status.Type.Label(),
		Ongoing: state.Ongoing(),
		Field:   buildField(session.Competitors, state),
	}, true, nil
}

// sessionLabel renders "FP1 - Monaco GP"
func sessionLabel(ev espn.Event, session espn.Competition) string {
	kind := session.Type.Abbreviation
	if kind == "" {
		kind = ev.ShortName
	}
	return fmt.Sprintf("%s - %s", kind, ev.ShortName)
}

type entrant struct {
	number int
	order  int
	name   string
	flag   string
}

// buildField orders drivers by car number before the session starts and
// by running/classified position once it has started.
func buildField(competitors []espn.Competitor, state models.MatchState) []models.FieldEntry {
	entrants := make([]entrant, 0, len(competitors))
	for _, c := range competitors {
		e := entrant{
			number: missingRank,
			order:  missingRank,
			name:   c.ShortName(),
		}
		if c.Vehicle != nil {
			e.number = c.Vehicle.Number.IntOr(missingRank)
		}
		if c.Order != nil {
			e.order = *c.Order
		}
		if c.Athlete != nil && c.Athlete.Flag != nil {
			e.flag = c.Athlete.Flag.Href
		}
		entrants = append(entrants, e)
	}

	byNumber := state == models.StatePre
	sort.SliceStable(entrants, func(i, j int) bool {
		if byNumber {
			return entrants[i].number < entrants[j].number
		}
		return entrants[i].order < entrants[j].order
	})

	field := make([]models.FieldEntry, 0, len(entrants))
	for i, e := range entrants {
		field = append(field, models.FieldEntry{
			Position: i + 1,
			Number:   e.number,
			Name:     e.name,
			Flag:     e.flag,
		})
	}
	return field
}
