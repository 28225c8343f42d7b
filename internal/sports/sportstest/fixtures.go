// Package sportstest builds synthetic ESPN scoreboard payloads for adapter tests
package sportstest

import (
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/jackmcnulty/sports-ticker/internal/providers/espn"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Payload marshals events into a scoreboard body
func Payload(t *testing.T, events ...espn.Event) []byte {
	t.Helper()

	if events == nil {
		events = []espn.Event{}
	}
	data, err := json.Marshal(espn.Scoreboard{Events: &events})
	if err != nil {
		t.Fatalf("marshaling fixture: %v", err)
	}
	return data
}

// Score builds a present FlexValue
func Score(display string) espn.FlexValue {
	var value float64
	json.Unmarshal([]byte(display), &value)
	return espn.FlexValue{Display: display, Value: value, Present: true}
}

// Status builds a status block
func Status(state, detail string) *espn.Status {
	return &espn.Status{Type: espn.StatusType{State: state, ShortDetail: detail}}
}

// TeamGame creates a head-to-head team event with sensible defaults:
// BOS at LAL, no scores, no logos.
func TeamGame(start time.Time, state string, overrides ...func(*espn.Event)) espn.Event {
	event := espn.Event{
		ID:        "401000001",
		Date:      espn.Timestamp{Time: start},
		Name:      "Boston Celtics at Los Angeles Lakers",
		ShortName: "BOS @ LAL",
		Status:    Status(state, "Scheduled"),
		Competitions: []espn.Competition{{
			ID:   "401000001",
			Date: espn.Timestamp{Time: start},
			Competitors: []espn.Competitor{
				{HomeAway: "home", Team: &espn.Team{Abbreviation: "LAL", ShortDisplayName: "Lakers"}},
				{HomeAway: "away", Team: &espn.Team{Abbreviation: "BOS", ShortDisplayName: "Celtics"}},
			},
		}},
	}

	for _, override := range overrides {
		override(&event)
	}

	return event
}

// WithScores sets away and home point totals
func WithScores(away, home string) func(*espn.Event) {
	return func(e *espn.Event) {
		for i, c := range e.Competitions[0].Competitors {
			switch c.HomeAway {
			case "away":
				e.Competitions[0].Competitors[i].Score = Score(away)
			case "home":
				e.Competitions[0].Competitors[i].Score = Score(home)
			}
		}
	}
}

// WithDetail sets the status label
func WithDetail(detail string) func(*espn.Event) {
	return func(e *espn.Event) {
		e.Status.Type.ShortDetail = detail
	}
}

// TennisMatch creates a singles match with per-set values
func TennisMatch(start time.Time, state string, away, home string, awaySets, homeSets []float64) espn.Competition {
	return espn.Competition{
		ID:        away + "-" + home,
		Date:      espn.Timestamp{Time: start},
		StartDate: espn.Timestamp{Time: start},
		Status:    Status(state, "Set 2"),
		Competitors: []espn.Competitor{
			{HomeAway: "home", Order: intPtr(2), Athlete: &espn.Athlete{ShortName: home, Flag: &espn.Flag{Href: home + ".png"}}, Linescores: linescores(homeSets)},
			{HomeAway: "away", Order: intPtr(1), Athlete: &espn.Athlete{ShortName: away, Flag: &espn.Flag{Href: away + ".png"}}, Linescores: linescores(awaySets)},
		},
	}
}

// Tournament wraps draws into a tennis event
func Tournament(start time.Time, groupings ...espn.Grouping) espn.Event {
	return espn.Event{
		ID:        "tournament",
		Date:      espn.Timestamp{Time: start},
		Name:      "Roland Garros",
		ShortName: "Roland Garros",
		Groupings: groupings,
	}
}

// Draw creates a tennis grouping
func Draw(slug string, matches ...espn.Competition) espn.Grouping {
	return espn.Grouping{
		Grouping:     espn.GroupingInfo{Slug: slug, DisplayName: slug},
		Competitions: matches,
	}
}

// Driver is a racing competitor fixture; zero number/order means absent
type Driver struct {
	Name   string
	Number string
	Order  int
	Flag   string
}

// Session creates a racing session
func Session(abbreviation string, start time.Time, state string, drivers ...Driver) espn.Competition {
	competitors := make([]espn.Competitor, 0, len(drivers))
	for _, d := range drivers {
		c := espn.Competitor{
			Athlete: &espn.Athlete{DisplayName: d.Name},
			Vehicle: &espn.Vehicle{},
		}
		if d.Flag != "" {
			c.Athlete.Flag = &espn.Flag{Href: d.Flag}
		}
		if d.Number != "" {
			c.Vehicle.Number = espn.FlexValue{Display: d.Number, Present: true}
		}
		if d.Order != 0 {
			c.Order = intPtr(d.Order)
		}
		competitors = append(competitors, c)
	}

	return espn.Competition{
		ID:          abbreviation,
		Date:        espn.Timestamp{Time: start},
		Type:        espn.CompetitionType{Abbreviation: abbreviation},
		Status:      Status(state, state),
		Competitors: competitors,
	}
}

// RaceWeekend wraps sessions into a racing event
func RaceWeekend(shortName string, start time.Time, sessions ...espn.Competition) espn.Event {
	return espn.Event{
		ID:           "race",
		Date:         espn.Timestamp{Time: start},
		Name:         shortName,
		ShortName:    shortName,
		Competitions: sessions,
	}
}

func linescores(values []float64) []espn.Linescore {
	out := make([]espn.Linescore, 0, len(values))
	for _, v := range values {
		out = append(out, espn.Linescore{Value: v})
	}
	return out
}

func intPtr(i int) *int {
	return &i
}
