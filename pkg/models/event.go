package models

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MatchState is the three-valued upstream match state
type MatchState string

const (
	StatePre  MatchState = "pre"
	StateIn   MatchState = "in"
	StatePost MatchState = "post"
)

// Ongoing reports whether the match is neither pre-start nor finished
func (s MatchState) Ongoing() bool {
	return s == StateIn
}

// Final reports whether the match has reached a terminal state
func (s MatchState) Final() bool {
	return s == StatePost
}

// Winner identifies the winning side of a head-to-head event
type Winner string

const (
	WinnerNone Winner = "none"
	WinnerAway Winner = "away"
	WinnerHome Winner = "home"
)

// EventKind discriminates the two event shapes
type EventKind int

const (
	KindHeadToHead EventKind = iota // away vs home
	KindField                       // multi-entrant session
)

// NoScore is rendered when no score exists yet
const NoScore = "-"

// Event is the canonical record every league adapter produces.
// Head-to-head events fill Away/Home/Score/Winner; field events fill
// Session/Field. Sport is stamped by the aggregator, never by an adapter.
type Event struct {
	Kind    EventKind
	Sport   string // registry key, "basketball_nba"
	League  string // display name, "NBA"
	Status  string // "Final", "Q3 12:34"
	Ongoing bool

	// Head-to-head
	Away     string
	Home     string
	AwayLogo string
	HomeLogo string
	Score    string
	Winner   Winner

	// Field
	Session string
	Field   []FieldEntry
}

// FieldEntry is one entrant of a racing session
type FieldEntry struct {
	Position int    `json:"position"`
	Number   int    `json:"number"`
	Name     string `json:"name"`
	Flag     string `json:"flag"`
}

// IsField reports whether the event is the field/session variant
func (e Event) IsField() bool {
	return e.Kind == KindField
}

type headToHeadJSON struct {
	Sport    string `json:"sport"`
	League   string `json:"league"`
	Away     string `json:"away"`
	Home     string `json:"home"`
	AwayLogo string `json:"away_logo"`
	HomeLogo string `json:"home_logo"`
	Score    string `json:"score"`
	Status   string `json:"status"`
	Winner   Winner `json:"winner"`
	Ongoing  bool   `json:"ongoing"`
}

type fieldJSON struct {
	Sport   string       `json:"sport"`
	League  string       `json:"league"`
	Session string       `json:"session"`
	Status  string       `json:"status"`
	Ongoing bool         `json:"ongoing"`
	Field   []FieldEntry `json:"field"`
}

// MarshalJSON emits only the fields of the event's variant so consumers
// can discriminate on the presence of "field" vs "away"/"home".
func (e Event) MarshalJSON() ([]byte, error) {
	if e.IsField() {
		field := e.Field
		if field == nil {
			field = []FieldEntry{}
		}
		return json.Marshal(fieldJSON{
			Sport:   e.Sport,
			League:  e.League,
			Session: e.Session,
			Status:  e.Status,
			Ongoing: e.Ongoing,
			Field:   field,
		})
	}

	winner := e.Winner
	if winner == "" {
		winner = WinnerNone
	}
	score := e.Score
	if score == "" {
		score = NoScore
	}
	return json.Marshal(headToHeadJSON{
		Sport:    e.Sport,
		League:   e.League,
		Away:     e.Away,
		Home:     e.Home,
		AwayLogo: e.AwayLogo,
		HomeLogo: e.HomeLogo,
		Score:    score,
		Status:   e.Status,
		Winner:   winner,
		Ongoing:  e.Ongoing,
	})
}

// UnmarshalJSON restores either variant; a "field" key marks a field event
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw struct {
		headToHeadJSON
		Session string        `json:"session"`
		Field   *[]FieldEntry `json:"field"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*e = Event{
		Sport:   raw.Sport,
		League:  raw.League,
		Status:  raw.Status,
		Ongoing: raw.Ongoing,
	}
	if raw.Field != nil {
		e.Kind = KindField
		e.Session = raw.Session
		e.Field = *raw.Field
		return nil
	}

	e.Kind = KindHeadToHead
	e.Away = raw.Away
	e.Home = raw.Home
	e.AwayLogo = raw.AwayLogo
	e.HomeLogo = raw.HomeLogo
	e.Score = raw.Score
	e.Winner = raw.Winner
	return nil
}

// DecideWinner returns the side with strictly more points, only once the
// match is final. Ties and non-terminal states yield WinnerNone.
func DecideWinner(state MatchState, away, home float64) Winner {
	if !state.Final() {
		return WinnerNone
	}
	switch {
	case away > home:
		return WinnerAway
	case home > away:
		return WinnerHome
	default:
		return WinnerNone
	}
}
