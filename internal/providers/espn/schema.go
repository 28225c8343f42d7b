package espn

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/jackmcnulty/sports-ticker/internal/sports/window"
	"github.com/jackmcnulty/sports-ticker/pkg/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrMissingEvents is returned when a payload has no "events" key at all.
// An empty list is a normal off-day and is not an error.
var ErrMissingEvents = errors.New("scoreboard has no events field")

// Scoreboard is the top-level ESPN scoreboard response
type Scoreboard struct {
	Events *[]Event `json:"events"`
}

// Event is one scoreboard entry: a game, a tournament or a race weekend
type Event struct {
	ID           string        `json:"id"`
	Date         Timestamp     `json:"date"`
	Name         string        `json:"name"`
	ShortName    string        `json:"shortName"`
	Status       *Status       `json:"status"`
	Competitions []Competition `json:"competitions"`
	Groupings    []Grouping    `json:"groupings"` // tennis draws
}

// Grouping is a tennis draw ("mens-singles", "womens-doubles", ...)
type Grouping struct {
	Grouping     GroupingInfo  `json:"grouping"`
	Competitions []Competition `json:"competitions"`
}

type GroupingInfo struct {
	Slug        string `json:"slug"`
	DisplayName string `json:"displayName"`
}

// Competition is a game, a tennis match or a racing session
type Competition struct {
	ID          string          `json:"id"`
	Date        Timestamp       `json:"date"`
	StartDate   Timestamp       `json:"startDate"`
	Type        CompetitionType `json:"type"`
	Status      *Status         `json:"status"`
	Competitors []Competitor    `json:"competitors"`
}

// Start returns the competition's own start time, preferring startDate
func (c Competition) Start() time.Time {
	if !c.StartDate.IsZero() {
		return c.StartDate.Time
	}
	return c.Date.Time
}

type CompetitionType struct {
	Abbreviation string `json:"abbreviation"` // "FP1", "Qual", "Race"
	Text         string `json:"text"`
}

// Competitor is a team, a player or a driver
type Competitor struct {
	ID         string      `json:"id"`
	HomeAway   string      `json:"homeAway"`
	Order      *int        `json:"order"`
	Winner     bool        `json:"winner"`
	Score      FlexValue   `json:"score"`
	Team       *Team       `json:"team"`
	Athlete    *Athlete    `json:"athlete"`
	Linescores []Linescore `json:"linescores"`
	Vehicle    *Vehicle    `json:"vehicle"`
}

type Team struct {
	ID               string `json:"id"`
	Abbreviation     string `json:"abbreviation"`
	DisplayName      string `json:"displayName"`
	ShortDisplayName string `json:"shortDisplayName"`
	Logo             string `json:"logo"`
	Logos            []Logo `json:"logos"`
}

type Logo struct {
	Href string `json:"href"`
}

type Athlete struct {
	DisplayName string `json:"displayName"`
	ShortName   string `json:"shortName"`
	Flag        *Flag  `json:"flag"`
}

type Flag struct {
	Href string `json:"href"`
	Alt  string `json:"alt"`
}

type Linescore struct {
	Value float64 `json:"value"`
}

type Vehicle struct {
	Number FlexValue `json:"number"`
}

type Status struct {
	DisplayClock string     `json:"displayClock"`
	Period       int        `json:"period"`
	Type         StatusType `json:"type"`
}

type StatusType struct {
	State       string `json:"state"`
	Completed   bool   `json:"completed"`
	Description string `json:"description"`
	Detail      string `json:"detail"`
	ShortDetail string `json:"shortDetail"`
}

// MatchState converts ESPN's state string; a missing or unknown state is
// a schema error.
func (s StatusType) MatchState() (models.MatchState, error) {
	switch models.MatchState(s.State) {
	case models.StatePre, models.StateIn, models.StatePost:
		return models.MatchState(s.State), nil
	case "":
		return "", errors.New("status.type.state missing")
	default:
		return "", fmt.Errorf("unknown status.type.state %q", s.State)
	}
}

// Label returns the short human-readable status ("Final", "Q3 12:34")
func (s StatusType) Label() string {
	switch {
	case s.ShortDetail != "":
		return s.ShortDetail
	case s.Detail != "":
		return s.Detail
	default:
		return s.Description
	}
}

// DecodeScoreboard decodes a raw payload and returns its events
func DecodeScoreboard(raw []byte) ([]Event, error) {
	var sb Scoreboard
	if err := json.Unmarshal(raw, &sb); err != nil {
		return nil, fmt.Errorf("decoding scoreboard: %w", err)
	}
	if sb.Events == nil {
		return nil, ErrMissingEvents
	}
	return *sb.Events, nil
}

// ShortName returns the competitor's short display name
func (c Competitor) ShortName() string {
	if c.Team != nil {
		if c.Team.Abbreviation != "" {
			return c.Team.Abbreviation
		}
		if c.Team.ShortDisplayName != "" {
			return c.Team.ShortDisplayName
		}
		return c.Team.DisplayName
	}
	if c.Athlete != nil {
		if c.Athlete.ShortName != "" {
			return c.Athlete.ShortName
		}
		return c.Athlete.DisplayName
	}
	return ""
}

// LogoURL resolves a competitor's image: direct logo, then the first logo
// variant, then the athlete flag, else "".
func (c Competitor) LogoURL() string {
	if c.Team != nil {
		if c.Team.Logo != "" {
			return c.Team.Logo
		}
		if len(c.Team.Logos) > 0 {
			return c.Team.Logos[0].Href
		}
	}
	if c.Athlete != nil && c.Athlete.Flag != nil {
		return c.Athlete.Flag.Href
	}
	return ""
}

// Timestamp accepts ESPN's date strings, which often omit seconds
// ("2025-11-15T01:00Z").
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
}

// dateOnlyLayout is a calendar day on the Eastern schedule, not UTC midnight
const dateOnlyLayout = "2006-01-02"

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	if parsed, err := time.ParseInLocation(dateOnlyLayout, s, window.Eastern); err == nil {
		t.Time = parsed
		return nil
	}
	return fmt.Errorf("unrecognized date %q", s)
}

// FlexValue holds a scalar ESPN sends as a string, a number or an object
// with value/displayValue, depending on the feed.
type FlexValue struct {
	Display string
	Value   float64
	Present bool
}

func (v FlexValue) MarshalJSON() ([]byte, error) {
	if !v.Present {
		return []byte("null"), nil
	}
	return json.Marshal(v.Display)
}

func (v *FlexValue) UnmarshalJSON(data []byte) error {
	*v = FlexValue{}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		v.Display = s
		v.Value, _ = strconv.ParseFloat(s, 64)
		v.Present = true
	case '{':
		var obj struct {
			Value        *float64 `json:"value"`
			DisplayValue string   `json:"displayValue"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		if obj.Value == nil && obj.DisplayValue == "" {
			return nil
		}
		v.Display = obj.DisplayValue
		if obj.Value != nil {
			v.Value = *obj.Value
			if v.Display == "" {
				v.Display = strconv.FormatFloat(v.Value, 'f', -1, 64)
			}
		} else {
			v.Value, _ = strconv.ParseFloat(v.Display, 64)
		}
		v.Present = true
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		v.Value = f
		v.Display = strconv.FormatFloat(f, 'f', -1, 64)
		v.Present = true
	}
	return nil
}

// IntOr returns the value truncated to an int, or fallback when absent
func (v FlexValue) IntOr(fallback int) int {
	if !v.Present {
		return fallback
	}
	if v.Display != "" {
		if i, err := strconv.Atoi(v.Display); err == nil {
			return i
		}
		if _, err := strconv.ParseFloat(v.Display, 64); err != nil {
			return fallback
		}
	}
	return int(v.Value)
}
