// Package window decides whether an event is relevant "now".
//
// All date arithmetic happens in US Eastern so that a game's calendar day
// matches what a viewer in the reference zone sees on the schedule.
package window

import (
	"time"
	_ "time/tzdata"

	"github.com/jackmcnulty/sports-ticker/pkg/models"
)

// Eastern is the reference zone for every league
var Eastern = mustLoad("America/New_York")

// DefaultGraceHours keeps last night's unfinished games visible until 04:00
const DefaultGraceHours = 4

// Policy is a league's temporal window
type Policy struct {
	// GraceHours is the reference-zone hour before which yesterday's
	// unfinished events are still included. Zero disables the grace window.
	GraceHours int

	// UseSessionDate filters on the competition's own start time rather
	// than the parent event's date (tennis matches, racing sessions).
	UseSessionDate bool
}

// TeamSport is the policy shared by the head-to-head team leagues
var TeamSport = Policy{GraceHours: DefaultGraceHours}

// Session is the policy for leagues whose events hold many short sessions
var Session = Policy{UseSessionDate: true}

// Includes reports whether an event passes the window at now.
// eventStart is the upstream event date, sessionStart the competition's
// own start; which one counts is decided by the policy.
func (p Policy) Includes(eventStart, sessionStart time.Time, state models.MatchState, now time.Time) bool {
	start := eventStart
	if p.UseSessionDate {
		start = sessionStart
	}
	if start.IsZero() {
		return false
	}

	nowLocal := now.In(Eastern)
	today := civilDate(nowLocal)
	day := civilDate(start.In(Eastern))

	if day == today {
		return true
	}

	if p.GraceHours <= 0 || state.Final() {
		return false
	}

	yesterday := civilDate(nowLocal.AddDate(0, 0, -1))
	return day == yesterday && nowLocal.Hour() < p.GraceHours
}

// Today returns the reference-zone calendar date for now, "2006-01-02"
func Today(now time.Time) string {
	return now.In(Eastern).Format("2006-01-02")
}

type date struct {
	year  int
	month time.Month
	day   int
}

func civilDate(t time.Time) date {
	y, m, d := t.Date()
	return date{y, m, d}
}

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}
