package fantasy

import (
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// leagueResponse is the subset of the fantasy league document we read
type leagueResponse struct {
	ScoringPeriodID int            `json:"scoringPeriodId"`
	Status          leagueStatus   `json:"status"`
	Teams           []team         `json:"teams"`
	Schedule        []scheduleItem `json:"schedule"`
}

type leagueStatus struct {
	CurrentMatchupPeriod int `json:"currentMatchupPeriod"`
	LatestScoringPeriod  int `json:"latestScoringPeriod"`
}

type team struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Nickname string `json:"nickname"`
	Abbrev   string `json:"abbrev"`
}

// DisplayName prefers the combined name; older seasons split it in two
func (t team) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	if name := strings.TrimSpace(t.Location + " " + t.Nickname); name != "" {
		return name
	}
	if t.Abbrev != "" {
		return t.Abbrev
	}
	return "Team " + strconv.Itoa(t.ID)
}

type scheduleItem struct {
	ID              int          `json:"id"`
	MatchupPeriodID int          `json:"matchupPeriodId"`
	Home            *matchupSide `json:"home"`
	Away            *matchupSide `json:"away"`
	Winner          string       `json:"winner"`
}

type matchupSide struct {
	TeamID          int      `json:"teamId"`
	TotalPoints     float64  `json:"totalPoints"`
	TotalPointsLive *float64 `json:"totalPointsLive"`
	Roster          *roster  `json:"rosterForCurrentScoringPeriod"`
}

// Points is the live total while a week is in progress
func (s *matchupSide) Points() float64 {
	if s.TotalPointsLive != nil {
		return *s.TotalPointsLive
	}
	return s.TotalPoints
}

type roster struct {
	Entries []rosterEntry `json:"entries"`
}

type rosterEntry struct {
	LineupSlotID    int            `json:"lineupSlotId"`
	PlayerPoolEntry playerPoolItem `json:"playerPoolEntry"`
}

type playerPoolItem struct {
	AppliedStatTotal float64 `json:"appliedStatTotal"`
	Player           player  `json:"player"`
}

type player struct {
	FullName          string       `json:"fullName"`
	DefaultPositionID int          `json:"defaultPositionId"`
	ProTeamID         int          `json:"proTeamId"`
	Stats             []playerStat `json:"stats"`
}

type playerStat struct {
	ScoringPeriodID int                `json:"scoringPeriodId"`
	StatSourceID    int                `json:"statSourceId"` // 0 actual, 1 projected
	AppliedTotal    float64            `json:"appliedTotal"`
	AppliedStats    map[string]float64 `json:"appliedStats"`
}

// actual returns the scored stat line for a scoring period
func (p player) actual(period int) (playerStat, bool) {
	for _, s := range p.Stats {
		if s.ScoringPeriodID == period && s.StatSourceID == 0 {
			return s, true
		}
	}
	return playerStat{}, false
}
