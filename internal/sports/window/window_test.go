package window_test

import (
	"testing"
	"time"

	"github.com/jackmcnulty/sports-ticker/internal/sports/window"
	"github.com/jackmcnulty/sports-ticker/pkg/models"
)

func eastern(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, window.Eastern)
}

func TestTeamSportPolicy(t *testing.T) {
	yesterdayEvening := eastern(2025, 11, 14, 22, 30)
	todayEvening := eastern(2025, 11, 15, 19, 0)
	twoDaysAgo := eastern(2025, 11, 13, 19, 0)

	tests := []struct {
		name  string
		start time.Time
		state models.MatchState
		now   time.Time
		want  bool
	}{
		{"today pre", todayEvening, models.StatePre, eastern(2025, 11, 15, 9, 0), true},
		{"today final", todayEvening, models.StatePost, eastern(2025, 11, 15, 23, 0), true},
		{"yesterday live inside grace", yesterdayEvening, models.StateIn, eastern(2025, 11, 15, 0, 45), true},
		{"yesterday pre inside grace", yesterdayEvening, models.StatePre, eastern(2025, 11, 15, 3, 59), true},
		{"yesterday final inside grace", yesterdayEvening, models.StatePost, eastern(2025, 11, 15, 1, 0), false},
		{"yesterday live at grace boundary", yesterdayEvening, models.StateIn, eastern(2025, 11, 15, 4, 0), false},
		{"yesterday live after grace", yesterdayEvening, models.StateIn, eastern(2025, 11, 15, 10, 0), false},
		{"two days ago live", twoDaysAgo, models.StateIn, eastern(2025, 11, 15, 1, 0), false},
		{"tomorrow", eastern(2025, 11, 16, 13, 0), models.StatePre, eastern(2025, 11, 15, 12, 0), false},
		{"zero start", time.Time{}, models.StatePre, eastern(2025, 11, 15, 12, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := window.TeamSport.Includes(tt.start, time.Time{}, tt.state, tt.now)
			if got != tt.want {
				t.Errorf("Includes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTeamSportPolicy_UTCDateRollsToEastern(t *testing.T) {
	// 00:30 UTC on the 16th is 19:30 Eastern on the 15th
	start := time.Date(2025, 11, 16, 0, 30, 0, 0, time.UTC)
	now := eastern(2025, 11, 15, 12, 0)

	if !window.TeamSport.Includes(start, time.Time{}, models.StatePre, now) {
		t.Error("expected evening game to count as today in Eastern")
	}
}

func TestSessionPolicy(t *testing.T) {
	now := eastern(2025, 6, 2, 1, 0)
	tournamentStart := eastern(2025, 5, 25, 5, 0)

	tests := []struct {
		name    string
		session time.Time
		state   models.MatchState
		want    bool
	}{
		{"session today", eastern(2025, 6, 2, 0, 30), models.StatePre, true},
		{"session yesterday still live", eastern(2025, 6, 1, 20, 0), models.StateIn, false},
		{"no session time", time.Time{}, models.StatePre, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := window.Session.Includes(tournamentStart, tt.session, tt.state, now)
			if got != tt.want {
				t.Errorf("Includes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToday(t *testing.T) {
	now := time.Date(2025, 11, 16, 3, 0, 0, 0, time.UTC)
	if got := window.Today(now); got != "2025-11-15" {
		t.Errorf("Today() = %s, want 2025-11-15", got)
	}
}
