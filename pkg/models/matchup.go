package models

// Matchup is one head-to-head fantasy matchup for the current week
type Matchup struct {
	Home        string         `json:"home"`
	Away        string         `json:"away"`
	HomeScore   float64        `json:"home_score"`
	AwayScore   float64        `json:"away_score"`
	HomePlayers []LineupPlayer `json:"home_players"`
	AwayPlayers []LineupPlayer `json:"away_players"`
}

// LineupPlayer is a rostered player in a fantasy lineup
type LineupPlayer struct {
	Name       string             `json:"name"`
	Position   string             `json:"pos"`         // "QB", "WR"
	LineupSlot string             `json:"lineup_slot"` // "RB/WR/TE", "BE"
	Points     float64            `json:"score"`
	ProTeam    string             `json:"pro_team"` // "KC"
	Stats      map[string]float64 `json:"stats"`    // applied stats for the week, keyed by ESPN stat id
}
