package fantasy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/jackmcnulty/sports-ticker/pkg/models"
)

const (
	BaseURL = "https://lm-api-reads.fantasy.espn.com/apis/v3/games/ffl"

	DefaultTimeout = 10 * time.Second

	maxErrorBody = 512
)

// ErrNotConfigured is returned when no league id is set
var ErrNotConfigured = errors.New("fantasy league id not configured")

// Config identifies one private or public ESPN fantasy football league
type Config struct {
	LeagueID int
	Year     int
	Week     int // 0 means the league's current matchup period
	ESPNS2   string
	SWID     string
	BaseURL  string
	Timeout  time.Duration
}

// Client reads box scores from the ESPN fantasy API
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a fantasy client. Missing BaseURL, Year and Timeout fall
// back to the public API, the current year and DefaultTimeout.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseURL
	}
	if cfg.Year == 0 {
		cfg.Year = time.Now().Year()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// CurrentWeekMatchups returns every matchup of the configured week with
// both lineups. Bye weeks have no away side and are skipped.
func (c *Client) CurrentWeekMatchups(ctx context.Context) ([]models.Matchup, error) {
	if c.cfg.LeagueID == 0 {
		return nil, ErrNotConfigured
	}

	week := c.cfg.Week
	if week == 0 {
		var status leagueResponse
		if err := c.get(ctx, url.Values{"view": {"mStatus"}}, &status); err != nil {
			return nil, fmt.Errorf("reading league status: %w", err)
		}
		week = status.Status.CurrentMatchupPeriod
		if week == 0 {
			week = 1
		}
	}

	params := url.Values{
		"view":            {"mTeam", "mMatchupScore", "mScoreboard"},
		"scoringPeriodId": {strconv.Itoa(week)},
	}
	var league leagueResponse
	if err := c.get(ctx, params, &league); err != nil {
		return nil, fmt.Errorf("reading week %d box scores: %w", week, err)
	}

	matchups := buildMatchups(league, week)
	c.logger.Debug("fantasy matchups loaded",
		zap.Int("league_id", c.cfg.LeagueID),
		zap.Int("week", week),
		zap.Int("matchups", len(matchups)),
	)
	return matchups, nil
}

func (c *Client) leagueURL() string {
	return fmt.Sprintf("%s/seasons/%d/segments/0/leagues/%d", c.cfg.BaseURL, c.cfg.Year, c.cfg.LeagueID)
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	endpoint := c.leagueURL() + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.ESPNS2 != "" && c.cfg.SWID != "" {
		req.AddCookie(&http.Cookie{Name: "espn_s2", Value: c.cfg.ESPNS2})
		req.AddCookie(&http.Cookie{Name: "SWID", Value: c.cfg.SWID})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("fantasy request failed",
			zap.Int("status", resp.StatusCode),
			zap.Int("league_id", c.cfg.LeagueID),
		)
		return fmt.Errorf("fantasy API error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// buildMatchups maps one week of the league document to matchups, in
// schedule order. Regular-season matchup periods equal scoring periods.
func buildMatchups(league leagueResponse, week int) []models.Matchup {
	names := make(map[int]string, len(league.Teams))
	for _, t := range league.Teams {
		names[t.ID] = t.DisplayName()
	}

	matchups := []models.Matchup{}
	for _, item := range league.Schedule {
		if item.MatchupPeriodID != week || item.Home == nil || item.Away == nil {
			continue
		}
		matchups = append(matchups, models.Matchup{
			Home:        teamName(names, item.Home.TeamID),
			Away:        teamName(names, item.Away.TeamID),
			HomeScore:   item.Home.Points(),
			AwayScore:   item.Away.Points(),
			HomePlayers: lineup(item.Home.Roster, week),
			AwayPlayers: lineup(item.Away.Roster, week),
		})
	}
	return matchups
}

func teamName(names map[int]string, id int) string {
	if name, ok := names[id]; ok {
		return name
	}
	return "Team " + strconv.Itoa(id)
}

func lineup(r *roster, period int) []models.LineupPlayer {
	players := []models.LineupPlayer{}
	if r == nil {
		return players
	}

	for _, entry := range r.Entries {
		p := entry.PlayerPoolEntry.Player
		lp := models.LineupPlayer{
			Name:       p.FullName,
			Position:   PositionName(p.DefaultPositionID),
			LineupSlot: LineupSlotName(entry.LineupSlotID),
			Points:     entry.PlayerPoolEntry.AppliedStatTotal,
			ProTeam:    ProTeamAbbreviation(p.ProTeamID),
			Stats:      map[string]float64{},
		}
		if stat, ok := p.actual(period); ok {
			lp.Points = stat.AppliedTotal
			for id, v := range stat.AppliedStats {
				lp.Stats[id] = v
			}
		}
		players = append(players, lp)
	}
	return players
}
