package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackmcnulty/sports-ticker/internal/config"
)

var envKeys = []string{
	"SERVER_ADDR", "CORS_ORIGINS", "FETCH_TIMEOUT", "POLL_INTERVAL",
	"REDIS_URL", "SNAPSHOT_STREAM", "LEAGUES_FILE",
	"FANTASY_LEAGUE_ID", "FANTASY_YEAR", "FANTASY_WEEK", "ESPN_S2", "SWID",
	"LOG_LEVEL", "LOG_FORMAT",
}

// clearEnv blanks every key the loader reads; t.Setenv restores them
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Addr != ":5050" {
		t.Errorf("Expected default server addr ':5050', got '%s'", cfg.Server.Addr)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "*" {
		t.Errorf("Expected CORS origins [*], got %v", cfg.Server.CORSOrigins)
	}
	if cfg.Fetch.Timeout != 10*time.Second {
		t.Errorf("Expected fetch timeout 10s, got %v", cfg.Fetch.Timeout)
	}
	if cfg.Fetch.PollInterval != 0 {
		t.Errorf("Expected poller disabled, got %v", cfg.Fetch.PollInterval)
	}
	if cfg.Redis.URL != "" || cfg.Redis.Stream != "scoreboard.snapshots" {
		t.Errorf("unexpected redis defaults: %+v", cfg.Redis)
	}
	if cfg.FantasyEnabled() {
		t.Error("fantasy should be disabled without a league id")
	}
	if cfg.Fantasy.Year != time.Now().Year() {
		t.Errorf("Expected fantasy year %d, got %d", time.Now().Year(), cfg.Fantasy.Year)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("unexpected log defaults: %+v", cfg.Log)
	}
	if cfg.Overrides != nil {
		t.Errorf("Expected no overrides, got %v", cfg.Overrides)
	}
}

func TestLoadConfig_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_ADDR", ":9090")
	t.Setenv("CORS_ORIGINS", "https://ticker.example.com, http://localhost:3000")
	t.Setenv("FETCH_TIMEOUT", "3s")
	t.Setenv("POLL_INTERVAL", "30")
	t.Setenv("REDIS_URL", "redis://redis:6379/0")
	t.Setenv("FANTASY_LEAGUE_ID", "482514371")
	t.Setenv("FANTASY_YEAR", "2024")
	t.Setenv("FANTASY_WEEK", "not-a-number")
	t.Setenv("ESPN_S2", "s2")
	t.Setenv("SWID", "{swid}")

	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Expected server addr ':9090', got '%s'", cfg.Server.Addr)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "http://localhost:3000" {
		t.Errorf("unexpected CORS origins: %v", cfg.Server.CORSOrigins)
	}
	if cfg.Fetch.Timeout != 3*time.Second {
		t.Errorf("Expected fetch timeout 3s, got %v", cfg.Fetch.Timeout)
	}
	if cfg.Fetch.PollInterval != 30*time.Second {
		t.Errorf("Expected bare seconds to parse, got %v", cfg.Fetch.PollInterval)
	}
	if !cfg.FantasyEnabled() || cfg.Fantasy.LeagueID != 482514371 || cfg.Fantasy.Year != 2024 {
		t.Errorf("unexpected fantasy config: %+v", cfg.Fantasy)
	}
	if cfg.Fantasy.Week != 0 {
		t.Errorf("invalid week should fall back to 0, got %d", cfg.Fantasy.Week)
	}
}

func TestLoadConfig_LeaguesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "leagues.yaml")
	content := `
leagues:
  basketball_nba:
    endpoint: http://localhost:9999/nba
  hockey_nhl:
    disabled: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	t.Setenv("LEAGUES_FILE", path)

	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := cfg.Overrides["basketball_nba"].Endpoint; got != "http://localhost:9999/nba" {
		t.Errorf("NBA endpoint = %s", got)
	}
	if !cfg.Overrides["hockey_nhl"].Disabled {
		t.Error("Expected NHL disabled")
	}
}

func TestLoadConfig_LeaguesFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content *string
	}{
		{"missing file", nil},
		{"malformed yaml", ptr("leagues: [this is: not a map")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			path := filepath.Join(t.TempDir(), "leagues.yaml")
			if tt.content != nil {
				os.WriteFile(path, []byte(*tt.content), 0o644)
			}
			t.Setenv("LEAGUES_FILE", path)

			if _, err := config.LoadConfig(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LogConfig
		wantErr bool
	}{
		{"json info", config.LogConfig{Level: "info", Format: "json"}, false},
		{"console debug", config.LogConfig{Level: "debug", Format: "console"}, false},
		{"bad level", config.LogConfig{Level: "loud", Format: "json"}, true},
		{"bad format", config.LogConfig{Level: "info", Format: "xml"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := config.NewLogger(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if logger != nil {
				logger.Sync()
			}
		})
	}
}

func ptr(s string) *string { return &s }
