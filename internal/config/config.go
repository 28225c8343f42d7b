package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jackmcnulty/sports-ticker/internal/fantasy"
	"github.com/jackmcnulty/sports-ticker/internal/registry"
)

// ServerConfig holds server configuration
type ServerConfig struct {
	Addr        string
	CORSOrigins []string
}

// FetchConfig holds upstream and polling configuration
type FetchConfig struct {
	Timeout      time.Duration
	PollInterval time.Duration // 0 disables the background poller
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	URL    string // empty disables the stream publisher
	Stream string
}

// LogConfig selects the zap logger
type LogConfig struct {
	Level  string
	Format string
}

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Fetch     FetchConfig
	Redis     RedisConfig
	Fantasy   fantasy.Config
	Log       LogConfig
	Overrides map[string]registry.Override
}

// LeaguesFile is the optional YAML overlay named by LEAGUES_FILE
type LeaguesFile struct {
	Leagues map[string]LeagueEntry `yaml:"leagues"`
}

// LeagueEntry adjusts one default league
type LeagueEntry struct {
	Endpoint string `yaml:"endpoint"`
	Disabled bool   `yaml:"disabled"`
}

// LoadConfig loads configuration from environment variables and, when
// LEAGUES_FILE is set, the leagues overlay
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:        getEnv("SERVER_ADDR", ":5050"),
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
		},
		Fetch: FetchConfig{
			Timeout:      getEnvDuration("FETCH_TIMEOUT", 10*time.Second),
			PollInterval: getEnvDuration("POLL_INTERVAL", 0),
		},
		Redis: RedisConfig{
			URL:    getEnv("REDIS_URL", ""),
			Stream: getEnv("SNAPSHOT_STREAM", "scoreboard.snapshots"),
		},
		Fantasy: fantasy.Config{
			LeagueID: getEnvInt("FANTASY_LEAGUE_ID", 0),
			Year:     getEnvInt("FANTASY_YEAR", time.Now().Year()),
			Week:     getEnvInt("FANTASY_WEEK", 0),
			ESPNS2:   getEnv("ESPN_S2", ""),
			SWID:     getEnv("SWID", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if path := getEnv("LEAGUES_FILE", ""); path != "" {
		overrides, err := LoadLeaguesFile(path)
		if err != nil {
			return nil, err
		}
		cfg.Overrides = overrides
	}

	return cfg, nil
}

// FantasyEnabled reports whether a fantasy league is configured
func (c *Config) FantasyEnabled() bool {
	return c.Fantasy.LeagueID != 0
}

// LoadLeaguesFile reads league overrides from a YAML file
func LoadLeaguesFile(path string) (map[string]registry.Override, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading leagues file: %w", err)
	}

	var file LeaguesFile
	if err := yaml.Unmarshal(b, &file); err != nil {
		return nil, fmt.Errorf("parsing leagues file %s: %w", path, err)
	}

	overrides := make(map[string]registry.Override, len(file.Leagues))
	for key, entry := range file.Leagues {
		overrides[key] = registry.Override{
			Endpoint: entry.Endpoint,
			Disabled: entry.Disabled,
		}
	}
	return overrides, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("30s") or plain seconds ("30")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
