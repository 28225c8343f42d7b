package espn

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

const (
	BaseURL = "https://site.api.espn.com/apis/site/v2/sports"

	// DefaultTimeout bounds a single scoreboard request
	DefaultTimeout = 10 * time.Second

	maxErrorBody = 512
)

// ScoreboardURL builds the scoreboard endpoint for an ESPN sport path
// such as "basketball/nba".
func ScoreboardURL(sportPath string) string {
	return fmt.Sprintf("%s/%s/scoreboard", BaseURL, sportPath)
}

// FetchError is returned for any failure to obtain a usable payload for
// one league: transport error, timeout, non-2xx status or a non-JSON body.
type FetchError struct {
	League     string
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s scoreboard: status=%d: %v", e.League, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetching %s scoreboard: %v", e.League, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client handles ESPN API requests
type Client struct {
	httpClient *http.Client
	userAgent  string
	logger     *zap.Logger
}

// New creates a new ESPN API client. A non-positive timeout falls back
// to DefaultTimeout.
func New(timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: "Mozilla/5.0 (compatible; SportsTicker/1.0)",
		logger:    logger,
	}
}

// FetchScoreboard performs exactly one GET against url and returns the raw
// JSON body. Every failure comes back as a *FetchError and is logged here;
// there are no retries.
func (c *Client) FetchScoreboard(ctx context.Context, league, url string) ([]byte, error) {
	start := time.Now()

	body, status, err := c.fetch(ctx, url)
	if err != nil {
		fetchErr := &FetchError{League: league, URL: url, StatusCode: status, Err: err}
		c.logger.Warn("scoreboard fetch failed",
			zap.String("league", league),
			zap.String("url", url),
			zap.Int("status", status),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, fetchErr
	}

	c.logger.Debug("scoreboard fetched",
		zap.String("league", league),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return body, nil
}

// fetch makes an HTTP GET request and returns the validated JSON body
func (c *Client) fetch(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, resp.StatusCode, fmt.Errorf("ESPN API error: body=%s", string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}

	if !jsoniter.ConfigCompatibleWithStandardLibrary.Valid(body) {
		return nil, resp.StatusCode, fmt.Errorf("decoding response: body is not valid JSON")
	}

	return body, resp.StatusCode, nil
}
