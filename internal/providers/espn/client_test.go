package espn_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackmcnulty/sports-ticker/internal/providers/espn"
)

func TestScoreboardURL(t *testing.T) {
	want := "https://site.api.espn.com/apis/site/v2/sports/basketball/nba/scoreboard"
	if got := espn.ScoreboardURL("basketball/nba"); got != want {
		t.Errorf("ScoreboardURL() = %s, want %s", got, want)
	}
}

func TestFetchScoreboard_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected a User-Agent header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"events":[]}`))
	}))
	defer srv.Close()

	client := espn.New(time.Second, nil)
	body, err := client.FetchScoreboard(context.Background(), "NBA", srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != `{"events":[]}` {
		t.Errorf("body = %s", body)
	}
}

func TestFetchScoreboard_Failures(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
	}{
		{
			name: "non-2xx status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusBadGateway)
			},
			wantStatus: http.StatusBadGateway,
		},
		{
			name: "non-JSON body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>maintenance</html>"))
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-time.After(500 * time.Millisecond):
				case <-r.Context().Done():
				}
				w.Write([]byte(`{}`))
			},
			wantStatus: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := espn.New(50*time.Millisecond, nil)
			body, err := client.FetchScoreboard(context.Background(), "NHL", srv.URL)
			if err == nil {
				t.Fatalf("expected error, got body %s", body)
			}

			var fetchErr *espn.FetchError
			if !errors.As(err, &fetchErr) {
				t.Fatalf("error %T is not a *FetchError", err)
			}
			if fetchErr.League != "NHL" {
				t.Errorf("League = %s, want NHL", fetchErr.League)
			}
			if fetchErr.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", fetchErr.StatusCode, tt.wantStatus)
			}
			if fetchErr.Unwrap() == nil {
				t.Error("expected an underlying cause")
			}
		})
	}
}

func TestFetchScoreboard_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := espn.New(time.Second, nil)
	_, err := client.FetchScoreboard(context.Background(), "MLB", url)

	var fetchErr *espn.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
}
