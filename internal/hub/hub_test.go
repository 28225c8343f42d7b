package hub_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jackmcnulty/sports-ticker/internal/aggregator"
	"github.com/jackmcnulty/sports-ticker/internal/client"
	"github.com/jackmcnulty/sports-ticker/internal/hub"
	"github.com/jackmcnulty/sports-ticker/pkg/models"
)

func snapshot(id string) aggregator.Snapshot {
	return aggregator.Snapshot{
		ID:   id,
		Mode: aggregator.ModeSports,
		Events: []models.Event{
			{Kind: models.KindHeadToHead, Sport: "basketball_nba", League: "NBA", Away: "BOS", Home: "LAL", Score: "99 : 101"},
			{Kind: models.KindField, Sport: "racing_f1", League: "F1", Session: "Race - Monaco GP"},
		},
		Alert: "Could not load NFL scores",
		Failures: []aggregator.Failure{
			{Sport: "football_nfl", League: "NFL"},
			{Sport: "hockey_nhl", League: "NHL"},
		},
	}
}

func TestFilterSnapshot(t *testing.T) {
	tests := []struct {
		name       string
		sports     []string
		wantEvents int
		wantAlert  string
	}{
		{"empty filter keeps everything", nil, 2, "Could not load NFL scores"},
		{"single sport", []string{"racing_f1"}, 1, ""},
		{"alert recomputed from matching failures", []string{"basketball_nba", "hockey_nhl"}, 1, "Could not load NHL scores"},
		{"nothing matches", []string{"tennis_atp"}, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := hub.FilterSnapshot(snapshot("s1"), models.SubscriptionFilter{Sports: tt.sports})

			if len(got.Events) != tt.wantEvents {
				t.Errorf("expected %d events, got %d", tt.wantEvents, len(got.Events))
			}
			if got.Alert != tt.wantAlert {
				t.Errorf("Alert = %q, want %q", got.Alert, tt.wantAlert)
			}
			if got.ID != "s1" {
				t.Errorf("ID = %s", got.ID)
			}
		})
	}
}

// startHub runs a hub behind a websocket endpoint
func startHub(t *testing.T) (*hub.Hub, string) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := hub.NewHub(nil, nil)
	go h.Run(ctx)

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := client.NewClient(r.URL.Query().Get("id"), conn, h, nil)
		h.Register(c)
		go c.WritePump(ctx)
		go c.ReadPump(ctx)
	}))
	t.Cleanup(server.Close)

	return h, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

type snapshotMessage struct {
	Type    string              `json:"type"`
	Payload aggregator.Snapshot `json:"payload"`
}

func readSnapshot(t *testing.T, conn *websocket.Conn) snapshotMessage {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg snapshotMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func waitForClients(t *testing.T, h *hub.Hub, n int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, h.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_BroadcastAndLatestOnConnect(t *testing.T) {
	h, url := startHub(t)

	first := dial(t, url+"?id=first")
	waitForClients(t, h, 1)

	if err := h.Publish(context.Background(), snapshot("s1")); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	msg := readSnapshot(t, first)
	if msg.Type != models.MessageTypeSnapshot || msg.Payload.ID != "s1" {
		t.Errorf("unexpected message: %+v", msg)
	}
	if len(msg.Payload.Events) != 2 {
		t.Errorf("expected 2 events, got %d", len(msg.Payload.Events))
	}

	// a late joiner gets the latest snapshot without waiting for a poll
	second := dial(t, url+"?id=second")
	msg = readSnapshot(t, second)
	if msg.Payload.ID != "s1" {
		t.Errorf("late joiner got %s, want s1", msg.Payload.ID)
	}

	if latest, ok := h.Latest(); !ok || latest.ID != "s1" {
		t.Errorf("Latest() = %v, %v", latest.ID, ok)
	}
}

func TestHub_SubscribeFilters(t *testing.T) {
	h, url := startHub(t)

	conn := dial(t, url+"?id=f1-fan")
	waitForClients(t, h, 1)

	h.Publish(context.Background(), snapshot("s1"))
	readSnapshot(t, conn)

	if err := conn.WriteJSON(models.ClientMessage{
		Type:    models.MessageTypeSubscribe,
		Payload: models.SubscriptionFilter{Sports: []string{"racing_f1"}},
	}); err != nil {
		t.Fatalf("write: %v", err)
	}

	// subscribing re-sends the latest snapshot, filtered
	msg := readSnapshot(t, conn)
	if len(msg.Payload.Events) != 1 || msg.Payload.Events[0].Sport != "racing_f1" {
		t.Errorf("expected only F1 events, got %+v", msg.Payload.Events)
	}
	if msg.Payload.Alert != "" {
		t.Errorf("NFL alert should be filtered out, got %q", msg.Payload.Alert)
	}
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	h, url := startHub(t)

	conn := dial(t, url+"?id=leaver")
	waitForClients(t, h, 1)

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	waitForClients(t, h, 0)

	if got := h.Stats()["total_connections"]; got != int64(1) {
		t.Errorf("total_connections = %v, want 1", got)
	}
}

func TestHub_PublishBufferFull(t *testing.T) {
	// hub not running, nothing drains the buffer
	h := hub.NewHub(nil, nil)

	var err error
	for i := 0; i < 100 && err == nil; i++ {
		err = h.Publish(context.Background(), snapshot("s"))
	}
	if !errors.Is(err, hub.ErrBufferFull) {
		t.Errorf("err = %v, want ErrBufferFull", err)
	}
}
