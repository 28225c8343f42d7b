package publisher_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jackmcnulty/sports-ticker/internal/aggregator"
	"github.com/jackmcnulty/sports-ticker/internal/publisher"
	"github.com/jackmcnulty/sports-ticker/pkg/models"
)

// redisClient connects to REDIS_URL (or localhost) and skips when no
// server answers
func redisClient(t *testing.T) *redis.Client {
	t.Helper()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/15"
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("parsing REDIS_URL: %v", err)
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestPublish(t *testing.T) {
	client := redisClient(t)
	ctx := context.Background()

	stream := "test.snapshots." + time.Now().Format("150405.000000")
	pub := publisher.NewStreamPublisher(client, stream)
	t.Cleanup(func() { client.Del(context.Background(), stream, pub.LatestKey()) })

	snap := aggregator.Snapshot{
		ID:          "snap-1",
		Mode:        aggregator.ModeSports,
		GeneratedAt: time.Date(2024, 3, 10, 17, 0, 0, 0, time.UTC),
		Events: []models.Event{{
			Kind: models.KindHeadToHead, Sport: "basketball_nba", League: "NBA",
			Status: "Final", Away: "BOS", Home: "LAL", Score: "99 : 101", Winner: models.WinnerHome,
		}},
		Alert: "Could not load NHL scores",
	}

	if err := pub.Publish(ctx, snap); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	entries, err := client.XRange(ctx, stream, "-", "+").Result()
	if err != nil {
		t.Fatalf("XRange: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 stream entry, got %d", len(entries))
	}
	if entries[0].Values["snapshot_id"] != "snap-1" || entries[0].Values["events"] != "1" {
		t.Errorf("unexpected entry values: %v", entries[0].Values)
	}

	latest, err := pub.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.ID != "snap-1" || latest.Alert != snap.Alert {
		t.Errorf("unexpected latest snapshot: %+v", latest)
	}
	if len(latest.Events) != 1 || latest.Events[0].Score != "99 : 101" {
		t.Errorf("events did not round trip: %+v", latest.Events)
	}
}

func TestNewStreamPublisher_DefaultStream(t *testing.T) {
	pub := publisher.NewStreamPublisher(nil, "")
	if pub.LatestKey() != publisher.DefaultStream+":latest" {
		t.Errorf("LatestKey() = %s", pub.LatestKey())
	}
	if pub.Name() != "redis" {
		t.Errorf("Name() = %s", pub.Name())
	}
}
