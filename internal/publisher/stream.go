package publisher

import (
	"context"
	"fmt"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"github.com/jackmcnulty/sports-ticker/internal/aggregator"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	DefaultStream = "scoreboard.snapshots"

	// DefaultMaxLen caps the stream; older snapshots are trimmed approximately
	DefaultMaxLen = 1000

	// LatestTTL keeps the latest snapshot readable if polling stops
	LatestTTL = 10 * time.Minute
)

// StreamPublisher publishes scoreboard snapshots to a Redis stream and
// keeps the most recent one under a plain key
type StreamPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewStreamPublisher creates a new stream publisher
func NewStreamPublisher(client *redis.Client, stream string) *StreamPublisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &StreamPublisher{
		client: client,
		stream: stream,
		maxLen: DefaultMaxLen,
	}
}

// Name identifies this sink in logs and metrics
func (p *StreamPublisher) Name() string {
	return "redis"
}

// LatestKey is where the newest snapshot is cached
func (p *StreamPublisher) LatestKey() string {
	return p.stream + ":latest"
}

// Publish appends the snapshot to the stream and replaces the latest key
func (p *StreamPublisher) Publish(ctx context.Context, snap aggregator.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}

	pipe := p.client.TxPipeline()
	pipe.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data":        string(data),
			"snapshot_id": snap.ID,
			"events":      strconv.Itoa(len(snap.Events)),
			"alert":       snap.Alert,
		},
	})
	pipe.Set(ctx, p.LatestKey(), data, LatestTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publishing snapshot %s: %w", snap.ID, err)
	}
	return nil
}

// Latest reads the most recently published snapshot
func (p *StreamPublisher) Latest(ctx context.Context) (*aggregator.Snapshot, error) {
	data, err := p.client.Get(ctx, p.LatestKey()).Bytes()
	if err != nil {
		return nil, err
	}

	var snap aggregator.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshaling snapshot: %w", err)
	}
	return &snap, nil
}
