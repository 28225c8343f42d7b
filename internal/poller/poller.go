package poller

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jackmcnulty/sports-ticker/internal/aggregator"
	"github.com/jackmcnulty/sports-ticker/internal/dedup"
	"github.com/jackmcnulty/sports-ticker/internal/metrics"
	"github.com/jackmcnulty/sports-ticker/internal/retry"
)

// Aggregator produces snapshots
type Aggregator interface {
	Aggregate(ctx context.Context, mode aggregator.Mode) aggregator.Snapshot
}

// Sink receives every polled snapshot
type Sink interface {
	Name() string
	Publish(ctx context.Context, snap aggregator.Snapshot) error
}

// publishTimeout bounds one sink write so a stuck sink cannot stall polling
const publishTimeout = 5 * time.Second

// SnapshotPoller aggregates on a fixed interval and pushes each snapshot
// to its sinks
type SnapshotPoller struct {
	agg      Aggregator
	sinks    []Sink
	interval time.Duration
	dedup    *dedup.Deduplicator
	retry    *retry.RetryPolicy
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// Option configures a SnapshotPoller
type Option func(*SnapshotPoller)

// WithSinks adds snapshot destinations
func WithSinks(sinks ...Sink) Option {
	return func(p *SnapshotPoller) { p.sinks = append(p.sinks, sinks...) }
}

// WithDedup skips publishing snapshots identical to the previous one
func WithDedup(d *dedup.Deduplicator) Option {
	return func(p *SnapshotPoller) { p.dedup = d }
}

// WithRetry retries failed sink writes
func WithRetry(policy *retry.RetryPolicy) Option {
	return func(p *SnapshotPoller) { p.retry = policy }
}

// WithMetrics records publish outcomes
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *SnapshotPoller) { p.metrics = m }
}

// NewSnapshotPoller creates a new poller
func NewSnapshotPoller(agg Aggregator, interval time.Duration, logger *zap.Logger, opts ...Option) *SnapshotPoller {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &SnapshotPoller{
		agg:      agg,
		interval: interval,
		retry:    retry.NewRetryPolicy(1, 0),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run starts the polling loop and returns when ctx is done
func (p *SnapshotPoller) Run(ctx context.Context) {
	p.logger.Info("starting poller", zap.Duration("interval", p.interval), zap.Int("sinks", len(p.sinks)))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.PollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("stopping poller")
			return
		case <-ticker.C:
			p.PollOnce(ctx)
		}
	}
}

// PollOnce performs one aggregate-and-publish cycle and reports whether
// the snapshot was published. Sink failures are logged and counted; they
// never stop the loop.
func (p *SnapshotPoller) PollOnce(ctx context.Context) (aggregator.Snapshot, bool) {
	snap := p.agg.Aggregate(ctx, aggregator.ModeSports)
	p.metrics.MarkSnapshot(snap.GeneratedAt)

	if p.dedup != nil {
		changed, err := p.dedup.ShouldPublish(snap)
		if err != nil {
			p.logger.Warn("error fingerprinting snapshot", zap.Error(err))
		} else if !changed {
			p.logger.Debug("snapshot unchanged, skipping publish", zap.String("snapshot_id", snap.ID))
			return snap, false
		}
	}

	failed := false
	for _, sink := range p.sinks {
		pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		err := p.retry.Execute(pubCtx, func(ctx context.Context) error {
			return sink.Publish(ctx, snap)
		})
		cancel()

		p.metrics.RecordPublish(sink.Name(), err)
		if err != nil {
			failed = true
			p.logger.Warn("error publishing snapshot",
				zap.String("sink", sink.Name()),
				zap.String("snapshot_id", snap.ID),
				zap.Error(err),
			)
		}
	}

	// an undelivered snapshot must not count as the last one published
	if failed && p.dedup != nil {
		p.dedup.Reset()
	}

	return snap, true
}
