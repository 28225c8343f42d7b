package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jackmcnulty/sports-ticker/internal/aggregator"
	"github.com/jackmcnulty/sports-ticker/internal/config"
	"github.com/jackmcnulty/sports-ticker/internal/dedup"
	"github.com/jackmcnulty/sports-ticker/internal/fantasy"
	"github.com/jackmcnulty/sports-ticker/internal/handlers"
	"github.com/jackmcnulty/sports-ticker/internal/hub"
	"github.com/jackmcnulty/sports-ticker/internal/metrics"
	"github.com/jackmcnulty/sports-ticker/internal/poller"
	"github.com/jackmcnulty/sports-ticker/internal/providers/espn"
	"github.com/jackmcnulty/sports-ticker/internal/publisher"
	"github.com/jackmcnulty/sports-ticker/internal/registry"
	"github.com/jackmcnulty/sports-ticker/internal/retry"
)

func main() {
	startup := time.Now().UTC()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	reg, err := registry.New(cfg.Overrides)
	if err != nil {
		logger.Fatal("invalid league registry", zap.Error(err))
	}
	logger.Info("registered leagues", zap.Strings("sports", reg.Keys()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	espnClient := espn.New(cfg.Fetch.Timeout, logger.Named("espn"))

	opts := []aggregator.Option{aggregator.WithMetrics(m)}
	if cfg.FantasyEnabled() {
		fc := cfg.Fantasy
		fc.Timeout = cfg.Fetch.Timeout
		opts = append(opts, aggregator.WithFantasy(fantasy.New(fc, logger.Named("fantasy"))))
		logger.Info("fantasy mode enabled", zap.Int("league_id", cfg.Fantasy.LeagueID), zap.Int("year", cfg.Fantasy.Year))
	}
	agg := aggregator.New(reg, espnClient, logger.Named("aggregator"), opts...)

	checks := map[string]handlers.HealthCheck{}
	var sinks []poller.Sink

	// live push is only meaningful with a poller feeding it
	var liveHub *hub.Hub
	if cfg.Fetch.PollInterval > 0 {
		liveHub = hub.NewHub(m, logger.Named("hub"))
		go liveHub.Run(ctx)
		sinks = append(sinks, liveHub)
	}

	if cfg.Redis.URL != "" {
		redisOpts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Fatal("failed to parse Redis URL", zap.Error(err))
		}
		redisClient := redis.NewClient(redisOpts)
		defer redisClient.Close()

		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		err = redisClient.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			logger.Fatal("failed to connect to Redis", zap.Error(err))
		}
		logger.Info("connected to Redis", zap.String("stream", cfg.Redis.Stream))

		sinks = append(sinks, publisher.NewStreamPublisher(redisClient, cfg.Redis.Stream))
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	if cfg.Fetch.PollInterval > 0 {
		p := poller.NewSnapshotPoller(agg, cfg.Fetch.PollInterval, logger.Named("poller"),
			poller.WithSinks(sinks...),
			poller.WithMetrics(m),
			poller.WithDedup(dedup.NewDeduplicator(publisher.LatestTTL/2)),
			poller.WithRetry(retry.NewRetryPolicy(3, 200*time.Millisecond)),
		)
		go p.Run(ctx)
	} else if len(sinks) > 0 {
		logger.Warn("REDIS_URL set but POLL_INTERVAL is 0; snapshots will not be published")
	}

	handler := handlers.NewHandler(ctx, agg, handlers.Options{
		Hub:     liveHub,
		Metrics: m,
		Checks:  checks,
		Leagues: len(reg.Keys()),
		Startup: startup,
		Logger:  logger.Named("http"),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handlers.NewRouter(handler, cfg.Server.CORSOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("sports ticker listening",
			zap.String("addr", cfg.Server.Addr),
			zap.Duration("poll_interval", cfg.Fetch.PollInterval),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
		}

	case sig := <-shutdown:
		logger.Info("received signal", zap.String("signal", sig.String()))

		// stop the poller and hub before draining requests
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown failed", zap.Error(err))
			if err := srv.Close(); err != nil {
				logger.Error("could not stop server", zap.Error(err))
			}
		}
	}

	logger.Info("shutdown complete")
}
