package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels for league outcomes
const (
	ResultOK         = "ok"
	ResultFetchError = "fetch_error"
	ResultParseError = "parse_error"
)

// Metrics holds the service's prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	leagueTotal     *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
	leagueEvents    *prometheus.GaugeVec
	aggregationDur  *prometheus.SummaryVec
	publishTotal    *prometheus.CounterVec
	lastSnapshotTS  prometheus.Gauge
	websocketActive prometheus.Gauge
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.leagueTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sports_ticker",
		Name:      "league_results_total",
		Help:      "League fetch+parse outcomes per aggregation",
	}, []string{"sport", "result"})
	m.fetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sports_ticker",
		Name:      "fetch_duration_seconds",
		Help:      "Upstream scoreboard fetch latency",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"sport"})
	m.leagueEvents = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "sports_ticker",
		Name:      "league_events",
		Help:      "Events emitted by each league in the latest aggregation",
	}, []string{"sport"})
	m.aggregationDur = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace: "sports_ticker",
		Name:      "aggregation_duration_seconds",
		Help:      "End-to-end aggregation latency",
	}, []string{"mode"})
	m.publishTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sports_ticker",
		Name:      "snapshots_published_total",
		Help:      "Snapshots pushed to downstream sinks",
	}, []string{"sink", "result"})
	m.lastSnapshotTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sports_ticker",
		Name:      "last_snapshot_timestamp_seconds",
		Help:      "Unix time of the last polled snapshot",
	})
	m.websocketActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sports_ticker",
		Name:      "websocket_clients",
		Help:      "Connected live-update clients",
	})

	m.registry.MustRegister(
		m.leagueTotal,
		m.fetchDuration,
		m.leagueEvents,
		m.aggregationDur,
		m.publishTotal,
		m.lastSnapshotTS,
		m.websocketActive,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler exposes the registry for scraping
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry, for tests
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveFetch(sport string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.fetchDuration.WithLabelValues(sport).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordLeague(sport, result string, events int) {
	if m == nil {
		return
	}
	m.leagueTotal.WithLabelValues(sport, result).Inc()
	m.leagueEvents.WithLabelValues(sport).Set(float64(events))
}

func (m *Metrics) ObserveAggregation(mode string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.aggregationDur.WithLabelValues(mode).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordPublish(sink string, err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = "error"
	}
	m.publishTotal.WithLabelValues(sink, result).Inc()
}

func (m *Metrics) MarkSnapshot(at time.Time) {
	if m == nil {
		return
	}
	m.lastSnapshotTS.Set(float64(at.Unix()))
}

func (m *Metrics) SetWebsocketClients(n int) {
	if m == nil {
		return
	}
	m.websocketActive.Set(float64(n))
}
