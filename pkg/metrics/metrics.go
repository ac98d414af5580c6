package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors exported by the explorer. Each instance owns its own registry.
type Metrics struct {
	registry *prometheus.Registry

	FetchTotal          *prometheus.CounterVec
	DrillDownTotal      *prometheus.CounterVec
	JobPollsTotal       *prometheus.CounterVec
	JobsSettledTotal    *prometheus.CounterVec
	WatchlistMutations  *prometheus.CounterVec
	UpstreamDuration    *prometheus.HistogramVec
	ActiveSessions      prometheus.Gauge
	SnapshotTopicsTotal prometheus.Gauge
}

// New registers all collectors under the given namespace.
func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "topic_fetch_total",
			Help:      "Topic list fetches by outcome (applied, stale, error).",
		}, []string{"result"}),
		DrillDownTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "heatmap_drilldown_total",
			Help:      "Heatmap cell drill-downs by outcome.",
		}, []string{"result"}),
		JobPollsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_job_polls_total",
			Help:      "Import job list polls by outcome.",
		}, []string{"result"}),
		JobsSettledTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_jobs_settled_total",
			Help:      "Import jobs observed reaching a terminal status.",
		}, []string{"status"}),
		WatchlistMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "watchlist_mutations_total",
			Help:      "Watchlist mutations by intent and final state.",
		}, []string{"intent", "state"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of upstream API calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Explorer sessions currently held in memory.",
		}),
		SnapshotTopicsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_topics",
			Help:      "Topics held in the unpaginated insights snapshot.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.FetchTotal,
		m.DrillDownTotal,
		m.JobPollsTotal,
		m.JobsSettledTotal,
		m.WatchlistMutations,
		m.UpstreamDuration,
		m.ActiveSessions,
		m.SnapshotTopicsTotal,
	)
	return m
}

// ObserveUpstream records the latency of one upstream call.
func (m *Metrics) ObserveUpstream(method, path, status string, d time.Duration) {
	m.UpstreamDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// The recorders below are no-ops on a nil *Metrics so components can run without instrumentation.

func (m *Metrics) RecordFetch(result string) {
	if m != nil {
		m.FetchTotal.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) RecordDrillDown(result string) {
	if m != nil {
		m.DrillDownTotal.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) RecordJobPoll(result string) {
	if m != nil {
		m.JobPollsTotal.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) RecordJobSettled(status string) {
	if m != nil {
		m.JobsSettledTotal.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) RecordWatchlistMutation(intent, state string) {
	if m != nil {
		m.WatchlistMutations.WithLabelValues(intent, state).Inc()
	}
}

func (m *Metrics) SetActiveSessions(n int) {
	if m != nil {
		m.ActiveSessions.Set(float64(n))
	}
}

func (m *Metrics) SetSnapshotTopics(n int) {
	if m != nil {
		m.SnapshotTopicsTotal.Set(float64(n))
	}
}
