package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests and multiple app instances never
// collide on registration. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	toggles      *prometheus.CounterVec
	toggleRetry  *prometheus.CounterVec
	plannerPass  *prometheus.HistogramVec
	plannerItems prometheus.Histogram
	feedQueries  *prometheus.CounterVec
	viewsTotal   prometheus.Counter
	sweepRemoved *prometheus.CounterVec
	bestEffort   *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "streamhub_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "streamhub_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "streamhub_http_inflight_requests",
			Help: "HTTP requests currently being served.",
		}),
		toggles: f.NewCounterVec(prometheus.CounterOpts{
			Name: "streamhub_edge_toggles_total",
			Help: "Edge toggles by edge kind and outcome (present, absent, conflict, error).",
		}, []string{"kind", "outcome"}),
		toggleRetry: f.NewCounterVec(prometheus.CounterOpts{
			Name: "streamhub_edge_toggle_retries_total",
			Help: "Toggles that lost a race and switched branch.",
		}, []string{"kind"}),
		plannerPass: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "streamhub_planner_pass_duration_seconds",
			Help:    "Aggregation planner batched pass latency.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"pass"}),
		plannerItems: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "streamhub_planner_batch_items",
			Help:    "Nodes aggregated per planner call.",
			Buckets: []float64{1, 5, 10, 25, 50, 100},
		}),
		feedQueries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "streamhub_feed_queries_total",
			Help: "Feed queries by whether a text search stage was present.",
		}, []string{"search"}),
		viewsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "streamhub_video_views_total",
			Help: "Video view increments.",
		}),
		sweepRemoved: f.NewCounterVec(prometheus.CounterOpts{
			Name: "streamhub_orphan_sweep_removed_total",
			Help: "Orphaned records removed by the sweeper, by kind.",
		}, []string{"kind"}),
		bestEffort: f.NewCounterVec(prometheus.CounterOpts{
			Name: "streamhub_best_effort_failures_total",
			Help: "Logged-and-ignored failures of best-effort side effects.",
		}, []string{"action"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) IncInflight() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) DecInflight() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(dur.Seconds())
}

func (m *Metrics) IncToggle(kind, outcome string) {
	if m == nil {
		return
	}
	m.toggles.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) IncToggleRetry(kind string) {
	if m == nil {
		return
	}
	m.toggleRetry.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObservePlannerPass(pass string, dur time.Duration) {
	if m == nil {
		return
	}
	m.plannerPass.WithLabelValues(pass).Observe(dur.Seconds())
}

func (m *Metrics) ObservePlannerItems(n int) {
	if m == nil {
		return
	}
	m.plannerItems.Observe(float64(n))
}

func (m *Metrics) IncFeedQuery(search bool) {
	if m == nil {
		return
	}
	m.feedQueries.WithLabelValues(strconv.FormatBool(search)).Inc()
}

func (m *Metrics) IncViews() {
	if m == nil {
		return
	}
	m.viewsTotal.Inc()
}

func (m *Metrics) AddSweepRemoved(kind string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.sweepRemoved.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) IncBestEffortFailure(action string) {
	if m == nil {
		return
	}
	m.bestEffort.WithLabelValues(action).Inc()
}
