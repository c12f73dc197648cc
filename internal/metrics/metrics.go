package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus metrics of the screener. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	PassesTotal   *prometheus.CounterVec // labels: strategy
	TickersTotal  prometheus.Counter
	MatchesTotal  *prometheus.CounterVec // labels: strategy
	SkippedTotal  *prometheus.CounterVec // labels: reason
	FetchAttempts *prometheus.CounterVec // labels: result
	PassDuration  prometheus.Histogram
}

// New registers and returns all metrics on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		PassesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_passes_total",
			Help: "Completed screening passes",
		}, []string{"strategy"}),
		TickersTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screener_tickers_total",
			Help: "Tickers evaluated across all passes",
		}),
		MatchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_matches_total",
			Help: "Tickers that met every entry condition",
		}, []string{"strategy"}),
		SkippedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_skipped_total",
			Help: "Tickers skipped (no data, fetch error, insufficient history)",
		}, []string{"reason"}),
		FetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_fetch_attempts_total",
			Help: "Data source fetch attempts by outcome",
		}, []string{"result"}),
		PassDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "screener_pass_duration_seconds",
			Help:    "Wall time of one screening pass",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
	}
	m.registry.MustRegister(
		m.PassesTotal,
		m.TickersTotal,
		m.MatchesTotal,
		m.SkippedTotal,
		m.FetchAttempts,
		m.PassDuration,
	)
	return m
}

// Registry exposes the private registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObservePass(strategy string, tickers, matches int, d time.Duration) {
	if m == nil {
		return
	}
	m.PassesTotal.WithLabelValues(strategy).Inc()
	m.TickersTotal.Add(float64(tickers))
	m.MatchesTotal.WithLabelValues(strategy).Add(float64(matches))
	m.PassDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveSkip(reason string) {
	if m == nil {
		return
	}
	m.SkippedTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveFetch(result string) {
	if m == nil {
		return
	}
	m.FetchAttempts.WithLabelValues(result).Inc()
}
