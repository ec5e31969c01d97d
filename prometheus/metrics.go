// Package prometheus exports search session metrics with the Prometheus
// client library.
package prometheus

import (
	"context"
	"net/http"
	"time"

	"github.com/fwojciec/serp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Session outcomes used as the outcome label.
const (
	OutcomeOK        = "ok"
	OutcomeBlocked   = "blocked"
	OutcomeNoResults = "no_results"
	OutcomeFailed    = "failed"
	OutcomeRefused   = "refused"
)

// Metrics holds the collectors for search sessions.
type Metrics struct {
	Sessions        *prometheus.CounterVec
	SessionDuration *prometheus.HistogramVec
	Items           *prometheus.CounterVec
	Pages           *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Sessions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "serp_sessions_total",
				Help: "Total number of search sessions, labeled by engine and outcome.",
			},
			[]string{"engine", "outcome"},
		),
		SessionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "serp_session_duration_seconds",
				Help:    "Duration of search sessions in seconds.",
				Buckets: []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
			},
			[]string{"engine"},
		),
		Items: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "serp_items_total",
				Help: "Total number of result items extracted, labeled by engine.",
			},
			[]string{"engine"},
		),
		Pages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "serp_pages_total",
				Help: "Total number of result pages extracted, labeled by engine.",
			},
			[]string{"engine"},
		),
	}
	reg.MustRegister(m.Sessions, m.SessionDuration, m.Items, m.Pages)
	return m
}

// Outcome classifies a finished session for the outcome label.
func Outcome(report *serp.SessionReport, err error) string {
	switch {
	case err != nil:
		return OutcomeRefused
	case report.Blocked:
		return OutcomeBlocked
	case report.DiagnosticLog != "":
		return OutcomeFailed
	case report.NoResults:
		return OutcomeNoResults
	default:
		return OutcomeOK
	}
}

// Ensure MetricsSearcher implements serp.Searcher.
var _ serp.Searcher = (*MetricsSearcher)(nil)

// MetricsSearcher wraps a Searcher and records session metrics.
type MetricsSearcher struct {
	next    serp.Searcher
	metrics *Metrics
}

// NewMetricsSearcher creates a new MetricsSearcher.
func NewMetricsSearcher(next serp.Searcher, metrics *Metrics) *MetricsSearcher {
	return &MetricsSearcher{next: next, metrics: metrics}
}

// Search delegates to the wrapped searcher and records the outcome.
func (s *MetricsSearcher) Search(ctx context.Context, req serp.SearchRequest) (report *serp.SessionReport, err error) {
	defer func(begin time.Time) {
		engine := string(req.Engine)
		s.metrics.Sessions.WithLabelValues(engine, Outcome(report, err)).Inc()
		if err != nil {
			return
		}
		s.metrics.SessionDuration.WithLabelValues(engine).Observe(time.Since(begin).Seconds())
		s.metrics.Items.WithLabelValues(engine).Add(float64(len(report.Items)))
		s.metrics.Pages.WithLabelValues(engine).Add(float64(report.Pages))
	}(time.Now())
	return s.next.Search(ctx, req)
}

// Handler returns an HTTP handler serving the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
