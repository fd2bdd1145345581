package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KaramelBytes/datalens-cli/internal/analysis"
)

// Metrics are registered on a registry owned by one server.
type Metrics struct {
	reg       *prometheus.Registry
	uploads   *prometheus.CounterVec
	skipped   *prometheus.CounterVec
	sessions  prometheus.Gauge
	pipelines prometheus.Histogram
}

func newMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		uploads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "datalens_uploads_total",
			Help: "Dataset uploads by result.",
		}, []string{"result"}),
		skipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "datalens_artifacts_skipped_total",
			Help: "Report artifacts skipped or degraded, by artifact.",
		}, []string{"artifact"}),
		sessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "datalens_sessions_active",
			Help: "Sessions currently held in memory.",
		}),
		pipelines: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "datalens_pipeline_seconds",
			Help:    "Duration of analysis pipeline runs.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) observeReport(r *analysis.Report, elapsed time.Duration) {
	m.pipelines.Observe(elapsed.Seconds())
	for _, n := range r.Notices {
		m.skipped.WithLabelValues(n.Artifact).Inc()
	}
}

func (m *Metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
