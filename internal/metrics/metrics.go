// Package metrics exposes Prometheus counters for the analysis service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the service metrics. Register once per process.
type Collector struct {
	requestsTotal   *prometheus.CounterVec
	warningsTotal   *prometheus.CounterVec
	downgradesTotal *prometheus.CounterVec
	probeFailures   *prometheus.CounterVec
	stageLatency    *prometheus.HistogramVec
}

// NewCollector builds and registers the collector on reg. Pass
// prometheus.DefaultRegisterer in production; tests use a private registry
// so parallel packages do not collide.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "invoice_requests_total",
			Help: "Analysis requests processed, labeled by selected run mode.",
		}, []string{"mode"}),
		warningsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "invoice_warnings_total",
			Help: "Anomaly warnings emitted, labeled by warning code.",
		}, []string{"code"}),
		downgradesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "invoice_gateway_downgrades_total",
			Help: "Mid-call downgrades from live to mocked gateway behavior.",
		}, []string{"gateway"}),
		probeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "invoice_probe_failures_total",
			Help: "Health probes that failed or timed out, labeled by collaborator.",
		}, []string{"collaborator"}),
		stageLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "invoice_stage_duration_seconds",
			Help:    "Latency of pipeline stages.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
	}
	reg.MustRegister(c.requestsTotal, c.warningsTotal, c.downgradesTotal, c.probeFailures, c.stageLatency)
	return c
}

func (c *Collector) RequestProcessed(mode string)       { c.requestsTotal.WithLabelValues(mode).Inc() }
func (c *Collector) WarningEmitted(code string)         { c.warningsTotal.WithLabelValues(code).Inc() }
func (c *Collector) GatewayDowngraded(gateway string)   { c.downgradesTotal.WithLabelValues(gateway).Inc() }
func (c *Collector) ProbeFailed(collaborator string)    { c.probeFailures.WithLabelValues(collaborator).Inc() }
func (c *Collector) StageObserved(stage string, s float64) {
	c.stageLatency.WithLabelValues(stage).Observe(s)
}

// Handler returns the HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
