package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records
// nothing, so components can take one optionally.
type Metrics struct {
	registry *prometheus.Registry

	// Evaluator metrics
	SheetsScanned      prometheus.Counter
	InaccessibleSheets prometheus.Counter
	Repairs            *prometheus.CounterVec
	PendingRepairs     prometheus.Gauge
	FixBatches         *prometheus.CounterVec
	FixDuration        prometheus.Histogram

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates a collector set on its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		SheetsScanned: factory.NewCounter(prometheus.CounterOpts{
			Name: "sheetguard_stylesheets_scanned_total",
			Help: "Style sheets scanned for the first time",
		}),
		InaccessibleSheets: factory.NewCounter(prometheus.CounterOpts{
			Name: "sheetguard_stylesheets_inaccessible_total",
			Help: "Style sheets whose rules could not be read",
		}),
		Repairs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sheetguard_repairs_total",
				Help: "Finished repair tasks by outcome",
			},
			[]string{"outcome"},
		),
		PendingRepairs: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sheetguard_repairs_pending",
			Help: "Repair tasks started but not yet settled",
		}),
		FixBatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sheetguard_fix_batches_total",
				Help: "Fix calls by result",
			},
			[]string{"result"},
		),
		FixDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sheetguard_fix_duration_seconds",
			Help:    "Time a fix call spent waiting for its batch",
			Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sheetguard_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sheetguard_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordScan records one evaluate pass. Every inaccessible sheet starts a
// repair, which stays pending until RecordRepair.
func (m *Metrics) RecordScan(scanned, inaccessible int) {
	if m == nil {
		return
	}
	m.SheetsScanned.Add(float64(scanned))
	m.InaccessibleSheets.Add(float64(inaccessible))
	m.PendingRepairs.Add(float64(inaccessible))
}

// RecordRepair records a settled repair task.
func (m *Metrics) RecordRepair(outcome string) {
	if m == nil {
		return
	}
	m.Repairs.WithLabelValues(outcome).Inc()
	m.PendingRepairs.Dec()
}

// RecordFix records a completed fix call.
func (m *Metrics) RecordFix(failed bool, duration time.Duration) {
	if m == nil {
		return
	}
	result := "complete"
	if failed {
		result = "failed"
	}
	m.FixBatches.WithLabelValues(result).Inc()
	m.FixDuration.Observe(duration.Seconds())
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
