package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "flightperf"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics holds the Prometheus collectors for report builds and dataset loads.
type Metrics struct {
	ReportBuilds        *prometheus.CounterVec   // labels: report_type, outcome={success,error}
	ReportBuildDuration *prometheus.HistogramVec // labels: report_type

	DatasetRecords   prometheus.Gauge
	DatasetMalformed prometheus.Gauge
	DatasetReloads   *prometheus.CounterVec // labels: outcome={success,error}
	DatasetLoadTime  prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ReportBuilds,
		m.ReportBuildDuration,
		m.DatasetRecords,
		m.DatasetMalformed,
		m.DatasetReloads,
		m.DatasetLoadTime,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ReportBuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_builds_total",
			Help:      "Report builds by report type and outcome.",
		}, []string{"report_type", "outcome"}),
		ReportBuildDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_build_duration_seconds",
			Help:      "Time to filter and aggregate one report.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"report_type"}),
		DatasetRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_records",
			Help:      "Records in the current dataset snapshot.",
		}),
		DatasetMalformed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_malformed_records",
			Help:      "Records in the current snapshot without a usable year or month.",
		}),
		DatasetReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_reloads_total",
			Help:      "Dataset loads by outcome.",
		}, []string{"outcome"}),
		DatasetLoadTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_load_duration_seconds",
			Help:      "Duration of a complete dataset fetch and parse.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
	}
}
