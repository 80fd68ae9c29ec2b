package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "nyc311_elt"

// Metrics holds the Prometheus counters, histograms, and gauges for the pipeline.
type Metrics struct {
	PipelineRunning prometheus.Gauge
	StageDuration   *prometheus.HistogramVec // labels: stage
	StageFailures   *prometheus.CounterVec   // labels: stage

	// Warehouse metrics.
	QueryDuration *prometheus.HistogramVec // labels: operation
	TableRows     *prometheus.GaugeVec     // labels: table

	// Ingest and analysis metrics.
	BytesFetched      prometheus.Counter
	HotspotComplaints prometheus.Gauge
	ReportsPublished  prometheus.Counter

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec   // labels: outcome={success,error,empty}
	GeocodeAPIDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)
	prometheus.MustRegister(
		m.PipelineRunning,
		m.StageDuration,
		m.StageFailures,
		m.QueryDuration,
		m.TableRows,
		m.BytesFetched,
		m.HotspotComplaints,
		m.ReportsPublished,
		m.GeocodeRequests,
		m.GeocodeAPIDuration,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}

	return &Metrics{
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      help("1 while a stage sequence is running, 0 otherwise."),
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      help("Wall-clock duration of a pipeline stage."),
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"stage"}),
		StageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_failures_total",
			Help:      help("Total stage runs that returned an error."),
		}, []string{"stage"}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "warehouse_query_duration_seconds",
			Help:      help("DuckDB statement duration by operation."),
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"operation"}),
		TableRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "table_rows",
			Help:      help("Row count of a warehouse table after it was rebuilt."),
		}, []string{"table"}),
		BytesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "socrata_bytes_fetched_total",
			Help:      help("Bytes downloaded from the Socrata API."),
		}),
		HotspotComplaints: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "hotspot_complaints",
			Help:      help("Complaint count of the densest spatial bin."),
		}),
		ReportsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_published_total",
			Help:      help("Trend report rows published to Kafka."),
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      help("Reverse geocoding requests by outcome."),
		}, []string{"outcome"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      help("Mapbox API request duration in seconds."),
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}
