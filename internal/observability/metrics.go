package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard.
type Metrics struct {
	// Render cycle metrics.
	Refreshes       *prometheus.CounterVec // labels: source={live,fallback}
	RefreshDuration prometheus.Histogram
	ValidRegions    prometheus.Gauge
	MarkersPlaced   prometheus.Gauge

	// Backend API metrics.
	APIRequests *prometheus.CounterVec   // labels: endpoint={data,health,cultures}, outcome={success,error}
	APIDuration *prometheus.HistogramVec // labels: endpoint

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram

	SnapshotsPublished *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Refreshes,
		m.RefreshDuration,
		m.ValidRegions,
		m.MarkersPlaced,
		m.APIRequests,
		m.APIDuration,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.SnapshotsPublished,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crop_dashboard",
			Name:      "refreshes_total",
			Help:      "Completed render cycles by data source.",
		}, []string{"source"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "crop_dashboard",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a fetch-aggregate-render cycle, geocoding included.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		ValidRegions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "crop_dashboard",
			Name:      "valid_regions",
			Help:      "Regions with a positive production value in the current dataset.",
		}),
		MarkersPlaced: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "crop_dashboard",
			Name:      "map_markers",
			Help:      "Markers placed on the current map.",
		}),
		APIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crop_dashboard",
			Name:      "api_requests_total",
			Help:      "Backend API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		APIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "crop_dashboard",
			Name:      "api_duration_seconds",
			Help:      "Backend API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"endpoint"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crop_dashboard",
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crop_dashboard",
			Name:      "geocode_cache_total",
			Help:      "Geocode cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "crop_dashboard",
			Name:      "geocode_api_duration_seconds",
			Help:      "Geocoding API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		SnapshotsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crop_dashboard",
			Name:      "snapshots_published_total",
			Help:      "Snapshots written to Kafka by outcome.",
		}, []string{"outcome"}),
	}
}
