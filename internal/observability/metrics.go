package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "asteroid_impact"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// impact service.
type Metrics struct {
	// Calculator metrics.
	Calculations   *prometheus.CounterVec // labels: source={http,stream,cli}, outcome={success,invalid}
	EnergyMegatons prometheus.Histogram
	DamageLevels   *prometheus.CounterVec // labels: level

	// HTTP metrics.
	HTTPRequests *prometheus.CounterVec   // labels: route, status
	HTTPDuration *prometheus.HistogramVec // labels: route

	// NeoWs gallery metrics.
	NeoWsRequests    *prometheus.CounterVec // labels: outcome={success,not_found,error}
	NeoWsCache       *prometheus.CounterVec // labels: result={hit,miss,expired}
	NeoWsAPIDuration prometheus.Histogram
	GallerySource    *prometheus.CounterVec // labels: source={neows,static}
	NeoWsEnabled     prometheus.Gauge

	// Scenario stream metrics.
	MessagesConsumed        prometheus.Counter
	MessagesProduced        prometheus.Counter
	TransformErrors         prometheus.Counter
	PipelineRunning         prometheus.Gauge
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Impact calculations by request source and outcome.",
		}, []string{"source", "outcome"}),
		EnergyMegatons: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "energy_megatons",
			Help:      "Distribution of computed impact energies in megatons of TNT.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 10, 12),
		}),
		DamageLevels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "damage_level_total",
			Help:      "Computed impacts by damage level.",
		}, []string{"level"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}, []string{"route"}),
		NeoWsRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "neows_requests_total",
			Help:      "NASA NeoWs lookups by outcome.",
		}, []string{"outcome"}),
		NeoWsCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "neows_cache_total",
			Help:      "NeoWs cache lookups by result.",
		}, []string{"result"}),
		NeoWsAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "neows_api_duration_seconds",
			Help:      "NASA NeoWs request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GallerySource: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gallery_responses_total",
			Help:      "Gallery responses by the source that served them.",
		}, []string{"source"}),
		NeoWsEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "neows_enabled",
			Help:      "1 when the live NeoWs gallery is enabled, 0 otherwise.",
		}),
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Total scenario messages read from the source topic.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Total impact reports written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      "Total scenario messages that could not be computed.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the scenario stream is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-compute-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Calculations,
		m.EnergyMegatons,
		m.DamageLevels,
		m.HTTPRequests,
		m.HTTPDuration,
		m.NeoWsRequests,
		m.NeoWsCache,
		m.NeoWsAPIDuration,
		m.GallerySource,
		m.NeoWsEnabled,
		m.MessagesConsumed,
		m.MessagesProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
	}
}

// ObserveCalculation records the outcome of one impact calculation.
func (m *Metrics) ObserveCalculation(source string, megatons float64, level string, err error) {
	if err != nil {
		m.Calculations.WithLabelValues(source, "invalid").Inc()
		return
	}
	m.Calculations.WithLabelValues(source, "success").Inc()
	m.EnergyMegatons.Observe(megatons)
	m.DamageLevels.WithLabelValues(level).Inc()
}
