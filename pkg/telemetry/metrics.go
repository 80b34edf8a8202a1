package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "livetree").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus collectors.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "livetree",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Node decision labels used by RecordNodes.
const (
	OpAdded     = "added"
	OpPreserved = "preserved"
	OpMoved     = "moved"
	OpDiscarded = "discarded"
	OpVetoed    = "vetoed"
)

// Metrics holds the Prometheus collectors.
type Metrics struct {
	flushes          *prometheus.CounterVec
	flushRounds      prometheus.Histogram
	flushDuration    prometheus.Histogram
	observerRuns     *prometheus.CounterVec
	observerErrors   *prometheus.CounterVec
	reconciles       *prometheus.CounterVec
	reconcileLatency prometheus.Histogram
	reconcileNodes   *prometheus.CounterVec
	attributeWrites  prometheus.Counter
}

// NewMetrics creates and registers the collectors.
// Registering twice against the same registry panics, as promauto does.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		flushes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   "reactive",
			Name:        "flushes_total",
			Help:        "Total number of propagation flushes",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		flushRounds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   "reactive",
			Name:        "flush_rounds",
			Help:        "Propagation rounds needed to settle one flush",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{1, 2, 3, 5, 10, 25, 50, 100},
		}),

		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   "reactive",
			Name:        "flush_duration_seconds",
			Help:        "Propagation flush duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		observerRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   "reactive",
			Name:        "observer_runs_total",
			Help:        "Total number of observer re-computations",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		observerErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   "reactive",
			Name:        "observer_errors_total",
			Help:        "Total number of failed observer re-computations",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		reconciles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   "reconcile",
			Name:        "passes_total",
			Help:        "Total number of reconcile passes",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		reconcileLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   "reconcile",
			Name:        "duration_seconds",
			Help:        "Reconcile pass duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		reconcileNodes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   "reconcile",
			Name:        "nodes_total",
			Help:        "Node decisions made by the reconciler",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		attributeWrites: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   "reconcile",
			Name:        "attribute_writes_total",
			Help:        "Attribute, property and text writes applied to live nodes",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordFlush records one completed propagation flush.
func (m *Metrics) RecordFlush(rounds int, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.flushes.WithLabelValues(status(err)).Inc()
	m.flushRounds.Observe(float64(rounds))
	m.flushDuration.Observe(d.Seconds())
}

// RecordObserverRun records one observer re-computation.
func (m *Metrics) RecordObserverRun(kind string, err error) {
	if m == nil {
		return
	}
	m.observerRuns.WithLabelValues(kind).Inc()
	if err != nil {
		m.observerErrors.WithLabelValues(kind).Inc()
	}
}

// RecordReconcile records one reconcile pass.
func (m *Metrics) RecordReconcile(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.reconciles.WithLabelValues(status(err)).Inc()
	m.reconcileLatency.Observe(d.Seconds())
}

// RecordNodes adds n decisions of the given op (OpAdded, OpPreserved, ...).
func (m *Metrics) RecordNodes(op string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.reconcileNodes.WithLabelValues(op).Add(float64(n))
}

// RecordAttributeWrites adds n attribute writes.
func (m *Metrics) RecordAttributeWrites(n int) {
	if m == nil || n == 0 {
		return
	}
	m.attributeWrites.Add(float64(n))
}
