package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/dilithium/pkg/host"
	"github.com/vango-dev/dilithium/pkg/reconcile"
)

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "dilithium").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for pass duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
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
		Namespace: "dilithium",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the reconciliation metrics.
// It is safe to share between engines.
type Metrics struct {
	passesTotal     *prometheus.CounterVec
	passDuration    *prometheus.HistogramVec
	mountsTotal     prometheus.Counter
	unmountsTotal   prometheus.Counter
	operationsTotal *prometheus.CounterVec
	liveInstances   prometheus.Gauge
}

// NewMetrics registers the metrics and returns them.
// Registering twice with the same registry panics.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		passesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "passes_total",
			Help:        "Total number of reconciliation passes",
			ConstLabels: config.ConstLabels,
		}, []string{"kind", "status"}),

		passDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "pass_duration_seconds",
			Help:        "Reconciliation pass duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"kind"}),

		mountsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "mounts_total",
			Help:        "Total number of mounted instances",
			ConstLabels: config.ConstLabels,
		}),

		unmountsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "unmounts_total",
			Help:        "Total number of unmounted instances",
			ConstLabels: config.ConstLabels,
		}),

		operationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "operations_total",
			Help:        "Total sibling operations applied, by op",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		liveInstances: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "live_instances",
			Help:        "Number of currently mounted instances",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Observer returns an observer feeding m for a single engine.
func (m *Metrics) Observer() reconcile.Observer {
	return &metricsObserver{m: m, started: make(map[uint64]time.Time)}
}

type metricsObserver struct {
	m       *Metrics
	started map[uint64]time.Time
}

func (o *metricsObserver) PassStart(p reconcile.Pass) {
	o.started[p.ID] = time.Now()
}

func (o *metricsObserver) PassEnd(p reconcile.Pass, err error) {
	kind := p.Kind.String()
	if start, ok := o.started[p.ID]; ok {
		o.m.passDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
		delete(o.started, p.ID)
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	o.m.passesTotal.WithLabelValues(kind, status).Inc()
}

func (o *metricsObserver) Mounted(reconcile.Pass, *reconcile.Instance) {
	o.m.mountsTotal.Inc()
	o.m.liveInstances.Inc()
}

func (o *metricsObserver) Unmounted(reconcile.Pass, *reconcile.Instance) {
	o.m.unmountsTotal.Inc()
	o.m.liveInstances.Dec()
}

func (o *metricsObserver) Operations(_ reconcile.Pass, _ host.Node, ops []host.Operation) {
	for kind, n := range host.Count(ops) {
		o.m.operationsTotal.WithLabelValues(kind.String()).Add(float64(n))
	}
}
