// Package telemetry provides reconcile observers for Prometheus metrics and
// OpenTelemetry tracing.
//
// Both types are shared, concurrency-safe collectors that hand out one
// observer per engine. An engine runs passes on a single goroutine, so the
// observers themselves keep per-pass bookkeeping without locking.
//
// # Prometheus Metrics
//
//	reg := prometheus.NewRegistry()
//	metrics := telemetry.NewMetrics(
//	    telemetry.WithNamespace("myapp"),
//	    telemetry.WithRegistry(reg),
//	)
//	engine := reconcile.NewEngine(doc, reconcile.WithObserver(metrics.Observer()))
//
// Metrics collected:
//   - dilithium_passes_total: Counter of passes by kind and status
//   - dilithium_pass_duration_seconds: Histogram of pass duration by kind
//   - dilithium_mounts_total: Counter of mounted instances
//   - dilithium_unmounts_total: Counter of unmounted instances
//   - dilithium_operations_total: Counter of sibling operations by op
//   - dilithium_live_instances: Gauge of mounted instances
//
// # OpenTelemetry Tracing
//
// Each pass becomes a span named after its kind ("dilithium.render",
// "dilithium.setState", ...). A pass started from inside another pass is a
// child span of the enclosing one.
//
//	tracer := telemetry.NewTracer(telemetry.WithTracerName("my-app"))
//	engine := reconcile.NewEngine(doc, reconcile.WithObserver(tracer.Observer(ctx)))
//
// The tracer uses the global OpenTelemetry tracer provider unless one is
// given with WithTracer.
package telemetry
