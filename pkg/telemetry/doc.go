// Package telemetry provides Prometheus metrics and OpenTelemetry tracing
// for the reactive scheduler and the tree reconciler.
//
// Both types are nil-safe: a nil *Metrics or *Tracer records nothing, so
// the core packages call them unconditionally.
//
// # Metrics
//
//	m := telemetry.NewMetrics(
//	    telemetry.WithNamespace("myapp"),
//	    telemetry.WithRegistry(prometheus.NewRegistry()),
//	)
//	sched := reactive.NewScheduler(reactive.WithMetrics(m))
//
// Metrics collected:
//   - <ns>_reactive_flushes_total: propagation flushes by outcome
//   - <ns>_reactive_flush_rounds: rounds per flush
//   - <ns>_reactive_flush_duration_seconds: flush wall time
//   - <ns>_reactive_observer_runs_total: observer runs by kind
//   - <ns>_reactive_observer_errors_total: failed observer runs by kind
//   - <ns>_reconcile_passes_total: reconcile passes by outcome
//   - <ns>_reconcile_duration_seconds: reconcile wall time
//   - <ns>_reconcile_nodes_total: node decisions by op
//   - <ns>_reconcile_attribute_writes_total: attribute and property writes
//
// # Tracing
//
// The tracer resolves from the global OpenTelemetry provider unless one
// is supplied:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	tr := telemetry.NewTracer(telemetry.WithTracerProvider(tp))
package telemetry
