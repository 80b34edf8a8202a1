package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func histogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestMetrics_RecordFlush(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))

	m.RecordFlush(2, time.Millisecond, nil)
	m.RecordFlush(101, time.Millisecond, errors.New("cycle"))

	if got := counterValue(t, m.flushes.WithLabelValues("success")); got != 1 {
		t.Errorf("flushes(success) = %v, want 1", got)
	}
	if got := counterValue(t, m.flushes.WithLabelValues("error")); got != 1 {
		t.Errorf("flushes(error) = %v, want 1", got)
	}
	if got := histogramCount(t, m.flushRounds); got != 2 {
		t.Errorf("flush_rounds count = %d, want 2", got)
	}
}

func TestMetrics_RecordObserverRun(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))

	m.RecordObserverRun("derived", nil)
	m.RecordObserverRun("effect", nil)
	m.RecordObserverRun("effect", errors.New("boom"))

	if got := counterValue(t, m.observerRuns.WithLabelValues("effect")); got != 2 {
		t.Errorf("observer_runs(effect) = %v, want 2", got)
	}
	if got := counterValue(t, m.observerErrors.WithLabelValues("effect")); got != 1 {
		t.Errorf("observer_errors(effect) = %v, want 1", got)
	}
	if got := counterValue(t, m.observerErrors.WithLabelValues("derived")); got != 0 {
		t.Errorf("observer_errors(derived) = %v, want 0", got)
	}
}

func TestMetrics_RecordReconcile(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()), WithNamespace("test"))

	m.RecordReconcile(time.Millisecond, nil)
	m.RecordNodes(OpAdded, 3)
	m.RecordNodes(OpDiscarded, 0)
	m.RecordAttributeWrites(4)

	if got := counterValue(t, m.reconciles.WithLabelValues("success")); got != 1 {
		t.Errorf("passes(success) = %v, want 1", got)
	}
	if got := counterValue(t, m.reconcileNodes.WithLabelValues(OpAdded)); got != 3 {
		t.Errorf("nodes(added) = %v, want 3", got)
	}
	if got := counterValue(t, m.attributeWrites); got != 4 {
		t.Errorf("attribute_writes = %v, want 4", got)
	}
	if got := histogramCount(t, m.reconcileLatency); got != 1 {
		t.Errorf("duration count = %d, want 1", got)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.RecordFlush(1, time.Second, nil)
	m.RecordObserverRun("effect", errors.New("x"))
	m.RecordReconcile(time.Second, nil)
	m.RecordNodes(OpMoved, 1)
	m.RecordAttributeWrites(1)
}

func TestMetrics_RegistersWithNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("ns"),
		WithConstLabels(prometheus.Labels{"app": "demo"}))
	m.RecordFlush(1, time.Millisecond, nil)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "ns_reactive_flushes_total" {
			found = true
			labels := f.GetMetric()[0].GetLabel()
			hasApp := false
			for _, l := range labels {
				if l.GetName() == "app" && l.GetValue() == "demo" {
					hasApp = true
				}
			}
			if !hasApp {
				t.Error("expected const label app=demo")
			}
		}
	}
	if !found {
		t.Error("expected ns_reactive_flushes_total to be registered")
	}
}

func TestTracer_StartEnd(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	tr := NewTracer(WithTracerProvider(tp), WithTracerName("test"))

	_, span := tr.Start(context.Background(), "reconcile", attribute.String("root", "div"))
	End(span, nil, attribute.Int("nodes.added", 2))

	_, span = tr.Start(context.Background(), "flush")
	End(span, errors.New("cycle"))

	ended := sr.Ended()
	if len(ended) != 2 {
		t.Fatalf("ended spans = %d, want 2", len(ended))
	}
	if ended[0].Name() != "reconcile" {
		t.Errorf("span[0] name = %q, want reconcile", ended[0].Name())
	}
	if ended[0].Status().Code != codes.Ok {
		t.Errorf("span[0] status = %v, want Ok", ended[0].Status().Code)
	}
	if ended[1].Status().Code != codes.Error {
		t.Errorf("span[1] status = %v, want Error", ended[1].Status().Code)
	}
	if len(ended[1].Events()) == 0 {
		t.Error("expected recorded error event on failed span")
	}
}

func TestTracer_NilIsNoop(t *testing.T) {
	var tr *Tracer
	ctx, span := tr.Start(context.Background(), "noop")
	if ctx == nil || span == nil {
		t.Fatal("nil tracer must still return a usable context and span")
	}
	End(span, nil)
}
