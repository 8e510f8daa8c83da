package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/vango-dev/dilithium/pkg/element"
	"github.com/vango-dev/dilithium/pkg/memdom"
	"github.com/vango-dev/dilithium/pkg/reconcile"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/embedded"
	"go.opentelemetry.io/otel/trace/noop"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	return m.GetGauge().GetValue()
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

func list(keys ...string) *element.Element {
	children := make([]any, len(keys))
	for i, k := range keys {
		children[i] = element.H("li", element.Props{"key": k}, k)
	}
	return element.H("ul", nil, children)
}

func TestMetricsObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("test"))

	doc := memdom.New()
	target := doc.Container("main")
	e := reconcile.NewEngine(doc, reconcile.WithObserver(m.Observer()))

	if err := e.Render(list("a", "b", "c"), target); err != nil {
		t.Fatal(err)
	}
	if err := e.Render(list("c", "a", "d"), target); err != nil {
		t.Fatal(err)
	}
	if err := e.Render(&element.Element{}, target); err == nil {
		t.Fatal("expected invalid element error")
	}

	if got := counterValue(t, m.passesTotal.WithLabelValues("render", "success")); got != 2 {
		t.Errorf("render passes = %v, want 2", got)
	}
	if got := histogramCount(t, m.passDuration.WithLabelValues("render")); got != 2 {
		t.Errorf("duration samples = %d, want 2", got)
	}
	// ul + 3 li, then d inserted.
	if got := counterValue(t, m.mountsTotal); got != 5 {
		t.Errorf("mounts = %v, want 5", got)
	}
	if got := counterValue(t, m.unmountsTotal); got != 1 {
		t.Errorf("unmounts = %v, want 1", got)
	}
	if got := gaugeValue(t, m.liveInstances); got != 4 {
		t.Errorf("live instances = %v, want 4", got)
	}
	if got := counterValue(t, m.operationsTotal.WithLabelValues("MOVE")); got != 1 {
		t.Errorf("moves = %v, want 1", got)
	}
	if got := counterValue(t, m.operationsTotal.WithLabelValues("INSERT")); got != 1 {
		t.Errorf("inserts = %v, want 1", got)
	}
	if got := counterValue(t, m.operationsTotal.WithLabelValues("REMOVE")); got != 1 {
		t.Errorf("removes = %v, want 1", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "test_passes_total" {
			found = true
		}
	}
	if !found {
		t.Error("test_passes_total not registered")
	}
}

func TestMetricsRecordsFailedPass(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg))

	boom := errors.New("boom")
	broken := &element.Behavior{
		Name: "Broken",
		Render: func(element.Self) (*element.Element, error) {
			return nil, boom
		},
	}

	doc := memdom.New()
	e := reconcile.NewEngine(doc, reconcile.WithObserver(m.Observer()))
	if err := e.Render(element.C(broken, nil), doc.Container("main")); !errors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}

	if got := counterValue(t, m.passesTotal.WithLabelValues("render", "error")); got != 1 {
		t.Errorf("failed passes = %v, want 1", got)
	}
}

type fakeTracer struct {
	embedded.Tracer
	spans []*fakeSpan
}

func (f *fakeTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	s := &fakeSpan{name: name, attrs: cfg.Attributes()}
	if parent, ok := trace.SpanFromContext(ctx).(*fakeSpan); ok {
		s.parent = parent
	}
	f.spans = append(f.spans, s)
	return trace.ContextWithSpan(ctx, s), s
}

type fakeSpan struct {
	noop.Span
	name   string
	attrs  []attribute.KeyValue
	parent *fakeSpan
	status codes.Code
	errs   []error
	ended  bool
}

func (s *fakeSpan) End(...trace.SpanEndOption) { s.ended = true }
func (s *fakeSpan) SetStatus(code codes.Code, _ string) { s.status = code }
func (s *fakeSpan) RecordError(err error, _ ...trace.EventOption) { s.errs = append(s.errs, err) }
func (s *fakeSpan) SetAttributes(kv ...attribute.KeyValue) { s.attrs = append(s.attrs, kv...) }

func (s *fakeSpan) attr(key string) (attribute.Value, bool) {
	for _, kv := range s.attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

var counter = &element.Behavior{
	Name: "Counter",
	InitialState: func(props element.Props) element.State {
		return element.State{"count": props["count"]}
	},
	Render: func(self element.Self) (*element.Element, error) {
		return element.H("span", nil, self.State()["count"]), nil
	},
}

func TestTracerSpans(t *testing.T) {
	ft := &fakeTracer{}
	tr := NewTracer(WithTracer(ft))

	doc := memdom.New()
	target := doc.Container("main")
	e := reconcile.NewEngine(doc, reconcile.WithObserver(tr.Observer(context.Background())))

	if err := e.Render(list("a", "b"), target); err != nil {
		t.Fatal(err)
	}
	if err := e.Render(list("b", "a"), target); err != nil {
		t.Fatal(err)
	}

	if len(ft.spans) != 2 {
		t.Fatalf("spans = %d, want 2", len(ft.spans))
	}
	first, second := ft.spans[0], ft.spans[1]
	if first.name != "dilithium.render" || !first.ended || first.status != codes.Ok {
		t.Errorf("first span = %+v", first)
	}
	if v, _ := first.attr("dilithium.mounts"); v.AsInt64() != 3 {
		t.Errorf("mounts attr = %v, want 3", v.AsInt64())
	}
	if v, _ := second.attr("dilithium.moves"); v.AsInt64() != 1 {
		t.Errorf("moves attr = %v, want 1", v.AsInt64())
	}
	if v, ok := second.attr("dilithium.root"); !ok || v.AsInt64() != 1 {
		t.Errorf("root attr = %v, want 1", v.AsInt64())
	}
}

func TestTracerNestsPasses(t *testing.T) {
	ft := &fakeTracer{}
	tr := NewTracer(WithTracer(ft))

	doc := memdom.New()
	e := reconcile.NewEngine(doc, reconcile.WithObserver(tr.Observer(context.Background())))

	other := doc.Container("aside")
	if err := e.Render(element.C(counter, element.Props{"count": 0}), other); err != nil {
		t.Fatal(err)
	}
	ctr := e.RootInstance(other)

	poker := &element.Behavior{
		Name: "Poker",
		Render: func(element.Self) (*element.Element, error) {
			if err := ctr.SetState(element.State{"count": 1}); err != nil {
				return nil, err
			}
			return element.H("p", nil), nil
		},
	}
	if err := e.Render(element.C(poker, nil), doc.Container("main")); err != nil {
		t.Fatal(err)
	}

	if len(ft.spans) != 3 {
		t.Fatalf("spans = %d, want 3", len(ft.spans))
	}
	outer, inner := ft.spans[1], ft.spans[2]
	if inner.name != "dilithium.setState" || inner.parent != outer {
		t.Errorf("inner span = %s, parent = %v", inner.name, inner.parent)
	}
}

func TestTracerRecordsErrors(t *testing.T) {
	ft := &fakeTracer{}
	tr := NewTracer(WithTracer(ft))

	doc := memdom.New()
	e := reconcile.NewEngine(doc, reconcile.WithObserver(tr.Observer(context.Background())))
	if err := e.Render(element.H("div", nil, struct{}{}), doc.Container("main")); err == nil {
		t.Fatal("expected error")
	}

	if len(ft.spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(ft.spans))
	}
	s := ft.spans[0]
	if s.status != codes.Error || len(s.errs) != 1 || !s.ended {
		t.Errorf("span = %+v", s)
	}
}
