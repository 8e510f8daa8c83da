package telemetry

import (
	"context"

	"github.com/vango-dev/dilithium/pkg/host"
	"github.com/vango-dev/dilithium/pkg/reconcile"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name.
const defaultTracerName = "dilithium"

// TracerConfig configures pass tracing.
type TracerConfig struct {
	// TracerName is the name of the tracer (default: "dilithium").
	TracerName string

	// Tracer overrides the tracer resolved from the global provider.
	Tracer trace.Tracer
}

// TracerOption configures pass tracing.
type TracerOption func(*TracerConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracerOption {
	return func(c *TracerConfig) {
		c.TracerName = name
	}
}

// WithTracer sets the tracer directly.
func WithTracer(tracer trace.Tracer) TracerOption {
	return func(c *TracerConfig) {
		c.Tracer = tracer
	}
}

// Tracer turns passes into spans.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer.
func NewTracer(opts ...TracerOption) *Tracer {
	config := TracerConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Tracer == nil {
		config.Tracer = otel.Tracer(config.TracerName)
	}
	return &Tracer{tracer: config.Tracer}
}

// Observer returns an observer for a single engine. Top-level pass spans
// are children of the span in ctx, if any.
func (t *Tracer) Observer(ctx context.Context) reconcile.Observer {
	if ctx == nil {
		ctx = context.Background()
	}
	return &traceObserver{
		tracer: t.tracer,
		ctx:    ctx,
		spans:  make(map[uint64]*passSpan),
	}
}

type passSpan struct {
	ctx      context.Context
	span     trace.Span
	mounts   int
	unmounts int
	ops      map[host.OpKind]int
}

type traceObserver struct {
	tracer trace.Tracer
	ctx    context.Context
	spans  map[uint64]*passSpan
}

func (o *traceObserver) PassStart(p reconcile.Pass) {
	parent := o.ctx
	if ps, ok := o.spans[p.Parent]; ok {
		parent = ps.ctx
	}

	ctx, span := o.tracer.Start(parent, "dilithium."+p.Kind.String(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.Int64("dilithium.pass", int64(p.ID)),
			attribute.Int64("dilithium.root", int64(p.Root)),
		),
	)
	o.spans[p.ID] = &passSpan{ctx: ctx, span: span, ops: make(map[host.OpKind]int)}
}

func (o *traceObserver) PassEnd(p reconcile.Pass, err error) {
	ps, ok := o.spans[p.ID]
	if !ok {
		return
	}
	delete(o.spans, p.ID)

	ps.span.SetAttributes(
		attribute.Int("dilithium.mounts", ps.mounts),
		attribute.Int("dilithium.unmounts", ps.unmounts),
		attribute.Int("dilithium.inserts", ps.ops[host.OpInsert]),
		attribute.Int("dilithium.moves", ps.ops[host.OpMove]),
		attribute.Int("dilithium.removes", ps.ops[host.OpRemove]),
	)
	if err != nil {
		ps.span.RecordError(err)
		ps.span.SetStatus(codes.Error, err.Error())
	} else {
		ps.span.SetStatus(codes.Ok, "")
	}
	ps.span.End()
}

func (o *traceObserver) Mounted(p reconcile.Pass, _ *reconcile.Instance) {
	if ps, ok := o.spans[p.ID]; ok {
		ps.mounts++
	}
}

func (o *traceObserver) Unmounted(p reconcile.Pass, _ *reconcile.Instance) {
	if ps, ok := o.spans[p.ID]; ok {
		ps.unmounts++
	}
}

func (o *traceObserver) Operations(p reconcile.Pass, _ host.Node, ops []host.Operation) {
	ps, ok := o.spans[p.ID]
	if !ok {
		return
	}
	for kind, n := range host.Count(ops) {
		ps.ops[kind] += n
	}
}
