package preview

import (
	"context"

	"github.com/vango-dev/dilithium/internal/scene"
	"github.com/vango-dev/dilithium/pkg/host"
	"github.com/vango-dev/dilithium/pkg/memdom"
	"github.com/vango-dev/dilithium/pkg/protocol"
	"github.com/vango-dev/dilithium/pkg/reconcile"
)

// batchCollector turns each operation batch into its wire form as the pass
// applies it.
type batchCollector struct {
	reconcile.BaseObserver
	seq     uint64
	batches []*protocol.OpsBatch
}

func (c *batchCollector) Operations(_ reconcile.Pass, parent host.Node, ops []host.Operation) {
	c.seq++
	c.batches = append(c.batches, memdom.WireOps(c.seq, parent, ops))
}

// take returns the batches collected since the last call.
func (c *batchCollector) take() []*protocol.OpsBatch {
	out := c.batches
	c.batches = nil
	return out
}

// replay is one independent run of the scene.
type replay struct {
	doc     *memdom.Document
	target  *memdom.Node
	engine  *reconcile.Engine
	batches *batchCollector
	player  *scene.Player
}

func (s *Server) newReplay(ctx context.Context) *replay {
	doc := memdom.New()
	target := doc.Container("main")
	batches := &batchCollector{}

	observers := reconcile.MultiObserver{batches}
	if s.opts.Metrics != nil {
		observers = append(observers, s.opts.Metrics.Observer())
	}
	if s.opts.Tracer != nil {
		observers = append(observers, s.opts.Tracer.Observer(ctx))
	}

	engine := reconcile.NewEngine(doc,
		reconcile.WithLogger(s.logger),
		reconcile.WithObserver(observers),
	)
	return &replay{
		doc:     doc,
		target:  target,
		engine:  engine,
		batches: batches,
		player:  scene.NewPlayer(s.opts.Scene, s.opts.Registry, engine, target),
	}
}

// release unmounts the replayed tree so its instances leave the live
// instance gauge.
func (r *replay) release() {
	if r.engine.RootInstance(r.target) == nil {
		return
	}
	r.engine.Release(r.target)
}

// tree returns the wire form of the rendered root.
func (r *replay) tree() *protocol.NodeWire {
	return memdom.ToWire(r.target)
}
