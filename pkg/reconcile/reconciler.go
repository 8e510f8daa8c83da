package reconcile

import (
	"context"
	"log/slog"

	"github.com/vango-dev/dilithium/pkg/element"
	"github.com/vango-dev/dilithium/pkg/host"
)

// Option configures a Reconciler or Engine.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	observer Observer
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver sets the observer notified of passes, mounts and operations.
// Use MultiObserver to attach several.
func WithObserver(observer Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observer = observer
		}
	}
}

func defaultOptions() options {
	return options{
		logger:   slog.Default(),
		observer: BaseObserver{},
	}
}

// Reconciler dispatches mount, update and unmount to instance variants.
// It holds no tree state of its own beyond the stack of running passes.
type Reconciler struct {
	adapter  host.Adapter
	logger   *slog.Logger
	observer Observer

	nextPass uint64
	passes   []Pass
}

// NewReconciler creates a reconciler driving adapter.
func NewReconciler(adapter host.Adapter, opts ...Option) *Reconciler {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Reconciler{
		adapter:  adapter,
		logger:   o.logger,
		observer: o.observer,
	}
}

// Instantiate creates an unmounted instance for el.
// Behaviors produce composite instances; tags produce host instances.
func (r *Reconciler) Instantiate(el *element.Element) (*Instance, error) {
	if _, err := element.Validate(el); err != nil {
		return nil, err
	}
	return r.instantiate(el, 0), nil
}

func (r *Reconciler) instantiate(el *element.Element, root uint64) *Instance {
	inst := &Instance{r: r, root: root, current: el}
	if b, ok := el.Behavior(); ok {
		inst.kind = KindComposite
		inst.composite = &compositeState{behavior: b}
	} else {
		inst.kind = KindHost
	}
	return inst
}

// Mount realizes inst and returns the node at the top of its subtree.
// The node is detached; the caller attaches it.
func (r *Reconciler) Mount(inst *Instance) (host.Node, error) {
	var (
		node host.Node
		err  error
	)
	switch inst.kind {
	case KindComposite:
		node, err = r.mountComposite(inst)
	default:
		node, err = r.mountHost(inst)
	}
	if err != nil {
		return nil, err
	}
	inst.mounted = true
	r.observer.Mounted(r.pass(), inst)
	return node, nil
}

// ReceiveElement updates inst to reflect next.
// A next that is the very element inst already holds is a no-op.
func (r *Reconciler) ReceiveElement(inst *Instance, next *element.Element) error {
	if next == inst.current {
		return nil
	}
	return r.update(inst, next)
}

// ScheduleUpdate re-runs inst's update with its own current element.
func (r *Reconciler) ScheduleUpdate(inst *Instance) error {
	return r.update(inst, inst.current)
}

// Unmount tears down inst, children first.
// Host nodes are left in place; detaching them is the caller's job.
func (r *Reconciler) Unmount(inst *Instance) {
	switch inst.kind {
	case KindComposite:
		if cs := inst.composite; cs.rendered != nil {
			r.Unmount(cs.rendered)
			cs.rendered = nil
		}
		inst.composite.pending = nil
	default:
		if inst.host != nil && inst.host.children != nil {
			r.unmountChildren(inst.host.children)
			inst.host.children = nil
		}
	}
	inst.mounted = false
	r.observer.Unmounted(r.pass(), inst)
}

func (r *Reconciler) unmountChildren(set *childSet) {
	for _, key := range set.keys {
		r.Unmount(set.byKey[key])
	}
}

func (r *Reconciler) update(inst *Instance, next *element.Element) error {
	if inst.kind == KindComposite {
		return r.updateComposite(inst, next)
	}
	return r.updateHost(inst, next)
}

// runPass runs fn as one pass, nesting it under any pass already running.
func (r *Reconciler) runPass(kind PassKind, root uint64, fn func() error) error {
	r.nextPass++
	p := Pass{ID: r.nextPass, Kind: kind, Root: root}
	if n := len(r.passes); n > 0 {
		p.Parent = r.passes[n-1].ID
	}

	r.passes = append(r.passes, p)
	r.observer.PassStart(p)

	err := fn()

	r.passes = r.passes[:len(r.passes)-1]
	r.observer.PassEnd(p, err)
	if err != nil {
		r.logger.Debug("reconcile: pass failed",
			"pass", p.ID,
			"kind", kind.String(),
			"root", root,
			"error", err,
		)
	}
	return err
}

// reconciling reports whether a running pass is reconciling root.
func (r *Reconciler) reconciling(root uint64) bool {
	for _, p := range r.passes {
		if p.Root == root {
			return true
		}
	}
	return false
}

// pass returns the innermost running pass, or the zero Pass.
func (r *Reconciler) pass() Pass {
	if n := len(r.passes); n > 0 {
		return r.passes[n-1]
	}
	return Pass{}
}

func (r *Reconciler) emit(parent host.Node, ops []host.Operation) {
	if len(ops) == 0 {
		return
	}
	host.Apply(r.adapter, parent, ops)
	r.observer.Operations(r.pass(), parent, ops)
	if r.logger.Enabled(context.Background(), slog.LevelDebug) {
		counts := host.Count(ops)
		r.logger.Debug("reconcile: applied operations",
			"inserts", counts[host.OpInsert],
			"moves", counts[host.OpMove],
			"removes", counts[host.OpRemove],
		)
	}
}
