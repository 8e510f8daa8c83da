package reconcile

import (
	"github.com/vango-dev/dilithium/pkg/element"
	"github.com/vango-dev/dilithium/pkg/host"
)

// Engine owns the roots mounted into rendering targets.
// Root ids are allocated per engine and stored on the target through the
// adapter, so a target is recognized on later calls.
type Engine struct {
	r      *Reconciler
	nextID uint64
	roots  map[uint64]*Instance
}

// NewEngine creates an engine driving adapter.
func NewEngine(adapter host.Adapter, opts ...Option) *Engine {
	return &Engine{
		r:     NewReconciler(adapter, opts...),
		roots: make(map[uint64]*Instance),
	}
}

// Reconciler returns the engine's reconciler.
func (e *Engine) Reconciler() *Reconciler { return e.r }

// Render makes target reflect el.
//
// The first call for a target mounts el, empties the target and appends
// the new node. Later calls update the root in place when el has the same
// type as the previous root element and replace the whole tree otherwise.
// A replaced tree is mounted under a new root id.
func (e *Engine) Render(el *element.Element, target host.Node) error {
	if target == nil {
		return ErrNilTarget
	}
	if _, err := element.Validate(el); err != nil {
		return err
	}

	id, tagged := e.r.adapter.RootID(target)
	root := e.roots[id]
	if !tagged || root == nil {
		if tagged {
			e.r.logger.Warn("reconcile: target carries a root id this engine did not assign",
				"root", id,
			)
		}
		e.nextID++
		id = e.nextID
		return e.r.runPass(PassRender, id, func() error {
			return e.mountRoot(id, el, target)
		})
	}

	if element.SameType(root.current, el) {
		return e.r.runPass(PassRender, id, func() error {
			return e.r.ReceiveElement(root, el)
		})
	}

	e.nextID++
	next := e.nextID
	return e.r.runPass(PassRender, next, func() error {
		e.r.logger.Debug("reconcile: replacing root",
			"root", id,
			"next", next,
			"from", element.TypeName(root.current.Type),
			"to", element.TypeName(el.Type),
		)
		e.r.Unmount(root)
		delete(e.roots, id)
		e.r.adapter.ClearRootID(target)
		return e.mountRoot(next, el, target)
	})
}

func (e *Engine) mountRoot(id uint64, el *element.Element, target host.Node) error {
	inst := e.r.instantiate(el, id)
	node, err := e.r.Mount(inst)
	if err != nil {
		return err
	}

	e.r.adapter.RemoveAllChildren(target)
	e.r.adapter.AppendChild(target, node)
	e.r.adapter.SetRootID(target, id)
	e.roots[id] = inst

	e.r.logger.Debug("reconcile: mounted root",
		"root", id,
		"type", element.TypeName(el.Type),
	)
	return nil
}

// Release unmounts the tree in target, empties it and forgets the root.
// A later Render into target is a first mount.
func (e *Engine) Release(target host.Node) error {
	if target == nil {
		return ErrNilTarget
	}
	id, tagged := e.r.adapter.RootID(target)
	root := e.roots[id]
	if !tagged || root == nil {
		return ErrUnknownRoot
	}

	return e.r.runPass(PassRelease, id, func() error {
		e.r.Unmount(root)
		e.r.adapter.RemoveAllChildren(target)
		e.r.adapter.ClearRootID(target)
		delete(e.roots, id)

		e.r.logger.Debug("reconcile: released root", "root", id)
		return nil
	})
}

// RootInstance returns the root instance mounted in target, or nil.
func (e *Engine) RootInstance(target host.Node) *Instance {
	if target == nil {
		return nil
	}
	id, ok := e.r.adapter.RootID(target)
	if !ok {
		return nil
	}
	return e.roots[id]
}

// Roots returns the number of mounted roots.
func (e *Engine) Roots() int {
	return len(e.roots)
}
