package reconcile

import (
	"github.com/vango-dev/dilithium/pkg/element"
	"github.com/vango-dev/dilithium/pkg/host"
)

func (r *Reconciler) mountComposite(inst *Instance) (host.Node, error) {
	cs := inst.composite
	cs.busy = true
	defer func() { cs.busy = false }()

	if cs.behavior.InitialState != nil {
		cs.state = cs.behavior.InitialState(inst.current.Props)
	}
	if cs.state == nil {
		cs.state = element.State{}
	}

	rendered, err := r.render(inst)
	if err != nil {
		return nil, err
	}

	child := r.instantiate(rendered, inst.root)
	node, err := r.Mount(child)
	if err != nil {
		return nil, err
	}
	cs.rendered = child
	return node, nil
}

// updateComposite commits pending state, re-renders and reconciles the
// rendered child. A rendered type change replaces the child's node in place.
func (r *Reconciler) updateComposite(inst *Instance, next *element.Element) error {
	cs := inst.composite
	cs.busy = true
	defer func() { cs.busy = false }()

	if cs.pending != nil {
		cs.state = cs.pending
		cs.pending = nil
	}
	inst.current = next

	rendered, err := r.render(inst)
	if err != nil {
		return err
	}

	prev := cs.rendered
	if element.SameType(prev.current, rendered) {
		return r.ReceiveElement(prev, rendered)
	}

	oldNode := prev.Node()
	parent := r.adapter.Parent(oldNode)
	r.Unmount(prev)
	cs.rendered = nil

	child := r.instantiate(rendered, inst.root)
	node, err := r.Mount(child)
	if err != nil {
		return err
	}
	cs.rendered = child
	if parent != nil {
		r.adapter.ReplaceChild(parent, oldNode, node)
	}

	r.logger.Debug("reconcile: replaced rendered child",
		"behavior", element.TypeName(cs.behavior),
		"from", element.TypeName(prev.current.Type),
		"to", element.TypeName(rendered.Type),
	)
	return nil
}

func (r *Reconciler) render(inst *Instance) (*element.Element, error) {
	b := inst.composite.behavior
	el, err := b.Render(inst)
	if err != nil {
		return nil, &RenderError{Behavior: element.TypeName(b), Err: err}
	}
	if _, err := element.Validate(el); err != nil {
		return nil, &RenderError{Behavior: element.TypeName(b), Err: err}
	}
	return el, nil
}
