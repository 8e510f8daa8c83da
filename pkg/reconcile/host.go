package reconcile

import (
	"github.com/vango-dev/dilithium/pkg/element"
	"github.com/vango-dev/dilithium/pkg/host"
)

func (r *Reconciler) mountHost(inst *Instance) (host.Node, error) {
	tag, _ := inst.current.Tag()
	node := r.adapter.CreateNode(tag)
	r.adapter.SetProperties(node, nil, inst.current.Props.Attributes())

	hs := &hostState{node: node}
	inst.host = hs

	content := inst.current.Children()
	if element.IsScalar(content) {
		hs.text = true
		r.adapter.SetTextContent(node, element.FormatScalar(content))
		return node, nil
	}

	set, nodes, err := r.mountChildren(inst, content)
	if err != nil {
		return nil, err
	}
	hs.children = set
	for _, n := range nodes {
		r.adapter.AppendChild(node, n)
	}
	return node, nil
}

// updateHost applies the property delta, then either replaces text content
// or diffs the keyed children. Switching between text and structured
// content replaces the whole content.
func (r *Reconciler) updateHost(inst *Instance, next *element.Element) error {
	hs := inst.host
	prev := inst.current
	inst.current = next

	r.adapter.SetProperties(hs.node, prev.Props.Attributes(), next.Props.Attributes())

	content := next.Children()
	switch {
	case element.IsScalar(content) && hs.text:
		text := element.FormatScalar(content)
		if text != element.FormatScalar(prev.Children()) {
			r.adapter.SetTextContent(hs.node, text)
		}
		return nil

	case element.IsScalar(content):
		r.unmountChildren(hs.children)
		hs.children = nil
		hs.text = true
		r.adapter.SetTextContent(hs.node, element.FormatScalar(content))
		return nil

	case hs.text:
		set, nodes, err := r.mountChildren(inst, content)
		if err != nil {
			return err
		}
		r.adapter.SetTextContent(hs.node, "")
		hs.text = false
		hs.children = set
		for _, n := range nodes {
			r.adapter.AppendChild(hs.node, n)
		}
		return nil
	}

	ops, err := r.updateChildren(inst, content)
	if err != nil {
		return err
	}
	r.emit(hs.node, ops)
	return nil
}
