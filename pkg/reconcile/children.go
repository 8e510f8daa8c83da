package reconcile

import (
	"github.com/vango-dev/dilithium/pkg/element"
	"github.com/vango-dev/dilithium/pkg/host"
)

// mountChildren flattens children, then instantiates and mounts one
// instance per entry. It returns the nodes in sibling order for the parent
// to append.
func (r *Reconciler) mountChildren(parent *Instance, children any) (*childSet, []host.Node, error) {
	flat, err := element.Flatten(children)
	if err != nil {
		return nil, nil, err
	}

	set := newChildSet(len(flat))
	nodes := make([]host.Node, 0, len(flat))
	for i, c := range flat {
		child := r.instantiate(c.Element, parent.root)
		child.key = c.Key
		child.mountIndex = i

		node, err := r.Mount(child)
		if err != nil {
			return nil, nil, err
		}
		set.add(child)
		nodes = append(nodes, node)
	}
	return set, nodes, nil
}

// updateChildren reconciles a host instance's children against a new
// children value and returns the operations that reorder the host nodes.
//
// One pass runs over the new order. lastIndex is the highest previous
// position of any reused child seen so far; a reused child whose previous
// position is below it has been overtaken and moves after lastPlaced.
// New and replaced children are inserted after lastPlaced. Removals of
// replaced and vanished children follow in previous sibling order.
func (r *Reconciler) updateChildren(parent *Instance, children any) ([]host.Operation, error) {
	next, err := element.Flatten(children)
	if err != nil {
		return nil, err
	}

	prev := parent.host.children
	set := newChildSet(len(next))

	var (
		ops        []host.Operation
		replaced   map[string]host.Operation
		lastIndex  int
		lastPlaced host.Node
	)

	for nextIndex, c := range next {
		old := prev.byKey[c.Key]

		if old != nil && element.SameType(old.current, c.Element) {
			if err := r.ReceiveElement(old, c.Element); err != nil {
				return nil, err
			}
			if old.mountIndex < lastIndex {
				ops = append(ops, host.Operation{
					Kind:      host.OpMove,
					Key:       c.Key,
					Node:      old.Node(),
					After:     lastPlaced,
					FromIndex: old.mountIndex,
					ToIndex:   nextIndex,
				})
			}
			lastIndex = max(lastIndex, old.mountIndex)
			old.mountIndex = nextIndex
			set.add(old)
			lastPlaced = old.Node()
			continue
		}

		if old != nil {
			lastIndex = max(lastIndex, old.mountIndex)
			if replaced == nil {
				replaced = make(map[string]host.Operation)
			}
			replaced[c.Key] = host.Operation{
				Kind:      host.OpRemove,
				Key:       c.Key,
				Node:      old.Node(),
				FromIndex: old.mountIndex,
			}
			r.Unmount(old)
		}

		child := r.instantiate(c.Element, parent.root)
		child.key = c.Key
		child.mountIndex = nextIndex
		node, err := r.Mount(child)
		if err != nil {
			return nil, err
		}
		ops = append(ops, host.Operation{
			Kind:    host.OpInsert,
			Key:     c.Key,
			Node:    node,
			After:   lastPlaced,
			ToIndex: nextIndex,
		})
		set.add(child)
		lastPlaced = node
	}

	for _, key := range prev.keys {
		if op, ok := replaced[key]; ok {
			ops = append(ops, op)
			continue
		}
		if _, kept := set.byKey[key]; kept {
			continue
		}
		old := prev.byKey[key]
		ops = append(ops, host.Operation{
			Kind:      host.OpRemove,
			Key:       key,
			Node:      old.Node(),
			FromIndex: old.mountIndex,
		})
		r.Unmount(old)
	}

	parent.host.children = set
	return ops, nil
}
