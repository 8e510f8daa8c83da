package memdom

import (
	"reflect"

	"github.com/vango-dev/dilithium/pkg/host"
	"github.com/vango-dev/dilithium/pkg/protocol"
)

// ToWire converts the subtree rooted at n to its wire form.
// Function-valued attributes are dropped; the rest are stringified.
func ToWire(n *Node) *protocol.NodeWire {
	if n == nil {
		return nil
	}
	w := &protocol.NodeWire{ID: n.ID, Tag: n.Tag, Text: n.Text}

	for k, v := range n.Attrs {
		if v == nil || reflect.TypeOf(v).Kind() == reflect.Func {
			continue
		}
		if w.Attrs == nil {
			w.Attrs = make(map[string]string, len(n.Attrs))
		}
		w.Attrs[k] = attrToString(v)
	}

	if len(n.Children) > 0 {
		w.Children = make([]*protocol.NodeWire, len(n.Children))
		for i, c := range n.Children {
			w.Children[i] = ToWire(c)
		}
	}
	return w
}

// WireOps converts one sibling group's operations to a wire batch.
// Inserted nodes carry their subtree as it stands when WireOps runs.
func WireOps(seq uint64, parent host.Node, ops []host.Operation) *protocol.OpsBatch {
	b := &protocol.OpsBatch{
		Seq:    seq,
		Parent: id(asNode(parent)),
		Ops:    make([]protocol.OpWire, len(ops)),
	}
	for i, op := range ops {
		w := protocol.OpWire{
			Op:        protocol.OpCode(op.Kind),
			Key:       op.Key,
			Node:      id(asNode(op.Node)),
			After:     id(asNode(op.After)),
			FromIndex: op.FromIndex,
			ToIndex:   op.ToIndex,
		}
		if op.Kind == host.OpInsert {
			w.Tree = ToWire(asNode(op.Node))
		}
		b.Ops[i] = w
	}
	return b
}
