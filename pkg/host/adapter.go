// Package host defines what the reconciler needs from a rendering back-end.
//
// A back-end implements Adapter. The reconciler never inspects a Node; it
// only passes handles back to the adapter that produced them. Sibling
// reordering is described as a list of Operations that Apply replays
// through the adapter in emission order.
package host

import "github.com/vango-dev/dilithium/pkg/element"

// Node is an opaque handle to a realized host node or rendering target.
type Node any

// NodeFactory creates and configures nodes.
type NodeFactory interface {
	// CreateNode creates a detached node for tag.
	CreateNode(tag element.Tag) Node

	// SetProperties applies the delta between two attribute bags.
	// prev is nil on first application.
	SetProperties(node Node, prev, next element.Props)

	// SetTextContent replaces all content of node with text.
	SetTextContent(node Node, text string)
}

// TreeMutator changes parent/child structure.
type TreeMutator interface {
	AppendChild(parent, child Node)

	// InsertAfter places child immediately after anchor, or first when
	// anchor is nil. A child already in parent is moved.
	InsertAfter(parent, child, anchor Node)

	RemoveChild(parent, child Node)
	ReplaceChild(parent, old, replacement Node)
	RemoveAllChildren(parent Node)

	// Parent returns the node's parent, or nil when detached.
	Parent(node Node) Node
}

// RootTagger stores a root id on a rendering target.
type RootTagger interface {
	RootID(target Node) (uint64, bool)
	SetRootID(target Node, id uint64)
	ClearRootID(target Node)
}

// Adapter is the full capability set a back-end provides.
type Adapter interface {
	NodeFactory
	TreeMutator
	RootTagger
}
