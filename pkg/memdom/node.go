package memdom

import (
	"fmt"

	"github.com/vango-dev/dilithium/pkg/element"
	"github.com/vango-dev/dilithium/pkg/host"
)

// Node is a realized node in a Document.
type Node struct {
	ID       uint64
	Tag      string
	Attrs    map[string]any
	Text     string
	Children []*Node

	parent  *Node
	rootID  uint64
	hasRoot bool
}

// Parent returns the parent node, or nil when detached.
func (n *Node) Parent() *Node {
	return n.parent
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool {
	return n.Tag == string(element.TextTag)
}

// TextContent returns the concatenated text of n and its descendants.
func (n *Node) TextContent() string {
	if len(n.Children) == 0 {
		return n.Text
	}
	var s string
	for _, c := range n.Children {
		s += c.TextContent()
	}
	return s
}

// String returns the node's tag and id.
func (n *Node) String() string {
	return fmt.Sprintf("%s#%d", n.Tag, n.ID)
}

func (n *Node) indexOf(child *Node) int {
	for i, c := range n.Children {
		if c == child {
			return i
		}
	}
	return -1
}

func (n *Node) detach(child *Node) {
	if i := n.indexOf(child); i >= 0 {
		n.Children = append(n.Children[:i], n.Children[i+1:]...)
		child.parent = nil
	}
}

// Call records one adapter call.
type Call struct {
	Method string
	Node   uint64 // Target (parent for structural calls)
	Child  uint64 // Child/old node, when relevant
	Other  uint64 // Anchor/replacement node, when relevant
}

// Document is the in-memory host adapter.
// It is not safe for concurrent use.
type Document struct {
	nextID uint64
	Log    []Call
}

// New creates an empty Document.
func New() *Document {
	return &Document{}
}

var _ host.Adapter = (*Document)(nil)

// Container creates an unmanaged node to render into.
func (d *Document) Container(tag string) *Node {
	return d.newNode(tag)
}

// ResetLog clears the call log.
func (d *Document) ResetLog() {
	d.Log = nil
}

// Calls returns how many logged calls used method.
func (d *Document) Calls(method string) int {
	n := 0
	for _, c := range d.Log {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (d *Document) newNode(tag string) *Node {
	d.nextID++
	return &Node{ID: d.nextID, Tag: tag, Attrs: make(map[string]any)}
}

func (d *Document) record(method string, node, child, other *Node) {
	d.Log = append(d.Log, Call{Method: method, Node: id(node), Child: id(child), Other: id(other)})
}

func id(n *Node) uint64 {
	if n == nil {
		return 0
	}
	return n.ID
}

func asNode(n host.Node) *Node {
	if n == nil {
		return nil
	}
	node, ok := n.(*Node)
	if !ok {
		panic(fmt.Sprintf("memdom: foreign node %T", n))
	}
	return node
}

// CreateNode implements host.NodeFactory.
func (d *Document) CreateNode(tag element.Tag) host.Node {
	n := d.newNode(string(tag))
	d.record("CreateNode", n, nil, nil)
	return n
}

// SetProperties implements host.NodeFactory.
func (d *Document) SetProperties(node host.Node, prev, next element.Props) {
	n := asNode(node)
	set, removed := host.PropsDelta(prev, next)
	for _, key := range removed {
		delete(n.Attrs, key)
	}
	for key, v := range set {
		n.Attrs[key] = v
	}
	if len(set) > 0 || len(removed) > 0 {
		d.record("SetProperties", n, nil, nil)
	}
}

// SetTextContent implements host.NodeFactory.
func (d *Document) SetTextContent(node host.Node, text string) {
	n := asNode(node)
	for _, c := range n.Children {
		c.parent = nil
	}
	n.Children = nil
	n.Text = text
	d.record("SetTextContent", n, nil, nil)
}

// AppendChild implements host.TreeMutator.
func (d *Document) AppendChild(parent, child host.Node) {
	p, c := asNode(parent), asNode(child)
	if c.parent != nil {
		c.parent.detach(c)
	}
	p.Text = ""
	c.parent = p
	p.Children = append(p.Children, c)
	d.record("AppendChild", p, c, nil)
}

// InsertAfter implements host.TreeMutator.
func (d *Document) InsertAfter(parent, child, anchor host.Node) {
	p, c, a := asNode(parent), asNode(child), asNode(anchor)
	if c.parent != nil {
		c.parent.detach(c)
	}

	at := 0
	if a != nil {
		i := p.indexOf(a)
		if i < 0 {
			panic(fmt.Sprintf("memdom: anchor %s is not a child of %s", a, p))
		}
		at = i + 1
	}

	p.Children = append(p.Children, nil)
	copy(p.Children[at+1:], p.Children[at:])
	p.Children[at] = c
	c.parent = p
	d.record("InsertAfter", p, c, a)
}

// RemoveChild implements host.TreeMutator.
func (d *Document) RemoveChild(parent, child host.Node) {
	p, c := asNode(parent), asNode(child)
	p.detach(c)
	d.record("RemoveChild", p, c, nil)
}

// ReplaceChild implements host.TreeMutator.
func (d *Document) ReplaceChild(parent, old, replacement host.Node) {
	p, o, r := asNode(parent), asNode(old), asNode(replacement)
	i := p.indexOf(o)
	if i < 0 {
		panic(fmt.Sprintf("memdom: %s is not a child of %s", o, p))
	}
	if r.parent != nil {
		r.parent.detach(r)
		i = p.indexOf(o)
	}
	p.Children[i] = r
	r.parent = p
	o.parent = nil
	d.record("ReplaceChild", p, o, r)
}

// RemoveAllChildren implements host.TreeMutator.
func (d *Document) RemoveAllChildren(parent host.Node) {
	p := asNode(parent)
	for _, c := range p.Children {
		c.parent = nil
	}
	p.Children = nil
	p.Text = ""
	d.record("RemoveAllChildren", p, nil, nil)
}

// Parent implements host.TreeMutator.
func (d *Document) Parent(node host.Node) host.Node {
	n := asNode(node)
	if n == nil || n.parent == nil {
		return nil
	}
	return n.parent
}

// RootID implements host.RootTagger.
func (d *Document) RootID(target host.Node) (uint64, bool) {
	n := asNode(target)
	return n.rootID, n.hasRoot
}

// SetRootID implements host.RootTagger.
func (d *Document) SetRootID(target host.Node, rootID uint64) {
	n := asNode(target)
	n.rootID, n.hasRoot = rootID, true
}

// ClearRootID implements host.RootTagger.
func (d *Document) ClearRootID(target host.Node) {
	n := asNode(target)
	n.rootID, n.hasRoot = 0, false
}
