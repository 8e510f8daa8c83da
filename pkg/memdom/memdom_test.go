package memdom

import (
	"strings"
	"testing"

	"github.com/vango-dev/dilithium/pkg/element"
	"github.com/vango-dev/dilithium/pkg/host"
	"github.com/vango-dev/dilithium/pkg/protocol"
)

func tags(n *Node) string {
	parts := make([]string, len(n.Children))
	for i, c := range n.Children {
		parts[i] = c.Tag
	}
	return strings.Join(parts, ",")
}

func TestStructuralCalls(t *testing.T) {
	doc := New()
	parent := doc.Container("div")
	a := doc.CreateNode("a").(*Node)
	b := doc.CreateNode("b").(*Node)
	c := doc.CreateNode("c").(*Node)

	doc.AppendChild(parent, a)
	doc.AppendChild(parent, b)
	doc.InsertAfter(parent, c, nil)
	if got := tags(parent); got != "c,a,b" {
		t.Fatalf("after insert at front = %s", got)
	}

	doc.InsertAfter(parent, c, b)
	if got := tags(parent); got != "a,b,c" {
		t.Fatalf("after move = %s", got)
	}

	d := doc.CreateNode("d").(*Node)
	doc.ReplaceChild(parent, b, d)
	if got := tags(parent); got != "a,d,c" {
		t.Fatalf("after replace = %s", got)
	}
	if b.Parent() != nil || d.Parent() != parent {
		t.Error("replace should reparent nodes")
	}

	doc.RemoveChild(parent, a)
	if got := tags(parent); got != "d,c" {
		t.Fatalf("after remove = %s", got)
	}
	if doc.Parent(a) != nil {
		t.Error("removed node should be detached")
	}

	doc.RemoveAllChildren(parent)
	if len(parent.Children) != 0 {
		t.Errorf("children = %d, want 0", len(parent.Children))
	}
}

func TestSetTextContentDropsChildren(t *testing.T) {
	doc := New()
	parent := doc.Container("p")
	child := doc.CreateNode("span")
	doc.AppendChild(parent, child)

	doc.SetTextContent(parent, "hi")

	if len(parent.Children) != 0 || parent.Text != "hi" {
		t.Errorf("node = %+v", parent)
	}
	if doc.Calls("SetTextContent") != 1 {
		t.Errorf("SetTextContent calls = %d, want 1", doc.Calls("SetTextContent"))
	}
}

func TestSetPropertiesDelta(t *testing.T) {
	doc := New()
	n := doc.CreateNode("a").(*Node)

	doc.SetProperties(n, nil, element.Props{"href": "/", "id": "x"})
	doc.SetProperties(n, element.Props{"href": "/", "id": "x"}, element.Props{"href": "/home"})

	if n.Attrs["href"] != "/home" {
		t.Errorf("href = %v", n.Attrs["href"])
	}
	if _, ok := n.Attrs["id"]; ok {
		t.Error("id should be removed")
	}

	doc.ResetLog()
	doc.SetProperties(n, element.Props{"href": "/home"}, element.Props{"href": "/home"})
	if len(doc.Log) != 0 {
		t.Errorf("unchanged props should not log, got %v", doc.Log)
	}
}

func TestRootTagging(t *testing.T) {
	doc := New()
	target := doc.Container("main")

	if _, ok := doc.RootID(target); ok {
		t.Fatal("new container should not be tagged")
	}
	doc.SetRootID(target, 4)
	if id, ok := doc.RootID(target); !ok || id != 4 {
		t.Errorf("RootID() = %d, %v", id, ok)
	}
	doc.ClearRootID(target)
	if _, ok := doc.RootID(target); ok {
		t.Error("ClearRootID should untag")
	}
}

func TestRenderHTML(t *testing.T) {
	doc := New()
	root := doc.Container("div")
	doc.SetProperties(root, nil, element.Props{"class": "card", "hidden": true, "onclick": func() {}})

	p := doc.CreateNode("p")
	doc.SetTextContent(p, `a < b & "c"`)
	doc.AppendChild(root, p)
	doc.AppendChild(root, doc.CreateNode("br"))

	text := doc.CreateNode(element.TextTag)
	doc.SetTextContent(text, "tail")
	doc.AppendChild(root, text)

	want := `<div class="card" hidden><p>a &lt; b &amp; &#34;c&#34;</p><br>tail</div>`
	want = strings.ReplaceAll(want, "&#34;", "&quot;")
	if got := RenderHTML(root); got != want {
		t.Errorf("RenderHTML() = %s\nwant          %s", got, want)
	}
	if got := InnerHTML(root); !strings.HasPrefix(got, "<p>") {
		t.Errorf("InnerHTML() = %s", got)
	}
}

func TestEscapeAttr(t *testing.T) {
	if got := escapeAttr("a\n\"b\""); got != "a&#10;&quot;b&quot;" {
		t.Errorf("escapeAttr() = %q", got)
	}
}

func TestMsgpackSnapshot(t *testing.T) {
	doc := New()
	root := doc.Container("ul")
	doc.SetProperties(root, nil, element.Props{"class": "list"})
	li := doc.CreateNode("li")
	doc.SetTextContent(li, "one")
	doc.AppendChild(root, li)

	data, err := MarshalMsgpack(root)
	if err != nil {
		t.Fatalf("MarshalMsgpack() error = %v", err)
	}
	got, err := UnmarshalMsgpack(data)
	if err != nil {
		t.Fatalf("UnmarshalMsgpack() error = %v", err)
	}
	if RenderHTML(got) != RenderHTML(root) {
		t.Errorf("snapshot = %s, want %s", RenderHTML(got), RenderHTML(root))
	}
}

func TestWireOps(t *testing.T) {
	doc := New()
	parent := doc.Container("ul")
	a := doc.CreateNode("li").(*Node)
	b := doc.CreateNode("li").(*Node)
	doc.SetTextContent(b, "b")

	batch := WireOps(3, parent, []host.Operation{
		{Kind: host.OpMove, Key: ".$a", Node: a, After: b, FromIndex: 0, ToIndex: 1},
		{Kind: host.OpInsert, Key: ".$b", Node: b, ToIndex: 0},
	})

	if batch.Seq != 3 || batch.Parent != parent.ID {
		t.Fatalf("batch = %+v", batch)
	}
	if batch.Ops[0].Op != protocol.OpMove || batch.Ops[0].After != b.ID {
		t.Errorf("move = %+v", batch.Ops[0])
	}
	if batch.Ops[1].After != 0 || batch.Ops[1].Tree == nil || batch.Ops[1].Tree.Text != "b" {
		t.Errorf("insert = %+v", batch.Ops[1])
	}
}
