// Package memdom is an in-memory host for Dilithium.
//
// A Document creates Nodes that form a small retained tree: a tag, an
// attribute bag, text content and ordered children. Document implements
// host.Adapter, so an Engine can render into it directly. Every adapter call
// is appended to Document.Log, which makes it useful for asserting exactly
// what a reconciliation pass did to the host.
//
// Nodes serialize to HTML (RenderHTML), to msgpack (MarshalMsgpack) and to
// the wire protocol's tree form (ToWire).
//
//	doc := memdom.New()
//	root := doc.Container("div")
//	eng := reconcile.NewEngine(doc)
//	_ = eng.Render(element.H("p", nil, "hello"), root)
//	fmt.Println(memdom.RenderHTML(root)) // <div><p>hello</p></div>
package memdom
