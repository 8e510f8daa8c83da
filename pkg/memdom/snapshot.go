package memdom

import (
	"fmt"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"
)

// MarshalMsgpack encodes the subtree rooted at n as msgpack.
// Each node becomes a map with "tag", optional "text", "attrs" and
// "children" keys; function-valued attributes are dropped.
func MarshalMsgpack(n *Node) ([]byte, error) {
	data, err := msgpack.Marshal(toMap(n))
	if err != nil {
		return nil, fmt.Errorf("memdom: encode snapshot: %w", err)
	}
	return data, nil
}

// UnmarshalMsgpack decodes a snapshot produced by MarshalMsgpack.
// Node ids are not preserved; the returned tree is detached.
func UnmarshalMsgpack(data []byte) (*Node, error) {
	var m map[string]any
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("memdom: decode snapshot: %w", err)
	}
	return fromMap(m), nil
}

func toMap(n *Node) map[string]any {
	m := map[string]any{"tag": n.Tag}
	if n.Text != "" {
		m["text"] = n.Text
	}

	if len(n.Attrs) > 0 {
		attrs := make(map[string]any, len(n.Attrs))
		for k, v := range n.Attrs {
			if v == nil || reflect.TypeOf(v).Kind() == reflect.Func {
				continue
			}
			attrs[k] = v
		}
		m["attrs"] = attrs
	}

	if len(n.Children) > 0 {
		children := make([]any, len(n.Children))
		for i, c := range n.Children {
			children[i] = toMap(c)
		}
		m["children"] = children
	}
	return m
}

func fromMap(m map[string]any) *Node {
	n := &Node{Attrs: make(map[string]any)}
	n.Tag, _ = m["tag"].(string)
	n.Text, _ = m["text"].(string)

	if attrs, ok := m["attrs"].(map[string]any); ok {
		for k, v := range attrs {
			n.Attrs[k] = v
		}
	}

	if children, ok := m["children"].([]any); ok {
		for _, raw := range children {
			cm, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			c := fromMap(cm)
			c.parent = n
			n.Children = append(n.Children, c)
		}
	}
	return n
}
