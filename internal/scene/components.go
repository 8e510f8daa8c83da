package scene

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vango-dev/dilithium/internal/errors"
	"github.com/vango-dev/dilithium/pkg/element"
)

// Registry maps component names to behaviors.
type Registry struct {
	behaviors map[string]*element.Behavior
}

// NewRegistry returns a registry holding the built-in components.
func NewRegistry() *Registry {
	r := &Registry{behaviors: make(map[string]*element.Behavior)}
	r.Register(Counter)
	r.Register(Panel)
	r.Register(List)
	return r
}

// Register adds b under its name, replacing any previous entry.
func (r *Registry) Register(b *element.Behavior) {
	r.behaviors[b.Name] = b
}

// Lookup returns the behavior registered under name.
func (r *Registry) Lookup(name string) (*element.Behavior, bool) {
	b, ok := r.behaviors[name]
	return b, ok
}

// Names returns the registered names in order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.behaviors))
	for name := range r.behaviors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Element converts a scene node into an element tree.
func (r *Registry) Element(n *Node) (*element.Element, error) {
	children := make([]any, 0, len(n.Children))
	for _, c := range n.Children {
		switch {
		case c == nil:
			children = append(children, nil)
		case c.IsText():
			children = append(children, c.Text)
		default:
			el, err := r.Element(c)
			if err != nil {
				return nil, err
			}
			children = append(children, el)
		}
	}
	if n.Text != "" {
		children = append(children, n.Text)
	}

	props := make(element.Props, len(n.Props)+1)
	for k, v := range n.Props {
		props[k] = v
	}
	if n.Key != nil {
		props[element.KeyProp] = n.Key
	}

	// A single child is passed bare so a lone text child puts the host in
	// text mode.
	var kids []any
	if len(children) == 1 {
		kids = children
	} else if len(children) > 1 {
		kids = []any{children}
	}

	if n.Component != "" {
		b, ok := r.Lookup(n.Component)
		if !ok {
			return nil, errors.New("E022").
				WithDetail(fmt.Sprintf("No component named %q", n.Component)).
				WithSuggestion("Use one of: " + strings.Join(r.Names(), ", "))
		}
		return element.C(b, props, kids...), nil
	}
	return element.H(n.Type, props, kids...), nil
}

// Counter shows a count seeded from the start prop. The count lives in
// state, so it survives re-renders with new props.
//
// Props: label, start.
var Counter = &element.Behavior{
	Name: "Counter",
	InitialState: func(props element.Props) element.State {
		start := props["start"]
		if start == nil {
			start = 0
		}
		return element.State{"count": start}
	},
	Render: func(self element.Self) (*element.Element, error) {
		text := element.FormatScalar(self.State()["count"])
		if label, ok := self.Props()["label"]; ok {
			text = element.FormatScalar(label) + ": " + text
		}
		return element.H("span", element.Props{"class": "counter"}, text), nil
	},
}

// Panel wraps its children in a titled section.
//
// Props: title.
var Panel = element.Func("Panel", func(props element.Props) *element.Element {
	return element.H("section", element.Props{"class": "panel"},
		element.H("h2", nil, props["title"]),
		element.H("div", element.Props{"class": "body"}, props[element.ChildrenProp]),
	)
})

// List renders items as keyed list entries. An item is a scalar, used as
// both key and label, or a map with key and label.
//
// Props: items, ordered.
var List = &element.Behavior{
	Name: "List",
	Render: func(self element.Self) (*element.Element, error) {
		props := self.Props()
		raw, _ := props["items"].([]any)

		items := make([]any, 0, len(raw))
		for i, item := range raw {
			key, label, err := listItem(item)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			items = append(items, element.H("li", element.Props{element.KeyProp: key}, label))
		}

		tag := "ul"
		if ordered, _ := props["ordered"].(bool); ordered {
			tag = "ol"
		}
		return element.H(tag, nil, items), nil
	},
}

func listItem(item any) (key, label any, err error) {
	switch v := item.(type) {
	case map[string]any:
		label = v["label"]
		key = v["key"]
		if key == nil {
			key = label
		}
		if !element.IsScalar(key) || !element.IsScalar(label) {
			return nil, nil, fmt.Errorf("key and label must be scalars")
		}
		return key, label, nil
	default:
		if !element.IsScalar(v) {
			return nil, nil, fmt.Errorf("unsupported item %T", item)
		}
		return v, v, nil
	}
}
