package element

import (
	"reflect"
	"strconv"
)

// Reserved property names.
const (
	ChildrenProp = "children"
	KeyProp      = "key"
)

// TextTag is the host tag used for text inside a structured sibling group.
const TextTag Tag = "#text"

// Type identifies what an element describes.
// It is implemented by Tag and *Behavior.
type Type interface {
	isType()
}

// Tag names a host node kind.
type Tag string

func (Tag) isType() {}

// String returns the tag name.
func (t Tag) String() string {
	return string(t)
}

// Props is an element's property bag.
type Props map[string]any

// Attributes returns a copy of the bag without children and key.
// This is what gets handed to a host adapter.
func (p Props) Attributes() Props {
	out := make(Props, len(p))
	for k, v := range p {
		if k == ChildrenProp || k == KeyProp {
			continue
		}
		out[k] = v
	}
	return out
}

// Element is an immutable description of desired UI state.
// Callers must not mutate an element or its Props after construction;
// the reconciler treats pointer identity as "nothing changed".
type Element struct {
	Type  Type
	Key   string
	Props Props

	badKey any // non-scalar key given to New; reported by Validate
}

// New creates an element of the given type.
// Props are copied. With one child, Props["children"] holds it directly;
// with several, it holds a []any in order. With none, any "children"
// already present in props is kept. A "key" that is not a string or number
// makes the element invalid.
func New(t Type, props Props, children ...any) *Element {
	p := make(Props, len(props)+1)
	for k, v := range props {
		p[k] = v
	}

	el := &Element{Type: t, Props: p}
	if key, ok := p[KeyProp]; ok {
		delete(p, KeyProp)
		switch {
		case IsScalar(key):
			el.Key = FormatScalar(key)
		case key != nil:
			el.badKey = key
		}
	}

	switch len(children) {
	case 0:
	case 1:
		p[ChildrenProp] = children[0]
	default:
		p[ChildrenProp] = append([]any(nil), children...)
	}
	return el
}

// H creates a host element.
func H(tag string, props Props, children ...any) *Element {
	return New(Tag(tag), props, children...)
}

// C creates a composite element for b.
func C(b *Behavior, props Props, children ...any) *Element {
	return New(b, props, children...)
}

// Text creates a text element holding a scalar value.
func Text(v any) *Element {
	return &Element{
		Type:  TextTag,
		Props: Props{ChildrenProp: FormatScalar(v)},
	}
}

// WithKey returns a copy of e carrying the given key.
func (e *Element) WithKey(key string) *Element {
	cp := *e
	cp.Key = key
	cp.badKey = nil
	return &cp
}

// Children returns the raw children value.
func (e *Element) Children() any {
	if e == nil || e.Props == nil {
		return nil
	}
	return e.Props[ChildrenProp]
}

// Tag returns the host tag and true when e describes a host node.
func (e *Element) Tag() (Tag, bool) {
	t, ok := e.Type.(Tag)
	return t, ok
}

// Behavior returns the behavior and true when e describes a composite.
func (e *Element) Behavior() (*Behavior, bool) {
	b, ok := e.Type.(*Behavior)
	return b, ok && b != nil
}

// String returns a short description for logs.
func (e *Element) String() string {
	if e == nil {
		return "<nil>"
	}
	name := TypeName(e.Type)
	if e.Key != "" {
		return name + "[key=" + e.Key + "]"
	}
	return name
}

// TypeName returns a printable name for a type.
func TypeName(t Type) string {
	switch v := t.(type) {
	case Tag:
		return string(v)
	case *Behavior:
		if v == nil {
			return "<nil behavior>"
		}
		if v.Name != "" {
			return v.Name
		}
		return "anonymous"
	default:
		return "<nil>"
	}
}

// SameType reports whether an instance realized from prev may be updated
// in place with next. Any other pairing must be unmounted and replaced.
func SameType(prev, next *Element) bool {
	if prev == nil || next == nil {
		return false
	}
	return prev.Type == next.Type
}

// Validate checks that v is a usable element.
func Validate(v any) (*Element, error) {
	el, ok := v.(*Element)
	if !ok || el == nil {
		return nil, &Error{Op: "validate", Value: v, Err: ErrInvalidElement}
	}
	switch t := el.Type.(type) {
	case Tag:
		if t == "" {
			return nil, &Error{Op: "validate", Value: v, Err: ErrInvalidElement}
		}
	case *Behavior:
		if t == nil || t.Render == nil {
			return nil, &Error{Op: "validate", Value: v, Err: ErrInvalidElement}
		}
	default:
		return nil, &Error{Op: "validate", Value: v, Err: ErrInvalidElement}
	}
	if el.badKey != nil {
		return nil, &Error{Op: "key", Value: el.badKey, Err: ErrInvalidElement}
	}
	return el, nil
}

// IsScalar reports whether v renders as literal text content.
func IsScalar(v any) bool {
	switch v.(type) {
	case string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

// FormatScalar converts a scalar to its text content.
func FormatScalar(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(val).Int(), 10)
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(val).Uint(), 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}
