package element

import "strconv"

// Child is one entry of a flattened sibling group.
type Child struct {
	Key     string
	Element *Element
}

// Flatten turns a children value into an ordered sibling group.
//
// A single element or scalar is a group of one. Sequences ([]any,
// []*Element, []string) may nest; nested entries are keyed by their path.
// Scalars become text elements. Nil entries are holes: they consume a
// position but produce no child.
func Flatten(children any) ([]Child, error) {
	f := flattener{seen: make(map[string]struct{})}
	if err := f.walk(children, ""); err != nil {
		return nil, err
	}
	return f.out, nil
}

type flattener struct {
	out  []Child
	seen map[string]struct{}
}

// walk handles the top-level value, which may or may not be a sequence.
func (f *flattener) walk(v any, base string) error {
	if seq, ok := asSequence(v); ok {
		for i, item := range seq {
			if err := f.item(item, base, i); err != nil {
				return err
			}
		}
		return nil
	}
	return f.item(v, base, 0)
}

func (f *flattener) item(v any, base string, index int) error {
	switch c := v.(type) {
	case nil:
		return nil
	case *Element:
		if c == nil {
			return nil
		}
		if _, err := Validate(c); err != nil {
			return &Error{Op: "flatten", Key: slot(base, strconv.Itoa(index)), Value: v, Err: ErrInvalidElement}
		}
		return f.add(childKey(base, c.Key, index), c)
	}

	if IsScalar(v) {
		return f.add(slot(base, strconv.Itoa(index)), Text(v))
	}
	if _, ok := asSequence(v); ok {
		return f.walk(v, slot(base, strconv.Itoa(index)))
	}
	return &Error{Op: "flatten", Key: slot(base, strconv.Itoa(index)), Value: v, Err: ErrUnsupportedChild}
}

func (f *flattener) add(key string, el *Element) error {
	if _, dup := f.seen[key]; dup {
		return &Error{Op: "flatten", Key: key, Value: el, Err: ErrDuplicateKey}
	}
	f.seen[key] = struct{}{}
	f.out = append(f.out, Child{Key: key, Element: el})
	return nil
}

// childKey picks the explicit key when present, else the position.
func childKey(base, explicit string, index int) string {
	if explicit != "" {
		return slot(base, "$"+explicit)
	}
	return slot(base, strconv.Itoa(index))
}

// slot joins a path: top level uses ".", nested levels use ":".
func slot(base, name string) string {
	if base == "" {
		return "." + name
	}
	return base + ":" + name
}

func asSequence(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []*Element:
		out := make([]any, len(s))
		for i, el := range s {
			out[i] = el
		}
		return out, true
	case []string:
		out := make([]any, len(s))
		for i, str := range s {
			out[i] = str
		}
		return out, true
	}
	return nil, false
}
