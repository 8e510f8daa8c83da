package element

import (
	"errors"
	"testing"
)

func keys(children []Child) []string {
	out := make([]string, len(children))
	for i, c := range children {
		out[i] = c.Key
	}
	return out
}

func equalKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFlattenKeys(t *testing.T) {
	tests := []struct {
		name     string
		children any
		want     []string
	}{
		{"nothing", nil, nil},
		{"single element", H("span", nil), []string{".0"}},
		{"positional", []any{H("a", nil), H("b", nil)}, []string{".0", ".1"}},
		{"explicit", []any{H("a", Props{"key": "x"}), H("b", nil)}, []string{".$x", ".1"}},
		{"nested", []any{H("a", nil), []any{H("b", nil), H("c", Props{"key": "k"})}}, []string{".0", ".1:0", ".1:$k"}},
		{"holes keep positions", []any{nil, H("b", nil)}, []string{".1"}},
		{"element slice", []*Element{H("a", nil), H("b", nil)}, []string{".0", ".1"}},
		{"scalars", []any{"x", 2}, []string{".0", ".1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Flatten(tt.children)
			if err != nil {
				t.Fatalf("Flatten() error = %v", err)
			}
			if !equalKeys(keys(got), tt.want) {
				t.Errorf("keys = %v, want %v", keys(got), tt.want)
			}
		})
	}
}

func TestFlattenScalarsBecomeText(t *testing.T) {
	got, err := Flatten([]any{"hello", 5})
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}
	for i, want := range []string{"hello", "5"} {
		el := got[i].Element
		if el.Type != TextTag {
			t.Errorf("child %d type = %v, want %v", i, el.Type, TextTag)
		}
		if el.Children() != want {
			t.Errorf("child %d text = %v, want %q", i, el.Children(), want)
		}
	}
}

func TestFlattenNestedKeysDoNotCollide(t *testing.T) {
	// ".0" at the top and ".1:0" inside the nested group are distinct.
	got, err := Flatten([]any{H("a", nil), []any{H("b", nil)}})
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}
	if !equalKeys(keys(got), []string{".0", ".1:0"}) {
		t.Errorf("keys = %v", keys(got))
	}
}

func TestFlattenErrors(t *testing.T) {
	tests := []struct {
		name     string
		children any
		want     error
	}{
		{"duplicate key", []any{H("a", Props{"key": "x"}), H("b", Props{"key": "x"})}, ErrDuplicateKey},
		{"bool child", []any{true}, ErrUnsupportedChild},
		{"map child", map[string]int{"a": 1}, ErrUnsupportedChild},
		{"invalid element", []any{&Element{}}, ErrInvalidElement},
		{"bool key", []any{H("li", Props{"key": true})}, ErrInvalidElement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Flatten(tt.children)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Flatten() error = %v, want %v", err, tt.want)
			}
			var elErr *Error
			if !errors.As(err, &elErr) {
				t.Fatalf("error %T should be *Error", err)
			}
			if elErr.Key == "" {
				t.Error("error should carry the sibling key")
			}
		})
	}
}
