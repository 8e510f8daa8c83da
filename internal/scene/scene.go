package scene

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/vango-dev/dilithium/internal/errors"
	"github.com/vango-dev/dilithium/pkg/element"
)

// Node describes one element of a scene tree.
//
// A node sets Type for a host element or Component for a registered
// behavior. A node with only Text is a literal text child.
type Node struct {
	Type      string         `yaml:"type,omitempty" json:"type,omitempty"`
	Component string         `yaml:"component,omitempty" json:"component,omitempty"`
	Key       any            `yaml:"key,omitempty" json:"key,omitempty"`
	Props     map[string]any `yaml:"props,omitempty" json:"props,omitempty"`
	Text      string         `yaml:"text,omitempty" json:"text,omitempty"`
	Children  []*Node        `yaml:"children,omitempty" json:"children,omitempty"`
}

// IsText reports whether n is a literal text child.
func (n *Node) IsText() bool {
	return n.Type == "" && n.Component == "" && len(n.Children) == 0
}

// Step is one update applied after the initial render. Exactly one field
// is set.
type Step struct {
	// Render re-renders the root with a new tree.
	Render *Node `yaml:"render,omitempty" json:"render,omitempty"`

	// SetState merges state into a mounted component.
	SetState *StateUpdate `yaml:"setState,omitempty" json:"setState,omitempty"`
}

// StateUpdate targets a component by its path of sibling keys from the root.
type StateUpdate struct {
	Path  []string       `yaml:"path,omitempty" json:"path,omitempty"`
	State map[string]any `yaml:"state" json:"state"`
}

// Scene is an initial tree followed by update steps.
type Scene struct {
	Name    string  `yaml:"name,omitempty" json:"name,omitempty"`
	Initial *Node   `yaml:"initial" json:"initial"`
	Steps   []*Step `yaml:"steps,omitempty" json:"steps,omitempty"`
}

// Format is a scene file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".json":
		return FormatJSON, true
	}
	return "", false
}

// Load reads and validates a scene file. The scene name defaults to the
// file name without its extension.
func Load(path string) (*Scene, error) {
	format, ok := FormatOf(path)
	if !ok {
		return nil, errors.New("E024").
			WithDetail("Cannot read scene " + path + ": unknown extension " + filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.New("E020").
				WithDetail("No scene file at " + path)
		}
		return nil, errors.New("E020").Wrap(err)
	}

	s, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Parse decodes and validates a scene.
func Parse(data []byte, format Format) (*Scene, error) {
	var s Scene
	switch format {
	case FormatYAML:
		if err := yaml.UnmarshalWithOptions(data, &s, yaml.DisallowUnknownField()); err != nil {
			return nil, errors.New("E021").
				WithDetail(yaml.FormatError(err, false, true)).
				Wrap(err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return nil, errors.New("E021").Wrap(err)
		}
	default:
		return nil, errors.New("E024").
			WithDetail(fmt.Sprintf("Unknown scene format %q", format))
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the shape of every node and step.
func (s *Scene) Validate() error {
	if s.Initial == nil {
		return invalid("initial", "a scene needs an initial tree")
	}
	if err := validateRoot("initial", s.Initial); err != nil {
		return err
	}
	for i, step := range s.Steps {
		where := fmt.Sprintf("steps[%d]", i)
		switch {
		case step == nil, (step.Render == nil) == (step.SetState == nil):
			return invalid(where, "a step sets exactly one of render or setState")
		case step.Render != nil:
			if err := validateRoot(where+".render", step.Render); err != nil {
				return err
			}
		case len(step.SetState.State) == 0:
			return invalid(where+".setState", "state must not be empty")
		}
	}
	return nil
}

func validateRoot(where string, n *Node) error {
	if n.IsText() {
		return invalid(where, "the root must be an element, not text")
	}
	return validateNode(where, n)
}

func validateNode(where string, n *Node) error {
	if n == nil {
		return nil
	}
	switch {
	case n.Type != "" && n.Component != "":
		return invalid(where, "type and component are mutually exclusive")
	case n.Component != "" && n.Text != "":
		return invalid(where, "a component cannot have text; pass it as a prop")
	case n.Text != "" && len(n.Children) > 0:
		return invalid(where, "text and children are mutually exclusive")
	case n.IsText() && (n.Key != nil || len(n.Props) > 0):
		return invalid(where, "a text node takes no key or props")
	case n.Key != nil && !element.IsScalar(n.Key):
		return invalid(where, "key must be a string or number")
	}
	for i, c := range n.Children {
		if err := validateNode(fmt.Sprintf("%s.children[%d]", where, i), c); err != nil {
			return err
		}
	}
	return nil
}

func invalid(where, msg string) *errors.Error {
	return errors.New("E023").WithDetail(where + ": " + msg)
}
