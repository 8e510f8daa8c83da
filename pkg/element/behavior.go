package element

// State is a composite instance's state bag.
type State map[string]any

// Merge returns a new State with partial applied over s.
// Keys in partial win.
func (s State) Merge(partial State) State {
	out := make(State, len(s)+len(partial))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range partial {
		out[k] = v
	}
	return out
}

// Self is the view a behavior's render function gets of its own instance.
type Self interface {
	// Props returns the props of the element currently realized.
	Props() Props

	// State returns the live state.
	State() State

	// SetState merges partial into the pending state and synchronously
	// runs one update pass for this instance. It must not be called from
	// inside the instance's own render.
	SetState(partial State) error

	// ForceUpdate re-runs the update pass with the current element.
	ForceUpdate() error
}

// RenderFunc produces the single element a composite renders to.
type RenderFunc func(self Self) (*Element, error)

// Behavior is a user-defined composite component.
// The pointer identity of a Behavior is its type tag.
type Behavior struct {
	// Name is used in logs and errors.
	Name string

	// Render is called on mount and on every update.
	Render RenderFunc

	// InitialState seeds state on mount. Optional.
	InitialState func(props Props) State
}

func (*Behavior) isType() {}

// Func creates a stateless behavior from a render function.
func Func(name string, render func(props Props) *Element) *Behavior {
	return &Behavior{
		Name: name,
		Render: func(self Self) (*Element, error) {
			return render(self.Props()), nil
		},
	}
}
