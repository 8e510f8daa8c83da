package reconcile

import (
	"github.com/vango-dev/dilithium/pkg/element"
	"github.com/vango-dev/dilithium/pkg/host"
)

// Kind is the variant of an Instance.
type Kind uint8

const (
	KindHost      Kind = iota + 1 // Owns one host node
	KindComposite                 // Runs a behavior, forwards its rendered child's node
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindHost:
		return "Host"
	case KindComposite:
		return "Composite"
	default:
		return "Unknown"
	}
}

// Instance is the realized, stateful counterpart of an element.
// Exactly one of host and composite is set, matching kind.
type Instance struct {
	r    *Reconciler
	kind Kind
	root uint64

	key        string
	current    *element.Element
	mountIndex int
	mounted    bool

	host      *hostState
	composite *compositeState
}

type hostState struct {
	node     host.Node
	text     bool      // literal text content mode
	children *childSet // structured mode; nil in text mode
}

type compositeState struct {
	behavior *element.Behavior
	state    element.State
	pending  element.State
	rendered *Instance

	// busy is set while the instance renders or reconciles its output.
	busy bool
}

// Kind returns the instance variant.
func (inst *Instance) Kind() Kind { return inst.kind }

// Element returns the element the instance currently reflects.
func (inst *Instance) Element() *element.Element { return inst.current }

// Key returns the sibling key, empty for roots and rendered children.
func (inst *Instance) Key() string { return inst.key }

// MountIndex returns the position among siblings as of the last pass.
func (inst *Instance) MountIndex() int { return inst.mountIndex }

// Mounted reports whether the instance is mounted.
func (inst *Instance) Mounted() bool { return inst.mounted }

// Root returns the id of the root the instance belongs to.
func (inst *Instance) Root() uint64 { return inst.root }

// Node returns the host node at the top of this instance's subtree.
// For a composite it is the node of the instance it rendered.
func (inst *Instance) Node() host.Node {
	for cur := inst; cur != nil; {
		switch cur.kind {
		case KindHost:
			if cur.host == nil {
				return nil
			}
			return cur.host.node
		case KindComposite:
			if cur.composite == nil {
				return nil
			}
			cur = cur.composite.rendered
		default:
			return nil
		}
	}
	return nil
}

// Rendered returns the child a composite rendered, or nil.
func (inst *Instance) Rendered() *Instance {
	if inst.composite == nil {
		return nil
	}
	return inst.composite.rendered
}

// Children returns a host instance's children in sibling order.
// It is nil in text mode and for composites.
func (inst *Instance) Children() []*Instance {
	if inst.host == nil || inst.host.children == nil {
		return nil
	}
	return inst.host.children.ordered()
}

// Child returns the child mounted under key, or nil.
func (inst *Instance) Child(key string) *Instance {
	if inst.host == nil || inst.host.children == nil {
		return nil
	}
	return inst.host.children.byKey[key]
}

// Find walks path from inst, one sibling key per step. Composites on the
// way are entered through their rendered child. It returns nil if any key
// is missing.
func (inst *Instance) Find(path ...string) *Instance {
	cur := inst
	for _, key := range path {
		for cur != nil && cur.kind == KindComposite {
			cur = cur.Rendered()
		}
		if cur == nil {
			return nil
		}
		cur = cur.Child(key)
	}
	return cur
}

// TextMode reports whether a host instance holds literal text content.
func (inst *Instance) TextMode() bool {
	return inst.host != nil && inst.host.text
}

// Props returns the props of the current element.
func (inst *Instance) Props() element.Props {
	return inst.current.Props
}

// State returns the live state of a composite instance.
func (inst *Instance) State() element.State {
	if inst.composite == nil {
		return nil
	}
	return inst.composite.state
}

// SetState merges partial onto the pending state and runs one update pass
// for this instance before returning. Calls are never batched.
//
// It returns ErrSetStateDuringRender while a pass is reconciling the
// instance's root. Instances under other roots may be updated from inside
// a render.
func (inst *Instance) SetState(partial element.State) error {
	cs := inst.composite
	if cs == nil {
		return ErrNotComposite
	}
	if cs.busy || inst.r.reconciling(inst.root) {
		return ErrSetStateDuringRender
	}
	if !inst.mounted {
		return ErrUnmounted
	}

	base := cs.pending
	if base == nil {
		base = cs.state
	}
	cs.pending = base.Merge(partial)

	return inst.r.runPass(PassSetState, inst.root, func() error {
		return inst.r.ScheduleUpdate(inst)
	})
}

// ForceUpdate re-renders the instance with its current element.
func (inst *Instance) ForceUpdate() error {
	cs := inst.composite
	if cs == nil {
		return ErrNotComposite
	}
	if cs.busy || inst.r.reconciling(inst.root) {
		return ErrSetStateDuringRender
	}
	if !inst.mounted {
		return ErrUnmounted
	}
	return inst.r.runPass(PassUpdate, inst.root, func() error {
		return inst.r.ScheduleUpdate(inst)
	})
}

var _ element.Self = (*Instance)(nil)

// childSet is a keyed sibling group in sibling order.
type childSet struct {
	keys  []string
	byKey map[string]*Instance
}

func newChildSet(n int) *childSet {
	return &childSet{
		keys:  make([]string, 0, n),
		byKey: make(map[string]*Instance, n),
	}
}

func (s *childSet) add(inst *Instance) {
	s.keys = append(s.keys, inst.key)
	s.byKey[inst.key] = inst
}

func (s *childSet) ordered() []*Instance {
	out := make([]*Instance, len(s.keys))
	for i, k := range s.keys {
		out[i] = s.byKey[k]
	}
	return out
}
