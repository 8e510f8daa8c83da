package host

import (
	"fmt"
	"reflect"
)

// OpKind is the type of a sibling operation.
// Values match the insert/remove/move opcodes of the wire protocol.
type OpKind uint8

const (
	OpInsert OpKind = 0x04 // Insert a newly mounted node
	OpRemove OpKind = 0x05 // Detach a node
	OpMove   OpKind = 0x06 // Reposition an existing node
)

// String returns the string representation of the OpKind.
func (k OpKind) String() string {
	switch k {
	case OpInsert:
		return "INSERT"
	case OpRemove:
		return "REMOVE"
	case OpMove:
		return "MOVE"
	default:
		return "UNKNOWN"
	}
}

// Operation is one step of converging a sibling group.
type Operation struct {
	Kind      OpKind
	Key       string // Sibling key of the affected child
	Node      Node   // Node to insert, move or remove
	After     Node   // Anchor for INSERT/MOVE; nil means first
	FromIndex int    // Previous mountIndex (MOVE, REMOVE)
	ToIndex   int    // New mountIndex (INSERT, MOVE)
}

// String returns a compact description for logs and CLI output.
func (op Operation) String() string {
	switch op.Kind {
	case OpInsert:
		return fmt.Sprintf("INSERT %s at %d", op.Key, op.ToIndex)
	case OpMove:
		return fmt.Sprintf("MOVE %s %d->%d", op.Key, op.FromIndex, op.ToIndex)
	case OpRemove:
		return fmt.Sprintf("REMOVE %s from %d", op.Key, op.FromIndex)
	default:
		return op.Kind.String()
	}
}

// Apply replays ops against parent in order.
// Anchors refer to the arrangement as it stands when each op runs, which is
// why removals are expected at the end of the list.
func Apply(m TreeMutator, parent Node, ops []Operation) {
	for _, op := range ops {
		switch op.Kind {
		case OpInsert, OpMove:
			m.InsertAfter(parent, op.Node, op.After)
		case OpRemove:
			m.RemoveChild(parent, op.Node)
		}
	}
}

// Count returns how many ops of each kind are in ops.
func Count(ops []Operation) map[OpKind]int {
	counts := make(map[OpKind]int, 3)
	for _, op := range ops {
		counts[op.Kind]++
	}
	return counts
}

// PropsDelta computes which attributes to set and which to remove when
// going from prev to next.
func PropsDelta(prev, next map[string]any) (set map[string]any, removed []string) {
	set = make(map[string]any)
	for key, prevVal := range prev {
		nextVal, ok := next[key]
		if !ok {
			removed = append(removed, key)
		} else if !PropEqual(prevVal, nextVal) {
			set[key] = nextVal
		}
	}
	for key, nextVal := range next {
		if _, ok := prev[key]; !ok {
			set[key] = nextVal
		}
	}
	return set, removed
}

// PropEqual compares two property values.
// Functions never compare equal, so handlers are always re-applied.
func PropEqual(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	}
	if reflect.TypeOf(a).Kind() == reflect.Func {
		return false
	}
	return reflect.DeepEqual(a, b)
}
