// Package reconcile converges a realized instance tree to a new element tree.
//
// An Engine maps rendering targets to root instances. Each call to
// Engine.Render either mounts a fresh tree into the target or updates the
// existing one in place, reusing instances whose element type is unchanged
// and replacing those whose type changed.
//
// # Instances
//
// An Instance is either a host instance, which owns one host node, or a
// composite instance, which runs a Behavior and forwards the node of the
// single instance it rendered. Host instances hold either literal text
// content or a keyed group of child instances, never both.
//
// # Sibling diffing
//
// Children are matched by key in one left-to-right pass over the new
// order. Reused children whose previous position falls behind an already
// placed sibling are moved; new or type-changed children are inserted;
// removals are appended after all inserts and moves so every anchor still
// refers to a node present in the host at replay time. The result is not
// a minimal edit script.
//
// # Passes
//
// Everything runs synchronously. Render, Release, SetState and ForceUpdate
// each run one pass to completion before returning, and an Observer sees
// the start and end of every pass along with each operation batch.
//
// An Engine is not safe for concurrent use. Callers serialize access per
// engine.
package reconcile
