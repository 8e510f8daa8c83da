// Package scene loads scene files and replays them through a reconcile
// engine.
//
// A scene is an initial tree and a list of steps. Each step either
// re-renders the root with a new tree or sets state on a mounted component
// found by its sibling-key path:
//
//	name: shuffle
//	initial:
//	  component: List
//	  props:
//	    items: [a, b, c]
//	steps:
//	  - render:
//	      component: List
//	      props:
//	        items: [c, a, d]
//	  - setState:
//	      path: []
//	      state: {count: 2}
//
// Scene files are YAML (.yaml, .yml) or JSON (.json). Components are
// looked up in a Registry; NewRegistry provides Counter, Panel and List.
package scene
