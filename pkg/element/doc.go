// Package element provides the immutable description layer of Dilithium.
//
// An Element says what should exist: a Type and a property bag. The Type is
// either a Tag, naming a host node kind ("div", "span"), or a *Behavior,
// naming a user-defined composite that renders to another element. Two
// elements share a type when their Type values compare equal, which is the
// only test the reconciler uses to decide between reusing and replacing an
// instance.
//
// # Element API
//
// Elements are created with H for host tags and C for behaviors:
//
//	H("ul", Props{"class": "list"},
//	    H("li", Props{"key": "a"}, "first"),
//	    H("li", Props{"key": "b"}, "second"),
//	)
//
// One child is stored as-is under Props["children"]; several children are
// stored as a []any. A "key" property is lifted off the bag into Element.Key.
//
// # Children
//
// Flatten turns a children value into an ordered, keyed sibling group.
// Positional children get path-shaped keys (".0", ".1:0") and explicit keys
// occupy the slot as "$key" (".$a"), so siblings from different nesting
// depths never collide.
package element
