// Package errors provides coded, printable errors for the dilithium CLI.
//
// Library packages return plain sentinel errors. At the command boundary
// they are classified into an *Error carrying a stable code, a category and
// a plain-language explanation:
//
//	err := engine.Render(el, target)
//	if err != nil {
//	    errors.PrintError(errors.Classify(err, "E006"))
//	}
//
// Scene and config loaders build *Error values directly so they can point
// at the offending line:
//
//	errors.New("E022").
//	    WithLocation("scenes/list.yaml", 12, 5).
//	    WithSuggestion("Use one of: Counter, List, Panel")
//
// Format renders the error for a terminal:
//
//	ERROR E022: Unknown component
//
//	  scenes/list.yaml:12:5
//
//	      11 | - type: ul
//	  >   12 |   component: Lsit
//	         |     ^
//
//	  Hint: Use one of: Counter, List, Panel
//
// # Error Codes
//
//   - E001-E019: element and reconcile errors
//   - E020-E039: scene files
//   - E040-E059: wire protocol
//   - E060-E079: snapshots
//   - E120-E139: configuration
//   - E140-E159: command line
package errors
