package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Element and reconcile errors (E001-E019)

	"E001": {
		Category: CategoryElement,
		Message:  "Invalid element",
		Detail:   "An element has no type, or a component rendered nothing. Every render must return a host or composite element.",
	},
	"E002": {
		Category: CategoryElement,
		Message:  "Unsupported child",
		Detail:   "Children may be elements, strings, numbers, nil, or slices of those. Booleans, maps and structs are rejected.",
	},
	"E003": {
		Category: CategoryElement,
		Message:  "Duplicate sibling key",
		Detail:   "Two children of the same parent resolve to the same key. Keys must be unique among siblings.",
	},
	"E004": {
		Category: CategoryReconcile,
		Message:  "State set during render",
		Detail:   "A component changed its own state while it was rendering. Update state from an event or another component instead.",
	},
	"E005": {
		Category: CategoryReconcile,
		Message:  "Instance not mounted",
		Detail:   "State was set on a component that has been unmounted or released.",
	},
	"E006": {
		Category: CategoryReconcile,
		Message:  "Render failed",
		Detail:   "A component's render function returned an error. The tree was left as it was before the pass.",
	},
	"E007": {
		Category: CategoryReconcile,
		Message:  "Unknown root",
		Detail:   "The target container has no tree rendered by this engine.",
	},
	"E008": {
		Category: CategoryReconcile,
		Message:  "Missing render target",
		Detail:   "Render and Release need a container node.",
	},
	"E009": {
		Category: CategoryReconcile,
		Message:  "Not a component",
		Detail:   "State can only be set on composite instances.",
	},

	// Scene errors (E020-E039)

	"E020": {
		Category: CategoryScene,
		Message:  "Scene file not found",
		Detail:   "The scene file does not exist or cannot be read.",
	},
	"E021": {
		Category: CategoryScene,
		Message:  "Invalid scene file",
		Detail:   "The scene file could not be parsed as YAML or JSON.",
	},
	"E022": {
		Category: CategoryScene,
		Message:  "Unknown component",
		Detail:   "A scene node names a component that is not registered.",
	},
	"E023": {
		Category: CategoryScene,
		Message:  "Invalid scene node",
		Detail:   "A scene node must set exactly one of type, component or text.",
	},
	"E024": {
		Category: CategoryScene,
		Message:  "Unsupported scene format",
		Detail:   "Scene files must end in .yaml, .yml or .json.",
	},

	// Protocol errors (E040-E059)

	"E040": {
		Category: CategoryProtocol,
		Message:  "Frame too large",
		Detail:   "An encoded tree or operation batch exceeds the maximum frame size.",
	},
	"E041": {
		Category: CategoryProtocol,
		Message:  "Unknown operation",
		Detail:   "An operation batch contains an op code this version does not understand.",
	},

	// Snapshot errors (E060-E079)

	"E060": {
		Category: CategorySnapshot,
		Message:  "Snapshot write failed",
		Detail:   "The rendered tree could not be written to the snapshot store.",
	},
	"E061": {
		Category: CategorySnapshot,
		Message:  "Unknown snapshot format",
		Detail:   "Snapshots can be written as html or msgpack.",
	},
	"E062": {
		Category: CategorySnapshot,
		Message:  "Invalid snapshot name",
		Detail:   "Snapshot names must be non-empty and must not contain path separators.",
	},

	// Configuration errors (E120-E139)

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid dilithium.json",
		Detail:   "The dilithium.json configuration file is malformed.",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Invalid log level",
		Detail:   "log.level must be one of debug, info, warn or error.",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid server settings",
		Detail:   "server.port must be between 1 and 65535 and server.stepInterval must be a positive duration.",
	},
	"E123": {
		Category: CategoryConfig,
		Message:  "Invalid snapshot settings",
		Detail:   "The snapshot section names an unknown format or an S3 location without a bucket.",
	},

	// CLI errors (E140-E159)

	"E140": {
		Category: CategoryCLI,
		Message:  "Missing argument",
		Detail:   "The command needs a scene file argument.",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "Config file not found",
		Detail:   "No dilithium.json was found in the current directory or any parent.",
	},
	"E142": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The preview server stopped with an error.",
	},
	"E143": {
		Category: CategoryCLI,
		Message:  "Command failed",
		Detail:   "The command stopped with an error.",
	},
}

// GetAllCodes returns all registered error codes in order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
