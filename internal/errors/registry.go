package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://livetree.dev/docs/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Reactive Errors (LT001-LT099)
	// ============================================

	"LT001": {
		Category: CategoryReactive,
		Message:  "Cycle detected during propagation",
		Detail:   "The propagation flush did not settle within the configured number of rounds. An observer or derived cell keeps re-dirtying a value it depends on.",
		DocURL:   docBase + "LT001",
	},
	"LT002": {
		Category: CategoryReactive,
		Message:  "Derived cell read during its own computation",
		Detail:   "A derived cell's compute function read the derived cell itself, directly or through another derived cell.",
		DocURL:   docBase + "LT002",
	},
	"LT003": {
		Category: CategoryReactive,
		Message:  "Observer disposed",
		Detail:   "Update was called on an observer after Dispose.",
		DocURL:   docBase + "LT003",
	},
	"LT004": {
		Category: CategoryReactive,
		Message:  "Observer computation panicked",
		Detail:   "An observer's compute function panicked while running inside the propagation flush.",
		DocURL:   docBase + "LT004",
	},

	// ============================================
	// Reconcile Errors (LT100-LT119)
	// ============================================

	"LT101": {
		Category: CategoryReconcile,
		Message:  "Incompatible root kinds",
		Detail:   "The live root and the descriptor root differ in node kind or tag. The caller must replace the whole subtree instead of reconciling it.",
		DocURL:   docBase + "LT101",
	},
	"LT102": {
		Category: CategoryReconcile,
		Message:  "Unresolved deferred node",
		Detail:   "A deferred descriptor node has no component and no Resolve hook was configured.",
		DocURL:   docBase + "LT102",
	},
	"LT103": {
		Category: CategoryReconcile,
		Message:  "Deferred node resolution too deep",
		Detail:   "Resolving a deferred descriptor kept producing deferred descriptors.",
		DocURL:   docBase + "LT103",
	},

	// ============================================
	// Config Errors (LT120-LT139)
	// ============================================

	"LT120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The livetree.json file could not be read or parsed.",
		DocURL:   docBase + "LT120",
	},
	"LT121": {
		Category: CategoryConfig,
		Message:  "Configuration not found",
		Detail:   "No livetree.json file was found.",
		DocURL:   docBase + "LT121",
	},
	"LT122": {
		Category: CategoryConfig,
		Message:  "Configuration value out of range",
		Detail:   "A configuration value failed validation.",
		DocURL:   docBase + "LT122",
	},

	// ============================================
	// Descriptor Errors (LT140-LT159)
	// ============================================

	"LT140": {
		Category: CategoryDescriptor,
		Message:  "Invalid descriptor document",
		Detail:   "The descriptor JSON document could not be decoded into a node tree.",
		DocURL:   docBase + "LT140",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
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
