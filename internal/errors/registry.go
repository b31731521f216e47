package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	Hint     string
}

// Registered codes.
const (
	CodeInvalidMutation  = "L001"
	CodeReadOnly         = "L002"
	CodeSubscriberFailed = "L003"
	CodeSubscriberLoop   = "L004"
	CodeSchedulerJob     = "L005"

	CodeDuplicateKey    = "L010"
	CodeMissingHandle   = "L011"
	CodeUnknownKind     = "L012"
	CodeUnknownProp     = "L013"
	CodeMixedKeys       = "L014"
	CodeUnknownMethod   = "L015"
	CodeBindingFailed   = "L016"
	CodeComponentEvents = "L017"

	CodeConfigRead     = "L020"
	CodeConfigParse    = "L021"
	CodeConfigInvalid  = "L022"
	CodeConfigNotFound = "L023"

	CodeWireFrame      = "L030"
	CodeWireConnection = "L031"
	CodeWireOrigin     = "L032"

	CodeCLIServe = "L040"
)

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Reactivity Errors (L001-L009)
	// ============================================

	CodeInvalidMutation: {
		Category: CategoryReactivity,
		Message:  "Invalid mutation",
		Detail:   "Computed values are derived from their dependencies and cannot be assigned.",
		Hint:     "Write to the refs or state keys the computed reads instead.",
	},
	CodeReadOnly: {
		Category: CategoryReactivity,
		Message:  "Read-only state violation",
		Detail:   "The state was wrapped read-only; Set and Delete are rejected and leave it unchanged.",
	},
	CodeSubscriberFailed: {
		Category: CategoryReactivity,
		Message:  "Subscriber run failed",
		Detail:   "A computed or effect function panicked. The previous cached value is kept and other subscribers still run.",
	},
	CodeSubscriberLoop: {
		Category: CategoryReactivity,
		Message:  "Subscriber re-entered while running",
		Detail:   "A subscriber was notified by a write it performed during its own run. The nested run was skipped.",
		Hint:     "Avoid writing to a value an effect also reads.",
	},
	CodeSchedulerJob: {
		Category: CategoryReactivity,
		Message:  "Scheduled job failed",
		Detail:   "A job posted to the scheduler panicked. The remaining jobs still run.",
	},

	// ============================================
	// Reconcile Errors (L010-L019)
	// ============================================

	CodeDuplicateKey: {
		Category: CategoryReconcile,
		Message:  "Duplicate key in children list",
		Detail:   "Keys must be unique within one children list. Reconciliation continues using the first match.",
	},
	CodeMissingHandle: {
		Category: CategoryReconcile,
		Message:  "Node has no display handle",
		Detail:   "A mounted node was expected to own a display unit. The subtree was skipped.",
	},
	CodeUnknownKind: {
		Category: CategoryReconcile,
		Message:  "Unknown node kind",
		Detail:   "The node kind is not one of Text, Comment, Element, Component or Block.",
	},
	CodeUnknownProp: {
		Category: CategoryReconcile,
		Message:  "Unknown component property",
		Detail:   "The property was not declared on the component definition and was ignored.",
	},
	CodeMixedKeys: {
		Category: CategoryReconcile,
		Message:  "Children list mixes keyed and unkeyed nodes",
		Detail:   "Only lists where every node has a key use keyed reconciliation; this one is patched positionally.",
	},
	CodeUnknownMethod: {
		Category: CategoryReconcile,
		Message:  "Unknown component method",
	},
	CodeBindingFailed: {
		Category: CategoryReconcile,
		Message:  "Expression binding failed",
		Detail:   "The expression could not be compiled or evaluated against the state.",
	},
	CodeComponentEvents: {
		Category: CategoryReconcile,
		Message:  "Events on component nodes are ignored",
		Hint:     "Attach handlers to elements inside the component's tree.",
	},

	// ============================================
	// Config Errors (L020-L029)
	// ============================================

	CodeConfigRead: {
		Category: CategoryConfig,
		Message:  "Cannot read configuration file",
	},
	CodeConfigParse: {
		Category: CategoryConfig,
		Message:  "Invalid configuration syntax",
		Detail:   "The configuration file is not valid JSON or YAML.",
	},
	CodeConfigInvalid: {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},
	CodeConfigNotFound: {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Hint:     "Create lux.json or lux.yaml, or pass --config.",
	},

	// ============================================
	// Wire Errors (L030-L039)
	// ============================================

	CodeWireFrame: {
		Category: CategoryWire,
		Message:  "Invalid frame from client",
		Hint:     "Clients may only send event frames.",
	},
	CodeWireConnection: {
		Category: CategoryWire,
		Message:  "Client connection failed",
	},
	CodeWireOrigin: {
		Category: CategoryWire,
		Message:  "Websocket origin rejected",
		Hint:     "Add the origin to serve.allowed_origins in lux.yaml.",
	},

	// ============================================
	// CLI Errors (L040-L059)
	// ============================================

	CodeCLIServe: {
		Category: CategoryCLI,
		Message:  "Server failed",
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
