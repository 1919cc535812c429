package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	"D100": {
		Category: CategoryCLI,
		Message:  "Command failed",
		Detail:   "The command stopped with an error that has no specific code. The cause below has the details.",
		DocURL:   "https://ducks.dev/docs/errors/D100",
	},

	// ============================================
	// Config Errors (D101-D119)
	// ============================================

	"D101": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "The config file does not exist. ducks looks for ducks.json in the working directory unless --config is given.",
		DocURL:   "https://ducks.dev/docs/errors/D101",
	},
	"D102": {
		Category: CategoryConfig,
		Message:  "Config file is not valid JSON",
		Detail:   "The config file could not be parsed as JSON.",
		DocURL:   "https://ducks.dev/docs/errors/D102",
	},
	"D103": {
		Category: CategoryConfig,
		Message:  "Invalid server address",
		Detail:   "server.addr must be a host:port pair such as \":4000\" or \"127.0.0.1:4000\".",
		DocURL:   "https://ducks.dev/docs/errors/D103",
	},
	"D104": {
		Category: CategoryConfig,
		Message:  "Resource name missing",
		Detail:   "Every entry in resources needs a non-empty name. The name prefixes all of the resource's action types.",
		DocURL:   "https://ducks.dev/docs/errors/D104",
	},
	"D105": {
		Category: CategoryConfig,
		Message:  "Duplicate resource name",
		Detail:   "Two resources share a name. Action types would collide, since they are derived from the upper-cased name.",
		DocURL:   "https://ducks.dev/docs/errors/D105",
	},
	"D106": {
		Category: CategoryConfig,
		Message:  "Resource URL missing",
		Detail:   "HTTP resources need a base url for their default actions.",
		DocURL:   "https://ducks.dev/docs/errors/D106",
	},
	"D107": {
		Category: CategoryConfig,
		Message:  "Unknown transport",
		Detail:   "transport must be \"http\" or \"s3\".",
		DocURL:   "https://ducks.dev/docs/errors/D107",
	},
	"D108": {
		Category: CategoryConfig,
		Message:  "S3 bucket missing",
		Detail:   "A resource uses the s3 transport but s3.bucket is not set.",
		DocURL:   "https://ducks.dev/docs/errors/D108",
	},
	"D109": {
		Category: CategoryConfig,
		Message:  "Invalid seed data",
		Detail:   "Seed entries must be JSON objects with an id.",
		DocURL:   "https://ducks.dev/docs/errors/D109",
	},
	"D110": {
		Category: CategoryConfig,
		Message:  "Invalid delete mode",
		Detail:   "deleteMode must be \"noop\" or \"compat\".",
		DocURL:   "https://ducks.dev/docs/errors/D110",
	},

	// ============================================
	// CLI Errors (D120-D139)
	// ============================================

	"D120": {
		Category: CategoryCLI,
		Message:  "Unknown resource",
		Detail:   "No resource with this name is configured in ducks.json.",
		DocURL:   "https://ducks.dev/docs/errors/D120",
	},
	"D121": {
		Category: CategoryCLI,
		Message:  "Unknown action",
		Detail:   "The resource has no request function for this action. Default actions are $QUERY, $GET, $CREATE, $UPDATE and $DELETE.",
		DocURL:   "https://ducks.dev/docs/errors/D121",
	},
	"D122": {
		Category: CategoryCLI,
		Message:  "Invalid payload",
		Detail:   "The action payload must be valid JSON.",
		DocURL:   "https://ducks.dev/docs/errors/D122",
	},
	"D123": {
		Category: CategoryCLI,
		Message:  "Action timed out",
		Detail:   "The action did not complete before the timeout.",
		DocURL:   "https://ducks.dev/docs/errors/D123",
	},

	// ============================================
	// Transport and Server Errors (D140-D159)
	// ============================================

	"D140": {
		Category: CategoryTransport,
		Message:  "Remote request failed",
		Detail:   "The remote backend returned an error or could not be reached. The resource state now holds the failure in errors.",
		DocURL:   "https://ducks.dev/docs/errors/D140",
	},
	"D141": {
		Category: CategoryTransport,
		Message:  "S3 client setup failed",
		Detail:   "The S3 client could not be created from the s3 config section.",
		DocURL:   "https://ducks.dev/docs/errors/D141",
	},
	"D150": {
		Category: CategoryServer,
		Message:  "Server failed to start",
		Detail:   "The development server could not listen on the configured address.",
		DocURL:   "https://ducks.dev/docs/errors/D150",
	},
}

// GetAllCodes returns all registered error codes in sorted order.
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
