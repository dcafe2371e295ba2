package logger

// LogStages defines standardized stage names for consistent logging
var LogStages = struct {
	// Request lifecycle
	RequestReceived  string
	RequestValidated string
	RequestCompleted string
	RequestFailed    string
	RequestCancelled string

	// Gateway pipeline
	Resolution     string
	Fallback       string
	Transcoding    string
	Normalization  string
	Dispatch       string
	BackendReply   string
	ResponseSent   string
	JobDetected    string
	SessionReset   string
	MetadataMerged string

	// Job polling
	PollScheduled string
	PollAttempt   string
	PollCompleted string
	PollFailed    string
	PollTimeout   string

	// System operations
	Initialization    string
	Configuration     string
	DatabaseOperation string
	Shutdown          string
	Retry             string

	// Health check stages
	HealthCheck       string
	HealthCheckPassed string
	HealthCheckFailed string

	Error string
}{
	RequestReceived:  "RequestReceived",
	RequestValidated: "RequestValidated",
	RequestCompleted: "RequestCompleted",
	RequestFailed:    "RequestFailed",
	RequestCancelled: "RequestCancelled",

	Resolution:     "Resolution",
	Fallback:       "Fallback",
	Transcoding:    "Transcoding",
	Normalization:  "Normalization",
	Dispatch:       "Dispatch",
	BackendReply:   "BackendReply",
	ResponseSent:   "ResponseSent",
	JobDetected:    "JobDetected",
	SessionReset:   "SessionReset",
	MetadataMerged: "MetadataMerged",

	PollScheduled: "PollScheduled",
	PollAttempt:   "PollAttempt",
	PollCompleted: "PollCompleted",
	PollFailed:    "PollFailed",
	PollTimeout:   "PollTimeout",

	Initialization:    "Initialization",
	Configuration:     "Configuration",
	DatabaseOperation: "DatabaseOperation",
	Shutdown:          "Shutdown",
	Retry:             "Retry",

	HealthCheck:       "HealthCheck",
	HealthCheckPassed: "HealthCheckPassed",
	HealthCheckFailed: "HealthCheckFailed",

	Error: "Error",
}

// ComponentNames defines standardized component names
var ComponentNames = struct {
	App        string
	Router     string
	Middleware string
	Handler    string
	Gateway    string

	Resolver          string
	Transcoder        string
	Normalizer        string
	Dispatcher        string
	ResponseProcessor string
	SessionManager    string
	JobPoller         string
	JobStore          string

	Config     string
	Database   string
	Monitoring string
	Health     string
	Validator  string
	Retry      string
	CLI        string
}{
	App:        "App",
	Router:     "Router",
	Middleware: "Middleware",
	Handler:    "Handler",
	Gateway:    "Gateway",

	Resolver:          "Resolver",
	Transcoder:        "Transcoder",
	Normalizer:        "Normalizer",
	Dispatcher:        "Dispatcher",
	ResponseProcessor: "ResponseProcessor",
	SessionManager:    "SessionManager",
	JobPoller:         "JobPoller",
	JobStore:          "JobStore",

	Config:     "Config",
	Database:   "Database",
	Monitoring: "Monitoring",
	Health:     "Health",
	Validator:  "Validator",
	Retry:      "RetryExecutor",
	CLI:        "CLI",
}
