package utils

// HTTP Header Constants
const (
	// Standard HTTP Headers
	HeaderContentType  = "Content-Type"
	HeaderUserAgent    = "User-Agent"
	HeaderCacheControl = "Cache-Control"

	// Request/Response Tracking Headers
	HeaderRequestID     = "X-Request-ID"
	HeaderCorrelationID = "X-Correlation-ID"
	HeaderSessionID     = "X-Session-ID"

	// Client IP Headers (priority order)
	HeaderXForwardedFor  = "X-Forwarded-For"
	HeaderXRealIP        = "X-Real-IP"
	HeaderCFConnectingIP = "CF-Connecting-IP"

	// CORS Headers
	HeaderAccessControlAllowOrigin   = "Access-Control-Allow-Origin"
	HeaderAccessControlAllowMethods  = "Access-Control-Allow-Methods"
	HeaderAccessControlAllowHeaders  = "Access-Control-Allow-Headers"
	HeaderAccessControlExposeHeaders = "Access-Control-Expose-Headers"
)

// Gateway resolution headers. Sent to the backend on dispatch and echoed back
// to the client on normalized responses.
const (
	HeaderAIProvider     = "x-ai-provider"
	HeaderOriginalModel  = "x-original-model"
	HeaderValidatedModel = "x-validated-model"
	HeaderIsFallback     = "x-is-fallback"
	HeaderFilesCount     = "x-files-count"
	HeaderRequestMode    = "x-request-mode"
	HeaderModelUsed      = "x-model-used"
	HeaderFilesProcessed = "x-files-processed"
	HeaderGatewayError   = "x-gateway-error"
)

// Content Type Constants
const (
	ContentTypeJSON        = "application/json"
	ContentTypeOctetStream = "application/octet-stream"
)

// Cache Control Values
const (
	CacheControlNoStore = "no-cache, no-store, must-revalidate"
)

// Service Values
const (
	ServiceName    = "generative-gateway"
	ServiceVersion = "2.2.0"
	UserAgent      = ServiceName + "/" + ServiceVersion
)

// CORS Values
const (
	CORSAllowOriginAll   = "*"
	CORSAllowMethodsAll  = "POST, GET, OPTIONS, PUT, DELETE"
	CORSAllowHeadersStd  = "Accept, Content-Type, Content-Length, Authorization, X-Request-ID, X-Session-ID"
	CORSExposeHeadersStd = "X-Request-ID, X-Response-Time, x-ai-provider, x-model-used, x-is-fallback, x-files-processed, x-gateway-error"
)

// UnknownModel is sent in x-original-model when the client omitted the model.
const UnknownModel = "unknown"

// TimestampFormat is the millisecond ISO-8601 layout used for every gateway timestamp (always UTC).
const TimestampFormat = "2006-01-02T15:04:05.000Z"
