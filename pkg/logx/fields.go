package logx

const (
	FieldAppName         = "app-name"
	FieldAppVersion      = "app-version"
	FieldASIN            = "asin"
	FieldAttempt         = "attempt"
	FieldDurationMs      = "duration-ms"
	FieldError           = "error"
	FieldFeedID          = "feed-id"
	FieldHTTPMethod      = "http-method"
	FieldHTTPRequest     = "http-request"
	FieldHTTPResponse    = "http-response"
	FieldIP              = "ip"
	FieldListingID       = "listing-id"
	FieldNewPrice        = "new-price"
	FieldRequestBody     = "request-body"
	FieldRequestID       = "request-id"
	FieldResponseBody    = "response-body"
	FieldResponseHeaders = "response-headers"
	FieldResponseStatus  = "response-status"
	FieldSKU             = "sku"
	FieldStack           = "stack"
	FieldTraceID         = "trace-id"
	FieldURL             = "url"
)
