package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Actor (matches pkg/middleware/auth.go keys)
	FieldUserID    = "user_id"
	FieldAccountID = "account_id"
	FieldUserName  = "user_name"

	// Cache
	FieldCacheKey   = "cache_key"
	FieldCacheState = "cache_state"

	// Service
	FieldService = "service"
)
