package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Tracing fields, carried on the context logger through a call chain.
const (
	FieldRequestID  = "request_id"
	FieldSessionID  = "session_id"
	FieldResultID   = "result_id"
	FieldPlatformID = "platform_id"
	FieldComponent  = "component"
)

// Metric fields, attached per entry via the Entry API.
const (
	FieldDurationMs = "duration_ms"
	FieldCount      = "count"
	FieldProgress   = "progress"
	FieldSize       = "size"
	FieldStatus     = "status"
)
