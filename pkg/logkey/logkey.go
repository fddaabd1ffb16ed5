package logkey

// Common keys for structured log attributes so grepping logs stays sane.
const (
	TraceID = "trace_id"
	ERROR   = "error"
	UserID  = "user_id"
	OrderID = "order_id"
)
