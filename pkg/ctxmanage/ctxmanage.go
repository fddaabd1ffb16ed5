package ctxmanage

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TraceIdKey is the gin context key under which the request trace id is stored.
const TraceIdKey = "trace_id"

// GetTraceIdOfRequest returns the trace id set by the logging middleware.
// If the middleware did not run (tests, direct handler calls) a fresh id is
// minted so log lines are never blank.
func GetTraceIdOfRequest(c *gin.Context) string {
	traceId, ok := c.Get(TraceIdKey)
	if !ok {
		id := uuid.NewString()
		c.Set(TraceIdKey, id)
		return id
	}
	s, ok := traceId.(string)
	if !ok || s == "" {
		id := uuid.NewString()
		c.Set(TraceIdKey, id)
		return id
	}
	return s
}
