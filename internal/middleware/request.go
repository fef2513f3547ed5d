package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/audit"
)

const (
	HeaderRequestID = "X-Request-ID"
	headerTraceID   = "X-Trace-ID"

	ctxRequestID = "request_id"
	ctxTraceID   = "trace_id"
)

// RequestContext assigns a request id and puts it on the audit actor so that
// every history event written by the request carries it.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if reqID == "" || len(reqID) > 64 {
			reqID = uuid.NewString()
		}
		c.Set(ctxRequestID, reqID)
		c.Writer.Header().Set(HeaderRequestID, reqID)

		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			c.Set(ctxTraceID, sc.TraceID().String())
			c.Writer.Header().Set(headerTraceID, sc.TraceID().String())
		}

		ctx := audit.WithActor(c.Request.Context(), audit.Actor{RequestID: reqID})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func RequestID(c *gin.Context) string {
	return c.GetString(ctxRequestID)
}
