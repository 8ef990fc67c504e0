package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID is the header carrying the per-request correlation id.
const HeaderRequestID = "X-Request-ID"

// RequestID assigns a UUID to every request lacking one and echoes it back,
// so log lines and client reports can be correlated.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		rid := ctx.GetHeader(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		ctx.Writer.Header().Set(HeaderRequestID, rid)
		ctx.Next()
	}
}
