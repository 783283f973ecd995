package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/oksasatya/morningforge/pkg/response"
)

const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware puts a request_id in the gin context and echoes it in
// the response header. A valid UUID supplied by the caller is kept.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(response.RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
