// README: Recovery middleware turning panics into 500 responses.
package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"tourbook/internal/logging"
)

func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logging.Event(GetRequestID(c), "http", "panic", fmt.Sprintf("path=%s err=%v", c.Request.URL.Path, r))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": "internal"})
			}
		}()
		c.Next()
	}
}
