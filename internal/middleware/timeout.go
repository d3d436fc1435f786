package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/gamestore/internal/pkg"
)

// Timeout bounds every request context by d, so store calls issued by the
// handlers are cancelled once the deadline passes. A handler that gives up
// without writing a response gets a 408 envelope. A non-positive d disables
// the bound.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusRequestTimeout, pkg.Response{
				Code:    http.StatusRequestTimeout,
				Message: "request timeout",
			})
		}
	}
}
