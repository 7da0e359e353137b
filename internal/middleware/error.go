package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorRenderer writes an error page for status
type ErrorRenderer func(c *gin.Context, status int)

// Recovery turns a panicking handler into a logged 500 page
func Recovery(logger *zap.Logger, render ErrorRenderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			logger.Error("panic recovered",
				zap.Any("error", rec),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.ByteString("stack", debug.Stack()),
			)
			if !c.Writer.Written() {
				render(c, http.StatusInternalServerError)
			}
			c.Abort()
		}()

		c.Next()
	}
}
