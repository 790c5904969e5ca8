package middleware

import (
	"errors"
	"net/http"

	"portfolio-email-service/internal/delivery/http/response"
	"portfolio-email-service/pkg/apperror"
	"portfolio-email-service/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error attached to the context as a response envelope.
// Diagnostic detail is included only when exposeDetail is set, i.e. outside production.
func ErrorHandler(exposeDetail bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			appErr = apperror.Internal(err)
		}

		if appErr.Code >= http.StatusInternalServerError {
			logger.Log.Error("Request failed",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"request_id", c.GetString(RequestIDKey),
				"status", appErr.Code,
				"error", appErr.Detail(),
			)
		}

		if appErr.Code == http.StatusNotFound && appErr.Path != "" {
			response.NotFound(c, appErr.Message, appErr.Path)
			return
		}

		var detail interface{}
		if exposeDetail {
			detail = appErr.Detail()
		}
		response.Error(c, appErr.Code, appErr.Message, detail)
	}
}

func abortWithPayloadTooLarge(c *gin.Context) {
	_ = c.Error(apperror.PayloadTooLarge(nil))
	c.Abort()
}
