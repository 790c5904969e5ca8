package response

import (
	"portfolio-email-service/internal/domain"

	"github.com/gin-gonic/gin"
)

// Response standardizes the API JSON response
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Error     interface{} `json:"error,omitempty"`
	Path      string      `json:"path,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// Success sends a success response
func Success(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Success:   true,
		Message:   message,
		RequestID: requestID(c),
	})
}

// Error sends an error response. err is omitted when nil or empty.
func Error(c *gin.Context, code int, message string, err interface{}) {
	if s, ok := err.(string); ok && s == "" {
		err = nil
	}
	c.JSON(code, Response{
		Success:   false,
		Message:   message,
		Error:     err,
		RequestID: requestID(c),
	})
}

// NotFound sends the 404 envelope echoing the requested path.
func NotFound(c *gin.Context, message, path string) {
	c.JSON(404, Response{
		Success:   false,
		Message:   message,
		Path:      path,
		RequestID: requestID(c),
	})
}

func requestID(c *gin.Context) string {
	return c.GetString(domain.GinKeyRequestID)
}
