package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/feedback-hub/internal/http/middleware"
)

// ErrorResponse is the body of every non-2xx answer. The CLI decodes it into
// client.APIError, so field names are part of the contract.
type ErrorResponse struct {
	// Echo of X-Request-ID, for matching a client error to server logs
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable machine-readable code, see errors.go
	Code string `json:"code" example:"insight_not_active"`
	// Message safe to show an operator
	Message string `json:"message" example:"insight is not active"`
}

func requestID(c *gin.Context) string {
	if rid := middleware.RequestIDFrom(c); rid != "" {
		return rid
	}
	return c.Writer.Header().Get("X-Request-ID")
}

// fail aborts with the error envelope. Server-side failures are logged with
// the request logger; 4xx are already covered by the access log.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("route", c.FullPath()).
			Msg(msg)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{RequestID: requestID(c), Code: code, Message: msg})
}

// Fail is fail for the router's NoRoute and NoMethod fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) { c.JSON(status, body) }

func noContent(c *gin.Context) { c.Status(http.StatusNoContent) }
