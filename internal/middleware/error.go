package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/clinicore/clinic-api/internal/handler"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
)

// ErrorHandler maps errors attached by handlers onto wire responses. App
// errors carry their own status; anything else is a 500 with a generic
// message so internals never leak.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		requestID := c.GetString(ContextRequestID)
		for _, e := range c.Errors {
			log.Error().
				Err(e.Err).
				Str("request_id", requestID).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Msg("request error")
		}

		// Handlers usually write their own error body; only respond here
		// when one slipped through.
		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last().Err
		if appErr, ok := apperrors.AsAppError(lastErr); ok {
			c.JSON(appErr.StatusCode(), handler.NewErrorResponse(appErr.Message))
			return
		}

		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("internal server error"))
	}
}
