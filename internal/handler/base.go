package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/clinicore/clinic-api/pkg/errors"
)

// RespondError writes an error response, honoring the status carried by app
// errors and hiding internals behind a 500 otherwise. The raw error is
// attached to the context for the error-handling middleware to log.
func RespondError(c *gin.Context, err error) {
	_ = c.Error(err)

	if appErr, ok := apperrors.AsAppError(err); ok {
		c.Abort()
		c.JSON(appErr.StatusCode(), NewErrorResponse(appErr.Message))
		return
	}

	c.Abort()
	c.JSON(http.StatusInternalServerError, NewErrorResponse("internal server error"))
}

// RespondBindError turns a request-binding failure into a validation
// response, flattening field errors into a readable message.
func RespondBindError(c *gin.Context, err error) {
	message := err.Error()

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
		}
		message = strings.Join(parts, "; ")
	}

	RespondError(c, apperrors.Validation(message, err))
}
