// Package httpkit holds the gin glue shared by every module: response
// helpers, error mapping and middleware.
package httpkit

import (
	"errors"
	"net/http"

	"salon_booking_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
	Details   any    `json:"details,omitempty"`
}

func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// Error writes a request-level failure such as a binding error.
func Error(c *gin.Context, status int, message string, details any) {
	c.JSON(status, ErrorResponse{Error: message, Details: details})
}

// HandleError writes err and reports whether there was one. Errors without
// an apperr kind become an opaque 500 and are attached to the gin context
// for the request logger.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind == apperr.KindUnknown {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: apperr.KindUnknown.Code()})
		return true
	}

	c.JSON(appErr.HTTPStatus(), ErrorResponse{
		Error:     appErr.Message,
		Code:      appErr.Kind.Code(),
		Retryable: appErr.Retryable,
		Details:   appErr.Details,
	})
	return true
}
