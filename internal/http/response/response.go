// Package response writes error payloads for the HTTP API.
package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/storefront-backoffice/internal/apperror"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// Status maps err to an HTTP status code.
func Status(err error) int {
	var vErr *apperror.ValidationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error aborts the request with the status and payload for err. Server side
// failures are logged and answered with a generic message.
func Error(c *gin.Context, err error) {
	status := Status(err)
	body := ErrorResponse{}

	var vErr *apperror.ValidationError
	switch status {
	case http.StatusBadRequest:
		if errors.As(err, &vErr) {
			body.Error = vErr.Message
			body.Field = vErr.Field
		}
	case http.StatusUnauthorized:
		body.Error = "Unauthorized"
	case http.StatusForbidden:
		body.Error = "Forbidden"
	case http.StatusNotFound:
		body.Error = "Not found"
	case http.StatusConflict:
		body.Error = err.Error()
	default:
		slog.Error("Request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Any("err", err),
		)
		body.Error = "Internal Server Error"
	}

	c.AbortWithStatusJSON(status, body)
}

// BadRequest aborts with a validation payload for field.
func BadRequest(c *gin.Context, field, message string) {
	Error(c, apperror.Validation(field, message))
}
