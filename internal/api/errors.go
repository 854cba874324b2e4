// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/pdiddy/inpressign/internal/library"
	"github.com/pdiddy/inpressign/pkg/types"
)

// APIError is the JSON body of every failed request.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// StatusCode reports the HTTP status the error is served with.
func (e *APIError) StatusCode() int {
	return e.Status
}

func newError(status int, code, message string, cause error) *APIError {
	err := &APIError{Status: status, Code: code, Message: message}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewBadRequestError creates a 400 for a malformed request body.
func NewBadRequestError(message string, cause error) *APIError {
	return newError(http.StatusBadRequest, "BAD_REQUEST", message, cause)
}

// NewValidationError creates a 400 for a missing or invalid field.
func NewValidationError(field string) *APIError {
	return newError(http.StatusBadRequest, "VALIDATION_ERROR",
		fmt.Sprintf("validation failed for field: %s", field), nil)
}

// NewNotFoundError creates a 404.
func NewNotFoundError(resource, id string) *APIError {
	return newError(http.StatusNotFound, "NOT_FOUND",
		fmt.Sprintf("%s not found: %s", resource, id), nil)
}

// NewUnauthorizedError creates a 401.
func NewUnauthorizedError() *APIError {
	return newError(http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid API token", nil)
}

// NewForbiddenHostError creates a 403 for a request addressed to a
// non-loopback host.
func NewForbiddenHostError(host string) *APIError {
	return newError(http.StatusForbidden, "FORBIDDEN_HOST",
		fmt.Sprintf("host not allowed: %q", host), nil)
}

// FromError maps a command or library error onto its API error.
func FromError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, types.ErrDecode):
		return newError(http.StatusBadRequest, "DECODE_ERROR", "file data is not valid base64", err)
	case errors.Is(err, types.ErrWrite):
		return newError(http.StatusInternalServerError, "WRITE_ERROR", "could not stage the file for extraction", err)
	case errors.Is(err, library.ErrInvalid):
		return newError(http.StatusBadRequest, "VALIDATION_ERROR", "invalid input", err)
	case errors.Is(err, library.ErrNotFound):
		return newError(http.StatusNotFound, "NOT_FOUND", "resource not found", err)
	case errors.Is(err, library.ErrDuplicate):
		return newError(http.StatusConflict, "CONFLICT", "a record with this hash already exists", err)
	}
	return newError(http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred", err)
}

// ErrorHandler returns an echo.HTTPErrorHandler that writes APIError
// bodies and logs server-side failures.
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var apiErr *APIError
		var he *echo.HTTPError
		switch {
		case errors.As(err, &apiErr):
		case errors.As(err, &he):
			apiErr = &APIError{
				Status:  he.Code,
				Code:    "HTTP_ERROR",
				Message: fmt.Sprintf("%v", he.Message),
			}
		default:
			apiErr = FromError(err)
		}

		if apiErr.Status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.String("code", apiErr.Code),
				zap.Error(err),
			)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(apiErr.Status)
			return
		}
		_ = c.JSON(apiErr.Status, apiErr)
	}
}
