package errors

import (
	"fmt"
	"net/http"
	"runtime/debug"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	Stack      string `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// NewError creates a new application error
func NewError(statusCode int, code string, message string) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		Stack:      string(debug.Stack()),
	}
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(code string, message string) *AppError {
	return NewError(http.StatusBadRequest, code, message)
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(code string, message string) *AppError {
	return NewError(http.StatusNotFound, code, message)
}

// NewInternalServerError creates a 500 Internal Server Error
func NewInternalServerError(code string, message string) *AppError {
	return NewError(http.StatusInternalServerError, code, message)
}

// NewBadGatewayError creates a 502 Bad Gateway error
func NewBadGatewayError(code string, message string) *AppError {
	return NewError(http.StatusBadGateway, code, message)
}

// NewServiceUnavailableError creates a 503 Service Unavailable error
func NewServiceUnavailableError(code string, message string) *AppError {
	return NewError(http.StatusServiceUnavailable, code, message)
}

// Domain error constructors. The relay distinguishes store failures from the
// three ways a provider call can fail before streaming begins.

// NewStorageUnavailableError indicates the backing conversation store is unreachable
func NewStorageUnavailableError(err error) *AppError {
	return NewServiceUnavailableError("STORAGE_UNAVAILABLE",
		fmt.Sprintf("conversation store unreachable: %s", err.Error()))
}

// NewUpstreamUnavailableError indicates the provider could not be reached
func NewUpstreamUnavailableError(err error) *AppError {
	return NewBadGatewayError("UPSTREAM_UNAVAILABLE",
		fmt.Sprintf("inference provider unreachable: %s", err.Error()))
}

// NewUpstreamRejectedError indicates the provider returned a non-2xx status
func NewUpstreamRejectedError(status int) *AppError {
	return NewBadGatewayError("UPSTREAM_REJECTED",
		fmt.Sprintf("inference provider rejected request with status %d", status))
}

// NewUpstreamEmptyBodyError indicates a successful status with no readable body
func NewUpstreamEmptyBodyError() *AppError {
	return NewBadGatewayError("UPSTREAM_EMPTY_BODY",
		"inference provider returned no response body")
}

// NewConversationNotFoundError indicates an unknown conversation id
func NewConversationNotFoundError(id string) *AppError {
	return NewNotFoundError("CONVERSATION_NOT_FOUND",
		fmt.Sprintf("conversation %s does not exist", id))
}

// Is checks if the target error is of type AppError with the same code
func Is(err error, target *AppError) bool {
	appErr, ok := err.(*AppError)
	if !ok {
		return false
	}
	return appErr.Code == target.Code
}

// FromError converts a standard error to an AppError
// If the error is already an AppError, it is returned as-is
// Otherwise, it is wrapped as an internal server error
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	if appErr, ok := err.(*AppError); ok {
		return appErr
	}

	return NewInternalServerError(
		"INTERNAL_ERROR",
		fmt.Sprintf("An unexpected error occurred: %s", err.Error()),
	)
}

// GetStatusCode extracts the HTTP status code from an AppError, returns 500 if not an AppError
func GetStatusCode(err error) int {
	if appErr, ok := err.(*AppError); ok {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// GetErrorCode extracts the error code from an AppError, returns "UNKNOWN_ERROR" if not an AppError
func GetErrorCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN_ERROR"
}
