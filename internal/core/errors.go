// Package core defines the domain types and error model shared by all features.
package core

import (
	"fmt"
	"net/http"
)

// Error type constants used in API responses
const (
	ErrorTypeInvalidRequest = "invalid_request_error"
	ErrorTypeAuthentication = "authentication_error"
	ErrorTypePermission     = "permission_error"
	ErrorTypeNotFound       = "not_found_error"
	ErrorTypeInternal       = "internal_error"
)

// APIError is the canonical error carried from feature code to the HTTP
// layer. It knows its own status code and JSON shape.
type APIError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for errors.Is/As chains
func (e *APIError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode maps the error type to an HTTP status code
func (e *APIError) HTTPStatusCode() int {
	switch e.Type {
	case ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case ErrorTypeAuthentication:
		return http.StatusUnauthorized
	case ErrorTypePermission:
		return http.StatusForbidden
	case ErrorTypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ToJSON returns the response body for this error
func (e *APIError) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"error": map[string]interface{}{
			"type":    e.Type,
			"message": e.Message,
		},
	}
}

// NewInvalidRequestError creates a 400-class error
func NewInvalidRequestError(message string, err error) *APIError {
	return &APIError{Type: ErrorTypeInvalidRequest, Message: message, Err: err}
}

// NewAuthenticationError creates a 401-class error
func NewAuthenticationError(message string) *APIError {
	return &APIError{Type: ErrorTypeAuthentication, Message: message}
}

// NewPermissionError creates a 403-class error
func NewPermissionError(message string) *APIError {
	return &APIError{Type: ErrorTypePermission, Message: message}
}

// NewNotFoundError creates a 404-class error
func NewNotFoundError(message string) *APIError {
	return &APIError{Type: ErrorTypeNotFound, Message: message}
}

// NewInternalError creates a 500-class error
func NewInternalError(message string, err error) *APIError {
	return &APIError{Type: ErrorTypeInternal, Message: message, Err: err}
}
