package errors

import (
	"encoding/json"
	"net/http"
)

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
	Field   string `json:"field,omitempty"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTPError with the given code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// Helpers for the error taxonomy used across handlers.
var (
	Validation = func(field, msg string) *HTTPError {
		return &HTTPError{Code: http.StatusBadRequest, Message: msg, Field: field}
	}
	NotFound     = func(msg string) *HTTPError { return NewHTTPError(http.StatusNotFound, msg) }
	Unauthorized = func(msg string) *HTTPError { return NewHTTPError(http.StatusUnauthorized, msg) }
	External     = func(msg string) *HTTPError { return NewHTTPError(http.StatusBadGateway, msg) }
	Internal     = func(msg string) *HTTPError { return NewHTTPError(http.StatusInternalServerError, msg) }
)

// Write sends err as JSON. Non-HTTPError values collapse to a generic 500 so
// internal detail never leaks to the caller.
func Write(w http.ResponseWriter, err error) {
	he, ok := err.(*HTTPError)
	if !ok {
		he = Internal("internal error")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.Code)
	json.NewEncoder(w).Encode(he)
}
