package apiclient

import (
	"encoding/json"
	"fmt"
)

// APIError represents an error response from the gateway.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// IsAuthError returns true if this is an authentication or authorization
// error.
func (e *APIError) IsAuthError() bool {
	return e.Code == "Unauthorized" || e.Code == "Forbidden"
}

// IsNotFound returns true if this is a not found error.
func (e *APIError) IsNotFound() bool {
	return e.Code == "NotFound"
}

// IsConflict returns true if this is a conflict error.
func (e *APIError) IsConflict() bool {
	return e.Code == "Conflict"
}

// IsInvalidRequest returns true if this is a request validation error.
func (e *APIError) IsInvalidRequest() bool {
	return e.Code == "InvalidRequest"
}

// IsUpstream returns true if the gateway's storage substrate failed.
func (e *APIError) IsUpstream() bool {
	return e.Code == "Upstream"
}

// decodeAPIError turns a non-2xx response body into an APIError. Bodies
// that are not the gateway's error envelope are passed through verbatim.
func decodeAPIError(statusCode int, body []byte) error {
	var apiErr APIError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
		apiErr.StatusCode = statusCode
		return &apiErr
	}
	return &APIError{
		StatusCode: statusCode,
		Message:    string(body),
	}
}
