package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// GenericMessage is shown when a failure carries no server-provided detail,
// e.g. the request never got a response.
const GenericMessage = "Unexpected error occurred"

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// StatusCode returns the HTTP status carried by err, or 0 if there is none.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// Describe renders err for inline display: "Error <status>: <detail>" for API
// errors, GenericMessage for everything else.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		msg := strings.TrimSpace(httpErr.Message)
		if msg == "" {
			msg = "Unexpected error"
		}
		return fmt.Sprintf("Error %d: %s", httpErr.StatusCode, msg)
	}
	return GenericMessage
}

// errorMessage extracts a message from an error body. The backend answers
// with {"detail": "..."} or {"error": "...", "detail": [...]}.
func errorMessage(body []byte) string {
	var apiErr struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if json.Unmarshal(body, &apiErr) != nil {
		return strings.TrimSpace(string(body))
	}
	var detail string
	if len(apiErr.Detail) > 0 && json.Unmarshal(apiErr.Detail, &detail) == nil && detail != "" {
		return detail
	}
	if apiErr.Error != "" {
		return apiErr.Error
	}
	return strings.TrimSpace(string(body))
}
