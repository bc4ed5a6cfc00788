package api

import (
	"encoding/json"
	"fmt"
)

// HTTPError is a non-2xx response from the backend. Message carries the
// server-provided `detail` or `error` field when present.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// errorMessage extracts a human-readable message from an error response body.
// Falls back to "HTTP <status>" when the body has neither `detail` nor
// `error`, or is not JSON at all.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
		Err    string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Err != "" {
			return payload.Err
		}
	}
	return fmt.Sprintf("HTTP %d", status)
}
