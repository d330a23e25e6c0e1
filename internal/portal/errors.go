// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package portal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jeranaias/portal-tui/internal/util"
)

// Error variables for common backend errors.
var (
	// ErrUnauthorized indicates a missing, invalid or expired token, or bad
	// credentials on login.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound indicates the requested chat does not exist for this user.
	ErrNotFound = errors.New("not found")

	// ErrNoToken indicates an authenticated call was made while logged out.
	ErrNoToken = errors.New("not logged in")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status int
	Detail string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, http.StatusText(e.Status))
}

// Unwrap maps well-known statuses to the package sentinels.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return nil
	}
}

// errorBody is the {"detail": ...} error shape. Validation failures carry
// a list instead of a string.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// handleErrorResponse converts a non-2xx body into an *APIError.
func handleErrorResponse(statusCode int, body []byte) error {
	apiErr := &APIError{Status: statusCode}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && len(eb.Detail) > 0 {
		var s string
		if json.Unmarshal(eb.Detail, &s) == nil {
			apiErr.Detail = s
		} else {
			apiErr.Detail = string(eb.Detail)
		}
		return apiErr
	}

	apiErr.Detail = util.TruncateRunesNoEllipsis(strings.TrimSpace(string(body)), 200)
	return apiErr
}
