// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/jeranaias/portal-tui/internal/catalog"
	"github.com/jeranaias/portal-tui/internal/portal"
	"github.com/jeranaias/portal-tui/internal/session"
)

// ExitGeneralError is the status of every failed command.
const ExitGeneralError = 1

const actionSignIn = "sign in failed"

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError is a command failure with an optional hint for the user.
type CommandError struct {
	Action string
	Hint   string
	Err    error
}

func (e *CommandError) Error() string {
	msg := e.Action
	if e.Err != nil {
		if msg != "" {
			msg += ": "
		}
		msg += e.Err.Error()
	}
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// =============================================================================
// TRANSLATION
// =============================================================================

// explain wraps err with the action that failed and a hint for the common
// failures: missing or expired sign-in, unreachable backend, unknown ids.
func explain(action, baseURL string, err error) error {
	if err == nil {
		return nil
	}

	ce := &CommandError{Action: action, Err: err}

	var apiErr *portal.APIError
	var urlErr *url.Error
	var netErr *net.OpError

	switch {
	case errors.Is(err, portal.ErrNoToken), errors.Is(err, session.ErrNotLoggedIn):
		ce.Err = errors.New("not signed in")
		ce.Hint = "run `portal login`"
	case errors.Is(err, catalog.ErrUnknownAssistant):
		ce.Hint = "run `portal assistants` for the list"
	case errors.As(err, &apiErr):
		if apiErr.Detail != "" {
			ce.Err = errors.New(apiErr.Detail)
		}
		if errors.Is(err, portal.ErrUnauthorized) && action != actionSignIn {
			ce.Hint = "run `portal login`"
		}
	case errors.Is(err, context.DeadlineExceeded):
		ce.Err = errors.New("the portal did not respond in time")
	case errors.As(err, &netErr), errors.As(err, &urlErr):
		ce.Hint = fmt.Sprintf("is the backend running at %s?", baseURL)
	}
	return ce
}
