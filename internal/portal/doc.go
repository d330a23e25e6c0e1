// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package portal is the HTTP client for the AI Platform backend.
//
// # Routes
//
//   - POST /api/auth/register, POST /api/auth/login, GET /api/auth/me
//   - POST /api/ai/{assistant}: one assistant reply for a transcript
//   - GET /api/chats, GET /api/chats/{id}: saved conversations
//
// Authenticated calls read the bearer token from the TokenSource at call
// time, so a login or logout in another process is picked up on the next
// request. Requests are never retried.
//
// # Errors
//
// Any non-2xx status is returned as *APIError carrying the status and the
// backend's "detail" text. 401 and 404 unwrap to ErrUnauthorized and
// ErrNotFound:
//
//	if errors.Is(err, portal.ErrUnauthorized) {
//	    provider.Logout()
//	}
package portal
