// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server is the development backend started by "portal serve".
//
// It serves the same HTTP contract the portal client consumes, so the TUI
// and CLI can be exercised end to end without the hosted platform.
//
// # Endpoints
//
//   - GET  /                   - Status banner
//   - POST /api/auth/register  - Create an account, returns a bearer token
//   - POST /api/auth/login     - Exchange credentials for a bearer token
//   - GET  /api/auth/me        - Identity behind the token
//   - POST /api/ai/{assistant} - Reply to a transcript and save it
//   - GET  /api/chats          - Caller's saved chats, oldest first
//   - GET  /api/chats/{id}     - One saved chat
//
// Errors are JSON objects of the form {"detail": "..."}.
//
// # Middleware
//
//   - Panic recovery with stack trace logging
//   - Security headers
//   - X-Request-ID propagation
//   - Request logging
//   - CORS for the configured origins
//   - Per-client token bucket rate limiting
//
// # Usage
//
//	store, _ := storage.Open(cfg.Server.Database)
//	srv, err := server.New(cfg.Server, store, server.NewReplier(cfg.Server), log)
//	if err != nil {
//	    return err
//	}
//	go srv.Start()
//	defer srv.Shutdown(ctx)
package server
