// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the signed-in identity and its persisted bearer token.
//
// # Key Types
//
//   - Identity: name, email, department and token of the signed-in user
//   - TokenStore: durable storage for the token under a fixed key
//   - Provider: login, register, restore and logout against the backend
//   - Watcher: reports token changes made by other portal processes
//
// There is no package-level identity. The Provider hands out Identity
// values and callers pass them explicitly to whatever needs them.
//
// # Usage
//
//	store := session.NewFileTokenStore(cfg.Auth.TokenFile)
//	client := portal.NewClient(cfg.API.BaseURL, store)
//	p := session.NewProvider(client, store)
//	id, err := p.Restore(ctx)
//	if errors.Is(err, session.ErrNotLoggedIn) {
//	    id, err = p.Login(ctx, email, password)
//	}
package session
