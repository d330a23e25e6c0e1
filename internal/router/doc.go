// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package router holds the portal's navigation state.
//
// The state is a View (dashboard, chat, settings, logs) plus the id of the
// active assistant, which is present exactly when the view is chat. Exactly
// one screen is mounted for a given state.
//
// # Key Types
//
//   - View: Screen enumeration
//   - State: View plus active assistant id
//   - Router: Thread-safe state machine with change observers
//
// # Usage
//
//	r := router.New()
//	r.OnChange(func(prev, next router.State) { unmount(prev) })
//	if err := r.Navigate("tech"); err != nil {
//	    // unknown target, state unchanged
//	}
//	r.BackToDashboard()
package router
