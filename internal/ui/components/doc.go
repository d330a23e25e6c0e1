// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the shell widgets shared by every screen of
// the portal TUI.
//
// # Key Types
//
//   - TopNav: Title bar with navigation actions and the initials avatar
//   - Sidebar: Dashboard, assistant and history entries with a cursor
//   - AssistantCard: Dashboard card for one assistant
//
// Components are plain structs rendered by View; the owning model keeps
// them in sync with the router and identity.
package components
