// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import "strings"

// ============================================================================
// VIEW TYPE
// ============================================================================

// View identifies the mounted screen.
type View int

const (
	// ViewDashboard shows the assistant launch cards.
	ViewDashboard View = iota
	// ViewChat shows a chat with the active assistant.
	ViewChat
	// ViewSettings shows the read-only profile.
	ViewSettings
	// ViewLogs shows the conversation history.
	ViewLogs
)

// String returns the navigation name of the view.
func (v View) String() string {
	switch v {
	case ViewDashboard:
		return "dashboard"
	case ViewChat:
		return "chat"
	case ViewSettings:
		return "settings"
	case ViewLogs:
		return "logs"
	default:
		return "unknown"
	}
}

// Title returns the heading shown for the view.
func (v View) Title() string {
	switch v {
	case ViewDashboard:
		return "Dashboard"
	case ViewChat:
		return "Chat"
	case ViewSettings:
		return "Settings"
	case ViewLogs:
		return "Logs / History"
	default:
		return ""
	}
}

// ParseView parses a navigation name. Matching is case-insensitive.
func ParseView(s string) (View, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dashboard":
		return ViewDashboard, true
	case "chat":
		return ViewChat, true
	case "settings":
		return ViewSettings, true
	case "logs":
		return ViewLogs, true
	default:
		return ViewDashboard, false
	}
}

// ============================================================================
// STATE
// ============================================================================

// State is a snapshot of the router.
type State struct {
	View View
	// AssistantID is empty unless View is ViewChat.
	AssistantID string
}

// InitialState is the state of a fresh router.
var InitialState = State{View: ViewDashboard}

// String returns "chat:<id>" for chats and the view name otherwise.
func (s State) String() string {
	if s.View == ViewChat {
		return "chat:" + s.AssistantID
	}
	return s.View.String()
}
