// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package screens holds the Bubble Tea models mounted in the content area
// of the portal shell, plus the sign-in form shown before the shell.
//
// This file defines the message types screens exchange with the root model:
//   - Navigation: requests to change the mounted screen
//   - Auth: results of sign-in, sign-up and session restore
//   - Chat: completion of a reply turn
//   - Logs: completion of history and detail fetches
//   - Status: one-line notices for the footer
package screens

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/portal-tui/internal/chat"
	"github.com/jeranaias/portal-tui/internal/logs"
	"github.com/jeranaias/portal-tui/internal/session"
)

// =============================================================================
// SCREEN INTERFACE
// =============================================================================

// Screen is a model mounted in the content area.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View() string
	SetSize(width, height int)
	// CapturesEsc reports whether esc currently belongs to the screen
	// (an open modal, an active search) rather than the shell.
	CapturesEsc() bool
	// Unmount releases the screen. In-flight work must not touch it after.
	Unmount()
}

// =============================================================================
// NAVIGATION MESSAGES
// =============================================================================

// NavigateMsg asks the root model to navigate. Target is a view name or an
// assistant id, as accepted by router.Navigate.
type NavigateMsg struct {
	Target string
}

// Navigate returns a command emitting NavigateMsg.
func Navigate(target string) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Target: target} }
}

// =============================================================================
// AUTH MESSAGES
// =============================================================================

// AuthResultMsg carries the outcome of a sign-in or sign-up.
type AuthResultMsg struct {
	Identity session.Identity
	Err      error
	// Restored is set when the identity came from the saved token.
	Restored bool
}

// =============================================================================
// CHAT MESSAGES
// =============================================================================

// TurnDoneMsg reports a finished reply turn. Session identifies the chat the
// turn belongs to; a screen ignores turns of other sessions.
type TurnDoneMsg struct {
	Session *chat.Session
	Result  chat.Result
}

// =============================================================================
// LOGS MESSAGES
// =============================================================================

// LogsLoadedMsg reports a finished history fetch.
type LogsLoadedMsg struct {
	Screen  *logs.Screen
	Applied bool
	Err     error
}

// LogsDetailMsg reports a finished detail fetch.
type LogsDetailMsg struct {
	Screen  *logs.Screen
	Applied bool
	Err     error
}

// =============================================================================
// STATUS MESSAGES
// =============================================================================

// StatusMsg is a one-line notice for the footer.
type StatusMsg struct {
	Text string
	Err  bool
}

// Status returns a command emitting a StatusMsg.
func Status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg { return StatusMsg{Text: text, Err: isErr} }
}
