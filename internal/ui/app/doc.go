// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the root Bubble Tea model of the portal TUI.
//
// It shows the sign-in form until a session is established, then the shell:
// a top navigation bar, the sidebar and the screen mounted for the current
// route. Route changes go through the router; every change unmounts the
// previous screen before the next one is built, so a chat closed by
// navigation never receives its late reply.
//
// Keys:
//
//	Tab        switch between sidebar and content
//	Esc        back to the sidebar (or close what the screen has open)
//	F2 / F3    profile and settings
//	F10        sign out
//	Ctrl+C     quit
package app
