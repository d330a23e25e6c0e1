// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// BRAND COLORS
// =============================================================================

// Teal - Brand color, user bubbles, avatar, active navigation
var Teal = lipgloss.AdaptiveColor{Light: "#5A7A7C", Dark: "#7FA3A5"}

// TealDeep - Darker teal for selected backgrounds
var TealDeep = lipgloss.AdaptiveColor{Light: "#3F5B5D", Dark: "#2F4748"}

// TealSoft - Tinted surface behind highlighted entries
var TealSoft = lipgloss.AdaptiveColor{Light: "#E6EFEF", Dark: "#263536"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Green - Completed status, success messages
var Green = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"}

// GreenSoft - Background of status badges
var GreenSoft = lipgloss.AdaptiveColor{Light: "#F0FDF4", Dark: "#14532D"}

// Red - Errors and sign out
var Red = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#F87171"}

// Amber - Warnings and pending states
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// =============================================================================
// SURFACE AND TEXT COLORS
// =============================================================================

// Surface - Cards and panels
var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1F2324"}

// SurfaceDim - Page background (gray-50)
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F9FAFB", Dark: "#171A1B"}

// Border - Card borders and separators (gray-200)
var Border = lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#3A4142"}

// TextPrimary - Main body text (gray-900)
var TextPrimary = lipgloss.AdaptiveColor{Light: "#111827", Dark: "#E5E7EB"}

// TextSecondary - Labels (gray-600)
var TextSecondary = lipgloss.AdaptiveColor{Light: "#4B5563", Dark: "#A3ABB0"}

// TextMuted - Hints and timestamps (gray-500)
var TextMuted = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#7B8488"}

// TextInverse - Text on teal backgrounds
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#0F1415"}

// =============================================================================
// STATUS INDICATORS
// =============================================================================

// StatusIndicatorSet contains text indicators shown next to colored
// messages, so state never depends on color alone.
type StatusIndicatorSet struct {
	Success string
	Error   string
	Warning string
	Info    string
}

// StatusIndicators are ASCII-only for maximum terminal compatibility.
var StatusIndicators = StatusIndicatorSet{
	Success: "[OK]",
	Error:   "[X]",
	Warning: "[!]",
	Info:    "[i]",
}

// RenderSuccess renders a success message with its indicator.
func RenderSuccess(message string) string {
	return lipgloss.NewStyle().Foreground(Green).Bold(true).
		Render(StatusIndicators.Success + " " + message)
}

// RenderError renders an error message with its indicator.
func RenderError(message string) string {
	return lipgloss.NewStyle().Foreground(Red).Bold(true).
		Render(StatusIndicators.Error + " " + message)
}

// RenderWarning renders a warning message with its indicator.
func RenderWarning(message string) string {
	return lipgloss.NewStyle().Foreground(Amber).Bold(true).
		Render(StatusIndicators.Warning + " " + message)
}

// RenderInfo renders an info message with its indicator.
func RenderInfo(message string) string {
	return lipgloss.NewStyle().Foreground(Teal).
		Render(StatusIndicators.Info + " " + message)
}
