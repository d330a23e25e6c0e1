// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/portal-tui/internal/ui/styles"
	"github.com/jeranaias/portal-tui/internal/util"
)

// =============================================================================
// TOP NAVIGATION
// =============================================================================

// BrandTitle is shown at the left of the top navigation.
const BrandTitle = "AI Platform"

// NavAction is an entry of the top navigation menu.
type NavAction int

const (
	NavProfile NavAction = iota
	NavSettings
	NavSignOut
)

// NavActions lists the menu entries in display order.
var NavActions = []NavAction{NavProfile, NavSettings, NavSignOut}

// String returns the label of the action.
func (a NavAction) String() string {
	switch a {
	case NavProfile:
		return "Profile"
	case NavSettings:
		return "Settings"
	case NavSignOut:
		return "Sign Out"
	default:
		return ""
	}
}

// Key returns the shortcut shown next to the label.
func (a NavAction) Key() string {
	switch a {
	case NavProfile:
		return "F2"
	case NavSettings:
		return "F3"
	case NavSignOut:
		return "F10"
	default:
		return ""
	}
}

// TopNav is the title bar.
type TopNav struct {
	Width    int
	Name     string
	Initials string
	// Subtitle is the title of the mounted screen.
	Subtitle string
	theme    *styles.Theme
}

// NewTopNav creates a TopNav.
func NewTopNav(theme *styles.Theme) *TopNav {
	return &TopNav{Width: 80, theme: theme}
}

// SetIdentity sets the name and avatar initials.
func (n *TopNav) SetIdentity(name, initials string) {
	n.Name = name
	n.Initials = initials
}

// View renders the bar.
func (n *TopNav) View() string {
	t := n.theme

	left := t.Brand.Render(BrandTitle)
	if n.Subtitle != "" {
		left += t.Muted.Render("  /  " + n.Subtitle)
	}

	actions := make([]string, 0, len(NavActions))
	for _, a := range NavActions {
		label := a.String() + " " + t.Muted.Render(a.Key())
		if a == NavSignOut {
			actions = append(actions, t.NavSignOut.Render(label))
		} else {
			actions = append(actions, t.NavItem.Render(label))
		}
	}

	right := strings.Join(actions, "")
	if n.Initials != "" {
		right += " " + t.Avatar.Render(n.Initials)
	}

	inner := n.Width - t.TopNav.GetHorizontalFrameSize()
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		// Narrow terminal: keep the brand and the avatar only.
		right = ""
		if n.Initials != "" {
			right = t.Avatar.Render(n.Initials)
		}
		left = t.Brand.Render(util.TruncateWidth(BrandTitle, inner-lipgloss.Width(right)-1))
		gap = inner - lipgloss.Width(left) - lipgloss.Width(right)
		if gap < 0 {
			gap = 0
		}
	}

	return t.TopNav.Width(n.Width).Render(left + strings.Repeat(" ", gap) + right)
}
