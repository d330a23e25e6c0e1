// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/portal-tui/internal/catalog"
	"github.com/jeranaias/portal-tui/internal/ui/styles"
	"github.com/jeranaias/portal-tui/internal/util"
)

// AssistantCard renders one dashboard card.
type AssistantCard struct {
	Assistant catalog.Assistant
	Width     int
	Selected  bool
	theme     *styles.Theme
}

// NewAssistantCard creates a card.
func NewAssistantCard(theme *styles.Theme, a catalog.Assistant, width int) AssistantCard {
	return AssistantCard{Assistant: a, Width: width, theme: theme}
}

// View renders the card: name, summary and a launch hint.
func (c AssistantCard) View() string {
	t := c.theme
	style := t.Card
	if c.Selected {
		style = t.CardSelected
	}
	inner := c.Width - style.GetHorizontalFrameSize()
	if inner < 8 {
		inner = 8
	}

	title := t.CardTitle.Render(util.TruncateWidth(c.Assistant.Name, inner))
	body := t.CardBody.Width(inner).Height(3).Render(c.Assistant.Summary)

	hint := t.Muted.Render("Launch")
	if c.Selected {
		hint = t.ToggleOn.Render("Enter to launch")
	}

	return style.Width(inner + style.GetHorizontalPadding()).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, body, hint))
}
