// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package screens

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/portal-tui/internal/catalog"
	"github.com/jeranaias/portal-tui/internal/session"
	"github.com/jeranaias/portal-tui/internal/ui/components"
	"github.com/jeranaias/portal-tui/internal/ui/styles"
)

// Card sizing for the dashboard grid.
const (
	cardWidth = 30
	cardGap   = 1
)

// Dashboard shows the welcome banner and one card per assistant.
type Dashboard struct {
	theme    *styles.Theme
	identity session.Identity
	cards    []catalog.Assistant
	cursor   int

	width, height int
}

// NewDashboard creates the dashboard for id.
func NewDashboard(theme *styles.Theme, id session.Identity) *Dashboard {
	return &Dashboard{theme: theme, identity: id, cards: catalog.All()}
}

// Cursor returns the selected card index.
func (d *Dashboard) Cursor() int { return d.cursor }

// Columns returns how many cards fit on a row.
func (d *Dashboard) Columns() int {
	cols := (d.width + cardGap) / (cardWidth + cardGap)
	if cols < 1 {
		cols = 1
	}
	if cols > len(d.cards) {
		cols = len(d.cards)
	}
	return cols
}

func (d *Dashboard) Init() tea.Cmd { return nil }

func (d *Dashboard) SetSize(width, height int) {
	d.width, d.height = width, height
}

func (d *Dashboard) CapturesEsc() bool { return false }

func (d *Dashboard) Unmount() {}

// Update moves the card cursor and launches the selected assistant.
func (d *Dashboard) Update(msg tea.Msg) (Screen, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return d, nil
	}

	cols := d.Columns()
	n := len(d.cards)
	switch key.String() {
	case "left", "h":
		if d.cursor > 0 {
			d.cursor--
		}
	case "right", "l":
		if d.cursor < n-1 {
			d.cursor++
		}
	case "up", "k":
		if d.cursor-cols >= 0 {
			d.cursor -= cols
		}
	case "down", "j":
		if d.cursor+cols < n {
			d.cursor += cols
		}
	case "home":
		d.cursor = 0
	case "end":
		d.cursor = n - 1
	case "enter", " ":
		return d, Navigate(d.cards[d.cursor].ID)
	}
	return d, nil
}

// View renders the banner and the card grid.
func (d *Dashboard) View() string {
	t := d.theme

	bannerWidth := d.width
	if bannerWidth <= 0 {
		bannerWidth = cardWidth
	}
	banner := t.Banner.Width(bannerWidth - t.Banner.GetHorizontalMargins()).
		Render(d.identity.Welcome() + "\n" +
			lipgloss.NewStyle().Bold(false).Render("Choose an AI assistant to get started"))

	cols := d.Columns()
	var rows []string
	for start := 0; start < len(d.cards); start += cols {
		end := min(start+cols, len(d.cards))
		var row []string
		for i := start; i < end; i++ {
			card := components.NewAssistantCard(t, d.cards[i], cardWidth)
			card.Selected = i == d.cursor
			cell := card.View()
			if i < end-1 {
				cell = lipgloss.NewStyle().MarginRight(cardGap).Render(cell)
			}
			row = append(row, cell)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}

	help := t.Muted.Render("arrows move  enter launch")
	return strings.Join([]string{banner, "", lipgloss.JoinVertical(lipgloss.Left, rows...), "", help}, "\n")
}
