// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/portal-tui/internal/catalog"
	"github.com/jeranaias/portal-tui/internal/router"
	"github.com/jeranaias/portal-tui/internal/ui/styles"
)

func theme() *styles.Theme {
	return styles.NewTheme(styles.ModeLight)
}

func TestSidebar_Entries(t *testing.T) {
	sb := NewSidebar(theme(), 28)

	assert.Len(t, sb.Entries, catalog.Len()+2)
	assert.Equal(t, "dashboard", sb.Entries[0].Target)
	assert.Equal(t, "Logs / History", sb.Entries[len(sb.Entries)-1].Label)
	assert.Equal(t, "marketing", sb.Entries[1].Target)
}

func TestSidebar_ActiveFollowsRouter(t *testing.T) {
	sb := NewSidebar(theme(), 28)
	assert.True(t, sb.IsActive(0), "dashboard is active initially")

	sb.SetActive(router.State{View: router.ViewChat, AssistantID: "tech"})
	assert.Equal(t, "tech", sb.Selected().Target)
	assert.True(t, sb.IsActive(sb.Cursor()))
	assert.False(t, sb.IsActive(0))

	sb.SetActive(router.State{View: router.ViewSettings})
	for i := range sb.Entries {
		assert.False(t, sb.IsActive(i), "settings has no sidebar entry")
	}
}

func TestSidebar_CursorWraps(t *testing.T) {
	sb := NewSidebar(theme(), 28)
	sb.Up()
	assert.Equal(t, len(sb.Entries)-1, sb.Cursor())
	sb.Down()
	assert.Equal(t, 0, sb.Cursor())
}

func TestSidebar_ViewListsEverything(t *testing.T) {
	sb := NewSidebar(theme(), 32)
	sb.Focused = true
	out := sb.View()
	for _, e := range sb.Entries {
		assert.Contains(t, out, e.Label)
	}
	assert.Contains(t, out, "> ")
}

func TestTopNav_View(t *testing.T) {
	nav := NewTopNav(theme())
	nav.Width = 100
	nav.SetIdentity("Ada Lovelace", "AL")
	out := nav.View()

	assert.Contains(t, out, BrandTitle)
	assert.Contains(t, out, "Sign Out")
	assert.Contains(t, out, "AL")
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 100)
	}
}

func TestTopNav_NarrowKeepsAvatar(t *testing.T) {
	nav := NewTopNav(theme())
	nav.Width = 24
	nav.SetIdentity("Ada Lovelace", "AL")
	out := nav.View()

	assert.Contains(t, out, "AL")
	assert.NotContains(t, out, "Sign Out")
}

func TestNavAction_Labels(t *testing.T) {
	assert.Equal(t, "Profile", NavProfile.String())
	assert.Equal(t, "Settings", NavSettings.String())
	assert.Equal(t, "Sign Out", NavSignOut.String())
	assert.Equal(t, "F10", NavSignOut.Key())
}

func TestAssistantCard_View(t *testing.T) {
	a, err := catalog.Lookup("contract")
	assert.NoError(t, err)

	card := NewAssistantCard(theme(), a, 30)
	out := card.View()
	assert.Contains(t, out, "Contract Analyzer")
	assert.Contains(t, out, "Launch")

	card.Selected = true
	assert.Contains(t, card.View(), "Enter to launch")
}
