// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/portal-tui/internal/catalog"
	"github.com/jeranaias/portal-tui/internal/router"
	"github.com/jeranaias/portal-tui/internal/ui/styles"
	"github.com/jeranaias/portal-tui/internal/util"
)

// =============================================================================
// SIDEBAR
// =============================================================================

// SidebarEntry is one navigable line of the sidebar.
type SidebarEntry struct {
	Label string
	// Target is passed to router.Navigate: a view name or an assistant id.
	Target string
}

// Sidebar lists Dashboard, the assistants and the history view.
type Sidebar struct {
	Entries []SidebarEntry
	Width   int
	Height  int
	Focused bool

	cursor int
	active router.State
	theme  *styles.Theme
}

// NewSidebar builds the sidebar from the catalog.
func NewSidebar(theme *styles.Theme, width int) *Sidebar {
	entries := []SidebarEntry{{Label: router.ViewDashboard.Title(), Target: router.ViewDashboard.String()}}
	for _, a := range catalog.All() {
		entries = append(entries, SidebarEntry{Label: a.Name, Target: a.ID})
	}
	entries = append(entries, SidebarEntry{Label: router.ViewLogs.Title(), Target: router.ViewLogs.String()})

	return &Sidebar{Entries: entries, Width: width, theme: theme, active: router.InitialState}
}

// Cursor returns the index under the cursor.
func (s *Sidebar) Cursor() int {
	return s.cursor
}

// Up moves the cursor up, wrapping around.
func (s *Sidebar) Up() {
	s.cursor = (s.cursor - 1 + len(s.Entries)) % len(s.Entries)
}

// Down moves the cursor down, wrapping around.
func (s *Sidebar) Down() {
	s.cursor = (s.cursor + 1) % len(s.Entries)
}

// Selected returns the entry under the cursor.
func (s *Sidebar) Selected() SidebarEntry {
	return s.Entries[s.cursor]
}

// SetActive highlights the entry matching st and moves the cursor to it.
// Views without an entry (settings) highlight nothing.
func (s *Sidebar) SetActive(st router.State) {
	s.active = st
	if i := s.activeIndex(); i >= 0 {
		s.cursor = i
	}
}

// IsActive reports whether entry i matches the router state.
func (s *Sidebar) IsActive(i int) bool {
	return i == s.activeIndex()
}

func (s *Sidebar) activeIndex() int {
	for i, e := range s.Entries {
		switch s.active.View {
		case router.ViewChat:
			if e.Target == s.active.AssistantID {
				return i
			}
		case router.ViewDashboard, router.ViewLogs:
			if e.Target == s.active.View.String() {
				return i
			}
		}
	}
	return -1
}

// View renders the sidebar.
func (s *Sidebar) View() string {
	t := s.theme
	inner := s.Width - t.Sidebar.GetHorizontalFrameSize() - 2

	var b strings.Builder
	for i, e := range s.Entries {
		if i == 1 {
			b.WriteString(t.Muted.Render("Assistants") + "\n")
		}
		if i == len(s.Entries)-1 {
			b.WriteString(t.SidebarSeparator.Render(strings.Repeat("─", inner+2)) + "\n")
		}

		marker := "  "
		if s.Focused && i == s.cursor {
			marker = t.SidebarCursor.Render("> ")
		}
		label := util.PadWidth(util.TruncateWidth(e.Label, inner), inner)
		if s.IsActive(i) {
			label = t.SidebarActive.Render(label)
		} else {
			label = t.SidebarItem.Render(label)
		}
		b.WriteString(marker + label)
		if i < len(s.Entries)-1 {
			b.WriteString("\n")
		}
	}

	style := t.Sidebar.Width(s.Width - 1)
	if s.Height > 0 {
		style = style.Height(s.Height)
	}
	return style.Render(b.String())
}
