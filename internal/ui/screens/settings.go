// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package screens

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/portal-tui/internal/session"
	"github.com/jeranaias/portal-tui/internal/ui/styles"
)

// ProfileRole is the role shown for every portal user.
const ProfileRole = "AI Platform User"

// Toggle is a preference switch. Toggles are local to the screen and are not
// persisted.
type Toggle struct {
	Label       string
	Description string
	On          bool
}

// DefaultToggles returns the preference switches in their initial state.
func DefaultToggles() []Toggle {
	return []Toggle{
		{Label: "Email Notifications", Description: "Receive updates about your AI interactions", On: true},
		{Label: "Save Chat History", Description: "Store conversations for future reference", On: true},
		{Label: "Dark Mode", Description: "Switch to a darker color scheme", On: false},
		{Label: "Analytics", Description: "Help improve the platform with usage data", On: true},
	}
}

// Settings shows the read-only profile, preference switches and the
// security summary.
type Settings struct {
	theme    *styles.Theme
	identity session.Identity
	toggles  []Toggle
	cursor   int
	viewport viewport.Model

	width, height int
}

// NewSettings creates the settings screen for id.
func NewSettings(theme *styles.Theme, id session.Identity) *Settings {
	return &Settings{
		theme:    theme,
		identity: id,
		toggles:  DefaultToggles(),
		viewport: viewport.New(0, 0),
	}
}

// Toggles returns a copy of the switches.
func (s *Settings) Toggles() []Toggle {
	out := make([]Toggle, len(s.toggles))
	copy(out, s.toggles)
	return out
}

// Cursor returns the focused switch.
func (s *Settings) Cursor() int { return s.cursor }

func (s *Settings) Init() tea.Cmd { return nil }

func (s *Settings) CapturesEsc() bool { return false }

func (s *Settings) Unmount() {}

func (s *Settings) SetSize(width, height int) {
	s.width, s.height = width, height
	s.viewport.Width = width
	s.viewport.Height = max(height, 1)
	s.viewport.SetContent(s.render())
}

// Update moves between switches and flips them.
func (s *Settings) Update(msg tea.Msg) (Screen, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "up", "k":
			s.cursor = (s.cursor - 1 + len(s.toggles)) % len(s.toggles)
		case "down", "j":
			s.cursor = (s.cursor + 1) % len(s.toggles)
		case " ", "enter", "x":
			s.toggles[s.cursor].On = !s.toggles[s.cursor].On
		default:
			var cmd tea.Cmd
			s.viewport, cmd = s.viewport.Update(msg)
			return s, cmd
		}
		s.viewport.SetContent(s.render())
	}
	return s, nil
}

func (s *Settings) View() string {
	if s.viewport.Width <= 0 {
		return s.render()
	}
	return s.viewport.View()
}

func (s *Settings) render() string {
	t := s.theme
	id := s.identity

	sectionWidth := max(s.width-t.Section.GetHorizontalFrameSize(), 30)
	section := func(title string, lines ...string) string {
		body := lipgloss.JoinVertical(lipgloss.Left, append([]string{t.Title.Render(title), ""}, lines...)...)
		return t.Section.Width(sectionWidth + t.Section.GetHorizontalPadding()).Render(body)
	}
	field := func(label, value string) string {
		return t.Label.Render(fmt.Sprintf("%-24s", label)) + t.Value.Render(value)
	}

	dept := id.Department
	if dept != "" {
		dept += " Department"
	}
	profile := section("Profile Information",
		t.Avatar.Render(id.Initials())+"  "+t.Title.Render(id.DisplayName()),
		t.Muted.Render(dept),
		"",
		field("Email Address", id.Email),
		field("Department", id.Department),
		field("Role", ProfileRole),
		"",
		t.Muted.Render("Profile details come from your portal account and cannot be edited here."),
	)

	var prefs []string
	for i, tg := range s.toggles {
		marker := "  "
		if i == s.cursor {
			marker = t.SidebarCursor.Render("> ")
		}
		state := t.ToggleOff.Render("[ off ]")
		if tg.On {
			state = t.ToggleOn.Render("[ on  ]")
		}
		prefs = append(prefs,
			marker+state+" "+t.Value.Render(tg.Label),
			"          "+t.Muted.Render(tg.Description))
	}
	preferences := section("Preferences", prefs...)

	signedIn := ""
	if !id.SignedInAt.IsZero() {
		signedIn = id.SignedInAt.Format("Jan 2, 2006") + " at " + id.SignedInAt.Format("3:04 PM")
	}
	method := id.Method
	if method == "" {
		method = session.MethodPassword
	}
	security := section("Security",
		field("Last Sign In", signedIn),
		field("Authentication Method", method),
	)

	return strings.Join([]string{
		t.Title.Render("Settings & Profile"),
		t.Muted.Render("up/down select  space toggle"),
		"",
		profile,
		preferences,
		security,
	}, "\n")
}
