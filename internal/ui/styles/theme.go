// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme modes accepted by NewTheme.
const (
	ModeAuto  = "auto"
	ModeDark  = "dark"
	ModeLight = "light"
)

// Theme holds all the styled components for the application.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// SHELL
	// ==========================================================================

	App          lipgloss.Style
	TopNav       lipgloss.Style
	Brand        lipgloss.Style
	NavItem      lipgloss.Style
	NavItemFocus lipgloss.Style
	NavSignOut   lipgloss.Style
	Avatar       lipgloss.Style

	Sidebar          lipgloss.Style
	SidebarItem      lipgloss.Style
	SidebarActive    lipgloss.Style
	SidebarCursor    lipgloss.Style
	SidebarSeparator lipgloss.Style

	Content lipgloss.Style
	Footer  lipgloss.Style

	// ==========================================================================
	// TEXT
	// ==========================================================================

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Label    lipgloss.Style
	Muted    lipgloss.Style
	Value    lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style

	// ==========================================================================
	// DASHBOARD
	// ==========================================================================

	Banner       lipgloss.Style
	Card         lipgloss.Style
	CardSelected lipgloss.Style
	CardTitle    lipgloss.Style
	CardBody     lipgloss.Style

	// ==========================================================================
	// CHAT
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	BubbleTime      lipgloss.Style
	SidePanel       lipgloss.Style
	Input           lipgloss.Style
	InputFocused    lipgloss.Style
	Spinner         lipgloss.Style

	// ==========================================================================
	// FORMS, TABLES, MODALS
	// ==========================================================================

	Button        lipgloss.Style
	ButtonActive  lipgloss.Style
	ToggleOn      lipgloss.Style
	ToggleOff     lipgloss.Style
	Badge         lipgloss.Style
	TableHeader   lipgloss.Style
	TableSelected lipgloss.Style
	Modal         lipgloss.Style
	Section       lipgloss.Style
}

// NewTheme creates a theme for mode ("auto", "dark" or "light"). Unknown
// modes behave like "auto".
func NewTheme(mode string) *Theme {
	profile := termenv.ColorProfile()

	var isDark bool
	switch mode {
	case ModeDark:
		isDark = true
		lipgloss.SetHasDarkBackground(true)
	case ModeLight:
		isDark = false
		lipgloss.SetHasDarkBackground(false)
	default:
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		IsDark:       isDark,
		ColorProfile: profile,
	}
	t.build()
	return t
}

func (t *Theme) build() {
	t.App = lipgloss.NewStyle().Foreground(TextPrimary)

	// Shell
	t.TopNav = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(Border).
		Padding(0, 1)
	t.Brand = lipgloss.NewStyle().Foreground(Teal).Bold(true)
	t.NavItem = lipgloss.NewStyle().Foreground(TextSecondary).Padding(0, 1)
	t.NavItemFocus = lipgloss.NewStyle().Foreground(TextInverse).Background(Teal).Padding(0, 1)
	t.NavSignOut = lipgloss.NewStyle().Foreground(Red).Padding(0, 1)
	t.Avatar = lipgloss.NewStyle().Foreground(TextInverse).Background(Teal).Bold(true).Padding(0, 1)

	t.Sidebar = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(Border).
		Padding(1, 1)
	t.SidebarItem = lipgloss.NewStyle().Foreground(TextSecondary).PaddingLeft(1)
	t.SidebarActive = lipgloss.NewStyle().Foreground(Teal).Background(TealSoft).Bold(true).PaddingLeft(1)
	t.SidebarCursor = lipgloss.NewStyle().Foreground(Teal).Bold(true)
	t.SidebarSeparator = lipgloss.NewStyle().Foreground(Border)

	t.Content = lipgloss.NewStyle().Padding(1, 2)
	t.Footer = lipgloss.NewStyle().Foreground(TextMuted).Padding(0, 1)

	// Text
	t.Title = lipgloss.NewStyle().Foreground(TextPrimary).Bold(true)
	t.Subtitle = lipgloss.NewStyle().Foreground(TextMuted)
	t.Label = lipgloss.NewStyle().Foreground(TextSecondary).Bold(true)
	t.Muted = lipgloss.NewStyle().Foreground(TextMuted)
	t.Value = lipgloss.NewStyle().Foreground(TextPrimary)
	t.Error = lipgloss.NewStyle().Foreground(Red)
	t.Success = lipgloss.NewStyle().Foreground(Green)

	// Dashboard
	t.Banner = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Teal).
		Bold(true).
		Padding(1, 2)
	t.Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
	t.CardSelected = t.Card.BorderForeground(Teal)
	t.CardTitle = lipgloss.NewStyle().Foreground(TextPrimary).Bold(true)
	t.CardBody = lipgloss.NewStyle().Foreground(TextMuted)

	// Chat
	t.UserBubble = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Teal).
		Padding(0, 1)
	t.AssistantBubble = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
	t.BubbleTime = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)
	t.SidePanel = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(Border).
		Padding(0, 2, 0, 0)
	t.Input = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
	t.InputFocused = t.Input.BorderForeground(Teal)
	t.Spinner = lipgloss.NewStyle().Foreground(Teal)

	// Forms, tables, modals
	t.Button = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 2)
	t.ButtonActive = t.Button.Foreground(Teal).BorderForeground(Teal).Bold(true)
	t.ToggleOn = lipgloss.NewStyle().Foreground(Teal).Bold(true)
	t.ToggleOff = lipgloss.NewStyle().Foreground(TextMuted)
	t.Badge = lipgloss.NewStyle().Foreground(Green).Background(GreenSoft).Padding(0, 1)
	t.TableHeader = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Border).
		BorderBottom(true)
	t.TableSelected = lipgloss.NewStyle().Foreground(TextInverse).Background(Teal)
	t.Modal = lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(Teal).
		Padding(1, 2)
	t.Section = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 2).
		MarginBottom(1)
}

// GlamourStyle returns the glamour standard style name for the theme.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}

// =============================================================================
// DEFAULT THEME
// =============================================================================

var (
	defaultTheme     *Theme
	defaultThemeOnce sync.Once
)

// DefaultTheme returns a lazily created auto-detected theme.
func DefaultTheme() *Theme {
	defaultThemeOnce.Do(func() {
		defaultTheme = NewTheme(ModeAuto)
	})
	return defaultTheme
}
