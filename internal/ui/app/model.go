// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/portal-tui/internal/catalog"
	"github.com/jeranaias/portal-tui/internal/chat"
	"github.com/jeranaias/portal-tui/internal/config"
	"github.com/jeranaias/portal-tui/internal/export"
	"github.com/jeranaias/portal-tui/internal/logging"
	"github.com/jeranaias/portal-tui/internal/logs"
	"github.com/jeranaias/portal-tui/internal/router"
	"github.com/jeranaias/portal-tui/internal/session"
	"github.com/jeranaias/portal-tui/internal/ui/components"
	"github.com/jeranaias/portal-tui/internal/ui/screens"
	"github.com/jeranaias/portal-tui/internal/ui/styles"
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Backend answers chat turns and serves the history. *portal.Client
// implements it.
type Backend interface {
	chat.Replier
	logs.Source
}

// Auth manages the signed-in identity. *session.Provider implements it.
type Auth interface {
	screens.Authenticator
	Restore(ctx context.Context) (session.Identity, error)
	Logout() error
	Forget()
}

// Deps are the collaborators of the root model.
type Deps struct {
	Config  *config.Config
	Backend Backend
	Auth    Auth
	// TokenEvents reports changes made to the token file by other
	// processes. Optional.
	TokenEvents <-chan session.TokenEvent
	Logger      *logging.Logger
	// Theme defaults to one built from Config.UI.Theme.
	Theme *styles.Theme
	// ModelLabel is shown in the chat side panel.
	ModelLabel string
}

// =============================================================================
// MODEL
// =============================================================================

type focusArea int

const (
	focusSidebar focusArea = iota
	focusContent
)

// tokenEventMsg wraps a token file change.
type tokenEventMsg struct {
	event session.TokenEvent
}

// Model is the root Bubble Tea model: the sign-in form until a user is
// signed in, then the shell (top navigation, sidebar, mounted screen).
type Model struct {
	cfg        *config.Config
	theme      *styles.Theme
	log        *logging.Logger
	backend    Backend
	auth       Auth
	events     <-chan session.TokenEvent
	modelLabel string

	router  *router.Router
	nav     *components.TopNav
	sidebar *components.Sidebar
	login   *screens.Login
	screen  screens.Screen
	// mountCmd is the Init command of a screen mounted by a route change.
	mountCmd tea.Cmd

	identity  session.Identity
	signedIn  bool
	restoring bool
	focus     focusArea

	keys      KeyMap
	help      help.Model
	status    string
	statusErr bool

	width, height int
}

// New creates the root model.
func New(deps Deps) *Model {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := deps.Logger
	if log == nil {
		log = logging.Nop()
	}
	theme := deps.Theme
	if theme == nil {
		theme = styles.NewTheme(cfg.UI.Theme)
	}

	m := &Model{
		cfg:        cfg,
		theme:      theme,
		log:        log.With("component", "tui"),
		backend:    deps.Backend,
		auth:       deps.Auth,
		events:     deps.TokenEvents,
		modelLabel: deps.ModelLabel,
		router:     router.New(),
		nav:        components.NewTopNav(theme),
		sidebar:    components.NewSidebar(theme, cfg.UI.SidebarWidth),
		login:      screens.NewLogin(theme, deps.Auth),
		focus:      focusContent,
		keys:       DefaultKeyMap(),
		help:       help.New(),
	}
	m.router.OnChange(m.onRouteChange)
	return m
}

// SignedIn reports whether the shell is showing.
func (m *Model) SignedIn() bool { return m.signedIn }

// Route returns the router state.
func (m *Model) Route() router.State { return m.router.Current() }

// Init restores the saved session and starts watching the token file.
func (m *Model) Init() tea.Cmd {
	m.restoring = true
	return tea.Batch(m.restoreCmd(), m.watchCmd(), m.login.Init())
}

func (m *Model) restoreCmd() tea.Cmd {
	auth := m.auth
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), screens.AuthTimeout)
		defer cancel()
		id, err := auth.Restore(ctx)
		return screens.AuthResultMsg{Identity: id, Err: err, Restored: true}
	}
}

func (m *Model) watchCmd() tea.Cmd {
	if m.events == nil {
		return nil
	}
	ch := m.events
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return tokenEventMsg{event: ev}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case screens.AuthResultMsg:
		return m, m.handleAuthResult(msg)

	case tokenEventMsg:
		return m, tea.Batch(m.handleTokenEvent(msg.event), m.watchCmd())

	case screens.NavigateMsg:
		return m, m.navigate(msg.Target)

	case screens.StatusMsg:
		m.setStatus(msg.Text, msg.Err)
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	var cmd tea.Cmd
	if !m.signedIn {
		m.login, cmd = m.login.Update(msg)
		return m, cmd
	}
	if m.screen != nil {
		m.screen, cmd = m.screen.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleAuthResult(msg screens.AuthResultMsg) tea.Cmd {
	if msg.Restored {
		m.restoring = false
		if msg.Err != nil {
			if !errors.Is(msg.Err, session.ErrNotLoggedIn) {
				m.log.Warn("session restore failed", "error", msg.Err)
				m.setStatus("Could not restore session: "+msg.Err.Error(), true)
			}
			return nil
		}
		// The token changed underneath a live shell; only a different user
		// resets it.
		if m.signedIn && msg.Identity.Email == m.identity.Email {
			return nil
		}
		return m.signIn(msg.Identity)
	}

	if msg.Err != nil {
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return cmd
	}
	m.login, _ = m.login.Update(msg)
	return m.signIn(msg.Identity)
}

func (m *Model) handleTokenEvent(ev session.TokenEvent) tea.Cmd {
	m.log.Debug("token file changed", "event", ev.String())
	switch ev {
	case session.TokenRemoved:
		if m.signedIn {
			m.auth.Forget()
			m.endSession("Signed out from another session")
		}
	case session.TokenWritten:
		if m.login.Busy() || m.restoring {
			return nil
		}
		m.restoring = !m.signedIn
		return m.restoreCmd()
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		m.shutdown()
		return tea.Quit
	}

	if !m.signedIn {
		if m.restoring {
			return nil
		}
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return cmd
	}

	// Any key dismisses the last notice.
	m.status, m.statusErr = "", false

	switch {
	case key.Matches(msg, m.keys.SignOut):
		m.signOut()
		return nil
	case key.Matches(msg, m.keys.Profile), key.Matches(msg, m.keys.Settings):
		m.setFocus(focusContent)
		return m.navigate(router.ViewSettings.String())
	case key.Matches(msg, m.keys.Focus):
		if m.focus == focusSidebar {
			m.setFocus(focusContent)
		} else {
			m.setFocus(focusSidebar)
		}
		return nil
	}

	if m.focus == focusSidebar {
		return m.updateSidebar(msg)
	}

	if key.Matches(msg, m.keys.Back) && (m.screen == nil || !m.screen.CapturesEsc()) {
		m.setFocus(focusSidebar)
		return nil
	}

	if m.screen == nil {
		return nil
	}
	var cmd tea.Cmd
	m.screen, cmd = m.screen.Update(msg)
	return cmd
}

func (m *Model) updateSidebar(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.sidebar.Up()
	case key.Matches(msg, m.keys.Down):
		m.sidebar.Down()
	case key.Matches(msg, m.keys.Open):
		target := m.sidebar.Selected().Target
		m.setFocus(focusContent)
		return m.navigate(target)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
	}
	return nil
}

func (m *Model) setFocus(f focusArea) {
	m.focus = f
	m.sidebar.Focused = f == focusSidebar
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status, m.statusErr = text, isErr
}

// =============================================================================
// SESSION AND ROUTING
// =============================================================================

func (m *Model) signIn(id session.Identity) tea.Cmd {
	m.identity = id
	m.signedIn = true
	m.restoring = false
	m.nav.SetIdentity(id.DisplayName(), id.Initials())
	m.setFocus(focusContent)
	m.log.Info("shell opened", "email", id.Email)

	if m.screen != nil {
		m.screen.Unmount()
		m.screen = nil
	}
	m.router.BackToDashboard()
	m.layout()
	return m.takeMountCmd()
}

func (m *Model) signOut() {
	if err := m.auth.Logout(); err != nil {
		m.log.Warn("logout failed", "error", err)
	}
	m.endSession("Signed out")
}

func (m *Model) endSession(notice string) {
	m.signedIn = false
	m.identity = session.Identity{}
	m.router.BackToDashboard()
	m.login.Reset()
	m.setFocus(focusContent)
	m.setStatus(notice, false)
}

// navigate moves the router and returns the new screen's Init command.
func (m *Model) navigate(target string) tea.Cmd {
	if !m.signedIn {
		return nil
	}
	if err := m.router.Navigate(target); err != nil {
		m.setStatus(err.Error(), true)
		return nil
	}
	return m.takeMountCmd()
}

func (m *Model) takeMountCmd() tea.Cmd {
	cmd := m.mountCmd
	m.mountCmd = nil
	return cmd
}

// onRouteChange unmounts the previous screen and mounts the next one.
func (m *Model) onRouteChange(prev, next router.State) {
	if prev == next && m.screen != nil {
		return
	}
	if m.screen != nil {
		m.screen.Unmount()
		m.screen = nil
	}

	m.sidebar.SetActive(next)
	m.nav.Subtitle = next.View.Title()
	if next.View == router.ViewChat {
		m.nav.Subtitle = catalog.NameOf(next.AssistantID)
	}
	if !m.signedIn {
		m.nav.Subtitle = ""
		return
	}

	m.screen = m.mount(next)
	m.layout()
	m.mountCmd = m.screen.Init()
	m.log.Debug("screen mounted", "route", next.String())
}

func (m *Model) mount(st router.State) screens.Screen {
	switch st.View {
	case router.ViewChat:
		sess, err := chat.Open(st.AssistantID, m.backend,
			chat.WithTimeout(m.cfg.RequestTimeout()),
			chat.WithLogger(m.log),
		)
		if err != nil {
			m.setStatus(err.Error(), true)
			return screens.NewDashboard(m.theme, m.identity)
		}
		return screens.NewChat(m.theme, sess, screens.ChatOptions{
			RenderMarkdown: m.cfg.UI.RenderMarkdown,
			ModelLabel:     m.modelLabel,
			Logger:         m.log,
		})

	case router.ViewSettings:
		return screens.NewSettings(m.theme, m.identity)

	case router.ViewLogs:
		format, err := export.ParseFormat(m.cfg.Export.Format)
		if err != nil {
			format = export.FormatJSON
		}
		return screens.NewLogs(m.theme, logs.New(m.backend, m.log), screens.LogsOptions{
			ExportDir: m.cfg.Export.Dir,
			Format:    format,
			Timeout:   m.cfg.RequestTimeout(),
			Logger:    m.log,
		})

	default:
		return screens.NewDashboard(m.theme, m.identity)
	}
}

// shutdown releases the mounted screen before the program exits.
func (m *Model) shutdown() {
	if m.screen != nil {
		m.screen.Unmount()
	}
}

// =============================================================================
// LAYOUT AND VIEW
// =============================================================================

// contentSize returns the size available to a mounted screen.
func (m *Model) contentSize() (int, int) {
	t := m.theme
	bodyH := m.height - lipgloss.Height(m.nav.View()) - lipgloss.Height(m.footerView())
	w := m.width - m.sidebar.Width - t.Content.GetHorizontalFrameSize()
	h := bodyH - t.Content.GetVerticalFrameSize()
	return max(w, 10), max(h, 3)
}

func (m *Model) layout() {
	m.login.SetSize(m.width, m.height)
	m.nav.Width = m.width
	m.help.Width = m.width
	m.sidebar.Height = max(m.height-lipgloss.Height(m.nav.View())-lipgloss.Height(m.footerView()), 1)
	if m.screen != nil {
		m.screen.SetSize(m.contentSize())
	}
}

func (m *Model) footerView() string {
	t := m.theme
	if m.status != "" {
		if m.statusErr {
			return t.Footer.Render(styles.RenderError(m.status))
		}
		return t.Footer.Render(styles.RenderInfo(m.status))
	}
	return t.Footer.Render(m.help.View(m.keys))
}

// View implements tea.Model.
func (m *Model) View() string {
	t := m.theme

	if !m.signedIn {
		if m.restoring {
			msg := t.Muted.Render("Restoring session...")
			if m.width == 0 {
				return msg
			}
			return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, msg)
		}
		view := m.login.View()
		if m.status != "" {
			view = lipgloss.JoinVertical(lipgloss.Center, view, m.footerView())
		}
		return view
	}

	nav := m.nav.View()
	footer := m.footerView()
	bodyH := max(m.height-lipgloss.Height(nav)-lipgloss.Height(footer), 1)

	content := ""
	if m.screen != nil {
		content = m.screen.View()
	}
	contentW := max(m.width-m.sidebar.Width, 10)
	content = t.Content.Width(contentW).Height(bodyH).MaxHeight(bodyH).Render(content)

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), content)
	return lipgloss.JoinVertical(lipgloss.Left, nav, body, footer)
}
