// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package screens

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/portal-tui/internal/chat"
	"github.com/jeranaias/portal-tui/internal/logging"
	"github.com/jeranaias/portal-tui/internal/model"
	"github.com/jeranaias/portal-tui/internal/router"
	"github.com/jeranaias/portal-tui/internal/ui/styles"
)

// InputPlaceholder is shown in the empty message box.
const InputPlaceholder = "Type your request…"

// Capabilities are listed in the chat side panel.
var Capabilities = []string{
	"Natural language processing",
	"Document analysis",
	"Data extraction",
	"Report generation",
}

// Layout constants for the chat screen.
const (
	sidePanelWidth    = 32
	sidePanelMinTotal = 90
	inputHeight       = 3
	headerHeight      = 2
)

// ChatOptions configures a chat screen.
type ChatOptions struct {
	// RenderMarkdown renders assistant replies with glamour.
	RenderMarkdown bool
	// ModelLabel is shown under "Model Version" in the side panel.
	ModelLabel string
	Logger     *logging.Logger
}

// Chat is the conversation screen for one assistant.
type Chat struct {
	theme *styles.Theme
	sess  *chat.Session
	opts  ChatOptions
	log   *logging.Logger

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	renderer    *glamour.TermRenderer
	renderWidth int

	width, height int
	showPanel     bool
}

// NewChat creates the screen for an open session.
func NewChat(theme *styles.Theme, sess *chat.Session, opts ChatOptions) *Chat {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	if opts.ModelLabel == "" {
		opts.ModelLabel = "Platform default"
	}

	in := textinput.New()
	in.Placeholder = InputPlaceholder
	in.Prompt = "> "
	in.CharLimit = 4000
	in.Focus()

	return &Chat{
		theme:    theme,
		sess:     sess,
		opts:     opts,
		log:      log.With("component", "chat_screen"),
		viewport: viewport.New(0, 0),
		input:    in,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(theme.Spinner),
		),
	}
}

// Session returns the conversation shown by the screen.
func (c *Chat) Session() *chat.Session { return c.sess }

// Input returns the current draft.
func (c *Chat) Input() string { return c.input.Value() }

// SetInput replaces the draft.
func (c *Chat) SetInput(s string) { c.input.SetValue(s) }

func (c *Chat) Init() tea.Cmd {
	c.refresh()
	return textinput.Blink
}

// CapturesEsc is true: esc in a chat goes back to the dashboard.
func (c *Chat) CapturesEsc() bool { return true }

// Unmount closes the session, dropping any reply still in flight.
func (c *Chat) Unmount() {
	c.sess.Close()
}

// SetSize lays out the viewport, input and side panel.
func (c *Chat) SetSize(width, height int) {
	c.width, c.height = width, height
	c.showPanel = width >= sidePanelMinTotal

	main := c.mainWidth()
	c.viewport.Width = main
	c.viewport.Height = max(height-headerHeight-inputHeight, 1)
	c.input.Width = max(main-c.theme.Input.GetHorizontalFrameSize()-len(c.input.Prompt)-1, 1)
	c.refresh()
}

func (c *Chat) mainWidth() int {
	if c.showPanel {
		return max(c.width-sidePanelWidth-1, 20)
	}
	return max(c.width, 20)
}

// Update handles input, submission and reply completion.
func (c *Chat) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case TurnDoneMsg:
		if msg.Session != c.sess {
			return c, nil
		}
		c.refresh()
		if msg.Result.Err != nil && msg.Result.Applied {
			return c, Status("Reply failed: "+msg.Result.Err.Error(), true)
		}
		return c, nil

	case spinner.TickMsg:
		if !c.sess.Pending() {
			return c, nil
		}
		var cmd tea.Cmd
		c.spinner, cmd = c.spinner.Update(msg)
		c.refresh()
		return c, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return c, Navigate(router.ViewDashboard.String())
		case "enter":
			return c, c.submit()
		case "pgup", "pgdown", "ctrl+u", "ctrl+d", "up", "down":
			var cmd tea.Cmd
			c.viewport, cmd = c.viewport.Update(msg)
			return c, cmd
		}

	case tea.MouseMsg:
		var cmd tea.Cmd
		c.viewport, cmd = c.viewport.Update(msg)
		return c, cmd
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c *Chat) submit() tea.Cmd {
	turn, ok := c.sess.Submit(c.input.Value())
	if !ok {
		return nil
	}
	c.input.Reset()
	c.refresh()

	sess := c.sess
	run := func() tea.Msg {
		return TurnDoneMsg{Session: sess, Result: turn.Run()}
	}
	return tea.Batch(run, c.spinner.Tick)
}

// =============================================================================
// RENDERING
// =============================================================================

// refresh re-renders the transcript into the viewport and keeps it pinned to
// the bottom.
func (c *Chat) refresh() {
	if c.viewport.Width <= 0 {
		return
	}
	c.viewport.SetContent(c.renderTranscript())
	c.viewport.GotoBottom()
}

func (c *Chat) renderTranscript() string {
	t := c.theme
	width := c.viewport.Width
	msgs := c.sess.Transcript()

	if len(msgs) == 0 {
		a := c.sess.Assistant()
		return t.Muted.Render("Start a conversation with " + a.Name + ".\n" + a.Summary)
	}

	bubbleMax := max(width*3/4, 16)
	var blocks []string
	for _, m := range msgs {
		blocks = append(blocks, c.renderMessage(m, width, bubbleMax))
	}
	if c.sess.Pending() {
		blocks = append(blocks, c.spinner.View()+" "+t.Muted.Render(c.sess.Assistant().Name+" is thinking..."))
	}
	return strings.Join(blocks, "\n\n")
}

func (c *Chat) renderMessage(m model.Message, width, bubbleMax int) string {
	t := c.theme

	if m.IsUser() {
		contentWidth := 0
		for _, line := range strings.Split(m.Content, "\n") {
			contentWidth = max(contentWidth, lipgloss.Width(line))
		}
		w := min(contentWidth+t.UserBubble.GetHorizontalPadding(), bubbleMax)
		bubble := t.UserBubble.Width(w).Render(m.Content)
		stamp := t.BubbleTime.Render(m.FormatTimestamp())
		return lipgloss.PlaceHorizontal(width, lipgloss.Right,
			lipgloss.JoinVertical(lipgloss.Right, bubble, stamp))
	}

	inner := bubbleMax - t.AssistantBubble.GetHorizontalFrameSize()
	body := c.renderMarkdown(m.Content, inner)
	bubble := t.AssistantBubble.Width(inner + t.AssistantBubble.GetHorizontalPadding()).Render(body)
	stamp := t.BubbleTime.Render(m.FormatTimestamp())
	return lipgloss.JoinVertical(lipgloss.Left, bubble, stamp)
}

// renderMarkdown renders content with glamour, falling back to plain text
// when rendering is off or fails.
func (c *Chat) renderMarkdown(content string, width int) string {
	if !c.opts.RenderMarkdown || width < 10 {
		return content
	}
	if c.renderer == nil || c.renderWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(c.theme.GlamourStyle()),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			c.log.Warn("markdown renderer unavailable", "error", err)
			c.opts.RenderMarkdown = false
			return content
		}
		c.renderer, c.renderWidth = r, width
	}
	out, err := c.renderer.Render(content)
	if err != nil {
		c.log.Debug("markdown render failed", "error", err)
		return content
	}
	return strings.Trim(out, "\n")
}

func (c *Chat) View() string {
	t := c.theme
	a := c.sess.Assistant()

	status := t.Success.Render("Ready")
	if c.sess.Pending() {
		status = c.spinner.View() + t.Muted.Render(" Waiting for reply")
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, t.Title.Render(a.Name), "  ", status)

	inputStyle := t.InputFocused
	if c.sess.Pending() {
		inputStyle = t.Input
	}
	input := inputStyle.Width(c.mainWidth() - t.Input.GetHorizontalBorderSize()).Render(c.input.View())

	main := lipgloss.JoinVertical(lipgloss.Left, header, "", c.viewport.View(), input)
	if !c.showPanel {
		return main
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, c.sidePanel(), " ", main)
}

func (c *Chat) sidePanel() string {
	t := c.theme
	a := c.sess.Assistant()
	inner := sidePanelWidth - t.SidePanel.GetHorizontalFrameSize()
	wrap := lipgloss.NewStyle().Width(inner)

	started := c.sess.StartedAt()
	var b strings.Builder
	b.WriteString(t.Muted.Render("esc  Back to Dashboard") + "\n\n")
	b.WriteString(t.Title.Render(a.Name) + "\n")
	b.WriteString(wrap.Render(t.Muted.Render(a.Purpose)) + "\n\n")
	b.WriteString(t.Label.Render("Last Session") + "\n")
	b.WriteString(t.Value.Render(started.Format("Jan 2, 2006")+" at "+started.Format("3:04 PM")) + "\n\n")
	b.WriteString(t.Label.Render("Model Version") + "\n")
	b.WriteString(t.Value.Render(c.opts.ModelLabel) + "\n\n")
	b.WriteString(t.Label.Render("Capabilities") + "\n")
	for _, capability := range Capabilities {
		b.WriteString(wrap.Render(t.Success.Render("• ")+capability) + "\n")
	}

	return t.SidePanel.Width(inner + t.SidePanel.GetHorizontalPadding()).
		Height(max(c.height, 1)).
		Render(b.String())
}
