// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package screens

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/portal-tui/internal/export"
	"github.com/jeranaias/portal-tui/internal/logging"
	"github.com/jeranaias/portal-tui/internal/logs"
	"github.com/jeranaias/portal-tui/internal/model"
	"github.com/jeranaias/portal-tui/internal/ui/styles"
)

// LogsOptions configures the history screen.
type LogsOptions struct {
	// ExportDir receives exported files.
	ExportDir string
	// Format is the initial export format.
	Format export.Format
	// Timeout bounds each fetch; zero means no limit.
	Timeout time.Duration
	Logger  *logging.Logger
}

// exportFormats is the order f cycles through.
var exportFormats = []export.Format{export.FormatJSON, export.FormatYAML, export.FormatMarkdown}

// Fixed column widths; Topic takes the rest.
var logsColumns = []table.Column{
	{Title: "User", Width: 16},
	{Title: "Assistant", Width: 20},
	{Title: "Topic", Width: 24},
	{Title: "Date", Width: 10},
	{Title: "Time", Width: 8},
	{Title: "Messages", Width: 8},
	{Title: "Status", Width: 10},
}

const topicColumn = 2

// Logs is the conversation history screen: a searchable table of saved chats
// with a transcript modal and exports.
type Logs struct {
	theme  *styles.Theme
	screen *logs.Screen
	opts   LogsOptions
	log    *logging.Logger

	table     table.Model
	search    textinput.Model
	searching bool
	detail    viewport.Model
	loading   bool

	width, height int
}

// NewLogs creates the history screen backed by screen.
func NewLogs(theme *styles.Theme, screen *logs.Screen, opts LogsOptions) *Logs {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	if opts.Format == "" {
		opts.Format = export.FormatJSON
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}

	st := table.DefaultStyles()
	st.Header = theme.TableHeader
	st.Selected = theme.TableSelected

	cols := make([]table.Column, len(logsColumns))
	copy(cols, logsColumns)

	search := textinput.New()
	search.Placeholder = "Search by assistant or topic"
	search.Prompt = "/ "
	search.CharLimit = 100

	return &Logs{
		theme:  theme,
		screen: screen,
		opts:   opts,
		log:    log.With("component", "logs_screen"),
		table: table.New(
			table.WithColumns(cols),
			table.WithFocused(true),
			table.WithStyles(st),
		),
		search: search,
		detail: viewport.New(0, 0),
	}
}

// State returns the backing history state.
func (l *Logs) State() *logs.Screen { return l.screen }

// Format returns the export format.
func (l *Logs) Format() export.Format { return l.opts.Format }

// Searching reports whether the search box has focus.
func (l *Logs) Searching() bool { return l.searching }

// Rows returns the table rows.
func (l *Logs) Rows() []table.Row { return l.table.Rows() }

// Init starts the history fetch.
func (l *Logs) Init() tea.Cmd {
	l.loading = true
	return l.load()
}

// CapturesEsc is true while esc has something to close or clear.
func (l *Logs) CapturesEsc() bool {
	_, open := l.screen.Selected()
	return open || l.searching || l.screen.Query() != ""
}

// Unmount discards in-flight fetches.
func (l *Logs) Unmount() {
	l.screen.Unmount()
}

func (l *Logs) SetSize(width, height int) {
	l.width, l.height = width, height

	cols := make([]table.Column, len(logsColumns))
	copy(cols, logsColumns)
	fixed := 0
	for i, c := range logsColumns {
		if i != topicColumn {
			fixed += c.Width
		}
	}
	// Default cell styles pad one column on each side.
	cols[topicColumn].Width = max(width-fixed-2*len(cols), 12)
	l.table.SetColumns(cols)
	l.table.SetWidth(width)
	l.table.SetHeight(max(height-4, 3))

	mw, mh := l.modalSize()
	l.detail.Width = mw
	l.detail.Height = mh
	if rec, ok := l.screen.Selected(); ok {
		l.detail.SetContent(l.renderDetail(rec))
	}
}

func (l *Logs) modalSize() (int, int) {
	frameW := l.theme.Modal.GetHorizontalFrameSize()
	frameH := l.theme.Modal.GetVerticalFrameSize()
	return max(l.width-4-frameW, 20), max(l.height-2-frameH-1, 3)
}

func (l *Logs) fetchContext() (context.Context, context.CancelFunc) {
	if l.opts.Timeout > 0 {
		return context.WithTimeout(context.Background(), l.opts.Timeout)
	}
	return context.WithCancel(context.Background())
}

func (l *Logs) load() tea.Cmd {
	scr := l.screen
	return func() tea.Msg {
		ctx, cancel := l.fetchContext()
		defer cancel()
		applied, err := scr.Load(ctx)
		return LogsLoadedMsg{Screen: scr, Applied: applied, Err: err}
	}
}

func (l *Logs) openDetail(id string) tea.Cmd {
	scr := l.screen
	return func() tea.Msg {
		ctx, cancel := l.fetchContext()
		defer cancel()
		applied, err := scr.OpenDetail(ctx, id)
		return LogsDetailMsg{Screen: scr, Applied: applied, Err: err}
	}
}

// syncRows rebuilds the table from the visible records.
func (l *Logs) syncRows() {
	recs := l.screen.Visible()
	rows := make([]table.Row, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, table.Row{
			r.UserName,
			r.AssistantName,
			r.Topic(),
			r.Date(),
			r.Time(),
			strconv.Itoa(r.MessageCount()),
			r.Status(),
		})
	}
	l.table.SetRows(rows)
	if c := l.table.Cursor(); c >= len(rows) {
		l.table.SetCursor(max(len(rows)-1, 0))
	}
}

// selectedRecord returns the record under the table cursor.
func (l *Logs) selectedRecord() (model.ChatRecord, bool) {
	recs := l.screen.Visible()
	i := l.table.Cursor()
	if i < 0 || i >= len(recs) {
		return model.ChatRecord{}, false
	}
	return recs[i], true
}

// Update handles fetch results, search, the detail modal and exports.
func (l *Logs) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case LogsLoadedMsg:
		if msg.Screen != l.screen || !msg.Applied {
			return l, nil
		}
		l.loading = false
		l.syncRows()
		return l, nil

	case LogsDetailMsg:
		if msg.Screen != l.screen || !msg.Applied {
			return l, nil
		}
		if msg.Err != nil {
			return l, Status("Could not open chat: "+msg.Err.Error(), true)
		}
		if rec, ok := l.screen.Selected(); ok {
			l.detail.SetContent(l.renderDetail(rec))
			l.detail.GotoTop()
		}
		return l, nil

	case tea.KeyMsg:
		if rec, open := l.screen.Selected(); open {
			return l, l.updateDetail(msg, rec)
		}
		if l.searching {
			return l, l.updateSearch(msg)
		}
		return l, l.updateTable(msg)
	}
	return l, nil
}

func (l *Logs) updateDetail(msg tea.KeyMsg, rec model.ChatRecord) tea.Cmd {
	switch msg.String() {
	case "esc", "q":
		l.screen.CloseDetail()
		return nil
	case "e":
		return l.exportOne(rec)
	}
	var cmd tea.Cmd
	l.detail, cmd = l.detail.Update(msg)
	return cmd
}

func (l *Logs) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "enter":
		l.searching = false
		l.search.Blur()
		l.table.Focus()
		return nil
	}
	var cmd tea.Cmd
	l.search, cmd = l.search.Update(msg)
	if l.search.Value() != l.screen.Query() {
		l.screen.Filter(l.search.Value())
		l.syncRows()
	}
	return cmd
}

func (l *Logs) updateTable(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "/":
		l.searching = true
		l.table.Blur()
		return l.search.Focus()
	case "esc":
		if l.screen.Query() != "" {
			l.search.Reset()
			l.screen.Filter("")
			l.syncRows()
		}
		return nil
	case "enter":
		if rec, ok := l.selectedRecord(); ok {
			return l.openDetail(rec.ID)
		}
		return nil
	case "e":
		if rec, ok := l.selectedRecord(); ok {
			return l.exportOne(rec)
		}
		return Status("No chat selected", true)
	case "E":
		return l.exportAll()
	case "f":
		l.cycleFormat()
		return Status("Export format: "+string(l.opts.Format), false)
	case "r":
		l.loading = true
		return l.load()
	}
	var cmd tea.Cmd
	l.table, cmd = l.table.Update(msg)
	return cmd
}

func (l *Logs) cycleFormat() {
	for i, f := range exportFormats {
		if f == l.opts.Format {
			l.opts.Format = exportFormats[(i+1)%len(exportFormats)]
			return
		}
	}
	l.opts.Format = exportFormats[0]
}

func (l *Logs) exportOne(rec model.ChatRecord) tea.Cmd {
	file, err := l.screen.ExportOne(rec, l.opts.Format)
	if err != nil {
		return Status("Export failed: "+err.Error(), true)
	}
	return l.write(file)
}

func (l *Logs) exportAll() tea.Cmd {
	if len(l.screen.All()) == 0 {
		return Status("Nothing to export", true)
	}
	file, err := l.screen.ExportAll(l.opts.Format)
	if err != nil {
		return Status("Export failed: "+err.Error(), true)
	}
	return l.write(file)
}

func (l *Logs) write(file *export.File) tea.Cmd {
	dir, log := l.opts.ExportDir, l.log
	return func() tea.Msg {
		path, err := file.WriteTo(dir)
		if err != nil {
			log.Error("export failed", "file", file.Name, "error", err)
			return StatusMsg{Text: "Export failed: " + err.Error(), Err: true}
		}
		log.Info("chat export written", "path", path)
		return StatusMsg{Text: "Exported " + path}
	}
}

// =============================================================================
// RENDERING
// =============================================================================

func (l *Logs) View() string {
	t := l.theme

	header := t.Title.Render("Logs / History")
	count := t.Muted.Render(fmt.Sprintf("  %d chats", len(l.screen.All())))

	searchLine := l.search.View()
	if !l.searching && l.search.Value() == "" {
		searchLine = t.Muted.Render("/ search   enter open   e export   E export all   f format: " + string(l.opts.Format) + "   r reload")
	}

	var body string
	switch {
	case l.loading && len(l.screen.All()) == 0:
		body = t.Muted.Render(logs.LoadingText)
	case l.screen.LastError() != nil && len(l.screen.All()) == 0:
		body = t.Error.Render(styles.StatusIndicators.Error+" Could not load chat history: "+l.screen.LastError().Error()) +
			"\n" + t.Muted.Render("Press r to retry")
	case l.screen.EmptyText() != "":
		body = t.Muted.Render(l.screen.EmptyText())
	default:
		body = l.table.View()
	}

	view := lipgloss.JoinVertical(lipgloss.Left, header+count, searchLine, "", body)

	if _, open := l.screen.Selected(); open {
		modal := t.Modal.Render(lipgloss.JoinVertical(lipgloss.Left,
			l.detail.View(),
			t.Muted.Render("esc close   e export   up/down scroll")))
		return lipgloss.Place(l.width, l.height, lipgloss.Center, lipgloss.Center, modal)
	}
	return view
}

func (l *Logs) renderDetail(rec model.ChatRecord) string {
	t := l.theme
	wrap := lipgloss.NewStyle().Width(max(l.detail.Width, 20))

	var b strings.Builder
	b.WriteString(t.Title.Render(rec.AssistantName) + "\n")
	meta := rec.Date() + " " + rec.Time()
	if rec.UserName != "" {
		meta += "  " + rec.UserName
	}
	if rec.UserEmail != "" {
		meta += " <" + rec.UserEmail + ">"
	}
	b.WriteString(t.Muted.Render(meta) + "\n")
	b.WriteString(t.Badge.Render(rec.Status()) + " " +
		t.Muted.Render(fmt.Sprintf("%d messages", rec.MessageCount())) + "\n\n")

	for _, m := range rec.Messages {
		label := m.Role.DisplayName()
		if m.IsAssistant() {
			label = rec.AssistantName
		}
		line := t.Label.Render(label)
		if ts := m.FormatTimestamp(); ts != "" {
			line += " " + t.BubbleTime.Render(ts)
		}
		b.WriteString(line + "\n")
		b.WriteString(wrap.Render(m.Content) + "\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
