// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package screens

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/portal-tui/internal/catalog"
	"github.com/jeranaias/portal-tui/internal/chat"
	"github.com/jeranaias/portal-tui/internal/export"
	"github.com/jeranaias/portal-tui/internal/logs"
	"github.com/jeranaias/portal-tui/internal/model"
	"github.com/jeranaias/portal-tui/internal/portal"
	"github.com/jeranaias/portal-tui/internal/session"
	"github.com/jeranaias/portal-tui/internal/ui/styles"
)

// =============================================================================
// HELPERS
// =============================================================================

func testTheme() *styles.Theme {
	return styles.NewTheme(styles.ModeDark)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyCtrlN = tea.KeyMsg{Type: tea.KeyCtrlN}
)

// collect runs cmd and flattens batches. Only use it on commands that return
// immediately.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func findMsg[T tea.Msg](t *testing.T, msgs []tea.Msg) T {
	t.Helper()
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v
		}
	}
	var zero T
	t.Fatalf("no %T in %v", zero, msgs)
	return zero
}

type fakeAuth struct {
	mu        sync.Mutex
	loginErr  error
	lastEmail string
	lastName  string
}

func (f *fakeAuth) Login(_ context.Context, email, _ string) (session.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastEmail = email
	if f.loginErr != nil {
		return session.Identity{}, f.loginErr
	}
	return session.Identity{Name: "Ada Lovelace", Email: email, Department: "Engineering"}, nil
}

func (f *fakeAuth) Register(_ context.Context, name, dept, email, _ string) (session.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastEmail, f.lastName = email, name
	return session.Identity{Name: name, Email: email, Department: dept}, nil
}

type fakeSource struct {
	chats []model.ChatRecord
	err   error
}

func (f *fakeSource) Chats(context.Context) ([]model.ChatRecord, error) {
	return f.chats, f.err
}

func (f *fakeSource) Chat(_ context.Context, id string) (*model.ChatRecord, error) {
	for _, c := range f.chats {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, portal.ErrNotFound
}

func record(id, assistant, preview string, ts time.Time) model.ChatRecord {
	return model.ChatRecord{
		ID:            id,
		AssistantID:   assistant,
		AssistantName: catalog.NameOf(assistant),
		Timestamp:     ts,
		Preview:       preview,
		UserName:      "Ada Lovelace",
		UserEmail:     "ada@example.com",
		Messages: []model.Message{
			{Role: model.RoleUser, Content: "hello"},
			{Role: model.RoleAssistant, Content: preview},
		},
	}
}

// =============================================================================
// LOGIN
// =============================================================================

func TestLogin_ToggleMode(t *testing.T) {
	l := NewLogin(testTheme(), &fakeAuth{})
	assert.Equal(t, ModeSignIn, l.Mode())

	l, _ = l.Update(keyCtrlN)
	assert.Equal(t, ModeSignUp, l.Mode())
	assert.Contains(t, l.View(), "Create your account")

	l, _ = l.Update(keyCtrlN)
	assert.Equal(t, ModeSignIn, l.Mode())
	assert.Contains(t, l.View(), "Sign in to your account")
}

func TestLogin_RequiresFields(t *testing.T) {
	l := NewLogin(testTheme(), &fakeAuth{})
	l.SetValue("email", "ada@example.com")

	// Enter on email moves to password; enter on password submits.
	l, _ = l.Update(keyEnter)
	l, cmd := l.Update(keyEnter)
	assert.Nil(t, cmd)
	assert.Equal(t, "Email and password are required", l.Err())
	assert.False(t, l.Busy())
}

func TestLogin_SubmitSignIn(t *testing.T) {
	auth := &fakeAuth{}
	l := NewLogin(testTheme(), auth)
	l.SetValue("email", "  ada@example.com ")
	l.SetValue("password", "secret")

	l, _ = l.Update(keyEnter)
	l, cmd := l.Update(keyEnter)
	require.NotNil(t, cmd)
	assert.True(t, l.Busy())

	res := findMsg[AuthResultMsg](t, collect(cmd))
	require.NoError(t, res.Err)
	assert.Equal(t, "ada@example.com", res.Identity.Email)
	assert.Equal(t, "ada@example.com", auth.lastEmail)
}

func TestLogin_SubmitSignUpNeedsNameAndDepartment(t *testing.T) {
	auth := &fakeAuth{}
	l := NewLogin(testTheme(), auth)
	l, _ = l.Update(keyCtrlN)
	l.SetValue("email", "ada@example.com")
	l.SetValue("password", "secret")

	for i := 0; i < 3; i++ {
		l, _ = l.Update(keyEnter)
	}
	l, cmd := l.Update(keyEnter)
	assert.Nil(t, cmd)
	assert.Equal(t, "Name and department are required", l.Err())

	l.SetValue("name", "Ada Lovelace")
	l.SetValue("department", "Engineering")
	_, cmd = l.Update(keyEnter)
	res := findMsg[AuthResultMsg](t, collect(cmd))
	require.NoError(t, res.Err)
	assert.Equal(t, "Engineering", res.Identity.Department)
	assert.Equal(t, "Ada Lovelace", auth.lastName)
}

func TestLogin_ShowsBackendDetail(t *testing.T) {
	l := NewLogin(testTheme(), &fakeAuth{})
	l.SetValue("password", "wrong")

	l, _ = l.Update(AuthResultMsg{Err: &portal.APIError{Status: 401, Detail: "Invalid credentials"}})
	assert.Equal(t, "Invalid credentials", l.Err())
	assert.False(t, l.Busy())
	assert.Contains(t, l.View(), "Invalid credentials")
}

func TestAuthErrorText(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"api detail", &portal.APIError{Status: 400, Detail: "User already exists"}, "User already exists"},
		{"timeout", context.DeadlineExceeded, "The portal did not respond in time"},
		{"transport", errors.New("connection refused"), "Could not reach the portal: connection refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, authErrorText(tt.err))
		})
	}
}

// =============================================================================
// DASHBOARD
// =============================================================================

func TestDashboard_GridNavigation(t *testing.T) {
	d := NewDashboard(testTheme(), session.Identity{Name: "Ada Lovelace", Department: "Engineering"})
	d.SetSize(100, 40)
	require.Equal(t, 3, d.Columns())

	d.Update(keyRight)
	assert.Equal(t, 1, d.Cursor())
	d.Update(keyDown)
	assert.Equal(t, 4, d.Cursor())

	_, cmd := d.Update(keyEnter)
	nav := findMsg[NavigateMsg](t, collect(cmd))
	assert.Equal(t, catalog.All()[4].ID, nav.Target)
}

func TestDashboard_ViewShowsWelcomeAndCards(t *testing.T) {
	d := NewDashboard(testTheme(), session.Identity{Name: "Ada Lovelace", Department: "Engineering"})
	d.SetSize(100, 40)

	view := d.View()
	assert.Contains(t, view, "Welcome, Ada Lovelace from Engineering")
	for _, a := range catalog.All() {
		assert.Contains(t, view, a.Name)
	}
}

func TestDashboard_NarrowIsSingleColumn(t *testing.T) {
	d := NewDashboard(testTheme(), session.Identity{})
	d.SetSize(20, 40)
	assert.Equal(t, 1, d.Columns())

	d.Update(keyDown)
	assert.Equal(t, 1, d.Cursor())
}

// =============================================================================
// CHAT
// =============================================================================

func openChat(t *testing.T, r chat.Replier) (*Chat, *chat.Session) {
	t.Helper()
	sess, err := chat.Open("marketing", r)
	require.NoError(t, err)
	c := NewChat(testTheme(), sess, ChatOptions{ModelLabel: "demo"})
	c.SetSize(120, 40)
	return c, sess
}

func TestChat_SubmitAndReply(t *testing.T) {
	c, sess := openChat(t, chat.ReplierFunc(func(_ context.Context, _ string, tr []model.Message) (string, error) {
		return "echo: " + tr[len(tr)-1].Content, nil
	}))

	c.SetInput("draft a campaign")
	_, cmd := c.Update(keyEnter)
	require.NotNil(t, cmd)
	assert.Empty(t, c.Input())
	assert.True(t, sess.Pending())

	done := findMsg[TurnDoneMsg](t, collect(cmd))
	assert.Same(t, sess, done.Session)
	_, _ = c.Update(done)

	tr := sess.Transcript()
	require.Len(t, tr, 2)
	assert.Equal(t, "echo: draft a campaign", tr[1].Content)
	assert.False(t, sess.Pending())
	assert.Contains(t, c.View(), "echo: draft a campaign")
}

func TestChat_BlankInputIgnored(t *testing.T) {
	c, sess := openChat(t, chat.ReplierFunc(func(context.Context, string, []model.Message) (string, error) {
		return "unused", nil
	}))
	c.SetInput("   ")
	_, cmd := c.Update(keyEnter)
	assert.Nil(t, cmd)
	assert.Zero(t, sess.Len())
}

func TestChat_ReplyErrorReportsStatus(t *testing.T) {
	c, _ := openChat(t, chat.ReplierFunc(func(context.Context, string, []model.Message) (string, error) {
		return "", errors.New("backend down")
	}))
	c.SetInput("hi")
	_, cmd := c.Update(keyEnter)
	done := findMsg[TurnDoneMsg](t, collect(cmd))

	_, cmd = c.Update(done)
	status := findMsg[StatusMsg](t, collect(cmd))
	assert.True(t, status.Err)
	assert.Contains(t, status.Text, "backend down")
	assert.Contains(t, c.View(), chat.ErrorPrefix)
}

func TestChat_IgnoresOtherSessions(t *testing.T) {
	c, sess := openChat(t, chat.ReplierFunc(func(context.Context, string, []model.Message) (string, error) {
		return "", nil
	}))
	other, err := chat.Open("contract", chat.ReplierFunc(func(context.Context, string, []model.Message) (string, error) {
		return "", nil
	}))
	require.NoError(t, err)

	_, cmd := c.Update(TurnDoneMsg{Session: other, Result: chat.Result{Err: errors.New("x"), Applied: true}})
	assert.Nil(t, cmd)
	assert.Zero(t, sess.Len())
}

func TestChat_EscNavigatesAndUnmountCloses(t *testing.T) {
	c, sess := openChat(t, chat.ReplierFunc(func(context.Context, string, []model.Message) (string, error) {
		return "", nil
	}))
	assert.True(t, c.CapturesEsc())

	_, cmd := c.Update(keyEsc)
	nav := findMsg[NavigateMsg](t, collect(cmd))
	assert.Equal(t, "dashboard", nav.Target)

	c.Unmount()
	assert.True(t, sess.Closed())
}

func TestChat_SidePanel(t *testing.T) {
	c, _ := openChat(t, chat.ReplierFunc(func(context.Context, string, []model.Message) (string, error) {
		return "", nil
	}))
	view := c.View()
	assert.Contains(t, view, "Back to Dashboard")
	assert.Contains(t, view, "Model Version")
	for _, capability := range Capabilities {
		assert.Contains(t, view, capability)
	}

	c.SetSize(60, 30)
	assert.NotContains(t, c.View(), "Model Version")
}

// =============================================================================
// SETTINGS
// =============================================================================

func TestSettings_Toggles(t *testing.T) {
	s := NewSettings(testTheme(), session.Identity{Name: "Ada Lovelace", Email: "ada@example.com"})
	s.SetSize(100, 60)

	before := s.Toggles()
	s.Update(keyDown)
	s.Update(keyDown)
	assert.Equal(t, 2, s.Cursor())
	s.Update(keyRunes(" "))

	after := s.Toggles()
	assert.Equal(t, !before[2].On, after[2].On)
	assert.Equal(t, before[0].On, after[0].On)
}

func TestSettings_View(t *testing.T) {
	signedIn := time.Date(2025, 3, 4, 15, 30, 0, 0, time.Local)
	s := NewSettings(testTheme(), session.Identity{
		Name:       "Ada Lovelace",
		Email:      "ada@example.com",
		Department: "Engineering",
		SignedInAt: signedIn,
		Method:     session.MethodRestored,
	})
	s.SetSize(100, 80)

	view := s.View()
	assert.Contains(t, view, ProfileRole)
	assert.Contains(t, view, "ada@example.com")
	assert.Contains(t, view, "Engineering Department")
	assert.Contains(t, view, "Mar 4, 2025 at 3:30 PM")
	assert.Contains(t, view, session.MethodRestored)
	for _, tg := range DefaultToggles() {
		assert.Contains(t, view, tg.Label)
	}
}

// =============================================================================
// LOGS
// =============================================================================

func loadedLogs(t *testing.T, dir string) *Logs {
	t.Helper()
	base := time.Date(2025, 1, 2, 10, 0, 0, 0, time.Local)
	src := &fakeSource{chats: []model.ChatRecord{
		record("marketing_1", "marketing", "Campaign plan for spring", base),
		record("contract_2", "contract", "Contract review notes", base.Add(time.Hour)),
	}}
	l := NewLogs(testTheme(), logs.New(src, nil), LogsOptions{ExportDir: dir})
	l.SetSize(120, 30)

	msgs := collect(l.Init())
	loaded := findMsg[LogsLoadedMsg](t, msgs)
	require.True(t, loaded.Applied)
	l.Update(loaded)
	return l
}

func TestLogs_LoadFillsTableNewestFirst(t *testing.T) {
	l := loadedLogs(t, t.TempDir())
	rows := l.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, catalog.NameOf("contract"), rows[0][1])
	assert.Equal(t, "2", rows[0][5])
	assert.Equal(t, model.StatusCompleted, rows[0][6])
}

func TestLogs_LoadingAndEmptyTexts(t *testing.T) {
	l := NewLogs(testTheme(), logs.New(&fakeSource{}, nil), LogsOptions{})
	l.SetSize(100, 30)
	cmd := l.Init()
	assert.Contains(t, l.View(), logs.LoadingText)

	l.Update(findMsg[LogsLoadedMsg](t, collect(cmd)))
	assert.Contains(t, l.View(), logs.EmptyHistoryText)
}

func TestLogs_LoadErrorShowsRetry(t *testing.T) {
	l := NewLogs(testTheme(), logs.New(&fakeSource{err: errors.New("boom")}, nil), LogsOptions{})
	l.SetSize(100, 30)
	l.Update(findMsg[LogsLoadedMsg](t, collect(l.Init())))
	assert.Contains(t, l.View(), "Could not load chat history")
	assert.Contains(t, l.View(), "Press r to retry")
}

func TestLogs_SearchFilters(t *testing.T) {
	l := loadedLogs(t, t.TempDir())

	l.Update(keyRunes("/"))
	assert.True(t, l.Searching())
	assert.True(t, l.CapturesEsc())

	l.Update(keyRunes("campaign"))
	require.Len(t, l.Rows(), 1)
	assert.Equal(t, catalog.NameOf("marketing"), l.Rows()[0][1])

	l.Update(keyEnter)
	assert.False(t, l.Searching())
	assert.True(t, l.CapturesEsc(), "an active filter still owns esc")

	l.Update(keyEsc)
	assert.Len(t, l.Rows(), 2)
	assert.False(t, l.CapturesEsc())
}

func TestLogs_NoMatches(t *testing.T) {
	l := loadedLogs(t, t.TempDir())
	l.Update(keyRunes("/"))
	l.Update(keyRunes("zzz"))
	assert.Contains(t, l.View(), logs.NoMatchesText)
}

func TestLogs_DetailOpenAndClose(t *testing.T) {
	l := loadedLogs(t, t.TempDir())

	_, cmd := l.Update(keyEnter)
	detail := findMsg[LogsDetailMsg](t, collect(cmd))
	l.Update(detail)

	rec, open := l.State().Selected()
	require.True(t, open)
	assert.Equal(t, "contract_2", rec.ID)
	assert.True(t, l.CapturesEsc())
	assert.Contains(t, l.View(), "Contract review notes")

	l.Update(keyEsc)
	_, open = l.State().Selected()
	assert.False(t, open)
}

func TestLogs_ExportSelected(t *testing.T) {
	dir := t.TempDir()
	l := loadedLogs(t, dir)

	_, cmd := l.Update(keyRunes("e"))
	status := findMsg[StatusMsg](t, collect(cmd))
	require.False(t, status.Err, status.Text)

	path := filepath.Join(dir, export.ChatFilename("contract_2", ".json"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Contract review notes")
}

func TestLogs_ExportAllUsesFormat(t *testing.T) {
	dir := t.TempDir()
	l := loadedLogs(t, dir)

	l.Update(keyRunes("f"))
	assert.Equal(t, export.FormatYAML, l.Format())

	_, cmd := l.Update(keyRunes("E"))
	status := findMsg[StatusMsg](t, collect(cmd))
	require.False(t, status.Err, status.Text)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".yaml"))
}

func TestLogs_IgnoresResultsForOtherMounts(t *testing.T) {
	src := &fakeSource{chats: []model.ChatRecord{record("a_1", "marketing", "x", time.Now())}}

	old := NewLogs(testTheme(), logs.New(src, nil), LogsOptions{})
	loaded := findMsg[LogsLoadedMsg](t, collect(old.Init()))
	old.Unmount()

	fresh := NewLogs(testTheme(), logs.New(src, nil), LogsOptions{})
	fresh.SetSize(100, 30)
	fresh.Init()
	fresh.Update(loaded)
	assert.Empty(t, fresh.Rows())
	assert.Contains(t, fresh.View(), logs.LoadingText)
}
