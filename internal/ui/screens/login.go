// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package screens

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/portal-tui/internal/portal"
	"github.com/jeranaias/portal-tui/internal/session"
	"github.com/jeranaias/portal-tui/internal/ui/components"
	"github.com/jeranaias/portal-tui/internal/ui/styles"
)

// AuthTimeout bounds a sign-in or sign-up request.
const AuthTimeout = 30 * time.Second

// Authenticator signs users in. *session.Provider implements it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (session.Identity, error)
	Register(ctx context.Context, name, department, email, password string) (session.Identity, error)
}

// LoginMode selects the form.
type LoginMode int

const (
	ModeSignIn LoginMode = iota
	ModeSignUp
)

// Field indexes into the sign-up form. Sign-in uses only email and password.
const (
	fieldName = iota
	fieldDepartment
	fieldEmail
	fieldPassword
	fieldCount
)

// Login is the sign-in / sign-up form.
type Login struct {
	theme *styles.Theme
	auth  Authenticator

	mode    LoginMode
	inputs  [fieldCount]textinput.Model
	focus   int
	busy    bool
	errText string
	spinner spinner.Model

	width, height int
}

// NewLogin creates the form in sign-in mode.
func NewLogin(theme *styles.Theme, auth Authenticator) *Login {
	l := &Login{theme: theme, auth: auth}

	placeholders := [fieldCount]string{"Full name", "Department", "you@company.com", "Password"}
	for i := range l.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = 128
		in.Prompt = ""
		if i == fieldPassword {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		l.inputs[i] = in
	}

	l.spinner = spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(theme.Spinner),
	)
	l.setMode(ModeSignIn)
	return l
}

// Mode returns the current form.
func (l *Login) Mode() LoginMode { return l.mode }

// Busy reports whether a request is in flight.
func (l *Login) Busy() bool { return l.busy }

// Err returns the error line, if any.
func (l *Login) Err() string { return l.errText }

// SetSize records the terminal size.
func (l *Login) SetSize(width, height int) {
	l.width, l.height = width, height
}

// Reset clears the form after sign-out.
func (l *Login) Reset() {
	for i := range l.inputs {
		l.inputs[i].Reset()
	}
	l.busy = false
	l.errText = ""
	l.setMode(ModeSignIn)
}

// SetValue fills a field by label: "name", "department", "email" or
// "password".
func (l *Login) SetValue(field, value string) {
	switch field {
	case "name":
		l.inputs[fieldName].SetValue(value)
	case "department":
		l.inputs[fieldDepartment].SetValue(value)
	case "email":
		l.inputs[fieldEmail].SetValue(value)
	case "password":
		l.inputs[fieldPassword].SetValue(value)
	}
}

func (l *Login) fields() []int {
	if l.mode == ModeSignUp {
		return []int{fieldName, fieldDepartment, fieldEmail, fieldPassword}
	}
	return []int{fieldEmail, fieldPassword}
}

func (l *Login) setMode(m LoginMode) {
	l.mode = m
	l.errText = ""
	l.focusField(l.fields()[0])
}

func (l *Login) focusField(idx int) {
	l.focus = idx
	for i := range l.inputs {
		if i == idx {
			l.inputs[i].Focus()
		} else {
			l.inputs[i].Blur()
		}
	}
}

func (l *Login) moveFocus(delta int) {
	fields := l.fields()
	pos := 0
	for i, f := range fields {
		if f == l.focus {
			pos = i
		}
	}
	pos = (pos + delta + len(fields)) % len(fields)
	l.focusField(fields[pos])
}

// Init implements tea.Model.
func (l *Login) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles form input. A failed AuthResultMsg is shown on the form;
// the root model handles successful ones.
func (l *Login) Update(msg tea.Msg) (*Login, tea.Cmd) {
	switch msg := msg.(type) {
	case AuthResultMsg:
		l.busy = false
		if msg.Err != nil {
			l.errText = authErrorText(msg.Err)
			l.inputs[fieldPassword].Reset()
		}
		return l, nil

	case spinner.TickMsg:
		if !l.busy {
			return l, nil
		}
		var cmd tea.Cmd
		l.spinner, cmd = l.spinner.Update(msg)
		return l, cmd

	case tea.KeyMsg:
		if l.busy {
			return l, nil
		}
		switch msg.String() {
		case "tab", "down":
			l.moveFocus(1)
			return l, nil
		case "shift+tab", "up":
			l.moveFocus(-1)
			return l, nil
		case "ctrl+n":
			if l.mode == ModeSignIn {
				l.setMode(ModeSignUp)
			} else {
				l.setMode(ModeSignIn)
			}
			return l, nil
		case "enter":
			fields := l.fields()
			if l.focus != fields[len(fields)-1] {
				l.moveFocus(1)
				return l, nil
			}
			return l, l.submit()
		}
	}

	var cmd tea.Cmd
	l.inputs[l.focus], cmd = l.inputs[l.focus].Update(msg)
	return l, cmd
}

func (l *Login) submit() tea.Cmd {
	email := strings.TrimSpace(l.inputs[fieldEmail].Value())
	password := l.inputs[fieldPassword].Value()
	name := strings.TrimSpace(l.inputs[fieldName].Value())
	dept := strings.TrimSpace(l.inputs[fieldDepartment].Value())

	if l.mode == ModeSignUp && (name == "" || dept == "") {
		l.errText = "Name and department are required"
		return nil
	}
	if email == "" || password == "" {
		l.errText = "Email and password are required"
		return nil
	}

	l.busy = true
	l.errText = ""

	auth, mode := l.auth, l.mode
	run := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), AuthTimeout)
		defer cancel()

		var (
			id  session.Identity
			err error
		)
		if mode == ModeSignUp {
			id, err = auth.Register(ctx, name, dept, email, password)
		} else {
			id, err = auth.Login(ctx, email, password)
		}
		return AuthResultMsg{Identity: id, Err: err}
	}
	return tea.Batch(run, l.spinner.Tick)
}

// authErrorText turns an auth failure into the line shown under the form.
func authErrorText(err error) string {
	var apiErr *portal.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Detail != "":
		return apiErr.Detail
	case errors.Is(err, session.ErrInvalidInput):
		return err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "The portal did not respond in time"
	default:
		return "Could not reach the portal: " + err.Error()
	}
}

// View renders the form centred in the terminal.
func (l *Login) View() string {
	t := l.theme
	labels := [fieldCount]string{"Name", "Department", "Email", "Password"}

	var rows []string
	rows = append(rows, t.Brand.Render(components.BrandTitle))
	if l.mode == ModeSignUp {
		rows = append(rows, t.Title.Render("Create your account"))
	} else {
		rows = append(rows, t.Title.Render("Sign in to your account"))
	}
	rows = append(rows, "")

	for _, f := range l.fields() {
		style := t.Input
		if f == l.focus {
			style = t.InputFocused
		}
		l.inputs[f].Width = 34
		rows = append(rows, t.Label.Render(labels[f]), style.Width(38).Render(l.inputs[f].View()))
	}
	rows = append(rows, "")

	switch {
	case l.busy:
		rows = append(rows, l.spinner.View()+" "+t.Muted.Render("Signing in..."))
	case l.errText != "":
		rows = append(rows, t.Error.Render(styles.StatusIndicators.Error+" "+l.errText))
	default:
		action := "Sign In"
		if l.mode == ModeSignUp {
			action = "Sign Up"
		}
		rows = append(rows, t.ButtonActive.Render(action))
	}

	if l.mode == ModeSignUp {
		rows = append(rows, t.Muted.Render("Already have an account? ctrl+n to sign in"))
	} else {
		rows = append(rows, t.Muted.Render("Don't have an account? ctrl+n to sign up"))
	}

	box := t.Modal.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	if l.width == 0 || l.height == 0 {
		return box
	}
	return lipgloss.Place(l.width, l.height, lipgloss.Center, lipgloss.Center, box)
}
