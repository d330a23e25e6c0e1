// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/portal-tui/internal/catalog"
)

func TestNew_InitialState(t *testing.T) {
	r := New()
	assert.Equal(t, State{View: ViewDashboard}, r.Current())
	_, ok := r.ActiveAssistant()
	assert.False(t, ok)
}

func TestNavigate(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		target  string
		want    State
		wantErr error
	}{
		{"assistant id opens chat", "", "marketing", State{View: ViewChat, AssistantID: "marketing"}, nil},
		{"assistant id is case-insensitive", "", "Tech", State{View: ViewChat, AssistantID: "tech"}, nil},
		{"settings", "", "settings", State{View: ViewSettings}, nil},
		{"logs clears assistant", "social", "logs", State{View: ViewLogs}, nil},
		{"dashboard clears assistant", "contract", "dashboard", State{View: ViewDashboard}, nil},
		{"settings clears assistant", "meeting", "settings", State{View: ViewSettings}, nil},
		{"chat to another assistant", "meeting", "investment", State{View: ViewChat, AssistantID: "investment"}, nil},
		{"unknown target", "social", "billing", State{View: ViewChat, AssistantID: "social"}, ErrUnknownView},
		{"bare chat rejected", "", "chat", State{View: ViewDashboard}, ErrUnknownView},
		{"empty target", "", "", State{View: ViewDashboard}, ErrUnknownView},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			if tt.start != "" {
				require.NoError(t, r.Navigate(tt.start))
			}
			err := r.Navigate(tt.target)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, r.Current())
		})
	}
}

func TestLaunchAssistant(t *testing.T) {
	r := New()
	require.NoError(t, r.LaunchAssistant("notetaker"))

	a, ok := r.ActiveAssistant()
	require.True(t, ok)
	assert.Equal(t, "Note Taker AI", a.Name)

	err := r.LaunchAssistant("weather")
	assert.ErrorIs(t, err, catalog.ErrUnknownAssistant)
	assert.Equal(t, State{View: ViewChat, AssistantID: "notetaker"}, r.Current(), "state must not change on failure")
}

func TestBackToDashboard(t *testing.T) {
	r := New()
	require.NoError(t, r.LaunchAssistant("tech"))
	r.BackToDashboard()
	assert.Equal(t, InitialState, r.Current())
}

// Every sequence of operations keeps "assistant present iff view == chat".
func TestInvariant_AssistantIffChat(t *testing.T) {
	targets := append(catalog.IDs(), "dashboard", "settings", "logs", "chat", "nope")
	r := New()
	for i := 0; i < 200; i++ {
		target := targets[(i*7+3)%len(targets)]
		switch i % 3 {
		case 0:
			_ = r.Navigate(target)
		case 1:
			_ = r.LaunchAssistant(target)
		default:
			if i%9 == 2 {
				r.BackToDashboard()
			}
		}
		s := r.Current()
		assert.Equal(t, s.View == ViewChat, s.AssistantID != "", "state %s", s)
	}
}

func TestOnChange(t *testing.T) {
	r := New()
	var got []State
	r.OnChange(func(prev, next State) {
		got = append(got, prev, next)
	})

	require.NoError(t, r.LaunchAssistant("social"))
	r.BackToDashboard()
	_ = r.Navigate("bogus")

	require.Len(t, got, 4, "failed navigation must not notify")
	assert.Equal(t, InitialState, got[0])
	assert.Equal(t, State{View: ViewChat, AssistantID: "social"}, got[1])
	assert.Equal(t, State{View: ViewChat, AssistantID: "social"}, got[2])
	assert.Equal(t, InitialState, got[3])
}

func TestRouter_ConcurrentAccess(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_ = r.Navigate("logs")
			} else {
				_ = r.LaunchAssistant("tech")
			}
		}(i)
		go func() {
			defer wg.Done()
			_ = r.Current()
		}()
	}
	wg.Wait()
	s := r.Current()
	assert.Equal(t, s.View == ViewChat, s.AssistantID != "")
}

func TestParseView(t *testing.T) {
	v, ok := ParseView(" LOGS ")
	assert.True(t, ok)
	assert.Equal(t, ViewLogs, v)
	assert.Equal(t, "Logs / History", v.Title())

	_, ok = ParseView("profile")
	assert.False(t, ok)
	assert.Equal(t, "chat:tech", State{View: ViewChat, AssistantID: "tech"}.String())
}
