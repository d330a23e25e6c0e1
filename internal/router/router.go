// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jeranaias/portal-tui/internal/catalog"
)

// ErrUnknownView is returned when a navigation target names neither a view
// nor an assistant. The bare chat view is also rejected: a chat needs an
// assistant.
var ErrUnknownView = errors.New("unknown view")

// ChangeFunc observes a state transition. It runs after the state has
// changed, outside the router lock.
type ChangeFunc func(prev, next State)

// Router is the navigation state machine. It is safe for concurrent use.
type Router struct {
	mu        sync.RWMutex
	state     State
	observers []ChangeFunc
}

// New returns a router in the initial state (dashboard, no assistant).
func New() *Router {
	return &Router{state: InitialState}
}

// Current returns the current state.
func (r *Router) Current() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// View returns the current view.
func (r *Router) View() View {
	return r.Current().View
}

// ActiveAssistant returns the assistant of the current chat.
func (r *Router) ActiveAssistant() (catalog.Assistant, bool) {
	s := r.Current()
	if s.View != ViewChat {
		return catalog.Assistant{}, false
	}
	a, err := catalog.Lookup(s.AssistantID)
	if err != nil {
		return catalog.Assistant{}, false
	}
	return a, true
}

// OnChange registers an observer called after every transition, including
// transitions to an equal state.
func (r *Router) OnChange(fn ChangeFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, fn)
}

// Navigate moves to target. An assistant id opens a chat with that
// assistant. A view name moves to that view and clears the assistant.
// Anything else, including the bare "chat" view, fails with ErrUnknownView
// and leaves the state unchanged.
func (r *Router) Navigate(target string) error {
	if a, err := catalog.Lookup(target); err == nil {
		r.transition(State{View: ViewChat, AssistantID: a.ID})
		return nil
	}

	v, ok := ParseView(target)
	if !ok || v == ViewChat {
		return fmt.Errorf("%w: %q", ErrUnknownView, target)
	}
	r.transition(State{View: v})
	return nil
}

// LaunchAssistant opens a chat with the assistant id. Unknown ids fail with
// catalog.ErrUnknownAssistant and leave the state unchanged.
func (r *Router) LaunchAssistant(id string) error {
	a, err := catalog.Lookup(id)
	if err != nil {
		return err
	}
	r.transition(State{View: ViewChat, AssistantID: a.ID})
	return nil
}

// BackToDashboard returns to the dashboard and clears the assistant.
func (r *Router) BackToDashboard() {
	r.transition(InitialState)
}

func (r *Router) transition(next State) {
	r.mu.Lock()
	prev := r.state
	r.state = next
	observers := make([]ChangeFunc, len(r.observers))
	copy(observers, r.observers)
	r.mu.Unlock()

	for _, fn := range observers {
		fn(prev, next)
	}
}
