// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logs is the conversation-history screen's state: the list of
// saved chats, the search filter, the selected transcript and exports.
//
// Fetches are applied only while the screen generation they started in is
// still current. Unmount moves the generation on, so a fetch that finishes
// after the screen is gone changes nothing.
package logs

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"

	"github.com/jeranaias/portal-tui/internal/export"
	"github.com/jeranaias/portal-tui/internal/logging"
	"github.com/jeranaias/portal-tui/internal/model"
)

// Empty-state texts.
const (
	EmptyHistoryText = "No chat history yet"
	NoMatchesText    = "No chats found matching your search"
	LoadingText      = "Loading chat history..."
)

// Source fetches saved chats.
type Source interface {
	Chats(ctx context.Context) ([]model.ChatRecord, error)
	Chat(ctx context.Context, id string) (*model.ChatRecord, error)
}

// Screen holds the history state. It is safe for concurrent use.
type Screen struct {
	src Source
	log *logging.Logger
	now func() time.Time

	mu       sync.Mutex
	gen      uint64
	all      []model.ChatRecord
	filtered []model.ChatRecord
	query    string
	selected *model.ChatRecord
	loading  bool
	loaded   bool
	lastErr  error
}

// New creates a screen reading from src.
func New(src Source, log *logging.Logger) *Screen {
	if log == nil {
		log = logging.Nop()
	}
	return &Screen{src: src, log: log, now: time.Now}
}

// Generation identifies the current mount.
func (s *Screen) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Unmount discards in-flight fetches and the selection.
func (s *Screen) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.selected = nil
	s.loading = false
}

// Load fetches the chat list, newest first. On failure the previous list is
// kept and the error is recorded. It returns false when the result was
// discarded because the screen was unmounted meanwhile.
func (s *Screen) Load(ctx context.Context) (bool, error) {
	s.mu.Lock()
	gen := s.gen
	s.loading = true
	s.mu.Unlock()

	chats, err := s.src.Chats(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false, err
	}
	s.loading = false
	if err != nil {
		s.log.Error("Error fetching chats", "error", err)
		s.lastErr = err
		return true, err
	}

	chats = slices.Clone(chats)
	slices.Reverse(chats)
	s.all = chats
	s.loaded = true
	s.lastErr = nil
	s.applyFilter()
	return true, nil
}

// Filter sets the search query and recomputes the visible list.
func (s *Screen) Filter(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = query
	s.applyFilter()
}

// applyFilter keeps records whose assistant name or preview contains the
// query, ignoring case. Caller holds mu.
func (s *Screen) applyFilter() {
	q := strings.TrimSpace(s.query)
	if q == "" {
		s.filtered = slices.Clone(s.all)
		return
	}
	fold := cases.Fold()
	needle := fold.String(q)
	foldString := func(v string) string { return fold.String(v) }

	out := make([]model.ChatRecord, 0, len(s.all))
	for _, rec := range s.all {
		if rec.Matches(needle, foldString) {
			out = append(out, rec)
		}
	}
	s.filtered = out
}

// Query returns the current search query.
func (s *Screen) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// All returns every loaded record, newest first.
func (s *Screen) All() []model.ChatRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.all)
}

// Visible returns the filtered records.
func (s *Screen) Visible() []model.ChatRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.filtered)
}

// Loading reports whether a list fetch is in flight.
func (s *Screen) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// LastError returns the error of the most recent failed fetch.
func (s *Screen) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// EmptyText returns the placeholder for an empty visible list, or "" when
// there is something to show.
func (s *Screen) EmptyText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.loading && !s.loaded:
		return LoadingText
	case len(s.filtered) > 0:
		return ""
	case len(s.all) == 0:
		return EmptyHistoryText
	default:
		return NoMatchesText
	}
}

// =============================================================================
// DETAIL
// =============================================================================

// OpenDetail fetches one full record and selects it. On failure the
// selection is unchanged. It returns false when the result was discarded.
func (s *Screen) OpenDetail(ctx context.Context, id string) (bool, error) {
	gen := s.Generation()

	rec, err := s.src.Chat(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false, err
	}
	if err != nil {
		s.log.Error("Error fetching chat details", "chat_id", id, "error", err)
		s.lastErr = err
		return true, err
	}
	s.selected = rec
	return true, nil
}

// Selected returns the open record. The detail view is visible iff ok.
func (s *Screen) Selected() (model.ChatRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return model.ChatRecord{}, false
	}
	return *s.selected, true
}

// CloseDetail clears the selection.
func (s *Screen) CloseDetail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
}

// =============================================================================
// EXPORT
// =============================================================================

// ExportOne serialises rec.
func (s *Screen) ExportOne(rec model.ChatRecord, f export.Format) (*export.File, error) {
	return export.One(&rec, f)
}

// ExportAll serialises every loaded record, ignoring the filter.
func (s *Screen) ExportAll(f export.Format) (*export.File, error) {
	return export.All(s.All(), s.now(), f)
}
