// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// TokenEvent describes a change to the token file.
type TokenEvent int

const (
	// TokenWritten means the token file was created or replaced.
	TokenWritten TokenEvent = iota
	// TokenRemoved means the token file is gone.
	TokenRemoved
)

func (e TokenEvent) String() string {
	if e == TokenRemoved {
		return "removed"
	}
	return "written"
}

// Watcher reports changes to the token file. It watches the parent
// directory because atomic saves replace the file by rename.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	events  chan TokenEvent
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewWatcher starts watching the token file at path.
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create token directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		path:    abs,
		watcher: fsw,
		events:  make(chan TokenEvent, 8),
		ctx:     ctx,
		cancel:  cancel,
	}
	go w.processEvents()
	return w, nil
}

// Events delivers token changes. The channel is closed by Close.
func (w *Watcher) Events() <-chan TokenEvent {
	return w.events
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}

func (w *Watcher) processEvents() {
	defer close(w.events)

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}

			var ev TokenEvent
			switch {
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				ev = TokenRemoved
			case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
				ev = TokenWritten
			default:
				continue
			}

			select {
			case w.events <- ev:
			case <-w.ctx.Done():
				return
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}
