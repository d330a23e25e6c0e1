// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"time"

	"github.com/jeranaias/portal-tui/internal/catalog"
	"github.com/jeranaias/portal-tui/internal/config"
	"github.com/jeranaias/portal-tui/internal/model"
	"github.com/jeranaias/portal-tui/internal/ollama"
)

// DemoResponse is the canned reply of the demo engine.
const DemoResponse = "I've received your message and I'm processing it. This is a demo response. " +
	"In a production environment, I would provide a detailed, contextual response based on your request."

// Replier produces the assistant's next message for a transcript.
type Replier interface {
	Reply(ctx context.Context, assistantID string, transcript []model.Message) (string, error)
}

// DemoReplier answers every message with DemoResponse. The first reply of a
// conversation opens with the assistant's greeting.
type DemoReplier struct {
	// Delay simulates model latency.
	Delay time.Duration
}

// Reply implements Replier.
func (d DemoReplier) Reply(ctx context.Context, assistantID string, transcript []model.Message) (string, error) {
	if d.Delay > 0 {
		select {
		case <-time.After(d.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	users := 0
	for _, m := range transcript {
		if m.IsUser() {
			users++
		}
	}
	if users <= 1 {
		if a, err := catalog.Lookup(assistantID); err == nil {
			return a.Greeting + "\n\n" + DemoResponse, nil
		}
	}
	return DemoResponse, nil
}

// NewReplier returns the engine selected by cfg.ReplyMode.
func NewReplier(cfg config.ServerConfig) Replier {
	if cfg.ReplyMode == "ollama" {
		return ollama.NewClientWithConfig(&ollama.ClientConfig{
			BaseURL:      cfg.OllamaURL,
			DefaultModel: cfg.OllamaModel,
		})
	}
	return DemoReplier{Delay: 400 * time.Millisecond}
}
