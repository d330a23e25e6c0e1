// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/portal-tui/internal/config"
	"github.com/jeranaias/portal-tui/internal/ui/styles"
)

// renderer prints assistant markdown. Output that is not a terminal, or
// raw mode, gets the markdown source unchanged.
type renderer struct {
	tr *glamour.TermRenderer
}

func newRenderer(w io.Writer, cfg *config.Config, raw bool) *renderer {
	if raw || !cfg.UI.RenderMarkdown || !isTerminal(w) {
		return &renderer{}
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(styles.NewTheme(cfg.UI.Theme).GlamourStyle()),
		glamour.WithWordWrap(terminalWidth(w)-4),
	)
	if err != nil {
		return &renderer{}
	}
	return &renderer{tr: tr}
}

// Markdown renders md, falling back to the source on render errors.
func (r *renderer) Markdown(md string) string {
	if r.tr == nil {
		return md
	}
	out, err := r.tr.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}
