// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/portal-tui/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter writes records as readable Markdown transcripts.
type MarkdownExporter struct {
	// now stamps the export footer.
	now func() time.Time
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{now: time.Now}
}

// ExportOne converts a record to Markdown with YAML frontmatter.
func (e *MarkdownExporter) ExportOne(rec *model.ChatRecord) ([]byte, error) {
	var sb strings.Builder

	sb.WriteString("---\n")
	sb.WriteString(fmt.Sprintf("id: %s\n", escapeYAML(rec.ID)))
	sb.WriteString(fmt.Sprintf("assistant: %s\n", escapeYAML(rec.AssistantName)))
	if !rec.Timestamp.IsZero() {
		sb.WriteString(fmt.Sprintf("date: %s\n", rec.Timestamp.Format(time.RFC3339)))
	}
	sb.WriteString(fmt.Sprintf("messages: %d\n", len(rec.Messages)))
	if rec.UserName != "" {
		sb.WriteString(fmt.Sprintf("user: %s\n", escapeYAML(rec.UserName)))
	}
	sb.WriteString("---\n\n")

	e.writeBody(&sb, rec, "#")

	sb.WriteString("\n---\n\n")
	sb.WriteString(fmt.Sprintf("*Exported from AI Platform on %s*\n",
		e.now().Format("January 2, 2006 at 3:04 PM")))

	return []byte(sb.String()), nil
}

// ExportAll converts records to one Markdown document, one section each.
func (e *MarkdownExporter) ExportAll(recs []model.ChatRecord) ([]byte, error) {
	var sb strings.Builder

	sb.WriteString("# Conversation History\n\n")
	sb.WriteString(fmt.Sprintf("%d conversations\n\n", len(recs)))

	for i := range recs {
		sb.WriteString("---\n\n")
		e.writeBody(&sb, &recs[i], "##")
	}

	sb.WriteString("\n---\n\n")
	sb.WriteString(fmt.Sprintf("*Exported from AI Platform on %s*\n",
		e.now().Format("January 2, 2006 at 3:04 PM")))

	return []byte(sb.String()), nil
}

func (e *MarkdownExporter) writeBody(sb *strings.Builder, rec *model.ChatRecord, heading string) {
	title := rec.AssistantName
	if title == "" {
		title = rec.ID
	}
	sb.WriteString(fmt.Sprintf("%s %s\n\n", heading, escapeMarkdown(title)))

	if rec.UserName != "" || rec.UserEmail != "" {
		sb.WriteString(fmt.Sprintf("- **User**: %s", rec.UserName))
		if rec.UserEmail != "" {
			sb.WriteString(fmt.Sprintf(" <%s>", rec.UserEmail))
		}
		sb.WriteString("\n")
	}
	if !rec.Timestamp.IsZero() {
		sb.WriteString(fmt.Sprintf("- **Date**: %s %s\n", rec.Date(), rec.Time()))
	}
	sb.WriteString(fmt.Sprintf("- **Messages**: %d\n\n", len(rec.Messages)))

	for _, msg := range rec.Messages {
		sb.WriteString(fmt.Sprintf("%s# %s\n\n", heading, formatRoleLabel(msg.Role)))
		sb.WriteString(strings.TrimSpace(msg.Content))
		sb.WriteString("\n\n")
	}
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

func formatRoleLabel(role model.Role) string {
	switch role {
	case model.RoleUser:
		return "[User]"
	case model.RoleAssistant:
		return "[Assistant]"
	case "":
		return "Unknown"
	default:
		runes := []rune(string(role))
		return strings.ToUpper(string(runes[0])) + string(runes[1:])
	}
}

// escapeMarkdown escapes special Markdown characters in plain text.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}

// escapeYAML escapes special YAML characters in values.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return fmt.Sprintf("\"%s\"", s)
	}
	return s
}
