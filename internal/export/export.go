// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/portal-tui/internal/model"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter serialises chat records in one format.
type Exporter interface {
	// ExportOne serialises a single record.
	ExportOne(rec *model.ChatRecord) ([]byte, error)

	// ExportAll serialises a list of records.
	ExportAll(recs []model.ChatRecord) ([]byte, error)

	// FileExtension returns the file extension (e.g., ".json").
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// Format names an export format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatYAML, FormatMarkdown}

// ParseFormat parses a format name. "md" and "yml" are accepted aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want json, yaml or markdown)", s)
	}
}

// ForFormat returns the exporter for f.
func ForFormat(f Format) (Exporter, error) {
	switch f {
	case FormatJSON:
		return NewJSONExporter(), nil
	case FormatYAML:
		return NewYAMLExporter(), nil
	case FormatMarkdown:
		return NewMarkdownExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", f)
	}
}

// =============================================================================
// FILES
// =============================================================================

// File is an export ready to be written.
type File struct {
	Name     string
	MimeType string
	Data     []byte
}

// timestampLayout is ISO-8601 basic format in UTC.
const timestampLayout = "20060102T150405Z"

// ChatFilename returns the file name for one exported chat.
func ChatFilename(id string, ext string) string {
	return "chat_" + sanitizeFilename(id) + ext
}

// AllChatsFilename returns the file name for an export of every chat.
func AllChatsFilename(now time.Time, ext string) string {
	return "all_chats_" + now.UTC().Format(timestampLayout) + ext
}

// One exports a single record.
func One(rec *model.ChatRecord, f Format) (*File, error) {
	if rec == nil {
		return nil, fmt.Errorf("chat record is nil")
	}
	exp, err := ForFormat(f)
	if err != nil {
		return nil, err
	}
	data, err := exp.ExportOne(rec)
	if err != nil {
		return nil, fmt.Errorf("export failed: %w", err)
	}
	return &File{
		Name:     ChatFilename(rec.ID, exp.FileExtension()),
		MimeType: exp.MimeType(),
		Data:     data,
	}, nil
}

// All exports every record in recs, stamped with now.
func All(recs []model.ChatRecord, now time.Time, f Format) (*File, error) {
	exp, err := ForFormat(f)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []model.ChatRecord{}
	}
	data, err := exp.ExportAll(recs)
	if err != nil {
		return nil, fmt.Errorf("export failed: %w", err)
	}
	return &File{
		Name:     AllChatsFilename(now, exp.FileExtension()),
		MimeType: exp.MimeType(),
		Data:     data,
	}, nil
}

// WriteTo writes the file into dir, creating it if needed, and returns the
// full path.
func (f *File) WriteTo(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	outputPath := filepath.Join(dir, f.Name)
	if err := os.WriteFile(outputPath, f.Data, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return outputPath, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename removes or replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	runes := []rune(s)
	if len(runes) > 100 {
		runes = runes[:100]
	}

	result := make([]rune, 0, len(runes))
	for _, r := range runes {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			result = append(result, '-')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			result = append(result, '_')
		case r < 32 || r == 127:
			result = append(result, '-')
		default:
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return "untitled"
	}
	return string(result)
}
