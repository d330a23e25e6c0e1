// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"

	"github.com/jeranaias/portal-tui/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter writes records exactly as the backend returns them.
type JSONExporter struct{}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// ExportOne converts a record to indented JSON.
func (e *JSONExporter) ExportOne(rec *model.ChatRecord) ([]byte, error) {
	return json.MarshalIndent(rec, "", "  ")
}

// ExportAll converts records to an indented JSON array.
func (e *JSONExporter) ExportAll(recs []model.ChatRecord) ([]byte, error) {
	return json.MarshalIndent(recs, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
