// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export serialises chat records to files.
//
// Exports are pure: they never touch the network. JSON is the canonical
// format (two-space indent, the record exactly as the backend returned it);
// YAML and Markdown are also available.
//
// # File Names
//
//   - One chat: chat_{id}.json
//   - All chats: all_chats_{UTC timestamp}.json, timestamp in ISO-8601
//     basic format (20250102T030405Z) so the name is valid on every OS
//
// # Usage
//
//	f, err := export.One(rec, export.FormatJSON)
//	path, err := f.WriteTo(dir)
package export
