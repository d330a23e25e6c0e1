// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared by the portal packages.
//
// String helpers measure display width with go-runewidth so table cells and
// dashboard cards line up when names contain wide characters. File helpers
// write configuration, tokens and exports atomically.
//
//	cell := util.TruncateWidth(chat.Preview, 40)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
