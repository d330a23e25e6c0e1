// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for messages and chat records.
//
// # Key Types
//
//   - Message: Single message with role, content and optional timestamp
//   - Role: Message role enumeration (user, assistant)
//   - ChatRecord: A saved conversation as the backend stores it
//
// Messages are immutable once appended to a transcript. Chat records are
// owned by the backend and never mutated by the client.
package model
