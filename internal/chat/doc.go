// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements a conversation with one assistant.
//
// A Session holds an append-only transcript and a pending flag. At most one
// reply request is outstanding per session: Submit refuses new text while a
// turn is pending instead of queueing it.
//
// Sending is split in two so a UI can show the user message before the
// reply arrives:
//
//	turn, ok := sess.Submit(text) // appends the user message now
//	if ok {
//	    go turn.Run()              // one backend call, appends the reply
//	}
//
// Close cancels the in-flight call. A reply that completes after Close is
// discarded so it cannot touch a transcript nobody is showing any more.
package chat
