// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage is the SQLite store behind the development backend.
//
// It holds registered users and saved chat records. Records are written once
// and never updated; each user only ever sees their own.
//
// # Key Types
//
//   - Store: Database handle with user and chat operations
//   - User: Registered account with a bcrypt password hash
//
// # Usage
//
//	store, err := storage.Open(cfg.Server.Database)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//	chats, err := store.ChatsForUser(ctx, email)
package storage
