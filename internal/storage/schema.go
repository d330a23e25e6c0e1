// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

// Schema creates the tables. Timestamps are unix nanoseconds; messages are
// the JSON transcript.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE COLLATE NOCASE,
    name          TEXT NOT NULL,
    department    TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS chats (
    id             TEXT PRIMARY KEY,
    assistant_id   TEXT NOT NULL,
    assistant_name TEXT NOT NULL,
    user_email     TEXT NOT NULL COLLATE NOCASE,
    user_name      TEXT NOT NULL,
    created_at     INTEGER NOT NULL,
    preview        TEXT NOT NULL,
    messages       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chats_user_created ON chats(user_email, created_at);
`
