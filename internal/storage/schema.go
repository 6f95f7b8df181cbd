// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides chat persistence for the NeuroForge TUI.
package storage

const (
	// SchemaVersion tracks the database schema version for migrations.
	// NewChatStore records it in the metadata table on first open.
	SchemaVersion = 1

	// schemaVersionKey is the metadata row holding the recorded version.
	schemaVersionKey = "schema_version"
)

// SQLite schema for the chat history database.
//
// Timestamps are stored as unix nanoseconds so that the user message and the
// bot reply of a single exchange keep their relative order when sorted by
// created_at.
const Schema = `
-- Metadata table for schema version
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

-- Chats table: one row per persisted chat
CREATE TABLE IF NOT EXISTS chats (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    title TEXT NOT NULL,
    created_at INTEGER NOT NULL,  -- Unix nanoseconds
    updated_at INTEGER NOT NULL   -- Unix nanoseconds
);

CREATE INDEX IF NOT EXISTS idx_chats_user_created ON chats(user_id, created_at);

-- Messages table: append-only message rows
CREATE TABLE IF NOT EXISTS messages (
    id TEXT PRIMARY KEY,
    chat_id TEXT NOT NULL,
    content TEXT NOT NULL,
    role TEXT NOT NULL,           -- "user" or "bot"
    created_at INTEGER NOT NULL,  -- Unix nanoseconds
    FOREIGN KEY(chat_id) REFERENCES chats(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_messages_chat_created ON messages(chat_id, created_at);
CREATE INDEX IF NOT EXISTS idx_messages_chat_role ON messages(chat_id, role);
`
