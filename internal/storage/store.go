// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides chat persistence for the NeuroForge TUI.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/neuroforge/neuroforge-tui/internal/util"
)

// TitleMaxRunes is the maximum length of a chat title. Titles derived from
// the first user message are truncated to this many runes.
const TitleMaxRunes = 100

// DefaultTitle is used when a chat is created from an empty first message.
const DefaultTitle = "New Chat"

// =============================================================================
// ERRORS
// =============================================================================

// ErrChatNotFound is returned when a chat doesn't exist.
// Use errors.Is(err, ErrChatNotFound) to check for this error.
var ErrChatNotFound = &StoreError{Message: "chat not found"}

// StoreError represents a persistence error. It implements the error
// interface and can be compared using errors.Is.
type StoreError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is support for comparing store errors.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// STORED RECORD TYPES
// =============================================================================

// StoredChat represents a persisted chat row.
type StoredChat struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StoredMessage represents a persisted message row. Rows are append-only.
type StoredMessage struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	Content   string    `json:"content"`
	Role      string    `json:"role"` // "user" or "bot"
	CreatedAt time.Time `json:"created_at"`
}

// =============================================================================
// CHAT STORE
// =============================================================================

// ChatStore handles chat and message persistence backed by SQLite.
//
// The store is the system of record; callers never hold authoritative chat
// state, they read through and write through it.
type ChatStore struct {
	db *sql.DB
}

// NewChatStore opens (creating if needed) the chat database at path.
func NewChatStore(path string) (*ChatStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, &StoreError{Message: "failed to create database directory", Cause: err}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StoreError{Message: "failed to open database", Cause: err}
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, &StoreError{Message: "failed to initialize schema", Cause: err}
	}

	// Record the schema version so a future migration can tell what it is
	// upgrading from. Existing databases keep their recorded version.
	if _, err := db.Exec(
		`INSERT INTO metadata (key, value) VALUES (?, ?) ON CONFLICT(key) DO NOTHING`,
		schemaVersionKey, strconv.Itoa(SchemaVersion),
	); err != nil {
		db.Close()
		return nil, &StoreError{Message: "failed to record schema version", Cause: err}
	}

	return &ChatStore{db: db}, nil
}

// SchemaVersionOf reports the schema version recorded in the database.
func (s *ChatStore) SchemaVersionOf(ctx context.Context) (int, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM metadata WHERE key = ?`, schemaVersionKey).Scan(&value)
	if err != nil {
		return 0, &StoreError{Message: "failed to read schema version", Cause: err}
	}
	version, err := strconv.Atoi(value)
	if err != nil {
		return 0, &StoreError{Message: "malformed schema version", Cause: err}
	}
	return version, nil
}

// Close releases the underlying database handle.
func (s *ChatStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// CHAT OPERATIONS
// =============================================================================

// CreateChat inserts a new chat row with a provisional title taken from the
// first message text ("New Chat" if empty) and returns the generated id.
// The provisional title is overwritten when the first user message is
// appended.
func (s *ChatStore) CreateChat(ctx context.Context, userID, firstMessage string) (string, error) {
	title := firstMessage
	if title == "" {
		title = DefaultTitle
	}

	id := generateChatID()
	now := time.Now().UnixNano()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chats (id, user_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, userID, title, now, now)
	if err != nil {
		return "", &StoreError{Message: "failed to create chat", Cause: err}
	}

	return id, nil
}

// GetChat retrieves a single chat by id.
func (s *ChatStore) GetChat(ctx context.Context, chatID string) (*StoredChat, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, created_at, updated_at FROM chats WHERE id = ?`, chatID)

	chat, err := scanChat(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChatNotFound
		}
		return nil, &StoreError{Message: "failed to load chat", Cause: err}
	}

	return chat, nil
}

// ListChats returns all chats for a user, most recently created first.
func (s *ChatStore) ListChats(ctx context.Context, userID string) ([]StoredChat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, created_at, updated_at
		 FROM chats WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, &StoreError{Message: "failed to list chats", Cause: err}
	}
	defer rows.Close()

	var chats []StoredChat
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, &StoreError{Message: "failed to scan chat", Cause: err}
		}
		chats = append(chats, *chat)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Message: "failed to list chats", Cause: err}
	}

	return chats, nil
}

// UpdateTitle overwrites a chat's title.
func (s *ChatStore) UpdateTitle(ctx context.Context, chatID, title string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE chats SET title = ?, updated_at = ? WHERE id = ?`,
		title, time.Now().UnixNano(), chatID)
	if err != nil {
		return &StoreError{Message: "failed to update title", Cause: err}
	}
	return nil
}

// DeleteChat removes a chat and its messages.
func (s *ChatStore) DeleteChat(ctx context.Context, chatID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE chat_id = ?`, chatID); err != nil {
		return &StoreError{Message: "failed to delete messages", Cause: err}
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chats WHERE id = ?`, chatID); err != nil {
		return &StoreError{Message: "failed to delete chat", Cause: err}
	}
	return nil
}

// DeleteAllChats removes every chat (and messages) belonging to a user.
func (s *ChatStore) DeleteAllChats(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM messages WHERE chat_id IN (SELECT id FROM chats WHERE user_id = ?)`, userID); err != nil {
		return &StoreError{Message: "failed to delete messages", Cause: err}
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chats WHERE user_id = ?`, userID); err != nil {
		return &StoreError{Message: "failed to delete chats", Cause: err}
	}
	return nil
}

// =============================================================================
// MESSAGE OPERATIONS
// =============================================================================

// AppendMessage inserts a message row. If the message is the first user-role
// message ever recorded for the chat, the chat's title is overwritten with
// the content truncated to TitleMaxRunes.
//
// The title fixup is not atomic with the insert. Two concurrent first user
// messages on the same chat could double-update the title; the client is a
// single writer per session, so last-writer-wins is acceptable here.
func (s *ChatStore) AppendMessage(ctx context.Context, chatID, content, role string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, chat_id, content, role, created_at) VALUES (?, ?, ?, ?, ?)`,
		generateMessageID(), chatID, content, role, time.Now().UnixNano())
	if err != nil {
		return &StoreError{Message: "failed to append message", Cause: err}
	}

	if role != "user" {
		return nil
	}

	count, err := s.countMessagesByRole(ctx, chatID, "user")
	if err != nil {
		return err
	}
	if count == 1 {
		return s.UpdateTitle(ctx, chatID, util.TruncateRunesNoEllipsis(content, TitleMaxRunes))
	}

	return nil
}

// ListMessages returns all messages for a chat, oldest first.
func (s *ChatStore) ListMessages(ctx context.Context, chatID string) ([]StoredMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chat_id, content, role, created_at
		 FROM messages WHERE chat_id = ? ORDER BY created_at ASC`, chatID)
	if err != nil {
		return nil, &StoreError{Message: "failed to list messages", Cause: err}
	}
	defer rows.Close()

	var messages []StoredMessage
	for rows.Next() {
		var msg StoredMessage
		var createdAt int64
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.Content, &msg.Role, &createdAt); err != nil {
			return nil, &StoreError{Message: "failed to scan message", Cause: err}
		}
		msg.CreatedAt = time.Unix(0, createdAt)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Message: "failed to list messages", Cause: err}
	}

	return messages, nil
}

// CountMessages returns the number of messages recorded for a chat.
func (s *ChatStore) CountMessages(ctx context.Context, chatID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE chat_id = ?`, chatID).Scan(&count)
	if err != nil {
		return 0, &StoreError{Message: "failed to count messages", Cause: err}
	}
	return count, nil
}

// countMessagesByRole counts messages of one role within a chat.
func (s *ChatStore) countMessagesByRole(ctx context.Context, chatID, role string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE chat_id = ? AND role = ?`, chatID, role).Scan(&count)
	if err != nil {
		return 0, &StoreError{Message: "failed to count messages", Cause: err}
	}
	return count, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

// scanChat reads one chat row, converting stored unix nanoseconds back to
// time.Time.
func scanChat(row rowScanner) (*StoredChat, error) {
	var chat StoredChat
	var createdAt, updatedAt int64
	if err := row.Scan(&chat.ID, &chat.UserID, &chat.Title, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	chat.CreatedAt = time.Unix(0, createdAt)
	chat.UpdatedAt = time.Unix(0, updatedAt)
	return &chat, nil
}

// generateChatID creates a unique chat ID.
func generateChatID() string {
	return "chat_" + uuid.NewString()
}

// generateMessageID creates a unique message row ID.
func generateMessageID() string {
	return "msg_" + uuid.NewString()
}

// String implements fmt.Stringer for debugging.
func (c *StoredChat) String() string {
	return fmt.Sprintf("chat %s (%s)", c.ID, util.TruncateRunes(c.Title, 30))
}
