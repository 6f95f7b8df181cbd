// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"context"
	"log"

	"github.com/neuroforge/neuroforge-tui/internal/model"
	"github.com/neuroforge/neuroforge-tui/internal/storage"
)

// =============================================================================
// HISTORY MANAGER
// =============================================================================

// Manager orchestrates loading a user's chat history and reclaiming invalid
// rows. A chat with zero messages is considered invalid and is deleted
// whenever a load encounters it.
type Manager struct {
	store *storage.ChatStore
}

// NewManager creates a history manager on top of a chat store.
func NewManager(store *storage.ChatStore) *Manager {
	return &Manager{store: store}
}

// LoadHistory fetches all chats for a user, most recently created first.
// Chats with no messages are deleted as a cleanup side effect and excluded
// from the result. All deletions complete before the function returns.
func (m *Manager) LoadHistory(ctx context.Context, userID string) ([]storage.StoredChat, error) {
	chats, err := m.store.ListChats(ctx, userID)
	if err != nil {
		return nil, err
	}

	valid := make([]storage.StoredChat, 0, len(chats))
	for _, chat := range chats {
		count, err := m.store.CountMessages(ctx, chat.ID)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			valid = append(valid, chat)
			continue
		}
		if err := m.store.DeleteChat(ctx, chat.ID); err != nil {
			// Reclamation is best effort; the chat stays hidden either way.
			log.Printf("history: failed to delete empty chat %s: %v", chat.ID, err)
		}
	}

	return valid, nil
}

// LoadMessages returns a chat's messages, oldest first.
func (m *Manager) LoadMessages(ctx context.Context, chatID string) ([]storage.StoredMessage, error) {
	return m.store.ListMessages(ctx, chatID)
}

// LoadSession loads one chat and its messages as an in-memory session.
func (m *Manager) LoadSession(ctx context.Context, chatID string) (*model.ChatSession, error) {
	chat, err := m.store.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	rows, err := m.store.ListMessages(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return ToSession(*chat, rows), nil
}

// =============================================================================
// STARTUP POLICY
// =============================================================================

// Initialize applies the startup selection policy over a single history
// load and hands the pruned chat list back for the sidebar, so startup does
// not list (and prune) the same history twice. When newChat is set the
// welcome state wins regardless of history contents and no session is
// returned. Otherwise the most recently created chat, if any, is loaded as
// the current session. A nil session means the UI should show the welcome
// state.
func (m *Manager) Initialize(ctx context.Context, userID string, newChat bool) (*model.ChatSession, []storage.StoredChat, error) {
	chats, err := m.LoadHistory(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	if newChat || len(chats) == 0 {
		return nil, chats, nil
	}

	rows, err := m.LoadMessages(ctx, chats[0].ID)
	if err != nil {
		return nil, chats, err
	}

	return ToSession(chats[0], rows), chats, nil
}
