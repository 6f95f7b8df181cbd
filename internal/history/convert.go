// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history loads, prunes, and groups persisted chats, and converts
// between stored rows and in-memory sessions.
package history

import (
	"github.com/neuroforge/neuroforge-tui/internal/model"
	"github.com/neuroforge/neuroforge-tui/internal/storage"
)

// ToMessage converts a stored message row into the in-memory message shape.
// A role of "user" maps to the user sender; anything else is treated as bot.
func ToMessage(row storage.StoredMessage) *model.Message {
	sender := model.SenderBot
	if row.Role == "user" {
		sender = model.SenderUser
	}

	return &model.Message{
		ID:        row.ID,
		Text:      row.Content,
		Sender:    sender,
		Timestamp: row.CreatedAt,
	}
}

// ToSession converts a stored chat and its message rows into a session.
// Message order is preserved; the caller must have already sorted rows
// ascending by creation time.
func ToSession(chat storage.StoredChat, rows []storage.StoredMessage) *model.ChatSession {
	messages := make([]*model.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, ToMessage(row))
	}

	return &model.ChatSession{
		ID:        chat.ID,
		Messages:  messages,
		CreatedAt: chat.CreatedAt,
	}
}
