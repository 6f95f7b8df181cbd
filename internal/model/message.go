// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies which side of the exchange produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// String returns the string representation of the sender.
func (s Sender) String() string {
	return string(s)
}

// DisplayName returns a human-readable name for the sender.
func (s Sender) DisplayName() string {
	switch s {
	case SenderUser:
		return "You"
	case SenderBot:
		return "NeuroForge"
	default:
		return string(s)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a chat session.
// Messages are immutable once created.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(sender Sender, text string) *Message {
	return &Message{
		ID:        generateID(),
		Text:      text,
		Sender:    sender,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(text string) *Message {
	return NewMessage(SenderUser, text)
}

// NewBotMessage creates a new bot message.
func NewBotMessage(text string) *Message {
	return NewMessage(SenderBot, text)
}

// NewErrorMessage creates a local-only bot message describing a failure.
// Error messages are never persisted, so they disappear on reload.
func NewErrorMessage(text string) *Message {
	msg := NewMessage(SenderBot, text)
	msg.ID = "error-" + msg.ID
	return msg
}

// =============================================================================
// ID GENERATION
// =============================================================================

// generateID creates a message ID from the current wall clock plus a short
// random suffix. The suffix guards against collisions when two messages are
// created within the same millisecond.
func generateID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + uuid.NewString()[:8]
}
