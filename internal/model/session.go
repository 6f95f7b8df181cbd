// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"time"
)

// =============================================================================
// CHAT SESSION TYPE
// =============================================================================

// ChatSession is the in-memory representation of one chat thread.
//
// Its ID matches the backing persisted chat's identifier once one exists;
// before first persistence a session may exist only in memory with a
// client-chosen placeholder id. Exactly one session is current in the UI at
// a time. Sessions are mutated only by appending messages.
type ChatSession struct {
	ID        string     `json:"id"`
	Messages  []*Message `json:"messages"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewSession creates an empty session for the given chat id.
func NewSession(id string) *ChatSession {
	return &ChatSession{
		ID:        id,
		Messages:  make([]*Message, 0),
		CreatedAt: time.Now(),
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddMessage appends a message to the session.
func (s *ChatSession) AddMessage(msg *Message) {
	s.Messages = append(s.Messages, msg)
}

// IsEmpty reports whether the session has no messages.
func (s *ChatSession) IsEmpty() bool {
	return s == nil || len(s.Messages) == 0
}

// MessageCount returns the number of messages in the session.
func (s *ChatSession) MessageCount() int {
	if s == nil {
		return 0
	}
	return len(s.Messages)
}
