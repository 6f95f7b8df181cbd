// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the per-submission state machine and the ephemeral
// per-tab state consumed by the startup policy.
package session

import (
	"sync"
)

// NewChatKey is the single key held in tab state. Present ("true") when the
// user has started a new chat and no chat should be auto-selected.
const NewChatKey = "new_chat_started"

// =============================================================================
// TAB STATE
// =============================================================================

// TabState is a process-local key-value slot scoped to one logical client
// session. It is the generalization of a browser tab's session storage:
// values live only for the lifetime of the process and are cleared on
// explicit navigation events.
type TabState struct {
	mu     sync.Mutex
	values map[string]string
}

// NewTabState creates an empty tab state.
func NewTabState() *TabState {
	return &TabState{values: make(map[string]string)}
}

// Get returns the value for a key and whether it was present.
func (t *TabState) Get(key string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.values[key]
	return v, ok
}

// Set stores a value for a key.
func (t *TabState) Set(key, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.values[key] = value
}

// Delete removes a key.
func (t *TabState) Delete(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.values, key)
}

// MarkNewChat sets the new-chat flag.
func (t *TabState) MarkNewChat() {
	t.Set(NewChatKey, "true")
}

// ClearNewChat clears the new-chat flag.
func (t *TabState) ClearNewChat() {
	t.Delete(NewChatKey)
}

// NewChatStarted reports whether the new-chat flag is set.
func (t *TabState) NewChatStarted() bool {
	v, ok := t.Get(NewChatKey)
	return ok && v == "true"
}
