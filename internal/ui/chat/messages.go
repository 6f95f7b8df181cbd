// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines all Bubble Tea message types used by the chat interface,
// along with the commands that produce them. Messages are organized into the
// following categories:
//   - Startup: the initial history load and session selection
//   - History: sidebar loads and clears
//   - Session: selecting and loading a persisted chat
//   - Submit: completion of an inference round trip
package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/neuroforge/neuroforge-tui/internal/history"
	"github.com/neuroforge/neuroforge-tui/internal/model"
	"github.com/neuroforge/neuroforge-tui/internal/session"
	"github.com/neuroforge/neuroforge-tui/internal/storage"
)

// =============================================================================
// HISTORY MESSAGES
// =============================================================================

// HistoryLoadedMsg delivers the user's chat list, already grouped for the
// sidebar. Chats holds the raw descending-order list used for selection.
type HistoryLoadedMsg struct {
	Chats   []storage.StoredChat
	Grouped *history.GroupedChats
	Err     error
}

// HistoryClearedMsg signals that all chats for the user were deleted.
type HistoryClearedMsg struct {
	Err error
}

// =============================================================================
// STARTUP MESSAGES
// =============================================================================

// StartupMsg delivers the result of the single startup load: the sidebar
// chat list plus the session the startup policy selected (nil for the
// welcome state).
type StartupMsg struct {
	Session *model.ChatSession
	Chats   []storage.StoredChat
	Grouped *history.GroupedChats
	Err     error
}

// =============================================================================
// SESSION MESSAGES
// =============================================================================

// SessionLoadedMsg delivers a fully loaded chat session after a sidebar
// selection or startup restore.
type SessionLoadedMsg struct {
	Session *model.ChatSession
	Err     error
}

// =============================================================================
// SUBMIT MESSAGES
// =============================================================================

// SubmitFinishedMsg signals that the inference round trip completed. Bot
// carries the reply, or the local-only fallback message on failure; Update
// applies it to the session via CompleteSubmit.
type SubmitFinishedMsg struct {
	Bot *model.Message
	Err error
}

// =============================================================================
// COMMANDS
// =============================================================================

// commandTimeout bounds the persistence commands. The inference call itself
// is intentionally unbounded.
const commandTimeout = 10 * time.Second

// loadHistoryCmd fetches and groups the user's chats for the sidebar.
func loadHistoryCmd(mgr *history.Manager, userID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		chats, err := mgr.LoadHistory(ctx, userID)
		if err != nil {
			return HistoryLoadedMsg{Err: err}
		}
		return HistoryLoadedMsg{Chats: chats, Grouped: history.GroupByDate(chats)}
	}
}

// loadSessionCmd loads one chat's messages into a session.
func loadSessionCmd(mgr *history.Manager, chatID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		sess, err := mgr.LoadSession(ctx, chatID)
		return SessionLoadedMsg{Session: sess, Err: err}
	}
}

// startupCmd loads history once and applies the startup policy: a
// fresh-start flag yields no session, otherwise the most recent chat is
// restored when one exists. The loaded chat list doubles as the initial
// sidebar contents.
func startupCmd(mgr *history.Manager, userID string, newChat bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		sess, chats, err := mgr.Initialize(ctx, userID, newChat)
		if err != nil {
			return StartupMsg{Err: err}
		}
		return StartupMsg{Session: sess, Chats: chats, Grouped: history.GroupByDate(chats)}
	}
}

// finishSubmitCmd runs the blocking half of a submit: persistence plus the
// inference request. BeginSubmit must have succeeded first. The session is
// not touched from this goroutine; Update applies the result.
func finishSubmitCmd(orch *session.Orchestrator, text string) tea.Cmd {
	return func() tea.Msg {
		bot, err := orch.FinishSubmit(context.Background(), text)
		return SubmitFinishedMsg{Bot: bot, Err: err}
	}
}

// deleteAllCmd wipes every chat owned by the user.
func deleteAllCmd(store *storage.ChatStore, userID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		return HistoryClearedMsg{Err: store.DeleteAllChats(ctx, userID)}
	}
}
