// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file contains the Bubble Tea update loop: key handling, window
// resizing, and the message handlers for history, session, and submit events.
package chat

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/neuroforge/neuroforge-tui/internal/session"
)

// Update routes incoming messages to the appropriate handler.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StartupMsg:
		return m.handleStartup(msg), nil

	case HistoryLoadedMsg:
		return m.handleHistoryLoaded(msg), nil

	case SessionLoadedMsg:
		return m.handleSessionLoaded(msg), nil

	case SubmitFinishedMsg:
		// The command goroutine never touches the session; the append (bot
		// reply or fallback) happens here, on the update loop, where the
		// view also reads it.
		m.orch.CompleteSubmit(msg.Bot)
		m.refreshViewport()
		return m, loadHistoryCmd(m.manager, m.userID)

	case HistoryClearedMsg:
		if msg.Err != nil {
			m.statusMsg = "Failed to clear history"
			return m, nil
		}
		m.orch.StartNewChat()
		m.sidebarIndex = 0
		m.refreshViewport()
		return m, loadHistoryCmd(m.manager, m.userID)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMsg = ""

	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.NewChat):
		m.orch.StartNewChat()
		m.input.Reset()
		m.focus = FocusInput
		m.input.Focus()
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keyMap.ToggleSidebar):
		m.sidebarOpen = !m.sidebarOpen
		if m.sidebarOpen {
			m.focus = FocusSidebar
			m.input.Blur()
		} else {
			m.focus = FocusInput
			m.input.Focus()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.ClearHistory):
		return m, deleteAllCmd(m.store, m.userID)

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	if m.focus == FocusSidebar {
		return m.handleSidebarKey(msg)
	}

	switch {
	case key.Matches(msg, m.keyMap.Submit):
		return m.handleSubmit()

	case key.Matches(msg, m.keyMap.Up):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		m.viewport.LineDown(1)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleSidebarKey moves the history cursor and selects chats.
func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Up):
		if m.sidebarIndex > 0 {
			m.sidebarIndex--
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		if m.sidebarIndex < len(m.flat)-1 {
			m.sidebarIndex++
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		chat := m.selectedChat()
		if chat == nil {
			return m, nil
		}
		m.focus = FocusInput
		m.input.Focus()
		return m, loadSessionCmd(m.manager, chat.ID)

	case key.Matches(msg, m.keyMap.Cancel):
		m.focus = FocusInput
		m.input.Focus()
		return m, nil
	}

	return m, nil
}

// handleSubmit runs the synchronous half of a submit and schedules the rest.
// While a submit is in flight further submits are rejected, leaving the
// typed text in the input.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	text := m.input.Value()

	_, err := m.orch.BeginSubmit(text)
	switch {
	case errors.Is(err, session.ErrEmptyMessage):
		return m, nil
	case errors.Is(err, session.ErrBusy):
		m.statusMsg = "Still responding, hang on..."
		return m, nil
	case err != nil:
		m.statusMsg = "Unable to send message"
		return m, nil
	}

	m.input.Reset()
	m.refreshViewport()
	return m, tea.Batch(finishSubmitCmd(m.orch, text), m.spinner.Tick)
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height

	vpWidth := m.width
	if m.sidebarOpen {
		vpWidth -= m.sidebarWidth
	}
	// header (1) + input (3) + status (1)
	vpHeight := m.height - 5
	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.viewport = newViewport(vpWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = vpWidth
		m.viewport.Height = vpHeight
	}

	m.input.Width = m.width - 6
	m.refreshViewport()
	return m
}

func (m Model) handleStartup(msg StartupMsg) Model {
	if msg.Err != nil {
		m.statusMsg = "Failed to load chat history"
		return m
	}
	m.grouped = msg.Grouped
	m.flat = msg.Chats
	if msg.Session != nil {
		m.orch.SelectSession(msg.Session)
	}
	m.refreshViewport()
	return m
}

func (m Model) handleHistoryLoaded(msg HistoryLoadedMsg) Model {
	if msg.Err != nil {
		m.statusMsg = "Failed to load chat history"
		return m
	}
	m.grouped = msg.Grouped
	// The delivered list is the same descending order the buckets were
	// built from, so it doubles as the cursor's display order.
	m.flat = msg.Chats
	if m.sidebarIndex >= len(m.flat) {
		m.sidebarIndex = 0
	}
	return m
}

func (m Model) handleSessionLoaded(msg SessionLoadedMsg) Model {
	if msg.Err != nil {
		m.statusMsg = "Failed to load chat"
		return m
	}
	if msg.Session != nil {
		m.orch.SelectSession(msg.Session)
	}
	m.refreshViewport()
	return m
}

// refreshViewport re-renders the thread and pins the view to the newest
// message.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderThread())
	m.viewport.GotoBottom()
}
