// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/neuroforge/neuroforge-tui/internal/config"
	"github.com/neuroforge/neuroforge-tui/internal/history"
	"github.com/neuroforge/neuroforge-tui/internal/session"
	"github.com/neuroforge/neuroforge-tui/internal/storage"
	"github.com/neuroforge/neuroforge-tui/internal/ui/styles"
)

// WelcomeText greets the user when no chat is selected.
const WelcomeText = "Hi, I'm NeuroForge. How can I help you today?"

// =============================================================================
// FOCUS STATE
// =============================================================================

// Focus identifies which pane receives navigation keys.
type Focus int

const (
	FocusInput   Focus = iota // Text input owns keystrokes
	FocusSidebar              // Sidebar owns up/down/enter
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int
	ready  bool

	// Domain wiring
	orch    *session.Orchestrator
	manager *history.Manager
	store   *storage.ChatStore
	userID  string

	// Sidebar state. flat is the descending chat list the buckets were
	// built from; bucket order is first-encounter over that list, so it is
	// also the display order the selection index walks.
	grouped      *history.GroupedChats
	flat         []storage.StoredChat
	sidebarOpen  bool
	sidebarIndex int
	focus        Focus

	// Display options
	showTimestamps bool
	sidebarWidth   int

	// UI Components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	keyMap   KeyMap

	// Transient status line; cleared on the next keypress.
	statusMsg string

	// Startup policy input, consumed by Init.
	startNewChat bool
}

// New builds the chat model. The caller supplies the already-wired domain
// components; newChat carries the tab-scoped fresh-start flag.
func New(orch *session.Orchestrator, manager *history.Manager, store *storage.ChatStore, userID string, cfg *config.Config, newChat bool) Model {
	ti := textinput.New()
	ti.Placeholder = "Type your message..."
	ti.Prompt = "> "
	ti.CharLimit = 0
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	theme := styles.NewTheme()
	sp.Style = theme.Spinner
	ti.PromptStyle = theme.InputPrompt
	ti.PlaceholderStyle = theme.InputPlaceholder

	return Model{
		theme:          theme,
		orch:           orch,
		manager:        manager,
		store:          store,
		userID:         userID,
		showTimestamps: cfg.UI.ShowTimestamps,
		sidebarWidth:   cfg.UI.SidebarWidth,
		input:          ti,
		spinner:        sp,
		keyMap:         DefaultKeyMap(),
		focus:          FocusInput,
		startNewChat:   newChat,
	}
}

// Init runs the single startup load that fills the sidebar and applies the
// selection policy.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		startupCmd(m.manager, m.userID, m.startNewChat),
		m.spinner.Tick,
		textinput.Blink,
	)
}

func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.MouseWheelEnabled = true
	return vp
}

// selectedChat returns the chat under the sidebar cursor, or nil.
func (m Model) selectedChat() *storage.StoredChat {
	if m.sidebarIndex < 0 || m.sidebarIndex >= len(m.flat) {
		return nil
	}
	return &m.flat[m.sidebarIndex]
}
