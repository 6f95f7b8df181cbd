// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file contains all rendering logic for the chat interface:
//   - Main view layout (header, sidebar, thread, input, status bar)
//   - Message rendering through the structured renderer
//   - Sidebar rendering from date-bucketed history
package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/neuroforge/neuroforge-tui/internal/model"
	"github.com/neuroforge/neuroforge-tui/internal/render"
	"github.com/neuroforge/neuroforge-tui/internal/util"
)

// =============================================================================
// MAIN RENDER
// =============================================================================

// View renders the complete chat interface.
// Layout: header (1 line) + [sidebar | thread viewport] + input (3 lines) +
// status bar (1 line).
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.renderHeader()
	input := m.renderInput()
	status := m.renderStatusBar()

	main := m.viewport.View()
	if m.sidebarOpen {
		sidebar := m.renderSidebar()
		main = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, main, input, status)
}

// =============================================================================
// HEADER AND STATUS BAR
// =============================================================================

func (m Model) renderHeader() string {
	brand := m.theme.HeaderBrand.Render("NeuroForge")
	user := m.theme.HeaderUser.Render(m.userID)
	gap := m.width - lipgloss.Width(brand) - lipgloss.Width(user) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Width(m.width).Render(brand + strings.Repeat(" ", gap) + user)
}

func (m Model) renderStatusBar() string {
	if m.orch.IsSubmitting() {
		return m.theme.StatusBar.Width(m.width).Render(
			m.spinner.View() + " " + m.theme.ThinkingText.Render("NeuroForge is thinking..."))
	}
	if m.statusMsg != "" {
		return m.theme.StatusBar.Width(m.width).Render(m.statusMsg)
	}

	var parts []string
	for _, b := range m.keyMap.ShortcutHelp() {
		h := b.Help()
		parts = append(parts,
			m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.ShortcutDesc.Render(h.Desc))
	}
	return m.theme.StatusBar.Width(m.width).Render(strings.Join(parts, "  "))
}

func (m Model) renderInput() string {
	width := m.width - 2
	if width < 10 {
		width = 10
	}
	return m.theme.InputContainer.Width(width).Render(m.input.View())
}

// =============================================================================
// THREAD RENDERING
// =============================================================================

// renderThread renders the current session's messages, or the welcome box
// when no chat is active.
func (m Model) renderThread() string {
	sess := m.orch.CurrentSession()
	if sess == nil || sess.IsEmpty() {
		return m.renderWelcome()
	}

	var b strings.Builder
	for i, msg := range sess.Messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderWelcome() string {
	box := m.theme.WelcomeBox.Render(m.theme.WelcomeText.Render(WelcomeText))
	return lipgloss.Place(m.viewport.Width, m.viewport.Height, lipgloss.Center, lipgloss.Center, box)
}

// renderMessage renders one message with its sender label, styled body, and
// optional timestamp.
func (m Model) renderMessage(msg *model.Message) string {
	label := m.theme.SenderLabel.Render(msg.Sender.DisplayName())
	if m.showTimestamps {
		label += " " + m.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))
	}

	var body string
	switch {
	case msg.Sender == model.SenderUser:
		body = m.theme.UserBubble.Render(msg.Text)
	case strings.HasPrefix(msg.ID, "error-"):
		body = m.theme.ErrorBubble.Render(msg.Text)
	default:
		body = m.theme.AssistantBubble.Render(m.renderStructured(msg.Text))
	}

	return label + "\n" + body
}

// renderStructured runs the bot text through the block renderer and styles
// each block.
func (m Model) renderStructured(text string) string {
	blocks := render.Render(text)
	if len(blocks) == 0 {
		return text
	}

	var parts []string
	for _, block := range blocks {
		switch block.Kind {
		case render.BlockThinking:
			parts = append(parts,
				m.theme.ThinkingLabel.Render("thinking")+"\n"+
					m.theme.ThinkingBlock.Render(block.Text))
		case render.BlockParagraph:
			parts = append(parts, m.renderSpans(block.Spans))
		}
	}
	return strings.Join(parts, "\n\n")
}

// renderSpans lays a paragraph's spans out in lines. Inline spans share a
// line; headings, numbered steps, and block math each start their own.
func (m Model) renderSpans(spans []render.Span) string {
	var lines []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
	}

	for _, span := range spans {
		switch span.Kind {
		case render.SpanHeading:
			flush()
			lines = append(lines, m.theme.Heading.Render(span.Text))
		case render.SpanNumberedStep:
			flush()
			lines = append(lines, m.theme.NumberedStep.Render(span.Text))
		case render.SpanEmphasis:
			flush()
			lines = append(lines, m.theme.Emphasis.Render(span.Text))
		case render.SpanBlockMath:
			flush()
			lines = append(lines, m.theme.BlockMath.Render(span.Text))
		case render.SpanInlineMath:
			current.WriteString(m.theme.InlineMath.Render(span.Text))
		default:
			current.WriteString(span.Text)
		}
	}
	flush()

	return strings.Join(lines, "\n")
}

// =============================================================================
// SIDEBAR RENDERING
// =============================================================================

// renderSidebar renders the date-bucketed chat list with the cursor row
// highlighted.
func (m Model) renderSidebar() string {
	innerWidth := m.sidebarWidth - 2
	var b strings.Builder
	b.WriteString(m.theme.SidebarTitle.Render("Chat History"))
	b.WriteString("\n\n")

	if m.grouped == nil || m.grouped.IsEmpty() {
		b.WriteString(m.theme.SidebarHint.Render("No previous chats"))
		return m.theme.Sidebar.Width(m.sidebarWidth).Height(m.viewport.Height).Render(b.String())
	}

	idx := 0
	currentID := ""
	if sess := m.orch.CurrentSession(); sess != nil {
		currentID = sess.ID
	}

	for _, label := range m.grouped.Labels {
		b.WriteString(m.theme.SidebarBucket.Render(label))
		b.WriteString("\n")
		for _, chat := range m.grouped.Groups[label] {
			// Pad after truncating so the selection highlight covers the
			// whole row.
			title := util.PadRight(util.TruncateWidth(chat.Title, innerWidth-2), innerWidth-2)
			switch {
			case m.focus == FocusSidebar && idx == m.sidebarIndex:
				b.WriteString(m.theme.SidebarItemSelected.Render("> " + title))
			case chat.ID == currentID:
				b.WriteString(m.theme.SidebarItem.Bold(true).Render("  " + title))
			default:
				b.WriteString(m.theme.SidebarItem.Render("  " + title))
			}
			b.WriteString("\n")
			idx++
		}
		b.WriteString("\n")
	}

	b.WriteString(m.theme.SidebarHint.Render("C-x clear all"))
	return m.theme.Sidebar.Width(m.sidebarWidth).Height(m.viewport.Height).Render(b.String())
}
