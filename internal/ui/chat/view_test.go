// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/neuroforge/neuroforge-tui/internal/history"
	"github.com/neuroforge/neuroforge-tui/internal/model"
	"github.com/neuroforge/neuroforge-tui/internal/render"
	"github.com/neuroforge/neuroforge-tui/internal/session"
	"github.com/neuroforge/neuroforge-tui/internal/storage"
	"github.com/neuroforge/neuroforge-tui/internal/ui/styles"
)

// =============================================================================
// TEST FAKES
// =============================================================================

type fakeStore struct {
	nextID string
}

func (f *fakeStore) CreateChat(ctx context.Context, userID, firstMessage string) (string, error) {
	if f.nextID == "" {
		return "chat_test", nil
	}
	return f.nextID, nil
}

func (f *fakeStore) AppendMessage(ctx context.Context, chatID, content, role string) error {
	return nil
}

type fakeInferencer struct {
	reply string
}

func (f *fakeInferencer) Chat(ctx context.Context, message string) (string, error) {
	return f.reply, nil
}

func testModel(t *testing.T) Model {
	t.Helper()
	orch := session.NewOrchestrator(&fakeStore{}, &fakeInferencer{reply: "ok"}, session.NewTabState(), "tester")
	ti := textinput.New()
	m := Model{
		theme:          styles.NewTheme(),
		input:          ti,
		orch:           orch,
		userID:         "tester",
		showTimestamps: false,
		sidebarWidth:   32,
		keyMap:         DefaultKeyMap(),
		viewport:       newViewport(80, 20),
		ready:          true,
	}
	return m
}

// =============================================================================
// SIDEBAR STATE
// =============================================================================

func TestHandleHistoryLoadedUsesDeliveredOrder(t *testing.T) {
	m := testModel(t)
	m.sidebarIndex = 5

	chats := []storage.StoredChat{{ID: "c1"}, {ID: "c2"}, {ID: "c3"}}
	um := m.handleHistoryLoaded(HistoryLoadedMsg{
		Chats:   chats,
		Grouped: history.GroupByDate(chats),
	})

	if len(um.flat) != 3 {
		t.Fatalf("expected 3 chats, got %d", len(um.flat))
	}
	for i, want := range []string{"c1", "c2", "c3"} {
		if um.flat[i].ID != want {
			t.Errorf("flat[%d] = %q, want %q", i, um.flat[i].ID, want)
		}
	}
	if um.sidebarIndex != 0 {
		t.Errorf("stale cursor should reset, got %d", um.sidebarIndex)
	}
}

// =============================================================================
// SPAN RENDERING
// =============================================================================

func TestRenderSpansInlineSharesLine(t *testing.T) {
	m := testModel(t)
	spans := []render.Span{
		{Kind: render.SpanText, Text: "the value "},
		{Kind: render.SpanInlineMath, Text: "x^2"},
		{Kind: render.SpanText, Text: " grows"},
	}

	out := m.renderSpans(spans)
	if strings.Contains(out, "\n") {
		t.Errorf("inline spans should share a line, got %q", out)
	}
	for _, want := range []string{"the value", "x^2", "grows"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
}

func TestRenderSpansBlockElementsOwnLine(t *testing.T) {
	m := testModel(t)
	spans := []render.Span{
		{Kind: render.SpanHeading, Text: "Overview"},
		{Kind: render.SpanText, Text: "some text"},
		{Kind: render.SpanBlockMath, Text: "E=mc^2"},
	}

	out := m.renderSpans(spans)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), out)
	}
}

func TestRenderStructuredThinking(t *testing.T) {
	m := testModel(t)
	out := m.renderStructured("<think>weighing options</think>The answer is 4.")
	if !strings.Contains(out, "weighing options") {
		t.Errorf("thinking content missing: %q", out)
	}
	if !strings.Contains(out, "The answer is 4.") {
		t.Errorf("answer content missing: %q", out)
	}
	if strings.Contains(out, "<think>") {
		t.Errorf("raw markers leaked into output: %q", out)
	}
}

// =============================================================================
// MESSAGE AND THREAD RENDERING
// =============================================================================

func TestRenderMessageUser(t *testing.T) {
	m := testModel(t)
	msg := model.NewUserMessage("hello there")
	out := m.renderMessage(msg)
	if !strings.Contains(out, "You") {
		t.Errorf("missing sender label: %q", out)
	}
	if !strings.Contains(out, "hello there") {
		t.Errorf("missing body: %q", out)
	}
}

func TestRenderMessageTimestamps(t *testing.T) {
	m := testModel(t)
	m.showTimestamps = true
	msg := model.NewUserMessage("hi")
	msg.Timestamp = time.Date(2025, 3, 10, 14, 30, 0, 0, time.Local)
	if out := m.renderMessage(msg); !strings.Contains(out, "14:30") {
		t.Errorf("timestamp missing: %q", out)
	}
}

func TestRenderThreadWelcomeWhenNoSession(t *testing.T) {
	m := testModel(t)
	if out := m.renderThread(); !strings.Contains(out, WelcomeText) {
		t.Errorf("welcome text missing: %q", out)
	}
}

func TestRenderThreadShowsMessages(t *testing.T) {
	m := testModel(t)
	sess := model.NewSession("chat_1")
	sess.AddMessage(model.NewUserMessage("what is 2+2"))
	sess.AddMessage(model.NewBotMessage("It is 4."))
	m.orch.SelectSession(sess)

	out := m.renderThread()
	if !strings.Contains(out, "what is 2+2") || !strings.Contains(out, "It is 4.") {
		t.Errorf("thread missing messages: %q", out)
	}
}

// =============================================================================
// SUBMIT GUARD
// =============================================================================

func TestHandleSubmitRejectedWhileBusy(t *testing.T) {
	m := testModel(t)
	if _, err := m.orch.BeginSubmit("first"); err != nil {
		t.Fatalf("BeginSubmit: %v", err)
	}

	m.input.SetValue("second message")
	updated, cmd := m.handleSubmit()
	um := updated.(Model)
	if cmd != nil {
		t.Error("busy submit should not schedule a command")
	}
	if um.input.Value() != "second message" {
		t.Errorf("typed text should survive a rejected submit, got %q", um.input.Value())
	}
	if um.statusMsg == "" {
		t.Error("expected a status message for the rejected submit")
	}
}

func TestHandleSubmitEmptyIgnored(t *testing.T) {
	m := testModel(t)
	m.input.SetValue("   ")
	_, cmd := m.handleSubmit()
	if cmd != nil {
		t.Error("whitespace-only submit should be ignored")
	}
	if m.orch.CurrentSession() != nil {
		t.Error("empty submit should not create a session")
	}
}
