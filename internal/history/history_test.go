// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/neuroforge/neuroforge-tui/internal/model"
	"github.com/neuroforge/neuroforge-tui/internal/storage"
)

func newTestStore(t *testing.T) *storage.ChatStore {
	t.Helper()
	store, err := storage.NewChatStore(filepath.Join(t.TempDir(), "chats.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// =============================================================================
// CONVERSION TESTS
// =============================================================================

func TestToMessage(t *testing.T) {
	now := time.Now()

	tests := []struct {
		role string
		want model.Sender
	}{
		{"user", model.SenderUser},
		{"bot", model.SenderBot},
		{"assistant", model.SenderBot}, // anything non-user maps to bot
	}

	for _, tt := range tests {
		msg := ToMessage(storage.StoredMessage{
			ID:        "m1",
			Content:   "hello",
			Role:      tt.role,
			CreatedAt: now,
		})

		if msg.Sender != tt.want {
			t.Errorf("role %q: Sender = %q, want %q", tt.role, msg.Sender, tt.want)
		}
		if msg.Text != "hello" {
			t.Errorf("Text = %q, want %q", msg.Text, "hello")
		}
		if !msg.Timestamp.Equal(now) {
			t.Errorf("Timestamp not preserved")
		}
	}
}

func TestToSession_PreservesOrder(t *testing.T) {
	created := time.Now().Add(-time.Hour)
	chat := storage.StoredChat{ID: "c1", CreatedAt: created}
	rows := []storage.StoredMessage{
		{ID: "m1", Content: "first", Role: "user"},
		{ID: "m2", Content: "second", Role: "bot"},
	}

	session := ToSession(chat, rows)

	if session.ID != "c1" {
		t.Errorf("ID = %q, want %q", session.ID, "c1")
	}
	if !session.CreatedAt.Equal(created) {
		t.Error("CreatedAt not preserved")
	}
	if len(session.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(session.Messages))
	}
	if session.Messages[0].Text != "first" || session.Messages[1].Text != "second" {
		t.Error("Message order not preserved")
	}
}

// =============================================================================
// GROUPING TESTS
// =============================================================================

func chatCreatedAt(id string, at time.Time) storage.StoredChat {
	return storage.StoredChat{ID: id, CreatedAt: at}
}

func TestGroupByDate_Buckets(t *testing.T) {
	now := time.Date(2025, time.March, 10, 15, 0, 0, 0, time.Local)

	chats := []storage.StoredChat{
		chatCreatedAt("today-1", now.Add(-time.Hour)),
		chatCreatedAt("today-2", now.Add(-2*time.Hour)),
		chatCreatedAt("yesterday", now.AddDate(0, 0, -1)),
		chatCreatedAt("older", time.Date(2025, time.January, 2, 9, 0, 0, 0, time.Local)),
	}

	grouped := groupByDateAt(chats, now)

	wantLabels := []string{"Today", "Yesterday", "January 2"}
	if len(grouped.Labels) != len(wantLabels) {
		t.Fatalf("Labels = %v, want %v", grouped.Labels, wantLabels)
	}
	for i, want := range wantLabels {
		if grouped.Labels[i] != want {
			t.Errorf("Labels[%d] = %q, want %q", i, grouped.Labels[i], want)
		}
	}

	if got := grouped.Groups["Today"]; len(got) != 2 || got[0].ID != "today-1" || got[1].ID != "today-2" {
		t.Errorf("Today bucket wrong: %v", got)
	}
}

func TestGroupByDate_IsPartition(t *testing.T) {
	now := time.Now()
	var chats []storage.StoredChat
	for i := 0; i < 10; i++ {
		chats = append(chats, chatCreatedAt(
			string(rune('a'+i)), now.AddDate(0, 0, -i)))
	}

	grouped := groupByDateAt(chats, now)

	// Every input chat appears in exactly one bucket, and walking the
	// buckets in encounter order reproduces the input order.
	if grouped.Len() != len(chats) {
		t.Fatalf("grouped %d chats, want %d", grouped.Len(), len(chats))
	}
	var flattened []string
	for _, label := range grouped.Labels {
		for _, chat := range grouped.Groups[label] {
			flattened = append(flattened, chat.ID)
		}
	}
	for i, chat := range chats {
		if flattened[i] != chat.ID {
			t.Errorf("flattened[%d] = %q, want %q", i, flattened[i], chat.ID)
		}
	}
}

func TestGroupByDate_Empty(t *testing.T) {
	grouped := GroupByDate(nil)
	if !grouped.IsEmpty() {
		t.Error("Expected empty grouping")
	}
}

// =============================================================================
// HISTORY MANAGER TESTS
// =============================================================================

func TestLoadHistory_PrunesEmptyChats(t *testing.T) {
	store := newTestStore(t)
	mgr := NewManager(store)
	ctx := context.Background()

	emptyID, _ := store.CreateChat(ctx, "user-1", "abandoned")
	fullID, _ := store.CreateChat(ctx, "user-1", "hello")
	store.AppendMessage(ctx, fullID, "hello", "user")

	chats, err := mgr.LoadHistory(ctx, "user-1")
	if err != nil {
		t.Fatalf("LoadHistory failed: %v", err)
	}

	if len(chats) != 1 || chats[0].ID != fullID {
		t.Fatalf("LoadHistory = %v, want only %q", chats, fullID)
	}

	// The empty chat must have been deleted, not merely hidden.
	if _, err := store.GetChat(ctx, emptyID); err == nil {
		t.Error("Empty chat still exists after LoadHistory")
	}
}

func TestLoadHistory_KeepsDescendingOrder(t *testing.T) {
	store := newTestStore(t)
	mgr := NewManager(store)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		id, _ := store.CreateChat(ctx, "user-1", "hi")
		store.AppendMessage(ctx, id, "hi", "user")
		ids = append(ids, id)
		time.Sleep(time.Millisecond)
	}

	chats, err := mgr.LoadHistory(ctx, "user-1")
	if err != nil {
		t.Fatalf("LoadHistory failed: %v", err)
	}
	if len(chats) != 3 {
		t.Fatalf("got %d chats, want 3", len(chats))
	}
	for i, want := range []string{ids[2], ids[1], ids[0]} {
		if chats[i].ID != want {
			t.Errorf("chats[%d].ID = %q, want %q", i, chats[i].ID, want)
		}
	}
}

func TestInitialize_NewChatFlagWins(t *testing.T) {
	store := newTestStore(t)
	mgr := NewManager(store)
	ctx := context.Background()

	id, _ := store.CreateChat(ctx, "user-1", "hello")
	store.AppendMessage(ctx, id, "hello", "user")

	session, chats, err := mgr.Initialize(ctx, "user-1", true)
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if session != nil {
		t.Error("new-chat flag set: no session should be selected")
	}
	if len(chats) != 1 {
		t.Errorf("got %d chats, want 1 (flag hides the session, not the sidebar)", len(chats))
	}
}

func TestInitialize_AutoSelectsMostRecent(t *testing.T) {
	store := newTestStore(t)
	mgr := NewManager(store)
	ctx := context.Background()

	oldID, _ := store.CreateChat(ctx, "user-1", "old")
	store.AppendMessage(ctx, oldID, "old", "user")
	time.Sleep(time.Millisecond)
	newID, _ := store.CreateChat(ctx, "user-1", "new")
	store.AppendMessage(ctx, newID, "new", "user")

	session, chats, err := mgr.Initialize(ctx, "user-1", false)
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if session == nil || session.ID != newID {
		t.Fatalf("session = %v, want most recent chat %q", session, newID)
	}
	if len(session.Messages) != 1 || session.Messages[0].Text != "new" {
		t.Error("session messages not loaded")
	}
	if len(chats) != 2 || chats[0].ID != newID {
		t.Errorf("chat list should come back alongside the session, got %v", chats)
	}
}

func TestInitialize_NoHistoryShowsWelcome(t *testing.T) {
	store := newTestStore(t)
	mgr := NewManager(store)

	session, chats, err := mgr.Initialize(context.Background(), "user-1", false)
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if session != nil {
		t.Error("no history: expected welcome state (nil session)")
	}
	if len(chats) != 0 {
		t.Errorf("got %d chats, want 0", len(chats))
	}
}

func TestLoadSession(t *testing.T) {
	store := newTestStore(t)
	mgr := NewManager(store)
	ctx := context.Background()

	id, _ := store.CreateChat(ctx, "user-1", "hi")
	store.AppendMessage(ctx, id, "hi", "user")
	store.AppendMessage(ctx, id, "hello back", "bot")

	session, err := mgr.LoadSession(ctx, id)
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if session.ID != id {
		t.Errorf("ID = %q, want %q", session.ID, id)
	}
	if len(session.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(session.Messages))
	}
	if session.Messages[1].Sender != model.SenderBot {
		t.Error("second message should be the bot reply")
	}
}
