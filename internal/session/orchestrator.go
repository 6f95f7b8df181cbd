// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/neuroforge/neuroforge-tui/internal/inference"
	"github.com/neuroforge/neuroforge-tui/internal/model"
)

// FallbackText is the local-only bot message shown when the exchange fails.
// It is never persisted, so it disappears on reload.
const FallbackText = "I'm having trouble responding. Please try again."

// =============================================================================
// ERRORS
// =============================================================================

// Validation errors. These are silent no-ops from the user's perspective;
// the UI keeps the submit affordance disabled rather than surfacing them.
var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrBusy         = errors.New("a submission is already in flight")
	ErrNoUser       = errors.New("no authenticated user")
)

// =============================================================================
// COLLABORATOR INTERFACES
// =============================================================================

// ChatStore is the subset of persistence operations the orchestrator needs.
type ChatStore interface {
	CreateChat(ctx context.Context, userID, firstMessage string) (string, error)
	AppendMessage(ctx context.Context, chatID, content, role string) error
}

// Inferencer sends a user message to the remote inference endpoint.
type Inferencer interface {
	Chat(ctx context.Context, message string) (string, error)
}

// =============================================================================
// STATE MACHINE
// =============================================================================

// State is the per-submission state. Only one submission may be in flight
// at a time.
type State int

const (
	StateIdle State = iota
	StateSubmitting
)

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Orchestrator owns the current in-memory session and the submit flow:
// optimistic local append, lazy chat creation, the inference call, and
// persistence of both sides of the exchange.
//
// A submission runs in phases so an event-driven UI can repaint between them
// and so the session is only ever mutated from the UI's event loop:
// BeginSubmit performs the synchronous guards and the optimistic append,
// FinishSubmit performs the suspending persistence and inference steps
// without touching the session, and CompleteSubmit applies the result to the
// session. Callers must invoke FinishSubmit and then CompleteSubmit exactly
// once after a successful BeginSubmit; FinishSubmit may run on a worker
// goroutine, CompleteSubmit must run wherever the session is read.
type Orchestrator struct {
	mu sync.Mutex

	store  ChatStore
	client Inferencer
	tabs   *TabState
	userID string

	session       *model.ChatSession
	pendingChatID string
	state         State
}

// NewOrchestrator creates an orchestrator for one authenticated user.
// userID may be empty, in which case every submit is rejected.
func NewOrchestrator(store ChatStore, client Inferencer, tabs *TabState, userID string) *Orchestrator {
	return &Orchestrator{
		store:  store,
		client: client,
		tabs:   tabs,
		userID: userID,
	}
}

// CurrentSession returns the session currently shown in the UI, or nil when
// the welcome state is active.
func (o *Orchestrator) CurrentSession() *model.ChatSession {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session
}

// State returns the submission state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// IsSubmitting reports whether a submission is in flight.
func (o *Orchestrator) IsSubmitting() bool {
	return o.State() == StateSubmitting
}

// =============================================================================
// NAVIGATION
// =============================================================================

// SelectSession makes a loaded session current. Explicit selection clears
// the new-chat flag and any pending chat id.
func (o *Orchestrator) SelectSession(session *model.ChatSession) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.tabs.ClearNewChat()
	o.session = session
	o.pendingChatID = ""
}

// StartNewChat drops the current session and marks the new-chat flag so the
// welcome state survives a reload.
func (o *Orchestrator) StartNewChat() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.tabs.MarkNewChat()
	o.session = nil
	o.pendingChatID = ""
}

// =============================================================================
// SUBMIT FLOW
// =============================================================================

// BeginSubmit validates a submission and performs the optimistic local
// append. It rejects empty or whitespace-only text, a submission already in
// flight, and a missing user context, all without state change. On success
// the new-chat flag is cleared, the user message is appended to the current
// session (created in memory if none exists), and the orchestrator
// transitions to Submitting.
func (o *Orchestrator) BeginSubmit(text string) (*model.Message, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}
	if o.state == StateSubmitting {
		return nil, ErrBusy
	}
	if o.userID == "" {
		return nil, ErrNoUser
	}

	o.tabs.ClearNewChat()

	if o.session == nil {
		// Placeholder session until a backing chat row exists; its id is
		// attached during FinishSubmit.
		o.session = model.NewSession(o.pendingChatID)
	}

	userMsg := model.NewUserMessage(text)
	o.session.AddMessage(userMsg)
	o.state = StateSubmitting

	return userMsg, nil
}

// FinishSubmit completes the suspending half of a submission started by
// BeginSubmit: it resolves the target chat id (creating a backing chat row
// if none exists), persists the user message, invokes the inference
// endpoint, and persists the bot reply. On any failure a local-only fallback
// bot message is returned instead and the persisted state is left as-is; the
// failed exchange's bot half is never persisted.
//
// FinishSubmit never touches the in-memory session, so it is safe to run on
// a worker goroutine while the UI keeps reading the session. The caller
// applies the returned message with CompleteSubmit; err carries the
// underlying failure for the caller's benefit (it is already logged here).
func (o *Orchestrator) FinishSubmit(ctx context.Context, text string) (*model.Message, error) {
	botMsg, err := o.exchange(ctx, text)
	if err != nil {
		switch {
		case inference.IsTimeout(err):
			log.Printf("session: inference timed out: %v", err)
		case inference.IsUnreachable(err):
			log.Printf("session: inference endpoint unreachable: %v", err)
		default:
			log.Printf("session: submit failed: %v", err)
		}
		return model.NewErrorMessage(FallbackText), err
	}
	return botMsg, nil
}

// CompleteSubmit applies a finished submission to the session: it attaches a
// lazily created chat id, appends the bot (or fallback) message, and returns
// the orchestrator to Idle. It must run in the same context that reads the
// session (for a Bubble Tea UI, the Update loop). A nil session means the
// user started a new chat mid-flight; the reply is then dropped from the
// view (a successful exchange is already persisted, a fallback never is).
func (o *Orchestrator) CompleteSubmit(botMsg *model.Message) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = StateIdle

	if o.session == nil {
		return
	}
	if o.session.ID == "" {
		o.session.ID = o.pendingChatID
	}
	if botMsg != nil {
		o.session.AddMessage(botMsg)
	}
}

// exchange runs the suspending steps of a submission and builds the bot
// message. It does not touch the in-memory session.
func (o *Orchestrator) exchange(ctx context.Context, text string) (*model.Message, error) {
	chatID, err := o.resolveChatID(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := o.store.AppendMessage(ctx, chatID, text, "user"); err != nil {
		return nil, err
	}

	reply, err := o.client.Chat(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := o.store.AppendMessage(ctx, chatID, reply, "bot"); err != nil {
		return nil, err
	}

	return model.NewBotMessage(reply), nil
}

// resolveChatID picks the chat row a submission writes to: the current
// session's id if one is attached, else a previously created pending id,
// else a freshly created chat row whose id is remembered as pending.
// The session itself is left alone; CompleteSubmit attaches the pending id
// from the event loop.
func (o *Orchestrator) resolveChatID(ctx context.Context, firstMessage string) (string, error) {
	o.mu.Lock()
	var id string
	if o.session != nil {
		id = o.session.ID
	}
	if id == "" {
		id = o.pendingChatID
	}
	userID := o.userID
	o.mu.Unlock()

	if id != "" {
		return id, nil
	}

	id, err := o.store.CreateChat(ctx, userID, firstMessage)
	if err != nil {
		return "", err
	}

	o.mu.Lock()
	o.pendingChatID = id
	o.mu.Unlock()

	return id, nil
}
