// Package chat provides the reconciliation engine for streamed conversations.
//
// The engine owns the ordered message list for the active chat. Sends are
// optimistic: the user's message and an empty assistant reply are appended
// with locally-generated provisional ids before the stream is opened, so the
// UI can render them immediately. As server events arrive, provisional ids
// are swapped for confirmed ids and streamed content is appended in place.
//
// State is single-writer: only the engine mutates it, from the goroutine
// running SendMessage. Readers take snapshots through the accessor methods.
package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/toyagent/cli/internal/api"
	"github.com/toyagent/cli/internal/events"
)

// ErrSendInProgress is returned when a send is attempted while another
// exchange is still streaming on the same conversation.
var ErrSendInProgress = errors.New("chat: a send is already in progress")

// tracer traces message sends. No exporter is configured by the CLI, so
// spans are no-ops unless the embedding process installs a provider.
var tracer = otel.Tracer("github.com/toyagent/cli/internal/chat")

// Message is one entry in the conversation transcript.
type Message struct {
	// ID is the message identifier. Until the backend confirms the
	// message this is a locally-generated provisional id; afterwards it
	// is the server id.
	ID string

	// ChatID is the conversation the message belongs to.
	ChatID string

	// Role is the message author.
	Role events.Role

	// Content is the message text. For a streaming assistant reply this
	// grows as content deltas arrive.
	Content string

	// CreatedAt is the local creation time.
	CreatedAt time.Time

	// WorkflowID links the message to a workflow started from it, if any.
	WorkflowID string

	// Provisional is true until the server confirms the message id.
	Provisional bool
}

// Conversation holds the metadata of a chat session.
type Conversation struct {
	// ID is the conversation identifier.
	ID string

	// Title is the conversation title, if set.
	Title string

	// CreatedAt is when the conversation was created.
	CreatedAt time.Time

	// UpdatedAt is when the conversation last changed.
	UpdatedAt time.Time

	// MessageCount is the number of messages exchanged.
	MessageCount int
}

// Engine reconciles streamed chat events against optimistic local state.
type Engine struct {
	client *api.Client

	// OnDelta, when set, is called for each content fragment appended to
	// the assistant reply. Called from the SendMessage goroutine, in
	// arrival order, without the state lock held.
	OnDelta func(text string)

	// OnWorkflowCreated, when set, is called when the backend starts a
	// workflow from the assistant's reply.
	OnWorkflowCreated func(meta events.WorkflowMeta)

	mu sync.Mutex

	// chatID is the active conversation, empty until the first send.
	chatID string

	// conversations holds metadata for conversations this engine knows.
	conversations map[string]Conversation

	// messages is the ordered transcript of the active conversation.
	messages []Message

	// index maps message id (provisional or confirmed) to its position
	// in messages. Reconciliation goes through this table, never through
	// array positions, so the id swap stays correct even if concurrent
	// sends were ever allowed.
	index map[string]int

	// pending maps a provisional id to the role it was created for.
	// An entry is removed when the server confirms the id; a reconciled
	// provisional id is never referenced again.
	pending map[string]events.Role

	// streaming is true while an exchange is in flight. New sends are
	// rejected until the current one finishes.
	streaming bool

	// currentWorkflow is the workflow created by the latest exchange.
	currentWorkflow *events.WorkflowMeta

	// lastErr is the most recent transport or protocol error.
	lastErr error
}

// NewEngine creates a reconciliation engine.
//
// Parameters:
//   - client: The backend API client
//
// Returns:
//   - *Engine: A new engine with no active conversation
func NewEngine(client *api.Client) *Engine {
	return &Engine{
		client:        client,
		conversations: make(map[string]Conversation),
		index:         make(map[string]int),
		pending:       make(map[string]events.Role),
	}
}

// ChatID returns the active conversation id, or empty if none exists yet.
func (e *Engine) ChatID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.chatID
}

// SetChatID switches the engine to an existing conversation. The transcript
// is reset; use LoadHistory to populate it from the backend.
//
// Parameters:
//   - chatID: The conversation to make active
func (e *Engine) SetChatID(chatID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.chatID = chatID
	e.messages = nil
	e.index = make(map[string]int)
	e.pending = make(map[string]events.Role)
	e.currentWorkflow = nil
	e.lastErr = nil
}

// Streaming reports whether an exchange is currently in flight.
func (e *Engine) Streaming() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.streaming
}

// LastError returns the most recent transport or protocol error, or nil.
func (e *Engine) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// CurrentWorkflow returns the workflow created by the latest exchange, or
// nil if the latest exchange did not start one.
func (e *Engine) CurrentWorkflow() *events.WorkflowMeta {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.currentWorkflow == nil {
		return nil
	}
	wf := *e.currentWorkflow
	return &wf
}

// Messages returns a snapshot of the transcript.
//
// Returns:
//   - []Message: A copy of the ordered message list
func (e *Engine) Messages() []Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Message, len(e.messages))
	copy(out, e.messages)
	return out
}

// Conversation returns the metadata of the active conversation.
//
// Returns:
//   - Conversation: The metadata (zero value if no conversation exists)
func (e *Engine) Conversation() Conversation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conversations[e.chatID]
}

// LoadHistory replaces the transcript with the stored messages of the
// active conversation.
//
// Parameters:
//   - ctx: Context for cancellation
//
// Returns:
//   - error: Any error that occurred
func (e *Engine) LoadHistory(ctx context.Context) error {
	e.mu.Lock()
	chatID := e.chatID
	e.mu.Unlock()
	if chatID == "" {
		return nil
	}

	full, err := e.client.GetChat(ctx, chatID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.messages = nil
	e.index = make(map[string]int)
	for _, m := range full.Messages {
		role := events.RoleAssistant
		switch m.Sender {
		case "user":
			role = events.RoleUser
		case "system":
			role = events.RoleSystem
		}
		e.appendLocked(Message{
			ID:         m.ID,
			ChatID:     m.ChatID,
			Role:       role,
			Content:    m.Content,
			WorkflowID: m.WorkflowID,
		})
	}
	e.conversations[chatID] = Conversation{
		ID:           full.ID,
		Title:        full.Title,
		MessageCount: len(full.Messages),
	}
	return nil
}

// SendMessage sends one user message and consumes the resulting stream.
//
// The method blocks until the exchange finishes: the backend signals the
// end of the reply (or a workflow creation), the stream fails, or the
// context is cancelled. Events are applied to state in exactly the order
// frames arrive.
//
// If no conversation exists, one is created synchronously first. The user
// message and an empty assistant reply are appended with provisional ids
// before the stream is opened, so the caller can render them immediately.
//
// On transport failure mid-stream, content already streamed is kept and a
// terminal notice is appended to the assistant message instead.
//
// Parameters:
//   - ctx: Context for cancellation
//   - content: The user's message text
//
// Returns:
//   - error: Transport or protocol error for this exchange, nil on success
func (e *Engine) SendMessage(ctx context.Context, content string) error {
	ctx, span := tracer.Start(ctx, "chat.send")
	defer span.End()

	e.mu.Lock()
	if e.streaming {
		e.mu.Unlock()
		return ErrSendInProgress
	}
	e.streaming = true
	e.lastErr = nil
	e.currentWorkflow = nil
	chatID := e.chatID
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.streaming = false
		e.mu.Unlock()
	}()

	// Create the conversation on first send.
	if chatID == "" {
		created, err := e.client.CreateChat(ctx, "")
		if err != nil {
			return e.fail(span, fmt.Errorf("failed to create chat: %w", err))
		}
		chatID = created.ID
		e.mu.Lock()
		e.chatID = chatID
		e.conversations[chatID] = Conversation{
			ID:        created.ID,
			Title:     created.Title,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		e.mu.Unlock()
	}
	span.SetAttributes(attribute.String("chat.id", chatID))

	// Optimistic placeholders: the user message first, then the empty
	// assistant reply, both before any network traffic.
	userID := uuid.NewString()
	assistantID := uuid.NewString()
	now := time.Now()
	e.mu.Lock()
	e.appendLocked(Message{
		ID: userID, ChatID: chatID, Role: events.RoleUser,
		Content: content, CreatedAt: now, Provisional: true,
	})
	e.appendLocked(Message{
		ID: assistantID, ChatID: chatID, Role: events.RoleAssistant,
		CreatedAt: now, Provisional: true,
	})
	e.pending[userID] = events.RoleUser
	e.pending[assistantID] = events.RoleAssistant
	e.mu.Unlock()

	stream, err := e.client.OpenChatStream(ctx, chatID, content)
	if err != nil {
		// Nothing was streamed; undo the optimistic append so a failed
		// open leaves the transcript exactly as it was.
		e.rollbackExchange(userID, assistantID)
		return e.fail(span, fmt.Errorf("failed to open chat stream: %w", err))
	}

	frames, errs := stream.Frames(ctx)
	ended := false
	for frame := range frames {
		ev := events.ClassifyChat(frame)
		if ev == nil {
			continue
		}
		if e.apply(userID, assistantID, ev) {
			ended = true
		}
	}
	if err := <-errs; err != nil {
		err = fmt.Errorf("chat stream failed: %w", err)
		e.abortExchange(assistantID, err)
		return e.fail(span, err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		e.abortExchange(assistantID, ctxErr)
		return e.fail(span, ctxErr)
	}
	if !ended {
		err := errors.New("chat stream closed before the reply finished")
		e.abortExchange(assistantID, err)
		return e.fail(span, err)
	}

	e.mu.Lock()
	protocolErr := e.lastErr
	if protocolErr == nil {
		// Only a successful exchange counts toward the conversation.
		if conv, ok := e.conversations[chatID]; ok {
			conv.UpdatedAt = time.Now()
			conv.MessageCount += 2
			e.conversations[chatID] = conv
		}
	}
	e.mu.Unlock()

	if protocolErr != nil {
		return e.fail(span, protocolErr)
	}
	return nil
}

// fail records an error on the span and in engine state.
func (e *Engine) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	e.mu.Lock()
	e.lastErr = err
	e.mu.Unlock()
	return err
}

// appendLocked appends a message and indexes its id. Caller holds mu.
func (e *Engine) appendLocked(m Message) {
	e.index[m.ID] = len(e.messages)
	e.messages = append(e.messages, m)
}

// rollbackExchange removes the optimistic placeholder messages appended for
// an exchange whose stream never opened.
func (e *Engine) rollbackExchange(userID, assistantID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, id := range []string{assistantID, userID} {
		idx, ok := e.index[id]
		if !ok {
			continue
		}
		e.messages = append(e.messages[:idx], e.messages[idx+1:]...)
		delete(e.index, id)
		delete(e.pending, id)
		for i := idx; i < len(e.messages); i++ {
			e.index[e.messages[i].ID] = i
		}
	}
}

// abortExchange records a transport failure: the error becomes the last
// error and a terminal notice is appended to the assistant message so the
// partial content already streamed is not lost.
func (e *Engine) abortExchange(assistantID string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastErr = err
	if idx, ok := e.index[assistantID]; ok {
		msg := &e.messages[idx]
		if msg.Content != "" {
			msg.Content += "\n"
		}
		msg.Content += "[reply interrupted: " + err.Error() + "]"
	}
}

// apply merges one classified event into state. Returns true when the
// event ends the exchange (message end without workflow, workflow created,
// or server error).
func (e *Engine) apply(userID, assistantID string, ev events.ChatEvent) bool {
	var onDelta func(string)
	var onWorkflow func(events.WorkflowMeta)
	var deltaText string
	var workflowMeta events.WorkflowMeta

	e.mu.Lock()
	ended := false
	switch ev := ev.(type) {
	case events.MessageStart:
		// Confirmation of the optimistic message for this role; swap the
		// provisional id for the server id. An agent start without an id
		// is informational only.
		if ev.MessageID != "" {
			switch ev.Role {
			case events.RoleUser:
				e.confirmLocked(userID, ev.MessageID)
			case events.RoleAssistant:
				e.confirmLocked(assistantID, ev.MessageID)
			}
		}

	case events.ContentDelta:
		// Content only ever appends to the most recent message, and only
		// while that message is an assistant reply. Anything else is an
		// out-of-order frame; drop it.
		if n := len(e.messages); n > 0 && e.messages[n-1].Role == events.RoleAssistant {
			e.messages[n-1].Content += ev.Text
			deltaText = ev.Text
			onDelta = e.OnDelta
		} else {
			log.Debug("dropping content delta with no assistant message", "text", ev.Text)
		}

	case events.MessageEnd:
		e.confirmLocked(assistantID, ev.MessageID)
		if !ev.HasWorkflow {
			ended = true
		}

	case events.WorkflowCreated:
		wf := ev.Workflow
		e.currentWorkflow = &wf
		if idx, ok := e.index[e.confirmedID(assistantID)]; ok {
			e.messages[idx].WorkflowID = wf.ID
		}
		workflowMeta = wf
		onWorkflow = e.OnWorkflowCreated
		ended = true

	case events.StreamError:
		e.lastErr = fmt.Errorf("server error: %s", ev.Message)
		ended = true
	}
	e.mu.Unlock()

	if onDelta != nil {
		onDelta(deltaText)
	}
	if onWorkflow != nil {
		onWorkflow(workflowMeta)
	}
	return ended
}

// confirmLocked swaps a provisional id for a server-confirmed id through
// the index table. Caller holds mu.
//
// Re-delivery is a no-op: once the provisional id has been reconciled it is
// no longer in the pending table, and a message already carrying the
// confirmed id is left untouched.
func (e *Engine) confirmLocked(provisionalID, serverID string) {
	if serverID == "" || provisionalID == serverID {
		return
	}
	if _, ok := e.pending[provisionalID]; !ok {
		return
	}
	idx, ok := e.index[provisionalID]
	if !ok {
		return
	}
	delete(e.pending, provisionalID)
	delete(e.index, provisionalID)
	e.messages[idx].ID = serverID
	e.messages[idx].Provisional = false
	e.index[serverID] = idx
}

// confirmedID resolves a provisional id to whatever id the message carries
// now. Caller holds mu.
func (e *Engine) confirmedID(provisionalID string) string {
	if idx, ok := e.index[provisionalID]; ok {
		return e.messages[idx].ID
	}
	// Already swapped; find the message still pending-free. The index no
	// longer knows the provisional id, so scan for the assistant tail.
	if n := len(e.messages); n > 0 && e.messages[n-1].Role == events.RoleAssistant {
		return e.messages[n-1].ID
	}
	return provisionalID
}
