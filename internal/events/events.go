// Package events classifies SSE frame payloads into typed stream events.
//
// The backend does send named "event:" lines, but this client classifies on
// payload shape instead: field presence is checked in a fixed precedence
// order and the first match wins. That order is a compatibility contract
// with the backend's event encoding; do not reorder the checks.
//
// Malformed payloads are dropped, not escalated: a single corrupted frame
// must not abort an otherwise healthy stream.
package events

import (
	"encoding/json"

	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"
)

// Role identifies the author of a chat message.
type Role string

const (
	// RoleUser is a message written by the human.
	RoleUser Role = "user"

	// RoleAssistant is a message written by the agent.
	RoleAssistant Role = "assistant"

	// RoleSystem is a message injected by the client itself.
	RoleSystem Role = "system"
)

// ChatEvent is one classified event from the chat stream.
//
// The concrete types are MessageStart, ContentDelta, MessageEnd,
// WorkflowCreated, and StreamError.
type ChatEvent interface {
	chatEvent()
}

// MessageStart signals that the backend has started (or confirmed) a
// message. For user messages it carries the server-assigned message id.
type MessageStart struct {
	// Role is the author of the message being started.
	Role Role

	// MessageID is the server-assigned id, if the payload carried one.
	MessageID string
}

// ContentDelta carries one text fragment to append to the message currently
// being streamed.
type ContentDelta struct {
	// Text is the fragment to append.
	Text string
}

// MessageEnd finalizes the streamed assistant message.
type MessageEnd struct {
	// MessageID is the server-assigned id of the finished message.
	MessageID string

	// HasWorkflow indicates whether a workflow_created event will follow
	// on this stream.
	HasWorkflow bool
}

// WorkflowCreated signals that the backend started a workflow from the
// assistant's reply. It carries the full workflow metadata object.
type WorkflowCreated struct {
	Workflow WorkflowMeta
}

// StreamError carries a server-reported error for this exchange.
type StreamError struct {
	// Message is the server's error description.
	Message string
}

func (MessageStart) chatEvent()    {}
func (ContentDelta) chatEvent()    {}
func (MessageEnd) chatEvent()      {}
func (WorkflowCreated) chatEvent() {}
func (StreamError) chatEvent()     {}

// WorkflowMeta is the workflow metadata object the backend emits in-band on
// the chat stream and returns from the workflow REST endpoints.
type WorkflowMeta struct {
	// ID is the workflow's own identifier.
	ID string `json:"id"`

	// ChatID is the conversation the workflow belongs to.
	ChatID string `json:"chat_id"`

	// ExecutionID is the identifier of the execution in the external
	// workflow engine.
	ExecutionID string `json:"temporal_workflow_id"`

	// Name is the human-readable workflow name.
	Name string `json:"name"`

	// Status is the overall workflow status (pending, running, completed,
	// failed).
	Status string `json:"status"`

	// StepStatuses maps step id to its last known status.
	StepStatuses map[string]string `json:"steps_status"`
}

// ClassifyChat parses one chat-stream payload and returns its event.
//
// Shape checks, in precedence order (first match wins):
//  1. "type" equal to "user" or "agent" → MessageStart
//  2. a defined "content" field → ContentDelta
//  3. "message_id" plus a boolean "has_workflow" → MessageEnd
//  4. a truthy "temporal_workflow_id" → WorkflowCreated
//  5. an "error" field → StreamError
//
// Parameters:
//   - payload: The JSON payload extracted from a data frame
//
// Returns:
//   - ChatEvent: The classified event, or nil if the payload is malformed
//     or matches no known shape
func ClassifyChat(payload string) ChatEvent {
	if !gjson.Valid(payload) {
		log.Debug("dropping malformed chat frame", "payload", payload)
		return nil
	}

	switch gjson.Get(payload, "type").String() {
	case "user":
		return MessageStart{Role: RoleUser, MessageID: gjson.Get(payload, "message_id").String()}
	case "agent":
		return MessageStart{Role: RoleAssistant, MessageID: gjson.Get(payload, "message_id").String()}
	}

	if content := gjson.Get(payload, "content"); content.Exists() {
		return ContentDelta{Text: content.String()}
	}

	messageID := gjson.Get(payload, "message_id")
	hasWorkflow := gjson.Get(payload, "has_workflow")
	if messageID.Exists() && hasWorkflow.IsBool() {
		return MessageEnd{MessageID: messageID.String(), HasWorkflow: hasWorkflow.Bool()}
	}

	if gjson.Get(payload, "temporal_workflow_id").String() != "" {
		var meta WorkflowMeta
		if err := json.Unmarshal([]byte(payload), &meta); err != nil {
			log.Debug("dropping unparseable workflow_created frame", "err", err)
			return nil
		}
		return WorkflowCreated{Workflow: meta}
	}

	if errField := gjson.Get(payload, "error"); errField.Exists() {
		return StreamError{Message: errField.String()}
	}

	return nil
}
