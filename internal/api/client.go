// Package api provides the HTTP client for the ToyAgent backend.
//
// This package handles all non-streaming communication with the backend:
// chat CRUD, message history, and workflow metadata. The two SSE endpoints
// are opened here as well, but their read loops live in internal/sse.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/toyagent/cli/internal/events"
	"github.com/toyagent/cli/internal/sse"
)

// DefaultTimeout is the default HTTP request timeout for non-streaming
// requests. Streaming requests use a client with no timeout; their
// lifetime is bounded by the caller's context instead.
const DefaultTimeout = 30 * time.Second

// Client is the ToyAgent API client.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	streamClient *http.Client
}

// NewClient creates a new API client.
//
// Parameters:
//   - baseURL: The backend base URL without a trailing slash
//
// Returns:
//   - *Client: A new client instance
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		streamClient: &http.Client{Timeout: 0},
	}
}

// BaseURL returns the backend base URL used by this client.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError represents an error response from the API.
type APIError struct {
	StatusCode int
	Message    string
	Detail     string
}

// Error returns a human-readable error message.
//
// Returns:
//   - string: The error message, with fallback to HTTP status if no message available
func (e *APIError) Error() string {
	if e.Message != "" && e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// doRequest performs an HTTP request against the backend.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	reqURL := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "toyagent-cli/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}

// parseResponse parses the response body into the target struct.
func parseResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)

		// FastAPI reports errors under "detail"; tolerate the other
		// common field names as well.
		var errResp struct {
			Error   string `json:"error"`
			Detail  string `json:"detail"`
			Message string `json:"message"`
		}
		json.Unmarshal(body, &errResp)

		message := errResp.Error
		if message == "" {
			message = errResp.Message
		}
		detail := errResp.Detail

		if message == "" && detail == "" {
			bodyStr := string(body)
			if len(bodyStr) > 200 {
				bodyStr = bodyStr[:200] + "..."
			}
			if bodyStr != "" {
				detail = bodyStr
			}
		}

		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    message,
			Detail:     detail,
		}
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// Message represents a stored chat message as the backend returns it.
type Message struct {
	ID         string `json:"id"`
	ChatID     string `json:"chat_id"`
	Sender     string `json:"sender"`
	Content    string `json:"content"`
	WorkflowID string `json:"related_workflow_id,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// Chat represents a full chat session with its messages and workflows.
type Chat struct {
	ID        string                `json:"id"`
	Title     string                `json:"title"`
	CreatedAt string                `json:"created_at"`
	UpdatedAt string                `json:"updated_at"`
	Messages  []Message             `json:"messages"`
	Workflows []events.WorkflowMeta `json:"workflows"`
}

// ChatSummary represents a chat in list responses.
type ChatSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
	MessageCount int    `json:"message_count"`
}

// CreateChatRequest represents a chat creation request.
type CreateChatRequest struct {
	Title string `json:"title,omitempty"`
}

// CreateChat creates a new chat session.
//
// Parameters:
//   - ctx: Context for cancellation
//   - title: Optional chat title
//
// Returns:
//   - *Chat: The created chat
//   - error: Any error that occurred
func (c *Client) CreateChat(ctx context.Context, title string) (*Chat, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/chats", &CreateChatRequest{Title: title})
	if err != nil {
		return nil, err
	}

	var result Chat
	if err := parseResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListChats lists chat sessions, most recent first.
//
// Parameters:
//   - ctx: Context for cancellation
//   - limit: Maximum number of chats to return (default 50)
//
// Returns:
//   - []ChatSummary: The chat summaries
//   - error: Any error that occurred
func (c *Client) ListChats(ctx context.Context, limit int) ([]ChatSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	resp, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/v1/chats?limit=%d", limit), nil)
	if err != nil {
		return nil, err
	}

	var result []ChatSummary
	if err := parseResponse(resp, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetChat retrieves a chat by ID, including its messages and workflows.
//
// Parameters:
//   - ctx: Context for cancellation
//   - chatID: The chat ID
//
// Returns:
//   - *Chat: The chat data
//   - error: Any error that occurred
func (c *Client) GetChat(ctx context.Context, chatID string) (*Chat, error) {
	resp, err := c.doRequest(ctx, http.MethodGet,
		"/api/v1/chats/"+url.PathEscape(chatID), nil)
	if err != nil {
		return nil, err
	}

	var result Chat
	if err := parseResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteChat deletes a chat session and all its messages and workflows.
//
// Parameters:
//   - ctx: Context for cancellation
//   - chatID: The chat ID
//
// Returns:
//   - error: Any error that occurred
func (c *Client) DeleteChat(ctx context.Context, chatID string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete,
		"/api/v1/chats/"+url.PathEscape(chatID), nil)
	if err != nil {
		return err
	}
	return parseResponse(resp, nil)
}

// GetWorkflow retrieves workflow metadata by ID.
//
// Parameters:
//   - ctx: Context for cancellation
//   - workflowID: The workflow ID
//
// Returns:
//   - *events.WorkflowMeta: The workflow metadata
//   - error: Any error that occurred
func (c *Client) GetWorkflow(ctx context.Context, workflowID string) (*events.WorkflowMeta, error) {
	resp, err := c.doRequest(ctx, http.MethodGet,
		"/api/v1/workflows/"+url.PathEscape(workflowID), nil)
	if err != nil {
		return nil, err
	}

	var result events.WorkflowMeta
	if err := parseResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// WorkflowStatus represents the live execution status of a workflow.
type WorkflowStatus struct {
	WorkflowID   string            `json:"workflow_id"`
	ExecutionID  string            `json:"temporal_workflow_id"`
	Status       string            `json:"status"`
	CurrentStep  string            `json:"current_step"`
	StepStatuses map[string]string `json:"step_statuses"`
}

// GetWorkflowStatus retrieves the live execution status of a workflow,
// including the per-step status map. Used to seed declared steps before
// opening the status stream.
//
// Parameters:
//   - ctx: Context for cancellation
//   - workflowID: The workflow ID
//
// Returns:
//   - *WorkflowStatus: The live status
//   - error: Any error that occurred
func (c *Client) GetWorkflowStatus(ctx context.Context, workflowID string) (*WorkflowStatus, error) {
	resp, err := c.doRequest(ctx, http.MethodGet,
		"/api/v1/workflows/"+url.PathEscape(workflowID)+"/status", nil)
	if err != nil {
		return nil, err
	}

	var result WorkflowStatus
	if err := parseResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// chatStreamRequest is the body of a chat stream request.
type chatStreamRequest struct {
	Content string `json:"content"`
}

// OpenChatStream opens the chat SSE stream for one exchange.
//
// The request POSTs the message content and the response streams the
// backend's events for it. The returned stream is live; the caller owns it
// and must consume Frames or Close it.
//
// Parameters:
//   - ctx: Context for cancellation (aborts a pending read when cancelled)
//   - chatID: The chat to send to
//   - content: The user's message
//
// Returns:
//   - *sse.Stream: The open stream
//   - error: Transport error if the connection could not be established
func (c *Client) OpenChatStream(ctx context.Context, chatID, content string) (*sse.Stream, error) {
	body, err := json.Marshal(&chatStreamRequest{Content: content})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stream request: %w", err)
	}

	reqURL := c.baseURL + "/api/v1/stream/chats/" + url.PathEscape(chatID) + "/stream"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create stream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "toyagent-cli/1.0")

	return sse.Connect(c.streamClient, req)
}

// OpenWorkflowStream opens the workflow status SSE stream.
//
// Parameters:
//   - ctx: Context for cancellation (aborts a pending read when cancelled)
//   - workflowID: The workflow to watch
//
// Returns:
//   - *sse.Stream: The open stream
//   - error: Transport error if the connection could not be established
func (c *Client) OpenWorkflowStream(ctx context.Context, workflowID string) (*sse.Stream, error) {
	reqURL := c.baseURL + "/api/v1/stream/workflows/" + url.PathEscape(workflowID) + "/stream"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream request: %w", err)
	}
	req.Header.Set("User-Agent", "toyagent-cli/1.0")

	return sse.Connect(c.streamClient, req)
}
