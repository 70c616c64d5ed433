package mcp

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/toyagent/cli/internal/api"
	"github.com/toyagent/cli/internal/config"
)

func testServer(backendURL string) *Server {
	return &Server{
		apiClient: api.NewClient(backendURL),
		version:   "test",
	}
}

func TestHandleSendMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/chats", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":"c-1"}`)
	})
	mux.HandleFunc("POST /api/v1/stream/chats/{id}/stream", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, strings.Join([]string{
			`data: {"content":"Sure."}`,
			`data: {"message_id":"m-2","has_workflow":false}`,
			"",
		}, "\n"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := testServer(srv.URL)
	_, out, err := s.handleSendMessage(context.Background(), nil, SendMessageInput{Content: "hi"})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !out.Success {
		t.Fatalf("send failed: %s", out.ErrorMessage)
	}
	if out.ChatID != "c-1" || out.Reply != "Sure." {
		t.Errorf("output = %+v", out)
	}
}

func TestHandleSendMessage_MissingContent(t *testing.T) {
	s := testServer("http://unused")
	_, out, err := s.handleSendMessage(context.Background(), nil, SendMessageInput{})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if out.Success || out.ErrorMessage == "" {
		t.Errorf("expected validation failure, got %+v", out)
	}
}

func TestHandleGetChat_ResolvesAlias(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/chats/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "c-42" {
			t.Errorf("alias not resolved: %s", r.PathValue("id"))
		}
		fmt.Fprint(w, `{"id":"c-42","title":"support","messages":[{"sender":"user","content":"hi"}]}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := testServer(srv.URL)
	s.config = &config.ProjectConfig{Chats: map[string]string{"support": "c-42"}}

	_, out, err := s.handleGetChat(context.Background(), nil, GetChatInput{ChatID: "support"})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !out.Success || out.ChatID != "c-42" || len(out.Messages) != 1 {
		t.Errorf("output = %+v", out)
	}
}

func TestHandleWatchWorkflow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/workflows/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"workflow_id":"wf-1","status":"completed","step_statuses":{"s1":"completed"}}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := testServer(srv.URL)
	_, out, err := s.handleWatchWorkflow(context.Background(), nil, WatchWorkflowInput{WorkflowID: "wf-1"})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !out.Success || out.Status != "completed" {
		t.Errorf("output = %+v", out)
	}
	if out.Steps["s1"] != "completed" {
		t.Errorf("steps = %v", out.Steps)
	}
}
