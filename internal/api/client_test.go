package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/chats" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req CreateChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		if req.Title != "weekly report" {
			t.Errorf("title = %q", req.Title)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(&Chat{ID: "c-1", Title: req.Title})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	chat, err := client.CreateChat(context.Background(), "weekly report")
	if err != nil {
		t.Fatalf("CreateChat failed: %v", err)
	}
	if chat.ID != "c-1" || chat.Title != "weekly report" {
		t.Errorf("unexpected chat: %+v", chat)
	}
}

func TestGetChat_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"detail":"Chat c-404 not found"}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.GetChat(context.Background(), "c-404")
	if err == nil {
		t.Fatal("expected error for 404")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
	if apiErr.Detail != "Chat c-404 not found" {
		t.Errorf("detail = %q", apiErr.Detail)
	}
}

func TestGetWorkflowStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/workflows/wf-1/status" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		fmt.Fprint(w, `{
			"workflow_id": "wf-1",
			"temporal_workflow_id": "exec-9",
			"status": "running",
			"current_step": "s2",
			"step_statuses": {"s1": "completed", "s2": "running"}
		}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	st, err := client.GetWorkflowStatus(context.Background(), "wf-1")
	if err != nil {
		t.Fatalf("GetWorkflowStatus failed: %v", err)
	}
	if st.Status != "running" || st.CurrentStep != "s2" {
		t.Errorf("unexpected status: %+v", st)
	}
	if st.StepStatuses["s1"] != "completed" {
		t.Errorf("step statuses: %v", st.StepStatuses)
	}
}

func TestOpenChatStream_SendsContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/stream/chats/c-1/stream" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Accept"); got != "text/event-stream" {
			t.Errorf("Accept = %q", got)
		}
		var body chatStreamRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		if body.Content != "hello" {
			t.Errorf("content = %q", body.Content)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"content\":\"Hi\"}\n")
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	stream, err := client.OpenChatStream(context.Background(), "c-1", "hello")
	if err != nil {
		t.Fatalf("OpenChatStream failed: %v", err)
	}

	frames, errs := stream.Frames(context.Background())
	var got []string
	for frame := range frames {
		got = append(got, frame)
	}
	if err := <-errs; err != nil {
		t.Fatalf("stream error: %v", err)
	}
	if len(got) != 1 || got[0] != `{"content":"Hi"}` {
		t.Errorf("frames = %q", got)
	}
}

func TestOpenWorkflowStream_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if _, err := client.OpenWorkflowStream(context.Background(), "wf-1"); err == nil {
		t.Fatal("expected transport error for 502")
	}
}
