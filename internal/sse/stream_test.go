package sse

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// sseHandler writes the given SSE body and returns.
func sseHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, body)
	}
}

// connectTo opens a stream against the test server.
func connectTo(t *testing.T, ctx context.Context, url string) *Stream {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	stream, err := Connect(&http.Client{Timeout: 0}, req)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	return stream
}

// collectFrames drains the frame channel and returns all payloads.
func collectFrames(t *testing.T, frames <-chan string, errs <-chan error) []string {
	t.Helper()
	var got []string
	for frame := range frames {
		got = append(got, frame)
	}
	if err := <-errs; err != nil {
		t.Fatalf("unexpected stream error: %v", err)
	}
	return got
}

func TestStream_FramesInOrder(t *testing.T) {
	body := "event: content_delta\n" +
		"data: {\"content\":\"foo\"}\n" +
		"\n" +
		"data: data: {\"content\":\"bar\"}\n" +
		"\n" +
		"data: {\"message_id\":\"m1\",\"has_workflow\":false}\n" +
		"\n"

	srv := httptest.NewServer(sseHandler(body))
	defer srv.Close()

	stream := connectTo(t, context.Background(), srv.URL)
	frames, errs := stream.Frames(context.Background())

	got := collectFrames(t, frames, errs)
	want := []string{
		`{"content":"foo"}`,
		`{"content":"bar"}`,
		`{"message_id":"m1","has_workflow":false}`,
	}
	if len(got) != len(want) {
		t.Fatalf("got %d frames %q, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("frame %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestStream_TrailingPartialDiscarded(t *testing.T) {
	// The final line has no terminator and must not be surfaced.
	body := "data: {\"content\":\"ok\"}\ndata: {\"content\":\"trunc"

	srv := httptest.NewServer(sseHandler(body))
	defer srv.Close()

	stream := connectTo(t, context.Background(), srv.URL)
	frames, errs := stream.Frames(context.Background())

	got := collectFrames(t, frames, errs)
	if len(got) != 1 || got[0] != `{"content":"ok"}` {
		t.Fatalf("got %q, want only the terminated frame", got)
	}
}

func TestConnect_Non2xxStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if _, err := Connect(&http.Client{}, req); err == nil {
		t.Fatal("expected transport error for 500 response")
	}
}

func TestStream_Cancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"content\":\"first\"}\n")
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		// Hold the connection open until the test finishes.
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	stream := connectTo(t, ctx, srv.URL)
	frames, errs := stream.Frames(ctx)

	select {
	case frame := <-frames:
		if frame != `{"content":"first"}` {
			t.Fatalf("unexpected frame %q", frame)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for first frame")
	}

	cancel()

	// The read loop must stop and close the channels; no further frames
	// may be delivered after cancellation is observed.
	select {
	case frame, ok := <-frames:
		if ok {
			t.Fatalf("unexpected frame after cancellation: %q", frame)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("frame channel not closed after cancellation (read not aborted)")
	}
	if err := <-errs; err != nil {
		t.Fatalf("cancellation should not surface a read error, got %v", err)
	}
}
