package workflow

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/toyagent/cli/internal/api"
	"github.com/toyagent/cli/internal/events"
	"github.com/toyagent/cli/internal/status"
)

func TestTracker_MonotonicLifecycle(t *testing.T) {
	tr := NewTracker("wf-1")

	if !tr.Apply(events.StepProgress{StepID: "s1", Status: "running"}) {
		t.Error("first running update should change state")
	}
	if !tr.Apply(events.StepProgress{StepID: "s1", Status: "completed"}) {
		t.Error("completion should change state")
	}

	// Terminal states absorb later updates.
	if tr.Apply(events.StepProgress{StepID: "s1", Status: "running"}) {
		t.Error("terminal step must not move back to running")
	}
	if tr.Apply(events.StepProgress{StepID: "s1", Status: "failed"}) {
		t.Error("completed step must not become failed")
	}

	steps := tr.Steps()
	if len(steps) != 1 || steps[0].Status != status.StepCompleted {
		t.Errorf("steps = %+v", steps)
	}
}

func TestTracker_DuplicateDeliveryIsIdempotent(t *testing.T) {
	tr := NewTracker("wf-1")

	tr.Apply(events.StepStart{StepID: "s1"})
	if tr.Apply(events.StepStart{StepID: "s1"}) {
		t.Error("duplicate step start should be a no-op")
	}
	if got := tr.Steps(); len(got) != 1 || got[0].Status != status.StepRunning {
		t.Errorf("steps = %+v", got)
	}
}

func TestTracker_UnknownAndEmptyStatusesDropped(t *testing.T) {
	tr := NewTracker("wf-1")
	tr.Apply(events.StepStart{StepID: "s1"})

	if tr.Apply(events.StepProgress{StepID: "s1", Status: "exploded"}) {
		t.Error("unknown status should be dropped")
	}
	if tr.Apply(events.StepProgress{StepID: "s1", Status: ""}) {
		t.Error("empty status should be dropped")
	}
	if got := tr.Steps()[0].Status; got != status.StepRunning {
		t.Errorf("step status = %q", got)
	}
}

func TestTracker_SeedDeclaredSteps(t *testing.T) {
	tr := NewTracker("wf-1")
	tr.Seed(map[string]string{"s1": "completed", "s2": "pending", "s3": "weird"})

	steps := tr.Steps()
	if len(steps) != 3 {
		t.Fatalf("got %d steps", len(steps))
	}
	byID := map[string]status.StepStatus{}
	for _, s := range steps {
		byID[s.ID] = s.Status
	}
	if byID["s1"] != status.StepCompleted {
		t.Errorf("s1 = %q", byID["s1"])
	}
	if byID["s2"] != status.StepPending {
		t.Errorf("s2 = %q", byID["s2"])
	}
	// Unknown stored statuses seed as pending rather than being stored.
	if byID["s3"] != status.StepPending {
		t.Errorf("s3 = %q", byID["s3"])
	}
}

func TestTracker_OverallDerivation(t *testing.T) {
	tr := NewTracker("wf-1")
	if tr.Overall() != status.WorkflowPending {
		t.Errorf("empty tracker = %q", tr.Overall())
	}

	tr.Seed(map[string]string{"s1": "pending", "s2": "pending"})
	if tr.Overall() != status.WorkflowPending {
		t.Errorf("all pending = %q", tr.Overall())
	}

	tr.Apply(events.StepStart{StepID: "s1"})
	if tr.Overall() != status.WorkflowRunning {
		t.Errorf("one running = %q", tr.Overall())
	}

	tr.Apply(events.StepProgress{StepID: "s1", Status: "completed"})
	tr.Apply(events.StepProgress{StepID: "s2", Status: "completed"})
	if tr.Overall() != status.WorkflowCompleted {
		t.Errorf("all completed = %q", tr.Overall())
	}
	if !tr.Terminal() {
		t.Error("completed workflow should be terminal")
	}
}

func TestTracker_AnyFailureFailsWorkflow(t *testing.T) {
	tr := NewTracker("wf-1")
	tr.Seed(map[string]string{"s1": "completed", "s2": "pending"})
	tr.Apply(events.StepProgress{StepID: "s2", Status: "failed"})

	if tr.Overall() != status.WorkflowFailed {
		t.Errorf("overall = %q", tr.Overall())
	}
	if !tr.Terminal() {
		t.Error("failed workflow should be terminal")
	}
}

func TestTracker_ReconcileSettlesRunningSteps(t *testing.T) {
	tr := NewTracker("wf-1")
	tr.Seed(map[string]string{"s1": "pending", "s2": "pending"})
	tr.Apply(events.StepStart{StepID: "s1"})
	tr.Apply(events.StepStart{StepID: "s2"})

	if !tr.Reconcile("completed", map[string]string{"s1": "completed", "s2": "completed"}) {
		t.Error("reconcile with new terminal statuses should change state")
	}
	if tr.Overall() != status.WorkflowCompleted {
		t.Errorf("overall = %q", tr.Overall())
	}
	for _, s := range tr.Steps() {
		if s.Status != status.StepCompleted {
			t.Errorf("step %s = %q", s.ID, s.Status)
		}
	}

	// A stale snapshot cannot move settled steps backward.
	if tr.Reconcile("completed", map[string]string{"s1": "running"}) {
		t.Error("backward snapshot should be a no-op")
	}
}

// workflowBackend serves the status snapshot and a canned status stream.
func workflowBackend(t *testing.T, snapshot string, sseBody string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/workflows/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, snapshot)
	})
	mux.HandleFunc("GET /api/v1/stream/workflows/{id}/stream", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, sseBody)
	})
	return httptest.NewServer(mux)
}

func TestWatch_RunsToCompletion(t *testing.T) {
	srv := workflowBackend(t,
		`{"workflow_id":"wf-1","status":"running","step_statuses":{"s1":"pending","s2":"pending"}}`,
		strings.Join([]string{
			`data: {"step_id":"s1","status":"running"}`,
			`data: {"step_id":"s1","status":"completed"}`,
			`data: {"step_id":"s1","status":"running"}`,
			`data: {"step_id":"s2","status":"running"}`,
			`data: {"step_id":"s2","status":"completed"}`,
			"",
		}, "\n"))
	defer srv.Close()

	w := NewWatcher(api.NewClient(srv.URL))
	var updates int
	w.OnUpdate = func(*Tracker) { updates++ }

	tr, err := w.Watch(context.Background(), "wf-1")
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	if tr.Overall() != status.WorkflowCompleted {
		t.Errorf("overall = %q", tr.Overall())
	}
	for _, s := range tr.Steps() {
		if s.Status != status.StepCompleted {
			t.Errorf("step %s = %q", s.ID, s.Status)
		}
	}
	// Seed plus four applied transitions; the backward s1 running frame
	// must not fire an update.
	if updates != 5 {
		t.Errorf("updates = %d, want 5", updates)
	}
}

func TestWatch_TerminalOutcomeFromStoredStatus(t *testing.T) {
	// Step completion arrives as a bare step id and the closing frame
	// carries only the id and the step map, so neither can settle the
	// tracker on its own; the outcome has to come from re-reading the
	// stored status after the stream ends.
	statusCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/workflows/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		statusCalls++
		if statusCalls == 1 {
			fmt.Fprint(w, `{"workflow_id":"wf-1","status":"running","step_statuses":{"s1":"pending"}}`)
			return
		}
		fmt.Fprint(w, `{"workflow_id":"wf-1","status":"completed","step_statuses":{"s1":"completed"}}`)
	})
	mux.HandleFunc("GET /api/v1/stream/workflows/{id}/stream", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, strings.Join([]string{
			`data: {"workflow_id":"wf-1","name":"deploy","status":"running"}`,
			`data: {"step_id":"s1","status":"running"}`,
			`data: {"step_id":"s1"}`,
			`data: {"workflow_id":"wf-1","step_statuses":{"s1":"completed"}}`,
			"",
		}, "\n"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	w := NewWatcher(api.NewClient(srv.URL))
	tr, err := w.Watch(context.Background(), "wf-1")
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	if tr.Overall() != status.WorkflowCompleted {
		t.Errorf("overall = %q", tr.Overall())
	}
	if got := tr.Steps(); len(got) != 1 || got[0].Status != status.StepCompleted {
		t.Errorf("steps = %+v", got)
	}
	if statusCalls != 2 {
		t.Errorf("status fetched %d times, want 2", statusCalls)
	}
}

func TestWatch_AlreadyTerminalSkipsStream(t *testing.T) {
	streamOpened := false
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/workflows/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"workflow_id":"wf-1","status":"completed","step_statuses":{"s1":"completed"}}`)
	})
	mux.HandleFunc("GET /api/v1/stream/workflows/{id}/stream", func(w http.ResponseWriter, r *http.Request) {
		streamOpened = true
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tr, err := NewWatcher(api.NewClient(srv.URL)).Watch(context.Background(), "wf-1")
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	if tr.Overall() != status.WorkflowCompleted {
		t.Errorf("overall = %q", tr.Overall())
	}
	if streamOpened {
		t.Error("stream opened for an already-terminal workflow")
	}
}

func TestWatch_SnapshotFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/workflows/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"not found"}`, http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	if _, err := NewWatcher(api.NewClient(srv.URL)).Watch(context.Background(), "wf-404"); err == nil {
		t.Fatal("expected error for missing workflow")
	}
}
