package events

import (
	"reflect"
	"testing"
)

func TestClassifyChat_Precedence(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    ChatEvent
	}{
		{
			"user message start",
			`{"type":"user","message_id":"m-1"}`,
			MessageStart{Role: RoleUser, MessageID: "m-1"},
		},
		{
			"agent message start without id",
			`{"type":"agent"}`,
			MessageStart{Role: RoleAssistant},
		},
		{
			"content delta",
			`{"content":"Hi"}`,
			ContentDelta{Text: "Hi"},
		},
		{
			"empty content delta still classifies",
			`{"content":""}`,
			ContentDelta{Text: ""},
		},
		{
			"message end",
			`{"message_id":"m-2","has_workflow":false}`,
			MessageEnd{MessageID: "m-2", HasWorkflow: false},
		},
		{
			"message end with workflow",
			`{"message_id":"m-3","has_workflow":true}`,
			MessageEnd{MessageID: "m-3", HasWorkflow: true},
		},
		{
			"error event",
			`{"error":"Chat abc not found"}`,
			StreamError{Message: "Chat abc not found"},
		},
		{
			"type wins over content",
			`{"type":"agent","content":"x"}`,
			MessageStart{Role: RoleAssistant},
		},
		{
			"content wins over message_id",
			`{"content":"x","message_id":"m-4","has_workflow":true}`,
			ContentDelta{Text: "x"},
		},
		{
			"message_id without has_workflow is not message end",
			`{"message_id":"m-5"}`,
			nil,
		},
		{
			"unknown shape ignored",
			`{"timestamp":"2026-08-26T00:00:00Z"}`,
			nil,
		},
		{
			"malformed json dropped",
			`{not json`,
			nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifyChat(tc.payload)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("ClassifyChat(%s) = %#v, want %#v", tc.payload, got, tc.want)
			}
		})
	}
}

func TestClassifyChat_WorkflowCreated(t *testing.T) {
	payload := `{
		"id": "wf-1",
		"chat_id": "c-1",
		"temporal_workflow_id": "exec-99",
		"name": "send-report",
		"status": "pending",
		"steps_status": {"s1": "pending", "s2": "pending"}
	}`

	got := ClassifyChat(payload)
	created, ok := got.(WorkflowCreated)
	if !ok {
		t.Fatalf("expected WorkflowCreated, got %#v", got)
	}
	wf := created.Workflow
	if wf.ID != "wf-1" || wf.ChatID != "c-1" || wf.ExecutionID != "exec-99" {
		t.Errorf("unexpected ids: %+v", wf)
	}
	if wf.Name != "send-report" || wf.Status != "pending" {
		t.Errorf("unexpected name/status: %+v", wf)
	}
	if len(wf.StepStatuses) != 2 || wf.StepStatuses["s1"] != "pending" {
		t.Errorf("unexpected step statuses: %v", wf.StepStatuses)
	}
}

func TestClassifyChat_EmptyWorkflowIDNotCreated(t *testing.T) {
	// A null or empty execution id must not classify as workflow_created.
	if got := ClassifyChat(`{"temporal_workflow_id":""}`); got != nil {
		t.Errorf("empty execution id: got %#v, want nil", got)
	}
	if got := ClassifyChat(`{"temporal_workflow_id":null}`); got != nil {
		t.Errorf("null execution id: got %#v, want nil", got)
	}
}

func TestClassifyWorkflow(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    WorkflowEvent
	}{
		{
			"workflow start",
			`{"workflow_id":"wf-1","name":"send-report","status":"running"}`,
			WorkflowStart{WorkflowID: "wf-1", Name: "send-report", Status: "running"},
		},
		{
			"step start",
			`{"step_id":"s1","status":"running"}`,
			StepStart{StepID: "s1"},
		},
		{
			"step progress completed",
			`{"step_id":"s1","status":"completed"}`,
			StepProgress{StepID: "s1", Status: "completed"},
		},
		{
			"step progress failed",
			`{"step_id":"s2","status":"failed"}`,
			StepProgress{StepID: "s2", Status: "failed"},
		},
		{
			"bare step id yields empty progress",
			`{"step_id":"s1"}`,
			StepProgress{StepID: "s1", Status: ""},
		},
		{
			"name and status win over step_id",
			`{"name":"wf","status":"running","step_id":"s1"}`,
			WorkflowStart{Name: "wf", Status: "running"},
		},
		{
			"unknown shape ignored",
			`{"workflow_id":"wf-1","step_statuses":{"s1":"completed"}}`,
			nil,
		},
		{
			"malformed json dropped",
			`{oops`,
			nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifyWorkflow(tc.payload)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("ClassifyWorkflow(%s) = %#v, want %#v", tc.payload, got, tc.want)
			}
		})
	}
}
