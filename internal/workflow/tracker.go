// Package workflow tracks the live execution state of a backend workflow.
//
// A Tracker holds the per-step status map and enforces the monotonic step
// lifecycle; a Watcher feeds it from the workflow status stream until the
// workflow reaches a terminal state.
package workflow

import (
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/toyagent/cli/internal/events"
	"github.com/toyagent/cli/internal/status"
)

// Step is one step's id and last known status, in display order.
type Step struct {
	ID     string
	Status status.StepStatus
}

// Tracker is the step state machine for one workflow execution.
//
// Updates are idempotent and monotonic: a step only moves forward through
// pending → running → {completed | failed}, duplicates are absorbed, and
// anything trying to move a step out of a terminal status is dropped.
type Tracker struct {
	mu sync.Mutex

	workflowID string
	name       string

	// steps maps step id to its current status.
	steps map[string]status.StepStatus

	// order records step ids in first-seen order so rendering is stable.
	order []string

	// currentStep is the most recently started step.
	currentStep string

	// serverStatus is the overall status as last reported by the backend.
	// Used only when terminal; otherwise the overall status is derived
	// from the step map.
	serverStatus status.WorkflowStatus
}

// NewTracker creates a tracker for one workflow.
//
// Parameters:
//   - workflowID: The workflow being tracked
//
// Returns:
//   - *Tracker: A new tracker with no steps
func NewTracker(workflowID string) *Tracker {
	return &Tracker{
		workflowID: workflowID,
		steps:      make(map[string]status.StepStatus),
	}
}

// WorkflowID returns the id of the tracked workflow.
func (t *Tracker) WorkflowID() string {
	return t.workflowID
}

// Name returns the workflow name, if the stream has reported one.
func (t *Tracker) Name() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.name
}

// CurrentStep returns the most recently started step id.
func (t *Tracker) CurrentStep() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentStep
}

// Seed initializes the step map from a stored status snapshot, typically
// the declared steps of the workflow before the stream is opened. Unknown
// status strings seed as pending.
//
// Parameters:
//   - stepStatuses: Step id to status, as the backend reports it
func (t *Tracker) Seed(stepStatuses map[string]string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range sortedKeys(stepStatuses) {
		st := status.StepStatus(stepStatuses[id])
		if !status.IsValidStep(string(st)) {
			st = status.StepPending
		}
		if _, seen := t.steps[id]; !seen {
			t.order = append(t.order, id)
		}
		t.steps[id] = st
	}
}

// Apply merges one classified workflow event into the step map.
//
// Parameters:
//   - ev: The classified event
//
// Returns:
//   - bool: True if the event changed tracker state
func (t *Tracker) Apply(ev events.WorkflowEvent) bool {
	switch ev := ev.(type) {
	case events.WorkflowStart:
		t.mu.Lock()
		changed := t.name != ev.Name
		t.name = ev.Name
		if status.IsValidStep(ev.Status) {
			next := status.WorkflowStatus(ev.Status)
			changed = changed || t.serverStatus != next
			t.serverStatus = next
		}
		t.mu.Unlock()
		return changed

	case events.StepStart:
		return t.setStep(ev.StepID, status.StepRunning)

	case events.StepProgress:
		if ev.Status == "" {
			// Bare step_id frame with no status; the terminal outcome
			// arrives through the workflow status snapshot instead.
			return false
		}
		if !status.IsValidStep(ev.Status) {
			log.Debug("dropping step update with unknown status",
				"step", ev.StepID, "status", ev.Status)
			return false
		}
		return t.setStep(ev.StepID, status.StepStatus(ev.Status))
	}
	return false
}

// setStep applies one step transition under the monotonic lifecycle rules.
func (t *Tracker) setStep(stepID string, next status.StepStatus) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	current, seen := t.steps[stepID]
	if !seen {
		t.order = append(t.order, stepID)
		t.steps[stepID] = next
		if next == status.StepRunning {
			t.currentStep = stepID
		}
		return true
	}

	if !status.CanTransition(current, next) {
		log.Debug("dropping backward step transition",
			"step", stepID, "from", current, "to", next)
		return false
	}
	if current == next {
		return false
	}

	t.steps[stepID] = next
	if next == status.StepRunning {
		t.currentStep = stepID
	}
	return true
}

// Reconcile merges a stored status snapshot into the tracker through the
// normal lifecycle rules.
//
// The status stream reports step completion and failure as bare step ids,
// and its closing frame matches no event shape; the terminal outcome is
// recorded in the stored workflow status instead. The watcher calls this
// with a fresh snapshot after the stream ends so steps left running are
// settled. Unknown status strings are skipped and backward transitions are
// still rejected.
//
// Parameters:
//   - overall: The stored overall workflow status
//   - stepStatuses: Step id to status, as the backend reports it
//
// Returns:
//   - bool: True if the snapshot changed tracker state
func (t *Tracker) Reconcile(overall string, stepStatuses map[string]string) bool {
	changed := false
	for _, id := range sortedKeys(stepStatuses) {
		if !status.IsValidStep(stepStatuses[id]) {
			continue
		}
		if t.setStep(id, status.StepStatus(stepStatuses[id])) {
			changed = true
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if status.IsValidStep(overall) {
		next := status.WorkflowStatus(overall)
		if t.serverStatus != next {
			t.serverStatus = next
			changed = true
		}
	}
	return changed
}

// Steps returns the steps in first-seen order.
//
// Returns:
//   - []Step: A snapshot of step ids and statuses
func (t *Tracker) Steps() []Step {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Step, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, Step{ID: id, Status: t.steps[id]})
	}
	return out
}

// Overall returns the overall workflow status.
//
// A terminal status reported by the backend wins; otherwise the status is
// derived from the step map: any failed step fails the workflow, all steps
// completed completes it, any activity means running, and an empty or
// untouched map is pending.
//
// Returns:
//   - status.WorkflowStatus: The overall status
func (t *Tracker) Overall() status.WorkflowStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.overallLocked()
}

// Terminal reports whether the workflow has finished.
func (t *Tracker) Terminal() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return status.IsTerminal(string(t.overallLocked()))
}

func (t *Tracker) overallLocked() status.WorkflowStatus {
	if status.IsTerminal(string(t.serverStatus)) {
		return t.serverStatus
	}
	if len(t.steps) == 0 {
		return status.WorkflowPending
	}

	completed := 0
	active := false
	for _, st := range t.steps {
		switch st {
		case status.StepFailed:
			return status.WorkflowFailed
		case status.StepCompleted:
			completed++
		case status.StepRunning:
			active = true
		}
	}
	if completed == len(t.steps) {
		return status.WorkflowCompleted
	}
	if active || completed > 0 {
		return status.WorkflowRunning
	}
	return status.WorkflowPending
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
