// Package ui provides terminal UI components using Charm libraries.
package ui

import (
	"fmt"
	"sync"

	"github.com/toyagent/cli/internal/status"
)

// StepView is one workflow step as the tracker renders it.
type StepView struct {
	// ID is the step identifier.
	ID string

	// Status is the step's current status string.
	Status string
}

// StepTracker renders workflow step progress as a growing list.
//
// Steps that reach a terminal status are printed once as permanent lines;
// the currently running step is drawn as an in-place status line that
// updates with each delivery.
type StepTracker struct {
	// lastStatus tracks the last printed status per step so only actual
	// transitions produce output.
	lastStatus map[string]string

	// statusLine is true while an in-place running line is on screen.
	statusLine bool

	mu sync.Mutex
}

// NewStepTracker creates a new step tracker.
//
// Returns:
//   - *StepTracker: A new step tracker instance
func NewStepTracker() *StepTracker {
	return &StepTracker{
		lastStatus: make(map[string]string),
	}
}

// Update renders the current step map.
//
// Parameters:
//   - steps: The steps in display order with their current statuses
func (t *StepTracker) Update(steps []StepView) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var running string
	for _, step := range steps {
		if step.Status == t.lastStatus[step.ID] {
			if step.Status == string(status.StepRunning) {
				running = step.ID
			}
			continue
		}
		t.lastStatus[step.ID] = step.Status

		switch step.Status {
		case string(status.StepCompleted):
			t.clearStatusLineLocked()
			fmt.Println(SuccessStyle.Render("✓ " + step.ID))
		case string(status.StepFailed):
			t.clearStatusLineLocked()
			fmt.Println(ErrorStyle.Render("✗ " + step.ID))
		case string(status.StepRunning):
			running = step.ID
		}
	}

	if running != "" {
		t.clearStatusLineLocked()
		fmt.Printf("%s %s", StyledStatusIcon(string(status.StepRunning)), running)
		t.statusLine = true
	}
}

// Finish clears any in-place status line and prints the overall outcome.
//
// Parameters:
//   - name: The workflow name (may be empty)
//   - overall: The final overall status string
func (t *StepTracker) Finish(name, overall string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clearStatusLineLocked()

	label := overall
	if name != "" {
		label = fmt.Sprintf("%s: %s", name, overall)
	}
	switch overall {
	case string(status.WorkflowCompleted):
		fmt.Println(SuccessStyle.Render("✓ " + label))
	case string(status.WorkflowFailed):
		fmt.Println(ErrorStyle.Render("✗ " + label))
	default:
		fmt.Println(DimStyle.Render("● " + label))
	}
}

func (t *StepTracker) clearStatusLineLocked() {
	if t.statusLine {
		clearLine()
		t.statusLine = false
	}
}
