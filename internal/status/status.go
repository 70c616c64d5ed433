// Package status provides shared status constants and helpers for workflow execution.
//
// This package centralizes all status-related logic to ensure consistency across the CLI.
// It mirrors the backend workflow and step status values and provides helper functions
// for determining terminal states and status display.
package status

import "strings"

// StepStatus represents the lifecycle status of a single workflow step.
// This mirrors the status strings the backend reports per step.
type StepStatus string

const (
	// StepPending indicates the step is declared but has not started.
	StepPending StepStatus = "pending"

	// StepRunning indicates the step is actively executing.
	StepRunning StepStatus = "running"

	// StepCompleted indicates the step finished successfully.
	StepCompleted StepStatus = "completed"

	// StepFailed indicates the step ended with an error.
	StepFailed StepStatus = "failed"
)

// WorkflowStatus represents the overall status of a workflow execution.
// This mirrors the backend WorkflowMeta status column.
type WorkflowStatus string

const (
	// WorkflowPending indicates the workflow is created but not yet running.
	WorkflowPending WorkflowStatus = "pending"

	// WorkflowRunning indicates at least one step is executing.
	WorkflowRunning WorkflowStatus = "running"

	// WorkflowCompleted indicates every step finished successfully.
	WorkflowCompleted WorkflowStatus = "completed"

	// WorkflowFailed indicates at least one step failed.
	WorkflowFailed WorkflowStatus = "failed"
)

// terminalStatuses contains all statuses that indicate execution has ended.
var terminalStatuses = map[string]bool{
	string(StepCompleted): true,
	string(StepFailed):    true,
}

// IsTerminal checks if a status string indicates execution has ended.
// Terminal statuses never transition again; once a step or workflow reports
// one, later updates for it are ignored.
//
// Parameters:
//   - status: The status string to check (case-insensitive)
//
// Returns:
//   - bool: True if the status is terminal (completed or failed)
func IsTerminal(status string) bool {
	return terminalStatuses[strings.ToLower(status)]
}

// IsValidStep checks whether a status string is one of the known step statuses.
// The step state machine drops unknown strings rather than storing them.
//
// Parameters:
//   - status: The status string to check (case-insensitive)
//
// Returns:
//   - bool: True if the status is pending, running, completed, or failed
func IsValidStep(status string) bool {
	switch StepStatus(strings.ToLower(status)) {
	case StepPending, StepRunning, StepCompleted, StepFailed:
		return true
	}
	return false
}

// CanTransition reports whether a step may move from one status to another.
//
// The step lifecycle is monotonic: pending → running → {completed | failed}.
// Re-applying the current status is allowed (idempotent no-op); any move out
// of a terminal status is rejected.
//
// Parameters:
//   - from: The current step status
//   - to: The proposed next status
//
// Returns:
//   - bool: True if the transition is allowed
func CanTransition(from, to StepStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case StepPending:
		return to == StepRunning || to == StepCompleted || to == StepFailed
	case StepRunning:
		return to == StepCompleted || to == StepFailed
	default:
		// completed and failed are terminal
		return false
	}
}

// StatusIcon returns the appropriate icon for a status.
//
// Icons:
//   - pending: ⏳ (hourglass)
//   - running: ▶ (play)
//   - completed: ✓ (checkmark)
//   - failed: ✗ (x mark)
//   - unknown: ● (bullet)
//
// Parameters:
//   - status: The status string
//
// Returns:
//   - string: The icon character for the status
func StatusIcon(status string) string {
	switch strings.ToLower(status) {
	case string(StepPending):
		return "⏳"
	case string(StepRunning):
		return "▶"
	case string(StepCompleted):
		return "✓"
	case string(StepFailed):
		return "✗"
	default:
		return "●"
	}
}

// StatusCategory returns the category of a status for styling purposes.
//
// Categories:
//   - "dim": pending, unknown
//   - "info": running
//   - "success": completed
//   - "error": failed
//
// Parameters:
//   - status: The status string
//
// Returns:
//   - string: The category name for styling
func StatusCategory(status string) string {
	switch strings.ToLower(status) {
	case string(StepRunning):
		return "info"
	case string(StepCompleted):
		return "success"
	case string(StepFailed):
		return "error"
	default:
		return "dim"
	}
}
