package events

import (
	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"
)

// WorkflowEvent is one classified event from the workflow status stream.
//
// The concrete types are WorkflowStart, StepStart, and StepProgress.
type WorkflowEvent interface {
	workflowEvent()
}

// WorkflowStart is emitted once when the status stream opens, carrying the
// workflow's name and status at connection time.
type WorkflowStart struct {
	// WorkflowID is the workflow's identifier.
	WorkflowID string

	// Name is the workflow name.
	Name string

	// Status is the overall status at connection time.
	Status string
}

// StepStart signals that a step has begun executing.
type StepStart struct {
	// StepID identifies the step.
	StepID string
}

// StepProgress carries a step status update. Completion and failure arrive
// as the status strings "completed" and "failed" on this channel rather
// than as distinct shapes.
type StepProgress struct {
	// StepID identifies the step.
	StepID string

	// Status is the reported status string. May be empty when the payload
	// carried only a step id; the state machine drops such updates.
	Status string
}

func (WorkflowStart) workflowEvent() {}
func (StepStart) workflowEvent()     {}
func (StepProgress) workflowEvent()  {}

// ClassifyWorkflow parses one workflow-stream payload and returns its event.
//
// Shape checks, in precedence order (first match wins):
//  1. both "name" and "status" → WorkflowStart
//  2. "step_id" → StepStart when status is "running", otherwise
//     StepProgress with the given status string
//
// Parameters:
//   - payload: The JSON payload extracted from a data frame
//
// Returns:
//   - WorkflowEvent: The classified event, or nil if the payload is
//     malformed or matches no known shape
func ClassifyWorkflow(payload string) WorkflowEvent {
	if !gjson.Valid(payload) {
		log.Debug("dropping malformed workflow frame", "payload", payload)
		return nil
	}

	name := gjson.Get(payload, "name")
	statusField := gjson.Get(payload, "status")
	if name.Exists() && statusField.Exists() {
		return WorkflowStart{
			WorkflowID: gjson.Get(payload, "workflow_id").String(),
			Name:       name.String(),
			Status:     statusField.String(),
		}
	}

	if stepID := gjson.Get(payload, "step_id"); stepID.Exists() {
		if statusField.String() == "running" {
			return StepStart{StepID: stepID.String()}
		}
		return StepProgress{StepID: stepID.String(), Status: statusField.String()}
	}

	return nil
}
