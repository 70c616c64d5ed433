package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/toyagent/cli/internal/api"
	"github.com/toyagent/cli/internal/ui"
	"github.com/toyagent/cli/internal/workflow"
)

// workflowCmd is the parent for workflow operations.
var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Follow and inspect workflows",
}

// workflowWatchCmd follows a workflow until it finishes.
var workflowWatchCmd = &cobra.Command{
	Use:   "watch <workflow>",
	Short: "Follow a workflow's steps until it completes or fails",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkflowWatch,
}

// workflowStatusCmd prints the current workflow status once.
var workflowStatusCmd = &cobra.Command{
	Use:   "status <workflow>",
	Short: "Show a workflow's current step statuses",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkflowStatus,
}

func init() {
	workflowCmd.AddCommand(workflowWatchCmd)
	workflowCmd.AddCommand(workflowStatusCmd)
}

// runWorkflowWatch streams step updates until the workflow is terminal.
func runWorkflowWatch(cmd *cobra.Command, args []string) error {
	client, cfg := newClient(cmd)
	workflowID := cfg.ResolveWorkflow(args[0])

	if jsonOutput(cmd) {
		tracker, err := workflow.NewWatcher(client).Watch(cmd.Context(), workflowID)
		if err != nil {
			return err
		}
		steps := make(map[string]string)
		for _, s := range tracker.Steps() {
			steps[s.ID] = string(s.Status)
		}
		return printJSON(map[string]interface{}{
			"workflow_id": workflowID,
			"name":        tracker.Name(),
			"status":      string(tracker.Overall()),
			"steps":       steps,
		})
	}

	return followWorkflow(cmd, client, workflowID)
}

// followWorkflow renders a live step list until the workflow is terminal.
// Shared by `workflow watch` and `chat send`.
func followWorkflow(cmd *cobra.Command, client *api.Client, workflowID string) error {
	stepUI := ui.NewStepTracker()
	watcher := workflow.NewWatcher(client)
	watcher.OnUpdate = func(t *workflow.Tracker) {
		ui.StopSpinner()
		views := make([]ui.StepView, 0)
		for _, s := range t.Steps() {
			views = append(views, ui.StepView{ID: s.ID, Status: string(s.Status)})
		}
		stepUI.Update(views)
	}

	// Spinner covers the status fetch before the first update lands.
	ui.StartSpinner("Fetching workflow status...")
	tracker, err := watcher.Watch(cmd.Context(), workflowID)
	ui.StopSpinner()
	if err != nil {
		return err
	}
	stepUI.Finish(tracker.Name(), string(tracker.Overall()))
	return nil
}

// runWorkflowStatus prints a one-shot status snapshot.
func runWorkflowStatus(cmd *cobra.Command, args []string) error {
	client, cfg := newClient(cmd)
	workflowID := cfg.ResolveWorkflow(args[0])

	st, err := client.GetWorkflowStatus(cmd.Context(), workflowID)
	if err != nil {
		return err
	}

	if jsonOutput(cmd) {
		return printJSON(st)
	}

	// Best-effort name lookup; the status endpoint reports ids only.
	label := st.WorkflowID
	if meta, err := client.GetWorkflow(cmd.Context(), workflowID); err == nil && meta.Name != "" {
		label = fmt.Sprintf("%s (%s)", meta.Name, st.WorkflowID)
	}

	ui.PrintInfo("Workflow %s: %s %s", label, ui.StyledStatusIcon(st.Status), st.Status)
	if st.CurrentStep != "" {
		ui.PrintDim("Current step: %s", st.CurrentStep)
	}
	if len(st.StepStatuses) > 0 {
		ui.Println()
		table := ui.NewTable("STEP", "STATUS")
		for _, id := range sortedStepIDs(st.StepStatuses) {
			table.AddRow(id, ui.StyledStatusIcon(st.StepStatuses[id])+" "+st.StepStatuses[id])
		}
		table.Render()
	}
	return nil
}

func sortedStepIDs(steps map[string]string) []string {
	ids := make([]string, 0, len(steps))
	for id := range steps {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
