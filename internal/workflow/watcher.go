package workflow

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/toyagent/cli/internal/api"
	"github.com/toyagent/cli/internal/events"
)

var tracer = otel.Tracer("github.com/toyagent/cli/internal/workflow")

// Watcher follows the status stream of one workflow until it ends.
type Watcher struct {
	client *api.Client

	// OnUpdate, when set, is called after every applied state change, and
	// once after the initial seed. Called from the Watch goroutine.
	OnUpdate func(t *Tracker)
}

// NewWatcher creates a watcher.
//
// Parameters:
//   - client: The backend API client
//
// Returns:
//   - *Watcher: A new watcher
func NewWatcher(client *api.Client) *Watcher {
	return &Watcher{client: client}
}

// Watch follows a workflow until it reaches a terminal state or the context
// is cancelled.
//
// The step map is seeded from the stored status snapshot first, so declared
// steps render as pending before the stream delivers anything. If the
// workflow is already terminal no stream is opened at all. Once a terminal
// state is reached the stream connection is released immediately rather
// than held until the server closes it. If the stream ends without the
// tracker reaching a terminal state the stored status is fetched once more
// and reconciled, since the stream's closing frames carry the outcome only
// as stored state.
//
// Parameters:
//   - ctx: Context for cancellation
//   - workflowID: The workflow to watch
//
// Returns:
//   - *Tracker: The tracker holding the final observed state
//   - error: Transport error, or the context's error on cancellation
func (w *Watcher) Watch(ctx context.Context, workflowID string) (*Tracker, error) {
	ctx, span := tracer.Start(ctx, "workflow.watch")
	defer span.End()
	span.SetAttributes(attribute.String("workflow.id", workflowID))

	tracker := NewTracker(workflowID)

	snapshot, err := w.client.GetWorkflowStatus(ctx, workflowID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return tracker, fmt.Errorf("failed to fetch workflow status: %w", err)
	}
	tracker.Seed(snapshot.StepStatuses)
	tracker.Apply(events.WorkflowStart{
		WorkflowID: snapshot.WorkflowID,
		Status:     snapshot.Status,
	})
	if w.OnUpdate != nil {
		w.OnUpdate(tracker)
	}
	if tracker.Terminal() {
		log.Debug("workflow already terminal, not opening stream",
			"workflow", workflowID, "status", tracker.Overall())
		return tracker, nil
	}

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := w.client.OpenWorkflowStream(streamCtx, workflowID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return tracker, fmt.Errorf("failed to open workflow stream: %w", err)
	}

	frames, errs := stream.Frames(streamCtx)
	for frame := range frames {
		ev := events.ClassifyWorkflow(frame)
		if ev == nil {
			continue
		}
		if tracker.Apply(ev) && w.OnUpdate != nil {
			w.OnUpdate(tracker)
		}
		if tracker.Terminal() {
			// Release the connection; the remaining frames, if any,
			// cannot change terminal state.
			cancel()
			break
		}
	}
	if err := <-errs; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return tracker, fmt.Errorf("workflow stream failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return tracker, err
	}

	if !tracker.Terminal() {
		// The closing frame and bare step-id completions carry no status
		// the tracker can apply, so the stream can end with steps still
		// marked running. The backend records the terminal outcome in the
		// stored status before closing; fetch it again and settle.
		final, err := w.client.GetWorkflowStatus(ctx, workflowID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return tracker, fmt.Errorf("failed to fetch final workflow status: %w", err)
		}
		if tracker.Reconcile(final.Status, final.StepStatuses) && w.OnUpdate != nil {
			w.OnUpdate(tracker)
		}
	}

	span.SetAttributes(attribute.String("workflow.status", string(tracker.Overall())))
	return tracker, nil
}
