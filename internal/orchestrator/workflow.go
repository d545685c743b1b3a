package orchestrator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kakao/snorch/internal/orchestrator/lifecycle"
	"github.com/kakao/snorch/pkg/types"
	"github.com/kakao/snorch/pkg/verrors"
)

const (
	workflowStarted  = "started"
	workflowFinished = "finished"
	workflowAborted  = "aborted"
)

// acquire registers wf as the workflow in flight. Only one exclusive
// workflow runs at a time across the cluster.
func (o *Orchestrator) acquire(ctx context.Context, wf types.Workflow, node string) error {
	o.wfmu.Lock()
	defer o.wfmu.Unlock()
	if o.active != nil {
		return fmt.Errorf("orchestrator: %s of %s since %s: %w",
			o.active.Workflow, o.active.Node, o.active.StartTime.Format(time.RFC3339), verrors.ErrWorkflowInProgress)
	}
	o.active = &WorkflowStatus{Workflow: wf, Node: node, StartTime: time.Now()}
	o.metrics.workflow(ctx, wf, workflowStarted)
	o.logger.Info("started workflow", zap.Stringer("workflow", wf), zap.String("node", node))
	return nil
}

// release ends the workflow in flight if it is wf.
func (o *Orchestrator) release(ctx context.Context, wf types.Workflow, outcome lifecycle.Outcome) {
	o.wfmu.Lock()
	defer o.wfmu.Unlock()
	if o.active == nil || o.active.Workflow != wf {
		return
	}
	event := workflowFinished
	if outcome == lifecycle.Aborted {
		event = workflowAborted
	}
	o.metrics.workflow(ctx, wf, event)
	o.logger.Info("ended workflow",
		zap.Stringer("workflow", wf),
		zap.String("node", o.active.Node),
		zap.String("event", event),
		zap.Duration("elapsed", time.Since(o.active.StartTime)),
	)
	o.active = nil
}

func (o *Orchestrator) activeWorkflow() *WorkflowStatus {
	o.wfmu.Lock()
	defer o.wfmu.Unlock()
	if o.active == nil {
		return nil
	}
	ws := *o.active
	return &ws
}

// settle releases wf once the step ended the workflow.
func (o *Orchestrator) settle(ctx context.Context, wf types.Workflow, outcome lifecycle.Outcome) {
	if wf.Exclusive() && outcome.Done() {
		o.release(ctx, wf, outcome)
	}
}
