package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"

	"go.uber.org/zap"

	"github.com/kakao/snorch/internal/orchestrator/lifecycle"
	"github.com/kakao/snorch/internal/remoteop"
	"github.com/kakao/snorch/pkg/types"
	"github.com/kakao/snorch/pkg/verrors"
)

// repairLaneKey routes every repair completion to one lane, since a repair
// moves a different node at each step.
const repairLaneKey = "repair"

// Start consumes the completions of the executor.
func (o *Orchestrator) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return verrors.ErrStopped
	}
	if o.started {
		return errors.New("orchestrator: already started")
	}

	ctx, cancel := o.runner.WithManagedCancel(context.Background())
	o.lanes = make([]chan remoteop.Completion, o.numLanes)
	for i := range o.lanes {
		lane := make(chan remoteop.Completion, o.laneQueueSize)
		o.lanes[i] = lane
		if err := o.runner.RunC(ctx, fmt.Sprintf("lane-%d", i), func(ctx context.Context) {
			o.consume(ctx, lane)
		}); err != nil {
			cancel()
			o.runner.Stop()
			return err
		}
	}
	if err := o.runner.RunC(ctx, "dispatcher", o.dispatch); err != nil {
		cancel()
		o.runner.Stop()
		return err
	}
	o.cancel = cancel
	o.started = true
	o.logger.Info("started", zap.Int("lanes", len(o.lanes)))
	return nil
}

// Close stops consuming completions. Completions not handled yet are
// dropped; the workflows they belong to stay where they are until resumed.
// Close neither closes the executor nor the node store.
func (o *Orchestrator) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil
	}
	o.closed = true
	if o.started {
		o.cancel()
		o.runner.Stop()
	}
	o.logger.Info("closed")
	return nil
}

func laneKey(c remoteop.Completion) string {
	if c.Request.Kind.Workflow() == types.WorkflowRepair {
		return repairLaneKey
	}
	if c.Request.Node != "" {
		return c.Request.Node
	}
	return c.Request.Target
}

func (o *Orchestrator) laneOf(c remoteop.Completion) chan remoteop.Completion {
	h := fnv.New32a()
	_, _ = h.Write([]byte(laneKey(c)))
	return o.lanes[h.Sum32()%uint32(len(o.lanes))]
}

func (o *Orchestrator) dispatch(ctx context.Context) {
	completions := o.executor.Completions()
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-completions:
			if !ok {
				o.logger.Info("executor closed")
				return
			}
			select {
			case o.laneOf(c) <- c:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (o *Orchestrator) consume(ctx context.Context, lane <-chan remoteop.Completion) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-lane:
			o.HandleCompletion(ctx, c)
		}
	}
}

// HandleCompletion advances the workflow of a completed remote operation.
// Failures are logged and recorded on the nodes involved; they never reach
// the caller.
func (o *Orchestrator) HandleCompletion(ctx context.Context, c remoteop.Completion) {
	wf := c.Request.Kind.Workflow()
	logger := o.logger.With(zap.Stringer("request", c.Request), zap.Stringer("status", c.Status))
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic while handling completion", zap.Any("panic", r), zap.Stack("stack"))
			o.settle(ctx, wf, lifecycle.Aborted)
		}
	}()

	o.metrics.operation(ctx, c.Request.Kind, c.Status)
	if c.Status.Terminal() {
		o.metrics.duration(ctx, c.Request.Kind, c.Duration().Seconds())
	}

	outcome, err := o.machine.Handle(ctx, c)
	if err != nil {
		logger.Warn("workflow stopped", zap.Stringer("outcome", outcome), zap.Error(err))
	}
	o.settle(ctx, wf, outcome)
}
