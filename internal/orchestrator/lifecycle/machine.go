// Package lifecycle drives storage nodes through their deployment,
// undeployment and repair workflows.
//
// Every step of a workflow is a remote operation. Start methods schedule the
// first operation of a phase; Handle advances the workflow when an
// operation completes, either by scheduling the same operation on the next
// pending node, by entering the next phase, or by finishing the workflow. A
// failed or canceled operation stops the workflow and records the failure on
// the nodes involved.
package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kakao/snorch/internal/remoteop"
	"github.com/kakao/snorch/pkg/meta"
	"github.com/kakao/snorch/pkg/types"
	"github.com/kakao/snorch/pkg/verrors"
)

// Outcome tells the caller where a workflow stands after a step.
type Outcome int8

const (
	// Continue means an operation of the workflow is scheduled.
	Continue Outcome = iota
	// Finished means the workflow completed.
	Finished
	// Aborted means the workflow stopped on a failure.
	Aborted
	// Ignored means the completion did not change the workflow.
	Ignored
)

func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case Finished:
		return "finished"
	case Aborted:
		return "aborted"
	case Ignored:
		return "ignored"
	default:
		return fmt.Sprintf("Outcome(%d)", int8(o))
	}
}

// Done returns true if the workflow will not schedule any more operations.
func (o Outcome) Done() bool {
	return o == Finished || o == Aborted
}

// ResourceInventory owns the managed resources backing storage nodes.
type ResourceInventory interface {
	// Detach releases the resource of an uninstalled node.
	Detach(ctx context.Context, sn meta.StorageNode) error
}

type nopInventory struct{}

func (nopInventory) Detach(context.Context, meta.StorageNode) error {
	return nil
}

type Machine struct {
	config
}

func New(opts ...Option) (*Machine, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return &Machine{config: cfg}, nil
}

func (m *Machine) schedule(ctx context.Context, req remoteop.Request) error {
	if req.Timeout <= 0 {
		if timeout, ok := m.timeouts[req.Kind]; ok {
			req.Timeout = timeout
		} else {
			req.Timeout = req.Kind.DefaultTimeout()
		}
	}
	req.Initiator = m.initiator
	id, err := m.executor.Schedule(ctx, req)
	if err != nil {
		return fmt.Errorf("schedule %s: %w", req, err)
	}
	m.logger.Info("scheduled operation",
		zap.Stringer("operation", req.Kind),
		zap.String("target", req.Target),
		zap.String("node", req.Node),
		zap.Stringer("id", id),
	)
	return nil
}

// setMode moves the node to mode and clears the error of its previous
// attempt.
func (m *Machine) setMode(ctx context.Context, addr string, mode types.OperationMode) (meta.StorageNode, error) {
	sn, err := m.store.Update(ctx, addr, func(sn *meta.StorageNode) error {
		sn.Mode = mode
		sn.ClearError()
		return nil
	})
	if err != nil {
		return sn, err
	}
	m.logger.Info("changed operation mode", zap.String("node", addr), zap.Stringer("mode", mode))
	return sn, nil
}

// members returns the NORMAL nodes, failing with a configuration error if
// there are none.
func (m *Machine) members(ctx context.Context, purpose string) ([]meta.StorageNode, error) {
	nodes, err := m.store.FindByMode(ctx, types.ModeNormal)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, verrors.NewConfigurationError("no storage node in NORMAL mode found to %s", purpose)
	}
	return nodes, nil
}

func (m *Machine) clusterParams(ctx context.Context, seeds []string) (remoteop.Params, error) {
	settings, err := m.store.ClusterSettings(ctx)
	if err != nil {
		return remoteop.Params{}, err
	}
	return remoteop.Params{
		Seeds:      seeds,
		CQLPort:    settings.CQLPort,
		GossipPort: settings.GossipPort,
	}, nil
}

// seeds returns the addresses of the members and of the node being added,
// if any.
func seeds(members []meta.StorageNode, addr string) []string {
	addrs := meta.Addresses(members)
	if addr == "" {
		return addrs
	}
	for _, a := range addrs {
		if a == addr {
			return addrs
		}
	}
	return append(addrs, addr)
}

// takeAndSchedule schedules req on the next pending node in the given modes.
// It returns false if no node is pending.
func (m *Machine) takeAndSchedule(ctx context.Context, req remoteop.Request, modes ...types.OperationMode) (bool, error) {
	next, ok, err := m.queue.TakeNext(ctx, modes...)
	if err != nil || !ok {
		return false, err
	}
	if err := m.schedule(ctx, req.Next(next.Address)); err != nil {
		m.queue.Release(next.Address)
		return false, err
	}
	return true, nil
}

// abortMessage is the error recorded on the nodes of a workflow stopped by
// a failed or canceled operation.
func abortMessage(c remoteop.Completion) string {
	verb := "failed"
	if c.Status == types.StatusCanceled {
		verb = "canceled"
	}
	node := c.Request.Node
	if node == "" {
		node = c.Request.Target
	}
	return fmt.Sprintf("%s of %s has been aborted due to %s operation [%s] on %s",
		c.Request.Kind.Workflow(), node, verb, c.Request.Kind, c.Request.Target)
}

// abort stops the workflow of a failed or canceled operation. The failure is
// recorded on the target and on the node moved by the workflow, and the
// target stays pending for a manual retry.
func (m *Machine) abort(ctx context.Context, c remoteop.Completion) error {
	ref := c.Request.Ref()
	msg := abortMessage(c)
	m.queue.Release(c.Request.Target)

	addrs := []string{c.Request.Target}
	if c.Request.Node != "" && c.Request.Node != c.Request.Target {
		addrs = append(addrs, c.Request.Node)
	}
	var errs []error
	for _, addr := range addrs {
		if err := m.recordFailure(ctx, addr, msg, &ref); err != nil {
			errs = append(errs, err)
		}
	}
	m.logger.Warn("aborted workflow",
		zap.String("message", msg),
		zap.String("detail", c.Message),
		zap.Errors("record_errors", errs),
	)
	return &verrors.RemoteOperationError{
		Operation: ref,
		Status:    c.Status,
		Message:   c.Message,
	}
}

func (m *Machine) recordFailure(ctx context.Context, addr, msg string, ref *meta.OperationRef) error {
	_, err := m.store.Update(ctx, addr, func(sn *meta.StorageNode) error {
		sn.ErrorMessage = msg
		if ref != nil {
			failed := *ref
			sn.FailedOperation = &failed
		}
		return nil
	})
	if errors.Is(err, verrors.ErrNotFound) {
		return nil
	}
	return err
}

// fail records err on the node moved by a workflow that could not continue.
func (m *Machine) fail(ctx context.Context, addr string, err error) (Outcome, error) {
	if rerr := m.recordFailure(ctx, addr, err.Error(), nil); rerr != nil {
		m.logger.Warn("could not record failure", zap.String("node", addr), zap.Error(rerr))
	}
	m.logger.Error("workflow failed", zap.String("node", addr), zap.Error(err))
	return Aborted, err
}
