package lifecycle

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/kakao/snorch/internal/remoteop"
	"github.com/kakao/snorch/pkg/types"
	"github.com/kakao/snorch/pkg/verrors"
)

// StartDecommission decommissions the node at addr on the node itself.
func (m *Machine) StartDecommission(ctx context.Context, addr string) (Outcome, error) {
	if _, err := m.setMode(ctx, addr, types.ModeDecommission); err != nil {
		return Aborted, err
	}
	err := m.schedule(ctx, remoteop.Request{
		Kind:   types.KindDecommission,
		Target: addr,
		Node:   addr,
	})
	if err != nil {
		return m.fail(ctx, addr, err)
	}
	return Continue, nil
}

// StartRemoveMaintenance updates the schema for the shrunk cluster and runs
// the remove node maintenance on every remaining member.
func (m *Machine) StartRemoveMaintenance(ctx context.Context, addr string) (Outcome, error) {
	if _, err := m.setMode(ctx, addr, types.ModeRemoveMaintenance); err != nil {
		return Aborted, err
	}
	members, err := m.members(ctx, "remove "+addr+" from")
	if err != nil {
		return m.fail(ctx, addr, err)
	}
	runRepair, err := m.schema.UpdateSchemaIfNecessary(ctx, len(members)+1, len(members))
	if err != nil {
		return m.fail(ctx, addr, err)
	}
	params, err := m.clusterParams(ctx, seeds(members, ""))
	if err != nil {
		return m.fail(ctx, addr, err)
	}
	params.RunRepair = runRepair

	if err := m.queue.Reset(ctx); err != nil {
		return m.fail(ctx, addr, err)
	}
	if _, err := m.queue.MarkAllPending(ctx, types.ModeNormal); err != nil {
		return m.fail(ctx, addr, err)
	}
	m.logger.Info("running remove node maintenance",
		zap.String("node", addr),
		zap.Strings("seeds", params.Seeds),
		zap.Bool("run_repair", runRepair),
	)

	req := remoteop.Request{Kind: types.KindRemoveNodeMaintenance, Node: addr, Params: params}
	ok, err := m.takeAndSchedule(ctx, req, types.ModeNormal)
	if err != nil {
		return m.fail(ctx, addr, err)
	}
	if !ok {
		return m.StartUnannounce(ctx, addr)
	}
	return Continue, nil
}

// StartUnannounce removes the node at addr from the view of every NORMAL
// node, one node at a time.
func (m *Machine) StartUnannounce(ctx context.Context, addr string) (Outcome, error) {
	if _, err := m.setMode(ctx, addr, types.ModeUnannounce); err != nil {
		return Aborted, err
	}
	if _, err := m.members(ctx, "unannounce "+addr+" from"); err != nil {
		return m.fail(ctx, addr, err)
	}
	if err := m.queue.Reset(ctx); err != nil {
		return m.fail(ctx, addr, err)
	}
	if _, err := m.queue.MarkAllPending(ctx, types.ModeNormal); err != nil {
		return m.fail(ctx, addr, err)
	}

	req := remoteop.Request{Kind: types.KindUnannounce, Node: addr}
	ok, err := m.takeAndSchedule(ctx, req, types.ModeNormal)
	if err != nil {
		return m.fail(ctx, addr, err)
	}
	if !ok {
		return m.StartUninstall(ctx, addr)
	}
	return Continue, nil
}

// StartUninstall uninstalls the node at addr. A node without a managed
// resource has nothing to uninstall and is removed at once.
func (m *Machine) StartUninstall(ctx context.Context, addr string) (Outcome, error) {
	sn, err := m.setMode(ctx, addr, types.ModeUninstall)
	if err != nil {
		return Aborted, err
	}
	if !sn.HasResource() {
		return m.finalizeRemoval(ctx, addr)
	}
	err = m.schedule(ctx, remoteop.Request{
		Kind:   types.KindUninstall,
		Target: addr,
		Node:   addr,
	})
	if err != nil {
		return m.fail(ctx, addr, err)
	}
	return Continue, nil
}

// finalizeRemoval deletes the record of the node at addr and detaches its
// managed resource.
func (m *Machine) finalizeRemoval(ctx context.Context, addr string) (Outcome, error) {
	sn, err := m.store.Find(ctx, addr)
	if errors.Is(err, verrors.ErrNotFound) {
		return Finished, nil
	}
	if err != nil {
		return m.fail(ctx, addr, err)
	}
	if err := m.store.Remove(ctx, addr); err != nil && !errors.Is(err, verrors.ErrNotFound) {
		return m.fail(ctx, addr, err)
	}
	if sn.HasResource() {
		if err := m.inventory.Detach(ctx, sn); err != nil {
			m.logger.Warn("could not detach resource",
				zap.String("node", addr),
				zap.Int64("resource", int64(sn.ResourceID)),
				zap.Error(err),
			)
		}
	}
	m.logger.Info("undeployed", zap.String("node", addr))
	return Finished, nil
}

func (m *Machine) handleDecommission(ctx context.Context, c remoteop.Completion) (Outcome, error) {
	return m.StartRemoveMaintenance(ctx, c.Request.Node)
}

func (m *Machine) handleRemoveNodeMaintenance(ctx context.Context, c remoteop.Completion) (Outcome, error) {
	node := c.Request.Node
	if err := m.queue.Done(ctx, c.Request.Target); err != nil {
		return m.fail(ctx, node, err)
	}
	ok, err := m.takeAndSchedule(ctx, c.Request, types.ModeNormal)
	if err != nil {
		return m.fail(ctx, node, err)
	}
	if ok {
		return Continue, nil
	}
	return m.StartUnannounce(ctx, node)
}

func (m *Machine) handleUnannounce(ctx context.Context, c remoteop.Completion) (Outcome, error) {
	node := c.Request.Node
	if err := m.queue.Done(ctx, c.Request.Target); err != nil {
		return m.fail(ctx, node, err)
	}
	ok, err := m.takeAndSchedule(ctx, c.Request, types.ModeNormal)
	if err != nil {
		return m.fail(ctx, node, err)
	}
	if ok {
		return Continue, nil
	}
	return m.StartUninstall(ctx, node)
}

func (m *Machine) handleUninstall(ctx context.Context, c remoteop.Completion) (Outcome, error) {
	return m.finalizeRemoval(ctx, c.Request.Node)
}
