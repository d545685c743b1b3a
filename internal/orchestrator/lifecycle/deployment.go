package lifecycle

import (
	"context"

	"go.uber.org/zap"

	"github.com/kakao/snorch/internal/remoteop"
	"github.com/kakao/snorch/pkg/types"
)

// StartAnnounce announces the candidate at addr to every NORMAL node, one
// node at a time. The candidate record must exist.
func (m *Machine) StartAnnounce(ctx context.Context, addr string) (Outcome, error) {
	if _, err := m.setMode(ctx, addr, types.ModeAnnounce); err != nil {
		return Aborted, err
	}
	if _, err := m.members(ctx, "announce "+addr+" to"); err != nil {
		return m.fail(ctx, addr, err)
	}
	if err := m.queue.Reset(ctx); err != nil {
		return m.fail(ctx, addr, err)
	}
	if _, err := m.queue.MarkAllPending(ctx, types.ModeNormal); err != nil {
		return m.fail(ctx, addr, err)
	}

	req := remoteop.Request{Kind: types.KindAnnounce, Node: addr}
	ok, err := m.takeAndSchedule(ctx, req, types.ModeNormal)
	if err != nil {
		return m.fail(ctx, addr, err)
	}
	if !ok {
		return m.StartBootstrap(ctx, addr)
	}
	return Continue, nil
}

// StartBootstrap prepares the candidate at addr for bootstrap with the
// cluster members as seeds.
func (m *Machine) StartBootstrap(ctx context.Context, addr string) (Outcome, error) {
	if _, err := m.setMode(ctx, addr, types.ModeBootstrap); err != nil {
		return Aborted, err
	}
	members, err := m.members(ctx, "bootstrap "+addr+" from")
	if err != nil {
		return m.fail(ctx, addr, err)
	}
	params, err := m.clusterParams(ctx, seeds(members, addr))
	if err != nil {
		return m.fail(ctx, addr, err)
	}

	err = m.schedule(ctx, remoteop.Request{
		Kind:   types.KindPrepareForBootstrap,
		Target: addr,
		Node:   addr,
		Params: params,
	})
	if err != nil {
		return m.fail(ctx, addr, err)
	}
	return Continue, nil
}

// StartAddMaintenance updates the schema for the grown cluster and runs
// the add node maintenance on every member and on the candidate at addr.
func (m *Machine) StartAddMaintenance(ctx context.Context, addr string) (Outcome, error) {
	if _, err := m.setMode(ctx, addr, types.ModeAddMaintenance); err != nil {
		return Aborted, err
	}
	members, err := m.members(ctx, "add "+addr+" to")
	if err != nil {
		return m.fail(ctx, addr, err)
	}
	runRepair, err := m.schema.UpdateSchemaIfNecessary(ctx, len(members), len(members)+1)
	if err != nil {
		return m.fail(ctx, addr, err)
	}
	params, err := m.clusterParams(ctx, seeds(members, addr))
	if err != nil {
		return m.fail(ctx, addr, err)
	}
	params.RunRepair = runRepair

	if err := m.queue.Reset(ctx); err != nil {
		return m.fail(ctx, addr, err)
	}
	if _, err := m.queue.MarkAllPending(ctx, types.ModeNormal, types.ModeAddMaintenance); err != nil {
		return m.fail(ctx, addr, err)
	}
	m.logger.Info("running add node maintenance",
		zap.String("node", addr),
		zap.Strings("seeds", params.Seeds),
		zap.Bool("run_repair", runRepair),
	)

	req := remoteop.Request{Kind: types.KindAddNodeMaintenance, Node: addr, Params: params}
	if _, err := m.takeAndSchedule(ctx, req, types.ModeNormal, types.ModeAddMaintenance); err != nil {
		return m.fail(ctx, addr, err)
	}
	return Continue, nil
}

func (m *Machine) handleAnnounce(ctx context.Context, c remoteop.Completion) (Outcome, error) {
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
	m.logger.Info("announced", zap.String("node", node))
	return m.StartBootstrap(ctx, node)
}

func (m *Machine) handlePrepareForBootstrap(ctx context.Context, c remoteop.Completion) (Outcome, error) {
	return m.StartAddMaintenance(ctx, c.Request.Node)
}

func (m *Machine) handleAddNodeMaintenance(ctx context.Context, c remoteop.Completion) (Outcome, error) {
	node := c.Request.Node
	if err := m.queue.Done(ctx, c.Request.Target); err != nil {
		return m.fail(ctx, node, err)
	}
	ok, err := m.takeAndSchedule(ctx, c.Request, types.ModeNormal, types.ModeAddMaintenance)
	if err != nil {
		return m.fail(ctx, node, err)
	}
	if ok {
		return Continue, nil
	}
	if _, err := m.setMode(ctx, node, types.ModeNormal); err != nil {
		return m.fail(ctx, node, err)
	}
	m.logger.Info("deployed", zap.String("node", node))
	return Finished, nil
}
