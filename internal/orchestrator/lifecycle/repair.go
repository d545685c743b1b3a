package lifecycle

import (
	"context"

	"go.uber.org/zap"

	"github.com/kakao/snorch/internal/remoteop"
	"github.com/kakao/snorch/pkg/meta"
	"github.com/kakao/snorch/pkg/types"
)

// repairNode is the node key of repair requests. A repair moves every node
// of the cluster in turn rather than a single one.
const repairNode = ""

// StartRepair repairs the nodes at addrs one at a time. Every node is put in
// MAINTENANCE while it is repaired and back in NORMAL afterwards. Nodes left
// in MAINTENANCE by an aborted repair are repaired again; nodes in any other
// mode are skipped.
func (m *Machine) StartRepair(ctx context.Context, addrs []string) (Outcome, error) {
	if len(addrs) == 0 {
		return Finished, nil
	}
	if err := m.queue.Reset(ctx); err != nil {
		return Aborted, err
	}
	if _, err := m.queue.MarkPending(ctx, addrs...); err != nil {
		return Aborted, err
	}
	m.logger.Info("running repair", zap.Strings("nodes", addrs))
	return m.repairNext(ctx)
}

func (m *Machine) repairNext(ctx context.Context) (Outcome, error) {
	next, ok, err := m.queue.TakeNext(ctx, types.ModeNormal, types.ModeMaintenance)
	if err != nil {
		return Aborted, err
	}
	if !ok {
		m.logger.Info("repaired")
		return Finished, nil
	}
	if _, err := m.setMode(ctx, next.Address, types.ModeMaintenance); err != nil {
		m.queue.Release(next.Address)
		return Aborted, err
	}
	err = m.schedule(ctx, remoteop.Request{
		Kind:   types.KindRepair,
		Target: next.Address,
		Node:   repairNode,
	})
	if err != nil {
		m.queue.Release(next.Address)
		return m.fail(ctx, next.Address, err)
	}
	return Continue, nil
}

func (m *Machine) handleRepair(ctx context.Context, c remoteop.Completion) (Outcome, error) {
	target := c.Request.Target
	if _, err := m.setMode(ctx, target, types.ModeNormal); err != nil {
		return m.fail(ctx, target, err)
	}
	if err := m.queue.Done(ctx, target); err != nil {
		return m.fail(ctx, target, err)
	}
	return m.repairNext(ctx)
}

// StartReconfiguration pushes the cluster settings to every NORMAL node.
// The nodes are updated independently.
func (m *Machine) StartReconfiguration(ctx context.Context) (Outcome, error) {
	members, err := m.members(ctx, "reconfigure")
	if err != nil {
		return Aborted, err
	}
	params, err := m.clusterParams(ctx, meta.Addresses(members))
	if err != nil {
		return Aborted, err
	}
	for _, sn := range members {
		err := m.schedule(ctx, remoteop.Request{
			Kind:   types.KindUpdateConfiguration,
			Target: sn.Address,
			Node:   sn.Address,
			Params: params.Clone(),
		})
		if err != nil {
			return m.fail(ctx, sn.Address, err)
		}
	}
	return Continue, nil
}

func (m *Machine) handleUpdateConfiguration(ctx context.Context, c remoteop.Completion) (Outcome, error) {
	_, err := m.store.Update(ctx, c.Request.Target, func(sn *meta.StorageNode) error {
		sn.ClearError()
		return nil
	})
	if err != nil {
		return Aborted, err
	}
	return Finished, nil
}
