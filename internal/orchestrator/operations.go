package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kakao/snorch/internal/orchestrator/lifecycle"
	"github.com/kakao/snorch/internal/orchestrator/policy"
	"github.com/kakao/snorch/internal/session"
	"github.com/kakao/snorch/pkg/meta"
	"github.com/kakao/snorch/pkg/types"
	"github.com/kakao/snorch/pkg/verrors"
)

// clusterSize returns the number of NORMAL nodes.
func (o *Orchestrator) clusterSize(ctx context.Context) (int, error) {
	members, err := o.store.FindByMode(ctx, types.ModeNormal)
	if err != nil {
		return 0, err
	}
	if len(members) == 0 {
		return 0, verrors.NewConfigurationError("no storage node in NORMAL mode found")
	}
	return len(members), nil
}

// ensureNoStrandedMaintenance fails if a repair that did not finish left
// nodes in MAINTENANCE. Those nodes are ring members that the membership
// workflows would skip, so the schema would follow a wrong cluster size.
// It leaves the check to acquire while a workflow is in flight.
func (o *Orchestrator) ensureNoStrandedMaintenance(ctx context.Context) error {
	if o.activeWorkflow() != nil {
		return nil
	}
	stranded, err := o.store.FindByMode(ctx, types.ModeMaintenance)
	if err != nil {
		return err
	}
	if len(stranded) > 0 {
		return verrors.NewPreconditionError("storage nodes %v are in MAINTENANCE mode, repair them before changing the cluster membership",
			meta.Addresses(stranded))
	}
	return nil
}

// AddNode deploys the candidate into the cluster. A candidate left in the
// middle of a deployment resumes from the phase it stopped in.
func (o *Orchestrator) AddNode(ctx context.Context, candidate meta.StorageNode) error {
	addr := candidate.Address
	if addr == "" {
		return fmt.Errorf("orchestrator: no address: %w", verrors.ErrInvalid)
	}

	existing, err := o.store.Find(ctx, addr)
	found := err == nil
	if err != nil && !errors.Is(err, verrors.ErrNotFound) {
		return err
	}
	if found {
		if existing.IsClusterMember() {
			return fmt.Errorf("orchestrator: %s is %s: %w", addr, existing.Mode, verrors.ErrAlreadyDeployed)
		}
		if !existing.CanBeDeployed() {
			return verrors.NewPreconditionError("storage node %s is being undeployed (%s)", addr, existing.Mode)
		}
	}
	if err := o.ensureNoStrandedMaintenance(ctx); err != nil {
		return err
	}

	size, err := o.clusterSize(ctx)
	if err != nil {
		return err
	}
	if err := policy.Validate(size, size+1); err != nil {
		return err
	}

	if err := o.acquire(ctx, types.WorkflowDeployment, addr); err != nil {
		return err
	}

	mode := types.ModeAnnounce
	if found {
		mode = existing.Mode
		if candidate.HasResource() && candidate.ResourceID != existing.ResourceID {
			_, err = o.store.Update(ctx, addr, func(sn *meta.StorageNode) error {
				sn.ResourceID = candidate.ResourceID
				return nil
			})
		}
	} else {
		_, err = o.store.Merge(ctx, meta.StorageNode{
			Address:    addr,
			Mode:       types.ModeAnnounce,
			ResourceID: candidate.ResourceID,
		})
	}
	if err != nil {
		o.release(ctx, types.WorkflowDeployment, lifecycle.Aborted)
		return err
	}

	var outcome lifecycle.Outcome
	switch mode {
	case types.ModeBootstrap:
		outcome, err = o.machine.StartBootstrap(ctx, addr)
	case types.ModeAddMaintenance:
		outcome, err = o.machine.StartAddMaintenance(ctx, addr)
	default:
		outcome, err = o.machine.StartAnnounce(ctx, addr)
	}
	o.settle(ctx, types.WorkflowDeployment, outcome)
	return err
}

// RemoveNode undeploys the node at addr from the cluster. A node left in the
// middle of an undeployment resumes from the phase it stopped in; a node
// that never joined is unannounced.
func (o *Orchestrator) RemoveNode(ctx context.Context, addr string) error {
	sn, err := o.store.Find(ctx, addr)
	if err != nil {
		return err
	}

	if !sn.CanBeUndeployed() {
		return verrors.NewPreconditionError("storage node %s cannot be undeployed in %s mode", addr, sn.Mode)
	}
	if err := o.ensureNoStrandedMaintenance(ctx); err != nil {
		return err
	}

	switch sn.Mode {
	case types.ModeNormal, types.ModeAddMaintenance, types.ModeDecommission, types.ModeRemoveMaintenance:
		size, err := o.clusterSize(ctx)
		if err != nil {
			return err
		}
		if sn.Mode != types.ModeNormal {
			size++
		}
		if err := policy.Validate(size, size-1); err != nil {
			return err
		}
	}

	if err := o.acquire(ctx, types.WorkflowUndeployment, addr); err != nil {
		return err
	}

	var outcome lifecycle.Outcome
	switch sn.Mode {
	case types.ModeNormal, types.ModeAddMaintenance, types.ModeDecommission:
		outcome, err = o.machine.StartDecommission(ctx, addr)
	case types.ModeRemoveMaintenance:
		outcome, err = o.machine.StartRemoveMaintenance(ctx, addr)
	case types.ModeUninstall:
		outcome, err = o.machine.StartUninstall(ctx, addr)
	default:
		outcome, err = o.machine.StartUnannounce(ctx, addr)
	}
	o.settle(ctx, types.WorkflowUndeployment, outcome)
	return err
}

// RunRepair repairs the nodes at addrs one at a time. It does nothing if
// addrs is empty.
func (o *Orchestrator) RunRepair(ctx context.Context, addrs []string) error {
	if len(addrs) == 0 {
		return nil
	}
	for _, addr := range addrs {
		sn, err := o.store.Find(ctx, addr)
		if err != nil {
			return err
		}
		if sn.Mode != types.ModeNormal && sn.Mode != types.ModeMaintenance {
			return verrors.NewPreconditionError("storage node %s cannot be repaired in %s mode", addr, sn.Mode)
		}
	}

	if err := o.acquire(ctx, types.WorkflowRepair, ""); err != nil {
		return err
	}
	outcome, err := o.machine.StartRepair(ctx, addrs)
	o.settle(ctx, types.WorkflowRepair, outcome)
	return err
}

// RepairCluster repairs every NORMAL node.
func (o *Orchestrator) RepairCluster(ctx context.Context) error {
	members, err := o.store.FindByMode(ctx, types.ModeNormal)
	if err != nil {
		return err
	}
	return o.RunRepair(ctx, meta.Addresses(members))
}

// UpdateClusterSettings saves the cluster settings. A new password is set on
// the storage cluster before the settings are saved, and the settings are
// not saved if that fails. Changed ports are pushed to every NORMAL node.
func (o *Orchestrator) UpdateClusterSettings(ctx context.Context, settings meta.ClusterSettings, newPassword string) error {
	if settings.CQLPort <= 0 || settings.GossipPort <= 0 {
		return fmt.Errorf("orchestrator: invalid ports %d, %d: %w", settings.CQLPort, settings.GossipPort, verrors.ErrInvalid)
	}
	if settings.Username == "" {
		settings.Username = meta.DefaultUsername
	}

	current, err := o.store.ClusterSettings(ctx)
	if err != nil {
		return err
	}
	settings.PasswordHash = current.PasswordHash
	if newPassword != "" {
		hash := meta.HashPassword(newPassword)
		if hash != current.PasswordHash || settings.Username != current.Username {
			if err := o.session.Execute(ctx, session.AlterUserPassword(settings.Username, newPassword)); err != nil {
				return fmt.Errorf("orchestrator: update password of %s: %w", settings.Username, err)
			}
			o.logger.Info("updated storage password", zap.String("username", settings.Username))
		}
		settings.PasswordHash = hash
	}

	if err := o.store.SaveClusterSettings(ctx, settings); err != nil {
		return err
	}
	o.logger.Info("saved cluster settings",
		zap.Int("cql_port", settings.CQLPort),
		zap.Int("gossip_port", settings.GossipPort),
		zap.Bool("automatic_deployment", settings.AutomaticDeployment),
	)

	if !current.PortsChanged(settings) {
		return nil
	}
	_, err = o.machine.StartReconfiguration(ctx)
	return err
}
