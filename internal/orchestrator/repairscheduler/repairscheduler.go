// Package repairscheduler repairs the storage cluster periodically.
package repairscheduler

//go:generate mockgen -build_flags -mod=vendor -self_package github.com/kakao/snorch/internal/orchestrator/repairscheduler -package repairscheduler -destination repairscheduler_mock.go . Repairer

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kakao/snorch/pkg/util/runner"
	"github.com/kakao/snorch/pkg/verrors"
)

type Repairer interface {
	// RepairCluster starts a repair of every NORMAL node. It returns
	// verrors.ErrWorkflowInProgress if another workflow runs.
	RepairCluster(ctx context.Context) error
}

// Scheduler starts a cluster repair every interval. A repair is skipped if
// another cluster-wide workflow is in flight when it is due.
type Scheduler struct {
	config

	runner *runner.Runner
	cancel context.CancelFunc
}

func New(opts ...Option) (*Scheduler, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		config: cfg,
		runner: runner.New("repairscheduler", cfg.logger),
	}, nil
}

func (s *Scheduler) Start() error {
	if s.interval == 0 {
		s.logger.Info("periodic repair disabled")
		return nil
	}
	cancel, err := s.runner.Run("repair", s.run)
	if err != nil {
		return err
	}
	s.cancel = cancel
	s.logger.Info("periodic repair enabled", zap.Duration("interval", s.interval))
	return nil
}

func (s *Scheduler) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	s.runner.Stop()
	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.repair(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) repair(ctx context.Context) {
	if s.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.deadline)
		defer cancel()
	}

	err := s.repairer.RepairCluster(ctx)
	switch {
	case err == nil:
		s.logger.Info("started periodic repair")
	case errors.Is(err, verrors.ErrWorkflowInProgress):
		s.logger.Info("skipped periodic repair", zap.Error(err))
	default:
		s.logger.Warn("could not start periodic repair", zap.Error(err))
	}
}
