package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kakao/snorch/internal/httpapi"
	"github.com/kakao/snorch/internal/nodestore"
	"github.com/kakao/snorch/internal/orchestrator"
	"github.com/kakao/snorch/internal/orchestrator/repairscheduler"
	"github.com/kakao/snorch/internal/remoteop"
	"github.com/kakao/snorch/internal/session"
)

const initTimeout = time.Minute

type daemonConfig struct {
	storeKind       string
	storeDSN        string
	sessionDriver   string
	sessionDSN      string
	primaryKeyspace string
	authKeyspace    string
	seeds           []string
	settings        *settingsFile
	agentPath       string
	agentEnv        []string
	repairInterval  time.Duration
	repairDeadline  time.Duration
	shutdownTimeout time.Duration
	healthListen    string

	orchestratorOpts []orchestrator.Option
	executorOpts     []remoteop.Option
	httpOpts         []httpapi.Option
}

func Main(ctx context.Context, cfg daemonConfig, logger *zap.Logger) (err error) {
	initCtx, cancel := context.WithTimeout(ctx, initTimeout)
	defer cancel()

	store, err := nodestore.Open(initCtx, cfg.storeKind, cfg.storeDSN, nodestore.WithLogger(logger))
	if err != nil {
		logger.Error("could not open node store", zap.String("kind", cfg.storeKind), zap.Error(err))
		return err
	}
	defer func() {
		err = multierr.Append(err, store.Close())
	}()

	sess, closeSession, err := openSession(initCtx, cfg)
	if err != nil {
		logger.Error("could not open storage session", zap.String("driver", cfg.sessionDriver), zap.Error(err))
		return err
	}
	defer func() {
		err = multierr.Append(err, closeSession())
	}()

	executor, err := remoteop.NewLocalExecutor(append([]remoteop.Option{
		remoteop.WithAgent(&remoteop.CommandAgent{Path: cfg.agentPath, Env: cfg.agentEnv}),
		remoteop.WithLogger(logger),
	}, cfg.executorOpts...)...)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, executor.Close())
	}()

	orch, err := orchestrator.New(append([]orchestrator.Option{
		orchestrator.WithNodeStore(store),
		orchestrator.WithExecutor(executor),
		orchestrator.WithSession(session.WithLogging(sess, logger)),
		orchestrator.WithLogger(logger),
	}, cfg.orchestratorOpts...)...)
	if err != nil {
		logger.Error("could not create orchestrator", zap.Error(err))
		return err
	}
	if err := orch.Init(initCtx, cfg.seeds); err != nil {
		return err
	}
	if err := orch.Start(); err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, orch.Close())
	}()

	if cfg.settings != nil {
		if err := orch.UpdateClusterSettings(initCtx, cfg.settings.ClusterSettings, cfg.settings.Password); err != nil {
			logger.Error("could not apply settings file", zap.Error(err))
			return err
		}
	}

	scheduler, err := repairscheduler.New(
		repairscheduler.WithRepairer(orch),
		repairscheduler.WithInterval(cfg.repairInterval),
		repairscheduler.WithDeadline(cfg.repairDeadline),
		repairscheduler.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	if err := scheduler.Start(); err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, scheduler.Stop())
	}()

	server, err := httpapi.New(append([]httpapi.Option{
		httpapi.WithService(orch),
		httpapi.WithLogger(logger),
	}, cfg.httpOpts...)...)
	if err != nil {
		return err
	}

	var hs *healthServer
	if cfg.healthListen != "" {
		hs, err = newHealthServer(cfg.healthListen, logger)
		if err != nil {
			return err
		}
	}
	stopHealth := func() {
		if hs != nil {
			hs.stop()
		}
	}

	var g errgroup.Group
	quit := make(chan struct{})
	sigC := make(chan os.Signal, 1)
	signal.Notify(sigC, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigC)

	if hs != nil {
		g.Go(hs.serve)
	}
	g.Go(func() error {
		defer close(quit)
		return server.ListenAndServe()
	})
	g.Go(func() error {
		select {
		case sig := <-sigC:
			logger.Info("caught signal", zap.Stringer("signal", sig))
			stopHealth()
			ctx, cancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
			defer cancel()
			return server.Shutdown(ctx)
		case <-quit:
			stopHealth()
			return nil
		}
	})
	return g.Wait()
}

// openSession opens the storage session. The memory driver keeps the schema
// in memory, which is useful to try out workflows without a storage cluster.
func openSession(ctx context.Context, cfg daemonConfig) (session.Session, func() error, error) {
	if cfg.sessionDriver == sessionDriverMemory {
		sess := session.NewMemorySession(cfg.primaryKeyspace, cfg.authKeyspace)
		return sess, func() error { return nil }, nil
	}
	sess, err := session.OpenSQL(ctx, cfg.sessionDriver, cfg.sessionDSN)
	if err != nil {
		return nil, nil, err
	}
	return sess, sess.Close, nil
}
