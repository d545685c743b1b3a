package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kakao/snorch/internal/buildinfo"
	"github.com/kakao/snorch/internal/flags"
	"github.com/kakao/snorch/internal/httpapi"
	"github.com/kakao/snorch/internal/nodestore"
	"github.com/kakao/snorch/internal/orchestrator"
	"github.com/kakao/snorch/internal/orchestrator/policy"
	"github.com/kakao/snorch/internal/remoteop"
	"github.com/kakao/snorch/internal/session"
	"github.com/kakao/snorch/internal/stats/opentelemetry"
	"github.com/kakao/snorch/pkg/types"
	"github.com/kakao/snorch/pkg/util/log"
)

const (
	defaultRepairInterval  = 7 * 24 * time.Hour
	defaultRepairDeadline  = time.Minute
	defaultShutdownTimeout = 10 * time.Second
	defaultHealthListen    = "127.0.0.1:9094"
)

func newApp() *cli.App {
	buildInfo := buildinfo.ReadVersionInfo()
	cli.VersionPrinter = func(*cli.Context) {
		fmt.Println(buildInfo.String())
	}
	return &cli.App{
		Name:    "snorchd",
		Usage:   "run storage node orchestrator",
		Version: buildInfo.Version,
		Commands: []*cli.Command{
			newStartCommand(),
		},
	}
}

func newStartCommand() *cli.Command {
	cmdFlags := []cli.Flag{
		flagClusterID.StringFlag(false, types.ClusterID(1).String()),
		flagSeeds.StringSliceFlag(false, nil),
		flagSettingsFile.StringFlag(false, ""),
		flagLanes.PositiveIntFlag(false, orchestrator.DefaultLanes),
		flagLaneQueueSize.PositiveIntFlag(false, orchestrator.DefaultLaneQueueSize),
		flagOperationTimeouts.StringSliceFlag(false, nil),

		flagStoreKind.ChoiceFlag(false, nodestore.KindPebble, nodestore.KindMemory, nodestore.KindPebble, nodestore.KindPostgres),
		flagStoreDSN.StringFlag(false, "snorch-data"),

		flagSessionDriver.StringFlag(false, "postgres"),
		flagSessionDSN.StringFlag(false, ""),
		flagSessionDryRun.BoolFlag(),
		flagPrimaryKeyspace.StringFlag(false, session.DefaultPrimaryKeyspace),
		flagAuthKeyspace.StringFlag(false, session.DefaultAuthKeyspace),
		flagGCGraceTables.StringSliceFlag(false, session.DefaultGCGraceTables),

		flagAgentPath.StringFlag(true, ""),
		flagAgentEnv.StringSliceFlag(false, nil),
		flagExecutorWorkers.PositiveIntFlag(false, remoteop.DefaultWorkers),
		flagExecutorQueueSize.PositiveIntFlag(false, remoteop.DefaultQueueSize),

		flagRepairInterval.DurationFlag(false, defaultRepairInterval),
		flagRepairDeadline.DurationFlag(false, defaultRepairDeadline),

		flagListen.StringFlag(false, httpapi.DefaultListenAddress),
		flagRequestTimeout.DurationFlag(false, httpapi.DefaultRequestTimeout),
		flagShutdownTimeout.DurationFlag(false, defaultShutdownTimeout),
		flagHealthListen.StringFlag(false, defaultHealthListen),
	}
	cmdFlags = append(cmdFlags, flags.LoggerFlags()...)
	cmdFlags = append(cmdFlags, flags.TelemetryFlags()...)

	return &cli.Command{
		Name:    "start",
		Aliases: []string{"s"},
		Usage:   "start [flags]",
		Action:  start,
		Flags:   cmdFlags,
	}
}

func start(c *cli.Context) error {
	clusterID, err := types.ParseClusterID(c.String(flagClusterID.Name))
	if err != nil {
		return err
	}

	logOpts, err := flags.ParseLoggerFlags(c, "snorchd.log")
	if err != nil {
		return err
	}
	logger, err := log.New(logOpts...)
	if err != nil {
		return err
	}
	logger = logger.Named("snorchd").With(zap.Int32("cid", int32(clusterID)))
	defer func() {
		_ = logger.Sync()
	}()

	meterProviderOpts, err := flags.ParseTelemetryFlags(context.Background(), c, "snorchd", clusterID.String())
	if err != nil {
		return err
	}
	mp, stop, err := opentelemetry.NewMeterProvider(meterProviderOpts...)
	if err != nil {
		return err
	}
	opentelemetry.SetGlobalMeterProvider(mp)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.Duration(flags.TelemetryExporterStopTimeout.Name))
		defer cancel()
		_ = stop(ctx)
	}()

	timeouts, err := parseOperationTimeouts(c.StringSlice(flagOperationTimeouts.Name))
	if err != nil {
		return err
	}

	var settings *settingsFile
	if path := c.String(flagSettingsFile.Name); path != "" {
		settings, err = loadSettings(path)
		if err != nil {
			return err
		}
	}

	sessionDriver := c.String(flagSessionDriver.Name)
	if c.Bool(flagSessionDryRun.Name) {
		sessionDriver = sessionDriverMemory
	}

	cfg := daemonConfig{
		storeKind:       c.String(flagStoreKind.Name),
		storeDSN:        c.String(flagStoreDSN.Name),
		sessionDriver:   sessionDriver,
		sessionDSN:      c.String(flagSessionDSN.Name),
		primaryKeyspace: c.String(flagPrimaryKeyspace.Name),
		authKeyspace:    c.String(flagAuthKeyspace.Name),
		seeds:           c.StringSlice(flagSeeds.Name),
		settings:        settings,
		agentPath:       c.String(flagAgentPath.Name),
		agentEnv:        c.StringSlice(flagAgentEnv.Name),
		repairInterval:  c.Duration(flagRepairInterval.Name),
		repairDeadline:  c.Duration(flagRepairDeadline.Name),
		shutdownTimeout: c.Duration(flagShutdownTimeout.Name),
		healthListen:    c.String(flagHealthListen.Name),
		orchestratorOpts: []orchestrator.Option{
			orchestrator.WithClusterID(clusterID),
			orchestrator.WithSchemaOptions(
				policy.WithKeyspaces(c.String(flagPrimaryKeyspace.Name), c.String(flagAuthKeyspace.Name)),
				policy.WithGCGraceTables(c.StringSlice(flagGCGraceTables.Name)...),
			),
			orchestrator.WithLanes(c.Int(flagLanes.Name)),
			orchestrator.WithLaneQueueSize(c.Int(flagLaneQueueSize.Name)),
			orchestrator.WithMeterProvider(mp),
		},
		executorOpts: []remoteop.Option{
			remoteop.WithWorkers(c.Int(flagExecutorWorkers.Name)),
			remoteop.WithQueueSize(c.Int(flagExecutorQueueSize.Name)),
		},
		httpOpts: []httpapi.Option{
			httpapi.WithListenAddress(c.String(flagListen.Name)),
			httpapi.WithRequestTimeout(c.Duration(flagRequestTimeout.Name)),
		},
	}
	for kind, timeout := range timeouts {
		cfg.orchestratorOpts = append(cfg.orchestratorOpts, orchestrator.WithOperationTimeout(kind, timeout))
	}
	return Main(c.Context, cfg, logger)
}

// parseOperationTimeouts parses values like "repair=8h".
func parseOperationTimeouts(values []string) (map[types.OperationKind]time.Duration, error) {
	timeouts := make(map[types.OperationKind]time.Duration, len(values))
	for _, value := range values {
		name, d, ok := strings.Cut(value, "=")
		if !ok {
			return nil, fmt.Errorf("invalid value \"%s\" for flag --%s", value, flagOperationTimeouts.Name)
		}
		kind, err := types.ParseOperationKind(name)
		if err != nil {
			return nil, err
		}
		timeout, err := time.ParseDuration(d)
		if err != nil {
			return nil, err
		}
		if timeout <= 0 {
			return nil, fmt.Errorf("invalid timeout %s for %s", d, kind)
		}
		timeouts[kind] = timeout
	}
	return timeouts, nil
}
