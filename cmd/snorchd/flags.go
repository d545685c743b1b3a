package main

import (
	"github.com/kakao/snorch/internal/flags"
)

const (
	categoryCluster  = "Cluster:"
	categoryStore    = "Node store:"
	categorySession  = "Storage session:"
	categoryExecutor = "Remote operations:"
	categoryRepair   = "Repair:"
	categoryHTTP     = "HTTP:"

	sessionDriverMemory = "memory"
)

var (
	flagClusterID = flags.FlagDesc{
		Name:     "cluster-id",
		Category: categoryCluster,
		Aliases:  []string{"cid"},
		Envs:     []string{"CLUSTER_ID"},
		Usage:    "cluster id",
	}
	flagSeeds = flags.FlagDesc{
		Name:     "seed",
		Category: categoryCluster,
		Aliases:  []string{"seeds"},
		Envs:     []string{"SEEDS"},
		Usage:    "storage nodes registered as cluster members when the node store is empty",
	}
	flagSettingsFile = flags.FlagDesc{
		Name:     "settings-file",
		Category: categoryCluster,
		Aliases:  []string{"settings"},
		Envs:     []string{"SETTINGS_FILE"},
		Usage:    "YAML file of cluster settings applied at start",
	}
	flagLanes = flags.FlagDesc{
		Name:     "lanes",
		Category: categoryCluster,
		Envs:     []string{"LANES"},
		Usage:    "number of lanes processing operation completions",
	}
	flagLaneQueueSize = flags.FlagDesc{
		Name:     "lane-queue-size",
		Category: categoryCluster,
		Envs:     []string{"LANE_QUEUE_SIZE"},
		Usage:    "capacity of each lane",
	}
	flagOperationTimeouts = flags.FlagDesc{
		Name:     "operation-timeout",
		Category: categoryCluster,
		Envs:     []string{"OPERATION_TIMEOUTS"},
		Usage:    "timeout of an operation kind, e.g., repair=8h",
	}

	flagStoreKind = flags.FlagDesc{
		Name:     "store",
		Category: categoryStore,
		Aliases:  []string{"store-kind"},
		Envs:     []string{"STORE", "STORE_KIND"},
		Usage:    "node store backend",
	}
	flagStoreDSN = flags.FlagDesc{
		Name:     "store-dsn",
		Category: categoryStore,
		Envs:     []string{"STORE_DSN"},
		Usage:    "directory of the pebble store or connection string of the postgres store",
	}

	flagSessionDriver = flags.FlagDesc{
		Name:     "session-driver",
		Category: categorySession,
		Envs:     []string{"SESSION_DRIVER"},
		Usage:    "database/sql driver of the storage session, or memory to keep the schema in memory",
	}
	flagSessionDryRun = flags.FlagDesc{
		Name:     "session-dry-run",
		Category: categorySession,
		Envs:     []string{"SESSION_DRY_RUN"},
		Usage:    "apply schema changes to an in-memory model instead of the storage cluster",
	}
	flagSessionDSN = flags.FlagDesc{
		Name:     "session-dsn",
		Category: categorySession,
		Envs:     []string{"SESSION_DSN"},
		Usage:    "connection string of the storage session",
	}
	flagPrimaryKeyspace = flags.FlagDesc{
		Name:     "primary-keyspace",
		Category: categorySession,
		Envs:     []string{"PRIMARY_KEYSPACE"},
	}
	flagAuthKeyspace = flags.FlagDesc{
		Name:     "auth-keyspace",
		Category: categorySession,
		Envs:     []string{"AUTH_KEYSPACE"},
	}
	flagGCGraceTables = flags.FlagDesc{
		Name:     "gc-grace-table",
		Category: categorySession,
		Aliases:  []string{"gc-grace-tables"},
		Envs:     []string{"GC_GRACE_TABLES"},
		Usage:    "tables of the primary keyspace whose gc_grace_seconds follow the cluster size",
	}

	flagAgentPath = flags.FlagDesc{
		Name:     "agent",
		Category: categoryExecutor,
		Aliases:  []string{"agent-path"},
		Envs:     []string{"AGENT", "AGENT_PATH"},
		Usage:    "executable run for every remote operation with the operation kind and target",
	}
	flagAgentEnv = flags.FlagDesc{
		Name:     "agent-env",
		Category: categoryExecutor,
		Envs:     []string{"AGENT_ENV"},
		Usage:    "extra environment of the agent, e.g., KEY=VALUE",
	}
	flagExecutorWorkers = flags.FlagDesc{
		Name:     "executor-workers",
		Category: categoryExecutor,
		Envs:     []string{"EXECUTOR_WORKERS"},
	}
	flagExecutorQueueSize = flags.FlagDesc{
		Name:     "executor-queue-size",
		Category: categoryExecutor,
		Envs:     []string{"EXECUTOR_QUEUE_SIZE"},
	}

	flagRepairInterval = flags.FlagDesc{
		Name:     "repair-interval",
		Category: categoryRepair,
		Envs:     []string{"REPAIR_INTERVAL"},
		Usage:    "period of cluster repairs, zero disables them",
	}
	flagRepairDeadline = flags.FlagDesc{
		Name:     "repair-deadline",
		Category: categoryRepair,
		Envs:     []string{"REPAIR_DEADLINE"},
	}

	flagListen = flags.FlagDesc{
		Name:     "listen",
		Category: categoryHTTP,
		Aliases:  []string{"listen-address"},
		Envs:     []string{"LISTEN", "LISTEN_ADDRESS"},
	}
	flagRequestTimeout = flags.FlagDesc{
		Name:     "request-timeout",
		Category: categoryHTTP,
		Envs:     []string{"REQUEST_TIMEOUT"},
	}
	flagShutdownTimeout = flags.FlagDesc{
		Name:     "shutdown-timeout",
		Category: categoryHTTP,
		Envs:     []string{"SHUTDOWN_TIMEOUT"},
	}
	flagHealthListen = flags.FlagDesc{
		Name:     "health-listen",
		Category: categoryHTTP,
		Envs:     []string{"HEALTH_LISTEN"},
		Usage:    "address of the gRPC health service, empty disables it",
	}
)
