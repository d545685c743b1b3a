package orchestrator

import (
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/kakao/snorch/internal/nodestore"
	"github.com/kakao/snorch/internal/orchestrator/lifecycle"
	"github.com/kakao/snorch/internal/orchestrator/policy"
	"github.com/kakao/snorch/internal/remoteop"
	"github.com/kakao/snorch/internal/session"
	"github.com/kakao/snorch/pkg/types"
)

const (
	DefaultLanes         = 8
	DefaultLaneQueueSize = 64
	DefaultInitiator     = "snorch"
)

type config struct {
	cid           types.ClusterID
	store         nodestore.Store
	executor      remoteop.Executor
	session       session.Session
	inventory     lifecycle.ResourceInventory
	schemaOpts    []policy.SchemaOption
	timeouts      map[types.OperationKind]time.Duration
	numLanes      int
	laneQueueSize int
	initiator     string
	meterProvider metric.MeterProvider
	logger        *zap.Logger
}

func newConfig(opts []Option) (config, error) {
	cfg := config{
		timeouts:      make(map[types.OperationKind]time.Duration),
		numLanes:      DefaultLanes,
		laneQueueSize: DefaultLaneQueueSize,
		initiator:     DefaultInitiator,
		meterProvider: noopmetric.NewMeterProvider(),
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	cfg.logger = cfg.logger.Named("orchestrator").With(zap.Int32("cid", int32(cfg.cid)))
	return cfg, nil
}

func (cfg *config) validate() error {
	if cfg.store == nil {
		return errors.New("orchestrator: no node store")
	}
	if cfg.executor == nil {
		return errors.New("orchestrator: no executor")
	}
	if cfg.session == nil {
		return errors.New("orchestrator: no session")
	}
	if cfg.numLanes < 1 {
		return fmt.Errorf("orchestrator: invalid number of lanes %d", cfg.numLanes)
	}
	if cfg.laneQueueSize < 0 {
		return fmt.Errorf("orchestrator: invalid lane queue size %d", cfg.laneQueueSize)
	}
	if cfg.meterProvider == nil {
		return errors.New("orchestrator: meter provider is nil")
	}
	if cfg.logger == nil {
		return errors.New("orchestrator: logger is nil")
	}
	return nil
}

type Option interface {
	apply(*config)
}

type funcOption struct {
	f func(*config)
}

func newFuncOption(f func(*config)) *funcOption {
	return &funcOption{f: f}
}

func (fo *funcOption) apply(cfg *config) {
	fo.f(cfg)
}

func WithClusterID(cid types.ClusterID) Option {
	return newFuncOption(func(cfg *config) {
		cfg.cid = cid
	})
}

func WithNodeStore(store nodestore.Store) Option {
	return newFuncOption(func(cfg *config) {
		cfg.store = store
	})
}

// WithExecutor sets the executor of remote operations. The orchestrator
// consumes its completions once started.
func WithExecutor(executor remoteop.Executor) Option {
	return newFuncOption(func(cfg *config) {
		cfg.executor = executor
	})
}

func WithSession(sess session.Session) Option {
	return newFuncOption(func(cfg *config) {
		cfg.session = sess
	})
}

func WithResourceInventory(inventory lifecycle.ResourceInventory) Option {
	return newFuncOption(func(cfg *config) {
		cfg.inventory = inventory
	})
}

// WithSchemaOptions sets the keyspaces and tables whose schema follows the
// cluster size. The session is always the one set by WithSession.
func WithSchemaOptions(opts ...policy.SchemaOption) Option {
	return newFuncOption(func(cfg *config) {
		cfg.schemaOpts = opts
	})
}

func WithOperationTimeout(kind types.OperationKind, timeout time.Duration) Option {
	return newFuncOption(func(cfg *config) {
		cfg.timeouts[kind] = timeout
	})
}

// WithLanes sets the number of goroutines handling completions. Completions
// of the same workflow are always handled by the same lane.
func WithLanes(lanes int) Option {
	return newFuncOption(func(cfg *config) {
		cfg.numLanes = lanes
	})
}

func WithLaneQueueSize(size int) Option {
	return newFuncOption(func(cfg *config) {
		cfg.laneQueueSize = size
	})
}

func WithInitiator(initiator string) Option {
	return newFuncOption(func(cfg *config) {
		cfg.initiator = initiator
	})
}

func WithMeterProvider(mp metric.MeterProvider) Option {
	return newFuncOption(func(cfg *config) {
		cfg.meterProvider = mp
	})
}

func WithLogger(logger *zap.Logger) Option {
	return newFuncOption(func(cfg *config) {
		cfg.logger = logger
	})
}
