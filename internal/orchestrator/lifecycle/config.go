package lifecycle

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kakao/snorch/internal/nodestore"
	"github.com/kakao/snorch/internal/orchestrator/maintqueue"
	"github.com/kakao/snorch/internal/orchestrator/policy"
	"github.com/kakao/snorch/internal/remoteop"
	"github.com/kakao/snorch/pkg/types"
)

type config struct {
	store     nodestore.Store
	queue     *maintqueue.Queue
	executor  remoteop.Executor
	schema    *policy.Schema
	inventory ResourceInventory
	initiator string
	timeouts  map[types.OperationKind]time.Duration
	logger    *zap.Logger
}

func newConfig(opts []Option) (config, error) {
	cfg := config{
		inventory: nopInventory{},
		timeouts:  make(map[types.OperationKind]time.Duration),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	cfg.logger = cfg.logger.Named("lifecycle")
	return cfg, nil
}

func (cfg *config) validate() error {
	if cfg.store == nil {
		return errors.New("lifecycle: no node store")
	}
	if cfg.queue == nil {
		return errors.New("lifecycle: no maintenance queue")
	}
	if cfg.executor == nil {
		return errors.New("lifecycle: no executor")
	}
	if cfg.schema == nil {
		return errors.New("lifecycle: no schema")
	}
	if cfg.inventory == nil {
		return errors.New("lifecycle: no resource inventory")
	}
	for kind, timeout := range cfg.timeouts {
		if timeout <= 0 {
			return errors.New("lifecycle: non-positive timeout for " + kind.String())
		}
	}
	if cfg.logger == nil {
		return errors.New("lifecycle: logger is nil")
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

func WithNodeStore(store nodestore.Store) Option {
	return newFuncOption(func(cfg *config) {
		cfg.store = store
	})
}

func WithQueue(queue *maintqueue.Queue) Option {
	return newFuncOption(func(cfg *config) {
		cfg.queue = queue
	})
}

func WithExecutor(executor remoteop.Executor) Option {
	return newFuncOption(func(cfg *config) {
		cfg.executor = executor
	})
}

func WithSchema(schema *policy.Schema) Option {
	return newFuncOption(func(cfg *config) {
		cfg.schema = schema
	})
}

// WithResourceInventory sets the inventory from which the managed resource
// of an uninstalled node is detached. By default nothing is detached.
func WithResourceInventory(inventory ResourceInventory) Option {
	return newFuncOption(func(cfg *config) {
		cfg.inventory = inventory
	})
}

// WithInitiator sets the name recorded as the initiator of every scheduled
// operation.
func WithInitiator(initiator string) Option {
	return newFuncOption(func(cfg *config) {
		cfg.initiator = initiator
	})
}

// WithOperationTimeout overrides the default timeout of an operation kind.
func WithOperationTimeout(kind types.OperationKind, timeout time.Duration) Option {
	return newFuncOption(func(cfg *config) {
		cfg.timeouts[kind] = timeout
	})
}

func WithLogger(logger *zap.Logger) Option {
	return newFuncOption(func(cfg *config) {
		cfg.logger = logger
	})
}
