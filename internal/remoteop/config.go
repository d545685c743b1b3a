package remoteop

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultWorkers             = 4
	DefaultQueueSize           = 1024
	DefaultCompletionQueueSize = 1024
)

type config struct {
	agent               Agent
	workers             int
	queueSize           int
	completionQueueSize int
	now                 func() time.Time
	logger              *zap.Logger
}

func newConfig(opts []Option) (config, error) {
	cfg := config{
		workers:             DefaultWorkers,
		queueSize:           DefaultQueueSize,
		completionQueueSize: DefaultCompletionQueueSize,
		now:                 time.Now,
		logger:              zap.NewNop(),
	}
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	cfg.logger = cfg.logger.Named("remoteop")
	return cfg, nil
}

func (cfg *config) validate() error {
	if cfg.agent == nil {
		return errors.New("remoteop: no agent")
	}
	if cfg.workers < 1 {
		return fmt.Errorf("remoteop: invalid number of workers %d", cfg.workers)
	}
	if cfg.queueSize < 1 {
		return fmt.Errorf("remoteop: invalid queue size %d", cfg.queueSize)
	}
	if cfg.completionQueueSize < 0 {
		return fmt.Errorf("remoteop: invalid completion queue size %d", cfg.completionQueueSize)
	}
	if cfg.logger == nil {
		return errors.New("remoteop: logger is nil")
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

func WithAgent(agent Agent) Option {
	return newFuncOption(func(cfg *config) {
		cfg.agent = agent
	})
}

// WithWorkers sets the number of operations run at the same time.
func WithWorkers(workers int) Option {
	return newFuncOption(func(cfg *config) {
		cfg.workers = workers
	})
}

// WithQueueSize sets how many scheduled operations may wait for a worker.
// Schedule blocks while the queue is full.
func WithQueueSize(queueSize int) Option {
	return newFuncOption(func(cfg *config) {
		cfg.queueSize = queueSize
	})
}

func WithCompletionQueueSize(size int) Option {
	return newFuncOption(func(cfg *config) {
		cfg.completionQueueSize = size
	})
}

func WithLogger(logger *zap.Logger) Option {
	return newFuncOption(func(cfg *config) {
		cfg.logger = logger
	})
}
